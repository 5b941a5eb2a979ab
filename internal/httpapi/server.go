package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"

	"monitora/internal/config"
)

// NewServer wraps handler with request logging, panic recovery and gzip.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           Wrap(handler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Wrap applies the middleware chain used by NewServer.
func Wrap(handler http.Handler) http.Handler {
	recovered := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)(handler)
	return requestLogger(handlers.CompressHandler(recovered))
}
