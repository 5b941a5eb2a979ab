package httpapi

import (
	"database/sql"
	"net/http"

	"monitora/internal/metrics"
)

// NewMux returns a mux with the operational routes: /healthz, /metrics and,
// when staticDir is set, /static/. mqtt may be nil when MQTT is disabled.
func NewMux(db *sql.DB, staticDir string, mqtt ConnectionChecker) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, mqtt)
	mux.Handle("GET /metrics", metrics.Handler())
	if staticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	return mux
}
