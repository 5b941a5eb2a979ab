package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New builds the process logger. Dev builds (version "dev") get colourised
// tint output with source locations; anything else logs JSON.
func New(appEnv string, level slog.Level, version string, appName string) *slog.Logger {
	return NewWithWriter(os.Stdout, appEnv, level, version, appName)
}

func NewWithWriter(w io.Writer, appEnv string, level slog.Level, version string, appName string) *slog.Logger {
	if version == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", appEnv,
	)
}
