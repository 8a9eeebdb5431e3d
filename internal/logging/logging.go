// Package logging constructs the single *slog.Logger threaded through
// the components that log at startup. Nothing in this module reaches for
// a package-level logger or fmt.Printf/log.Println — the components that
// log (httpapi.NewHandler, static.LoadPostgres) take one as a parameter.
package logging

import (
	"log/slog"
	"os"
)

// New builds the process-wide structured logger. jsonOutput selects
// slog's JSON handler (production) over its text handler (local dev).
func New(jsonOutput bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
