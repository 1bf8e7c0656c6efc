// Package log configures the process-wide structured logger.
package log

import (
	"log/slog"
	"os"
)

// Setup builds a text slog logger at the given level and installs it as the
// default. Unknown levels fall back to info.
func Setup(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// WithComponent tags a logger with the subsystem emitting the records.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}
