package logging

import (
	"io"
	"log/slog"
	"os"
)

// New builds a Logger writing JSON lines to stderr at the given level
// ("debug", "info", "warn", "error"; anything else means info).
func New(level string) Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter is New with an explicit destination, mainly for tests.
func NewWithWriter(level string, w io.Writer) Logger {
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

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return NewSlogLogger(slog.New(h))
}
