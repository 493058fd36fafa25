// Package util provides shared plumbing for logging, retries, and rate
// limiting used by the fetchers and server processes.
package util

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates a JSON structured logger writing to stdout at the
// specified level. Supported levels: "debug", "info", "warn", "error".
// Unrecognised levels default to "info".
func NewLogger(level string) *slog.Logger {
	return NewJSONLogger(os.Stdout, level)
}

// NewJSONLogger creates a JSON structured logger writing to w.
func NewJSONLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

// NewTextLogger creates a text logger writing to w. The TUI client logs to
// a file this way (stdout belongs to the terminal UI); servers pass an
// io.MultiWriter to tee stdout and a log file.
func NewTextLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

// SetDefault configures the provided logger as the default slog logger.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
