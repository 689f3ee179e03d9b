// Package logging builds the structured loggers used across cpusched.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a level name to a slog level. Unknown names fall back to
// info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger returns a JSON logger writing to w.
func NewLogger(w io.Writer, level string) *slog.Logger {
	ops := &slog.HandlerOptions{
		AddSource: true,
		Level:     ParseLevel(level),
	}
	return slog.New(slog.NewJSONHandler(w, ops))
}

// BuildLogger returns a JSON logger writing to stderr.
func BuildLogger(level string) *slog.Logger {
	return NewLogger(os.Stderr, level)
}

func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}
