package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

func LevelFromEnv(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewJSON logs to stdout, tagging every record with the binary it came from.
func NewJSON(level slog.Level, component string) *slog.Logger {
	return NewJSONTo(os.Stdout, level, component)
}

func NewJSONTo(w io.Writer, level slog.Level, component string) *slog.Logger {
	lg := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	if component != "" {
		lg = lg.With(slog.String("component", component))
	}
	return lg
}
