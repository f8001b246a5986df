package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger: JSON to stdout, tagged with service and environment.
func NewLogger(level, service, environment string) *slog.Logger {
	return newLogger(os.Stdout, level, service, environment)
}

func newLogger(w io.Writer, level, service, environment string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	logger := slog.New(handler).With(slog.String("service", service))
	if environment != "" {
		logger = logger.With(slog.String("env", environment))
	}
	return logger
}

// ParseLevel maps debug|info|warn|error to a slog level; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
