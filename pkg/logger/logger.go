package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const serviceName = "astroml"

// New constructs the service logger. JSON by default; LOG_FORMAT=text switches
// to a colourised console handler for local runs.
func New() *slog.Logger {
	return newWithWriter(os.Stdout, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
}

func newWithWriter(w io.Writer, format, level string) *slog.Logger {
	leveler := parseLevel(level)
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text", "console", "tint":
		handler = tint.NewHandler(w, &tint.Options{Level: leveler, TimeFormat: time.Kitchen})
	default:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: leveler})
	}
	return slog.New(handler).With("service", serviceName)
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
