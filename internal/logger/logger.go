package logger

import (
	"io"
	"log/slog"
	"strings"

	"argocd-diff-preview/internal/config"
)

// Setup builds the application logger writing to w and installs it as the slog default.
// main passes stderr so that stdout stays reserved for rendered comments.
func Setup(cfg *config.Config, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default: // "text" or empty (already validated in config.go)
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	logger := slog.New(handler).With("component", "argocd-diff-preview")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level
// Note: Input is validated in config.go, so only valid values reach this function
func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default: // "info" or empty
		return slog.LevelInfo
	}
}
