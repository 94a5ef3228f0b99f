// Package logging builds the process-global slog.Logger from config, the
// way this repo's initLogger wires a JSON or text handler onto slog before
// any component starts.
package logging

import (
	"log/slog"
	"os"

	"tablestore/internal/config"
)

// New builds a *slog.Logger from cfg without installing it as the process
// default, so callers that want an isolated logger (tests, admin handlers)
// can do so.
func New(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level), AddSource: true}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// Init builds a logger from cfg and installs it as slog.Default(), mirroring
// this repo's initLogger.
func Init(cfg config.LoggingConfig) *slog.Logger {
	logger := New(cfg)
	slog.SetDefault(logger)
	slog.Info("logger initialized", "level", cfg.Level, "json", cfg.JSON)
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
