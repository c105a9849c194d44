package store

import (
	"log/slog"
	"os"
)

type config struct {
	logger *slog.Logger
}

func defaultConfig() config {
	return config{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// Option configures a Store via the functional-option pattern.
type Option func(*config)

// WithLogger installs a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}
