package commit

import (
	"log/slog"
	"os"
)

type engineConfig struct {
	logger *slog.Logger
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// Option configures an Engine at construction time.
type Option func(*engineConfig)

// WithLogger installs a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) { c.logger = l }
}

type commitConfig struct {
	force bool
}

// CommitOption configures one call to Engine.Commit.
type CommitOption func(*commitConfig)

// WithForce disables both constraint phases for this commit (Step 0
// validation still runs). Intended for replaying an already-vetted commit
// log, e.g. warming a standby pool.
func WithForce(force bool) CommitOption {
	return func(c *commitConfig) { c.force = force }
}
