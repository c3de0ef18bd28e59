package agents

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shubh-37/prosora/internal/store"
)

// Janitor periodically removes sessions that have been idle too long.
type Janitor struct {
	store      *store.ContextStore
	interval   time.Duration
	maxAgeDays int
	logger     *zap.Logger
}

func NewJanitor(st *store.ContextStore, interval time.Duration, maxAgeDays int, logger *zap.Logger) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{store: st, interval: interval, maxAgeDays: maxAgeDays, logger: logger}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (j *Janitor) Run(ctx context.Context) error {
	j.logger.Info("🧹 janitor started",
		zap.Duration("interval", j.interval),
		zap.Int("max_age_days", j.maxAgeDays))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		j.sweep(ctx)

		select {
		case <-ctx.Done():
			j.logger.Info("janitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	if err := j.store.Cleanup(ctx, j.maxAgeDays); err != nil && ctx.Err() == nil {
		j.logger.Error("session cleanup failed", zap.Error(err))
	}
}
