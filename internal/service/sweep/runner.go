package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner invokes the scheduler on a fixed cadence. A missed cycle simply
// catches up on the next tick; the sweeps are idempotent per listing per
// state, so there is no exactly-once requirement.
type Runner struct {
	scheduler *Scheduler
	interval  time.Duration
	logger    *zap.Logger
}

func NewRunner(scheduler *Scheduler, interval time.Duration, logger *zap.Logger) *Runner {
	return &Runner{
		scheduler: scheduler,
		interval:  interval,
		logger:    logger,
	}
}

// Start blocks until ctx is cancelled, running one sweep immediately and then
// one per interval.
func (r *Runner) Start(ctx context.Context) error {
	r.logger.Info("sweep runner started", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("sweep runner stopped")
			return ctx.Err()
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if err := r.scheduler.Run(ctx); err != nil {
		r.logger.Error("sweep run failed", zap.Error(err))
	}
}
