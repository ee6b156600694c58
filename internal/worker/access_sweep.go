package worker

import (
	"context"
	"log/slog"
	"time"
)

// Default access sweep configuration values.
const (
	defaultSweepInterval = 1 * time.Minute
)

// AccessSweepConfig contains configuration for the access sweep worker.
type AccessSweepConfig struct {
	// Interval is the time between expiry sweeps.
	Interval time.Duration

	// Enabled determines if the worker should run.
	Enabled bool
}

// DefaultAccessSweepConfig returns sensible default configuration.
func DefaultAccessSweepConfig() AccessSweepConfig {
	return AccessSweepConfig{
		Interval: defaultSweepInterval,
		Enabled:  true,
	}
}

// AccessExpirer expires access records whose expiry time has passed.
// *service.AccessLifecycleService satisfies it.
type AccessExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// AccessSweepWorker periodically expires time-limited access records.
type AccessSweepWorker struct {
	lifecycle AccessExpirer
	logger    *slog.Logger
	config    AccessSweepConfig
}

// NewAccessSweepWorker creates a new access sweep worker.
func NewAccessSweepWorker(lifecycle AccessExpirer, logger *slog.Logger, config AccessSweepConfig) *AccessSweepWorker {
	if logger == nil {
		logger = slog.Default()
	}

	return &AccessSweepWorker{
		lifecycle: lifecycle,
		logger:    logger,
		config:    config,
	}
}

// Run starts the sweep worker and runs until the context is cancelled.
func (w *AccessSweepWorker) Run(ctx context.Context) error {
	if !w.config.Enabled {
		w.logger.InfoContext(ctx, "access sweep worker is disabled")
		return nil
	}

	w.logger.InfoContext(ctx, "starting access sweep worker",
		slog.Duration("interval", w.config.Interval),
	)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	// Sweep immediately on start so records that came due while the
	// process was down do not wait a full interval.
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "access sweep worker stopped")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep runs a single expiry pass and logs the outcome.
func (w *AccessSweepWorker) sweep(ctx context.Context) {
	expired, err := w.SweepOnce(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "access sweep failed",
			slog.String("error", err.Error()),
		)
		return
	}

	if expired > 0 {
		w.logger.InfoContext(ctx, "access sweep completed",
			slog.Int("expired", expired),
		)
	}
}

// SweepOnce runs a single expiry pass as of now and returns how many records
// were expired (useful for testing).
func (w *AccessSweepWorker) SweepOnce(ctx context.Context) (int, error) {
	return w.lifecycle.ExpireDue(ctx, time.Now())
}
