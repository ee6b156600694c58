package worker

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// Default consistency check configuration values.
const (
	defaultCheckInterval = 5 * time.Minute
	defaultSampleSize    = 25
)

// ConsistencyConfig contains configuration for the consistency worker.
type ConsistencyConfig struct {
	// Interval is the time between verification passes.
	Interval time.Duration

	// SampleSize is the maximum number of aggregates verified per pass.
	SampleSize int

	// Enabled determines if the worker should run.
	Enabled bool
}

// DefaultConsistencyConfig returns sensible default configuration.
func DefaultConsistencyConfig() ConsistencyConfig {
	return ConsistencyConfig{
		Interval:   defaultCheckInterval,
		SampleSize: defaultSampleSize,
		Enabled:    true,
	}
}

// AggregateLister lists the aggregate IDs known to the event store.
// *eventstore.InMemoryEventStore satisfies it.
type AggregateLister interface {
	AllAggregateIDs() []string
}

// ConsistencyVerifier checks one aggregate's read models against a replay of
// its stream. *projection.Registry satisfies it.
type ConsistencyVerifier interface {
	VerifyConsistency(ctx context.Context, aggregateID uuid.UUID) (bool, error)
}

// ConsistencyWorker periodically samples aggregates from the event store and
// verifies their read models, logging any drift it finds.
type ConsistencyWorker struct {
	store    AggregateLister
	verifier ConsistencyVerifier
	logger   *slog.Logger
	config   ConsistencyConfig
}

// NewConsistencyWorker creates a new consistency worker.
func NewConsistencyWorker(
	store AggregateLister,
	verifier ConsistencyVerifier,
	logger *slog.Logger,
	config ConsistencyConfig,
) *ConsistencyWorker {
	if logger == nil {
		logger = slog.Default()
	}

	return &ConsistencyWorker{
		store:    store,
		verifier: verifier,
		logger:   logger,
		config:   config,
	}
}

// Run starts the consistency worker and runs until the context is cancelled.
// The first pass waits a full interval so projections have caught up with
// startup traffic before being compared.
func (w *ConsistencyWorker) Run(ctx context.Context) error {
	if !w.config.Enabled {
		w.logger.InfoContext(ctx, "consistency worker is disabled")
		return nil
	}

	w.logger.InfoContext(ctx, "starting consistency worker",
		slog.Duration("interval", w.config.Interval),
		slog.Int("sample_size", w.config.SampleSize),
	)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "consistency worker stopped")
			return ctx.Err()
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// ConsistencyReport contains the outcome of a single verification pass.
type ConsistencyReport struct {
	Checked      int
	Inconsistent int
	Errors       int
}

// CheckOnce verifies a sample of aggregates and returns the outcome (useful
// for testing). When the store holds more aggregates than the sample size, a
// random sample is drawn so repeated passes eventually cover everything.
func (w *ConsistencyWorker) CheckOnce(ctx context.Context) ConsistencyReport {
	ids := w.store.AllAggregateIDs()
	if w.config.SampleSize > 0 && len(ids) > w.config.SampleSize {
		rand.Shuffle(len(ids), func(i, j int) {
			ids[i], ids[j] = ids[j], ids[i]
		})
		ids = ids[:w.config.SampleSize]
	}

	var report ConsistencyReport
	for _, id := range ids {
		aggregateID, err := uuid.ParseUUID(id)
		if err != nil {
			w.logger.WarnContext(ctx, "skipping malformed aggregate id",
				slog.String("aggregate_id", id),
				slog.String("error", err.Error()),
			)
			report.Errors++
			continue
		}

		consistent, verifyErr := w.verifier.VerifyConsistency(ctx, aggregateID)
		if verifyErr != nil {
			// A stream can vanish between listing and verification while a
			// rebuild is running; that is not drift.
			if errors.Is(verifyErr, appcore.ErrAggregateNotFound) {
				continue
			}
			w.logger.WarnContext(ctx, "consistency verification failed",
				slog.String("aggregate_id", id),
				slog.String("error", verifyErr.Error()),
			)
			report.Errors++
			continue
		}

		report.Checked++
		if !consistent {
			report.Inconsistent++
		}
	}

	return report
}

// check runs a verification pass and logs the outcome.
func (w *ConsistencyWorker) check(ctx context.Context) {
	report := w.CheckOnce(ctx)

	if report.Inconsistent > 0 || report.Errors > 0 {
		w.logger.WarnContext(ctx, "consistency check found problems",
			slog.Int("checked", report.Checked),
			slog.Int("inconsistent", report.Inconsistent),
			slog.Int("errors", report.Errors),
		)
		return
	}

	w.logger.DebugContext(ctx, "consistency check completed",
		slog.Int("checked", report.Checked),
	)
}
