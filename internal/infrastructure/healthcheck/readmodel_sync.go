package healthcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// ConsistencyVerifier compares an aggregate stream against its read model row.
type ConsistencyVerifier interface {
	VerifyConsistency(ctx context.Context, aggregateID uuid.UUID) (bool, error)
}

// StreamLister enumerates the aggregate streams held by the event store.
type StreamLister interface {
	AllAggregateIDs() []string
}

const defaultSampleSize = 100

// ReadModelSyncChecker samples aggregate streams and verifies that the
// projected read models match a replay of each stream.
type ReadModelSyncChecker struct {
	verifier   ConsistencyVerifier
	store      StreamLister
	sampleSize int
}

// NewReadModelSyncChecker creates a new read model sync health checker.
func NewReadModelSyncChecker(
	verifier ConsistencyVerifier,
	store StreamLister,
	sampleSize int,
) *ReadModelSyncChecker {
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}

	return &ReadModelSyncChecker{
		verifier:   verifier,
		store:      store,
		sampleSize: sampleSize,
	}
}

// Name returns the name of this health checker.
func (c *ReadModelSyncChecker) Name() string {
	return "readmodel_sync"
}

// Check performs the health check. It verifies up to sampleSize aggregates;
// one inconsistent aggregate is enough to mark the check unhealthy.
func (c *ReadModelSyncChecker) Check(ctx context.Context) appcore.HealthStatus {
	ids := c.store.AllAggregateIDs()
	if len(ids) > c.sampleSize {
		ids = ids[:c.sampleSize]
	}

	checked := 0
	inconsistent := 0

	for _, raw := range ids {
		id, err := uuid.ParseUUID(raw)
		if err != nil {
			continue
		}

		consistent, err := c.verifier.VerifyConsistency(ctx, id)
		if err != nil {
			return appcore.HealthStatus{
				Healthy:   false,
				Message:   fmt.Sprintf("failed to verify aggregate %s: %v", raw, err),
				CheckedAt: time.Now(),
			}
		}

		checked++
		if !consistent {
			inconsistent++
		}
	}

	healthy := inconsistent == 0

	details := map[string]any{
		"checked":      checked,
		"inconsistent": inconsistent,
		"sample_size":  c.sampleSize,
	}

	message := fmt.Sprintf("read models in sync: %d aggregates verified", checked)
	if !healthy {
		message = fmt.Sprintf("read models out of sync: %d of %d aggregates inconsistent", inconsistent, checked)
	}

	return appcore.HealthStatus{
		Healthy:   healthy,
		Message:   message,
		Details:   details,
		CheckedAt: time.Now(),
	}
}
