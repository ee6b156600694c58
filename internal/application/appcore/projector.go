package appcore

import (
	"context"

	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// ReadModelProjector rebuilds and maintains read models from the event store.
// Interface is declared on consumer side (application layer) following Go idioms.
type ReadModelProjector interface {
	// RebuildOne rebuilds read model state for a single aggregate from its events.
	// Returns ErrAggregateNotFound if no events exist for the aggregate.
	RebuildOne(ctx context.Context, aggregateID uuid.UUID) error

	// RebuildAll resets all read models and replays the full event store.
	// Continues processing even if individual aggregates fail.
	RebuildAll(ctx context.Context) error

	// ProcessEvent applies a single event to the read models.
	// Used for incremental updates from event handlers.
	ProcessEvent(ctx context.Context, event event.DomainEvent) error

	// VerifyConsistency checks if read model state matches the state derived
	// from the event store. Returns true if consistent.
	VerifyConsistency(ctx context.Context, aggregateID uuid.UUID) (bool, error)
}
