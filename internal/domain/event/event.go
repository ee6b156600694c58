// Package event defines the domain event contract shared by all aggregates.
package event

import (
	"context"
	"time"

	"github.com/coursery/coursery/internal/domain/uuid"
)

// CurrentSchemaVersion is the schema revision stamped on newly created events.
// Consumers must tolerate unknown fields from future revisions.
const CurrentSchemaVersion = 1

// DomainEvent is an immutable fact record describing a past state change.
type DomainEvent interface {
	// EventID returns the unique identifier of this event occurrence.
	// Projections use it as the idempotency key before applying.
	EventID() uuid.UUID

	// EventType returns the event kind, e.g. "order.paid".
	EventType() string

	// AggregateID returns the ID of the aggregate that emitted the event.
	AggregateID() string

	// AggregateType returns the aggregate kind, e.g. "Order".
	AggregateType() string

	// OccurredAt returns the time when the event occurred.
	OccurredAt() time.Time

	// Version returns the 1-based position of the event in its aggregate's
	// stream. It doubles as the optimistic concurrency token.
	Version() int

	// SchemaVersion returns the event schema revision.
	SchemaVersion() int

	// Metadata returns the event metadata.
	Metadata() Metadata
}

// Bus is the publishing side of the event bus.
type Bus interface {
	// Publish dispatches an event to every subscribed handler.
	Publish(ctx context.Context, event DomainEvent) error
}
