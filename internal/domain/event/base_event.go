package event

import (
	"time"

	"github.com/coursery/coursery/internal/domain/uuid"
)

// BaseEvent is the common implementation of DomainEvent, embedded by every
// concrete event type. The event ID is assigned once at construction and
// never changes, so replays and retries carry the same idempotency key.
type BaseEvent struct {
	eventID       uuid.UUID
	eventType     string
	aggregateID   string
	aggregateType string
	occurredAt    time.Time
	version       int
	schemaVersion int
	metadata      Metadata
}

// NewBaseEvent creates a base event with a fresh event ID and timestamp.
func NewBaseEvent(eventType, aggregateID, aggregateType string, version int, metadata Metadata) BaseEvent {
	return BaseEvent{
		eventID:       uuid.NewUUID(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    time.Now(),
		version:       version,
		schemaVersion: CurrentSchemaVersion,
		metadata:      metadata,
	}
}

// EventID returns the unique identifier of this event occurrence.
func (e BaseEvent) EventID() uuid.UUID {
	return e.eventID
}

// EventType returns the event kind.
func (e BaseEvent) EventType() string {
	return e.eventType
}

// AggregateID returns the ID of the emitting aggregate.
func (e BaseEvent) AggregateID() string {
	return e.aggregateID
}

// AggregateType returns the aggregate kind.
func (e BaseEvent) AggregateType() string {
	return e.aggregateType
}

// OccurredAt returns the time the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// Version returns the event's position in the aggregate stream.
func (e BaseEvent) Version() int {
	return e.version
}

// SchemaVersion returns the event schema revision.
func (e BaseEvent) SchemaVersion() int {
	return e.schemaVersion
}

// Metadata returns the event metadata.
func (e BaseEvent) Metadata() Metadata {
	return e.metadata
}
