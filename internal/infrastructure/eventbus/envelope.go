package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/coursery/coursery/internal/domain/event"
)

// Envelope is the serialized form of a domain event. The WebSocket feed
// and the dead letter queue use it as their wire representation.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Version       int             `json:"version"`
	SchemaVersion int             `json:"schema_version"`
	Metadata      event.Metadata  `json:"metadata"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a domain event for serialization. The payload is the
// JSON encoding of the concrete event struct.
func NewEnvelope(evt event.DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return Envelope{
		EventID:       evt.EventID().String(),
		EventType:     evt.EventType(),
		AggregateID:   evt.AggregateID(),
		AggregateType: evt.AggregateType(),
		OccurredAt:    evt.OccurredAt(),
		Version:       evt.Version(),
		SchemaVersion: evt.SchemaVersion(),
		Metadata:      evt.Metadata(),
		Payload:       payload,
	}, nil
}
