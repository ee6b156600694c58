package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/domain/event"
)

// AssertEventPublished checks that an event of the given type is present and
// returns the first match.
func AssertEventPublished(t *testing.T, events []event.DomainEvent, eventType string) event.DomainEvent {
	t.Helper()

	for _, evt := range events {
		if evt.EventType() == eventType {
			return evt
		}
	}

	t.Fatalf("Expected event of type %q, but it was not found. Got %d events", eventType, len(events))
	return nil
}

// AssertNoEventOfType checks that no event of the given type is present.
func AssertNoEventOfType(t *testing.T, events []event.DomainEvent, eventType string) {
	t.Helper()

	for _, evt := range events {
		if evt.EventType() == eventType {
			t.Fatalf("Expected no event of type %q, but found one on aggregate %s", eventType, evt.AggregateID())
		}
	}
}

// AssertEventCount checks the number of events.
func AssertEventCount(t *testing.T, events []event.DomainEvent, expected int) {
	t.Helper()

	if len(events) != expected {
		t.Fatalf("Expected %d events, but got %d", expected, len(events))
	}
}

// AssertEventType checks the event type.
func AssertEventType(t *testing.T, evt event.DomainEvent, expectedType string) {
	t.Helper()

	require.Equal(t, expectedType, evt.EventType())
}

// AssertAggregateID checks the aggregate ID recorded in the event.
func AssertAggregateID(t *testing.T, evt event.DomainEvent, expectedID string) {
	t.Helper()

	require.Equal(t, expectedID, evt.AggregateID())
}

// AssertVersion checks the stream position recorded in the event.
func AssertVersion(t *testing.T, evt event.DomainEvent, expectedVersion int) {
	t.Helper()

	assert.Equal(t, expectedVersion, evt.Version())
}
