package testutil

import (
	"testing"

	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// placedFixture builds an OrderPlaced event for the assertion tests.
func placedFixture(t *testing.T) (event.DomainEvent, uuid.UUID) {
	t.Helper()

	orderID := uuid.NewUUID()
	total, err := money.NewFromString("49.90", "USD")
	if err != nil {
		t.Fatalf("failed to build total: %v", err)
	}

	evt := order.NewOrderPlaced(
		orderID,
		uuid.NewUUID(),
		[]uuid.UUID{uuid.NewUUID()},
		total,
		1,
		event.NewMetadata("", "", ""),
	)
	return evt, orderID
}

// TestAssertEventPublished tests AssertEventPublished function
func TestAssertEventPublished(t *testing.T) {
	evt, _ := placedFixture(t)
	events := []event.DomainEvent{evt}

	// Should find the event and return it
	found := AssertEventPublished(t, events, order.EventTypeOrderPlaced)
	if found.EventID() != evt.EventID() {
		t.Errorf("expected event %s, got %s", evt.EventID(), found.EventID())
	}

	// A missing event type would fail, but we can't test that directly
}

// TestAssertNoEventOfType tests AssertNoEventOfType function
func TestAssertNoEventOfType(t *testing.T) {
	evt, _ := placedFixture(t)
	events := []event.DomainEvent{evt}

	// Should pass when the type is absent
	AssertNoEventOfType(t, events, order.EventTypeOrderPaid)
}

// TestAssertEventCount tests AssertEventCount function
func TestAssertEventCount(t *testing.T) {
	evt, _ := placedFixture(t)

	AssertEventCount(t, nil, 0)
	AssertEventCount(t, []event.DomainEvent{evt}, 1)
}

// TestAssertEventType tests AssertEventType function
func TestAssertEventType(t *testing.T) {
	evt, _ := placedFixture(t)

	AssertEventType(t, evt, order.EventTypeOrderPlaced)
}

// TestAssertAggregateID tests AssertAggregateID function
func TestAssertAggregateID(t *testing.T) {
	evt, orderID := placedFixture(t)

	AssertAggregateID(t, evt, orderID.String())
}

// TestAssertVersion tests AssertVersion function
func TestAssertVersion(t *testing.T) {
	evt, _ := placedFixture(t)

	AssertVersion(t, evt, 1)
}

// TestAssertNoError tests AssertNoError function
func TestAssertNoError(t *testing.T) {
	AssertNoError(t, nil)
}
