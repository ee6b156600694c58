// Package order contains the Order aggregate: the purchase lifecycle from
// placement through payment to refund or cancellation.
package order

import (
	"fmt"
	"slices"
	"time"

	"github.com/coursery/coursery/internal/domain/errs"
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// Aggregate is the event-sourced Order aggregate.
type Aggregate struct {
	id uuid.UUID

	userID             uuid.UUID
	courseIDs          []uuid.UUID
	totalAmount        money.Money
	status             Status
	paymentID          string
	paidAt             *time.Time
	refundReason       string
	cancellationReason string
	failureReason      string
	placedAt           time.Time

	version           int
	uncommittedEvents []event.DomainEvent
}

// NewAggregate creates an empty Order aggregate ready for Place or replay.
func NewAggregate(id uuid.UUID) *Aggregate {
	return &Aggregate{
		id:                id,
		uncommittedEvents: make([]event.DomainEvent, 0),
	}
}

// Place places a new order for the given user and courses.
func (a *Aggregate) Place(userID uuid.UUID, courseIDs []uuid.UUID, totalAmount money.Money) error {
	if a.version > 0 {
		return errs.ErrAlreadyExists
	}
	if userID.IsZero() {
		return fmt.Errorf("%w: user ID is required", errs.ErrInvalidInput)
	}
	if len(courseIDs) == 0 {
		return fmt.Errorf("%w: order must contain at least one course", errs.ErrInvalidInput)
	}
	seen := make(map[uuid.UUID]struct{}, len(courseIDs))
	for _, courseID := range courseIDs {
		if courseID.IsZero() {
			return fmt.Errorf("%w: course ID is required", errs.ErrInvalidInput)
		}
		if _, dup := seen[courseID]; dup {
			return fmt.Errorf("%w: duplicate course %s in order", errs.ErrInvalidInput, courseID)
		}
		seen[courseID] = struct{}{}
	}

	evt := NewOrderPlaced(
		a.id,
		userID,
		slices.Clone(courseIDs),
		totalAmount,
		a.nextVersion(),
		a.newMetadata(userID),
	)
	a.apply(evt)

	return nil
}

// MarkPaid confirms payment for a pending order.
func (a *Aggregate) MarkPaid(paymentID string) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if paymentID == "" {
		return fmt.Errorf("%w: payment ID is required", errs.ErrInvalidInput)
	}
	if !a.canTransitionTo(StatusPaid) {
		return fmt.Errorf("%w: cannot pay order in status %s", errs.ErrInvalidTransition, a.status)
	}

	evt := NewOrderPaid(
		a.id,
		a.userID,
		slices.Clone(a.courseIDs),
		paymentID,
		a.totalAmount,
		a.nextVersion(),
		a.newMetadata(a.userID),
	)
	a.apply(evt)

	return nil
}

// RequestRefund requests a refund for a paid order.
func (a *Aggregate) RequestRefund(reason string) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if reason == "" {
		return fmt.Errorf("%w: refund reason is required", errs.ErrInvalidInput)
	}
	if !a.canTransitionTo(StatusRefundRequested) {
		return fmt.Errorf("%w: cannot request refund in status %s", errs.ErrInvalidTransition, a.status)
	}

	evt := NewOrderRefundRequested(
		a.id,
		a.userID,
		slices.Clone(a.courseIDs),
		reason,
		a.nextVersion(),
		a.newMetadata(a.userID),
	)
	a.apply(evt)

	return nil
}

// MarkRefunded completes a requested refund, returning the full order amount.
func (a *Aggregate) MarkRefunded() error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if !a.canTransitionTo(StatusRefunded) {
		return fmt.Errorf("%w: cannot refund order in status %s", errs.ErrInvalidTransition, a.status)
	}

	evt := NewOrderRefunded(
		a.id,
		a.userID,
		slices.Clone(a.courseIDs),
		a.refundReason,
		a.totalAmount,
		a.nextVersion(),
		a.newMetadata(a.userID),
	)
	a.apply(evt)

	return nil
}

// Cancel cancels a pending order.
func (a *Aggregate) Cancel(reason string) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if !a.canTransitionTo(StatusCancelled) {
		return fmt.Errorf("%w: cannot cancel order in status %s", errs.ErrInvalidTransition, a.status)
	}

	evt := NewOrderCancelled(a.id, a.userID, reason, a.nextVersion(), a.newMetadata(a.userID))
	a.apply(evt)

	return nil
}

// MarkPaymentFailed records a failed payment attempt for a pending order.
func (a *Aggregate) MarkPaymentFailed(failureReason string) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if failureReason == "" {
		return fmt.Errorf("%w: failure reason is required", errs.ErrInvalidInput)
	}
	if !a.canTransitionTo(StatusPaymentFailed) {
		return fmt.Errorf("%w: cannot fail payment in status %s", errs.ErrInvalidTransition, a.status)
	}

	evt := NewOrderPaymentFailed(a.id, a.userID, failureReason, a.nextVersion(), a.newMetadata(a.userID))
	a.apply(evt)

	return nil
}

// CanBeRefunded reports whether the order is in a refundable state.
func (a *Aggregate) CanBeRefunded() bool {
	return a.status == StatusPaid
}

// apply applies an event and records it as uncommitted.
func (a *Aggregate) apply(evt event.DomainEvent) {
	a.applyChange(evt)
	a.uncommittedEvents = append(a.uncommittedEvents, evt)
}

// applyChange mutates aggregate state from an event. Shared by the command
// path and replay, so state stays a pure function of the event stream.
func (a *Aggregate) applyChange(evt event.DomainEvent) {
	switch e := evt.(type) {
	case *Placed:
		a.userID = e.UserID
		a.courseIDs = slices.Clone(e.CourseIDs)
		a.totalAmount = e.TotalAmount
		a.status = StatusPending
		a.placedAt = evt.OccurredAt()

	case *Paid:
		a.status = StatusPaid
		a.paymentID = e.PaymentID
		paidAt := evt.OccurredAt()
		a.paidAt = &paidAt

	case *RefundRequested:
		a.status = StatusRefundRequested
		a.refundReason = e.Reason

	case *Refunded:
		a.status = StatusRefunded
		a.refundReason = e.Reason

	case *Cancelled:
		a.status = StatusCancelled
		a.cancellationReason = e.Reason

	case *PaymentFailed:
		a.status = StatusPaymentFailed
		a.failureReason = e.FailureReason
	}

	a.version++
}

// ReplayEvents rebuilds aggregate state from a stored event stream.
func (a *Aggregate) ReplayEvents(events []event.DomainEvent) {
	for _, evt := range events {
		a.applyChange(evt)
	}
}

// UncommittedEvents returns events not yet persisted.
func (a *Aggregate) UncommittedEvents() []event.DomainEvent {
	return a.uncommittedEvents
}

// MarkEventsAsCommitted clears the uncommitted event list.
func (a *Aggregate) MarkEventsAsCommitted() {
	a.uncommittedEvents = make([]event.DomainEvent, 0)
}

// canTransitionTo checks the status transition table.
func (a *Aggregate) canTransitionTo(newStatus Status) bool {
	transitions := map[Status][]Status{
		StatusPending:         {StatusPaid, StatusCancelled, StatusPaymentFailed},
		StatusPaid:            {StatusRefundRequested},
		StatusRefundRequested: {StatusRefunded},
	}

	allowed, ok := transitions[a.status]
	if !ok {
		return false
	}
	return slices.Contains(allowed, newStatus)
}

func (a *Aggregate) nextVersion() int {
	return a.version + 1
}

func (a *Aggregate) newMetadata(actor uuid.UUID) event.Metadata {
	m := event.NewMetadata(actor.String(), uuid.NewUUID().String(), uuid.NewUUID().String())
	return m
}

// Getters

// ID returns the order ID.
func (a *Aggregate) ID() uuid.UUID { return a.id }

// UserID returns the ordering user's ID.
func (a *Aggregate) UserID() uuid.UUID { return a.userID }

// CourseIDs returns the ordered course IDs.
func (a *Aggregate) CourseIDs() []uuid.UUID { return slices.Clone(a.courseIDs) }

// TotalAmount returns the order total.
func (a *Aggregate) TotalAmount() money.Money { return a.totalAmount }

// Status returns the current order status.
func (a *Aggregate) Status() Status { return a.status }

// PaymentID returns the confirmed payment ID, if any.
func (a *Aggregate) PaymentID() string { return a.paymentID }

// PaidAt returns the payment time, or nil for unpaid orders.
func (a *Aggregate) PaidAt() *time.Time { return a.paidAt }

// RefundReason returns the requested refund reason, if any.
func (a *Aggregate) RefundReason() string { return a.refundReason }

// CancellationReason returns the cancellation reason, if any.
func (a *Aggregate) CancellationReason() string { return a.cancellationReason }

// FailureReason returns the payment failure reason, if any.
func (a *Aggregate) FailureReason() string { return a.failureReason }

// PlacedAt returns the time the order was placed.
func (a *Aggregate) PlacedAt() time.Time { return a.placedAt }

// Version returns the current aggregate version.
func (a *Aggregate) Version() int { return a.version }
