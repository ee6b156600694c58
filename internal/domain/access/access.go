// Package access contains the AccessRecord aggregate: the canonical source
// for whether a user currently holds access to a course, including progress
// and expiry.
package access

import (
	"fmt"
	"time"

	"github.com/coursery/coursery/internal/domain/errs"
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// Aggregate is the event-sourced AccessRecord aggregate.
type Aggregate struct {
	id uuid.UUID

	userID       uuid.UUID
	courseID     uuid.UUID
	purchasedAt  time.Time
	expiresAt    *time.Time
	progress     Progress
	status       Status
	completedAt  *time.Time
	revokeReason string

	version           int
	uncommittedEvents []event.DomainEvent
}

// NewAggregate creates an empty AccessRecord aggregate ready for Grant or replay.
func NewAggregate(id uuid.UUID) *Aggregate {
	return &Aggregate{
		id:                id,
		uncommittedEvents: make([]event.DomainEvent, 0),
	}
}

// Grant grants a user access to a course. A nil expiry means lifetime access.
func (a *Aggregate) Grant(userID, courseID uuid.UUID, purchasedAt time.Time, expiresAt *time.Time) error {
	if a.version > 0 {
		return errs.ErrAlreadyExists
	}
	if userID.IsZero() {
		return fmt.Errorf("%w: user ID is required", errs.ErrInvalidInput)
	}
	if courseID.IsZero() {
		return fmt.Errorf("%w: course ID is required", errs.ErrInvalidInput)
	}
	if purchasedAt.IsZero() {
		return fmt.Errorf("%w: purchase time is required", errs.ErrInvalidInput)
	}
	if expiresAt != nil && !expiresAt.After(purchasedAt) {
		return fmt.Errorf("%w: expiry must be after the purchase time", errs.ErrInvalidInput)
	}

	evt := NewAccessGranted(a.id, userID, courseID, purchasedAt, expiresAt, a.nextVersion(), a.newMetadata(userID))
	a.apply(evt)

	return nil
}

// Revoke withdraws access, recording the reason.
func (a *Aggregate) Revoke(reason string) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if reason == "" {
		return fmt.Errorf("%w: revocation reason is required", errs.ErrInvalidInput)
	}
	if a.status == StatusRevoked {
		return fmt.Errorf("%w: access is already revoked", errs.ErrInvalidState)
	}

	evt := NewAccessRevoked(a.id, a.userID, a.courseID, reason, a.nextVersion(), a.newMetadata(a.userID))
	a.apply(evt)

	return nil
}

// Expire marks time-limited access as expired once now reaches the expiry.
// A record that is not active, has no expiry, or is not yet due is left
// unchanged and no event is emitted.
func (a *Aggregate) Expire(now time.Time) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if a.status != StatusActive {
		return nil
	}
	if a.expiresAt == nil || now.Before(*a.expiresAt) {
		return nil
	}

	evt := NewAccessExpired(a.id, a.userID, a.courseID, *a.expiresAt, a.nextVersion(), a.newMetadata(a.userID))
	a.apply(evt)

	return nil
}

// Reactivate restores expired or revoked access with a new expiry.
// A nil expiry means lifetime access.
func (a *Aggregate) Reactivate(expiresAt *time.Time) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if a.status != StatusExpired && a.status != StatusRevoked {
		return fmt.Errorf("%w: can only reactivate expired or revoked access", errs.ErrInvalidState)
	}

	evt := NewAccessReactivated(a.id, a.userID, a.courseID, expiresAt, a.nextVersion(), a.newMetadata(a.userID))
	a.apply(evt)

	return nil
}

// UpdateProgress advances course progress. Progress never decreases; an
// equal value is a no-op. Reaching 100 additionally emits CourseCompleted.
func (a *Aggregate) UpdateProgress(progress Progress) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if a.status != StatusActive {
		return fmt.Errorf("%w: cannot update progress on %s access", errs.ErrInvalidState, a.status)
	}
	if progress < a.progress {
		return fmt.Errorf("%w: progress cannot decrease from %s to %s", errs.ErrInvalidInput, a.progress, progress)
	}
	if progress == a.progress {
		return nil
	}

	wasComplete := a.progress.IsComplete()

	evt := NewProgressUpdated(a.id, a.userID, a.courseID, progress, a.nextVersion(), a.newMetadata(a.userID))
	a.apply(evt)

	if progress.IsComplete() && !wasComplete {
		completed := NewCourseCompleted(a.id, a.userID, a.courseID, a.nextVersion(), a.newMetadata(a.userID))
		a.apply(completed)
	}

	return nil
}

// IsActive reports whether access is usable at the given time.
func (a *Aggregate) IsActive(now time.Time) bool {
	if a.status != StatusActive {
		return false
	}
	if a.expiresAt != nil && !now.Before(*a.expiresAt) {
		return false
	}
	return true
}

// IsCompleted reports whether the course was completed under this access.
func (a *Aggregate) IsCompleted() bool {
	return a.completedAt != nil
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
	case *Granted:
		a.userID = e.UserID
		a.courseID = e.CourseID
		a.purchasedAt = e.PurchasedAt
		a.expiresAt = e.ExpiresAt
		a.progress = 0
		a.status = StatusActive

	case *Revoked:
		a.status = StatusRevoked
		a.revokeReason = e.Reason

	case *Expired:
		a.status = StatusExpired

	case *Reactivated:
		a.status = StatusActive
		a.expiresAt = e.ExpiresAt

	case *ProgressUpdated:
		a.progress = e.Progress

	case *CourseCompleted:
		completedAt := evt.OccurredAt()
		a.completedAt = &completedAt
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

func (a *Aggregate) nextVersion() int {
	return a.version + 1
}

func (a *Aggregate) newMetadata(actor uuid.UUID) event.Metadata {
	return event.NewMetadata(actor.String(), uuid.NewUUID().String(), uuid.NewUUID().String())
}

// Getters

// ID returns the access record ID.
func (a *Aggregate) ID() uuid.UUID { return a.id }

// UserID returns the granted user's ID.
func (a *Aggregate) UserID() uuid.UUID { return a.userID }

// CourseID returns the course ID.
func (a *Aggregate) CourseID() uuid.UUID { return a.courseID }

// PurchasedAt returns the purchase time backing this access.
func (a *Aggregate) PurchasedAt() time.Time { return a.purchasedAt }

// ExpiresAt returns the expiry time, or nil for lifetime access.
func (a *Aggregate) ExpiresAt() *time.Time { return a.expiresAt }

// Progress returns the current completion percentage.
func (a *Aggregate) Progress() Progress { return a.progress }

// Status returns the access lifecycle status.
func (a *Aggregate) Status() Status { return a.status }

// CompletedAt returns the completion time, or nil if not completed.
func (a *Aggregate) CompletedAt() *time.Time { return a.completedAt }

// RevokeReason returns the recorded revocation reason, if any.
func (a *Aggregate) RevokeReason() string { return a.revokeReason }

// Version returns the current aggregate version.
func (a *Aggregate) Version() int { return a.version }
