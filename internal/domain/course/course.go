// Package course contains the Course aggregate: catalog metadata, price,
// access type and the refund policy reference.
package course

import (
	"fmt"
	"time"

	"github.com/coursery/coursery/internal/domain/errs"
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// Aggregate is the event-sourced Course aggregate.
type Aggregate struct {
	id uuid.UUID

	title       Title
	description Description
	price       money.Money
	accessType  AccessType
	policyID    uuid.UUID
	status      Status
	createdAt   time.Time

	version           int
	uncommittedEvents []event.DomainEvent
}

// NewAggregate creates an empty Course aggregate ready for Create or replay.
func NewAggregate(id uuid.UUID) *Aggregate {
	return &Aggregate{
		id:                id,
		uncommittedEvents: make([]event.DomainEvent, 0),
	}
}

// Create publishes a new course to the catalog.
func (a *Aggregate) Create(title Title, description Description, price money.Money, accessType AccessType, policyID uuid.UUID) error {
	if a.version > 0 {
		return errs.ErrAlreadyExists
	}
	if title.IsZero() {
		return fmt.Errorf("%w: title is required", errs.ErrInvalidInput)
	}
	if description.IsZero() {
		return fmt.Errorf("%w: description is required", errs.ErrInvalidInput)
	}
	if accessType != AccessUnlimited && accessType != AccessLimited {
		return fmt.Errorf("%w: unknown access type %q", errs.ErrInvalidInput, accessType)
	}
	if policyID.IsZero() {
		return fmt.Errorf("%w: refund policy is required", errs.ErrInvalidInput)
	}

	evt := NewCourseCreated(a.id, title, description, price, accessType, policyID, a.nextVersion(), a.newMetadata())
	a.apply(evt)

	return nil
}

// Update changes the course title and description.
func (a *Aggregate) Update(title Title, description Description) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if a.status == StatusDeprecated {
		return fmt.Errorf("%w: cannot update a deprecated course", errs.ErrInvalidState)
	}
	if title.IsZero() {
		return fmt.Errorf("%w: title is required", errs.ErrInvalidInput)
	}
	if description.IsZero() {
		return fmt.Errorf("%w: description is required", errs.ErrInvalidInput)
	}

	evt := NewCourseUpdated(a.id, title, description, a.nextVersion(), a.newMetadata())
	a.apply(evt)

	return nil
}

// ChangePolicy assigns a different refund policy. Assigning the current
// policy is a no-op and emits nothing.
func (a *Aggregate) ChangePolicy(newPolicyID uuid.UUID) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if a.status == StatusDeprecated {
		return fmt.Errorf("%w: cannot change policy of a deprecated course", errs.ErrInvalidState)
	}
	if newPolicyID.IsZero() {
		return fmt.Errorf("%w: refund policy is required", errs.ErrInvalidInput)
	}
	if newPolicyID == a.policyID {
		return nil
	}

	evt := NewCoursePolicyChanged(a.id, a.policyID, newPolicyID, a.nextVersion(), a.newMetadata())
	a.apply(evt)

	return nil
}

// Deprecate withdraws the course from sale. Existing access is unaffected.
func (a *Aggregate) Deprecate() error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if a.status == StatusDeprecated {
		return fmt.Errorf("%w: course is already deprecated", errs.ErrInvalidState)
	}

	evt := NewCourseDeprecated(a.id, a.title, a.nextVersion(), a.newMetadata())
	a.apply(evt)

	return nil
}

// IsAvailableForPurchase reports whether new orders may include this course.
func (a *Aggregate) IsAvailableForPurchase() bool {
	return a.status == StatusActive
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
	case *Created:
		a.title = Title(e.Title)
		a.description = Description(e.Description)
		a.price = e.Price
		a.accessType = e.AccessType
		a.policyID = e.PolicyID
		a.status = StatusActive
		a.createdAt = evt.OccurredAt()

	case *Updated:
		a.title = Title(e.Title)
		a.description = Description(e.Description)

	case *PolicyChanged:
		a.policyID = e.NewPolicyID

	case *Deprecated:
		a.status = StatusDeprecated
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

func (a *Aggregate) newMetadata() event.Metadata {
	return event.NewMetadata("", uuid.NewUUID().String(), uuid.NewUUID().String())
}

// Getters

// ID returns the course ID.
func (a *Aggregate) ID() uuid.UUID { return a.id }

// Title returns the course title.
func (a *Aggregate) Title() Title { return a.title }

// Description returns the course description.
func (a *Aggregate) Description() Description { return a.description }

// Price returns the course price.
func (a *Aggregate) Price() money.Money { return a.price }

// AccessType returns the purchased-access duration kind.
func (a *Aggregate) AccessType() AccessType { return a.accessType }

// PolicyID returns the assigned refund policy ID.
func (a *Aggregate) PolicyID() uuid.UUID { return a.policyID }

// Status returns the course lifecycle status.
func (a *Aggregate) Status() Status { return a.status }

// CreatedAt returns the catalog publication time.
func (a *Aggregate) CreatedAt() time.Time { return a.createdAt }

// Version returns the current aggregate version.
func (a *Aggregate) Version() int { return a.version }
