// Package user contains the User aggregate: registration, profile and
// email identity for platform learners.
package user

import (
	"fmt"
	"time"

	"github.com/coursery/coursery/internal/domain/errs"
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// Aggregate is the event-sourced User aggregate.
type Aggregate struct {
	id uuid.UUID

	email        EmailAddress
	profile      Profile
	registeredAt time.Time

	version           int
	uncommittedEvents []event.DomainEvent
}

// NewAggregate creates an empty User aggregate ready for Register or replay.
func NewAggregate(id uuid.UUID) *Aggregate {
	return &Aggregate{
		id:                id,
		uncommittedEvents: make([]event.DomainEvent, 0),
	}
}

// Register registers a new user with a validated email and profile.
func (a *Aggregate) Register(email EmailAddress, profile Profile) error {
	if a.version > 0 {
		return errs.ErrAlreadyExists
	}
	if email.IsZero() {
		return fmt.Errorf("%w: email is required", errs.ErrInvalidInput)
	}
	if profile.IsZero() {
		return fmt.Errorf("%w: profile is required", errs.ErrInvalidInput)
	}

	evt := NewUserRegistered(a.id, email, profile, a.nextVersion(), a.newMetadata())
	a.apply(evt)

	return nil
}

// UpdateProfile replaces the user's profile.
func (a *Aggregate) UpdateProfile(profile Profile) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if profile.IsZero() {
		return fmt.Errorf("%w: profile is required", errs.ErrInvalidInput)
	}

	evt := NewUserProfileUpdated(a.id, profile, a.nextVersion(), a.newMetadata())
	a.apply(evt)

	return nil
}

// ChangeEmail switches the user to a new address. Changing to the current
// address is a no-op and emits nothing.
func (a *Aggregate) ChangeEmail(newEmail EmailAddress) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if newEmail.IsZero() {
		return fmt.Errorf("%w: email is required", errs.ErrInvalidInput)
	}
	if newEmail == a.email {
		return nil
	}

	evt := NewUserEmailChanged(a.id, a.email, newEmail, a.nextVersion(), a.newMetadata())
	a.apply(evt)

	return nil
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
	case *Registered:
		a.email = EmailAddress(e.Email)
		a.profile = Profile{firstName: e.FirstName, lastName: e.LastName, bio: e.Bio}
		a.registeredAt = evt.OccurredAt()

	case *ProfileUpdated:
		a.profile = Profile{firstName: e.FirstName, lastName: e.LastName, bio: e.Bio}

	case *EmailChanged:
		a.email = EmailAddress(e.NewEmail)
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
	return event.NewMetadata(a.id.String(), uuid.NewUUID().String(), uuid.NewUUID().String())
}

// Getters

// ID returns the user ID.
func (a *Aggregate) ID() uuid.UUID { return a.id }

// Email returns the current email address.
func (a *Aggregate) Email() EmailAddress { return a.email }

// Profile returns the current profile.
func (a *Aggregate) Profile() Profile { return a.profile }

// RegisteredAt returns the registration time.
func (a *Aggregate) RegisteredAt() time.Time { return a.registeredAt }

// Version returns the current aggregate version.
func (a *Aggregate) Version() int { return a.version }
