package user

import (
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// AggregateType identifies user events in envelopes and projections.
const AggregateType = "User"

// Event types
const (
	EventTypeUserRegistered     = "user.registered"
	EventTypeUserProfileUpdated = "user.profile_updated"
	EventTypeUserEmailChanged   = "user.email_changed"
)

// Registered is emitted when a new user signs up.
type Registered struct {
	event.BaseEvent

	Email     string
	FirstName string
	LastName  string
	Bio       string
}

// NewUserRegistered creates a UserRegistered event.
func NewUserRegistered(userID uuid.UUID, email EmailAddress, profile Profile, version int, metadata event.Metadata) *Registered {
	return &Registered{
		BaseEvent: event.NewBaseEvent(EventTypeUserRegistered, userID.String(), AggregateType, version, metadata),
		Email:     email.String(),
		FirstName: profile.FirstName(),
		LastName:  profile.LastName(),
		Bio:       profile.Bio(),
	}
}

// FullName returns the registered display name.
func (e *Registered) FullName() string {
	return e.FirstName + " " + e.LastName
}

// ProfileUpdated is emitted when a user's profile changes.
type ProfileUpdated struct {
	event.BaseEvent

	FirstName string
	LastName  string
	Bio       string
}

// NewUserProfileUpdated creates a UserProfileUpdated event.
func NewUserProfileUpdated(userID uuid.UUID, profile Profile, version int, metadata event.Metadata) *ProfileUpdated {
	return &ProfileUpdated{
		BaseEvent: event.NewBaseEvent(EventTypeUserProfileUpdated, userID.String(), AggregateType, version, metadata),
		FirstName: profile.FirstName(),
		LastName:  profile.LastName(),
		Bio:       profile.Bio(),
	}
}

// EmailChanged is emitted when a user's email address changes.
// The old address is retained for audit trails.
type EmailChanged struct {
	event.BaseEvent

	OldEmail string
	NewEmail string
}

// NewUserEmailChanged creates a UserEmailChanged event.
func NewUserEmailChanged(userID uuid.UUID, oldEmail, newEmail EmailAddress, version int, metadata event.Metadata) *EmailChanged {
	return &EmailChanged{
		BaseEvent: event.NewBaseEvent(EventTypeUserEmailChanged, userID.String(), AggregateType, version, metadata),
		OldEmail:  oldEmail.String(),
		NewEmail:  newEmail.String(),
	}
}
