package access

import (
	"time"

	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// AggregateType identifies access events in envelopes and projections.
const AggregateType = "AccessRecord"

// Event types
const (
	EventTypeAccessGranted     = "access.granted"
	EventTypeAccessRevoked     = "access.revoked"
	EventTypeAccessExpired     = "access.expired"
	EventTypeAccessReactivated = "access.reactivated"
	EventTypeProgressUpdated   = "access.progress_updated"
	EventTypeCourseCompleted   = "access.course_completed"
)

// Granted is emitted when a user receives access to a course.
type Granted struct {
	event.BaseEvent

	UserID      uuid.UUID
	CourseID    uuid.UUID
	PurchasedAt time.Time
	ExpiresAt   *time.Time
}

// NewAccessGranted creates a CourseAccessGranted event.
func NewAccessGranted(
	accessID, userID, courseID uuid.UUID,
	purchasedAt time.Time,
	expiresAt *time.Time,
	version int,
	metadata event.Metadata,
) *Granted {
	return &Granted{
		BaseEvent:   event.NewBaseEvent(EventTypeAccessGranted, accessID.String(), AggregateType, version, metadata),
		UserID:      userID,
		CourseID:    courseID,
		PurchasedAt: purchasedAt,
		ExpiresAt:   expiresAt,
	}
}

// Revoked is emitted when access is withdrawn, typically after a refund.
type Revoked struct {
	event.BaseEvent

	UserID   uuid.UUID
	CourseID uuid.UUID
	Reason   string
}

// NewAccessRevoked creates an AccessRevoked event.
func NewAccessRevoked(accessID, userID, courseID uuid.UUID, reason string, version int, metadata event.Metadata) *Revoked {
	return &Revoked{
		BaseEvent: event.NewBaseEvent(EventTypeAccessRevoked, accessID.String(), AggregateType, version, metadata),
		UserID:    userID,
		CourseID:  courseID,
		Reason:    reason,
	}
}

// Expired is emitted when time-limited access passes its expiry.
type Expired struct {
	event.BaseEvent

	UserID    uuid.UUID
	CourseID  uuid.UUID
	ExpiredAt time.Time
}

// NewAccessExpired creates an AccessExpired event.
func NewAccessExpired(accessID, userID, courseID uuid.UUID, expiredAt time.Time, version int, metadata event.Metadata) *Expired {
	return &Expired{
		BaseEvent: event.NewBaseEvent(EventTypeAccessExpired, accessID.String(), AggregateType, version, metadata),
		UserID:    userID,
		CourseID:  courseID,
		ExpiredAt: expiredAt,
	}
}

// Reactivated is emitted when expired or revoked access is restored,
// for example after a re-purchase.
type Reactivated struct {
	event.BaseEvent

	UserID    uuid.UUID
	CourseID  uuid.UUID
	ExpiresAt *time.Time
}

// NewAccessReactivated creates an AccessReactivated event.
func NewAccessReactivated(accessID, userID, courseID uuid.UUID, expiresAt *time.Time, version int, metadata event.Metadata) *Reactivated {
	return &Reactivated{
		BaseEvent: event.NewBaseEvent(EventTypeAccessReactivated, accessID.String(), AggregateType, version, metadata),
		UserID:    userID,
		CourseID:  courseID,
		ExpiresAt: expiresAt,
	}
}

// ProgressUpdated is emitted when a learner advances through a course.
type ProgressUpdated struct {
	event.BaseEvent

	UserID   uuid.UUID
	CourseID uuid.UUID
	Progress Progress
}

// NewProgressUpdated creates a ProgressUpdated event.
func NewProgressUpdated(accessID, userID, courseID uuid.UUID, progress Progress, version int, metadata event.Metadata) *ProgressUpdated {
	return &ProgressUpdated{
		BaseEvent: event.NewBaseEvent(EventTypeProgressUpdated, accessID.String(), AggregateType, version, metadata),
		UserID:    userID,
		CourseID:  courseID,
		Progress:  progress,
	}
}

// CourseCompleted is emitted once, when progress first reaches 100.
type CourseCompleted struct {
	event.BaseEvent

	UserID   uuid.UUID
	CourseID uuid.UUID
}

// NewCourseCompleted creates a CourseCompleted event.
func NewCourseCompleted(accessID, userID, courseID uuid.UUID, version int, metadata event.Metadata) *CourseCompleted {
	return &CourseCompleted{
		BaseEvent: event.NewBaseEvent(EventTypeCourseCompleted, accessID.String(), AggregateType, version, metadata),
		UserID:    userID,
		CourseID:  courseID,
	}
}
