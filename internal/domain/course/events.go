package course

import (
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// AggregateType identifies course events in envelopes and projections.
const AggregateType = "Course"

// Event types
const (
	EventTypeCourseCreated       = "course.created"
	EventTypeCourseUpdated       = "course.updated"
	EventTypeCoursePolicyChanged = "course.policy_changed"
	EventTypeCourseDeprecated    = "course.deprecated"
)

// Created is emitted when a new course is published to the catalog.
type Created struct {
	event.BaseEvent

	Title       string
	Description string
	Price       money.Money
	AccessType  AccessType
	PolicyID    uuid.UUID
}

// NewCourseCreated creates a CourseCreated event.
func NewCourseCreated(
	courseID uuid.UUID,
	title Title,
	description Description,
	price money.Money,
	accessType AccessType,
	policyID uuid.UUID,
	version int,
	metadata event.Metadata,
) *Created {
	return &Created{
		BaseEvent:   event.NewBaseEvent(EventTypeCourseCreated, courseID.String(), AggregateType, version, metadata),
		Title:       title.String(),
		Description: description.String(),
		Price:       price,
		AccessType:  accessType,
		PolicyID:    policyID,
	}
}

// Updated is emitted when course details change.
type Updated struct {
	event.BaseEvent

	Title       string
	Description string
}

// NewCourseUpdated creates a CourseUpdated event.
func NewCourseUpdated(courseID uuid.UUID, title Title, description Description, version int, metadata event.Metadata) *Updated {
	return &Updated{
		BaseEvent:   event.NewBaseEvent(EventTypeCourseUpdated, courseID.String(), AggregateType, version, metadata),
		Title:       title.String(),
		Description: description.String(),
	}
}

// PolicyChanged is emitted when a course switches refund policies.
type PolicyChanged struct {
	event.BaseEvent

	OldPolicyID uuid.UUID
	NewPolicyID uuid.UUID
}

// NewCoursePolicyChanged creates a CoursePolicyChanged event.
func NewCoursePolicyChanged(courseID, oldPolicyID, newPolicyID uuid.UUID, version int, metadata event.Metadata) *PolicyChanged {
	return &PolicyChanged{
		BaseEvent:   event.NewBaseEvent(EventTypeCoursePolicyChanged, courseID.String(), AggregateType, version, metadata),
		OldPolicyID: oldPolicyID,
		NewPolicyID: newPolicyID,
	}
}

// Deprecated is emitted when a course is withdrawn from sale.
type Deprecated struct {
	event.BaseEvent

	Title string
}

// NewCourseDeprecated creates a CourseDeprecated event.
func NewCourseDeprecated(courseID uuid.UUID, title Title, version int, metadata event.Metadata) *Deprecated {
	return &Deprecated{
		BaseEvent: event.NewBaseEvent(EventTypeCourseDeprecated, courseID.String(), AggregateType, version, metadata),
		Title:     title.String(),
	}
}
