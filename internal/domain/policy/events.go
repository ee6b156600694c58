package policy

import (
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// AggregateType identifies policy events in envelopes and projections.
const AggregateType = "RefundPolicy"

// Event types
const (
	EventTypePolicyCreated     = "policy.created"
	EventTypePolicyUpdated     = "policy.updated"
	EventTypePolicyDeprecated  = "policy.deprecated"
	EventTypePolicyReactivated = "policy.reactivated"
)

// Created is emitted when a new refund policy is defined.
type Created struct {
	event.BaseEvent

	Name             string
	PolicyType       Type
	RefundPeriodDays int
	Conditions       string
}

// NewPolicyCreated creates a PolicyCreated event.
func NewPolicyCreated(
	policyID uuid.UUID,
	name Name,
	policyType Type,
	period RefundPeriod,
	conditions Conditions,
	version int,
	metadata event.Metadata,
) *Created {
	return &Created{
		BaseEvent:        event.NewBaseEvent(EventTypePolicyCreated, policyID.String(), AggregateType, version, metadata),
		Name:             name.String(),
		PolicyType:       policyType,
		RefundPeriodDays: period.Days(),
		Conditions:       conditions.String(),
	}
}

// Updated is emitted when policy terms change.
type Updated struct {
	event.BaseEvent

	Name             string
	RefundPeriodDays int
	Conditions       string
}

// NewPolicyUpdated creates a PolicyUpdated event.
func NewPolicyUpdated(policyID uuid.UUID, name Name, period RefundPeriod, conditions Conditions, version int, metadata event.Metadata) *Updated {
	return &Updated{
		BaseEvent:        event.NewBaseEvent(EventTypePolicyUpdated, policyID.String(), AggregateType, version, metadata),
		Name:             name.String(),
		RefundPeriodDays: period.Days(),
		Conditions:       conditions.String(),
	}
}

// Deprecated is emitted when a policy is retired from new assignments.
type Deprecated struct {
	event.BaseEvent

	Name string
}

// NewPolicyDeprecated creates a PolicyDeprecated event.
func NewPolicyDeprecated(policyID uuid.UUID, name Name, version int, metadata event.Metadata) *Deprecated {
	return &Deprecated{
		BaseEvent: event.NewBaseEvent(EventTypePolicyDeprecated, policyID.String(), AggregateType, version, metadata),
		Name:      name.String(),
	}
}

// Reactivated is emitted when a deprecated policy returns to service.
type Reactivated struct {
	event.BaseEvent

	Name string
}

// NewPolicyReactivated creates a PolicyReactivated event.
func NewPolicyReactivated(policyID uuid.UUID, name Name, version int, metadata event.Metadata) *Reactivated {
	return &Reactivated{
		BaseEvent: event.NewBaseEvent(EventTypePolicyReactivated, policyID.String(), AggregateType, version, metadata),
		Name:      name.String(),
	}
}
