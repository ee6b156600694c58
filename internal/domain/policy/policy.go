// Package policy contains the RefundPolicy aggregate: the time-window and
// conditions rules that decide refund eligibility.
package policy

import (
	"fmt"
	"time"

	"github.com/coursery/coursery/internal/domain/errs"
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// MaxRefundableProgress is the completion percentage at which refunds stop.
const MaxRefundableProgress = 100

// Aggregate is the event-sourced RefundPolicy aggregate.
type Aggregate struct {
	id uuid.UUID

	name       Name
	policyType Type
	period     RefundPeriod
	conditions Conditions
	status     Status

	version           int
	uncommittedEvents []event.DomainEvent
}

// NewAggregate creates an empty RefundPolicy aggregate ready for Create or replay.
func NewAggregate(id uuid.UUID) *Aggregate {
	return &Aggregate{
		id:                id,
		uncommittedEvents: make([]event.DomainEvent, 0),
	}
}

// Create defines a new refund policy.
func (a *Aggregate) Create(name Name, policyType Type, period RefundPeriod, conditions Conditions) error {
	if a.version > 0 {
		return errs.ErrAlreadyExists
	}
	if name.IsZero() {
		return fmt.Errorf("%w: policy name is required", errs.ErrInvalidInput)
	}
	if _, err := ParseType(policyType.String()); err != nil {
		return err
	}
	if conditions.IsZero() {
		return fmt.Errorf("%w: policy conditions are required", errs.ErrInvalidInput)
	}

	evt := NewPolicyCreated(a.id, name, policyType, period, conditions, a.nextVersion(), a.newMetadata())
	a.apply(evt)

	return nil
}

// Update changes the policy's name, refund window and conditions.
func (a *Aggregate) Update(name Name, period RefundPeriod, conditions Conditions) error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if a.status != StatusActive {
		return fmt.Errorf("%w: cannot update a %s policy", errs.ErrInvalidState, a.status)
	}
	if name.IsZero() {
		return fmt.Errorf("%w: policy name is required", errs.ErrInvalidInput)
	}
	if conditions.IsZero() {
		return fmt.Errorf("%w: policy conditions are required", errs.ErrInvalidInput)
	}

	evt := NewPolicyUpdated(a.id, name, period, conditions, a.nextVersion(), a.newMetadata())
	a.apply(evt)

	return nil
}

// Deprecate retires the policy from new course assignments.
func (a *Aggregate) Deprecate() error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if a.status == StatusDeprecated {
		return fmt.Errorf("%w: policy is already deprecated", errs.ErrInvalidState)
	}

	evt := NewPolicyDeprecated(a.id, a.name, a.nextVersion(), a.newMetadata())
	a.apply(evt)

	return nil
}

// Reactivate returns a deprecated policy to service.
func (a *Aggregate) Reactivate() error {
	if a.version == 0 {
		return errs.ErrNotFound
	}
	if a.status != StatusDeprecated {
		return fmt.Errorf("%w: can only reactivate a deprecated policy", errs.ErrInvalidState)
	}

	evt := NewPolicyReactivated(a.id, a.name, a.nextVersion(), a.newMetadata())
	a.apply(evt)

	return nil
}

// IsRefundAllowed applies the policy rules to a purchase: the policy must be
// active, the purchase must still be inside the refund window, no_refund
// policies always refuse, and completed courses are not refundable.
func (a *Aggregate) IsRefundAllowed(purchasedAt, now time.Time, progress int) bool {
	if a.status != StatusActive {
		return false
	}
	if a.policyType == TypeNoRefund {
		return false
	}
	if !a.period.Contains(purchasedAt, now) {
		return false
	}
	return progress < MaxRefundableProgress
}

// CanBeAssigned reports whether new courses may use this policy.
func (a *Aggregate) CanBeAssigned() bool {
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
		a.name = Name(e.Name)
		a.policyType = e.PolicyType
		a.period = RefundPeriod{days: e.RefundPeriodDays}
		a.conditions = Conditions(e.Conditions)
		a.status = StatusActive

	case *Updated:
		a.name = Name(e.Name)
		a.period = RefundPeriod{days: e.RefundPeriodDays}
		a.conditions = Conditions(e.Conditions)

	case *Deprecated:
		a.status = StatusDeprecated

	case *Reactivated:
		a.status = StatusActive
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

// ID returns the policy ID.
func (a *Aggregate) ID() uuid.UUID { return a.id }

// Name returns the policy name.
func (a *Aggregate) Name() Name { return a.name }

// PolicyType returns the policy classification.
func (a *Aggregate) PolicyType() Type { return a.policyType }

// Period returns the refund window.
func (a *Aggregate) Period() RefundPeriod { return a.period }

// Conditions returns the terms text.
func (a *Aggregate) Conditions() Conditions { return a.conditions }

// Status returns the policy lifecycle status.
func (a *Aggregate) Status() Status { return a.status }

// Version returns the current aggregate version.
func (a *Aggregate) Version() int { return a.version }
