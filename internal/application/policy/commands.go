package policy

import "github.com/coursery/coursery/internal/domain/uuid"

// Command is the base interface for policy commands.
type Command interface {
	CommandName() string
}

// CreatePolicyCommand defines a new refund policy.
type CreatePolicyCommand struct {
	Name             string
	PolicyType       string
	RefundPeriodDays int
	Conditions       string
}

func (c CreatePolicyCommand) CommandName() string { return "CreatePolicy" }

// UpdatePolicyCommand changes a policy's name, refund window and conditions.
// The type is fixed at creation.
type UpdatePolicyCommand struct {
	PolicyID         uuid.UUID
	Name             string
	RefundPeriodDays int
	Conditions       string
}

func (c UpdatePolicyCommand) CommandName() string { return "UpdatePolicy" }

// DeprecatePolicyCommand retires a policy from new course assignments.
// Courses already using it keep their recorded terms.
type DeprecatePolicyCommand struct {
	PolicyID uuid.UUID
}

func (c DeprecatePolicyCommand) CommandName() string { return "DeprecatePolicy" }

// ReactivatePolicyCommand returns a deprecated policy to service.
type ReactivatePolicyCommand struct {
	PolicyID uuid.UUID
}

func (c ReactivatePolicyCommand) CommandName() string { return "ReactivatePolicy" }
