package policy

import (
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Query is the base interface for policy queries.
type Query interface {
	QueryName() string
}

// GetPolicyQuery fetches a single policy by ID.
type GetPolicyQuery struct {
	PolicyID uuid.UUID
}

func (q GetPolicyQuery) QueryName() string { return "GetPolicy" }

// ListPolicyUsageQuery fetches usage rows for every policy.
type ListPolicyUsageQuery struct{}

func (q ListPolicyUsageQuery) QueryName() string { return "ListPolicyUsage" }

// UsageReader serves policy usage read models built from the event stream.
// The interface is declared on the consumer side; the policy usage
// projection satisfies it.
type UsageReader interface {
	Policy(policyID string) (projection.PolicyUsageView, bool)
	Usage() []projection.PolicyUsageView
}
