package policy

import (
	"context"
)

// ListPolicyUsageUseCase serves the policy usage read model.
type ListPolicyUsageUseCase struct {
	usage UsageReader
}

// NewListPolicyUsageUseCase creates a new ListPolicyUsageUseCase
func NewListPolicyUsageUseCase(usage UsageReader) *ListPolicyUsageUseCase {
	return &ListPolicyUsageUseCase{usage: usage}
}

// Execute returns every policy with its assigned course count, ordered by name.
func (uc *ListPolicyUsageUseCase) Execute(_ context.Context, _ ListPolicyUsageQuery) (UsageResult, error) {
	rows := uc.usage.Usage()

	return UsageResult{
		Policies:   rows,
		TotalCount: len(rows),
	}, nil
}
