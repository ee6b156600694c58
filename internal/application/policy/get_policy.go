package policy

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/policy"
)

// GetPolicyUseCase handles fetching a single policy.
type GetPolicyUseCase struct {
	policies policy.Repository
}

// NewGetPolicyUseCase creates a new GetPolicyUseCase
func NewGetPolicyUseCase(policies policy.Repository) *GetPolicyUseCase {
	return &GetPolicyUseCase{policies: policies}
}

// Execute loads the policy aggregate by ID.
func (uc *GetPolicyUseCase) Execute(ctx context.Context, query GetPolicyQuery) (Result, error) {
	if err := appcore.ValidateUUID("policyID", query.PolicyID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.policies.FindByID(ctx, query.PolicyID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load policy: %w", err)
	}

	return Result{Policy: agg}, nil
}
