package policy

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/policy"
)

// ReactivatePolicyUseCase handles returning a deprecated policy to service.
type ReactivatePolicyUseCase struct {
	policies policy.Repository
}

// NewReactivatePolicyUseCase creates a new ReactivatePolicyUseCase
func NewReactivatePolicyUseCase(policies policy.Repository) *ReactivatePolicyUseCase {
	return &ReactivatePolicyUseCase{policies: policies}
}

// Execute reactivates a deprecated policy.
func (uc *ReactivatePolicyUseCase) Execute(ctx context.Context, cmd ReactivatePolicyCommand) (Result, error) {
	if err := appcore.ValidateUUID("policyID", cmd.PolicyID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.policies.FindByID(ctx, cmd.PolicyID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load policy: %w", err)
	}

	if err = agg.Reactivate(); err != nil {
		return Result{}, fmt.Errorf("failed to reactivate policy: %w", err)
	}
	if err = uc.policies.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save policy: %w", err)
	}

	return Result{Policy: agg}, nil
}
