package policy

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/policy"
)

// DeprecatePolicyUseCase handles retiring a policy.
type DeprecatePolicyUseCase struct {
	policies policy.Repository
}

// NewDeprecatePolicyUseCase creates a new DeprecatePolicyUseCase
func NewDeprecatePolicyUseCase(policies policy.Repository) *DeprecatePolicyUseCase {
	return &DeprecatePolicyUseCase{policies: policies}
}

// Execute deprecates the policy. New courses can no longer be assigned to
// it; refund checks against it start refusing.
func (uc *DeprecatePolicyUseCase) Execute(ctx context.Context, cmd DeprecatePolicyCommand) (Result, error) {
	if err := appcore.ValidateUUID("policyID", cmd.PolicyID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.policies.FindByID(ctx, cmd.PolicyID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load policy: %w", err)
	}

	if err = agg.Deprecate(); err != nil {
		return Result{}, fmt.Errorf("failed to deprecate policy: %w", err)
	}
	if err = uc.policies.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save policy: %w", err)
	}

	return Result{Policy: agg}, nil
}
