package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/policy"
)

// UpdatePolicyUseCase handles changing a policy's terms.
type UpdatePolicyUseCase struct {
	policies policy.Repository
}

// NewUpdatePolicyUseCase creates a new UpdatePolicyUseCase
func NewUpdatePolicyUseCase(policies policy.Repository) *UpdatePolicyUseCase {
	return &UpdatePolicyUseCase{policies: policies}
}

// Execute renames the policy and replaces its refund window and conditions.
// Refund checks always use the current terms, so the new window applies to
// past purchases as well.
func (uc *UpdatePolicyUseCase) Execute(ctx context.Context, cmd UpdatePolicyCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	name, err := policy.NewName(cmd.Name)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}
	period, err := policy.NewRefundPeriod(cmd.RefundPeriodDays)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}
	conditions, err := policy.NewConditions(cmd.Conditions)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.policies.FindByID(ctx, cmd.PolicyID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load policy: %w", err)
	}

	other, err := uc.policies.FindByName(ctx, name)
	switch {
	case err == nil && other.ID() != agg.ID():
		return Result{}, fmt.Errorf("%w: %s", ErrNameTaken, name)
	case err != nil && !errors.Is(err, appcore.ErrNotFound):
		return Result{}, fmt.Errorf("failed to check name uniqueness: %w", err)
	}

	if err = agg.Update(name, period, conditions); err != nil {
		return Result{}, fmt.Errorf("failed to update policy: %w", err)
	}
	if err = uc.policies.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save policy: %w", err)
	}

	return Result{Policy: agg}, nil
}

func (uc *UpdatePolicyUseCase) validate(cmd UpdatePolicyCommand) error {
	if err := appcore.ValidateUUID("policyID", cmd.PolicyID); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("name", cmd.Name); err != nil {
		return err
	}
	if err := appcore.ValidateNonNegative("refundPeriodDays", cmd.RefundPeriodDays); err != nil {
		return err
	}
	return appcore.ValidateRequired("conditions", cmd.Conditions)
}
