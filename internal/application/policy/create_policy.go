package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// CreatePolicyUseCase handles defining a new refund policy.
type CreatePolicyUseCase struct {
	policies policy.Repository
}

// NewCreatePolicyUseCase creates a new CreatePolicyUseCase
func NewCreatePolicyUseCase(policies policy.Repository) *CreatePolicyUseCase {
	return &CreatePolicyUseCase{policies: policies}
}

// Execute creates the policy after checking name uniqueness.
func (uc *CreatePolicyUseCase) Execute(ctx context.Context, cmd CreatePolicyCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	name, err := policy.NewName(cmd.Name)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}
	policyType, err := policy.ParseType(cmd.PolicyType)
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

	_, err = uc.policies.FindByName(ctx, name)
	switch {
	case err == nil:
		return Result{}, fmt.Errorf("%w: %s", ErrNameTaken, name)
	case !errors.Is(err, appcore.ErrNotFound):
		return Result{}, fmt.Errorf("failed to check name uniqueness: %w", err)
	}

	agg := policy.NewAggregate(uuid.NewUUID())
	if err = agg.Create(name, policyType, period, conditions); err != nil {
		return Result{}, fmt.Errorf("failed to create policy: %w", err)
	}
	if err = uc.policies.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save policy: %w", err)
	}

	return Result{Policy: agg}, nil
}

func (uc *CreatePolicyUseCase) validate(cmd CreatePolicyCommand) error {
	if err := appcore.ValidateRequired("name", cmd.Name); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("policyType", cmd.PolicyType); err != nil {
		return err
	}
	if err := appcore.ValidateNonNegative("refundPeriodDays", cmd.RefundPeriodDays); err != nil {
		return err
	}
	return appcore.ValidateRequired("conditions", cmd.Conditions)
}
