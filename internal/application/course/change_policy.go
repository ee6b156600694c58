package course

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/policy"
)

// ChangePolicyUseCase handles assigning a different refund policy to a course.
type ChangePolicyUseCase struct {
	courses  course.Repository
	policies policy.Repository
}

// NewChangePolicyUseCase creates a new ChangePolicyUseCase
func NewChangePolicyUseCase(courses course.Repository, policies policy.Repository) *ChangePolicyUseCase {
	return &ChangePolicyUseCase{courses: courses, policies: policies}
}

// Execute reassigns the course's refund policy. Assigning the current policy
// is accepted and changes nothing. The policy applies to future purchases
// only; refund checks for existing purchases use the policy captured at
// purchase time.
func (uc *ChangePolicyUseCase) Execute(ctx context.Context, cmd ChangePolicyCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.courses.FindByID(ctx, cmd.CourseID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load course: %w", err)
	}

	pol, err := uc.policies.FindByID(ctx, cmd.NewPolicyID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load refund policy: %w", err)
	}
	if !pol.CanBeAssigned() {
		return Result{}, fmt.Errorf("%w: %s", ErrPolicyNotAssignable, pol.Name())
	}

	if err = agg.ChangePolicy(pol.ID()); err != nil {
		return Result{}, fmt.Errorf("failed to change policy: %w", err)
	}
	if err = uc.courses.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save course: %w", err)
	}

	return Result{Course: agg}, nil
}

func (uc *ChangePolicyUseCase) validate(cmd ChangePolicyCommand) error {
	if err := appcore.ValidateUUID("courseID", cmd.CourseID); err != nil {
		return err
	}
	return appcore.ValidateUUID("newPolicyID", cmd.NewPolicyID)
}
