package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// CreateCourseUseCase handles publishing a new course.
type CreateCourseUseCase struct {
	courses  course.Repository
	policies policy.Repository
}

// NewCreateCourseUseCase creates a new CreateCourseUseCase
func NewCreateCourseUseCase(courses course.Repository, policies policy.Repository) *CreateCourseUseCase {
	return &CreateCourseUseCase{courses: courses, policies: policies}
}

// Execute creates the course after checking title uniqueness and that the
// refund policy exists and is assignable.
func (uc *CreateCourseUseCase) Execute(ctx context.Context, cmd CreateCourseCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	title, err := course.NewTitle(cmd.Title)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}
	description, err := course.NewDescription(cmd.Description)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}
	price, err := money.NewFromString(cmd.Amount, cmd.Currency)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}
	accessType, err := course.ParseAccessType(cmd.AccessType)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	_, err = uc.courses.FindByTitle(ctx, title)
	switch {
	case err == nil:
		return Result{}, fmt.Errorf("%w: %s", ErrTitleTaken, title)
	case !errors.Is(err, appcore.ErrNotFound):
		return Result{}, fmt.Errorf("failed to check title uniqueness: %w", err)
	}

	pol, err := uc.policies.FindByID(ctx, cmd.PolicyID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load refund policy: %w", err)
	}
	if !pol.CanBeAssigned() {
		return Result{}, fmt.Errorf("%w: %s", ErrPolicyNotAssignable, pol.Name())
	}

	agg := course.NewAggregate(uuid.NewUUID())
	if err = agg.Create(title, description, price, accessType, pol.ID()); err != nil {
		return Result{}, fmt.Errorf("failed to create course: %w", err)
	}
	if err = uc.courses.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save course: %w", err)
	}

	return Result{Course: agg}, nil
}

func (uc *CreateCourseUseCase) validate(cmd CreateCourseCommand) error {
	if err := appcore.ValidateRequired("title", cmd.Title); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("description", cmd.Description); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("amount", cmd.Amount); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("currency", cmd.Currency); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("accessType", cmd.AccessType); err != nil {
		return err
	}
	return appcore.ValidateUUID("policyID", cmd.PolicyID)
}
