package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/course"
)

// UpdateCourseUseCase handles course title and description changes.
type UpdateCourseUseCase struct {
	courses course.Repository
}

// NewUpdateCourseUseCase creates a new UpdateCourseUseCase
func NewUpdateCourseUseCase(courses course.Repository) *UpdateCourseUseCase {
	return &UpdateCourseUseCase{courses: courses}
}

// Execute updates the course. Retitling to a title held by another course
// is rejected.
func (uc *UpdateCourseUseCase) Execute(ctx context.Context, cmd UpdateCourseCommand) (Result, error) {
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

	agg, err := uc.courses.FindByID(ctx, cmd.CourseID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load course: %w", err)
	}

	other, err := uc.courses.FindByTitle(ctx, title)
	switch {
	case err == nil:
		if other.ID() != agg.ID() {
			return Result{}, fmt.Errorf("%w: %s", ErrTitleTaken, title)
		}
	case !errors.Is(err, appcore.ErrNotFound):
		return Result{}, fmt.Errorf("failed to check title uniqueness: %w", err)
	}

	if err = agg.Update(title, description); err != nil {
		return Result{}, fmt.Errorf("failed to update course: %w", err)
	}
	if err = uc.courses.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save course: %w", err)
	}

	return Result{Course: agg}, nil
}

func (uc *UpdateCourseUseCase) validate(cmd UpdateCourseCommand) error {
	if err := appcore.ValidateUUID("courseID", cmd.CourseID); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("title", cmd.Title); err != nil {
		return err
	}
	return appcore.ValidateRequired("description", cmd.Description)
}
