package course

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/course"
)

// DeprecateCourseUseCase handles withdrawing a course from sale.
type DeprecateCourseUseCase struct {
	courses course.Repository
}

// NewDeprecateCourseUseCase creates a new DeprecateCourseUseCase
func NewDeprecateCourseUseCase(courses course.Repository) *DeprecateCourseUseCase {
	return &DeprecateCourseUseCase{courses: courses}
}

// Execute deprecates the course. Access already granted is unaffected.
func (uc *DeprecateCourseUseCase) Execute(ctx context.Context, cmd DeprecateCourseCommand) (Result, error) {
	if err := appcore.ValidateUUID("courseID", cmd.CourseID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.courses.FindByID(ctx, cmd.CourseID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load course: %w", err)
	}

	if err = agg.Deprecate(); err != nil {
		return Result{}, fmt.Errorf("failed to deprecate course: %w", err)
	}
	if err = uc.courses.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save course: %w", err)
	}

	return Result{Course: agg}, nil
}
