package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/user"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// GrantAccessUseCase handles manual access grants.
type GrantAccessUseCase struct {
	records access.Repository
	users   user.Repository
	courses course.Repository
}

// NewGrantAccessUseCase creates a new GrantAccessUseCase
func NewGrantAccessUseCase(
	records access.Repository,
	users user.Repository,
	courses course.Repository,
) *GrantAccessUseCase {
	return &GrantAccessUseCase{
		records: records,
		users:   users,
		courses: courses,
	}
}

// Execute grants access after checking the user and course exist and no
// record for the pair exists yet.
func (uc *GrantAccessUseCase) Execute(ctx context.Context, cmd GrantAccessCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := uc.users.FindByID(ctx, cmd.UserID); err != nil {
		return Result{}, fmt.Errorf("failed to load user: %w", err)
	}
	if _, err := uc.courses.FindByID(ctx, cmd.CourseID); err != nil {
		return Result{}, fmt.Errorf("failed to load course: %w", err)
	}

	_, err := uc.records.FindByUserAndCourse(ctx, cmd.UserID, cmd.CourseID)
	switch {
	case err == nil:
		return Result{}, ErrAccessExists
	case !errors.Is(err, appcore.ErrNotFound):
		return Result{}, fmt.Errorf("failed to check existing access: %w", err)
	}

	agg := access.NewAggregate(uuid.NewUUID())
	if err = agg.Grant(cmd.UserID, cmd.CourseID, time.Now(), cmd.ExpiresAt); err != nil {
		return Result{}, fmt.Errorf("failed to grant access: %w", err)
	}
	if err = uc.records.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save access record: %w", err)
	}

	return Result{Record: agg}, nil
}

func (uc *GrantAccessUseCase) validate(cmd GrantAccessCommand) error {
	if err := appcore.ValidateUUID("userID", cmd.UserID); err != nil {
		return err
	}
	return appcore.ValidateUUID("courseID", cmd.CourseID)
}
