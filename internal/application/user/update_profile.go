package user

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/user"
)

// UpdateProfileUseCase handles profile updates.
type UpdateProfileUseCase struct {
	users user.Repository
}

// NewUpdateProfileUseCase creates a new UpdateProfileUseCase
func NewUpdateProfileUseCase(users user.Repository) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{users: users}
}

// Execute replaces the user's profile.
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, cmd UpdateProfileCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	profile, err := user.NewProfile(cmd.FirstName, cmd.LastName, cmd.Bio)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.users.FindByID(ctx, cmd.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err = agg.UpdateProfile(profile); err != nil {
		return Result{}, fmt.Errorf("failed to update profile: %w", err)
	}
	if err = uc.users.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save user: %w", err)
	}

	return Result{User: agg}, nil
}

func (uc *UpdateProfileUseCase) validate(cmd UpdateProfileCommand) error {
	if err := appcore.ValidateUUID("userID", cmd.UserID); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("firstName", cmd.FirstName); err != nil {
		return err
	}
	return appcore.ValidateRequired("lastName", cmd.LastName)
}
