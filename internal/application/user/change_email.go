package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/user"
)

// ChangeEmailUseCase handles switching a user to a new email address.
type ChangeEmailUseCase struct {
	users user.Repository
}

// NewChangeEmailUseCase creates a new ChangeEmailUseCase
func NewChangeEmailUseCase(users user.Repository) *ChangeEmailUseCase {
	return &ChangeEmailUseCase{users: users}
}

// Execute changes the user's email after checking the new address is free.
// Changing to the current address is accepted and changes nothing.
func (uc *ChangeEmailUseCase) Execute(ctx context.Context, cmd ChangeEmailCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	address, err := user.NewEmailAddress(cmd.NewEmail)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.users.FindByID(ctx, cmd.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load user: %w", err)
	}

	existing, err := uc.users.FindByEmail(ctx, address)
	switch {
	case err == nil:
		if existing.ID() != agg.ID() {
			return Result{}, fmt.Errorf("%w: %s", ErrEmailTaken, address)
		}
	case !errors.Is(err, appcore.ErrNotFound):
		return Result{}, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	if err = agg.ChangeEmail(address); err != nil {
		return Result{}, fmt.Errorf("failed to change email: %w", err)
	}
	if err = uc.users.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save user: %w", err)
	}

	return Result{User: agg}, nil
}

func (uc *ChangeEmailUseCase) validate(cmd ChangeEmailCommand) error {
	if err := appcore.ValidateUUID("userID", cmd.UserID); err != nil {
		return err
	}
	return appcore.ValidateRequired("newEmail", cmd.NewEmail)
}
