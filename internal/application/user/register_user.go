package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/user"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// RegisterUserUseCase handles new user registration.
type RegisterUserUseCase struct {
	users user.Repository
}

// NewRegisterUserUseCase creates a new RegisterUserUseCase
func NewRegisterUserUseCase(users user.Repository) *RegisterUserUseCase {
	return &RegisterUserUseCase{users: users}
}

// Execute registers the user after checking email uniqueness.
func (uc *RegisterUserUseCase) Execute(ctx context.Context, cmd RegisterUserCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	address, err := user.NewEmailAddress(cmd.Email)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}
	profile, err := user.NewProfile(cmd.FirstName, cmd.LastName, cmd.Bio)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	_, err = uc.users.FindByEmail(ctx, address)
	switch {
	case err == nil:
		return Result{}, fmt.Errorf("%w: %s", ErrEmailTaken, address)
	case !errors.Is(err, appcore.ErrNotFound):
		return Result{}, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	agg := user.NewAggregate(uuid.NewUUID())
	if err = agg.Register(address, profile); err != nil {
		return Result{}, fmt.Errorf("failed to register user: %w", err)
	}
	if err = uc.users.Save(ctx, agg); err != nil {
		return Result{}, fmt.Errorf("failed to save user: %w", err)
	}

	return Result{User: agg}, nil
}

func (uc *RegisterUserUseCase) validate(cmd RegisterUserCommand) error {
	if err := appcore.ValidateRequired("email", cmd.Email); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("firstName", cmd.FirstName); err != nil {
		return err
	}
	return appcore.ValidateRequired("lastName", cmd.LastName)
}
