package user

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/user"
)

// GetUserByEmailUseCase serves a single user by email address.
type GetUserByEmailUseCase struct {
	users user.Repository
}

// NewGetUserByEmailUseCase creates a new GetUserByEmailUseCase
func NewGetUserByEmailUseCase(users user.Repository) *GetUserByEmailUseCase {
	return &GetUserByEmailUseCase{users: users}
}

// Execute returns the user registered under the given address.
func (uc *GetUserByEmailUseCase) Execute(ctx context.Context, query GetUserByEmailQuery) (Result, error) {
	if err := appcore.ValidateRequired("email", query.Email); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	address, err := user.NewEmailAddress(query.Email)
	if err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.users.FindByEmail(ctx, address)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load user: %w", err)
	}

	return Result{User: agg}, nil
}
