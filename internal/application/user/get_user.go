package user

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/user"
)

// GetUserUseCase serves a single user by ID.
type GetUserUseCase struct {
	users user.Repository
}

// NewGetUserUseCase creates a new GetUserUseCase
func NewGetUserUseCase(users user.Repository) *GetUserUseCase {
	return &GetUserUseCase{users: users}
}

// Execute returns the user for the given ID.
func (uc *GetUserUseCase) Execute(ctx context.Context, query GetUserQuery) (Result, error) {
	if err := appcore.ValidateUUID("userID", query.UserID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	agg, err := uc.users.FindByID(ctx, query.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load user: %w", err)
	}

	return Result{User: agg}, nil
}
