package user

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/user"
)

const (
	// MaxListLimit is the maximum page size for user listings.
	MaxListLimit = 100
)

// ListUsersUseCase serves a paginated user listing.
type ListUsersUseCase struct {
	users user.Repository
}

// NewListUsersUseCase creates a new ListUsersUseCase
func NewListUsersUseCase(users user.Repository) *ListUsersUseCase {
	return &ListUsersUseCase{users: users}
}

// Execute returns a page of users.
func (uc *ListUsersUseCase) Execute(ctx context.Context, query ListUsersQuery) (ListResult, error) {
	if err := uc.validate(query); err != nil {
		return ListResult{}, fmt.Errorf("validation failed: %w", err)
	}

	total, err := uc.users.Count(ctx)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to count users: %w", err)
	}

	page, err := uc.users.List(ctx, query.Offset, query.Limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list users: %w", err)
	}

	return ListResult{
		Users:      page,
		TotalCount: total,
		Offset:     query.Offset,
		Limit:      query.Limit,
	}, nil
}

func (uc *ListUsersUseCase) validate(query ListUsersQuery) error {
	if err := appcore.ValidateNonNegative("offset", query.Offset); err != nil {
		return err
	}
	return appcore.ValidateRange("limit", query.Limit, 1, MaxListLimit)
}
