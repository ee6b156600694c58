package user

import (
	"context"

	"github.com/coursery/coursery/internal/domain/uuid"
)

// Repository defines storage access for User aggregates.
type Repository interface {
	// FindByID finds a user by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Aggregate, error)

	// FindByEmail finds a user by normalized email address.
	FindByEmail(ctx context.Context, email EmailAddress) (*Aggregate, error)

	// Save persists the aggregate's uncommitted events and publishes them.
	Save(ctx context.Context, user *Aggregate) error

	// List returns users with pagination.
	List(ctx context.Context, offset, limit int) ([]*Aggregate, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}
