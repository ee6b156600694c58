package policy

import (
	"context"

	"github.com/coursery/coursery/internal/domain/uuid"
)

// Repository defines storage access for RefundPolicy aggregates.
type Repository interface {
	// FindByID finds a policy by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Aggregate, error)

	// FindByName finds a policy by exact name.
	FindByName(ctx context.Context, name Name) (*Aggregate, error)

	// Save persists the aggregate's uncommitted events and publishes them.
	Save(ctx context.Context, policy *Aggregate) error

	// List returns policies with pagination.
	List(ctx context.Context, offset, limit int) ([]*Aggregate, error)

	// Count returns the total number of policies.
	Count(ctx context.Context) (int, error)
}
