package course

import (
	"context"

	"github.com/coursery/coursery/internal/domain/uuid"
)

// Repository defines storage access for Course aggregates.
type Repository interface {
	// FindByID finds a course by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Aggregate, error)

	// FindByTitle finds a course by exact title.
	FindByTitle(ctx context.Context, title Title) (*Aggregate, error)

	// FindByPolicy finds courses assigned to a refund policy.
	FindByPolicy(ctx context.Context, policyID uuid.UUID) ([]*Aggregate, error)

	// Save persists the aggregate's uncommitted events and publishes them.
	Save(ctx context.Context, course *Aggregate) error

	// List returns courses with pagination.
	List(ctx context.Context, offset, limit int) ([]*Aggregate, error)

	// Count returns the total number of courses.
	Count(ctx context.Context) (int, error)
}
