package order

import (
	"context"

	"github.com/coursery/coursery/internal/domain/uuid"
)

// Repository defines storage access for Order aggregates.
type Repository interface {
	// FindByID finds an order by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Aggregate, error)

	// FindByUser finds a user's orders with pagination, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*Aggregate, error)

	// FindByStatus finds orders in the given status with pagination.
	FindByStatus(ctx context.Context, status Status, offset, limit int) ([]*Aggregate, error)

	// FindPendingByUserCourse finds a pending order for the same user that
	// already contains the given course. Used for duplicate-order checks.
	FindPendingByUserCourse(ctx context.Context, userID, courseID uuid.UUID) (*Aggregate, error)

	// Save persists the aggregate's uncommitted events and publishes them.
	Save(ctx context.Context, order *Aggregate) error

	// Count returns the total number of orders.
	Count(ctx context.Context) (int, error)
}
