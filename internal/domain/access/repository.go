package access

import (
	"context"
	"time"

	"github.com/coursery/coursery/internal/domain/uuid"
)

// Repository defines storage access for AccessRecord aggregates.
type Repository interface {
	// FindByID finds an access record by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Aggregate, error)

	// FindByUserAndCourse finds the single access record for a user and course.
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*Aggregate, error)

	// FindByUser finds all access records of a user.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Aggregate, error)

	// FindDueForExpiry finds active, time-limited records whose expiry has
	// passed as of now.
	FindDueForExpiry(ctx context.Context, now time.Time) ([]*Aggregate, error)

	// Save persists the aggregate's uncommitted events and publishes them.
	Save(ctx context.Context, record *Aggregate) error

	// Count returns the total number of access records.
	Count(ctx context.Context) (int, error)
}
