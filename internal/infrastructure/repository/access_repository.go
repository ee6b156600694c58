package repository

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// userCourseKey identifies the single access record a user holds per course.
type userCourseKey struct {
	userID   uuid.UUID
	courseID uuid.UUID
}

// MemoryAccessRepository implements access.Repository over the event store
// with in-memory indexes by user and a unique user-course index.
type MemoryAccessRepository struct {
	eventStore appcore.EventStore
	bus        EventPublisher
	logger     *slog.Logger

	mu           sync.RWMutex
	ids          []uuid.UUID
	byUser       map[uuid.UUID][]uuid.UUID
	byUserCourse map[userCourseKey]uuid.UUID
}

// AccessRepoOption configures MemoryAccessRepository.
type AccessRepoOption func(*MemoryAccessRepository)

// WithAccessRepoLogger sets the logger for the access repository.
func WithAccessRepoLogger(logger *slog.Logger) AccessRepoOption {
	return func(r *MemoryAccessRepository) {
		r.logger = logger
	}
}

// NewMemoryAccessRepository creates an access repository on top of the event store.
func NewMemoryAccessRepository(
	eventStore appcore.EventStore,
	bus EventPublisher,
	opts ...AccessRepoOption,
) *MemoryAccessRepository {
	r := &MemoryAccessRepository{
		eventStore:   eventStore,
		bus:          bus,
		logger:       slog.Default(),
		byUser:       make(map[uuid.UUID][]uuid.UUID),
		byUserCourse: make(map[userCourseKey]uuid.UUID),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var _ access.Repository = (*MemoryAccessRepository)(nil)

// FindByID finds an access record by ID, rehydrated from its event stream.
func (r *MemoryAccessRepository) FindByID(ctx context.Context, id uuid.UUID) (*access.Aggregate, error) {
	if id.IsZero() {
		return nil, appcore.ErrInvalidID
	}

	return r.load(ctx, id)
}

// FindByUserAndCourse finds the single access record for a user and course.
func (r *MemoryAccessRepository) FindByUserAndCourse(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (*access.Aggregate, error) {
	if userID.IsZero() || courseID.IsZero() {
		return nil, appcore.ErrInvalidID
	}

	r.mu.RLock()
	id, ok := r.byUserCourse[userCourseKey{userID: userID, courseID: courseID}]
	r.mu.RUnlock()

	if !ok {
		return nil, appcore.NewNotFoundError("access record", userID.String())
	}

	return r.load(ctx, id)
}

// FindByUser finds all access records of a user, in grant order.
func (r *MemoryAccessRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*access.Aggregate, error) {
	if userID.IsZero() {
		return nil, appcore.ErrInvalidID
	}

	r.mu.RLock()
	ids := slices.Clone(r.byUser[userID])
	r.mu.RUnlock()

	return r.loadAll(ctx, ids)
}

// FindDueForExpiry scans for active, time-limited records whose expiry has
// been reached as of now.
func (r *MemoryAccessRepository) FindDueForExpiry(ctx context.Context, now time.Time) ([]*access.Aggregate, error) {
	r.mu.RLock()
	ids := slices.Clone(r.ids)
	r.mu.RUnlock()

	var due []*access.Aggregate
	for _, id := range ids {
		agg, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if agg.Status() != access.StatusActive {
			continue
		}
		expiresAt := agg.ExpiresAt()
		if expiresAt == nil || now.Before(*expiresAt) {
			continue
		}
		due = append(due, agg)
	}

	return due, nil
}

// Save appends the record's uncommitted events to the store, refreshes the
// indexes and publishes the events. A second record for the same user and
// course is rejected before anything is stored.
func (r *MemoryAccessRepository) Save(ctx context.Context, agg *access.Aggregate) error {
	if agg == nil || agg.ID().IsZero() {
		return appcore.ErrInvalidID
	}

	uncommitted := agg.UncommittedEvents()
	if len(uncommitted) == 0 {
		return nil
	}

	expectedVersion := agg.Version() - len(uncommitted)
	key := userCourseKey{userID: agg.UserID(), courseID: agg.CourseID()}

	r.mu.Lock()
	if owner, taken := r.byUserCourse[key]; taken && owner != agg.ID() {
		r.mu.Unlock()
		return appcore.NewConflictError("access record", "user already has access to this course")
	}

	err := r.eventStore.SaveEvents(ctx, agg.ID().String(), uncommitted, expectedVersion)
	if err != nil {
		r.mu.Unlock()
		if errors.Is(err, appcore.ErrConcurrencyConflict) {
			r.logger.WarnContext(ctx, "concurrency conflict while saving access record",
				slog.String("access_id", agg.ID().String()),
				slog.Int("expected_version", expectedVersion),
			)
			return err
		}
		return appcore.NewRepositoryError("save access record", err)
	}

	if _, known := r.byUserCourse[key]; !known {
		r.ids = append(r.ids, agg.ID())
		r.byUser[agg.UserID()] = append(r.byUser[agg.UserID()], agg.ID())
		r.byUserCourse[key] = agg.ID()
	}
	r.mu.Unlock()

	publishEvents(ctx, r.bus, r.logger, uncommitted)
	agg.MarkEventsAsCommitted()

	return nil
}

// Count returns the total number of access records.
func (r *MemoryAccessRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ids), nil
}

func (r *MemoryAccessRepository) load(ctx context.Context, id uuid.UUID) (*access.Aggregate, error) {
	events, err := r.eventStore.LoadEvents(ctx, id.String())
	if err != nil {
		if errors.Is(err, appcore.ErrAggregateNotFound) {
			return nil, appcore.NewNotFoundError("access record", id.String())
		}
		return nil, appcore.NewRepositoryError("load access record", err)
	}

	agg := access.NewAggregate(id)
	agg.ReplayEvents(events)

	return agg, nil
}

func (r *MemoryAccessRepository) loadAll(ctx context.Context, ids []uuid.UUID) ([]*access.Aggregate, error) {
	aggregates := make([]*access.Aggregate, 0, len(ids))
	for _, id := range ids {
		agg, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}

	return aggregates, nil
}
