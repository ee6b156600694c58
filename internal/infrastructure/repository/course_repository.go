package repository

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// MemoryCourseRepository implements course.Repository over the event store
// with in-memory indexes by title and by refund policy.
type MemoryCourseRepository struct {
	eventStore appcore.EventStore
	bus        EventPublisher
	logger     *slog.Logger

	mu       sync.RWMutex
	ids      []uuid.UUID
	byTitle  map[string]uuid.UUID
	titleOf  map[uuid.UUID]string
	byPolicy map[uuid.UUID][]uuid.UUID
	policyOf map[uuid.UUID]uuid.UUID
}

// CourseRepoOption configures MemoryCourseRepository.
type CourseRepoOption func(*MemoryCourseRepository)

// WithCourseRepoLogger sets the logger for the course repository.
func WithCourseRepoLogger(logger *slog.Logger) CourseRepoOption {
	return func(r *MemoryCourseRepository) {
		r.logger = logger
	}
}

// NewMemoryCourseRepository creates a course repository on top of the event store.
func NewMemoryCourseRepository(
	eventStore appcore.EventStore,
	bus EventPublisher,
	opts ...CourseRepoOption,
) *MemoryCourseRepository {
	r := &MemoryCourseRepository{
		eventStore: eventStore,
		bus:        bus,
		logger:     slog.Default(),
		byTitle:    make(map[string]uuid.UUID),
		titleOf:    make(map[uuid.UUID]string),
		byPolicy:   make(map[uuid.UUID][]uuid.UUID),
		policyOf:   make(map[uuid.UUID]uuid.UUID),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var _ course.Repository = (*MemoryCourseRepository)(nil)

// FindByID finds a course by ID, rehydrated from its event stream.
func (r *MemoryCourseRepository) FindByID(ctx context.Context, id uuid.UUID) (*course.Aggregate, error) {
	if id.IsZero() {
		return nil, appcore.ErrInvalidID
	}

	return r.load(ctx, id)
}

// FindByTitle finds a course by exact title.
func (r *MemoryCourseRepository) FindByTitle(ctx context.Context, title course.Title) (*course.Aggregate, error) {
	r.mu.RLock()
	id, ok := r.byTitle[title.String()]
	r.mu.RUnlock()

	if !ok {
		return nil, appcore.NewNotFoundError("course", title.String())
	}

	return r.load(ctx, id)
}

// FindByPolicy finds courses assigned to a refund policy, in assignment order.
func (r *MemoryCourseRepository) FindByPolicy(ctx context.Context, policyID uuid.UUID) ([]*course.Aggregate, error) {
	if policyID.IsZero() {
		return nil, appcore.ErrInvalidID
	}

	r.mu.RLock()
	ids := slices.Clone(r.byPolicy[policyID])
	r.mu.RUnlock()

	aggregates := make([]*course.Aggregate, 0, len(ids))
	for _, id := range ids {
		agg, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}

	return aggregates, nil
}

// Save appends the course's uncommitted events to the store, refreshes the
// title and policy indexes and publishes the events. A second course
// claiming an indexed title is rejected before anything is stored.
func (r *MemoryCourseRepository) Save(ctx context.Context, agg *course.Aggregate) error {
	if agg == nil || agg.ID().IsZero() {
		return appcore.ErrInvalidID
	}

	uncommitted := agg.UncommittedEvents()
	if len(uncommitted) == 0 {
		return nil
	}

	expectedVersion := agg.Version() - len(uncommitted)
	title := agg.Title().String()

	r.mu.Lock()
	if owner, taken := r.byTitle[title]; taken && owner != agg.ID() {
		r.mu.Unlock()
		return appcore.NewConflictError("course", "title "+title+" is already used")
	}

	err := r.eventStore.SaveEvents(ctx, agg.ID().String(), uncommitted, expectedVersion)
	if err != nil {
		r.mu.Unlock()
		if errors.Is(err, appcore.ErrConcurrencyConflict) {
			r.logger.WarnContext(ctx, "concurrency conflict while saving course",
				slog.String("course_id", agg.ID().String()),
				slog.Int("expected_version", expectedVersion),
			)
			return err
		}
		return appcore.NewRepositoryError("save course", err)
	}

	r.reindex(agg, title)
	r.mu.Unlock()

	publishEvents(ctx, r.bus, r.logger, uncommitted)
	agg.MarkEventsAsCommitted()

	return nil
}

// List returns courses in creation order.
func (r *MemoryCourseRepository) List(ctx context.Context, offset, limit int) ([]*course.Aggregate, error) {
	r.mu.RLock()
	ids := paginate(r.ids, offset, limit)
	r.mu.RUnlock()

	aggregates := make([]*course.Aggregate, 0, len(ids))
	for _, id := range ids {
		agg, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}

	return aggregates, nil
}

// Count returns the total number of courses.
func (r *MemoryCourseRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ids), nil
}

// reindex refreshes the title and policy indexes after a save. Caller holds
// the write lock.
func (r *MemoryCourseRepository) reindex(agg *course.Aggregate, title string) {
	id := agg.ID()

	if previous, known := r.titleOf[id]; known {
		if previous != title {
			delete(r.byTitle, previous)
		}
	} else {
		r.ids = append(r.ids, id)
	}
	r.byTitle[title] = id
	r.titleOf[id] = title

	policyID := agg.PolicyID()
	if previous, known := r.policyOf[id]; known && previous != policyID {
		r.byPolicy[previous] = slices.DeleteFunc(r.byPolicy[previous], func(existing uuid.UUID) bool {
			return existing == id
		})
	}
	if previous, known := r.policyOf[id]; !known || previous != policyID {
		r.byPolicy[policyID] = append(r.byPolicy[policyID], id)
	}
	r.policyOf[id] = policyID
}

func (r *MemoryCourseRepository) load(ctx context.Context, id uuid.UUID) (*course.Aggregate, error) {
	events, err := r.eventStore.LoadEvents(ctx, id.String())
	if err != nil {
		if errors.Is(err, appcore.ErrAggregateNotFound) {
			return nil, appcore.NewNotFoundError("course", id.String())
		}
		return nil, appcore.NewRepositoryError("load course", err)
	}

	agg := course.NewAggregate(id)
	agg.ReplayEvents(events)

	return agg, nil
}
