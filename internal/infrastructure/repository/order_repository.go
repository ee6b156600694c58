package repository

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// MemoryOrderRepository implements order.Repository over the event store
// with in-memory indexes by user and by current status.
type MemoryOrderRepository struct {
	eventStore appcore.EventStore
	bus        EventPublisher
	logger     *slog.Logger

	mu       sync.RWMutex
	ids      []uuid.UUID
	byUser   map[uuid.UUID][]uuid.UUID
	statuses map[uuid.UUID]order.Status
}

// OrderRepoOption configures MemoryOrderRepository.
type OrderRepoOption func(*MemoryOrderRepository)

// WithOrderRepoLogger sets the logger for the order repository.
func WithOrderRepoLogger(logger *slog.Logger) OrderRepoOption {
	return func(r *MemoryOrderRepository) {
		r.logger = logger
	}
}

// NewMemoryOrderRepository creates an order repository on top of the event store.
func NewMemoryOrderRepository(
	eventStore appcore.EventStore,
	bus EventPublisher,
	opts ...OrderRepoOption,
) *MemoryOrderRepository {
	r := &MemoryOrderRepository{
		eventStore: eventStore,
		bus:        bus,
		logger:     slog.Default(),
		byUser:     make(map[uuid.UUID][]uuid.UUID),
		statuses:   make(map[uuid.UUID]order.Status),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var _ order.Repository = (*MemoryOrderRepository)(nil)

// FindByID finds an order by ID, rehydrated from its event stream.
func (r *MemoryOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Aggregate, error) {
	if id.IsZero() {
		return nil, appcore.ErrInvalidID
	}

	return r.load(ctx, id)
}

// FindByUser finds a user's orders, newest first.
func (r *MemoryOrderRepository) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*order.Aggregate, error) {
	if userID.IsZero() {
		return nil, appcore.ErrInvalidID
	}

	r.mu.RLock()
	ids := reversed(r.byUser[userID])
	r.mu.RUnlock()

	return r.loadAll(ctx, paginate(ids, offset, limit))
}

// FindByStatus finds orders in the given status, oldest first.
func (r *MemoryOrderRepository) FindByStatus(
	ctx context.Context,
	status order.Status,
	offset, limit int,
) ([]*order.Aggregate, error) {
	r.mu.RLock()
	var ids []uuid.UUID
	for _, id := range r.ids {
		if r.statuses[id] == status {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	return r.loadAll(ctx, paginate(ids, offset, limit))
}

// FindPendingByUserCourse finds a pending order of the user that already
// contains the course.
func (r *MemoryOrderRepository) FindPendingByUserCourse(
	ctx context.Context,
	userID, courseID uuid.UUID,
) (*order.Aggregate, error) {
	if userID.IsZero() || courseID.IsZero() {
		return nil, appcore.ErrInvalidID
	}

	r.mu.RLock()
	var pending []uuid.UUID
	for _, id := range r.byUser[userID] {
		if r.statuses[id] == order.StatusPending {
			pending = append(pending, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range pending {
		agg, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if slices.Contains(agg.CourseIDs(), courseID) {
			return agg, nil
		}
	}

	return nil, appcore.NewNotFoundError("pending order", userID.String())
}

// Save appends the order's uncommitted events to the store, refreshes the
// indexes and publishes the events.
func (r *MemoryOrderRepository) Save(ctx context.Context, agg *order.Aggregate) error {
	if agg == nil || agg.ID().IsZero() {
		return appcore.ErrInvalidID
	}

	uncommitted := agg.UncommittedEvents()
	if len(uncommitted) == 0 {
		return nil
	}

	expectedVersion := agg.Version() - len(uncommitted)

	r.mu.Lock()
	err := r.eventStore.SaveEvents(ctx, agg.ID().String(), uncommitted, expectedVersion)
	if err != nil {
		r.mu.Unlock()
		if errors.Is(err, appcore.ErrConcurrencyConflict) {
			r.logger.WarnContext(ctx, "concurrency conflict while saving order",
				slog.String("order_id", agg.ID().String()),
				slog.Int("expected_version", expectedVersion),
			)
			return err
		}
		return appcore.NewRepositoryError("save order", err)
	}

	if _, known := r.statuses[agg.ID()]; !known {
		r.ids = append(r.ids, agg.ID())
		r.byUser[agg.UserID()] = append(r.byUser[agg.UserID()], agg.ID())
	}
	r.statuses[agg.ID()] = agg.Status()
	r.mu.Unlock()

	publishEvents(ctx, r.bus, r.logger, uncommitted)
	agg.MarkEventsAsCommitted()

	return nil
}

// Count returns the total number of orders.
func (r *MemoryOrderRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ids), nil
}

func (r *MemoryOrderRepository) load(ctx context.Context, id uuid.UUID) (*order.Aggregate, error) {
	events, err := r.eventStore.LoadEvents(ctx, id.String())
	if err != nil {
		if errors.Is(err, appcore.ErrAggregateNotFound) {
			return nil, appcore.NewNotFoundError("order", id.String())
		}
		return nil, appcore.NewRepositoryError("load order", err)
	}

	agg := order.NewAggregate(id)
	agg.ReplayEvents(events)

	return agg, nil
}

func (r *MemoryOrderRepository) loadAll(ctx context.Context, ids []uuid.UUID) ([]*order.Aggregate, error) {
	aggregates := make([]*order.Aggregate, 0, len(ids))
	for _, id := range ids {
		agg, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}

	return aggregates, nil
}
