package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/user"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// MemoryUserRepository implements user.Repository over the event store with
// a unique in-memory index by normalized email.
type MemoryUserRepository struct {
	eventStore appcore.EventStore
	bus        EventPublisher
	logger     *slog.Logger

	mu      sync.RWMutex
	ids     []uuid.UUID
	byEmail map[string]uuid.UUID
	emailOf map[uuid.UUID]string
}

// UserRepoOption configures MemoryUserRepository.
type UserRepoOption func(*MemoryUserRepository)

// WithUserRepoLogger sets the logger for the user repository.
func WithUserRepoLogger(logger *slog.Logger) UserRepoOption {
	return func(r *MemoryUserRepository) {
		r.logger = logger
	}
}

// NewMemoryUserRepository creates a user repository on top of the event store.
func NewMemoryUserRepository(
	eventStore appcore.EventStore,
	bus EventPublisher,
	opts ...UserRepoOption,
) *MemoryUserRepository {
	r := &MemoryUserRepository{
		eventStore: eventStore,
		bus:        bus,
		logger:     slog.Default(),
		byEmail:    make(map[string]uuid.UUID),
		emailOf:    make(map[uuid.UUID]string),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var _ user.Repository = (*MemoryUserRepository)(nil)

// FindByID finds a user by ID, rehydrated from its event stream.
func (r *MemoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.Aggregate, error) {
	if id.IsZero() {
		return nil, appcore.ErrInvalidID
	}

	return r.load(ctx, id)
}

// FindByEmail finds a user by normalized email address.
func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email user.EmailAddress) (*user.Aggregate, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email.String()]
	r.mu.RUnlock()

	if !ok {
		return nil, appcore.NewNotFoundError("user", email.String())
	}

	return r.load(ctx, id)
}

// Save appends the user's uncommitted events to the store, refreshes the
// email index and publishes the events. A second user claiming an email
// already indexed is rejected before anything is stored.
func (r *MemoryUserRepository) Save(ctx context.Context, agg *user.Aggregate) error {
	if agg == nil || agg.ID().IsZero() {
		return appcore.ErrInvalidID
	}

	uncommitted := agg.UncommittedEvents()
	if len(uncommitted) == 0 {
		return nil
	}

	expectedVersion := agg.Version() - len(uncommitted)
	email := agg.Email().String()

	r.mu.Lock()
	if owner, taken := r.byEmail[email]; taken && owner != agg.ID() {
		r.mu.Unlock()
		return appcore.NewConflictError("user", "email "+email+" is already registered")
	}

	err := r.eventStore.SaveEvents(ctx, agg.ID().String(), uncommitted, expectedVersion)
	if err != nil {
		r.mu.Unlock()
		if errors.Is(err, appcore.ErrConcurrencyConflict) {
			r.logger.WarnContext(ctx, "concurrency conflict while saving user",
				slog.String("user_id", agg.ID().String()),
				slog.Int("expected_version", expectedVersion),
			)
			return err
		}
		return appcore.NewRepositoryError("save user", err)
	}

	if previous, known := r.emailOf[agg.ID()]; known {
		if previous != email {
			delete(r.byEmail, previous)
		}
	} else {
		r.ids = append(r.ids, agg.ID())
	}
	r.byEmail[email] = agg.ID()
	r.emailOf[agg.ID()] = email
	r.mu.Unlock()

	publishEvents(ctx, r.bus, r.logger, uncommitted)
	agg.MarkEventsAsCommitted()

	return nil
}

// List returns users in registration order.
func (r *MemoryUserRepository) List(ctx context.Context, offset, limit int) ([]*user.Aggregate, error) {
	r.mu.RLock()
	ids := paginate(r.ids, offset, limit)
	r.mu.RUnlock()

	aggregates := make([]*user.Aggregate, 0, len(ids))
	for _, id := range ids {
		agg, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}

	return aggregates, nil
}

// Count returns the total number of users.
func (r *MemoryUserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ids), nil
}

func (r *MemoryUserRepository) load(ctx context.Context, id uuid.UUID) (*user.Aggregate, error) {
	events, err := r.eventStore.LoadEvents(ctx, id.String())
	if err != nil {
		if errors.Is(err, appcore.ErrAggregateNotFound) {
			return nil, appcore.NewNotFoundError("user", id.String())
		}
		return nil, appcore.NewRepositoryError("load user", err)
	}

	agg := user.NewAggregate(id)
	agg.ReplayEvents(events)

	return agg, nil
}
