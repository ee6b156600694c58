package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// MemoryPolicyRepository implements policy.Repository over the event store
// with a unique in-memory index by name.
type MemoryPolicyRepository struct {
	eventStore appcore.EventStore
	bus        EventPublisher
	logger     *slog.Logger

	mu     sync.RWMutex
	ids    []uuid.UUID
	byName map[string]uuid.UUID
	nameOf map[uuid.UUID]string
}

// PolicyRepoOption configures MemoryPolicyRepository.
type PolicyRepoOption func(*MemoryPolicyRepository)

// WithPolicyRepoLogger sets the logger for the policy repository.
func WithPolicyRepoLogger(logger *slog.Logger) PolicyRepoOption {
	return func(r *MemoryPolicyRepository) {
		r.logger = logger
	}
}

// NewMemoryPolicyRepository creates a policy repository on top of the event store.
func NewMemoryPolicyRepository(
	eventStore appcore.EventStore,
	bus EventPublisher,
	opts ...PolicyRepoOption,
) *MemoryPolicyRepository {
	r := &MemoryPolicyRepository{
		eventStore: eventStore,
		bus:        bus,
		logger:     slog.Default(),
		byName:     make(map[string]uuid.UUID),
		nameOf:     make(map[uuid.UUID]string),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var _ policy.Repository = (*MemoryPolicyRepository)(nil)

// FindByID finds a policy by ID, rehydrated from its event stream.
func (r *MemoryPolicyRepository) FindByID(ctx context.Context, id uuid.UUID) (*policy.Aggregate, error) {
	if id.IsZero() {
		return nil, appcore.ErrInvalidID
	}

	return r.load(ctx, id)
}

// FindByName finds a policy by exact name.
func (r *MemoryPolicyRepository) FindByName(ctx context.Context, name policy.Name) (*policy.Aggregate, error) {
	r.mu.RLock()
	id, ok := r.byName[name.String()]
	r.mu.RUnlock()

	if !ok {
		return nil, appcore.NewNotFoundError("refund policy", name.String())
	}

	return r.load(ctx, id)
}

// Save appends the policy's uncommitted events to the store, refreshes the
// name index and publishes the events. A second policy claiming an indexed
// name is rejected before anything is stored.
func (r *MemoryPolicyRepository) Save(ctx context.Context, agg *policy.Aggregate) error {
	if agg == nil || agg.ID().IsZero() {
		return appcore.ErrInvalidID
	}

	uncommitted := agg.UncommittedEvents()
	if len(uncommitted) == 0 {
		return nil
	}

	expectedVersion := agg.Version() - len(uncommitted)
	name := agg.Name().String()

	r.mu.Lock()
	if owner, taken := r.byName[name]; taken && owner != agg.ID() {
		r.mu.Unlock()
		return appcore.NewConflictError("refund policy", "name "+name+" is already used")
	}

	err := r.eventStore.SaveEvents(ctx, agg.ID().String(), uncommitted, expectedVersion)
	if err != nil {
		r.mu.Unlock()
		if errors.Is(err, appcore.ErrConcurrencyConflict) {
			r.logger.WarnContext(ctx, "concurrency conflict while saving policy",
				slog.String("policy_id", agg.ID().String()),
				slog.Int("expected_version", expectedVersion),
			)
			return err
		}
		return appcore.NewRepositoryError("save policy", err)
	}

	if previous, known := r.nameOf[agg.ID()]; known {
		if previous != name {
			delete(r.byName, previous)
		}
	} else {
		r.ids = append(r.ids, agg.ID())
	}
	r.byName[name] = agg.ID()
	r.nameOf[agg.ID()] = name
	r.mu.Unlock()

	publishEvents(ctx, r.bus, r.logger, uncommitted)
	agg.MarkEventsAsCommitted()

	return nil
}

// List returns policies in creation order.
func (r *MemoryPolicyRepository) List(ctx context.Context, offset, limit int) ([]*policy.Aggregate, error) {
	r.mu.RLock()
	ids := paginate(r.ids, offset, limit)
	r.mu.RUnlock()

	aggregates := make([]*policy.Aggregate, 0, len(ids))
	for _, id := range ids {
		agg, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}

	return aggregates, nil
}

// Count returns the total number of policies.
func (r *MemoryPolicyRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ids), nil
}

func (r *MemoryPolicyRepository) load(ctx context.Context, id uuid.UUID) (*policy.Aggregate, error) {
	events, err := r.eventStore.LoadEvents(ctx, id.String())
	if err != nil {
		if errors.Is(err, appcore.ErrAggregateNotFound) {
			return nil, appcore.NewNotFoundError("refund policy", id.String())
		}
		return nil, appcore.NewRepositoryError("load policy", err)
	}

	agg := policy.NewAggregate(id)
	agg.ReplayEvents(events)

	return agg, nil
}
