package projection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
)

// EventSubscriber is the bus surface the registry needs. Declared on the
// consumer side; *eventbus.InMemoryEventBus satisfies it.
type EventSubscriber interface {
	Subscribe(eventType string, handler eventbus.EventHandler) error
}

// Registry wires projections to the event bus and rebuilds them from the
// event store. It implements appcore.ReadModelProjector.
type Registry struct {
	mu           sync.RWMutex
	projections  []Projection
	byEventType  map[string][]Projection
	orderHistory *OrderHistoryProjection

	source StreamSource
	logger *slog.Logger
}

var _ appcore.ReadModelProjector = (*Registry)(nil)

// NewRegistry creates a registry over the given stream source.
func NewRegistry(source StreamSource, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byEventType: make(map[string][]Projection),
		source:      source,
		logger:      logger,
	}
}

// Register adds a projection to the registry.
func (r *Registry) Register(p Projection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.projections = append(r.projections, p)
	for _, eventType := range p.EventTypes() {
		r.byEventType[eventType] = append(r.byEventType[eventType], p)
	}

	// VerifyConsistency compares order streams against this projection.
	if oh, ok := p.(*OrderHistoryProjection); ok {
		r.orderHistory = oh
	}

	r.logger.Debug("registered projection",
		slog.String("projection", p.Name()),
		slog.Int("event_types", len(p.EventTypes())),
	)
}

// Projections returns the registered projections in registration order.
func (r *Registry) Projections() []Projection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Projection, len(r.projections))
	copy(out, r.projections)

	return out
}

// SubscribeAll subscribes every registered projection to its declared
// event types on the bus. Registration order is preserved per type.
func (r *Registry) SubscribeAll(bus EventSubscriber) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.projections {
		for _, eventType := range p.EventTypes() {
			if err := bus.Subscribe(eventType, p.Apply); err != nil {
				return fmt.Errorf("failed to subscribe projection %s to %s: %w", p.Name(), eventType, err)
			}
		}
	}

	return nil
}

// ProcessEvent applies a single event to every projection that declares
// its type.
func (r *Registry) ProcessEvent(ctx context.Context, evt event.DomainEvent) error {
	r.mu.RLock()
	targets := r.byEventType[evt.EventType()]
	r.mu.RUnlock()

	for _, p := range targets {
		if err := p.Apply(ctx, evt); err != nil {
			return fmt.Errorf("projection %s failed to apply %s: %w", p.Name(), evt.EventType(), err)
		}
	}

	return nil
}

// RebuildOne replays a single aggregate's stream into the projections.
// Projections skip events they have already applied, so replaying after
// live updates cannot double-count.
func (r *Registry) RebuildOne(ctx context.Context, aggregateID uuid.UUID) error {
	events, err := r.source.LoadEvents(ctx, aggregateID.String())
	if err != nil {
		return fmt.Errorf("failed to load events for %s: %w", aggregateID, err)
	}

	if len(events) == 0 {
		return appcore.ErrAggregateNotFound
	}

	for _, evt := range events {
		if processErr := r.ProcessEvent(ctx, evt); processErr != nil {
			return processErr
		}
	}

	r.logger.InfoContext(ctx, "rebuilt read models for aggregate",
		slog.String("aggregate_id", aggregateID.String()),
		slog.Int("events_applied", len(events)),
	)

	return nil
}

// RebuildAll resets every projection and replays the whole event store.
// Streams are replayed per aggregate in event order; aggregates are
// visited in sorted ID order so rebuilds are deterministic.
func (r *Registry) RebuildAll(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting rebuild of all read models")

	for _, p := range r.Projections() {
		p.Reset()
	}

	aggregateIDs := r.source.AllAggregateIDs()
	sort.Strings(aggregateIDs)

	successCount := 0
	failCount := 0

	for _, id := range aggregateIDs {
		events, err := r.source.LoadEvents(ctx, id)
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to load stream during rebuild",
				slog.String("aggregate_id", id),
				slog.String("error", err.Error()),
			)
			failCount++
			continue
		}

		streamOK := true
		for _, evt := range events {
			if processErr := r.ProcessEvent(ctx, evt); processErr != nil {
				r.logger.ErrorContext(ctx, "failed to apply event during rebuild",
					slog.String("aggregate_id", id),
					slog.String("event_type", evt.EventType()),
					slog.String("error", processErr.Error()),
				)
				streamOK = false
				break
			}
		}

		if streamOK {
			successCount++
		} else {
			failCount++
		}
	}

	r.logger.InfoContext(ctx, "completed rebuild of all read models",
		slog.Int("total", len(aggregateIDs)),
		slog.Int("success", successCount),
		slog.Int("failed", failCount),
	)

	if failCount > 0 {
		return fmt.Errorf("rebuild completed with %d failures out of %d total", failCount, len(aggregateIDs))
	}

	return nil
}

// VerifyConsistency checks the order-history row against a replay of the
// order's stream. Aggregates without a comparable read model verify as
// consistent.
func (r *Registry) VerifyConsistency(ctx context.Context, aggregateID uuid.UUID) (bool, error) {
	events, err := r.source.LoadEvents(ctx, aggregateID.String())
	if err != nil {
		return false, fmt.Errorf("failed to load events: %w", err)
	}
	if len(events) == 0 {
		return false, appcore.ErrAggregateNotFound
	}

	if events[0].AggregateType() != order.AggregateType {
		return true, nil
	}

	r.mu.RLock()
	orderHistory := r.orderHistory
	r.mu.RUnlock()

	if orderHistory == nil {
		return true, nil
	}

	expected := order.NewAggregate(aggregateID)
	expected.ReplayEvents(events)

	view, ok := orderHistory.Order(aggregateID.String())
	if !ok {
		r.logger.WarnContext(ctx, "order history row missing for order with events",
			slog.String("order_id", aggregateID.String()),
			slog.Int("events_count", len(events)),
		)
		return false, nil
	}

	consistent := view.Status == string(expected.Status()) &&
		view.UserID == expected.UserID().String() &&
		view.Total.Equals(expected.TotalAmount()) &&
		len(view.Timeline) > 0

	if !consistent {
		r.logger.WarnContext(ctx, "order history inconsistency detected",
			slog.String("order_id", aggregateID.String()),
			slog.String("expected_status", string(expected.Status())),
			slog.String("actual_status", view.Status),
		)
	}

	return consistent, nil
}
