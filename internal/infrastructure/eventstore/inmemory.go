package eventstore

import (
	"context"
	"sync"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/event"
)

// InMemoryEventStore keeps event streams in process memory, one stream
// per aggregate. It is the storage backend for the whole application.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events map[string][]event.DomainEvent
}

var _ appcore.EventStore = (*InMemoryEventStore)(nil)

// NewInMemoryEventStore creates an empty event store.
func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		events: make(map[string][]event.DomainEvent),
	}
}

// SaveEvents appends events to the aggregate stream. The append succeeds
// only if the stream still has exactly expectedVersion events.
func (s *InMemoryEventStore) SaveEvents(
	_ context.Context,
	aggregateID string,
	events []event.DomainEvent,
	expectedVersion int,
) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	currentVersion := len(s.events[aggregateID])
	if currentVersion != expectedVersion {
		return appcore.NewConcurrencyError(aggregateID, expectedVersion, currentVersion)
	}

	s.events[aggregateID] = append(s.events[aggregateID], events...)

	return nil
}

// LoadEvents returns the full stream for an aggregate in append order.
func (s *InMemoryEventStore) LoadEvents(
	_ context.Context,
	aggregateID string,
) ([]event.DomainEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, exists := s.events[aggregateID]
	if !exists {
		return nil, appcore.ErrAggregateNotFound
	}

	// Copy so callers cannot mutate the stored stream.
	result := make([]event.DomainEvent, len(events))
	copy(result, events)

	return result, nil
}

// GetVersion returns the number of stored events for the aggregate,
// zero when the aggregate has no stream yet.
func (s *InMemoryEventStore) GetVersion(
	_ context.Context,
	aggregateID string,
) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, exists := s.events[aggregateID]
	if !exists {
		return 0, nil
	}

	return len(events), nil
}

// AllAggregateIDs returns the IDs of every aggregate with at least one
// stored event. Projection rebuilds iterate this set.
func (s *InMemoryEventStore) AllAggregateIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.events))
	for id := range s.events {
		ids = append(ids, id)
	}

	return ids
}

// Clear drops all streams.
func (s *InMemoryEventStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make(map[string][]event.DomainEvent)
}
