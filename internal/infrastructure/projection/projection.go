// Package projection holds the in-memory read models fed by domain events.
//
// Each projection declares the event types it consumes, folds events into
// its state through Apply, and answers queries from that state only. A
// projection never reaches back into the event store; rebuilding is the
// Registry's job. Applying the same event twice is a no-op: every
// projection tracks applied event IDs and skips duplicates, so replays
// and handler retries cannot double-count.
package projection

import (
	"context"

	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// Projection is a read model fed by domain events.
type Projection interface {
	// Name identifies the projection in logs and rebuild reports.
	Name() string

	// EventTypes returns the event types this projection consumes.
	EventTypes() []string

	// Apply folds a single event into the projection state.
	Apply(ctx context.Context, evt event.DomainEvent) error

	// Reset returns the projection to its empty state.
	Reset()
}

// StreamSource provides stored event streams for rebuilds. The in-memory
// event store satisfies it.
type StreamSource interface {
	LoadEvents(ctx context.Context, aggregateID string) ([]event.DomainEvent, error)
	AllAggregateIDs() []string
}

// appliedSet tracks event IDs a projection has folded. Callers hold the
// projection lock.
type appliedSet struct {
	ids map[string]struct{}
}

func newAppliedSet() appliedSet {
	return appliedSet{ids: make(map[string]struct{})}
}

// mark records the event as applied. It returns false when the event was
// seen before, in which case the caller must skip the fold.
func (s *appliedSet) mark(evt event.DomainEvent) bool {
	key := evt.EventID().String()
	if _, seen := s.ids[key]; seen {
		return false
	}
	s.ids[key] = struct{}{}
	return true
}

func (s *appliedSet) reset() {
	s.ids = make(map[string]struct{})
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
