// Package repository provides in-memory repositories backed by the event
// store. The store holds the event streams (the write model); each
// repository keeps only secondary indexes and rehydrates aggregates by
// replaying their stream on every read. Saved events are published on the
// bus after the store append succeeds.
package repository

import (
	"context"
	"log/slog"

	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// EventPublisher delivers persisted events to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, evt event.DomainEvent) error
}

// publishEvents pushes saved events onto the bus. A publish failure is
// logged and swallowed: projections rebuild from the store, so the save
// itself must not fail here.
func publishEvents(ctx context.Context, bus EventPublisher, logger *slog.Logger, events []event.DomainEvent) {
	for _, evt := range events {
		if err := bus.Publish(ctx, evt); err != nil {
			logger.ErrorContext(ctx, "failed to publish saved event",
				slog.String("event_type", evt.EventType()),
				slog.String("aggregate_id", evt.AggregateID()),
				slog.String("error", err.Error()),
			)
		}
	}
}

// paginate slices items by offset and limit. A negative offset counts as
// zero; a non-positive limit returns everything from the offset on.
func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// reversed returns a copy of ids in reverse order.
func reversed(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}
