// Package eventbus provides the in-process event bus that connects
// aggregates to projections and other event consumers.
package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/infrastructure/metrics"
)

// Default retry and dead letter configuration constants.
const (
	defaultMaxRetries         = 3
	defaultInitialBackoff     = 100 * time.Millisecond
	defaultMaxBackoff         = 5 * time.Second
	defaultBackoffFactor      = 2.0
	defaultDeadLetterCapacity = 1000
)

// EventHandler is a function that handles domain events.
type EventHandler func(ctx context.Context, event event.DomainEvent) error

// RetryConfig configures retry behavior for event handling.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     defaultMaxRetries,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
		BackoffFactor:  defaultBackoffFactor,
	}
}

// DeadLetter records an event that a handler failed to process after all
// retries. The payload is retained for inspection.
type DeadLetter struct {
	Envelope     Envelope  `json:"envelope"`
	HandlerIndex int       `json:"handler_index"`
	Attempts     int       `json:"attempts"`
	Error        string    `json:"error"`
	FailedAt     time.Time `json:"failed_at"`
}

// InMemoryEventBus delivers events to subscribed handlers synchronously,
// in registration order. Handler failures never abort a dispatch: each
// handler runs in isolation with bounded retry, and events that still
// fail are parked in a bounded dead letter queue.
//
// Ordering is guaranteed per event type only. Handlers for different
// event types observe no relative order beyond publication order.
type InMemoryEventBus struct {
	handlersMu       sync.RWMutex
	handlers         map[string][]EventHandler
	wildcardHandlers []EventHandler

	deadMu      sync.Mutex
	deadLetters []DeadLetter

	logger        *slog.Logger
	retryConfig   RetryConfig
	deadLetterCap int
	eventMetrics  *metrics.EventMetrics
}

var _ event.Bus = (*InMemoryEventBus)(nil)

// Option configures an InMemoryEventBus.
type Option func(*InMemoryEventBus)

// WithLogger sets the logger for the event bus.
func WithLogger(logger *slog.Logger) Option {
	return func(b *InMemoryEventBus) {
		b.logger = logger
	}
}

// WithRetryConfig sets the retry configuration for event handling.
func WithRetryConfig(config RetryConfig) Option {
	return func(b *InMemoryEventBus) {
		b.retryConfig = config
	}
}

// WithDeadLetterCapacity sets the maximum number of dead letters retained.
// When full, the oldest entry is dropped.
func WithDeadLetterCapacity(capacity int) Option {
	return func(b *InMemoryEventBus) {
		b.deadLetterCap = capacity
	}
}

// WithMetrics instruments the bus with Prometheus metrics.
func WithMetrics(m *metrics.EventMetrics) Option {
	return func(b *InMemoryEventBus) {
		b.eventMetrics = m
	}
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(opts ...Option) *InMemoryEventBus {
	b := &InMemoryEventBus{
		handlers:      make(map[string][]EventHandler),
		logger:        slog.Default(),
		retryConfig:   DefaultRetryConfig(),
		deadLetterCap: defaultDeadLetterCapacity,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscribe registers an event handler for a specific event type.
// Handlers run in the order they were registered.
func (b *InMemoryEventBus) Subscribe(eventType string, handler EventHandler) error {
	if eventType == "" {
		return errors.New("event type cannot be empty")
	}
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	return nil
}

// SubscribeAll registers a handler invoked for every published event,
// after the type-specific handlers. The WebSocket feed and the audit
// logger subscribe this way.
func (b *InMemoryEventBus) SubscribeAll(handler EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()

	b.wildcardHandlers = append(b.wildcardHandlers, handler)

	return nil
}

// HandlerCount returns the number of handlers registered for an event type.
func (b *InMemoryEventBus) HandlerCount(eventType string) int {
	b.handlersMu.RLock()
	defer b.handlersMu.RUnlock()
	return len(b.handlers[eventType])
}

// Publish dispatches a domain event to every subscribed handler. It
// returns an error only for nil events; handler failures are retried,
// dead-lettered, and never propagated to the publisher.
func (b *InMemoryEventBus) Publish(ctx context.Context, evt event.DomainEvent) error {
	if evt == nil {
		return errors.New("event cannot be nil")
	}

	b.handlersMu.RLock()
	handlers := make([]EventHandler, 0, len(b.handlers[evt.EventType()])+len(b.wildcardHandlers))
	handlers = append(handlers, b.handlers[evt.EventType()]...)
	handlers = append(handlers, b.wildcardHandlers...)
	b.handlersMu.RUnlock()

	if b.eventMetrics != nil {
		b.eventMetrics.EventsPublished.WithLabelValues(evt.EventType()).Inc()
	}

	b.logger.DebugContext(ctx, "event published",
		slog.String("event_id", evt.EventID().String()),
		slog.String("event_type", evt.EventType()),
		slog.String("aggregate_id", evt.AggregateID()),
		slog.Int("handler_count", len(handlers)),
	)

	for i, handler := range handlers {
		b.executeHandler(ctx, handler, evt, i)
	}

	return nil
}

// executeHandler runs a single event handler with retry logic. After the
// final failed attempt the event is dead-lettered and dispatch moves on.
func (b *InMemoryEventBus) executeHandler(
	ctx context.Context,
	handler EventHandler,
	evt event.DomainEvent,
	handlerIndex int,
) {
	var lastErr error
	backoff := b.retryConfig.InitialBackoff
	attempts := 0

	for attempt := 0; attempt <= b.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			if b.eventMetrics != nil {
				b.eventMetrics.HandlerRetries.WithLabelValues(evt.EventType()).Inc()
			}
			b.logger.DebugContext(ctx, "retrying event handler",
				slog.String("event_type", evt.EventType()),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				b.logger.WarnContext(ctx, "handler retry cancelled",
					slog.String("event_type", evt.EventType()),
					slog.String("error", ctx.Err().Error()),
				)
				b.deadLetter(ctx, evt, handlerIndex, attempts, lastErr)
				return
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * b.retryConfig.BackoffFactor)
			if backoff > b.retryConfig.MaxBackoff {
				backoff = b.retryConfig.MaxBackoff
			}
		}

		attempts++
		start := time.Now()
		err := handler(ctx, evt)
		if b.eventMetrics != nil {
			b.eventMetrics.HandlerDuration.WithLabelValues(evt.EventType()).Observe(time.Since(start).Seconds())
		}

		if err != nil {
			lastErr = err
			b.logger.WarnContext(ctx, "event handler failed",
				slog.String("event_type", evt.EventType()),
				slog.String("aggregate_id", evt.AggregateID()),
				slog.Int("handler_index", handlerIndex),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			continue
		}

		return
	}

	b.logger.ErrorContext(ctx, "event handler failed after all retries",
		slog.String("event_type", evt.EventType()),
		slog.String("aggregate_id", evt.AggregateID()),
		slog.Int("handler_index", handlerIndex),
		slog.Int("max_retries", b.retryConfig.MaxRetries),
		slog.String("error", lastErr.Error()),
	)
	b.deadLetter(ctx, evt, handlerIndex, attempts, lastErr)
}

// deadLetter records a permanently failed event+handler pair. The queue
// is bounded; the oldest entry is dropped when the cap is reached.
func (b *InMemoryEventBus) deadLetter(
	ctx context.Context,
	evt event.DomainEvent,
	handlerIndex int,
	attempts int,
	cause error,
) {
	if b.eventMetrics != nil {
		b.eventMetrics.HandlerFailures.WithLabelValues(evt.EventType()).Inc()
	}

	envelope, err := NewEnvelope(evt)
	if err != nil {
		// Keep the record even when the payload cannot be serialized.
		b.logger.WarnContext(ctx, "failed to serialize dead letter payload",
			slog.String("event_type", evt.EventType()),
			slog.String("error", err.Error()),
		)
		envelope = Envelope{
			EventID:       evt.EventID().String(),
			EventType:     evt.EventType(),
			AggregateID:   evt.AggregateID(),
			AggregateType: evt.AggregateType(),
			OccurredAt:    evt.OccurredAt(),
			Version:       evt.Version(),
			SchemaVersion: evt.SchemaVersion(),
			Metadata:      evt.Metadata(),
		}
	}

	entry := DeadLetter{
		Envelope:     envelope,
		HandlerIndex: handlerIndex,
		Attempts:     attempts,
		Error:        cause.Error(),
		FailedAt:     time.Now(),
	}

	b.deadMu.Lock()
	b.deadLetters = append(b.deadLetters, entry)
	if len(b.deadLetters) > b.deadLetterCap {
		b.deadLetters = b.deadLetters[len(b.deadLetters)-b.deadLetterCap:]
	}
	size := len(b.deadLetters)
	b.deadMu.Unlock()

	if b.eventMetrics != nil {
		b.eventMetrics.DeadLetterSize.Set(float64(size))
	}

	b.logger.ErrorContext(ctx, "event moved to dead letter queue",
		slog.String("event_id", entry.Envelope.EventID),
		slog.String("event_type", entry.Envelope.EventType),
		slog.String("aggregate_id", entry.Envelope.AggregateID),
		slog.Int("attempts", attempts),
		slog.String("original_error", cause.Error()),
	)
}

// DeadLetters returns a copy of the current dead letter queue, newest last.
func (b *InMemoryEventBus) DeadLetters() []DeadLetter {
	b.deadMu.Lock()
	defer b.deadMu.Unlock()

	out := make([]DeadLetter, len(b.deadLetters))
	copy(out, b.deadLetters)

	return out
}

// ClearDeadLetters removes all entries from the dead letter queue.
func (b *InMemoryEventBus) ClearDeadLetters() {
	b.deadMu.Lock()
	b.deadLetters = nil
	b.deadMu.Unlock()

	if b.eventMetrics != nil {
		b.eventMetrics.DeadLetterSize.Set(0)
	}
}
