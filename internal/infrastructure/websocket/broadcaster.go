package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
)

// EventBus defines the interface for subscribing to domain events.
// Declared on the consumer side per project guidelines.
type EventBus interface {
	// SubscribeAll registers a handler invoked for every published event.
	SubscribeAll(handler eventbus.EventHandler) error
}

// FrameTypeEvent marks frames carrying a domain event envelope.
const FrameTypeEvent = "event"

// Frame is the server-to-client message pushed on the feed. Data carries
// the full event envelope, so clients see the same wire shape the dead
// letter queue records.
type Frame struct {
	Type  string            `json:"type"`
	Topic string            `json:"topic"`
	Data  eventbus.Envelope `json:"data"`
}

// Broadcaster listens to the event bus and pushes every domain event to
// the hub, using the aggregate type as the topic.
type Broadcaster struct {
	hub      *Hub
	eventBus EventBus
	logger   *slog.Logger

	// running indicates if the broadcaster is active.
	running bool

	// runningMu protects the running flag.
	runningMu sync.RWMutex
}

// BroadcasterOption configures a Broadcaster.
type BroadcasterOption func(*Broadcaster)

// WithBroadcasterLogger sets the logger for the broadcaster.
func WithBroadcasterLogger(logger *slog.Logger) BroadcasterOption {
	return func(b *Broadcaster) {
		b.logger = logger
	}
}

// NewBroadcaster creates a new Broadcaster.
func NewBroadcaster(hub *Hub, eventBus EventBus, opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		hub:      hub,
		eventBus: eventBus,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Start subscribes to the event bus and begins broadcasting events.
// This method registers the handler but doesn't block.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = true
	b.runningMu.Unlock()

	if err := b.eventBus.SubscribeAll(b.HandleEvent); err != nil {
		b.runningMu.Lock()
		b.running = false
		b.runningMu.Unlock()
		return err
	}

	b.logger.InfoContext(ctx, "websocket broadcaster started")

	return nil
}

// IsRunning returns whether the broadcaster is running.
func (b *Broadcaster) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

// HandleEvent wraps a domain event in a frame and hands it to the hub.
// The topic is the event's aggregate type, e.g. "Order".
func (b *Broadcaster) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	envelope, err := eventbus.NewEnvelope(evt)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to build event envelope",
			slog.String("event_type", evt.EventType()),
			slog.String("error", err.Error()),
		)
		return err
	}

	frame := Frame{
		Type:  FrameTypeEvent,
		Topic: evt.AggregateType(),
		Data:  envelope,
	}

	message, err := json.Marshal(frame)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to marshal frame",
			slog.String("event_type", evt.EventType()),
			slog.String("error", err.Error()),
		)
		return err
	}

	b.hub.Broadcast(frame.Topic, message)

	b.logger.DebugContext(ctx, "event broadcast",
		slog.String("event_type", evt.EventType()),
		slog.String("topic", frame.Topic),
		slog.String("aggregate_id", evt.AggregateID()),
	)

	return nil
}
