package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/coursery/coursery/internal/domain/event"
)

const maxPayloadLogLength = 500

// LoggingHandler logs all domain events for audit trail purposes.
// It is registered through SubscribeAll so every event passes through it.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a new LoggingHandler.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingHandler{
		logger: logger,
	}
}

// Handle logs the domain event.
func (h *LoggingHandler) Handle(ctx context.Context, evt event.DomainEvent) error {
	attrs := []any{
		slog.String("event_id", evt.EventID().String()),
		slog.String("event_type", evt.EventType()),
		slog.String("aggregate_id", evt.AggregateID()),
		slog.String("aggregate_type", evt.AggregateType()),
		slog.Time("occurred_at", evt.OccurredAt()),
		slog.Int("version", evt.Version()),
	}

	metadata := evt.Metadata()
	if metadata.UserID != "" {
		attrs = append(attrs, slog.String("user_id", metadata.UserID))
	}
	if metadata.CorrelationID != "" {
		attrs = append(attrs, slog.String("correlation_id", metadata.CorrelationID))
	}

	if payload, err := json.Marshal(evt); err == nil && len(payload) > 2 {
		// Truncate large payloads for logging
		text := string(payload)
		if len(text) > maxPayloadLogLength {
			text = text[:maxPayloadLogLength] + "..."
		}
		attrs = append(attrs, slog.String("payload", text))
	}

	h.logger.InfoContext(ctx, "domain event", attrs...)

	return nil
}

// AsEventHandler converts LoggingHandler to EventHandler function type.
func (h *LoggingHandler) AsEventHandler() EventHandler {
	return h.Handle
}
