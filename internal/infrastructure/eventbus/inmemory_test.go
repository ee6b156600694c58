package eventbus_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
)

// testEvent is a concrete event type for testing.
type testEvent struct {
	event.BaseEvent

	Message string `json:"message"`
}

func newTestEvent(eventType, aggregateID, message string) *testEvent {
	return &testEvent{
		BaseEvent: event.NewBaseEvent(
			eventType,
			aggregateID,
			"test",
			1,
			event.NewMetadata("user-1", "correlation-1", "causation-1"),
		),
		Message: message,
	}
}

// fastRetryConfig keeps retry tests quick.
func fastRetryConfig(maxRetries int) eventbus.RetryConfig {
	return eventbus.RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func TestNewInMemoryEventBus(t *testing.T) {
	t.Run("creates with defaults", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()

		assert.NotNil(t, bus)
		assert.Equal(t, 0, bus.HandlerCount("any.event"))
		assert.Empty(t, bus.DeadLetters())
	})

	t.Run("applies options", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		retryConfig := eventbus.RetryConfig{
			MaxRetries:     5,
			InitialBackoff: 200 * time.Millisecond,
			MaxBackoff:     10 * time.Second,
			BackoffFactor:  3.0,
		}

		bus := eventbus.NewInMemoryEventBus(
			eventbus.WithLogger(logger),
			eventbus.WithRetryConfig(retryConfig),
			eventbus.WithDeadLetterCapacity(10),
		)

		assert.NotNil(t, bus)
	})
}

func TestInMemoryEventBus_Subscribe(t *testing.T) {
	t.Run("registers handler successfully", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()
		handler := func(_ context.Context, _ event.DomainEvent) error {
			return nil
		}

		err := bus.Subscribe("user.registered", handler)
		require.NoError(t, err)

		assert.Equal(t, 1, bus.HandlerCount("user.registered"))
	})

	t.Run("allows multiple handlers for same event type", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()

		handler1 := func(_ context.Context, _ event.DomainEvent) error { return nil }
		handler2 := func(_ context.Context, _ event.DomainEvent) error { return nil }

		require.NoError(t, bus.Subscribe("order.placed", handler1))
		require.NoError(t, bus.Subscribe("order.placed", handler2))

		assert.Equal(t, 2, bus.HandlerCount("order.placed"))
	})

	t.Run("returns error for empty event type", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()
		handler := func(_ context.Context, _ event.DomainEvent) error { return nil }

		err := bus.Subscribe("", handler)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "event type cannot be empty")
	})

	t.Run("returns error for nil handler", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()

		err := bus.Subscribe("user.registered", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "handler cannot be nil")
	})
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("handler receives published event", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()

		var received event.DomainEvent
		handler := func(_ context.Context, e event.DomainEvent) error {
			received = e
			return nil
		}

		require.NoError(t, bus.Subscribe("user.registered", handler))

		evt := newTestEvent("user.registered", "user-123", "hello")
		require.NoError(t, bus.Publish(ctx, evt))

		require.NotNil(t, received)
		assert.Equal(t, "user.registered", received.EventType())
		assert.Equal(t, "user-123", received.AggregateID())
	})

	t.Run("handlers run synchronously in registration order", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()

		var order []int
		for i := 1; i <= 3; i++ {
			require.NoError(t, bus.Subscribe("order.placed", func(_ context.Context, _ event.DomainEvent) error {
				order = append(order, i)
				return nil
			}))
		}

		require.NoError(t, bus.Publish(ctx, newTestEvent("order.placed", "order-456", "new order")))

		// Dispatch completed before Publish returned and kept order
		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("only matching event type receives event", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()

		var calls int
		require.NoError(t, bus.Subscribe("order.placed", func(_ context.Context, _ event.DomainEvent) error {
			calls++
			return nil
		}))

		require.NoError(t, bus.Publish(ctx, newTestEvent("order.paid", "order-1", "paid")))

		assert.Equal(t, 0, calls)
	})

	t.Run("returns error for nil event", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()

		err := bus.Publish(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "event cannot be nil")
	})
}

func TestInMemoryEventBus_SubscribeAll(t *testing.T) {
	ctx := context.Background()

	t.Run("wildcard handler sees every event type", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()

		var types []string
		require.NoError(t, bus.SubscribeAll(func(_ context.Context, e event.DomainEvent) error {
			types = append(types, e.EventType())
			return nil
		}))

		require.NoError(t, bus.Publish(ctx, newTestEvent("order.placed", "o-1", "a")))
		require.NoError(t, bus.Publish(ctx, newTestEvent("user.registered", "u-1", "b")))

		assert.Equal(t, []string{"order.placed", "user.registered"}, types)
	})

	t.Run("wildcard runs after type handlers", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()

		var order []string
		require.NoError(t, bus.SubscribeAll(func(_ context.Context, _ event.DomainEvent) error {
			order = append(order, "wildcard")
			return nil
		}))
		require.NoError(t, bus.Subscribe("order.placed", func(_ context.Context, _ event.DomainEvent) error {
			order = append(order, "typed")
			return nil
		}))

		require.NoError(t, bus.Publish(ctx, newTestEvent("order.placed", "o-1", "a")))

		assert.Equal(t, []string{"typed", "wildcard"}, order)
	})

	t.Run("returns error for nil handler", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus()

		err := bus.SubscribeAll(nil)
		require.Error(t, err)
	})
}

func TestInMemoryEventBus_RetryLogic(t *testing.T) {
	ctx := context.Background()

	t.Run("retries failed handler until success", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus(eventbus.WithRetryConfig(fastRetryConfig(2)))

		attempts := 0
		handler := func(_ context.Context, _ event.DomainEvent) error {
			attempts++
			if attempts < 3 {
				return errors.New("temporary error")
			}
			return nil
		}

		require.NoError(t, bus.Subscribe("retry.test", handler))
		require.NoError(t, bus.Publish(ctx, newTestEvent("retry.test", "agg-retry", "retry me")))

		assert.Equal(t, 3, attempts)
		assert.Empty(t, bus.DeadLetters())
	})

	t.Run("gives up after max retries and dead-letters", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus(eventbus.WithRetryConfig(fastRetryConfig(2)))

		attempts := 0
		handler := func(_ context.Context, _ event.DomainEvent) error {
			attempts++
			return errors.New("persistent error")
		}

		require.NoError(t, bus.Subscribe("retry.fail", handler))

		evt := newTestEvent("retry.fail", "agg-fail", "fail me")
		require.NoError(t, bus.Publish(ctx, evt))

		// 1 initial attempt + 2 retries = 3 total attempts
		assert.Equal(t, 3, attempts)

		dead := bus.DeadLetters()
		require.Len(t, dead, 1)
		assert.Equal(t, "retry.fail", dead[0].Envelope.EventType)
		assert.Equal(t, "agg-fail", dead[0].Envelope.AggregateID)
		assert.Equal(t, evt.EventID().String(), dead[0].Envelope.EventID)
		assert.Equal(t, 3, dead[0].Attempts)
		assert.Equal(t, "persistent error", dead[0].Error)
	})
}

func TestInMemoryEventBus_HandlerIsolation(t *testing.T) {
	ctx := context.Background()

	t.Run("failing handler does not block later handlers", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus(eventbus.WithRetryConfig(fastRetryConfig(1)))

		var laterCalled bool
		require.NoError(t, bus.Subscribe("order.placed", func(_ context.Context, _ event.DomainEvent) error {
			return errors.New("projection broken")
		}))
		require.NoError(t, bus.Subscribe("order.placed", func(_ context.Context, _ event.DomainEvent) error {
			laterCalled = true
			return nil
		}))

		// Publish reports success despite the first handler failing
		err := bus.Publish(ctx, newTestEvent("order.placed", "order-1", "new order"))
		require.NoError(t, err)

		assert.True(t, laterCalled)
		require.Len(t, bus.DeadLetters(), 1)
		assert.Equal(t, 0, bus.DeadLetters()[0].HandlerIndex)
	})
}

func TestInMemoryEventBus_DeadLetters(t *testing.T) {
	ctx := context.Background()

	t.Run("queue is bounded and drops oldest", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus(
			eventbus.WithRetryConfig(fastRetryConfig(0)),
			eventbus.WithDeadLetterCapacity(2),
		)

		require.NoError(t, bus.Subscribe("doomed", func(_ context.Context, _ event.DomainEvent) error {
			return errors.New("always fails")
		}))

		for range 3 {
			require.NoError(t, bus.Publish(ctx, newTestEvent("doomed", "agg", "x")))
		}

		dead := bus.DeadLetters()
		assert.Len(t, dead, 2)
	})

	t.Run("clear empties the queue", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus(eventbus.WithRetryConfig(fastRetryConfig(0)))

		require.NoError(t, bus.Subscribe("doomed", func(_ context.Context, _ event.DomainEvent) error {
			return errors.New("always fails")
		}))
		require.NoError(t, bus.Publish(ctx, newTestEvent("doomed", "agg", "x")))
		require.Len(t, bus.DeadLetters(), 1)

		bus.ClearDeadLetters()

		assert.Empty(t, bus.DeadLetters())
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		bus := eventbus.NewInMemoryEventBus(eventbus.WithRetryConfig(fastRetryConfig(0)))

		require.NoError(t, bus.Subscribe("doomed", func(_ context.Context, _ event.DomainEvent) error {
			return errors.New("always fails")
		}))
		require.NoError(t, bus.Publish(ctx, newTestEvent("doomed", "agg", "x")))

		dead := bus.DeadLetters()
		dead[0].Error = "mutated"

		assert.Equal(t, "always fails", bus.DeadLetters()[0].Error)
	})
}

func TestDefaultRetryConfig(t *testing.T) {
	config := eventbus.DefaultRetryConfig()

	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, config.InitialBackoff)
	assert.Equal(t, 5*time.Second, config.MaxBackoff)
	assert.InDelta(t, 2.0, config.BackoffFactor, 0.001)
}

func TestNewEnvelope(t *testing.T) {
	evt := newTestEvent("order.placed", "order-123", "payload content")

	envelope, err := eventbus.NewEnvelope(evt)
	require.NoError(t, err)

	assert.Equal(t, evt.EventID().String(), envelope.EventID)
	assert.Equal(t, "order.placed", envelope.EventType)
	assert.Equal(t, "order-123", envelope.AggregateID)
	assert.Equal(t, "test", envelope.AggregateType)
	assert.Equal(t, 1, envelope.Version)
	assert.Equal(t, event.CurrentSchemaVersion, envelope.SchemaVersion)
	assert.Equal(t, "user-1", envelope.Metadata.UserID)
	assert.JSONEq(t, `{"message":"payload content"}`, string(envelope.Payload))
}
