package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/domain/errs"
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/uuid"
)

func TestAggregate_Place(t *testing.T) {
	t.Run("successful placement", func(t *testing.T) {
		agg := order.NewAggregate(uuid.NewUUID())
		userID := uuid.NewUUID()
		courseID := uuid.NewUUID()
		total := mustMoney(t, "100.00", "USD")

		err := agg.Place(userID, []uuid.UUID{courseID}, total)

		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, agg.Status())
		assert.Equal(t, userID, agg.UserID())
		assert.Equal(t, []uuid.UUID{courseID}, agg.CourseIDs())
		assert.True(t, agg.TotalAmount().Equals(total))
		assert.Equal(t, 1, agg.Version())
		assert.Len(t, agg.UncommittedEvents(), 1)
		assert.False(t, agg.PlacedAt().IsZero())
	})

	t.Run("already placed", func(t *testing.T) {
		agg := placedOrder(t)

		err := agg.Place(uuid.NewUUID(), []uuid.UUID{uuid.NewUUID()}, mustMoney(t, "10", "USD"))

		require.ErrorIs(t, err, errs.ErrAlreadyExists)
	})

	t.Run("missing user", func(t *testing.T) {
		agg := order.NewAggregate(uuid.NewUUID())

		err := agg.Place("", []uuid.UUID{uuid.NewUUID()}, mustMoney(t, "10", "USD"))

		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("no courses", func(t *testing.T) {
		agg := order.NewAggregate(uuid.NewUUID())

		err := agg.Place(uuid.NewUUID(), nil, mustMoney(t, "10", "USD"))

		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("duplicate course", func(t *testing.T) {
		agg := order.NewAggregate(uuid.NewUUID())
		courseID := uuid.NewUUID()

		err := agg.Place(uuid.NewUUID(), []uuid.UUID{courseID, courseID}, mustMoney(t, "10", "USD"))

		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}

func TestAggregate_MarkPaid(t *testing.T) {
	t.Run("pending order can be paid", func(t *testing.T) {
		agg := placedOrder(t)

		err := agg.MarkPaid("pay-123")

		require.NoError(t, err)
		assert.Equal(t, order.StatusPaid, agg.Status())
		assert.Equal(t, "pay-123", agg.PaymentID())
		require.NotNil(t, agg.PaidAt())
		assert.Equal(t, 2, agg.Version())
	})

	t.Run("payment ID required", func(t *testing.T) {
		agg := placedOrder(t)

		err := agg.MarkPaid("")

		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("cancelled order cannot be paid", func(t *testing.T) {
		agg := placedOrder(t)
		require.NoError(t, agg.Cancel("changed my mind"))

		err := agg.MarkPaid("pay-123")

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("unknown order", func(t *testing.T) {
		agg := order.NewAggregate(uuid.NewUUID())

		err := agg.MarkPaid("pay-123")

		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestAggregate_RefundFlow(t *testing.T) {
	t.Run("full refund lifecycle", func(t *testing.T) {
		agg := placedOrder(t)
		require.NoError(t, agg.MarkPaid("pay-123"))

		err := agg.RequestRefund("course quality")
		require.NoError(t, err)
		assert.Equal(t, order.StatusRefundRequested, agg.Status())
		assert.Equal(t, "course quality", agg.RefundReason())

		err = agg.MarkRefunded()
		require.NoError(t, err)
		assert.Equal(t, order.StatusRefunded, agg.Status())
		assert.Equal(t, 4, agg.Version())
	})

	t.Run("refund requires paid status", func(t *testing.T) {
		agg := placedOrder(t)

		err := agg.RequestRefund("too hard")

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("refund reason required", func(t *testing.T) {
		agg := placedOrder(t)
		require.NoError(t, agg.MarkPaid("pay-123"))

		err := agg.RequestRefund("")

		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("cannot refund without request", func(t *testing.T) {
		agg := placedOrder(t)
		require.NoError(t, agg.MarkPaid("pay-123"))

		err := agg.MarkRefunded()

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("refunded event carries order amount", func(t *testing.T) {
		agg := placedOrder(t)
		require.NoError(t, agg.MarkPaid("pay-123"))
		require.NoError(t, agg.RequestRefund("not as advertised"))
		agg.MarkEventsAsCommitted()

		require.NoError(t, agg.MarkRefunded())

		events := agg.UncommittedEvents()
		require.Len(t, events, 1)
		refunded, ok := events[0].(*order.Refunded)
		require.True(t, ok)
		assert.True(t, refunded.Amount.Equals(agg.TotalAmount()))
		assert.Equal(t, "not as advertised", refunded.Reason)
	})
}

func TestAggregate_Cancel(t *testing.T) {
	t.Run("pending order can be cancelled", func(t *testing.T) {
		agg := placedOrder(t)

		err := agg.Cancel("changed my mind")

		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, agg.Status())
		assert.Equal(t, "changed my mind", agg.CancellationReason())
	})

	t.Run("double cancel rejected", func(t *testing.T) {
		agg := placedOrder(t)
		require.NoError(t, agg.Cancel("first"))

		err := agg.Cancel("second")

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("paid order cannot be cancelled", func(t *testing.T) {
		agg := placedOrder(t)
		require.NoError(t, agg.MarkPaid("pay-123"))

		err := agg.Cancel("too late")

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestAggregate_MarkPaymentFailed(t *testing.T) {
	t.Run("pending payment can fail", func(t *testing.T) {
		agg := placedOrder(t)

		err := agg.MarkPaymentFailed("card declined")

		require.NoError(t, err)
		assert.Equal(t, order.StatusPaymentFailed, agg.Status())
		assert.Equal(t, "card declined", agg.FailureReason())
	})

	t.Run("failure reason required", func(t *testing.T) {
		agg := placedOrder(t)

		err := agg.MarkPaymentFailed("")

		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("paid order cannot fail payment", func(t *testing.T) {
		agg := placedOrder(t)
		require.NoError(t, agg.MarkPaid("pay-123"))

		err := agg.MarkPaymentFailed("card declined")

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestAggregate_Replay(t *testing.T) {
	t.Run("replay reproduces state", func(t *testing.T) {
		// Arrange - drive an order through its full lifecycle
		original := placedOrder(t)
		require.NoError(t, original.MarkPaid("pay-42"))
		require.NoError(t, original.RequestRefund("refund me"))
		require.NoError(t, original.MarkRefunded())
		stream := original.UncommittedEvents()

		// Act - rebuild from the recorded stream
		replayed := order.NewAggregate(original.ID())
		replayed.ReplayEvents(stream)

		// Assert
		assert.Equal(t, original.Status(), replayed.Status())
		assert.Equal(t, original.UserID(), replayed.UserID())
		assert.Equal(t, original.CourseIDs(), replayed.CourseIDs())
		assert.True(t, original.TotalAmount().Equals(replayed.TotalAmount()))
		assert.Equal(t, original.PaymentID(), replayed.PaymentID())
		assert.Equal(t, original.RefundReason(), replayed.RefundReason())
		assert.Equal(t, original.Version(), replayed.Version())
		assert.Empty(t, replayed.UncommittedEvents(), "replay must not create uncommitted events")
	})

	t.Run("event versions are sequential", func(t *testing.T) {
		agg := placedOrder(t)
		require.NoError(t, agg.MarkPaid("pay-1"))
		require.NoError(t, agg.RequestRefund("reason"))

		events := agg.UncommittedEvents()
		require.Len(t, events, 3)
		for i, evt := range events {
			assert.Equal(t, i+1, evt.Version())
		}
	})
}

func TestAggregate_MarkEventsAsCommitted(t *testing.T) {
	// Arrange
	agg := placedOrder(t)
	require.Len(t, agg.UncommittedEvents(), 1)

	// Act
	agg.MarkEventsAsCommitted()

	// Assert
	assert.Empty(t, agg.UncommittedEvents())
	assert.Equal(t, 1, agg.Version(), "committing must not change the version")
}

func TestStatus_ParseStatus(t *testing.T) {
	testCases := []struct {
		input   string
		want    order.Status
		wantErr bool
	}{
		{"PENDING", order.StatusPending, false},
		{"PAID", order.StatusPaid, false},
		{"REFUNDED", order.StatusRefunded, false},
		{"shipped", "", true},
		{"", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := order.ParseStatus(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, errs.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, order.StatusPending.IsTerminal())
	assert.False(t, order.StatusPaid.IsTerminal())
	assert.False(t, order.StatusRefundRequested.IsTerminal())
	assert.True(t, order.StatusRefunded.IsTerminal())
	assert.True(t, order.StatusCancelled.IsTerminal())
	assert.True(t, order.StatusPaymentFailed.IsTerminal())
}

func TestEvents_CarryAggregateIdentity(t *testing.T) {
	// Arrange
	agg := placedOrder(t)

	// Act
	evt := agg.UncommittedEvents()[0]

	// Assert
	assert.Equal(t, order.EventTypeOrderPlaced, evt.EventType())
	assert.Equal(t, order.AggregateType, evt.AggregateType())
	assert.Equal(t, agg.ID().String(), evt.AggregateID())
	assert.False(t, evt.EventID().IsZero())
	assert.Equal(t, event.CurrentSchemaVersion, evt.SchemaVersion())
}

func placedOrder(t *testing.T) *order.Aggregate {
	t.Helper()
	agg := order.NewAggregate(uuid.NewUUID())
	err := agg.Place(uuid.NewUUID(), []uuid.UUID{uuid.NewUUID(), uuid.NewUUID()}, mustMoney(t, "100.00", "USD"))
	require.NoError(t, err)
	return agg
}

func mustMoney(t *testing.T, amount, currency string) money.Money {
	t.Helper()
	m, err := money.NewFromString(amount, currency)
	require.NoError(t, err)
	return m
}
