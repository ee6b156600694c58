package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessapp "github.com/coursery/coursery/internal/application/access"
	"github.com/coursery/coursery/internal/application/appcore"
	orderapp "github.com/coursery/coursery/internal/application/order"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/tests/testutil"
)

// trafficIDs are the aggregates created by driveTraffic.
type trafficIDs struct {
	policyID  uuid.UUID
	courseID  uuid.UUID
	userID    uuid.UUID
	compUser  uuid.UUID
	paidOrder uuid.UUID
	refunded  uuid.UUID
}

// driveTraffic runs a realistic write load: one order stays paid, a second
// one is refunded, and a second user gets a promotional grant outside any
// purchase.
func driveTraffic(t *testing.T, ctx context.Context, stack *testutil.Stack) trafficIDs {
	t.Helper()

	ids := trafficIDs{}
	ids.policyID = stack.CreatePolicy(t, ctx, "standard", 30)
	ids.courseID = stack.CreateCourse(t, ctx, testutil.BuildCreateCourseCommand(ids.policyID))
	ids.userID = stack.RegisterUser(t, ctx, "traffic@example.com")

	ids.paidOrder = stack.PlaceOrder(t, ctx, ids.userID, []uuid.UUID{ids.courseID}, "49.90", "USD")
	stack.PayOrder(t, ctx, ids.paidOrder, "pay-traffic-001")

	ids.refunded = stack.PlaceOrder(t, ctx, ids.userID, []uuid.UUID{ids.courseID}, "49.90", "USD")
	stack.PayOrder(t, ctx, ids.refunded, "pay-traffic-002")
	_, err := stack.RequestRefundUC.Execute(ctx, orderapp.RequestRefundCommand{
		OrderID: ids.refunded,
		Reason:  "testing the refund path",
	})
	require.NoError(t, err)

	ids.compUser = stack.RegisterUser(t, ctx, "comp@example.com")
	_, err = stack.GrantAccessUC.Execute(ctx, accessapp.GrantAccessCommand{
		UserID:   ids.compUser,
		CourseID: ids.courseID,
	})
	require.NoError(t, err)

	return ids
}

// verifyAll checks every aggregate in the store and returns how many failed.
func verifyAll(t *testing.T, ctx context.Context, stack *testutil.Stack) int {
	t.Helper()

	inconsistent := 0
	for _, raw := range stack.Store.AllAggregateIDs() {
		id, err := uuid.ParseUUID(raw)
		require.NoError(t, err)

		ok, err := stack.Registry.VerifyConsistency(ctx, id)
		require.NoError(t, err)
		if !ok {
			inconsistent++
		}
	}
	return inconsistent
}

func TestReadModelConsistency_VerifyAfterTraffic(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	stack := testutil.NewStack(t)

	ids := driveTraffic(t, ctx, stack)

	assert.Zero(t, verifyAll(t, ctx, stack))
	assert.Empty(t, stack.Bus.DeadLetters(), "no handler may fail during traffic")

	// The promotional grant reached the access read model like any purchase
	views := stack.Access.UserAccess(ids.compUser.String())
	assert.Len(t, views, 1)
}

func TestReadModelConsistency_DetectsDroppedHistoryRows(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	stack := testutil.NewStack(t)

	ids := driveTraffic(t, ctx, stack)

	stack.History.Reset()

	consistent, err := stack.Registry.VerifyConsistency(ctx, ids.paidOrder)
	require.NoError(t, err)
	assert.False(t, consistent, "order verification must fail after the history rows were dropped")

	// Aggregates without an order read model still verify as consistent
	consistent, err = stack.Registry.VerifyConsistency(ctx, ids.courseID)
	require.NoError(t, err)
	assert.True(t, consistent)
}

func TestReadModelConsistency_RebuildAllRestoresEverything(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	stack := testutil.NewStack(t)

	ids := driveTraffic(t, ctx, stack)

	stack.History.Reset()
	stack.Catalog.Reset()
	require.Positive(t, verifyAll(t, ctx, stack))

	require.NoError(t, stack.Registry.RebuildAll(ctx))

	assert.Zero(t, verifyAll(t, ctx, stack))

	view, ok := stack.History.Order(ids.paidOrder.String())
	require.True(t, ok)
	assert.Equal(t, string(order.StatusPaid), view.Status)

	courseView, ok := stack.Catalog.Course(ids.courseID.String())
	require.True(t, ok)
	assert.Equal(t, "Test Course", courseView.Title)

	usageView, ok := stack.Usage.Policy(ids.policyID.String())
	require.True(t, ok)
	assert.Equal(t, 1, usageView.CourseCount)

	// The rebuild resets before replaying, so totals are not double counted
	summary := stack.Revenue.Summary()
	require.Len(t, summary, 1)
	assert.Equal(t, 2, summary[0].PaidOrders)
	assert.Equal(t, 1, summary[0].RefundedOrders)
}

func TestReadModelConsistency_RebuildOneRestoresSingleStream(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	stack := testutil.NewStack(t)

	ids := driveTraffic(t, ctx, stack)

	stack.History.Reset()

	require.NoError(t, stack.Registry.RebuildOne(ctx, ids.paidOrder))

	consistent, err := stack.Registry.VerifyConsistency(ctx, ids.paidOrder)
	require.NoError(t, err)
	assert.True(t, consistent)

	// The other order's row is still missing
	consistent, err = stack.Registry.VerifyConsistency(ctx, ids.refunded)
	require.NoError(t, err)
	assert.False(t, consistent)
}

func TestReadModelConsistency_RebuildUnknownAggregate(t *testing.T) {
	ctx := testutil.NewTestContext(t)
	stack := testutil.NewStack(t)

	err := stack.Registry.RebuildOne(ctx, uuid.NewUUID())

	require.ErrorIs(t, err, appcore.ErrAggregateNotFound)
}
