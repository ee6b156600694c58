package order_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/money"
	domainorder "github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/user"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
	"github.com/coursery/coursery/internal/infrastructure/eventstore"
	"github.com/coursery/coursery/internal/infrastructure/projection"
	"github.com/coursery/coursery/internal/infrastructure/repository"
	"github.com/coursery/coursery/internal/service"
)

// fixture wires real in-memory repositories, the order history projection
// and the order processing service around one shared event store and bus.
type fixture struct {
	orders     *repository.MemoryOrderRepository
	users      *repository.MemoryUserRepository
	courses    *repository.MemoryCourseRepository
	policies   *repository.MemoryPolicyRepository
	records    *repository.MemoryAccessRepository
	history    *projection.OrderHistoryProjection
	processing *service.OrderProcessingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := eventstore.NewInMemoryEventStore()
	bus := eventbus.NewInMemoryEventBus()

	f := &fixture{
		orders:   repository.NewMemoryOrderRepository(store, bus),
		users:    repository.NewMemoryUserRepository(store, bus),
		courses:  repository.NewMemoryCourseRepository(store, bus),
		policies: repository.NewMemoryPolicyRepository(store, bus),
		records:  repository.NewMemoryAccessRepository(store, bus),
		history:  projection.NewOrderHistoryProjection(),
	}

	registry := projection.NewRegistry(store, nil)
	registry.Register(f.history)
	require.NoError(t, registry.SubscribeAll(bus))

	eligibility := service.NewRefundEligibilityService(f.courses, f.policies, f.records)
	f.processing = service.NewOrderProcessingService(f.orders, f.courses, f.records, eligibility)

	return f
}

// seedUser stores a user and returns its ID.
func (f *fixture) seedUser(t *testing.T, email string) uuid.UUID {
	t.Helper()

	address, err := user.NewEmailAddress(email)
	require.NoError(t, err)
	profile, err := user.NewProfile("Demo", "User", "")
	require.NoError(t, err)

	agg := user.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Register(address, profile))
	require.NoError(t, f.users.Save(context.Background(), agg))

	return agg.ID()
}

// seedCourse stores a purchasable course under a fresh standard policy and
// returns its ID.
func (f *fixture) seedCourse(t *testing.T, title string) uuid.UUID {
	t.Helper()

	policyName, err := policy.NewName("Policy for " + title)
	require.NoError(t, err)
	period, err := policy.NewRefundPeriod(30)
	require.NoError(t, err)
	conditions, err := policy.NewConditions("Refund within the stated window.")
	require.NoError(t, err)

	pol := policy.NewAggregate(uuid.NewUUID())
	require.NoError(t, pol.Create(policyName, policy.TypeStandard, period, conditions))
	require.NoError(t, f.policies.Save(context.Background(), pol))

	courseTitle, err := course.NewTitle(title)
	require.NoError(t, err)
	description, err := course.NewDescription("A course about "+title)
	require.NoError(t, err)
	price, err := money.NewFromString("100.00", "USD")
	require.NoError(t, err)

	crs := course.NewAggregate(uuid.NewUUID())
	require.NoError(t, crs.Create(courseTitle, description, price, course.AccessUnlimited, pol.ID()))
	require.NoError(t, f.courses.Save(context.Background(), crs))

	return crs.ID()
}

// seedPendingOrder stores a pending order and returns its ID.
func (f *fixture) seedPendingOrder(t *testing.T, userID uuid.UUID, courseIDs ...uuid.UUID) uuid.UUID {
	t.Helper()

	total, err := money.NewFromString("100.00", "USD")
	require.NoError(t, err)

	agg := domainorder.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Place(userID, courseIDs, total))
	require.NoError(t, f.orders.Save(context.Background(), agg))

	return agg.ID()
}
