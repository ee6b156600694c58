package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
	"github.com/coursery/coursery/internal/infrastructure/eventstore"
	"github.com/coursery/coursery/internal/infrastructure/repository"
)

// serviceFixture wires the repositories a service under test runs on, all
// sharing one event store and bus.
type serviceFixture struct {
	store    *eventstore.InMemoryEventStore
	bus      *eventbus.InMemoryEventBus
	orders   *repository.MemoryOrderRepository
	courses  *repository.MemoryCourseRepository
	policies *repository.MemoryPolicyRepository
	records  *repository.MemoryAccessRepository
}

func newServiceFixture() *serviceFixture {
	store := eventstore.NewInMemoryEventStore()
	bus := eventbus.NewInMemoryEventBus()

	return &serviceFixture{
		store:    store,
		bus:      bus,
		orders:   repository.NewMemoryOrderRepository(store, bus),
		courses:  repository.NewMemoryCourseRepository(store, bus),
		policies: repository.NewMemoryPolicyRepository(store, bus),
		records:  repository.NewMemoryAccessRepository(store, bus),
	}
}

// seedPolicy stores a refund policy and returns its ID.
func (f *serviceFixture) seedPolicy(t *testing.T, name string, policyType policy.Type, days int) uuid.UUID {
	t.Helper()

	policyName, err := policy.NewName(name)
	require.NoError(t, err)
	period, err := policy.NewRefundPeriod(days)
	require.NoError(t, err)
	conditions, err := policy.NewConditions("Refund within the stated window.")
	require.NoError(t, err)

	agg := policy.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Create(policyName, policyType, period, conditions))
	require.NoError(t, f.policies.Save(context.Background(), agg))

	return agg.ID()
}

// seedCourse stores a course under the policy and returns its ID.
func (f *serviceFixture) seedCourse(t *testing.T, title string, accessType course.AccessType, policyID uuid.UUID) uuid.UUID {
	t.Helper()

	courseTitle, err := course.NewTitle(title)
	require.NoError(t, err)
	description, err := course.NewDescription("A course about " + title)
	require.NoError(t, err)
	price, err := money.NewFromString("100.00", "USD")
	require.NoError(t, err)

	agg := course.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Create(courseTitle, description, price, accessType, policyID))
	require.NoError(t, f.courses.Save(context.Background(), agg))

	return agg.ID()
}

// seedPendingOrder stores a pending order for the courses and returns its ID.
func (f *serviceFixture) seedPendingOrder(t *testing.T, userID uuid.UUID, courseIDs ...uuid.UUID) uuid.UUID {
	t.Helper()

	total, err := money.NewFromString("100.00", "USD")
	require.NoError(t, err)

	agg := order.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Place(userID, courseIDs, total))
	require.NoError(t, f.orders.Save(context.Background(), agg))

	return agg.ID()
}

// seedAccess stores an access record and returns its ID.
func (f *serviceFixture) seedAccess(t *testing.T, userID, courseID uuid.UUID, expiresAt *time.Time) uuid.UUID {
	t.Helper()

	agg := access.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Grant(userID, courseID, time.Now(), expiresAt))
	require.NoError(t, f.records.Save(context.Background(), agg))

	return agg.ID()
}

func timePtr(t time.Time) *time.Time {
	return &t
}
