package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
	"github.com/coursery/coursery/internal/infrastructure/eventstore"
	"github.com/coursery/coursery/internal/infrastructure/projection"
	"github.com/coursery/coursery/internal/infrastructure/repository"
)

// fixture wires course and policy repositories with the catalog projection
// around one shared event store and bus.
type fixture struct {
	courses  *repository.MemoryCourseRepository
	policies *repository.MemoryPolicyRepository
	catalog  *projection.CourseCatalogProjection
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := eventstore.NewInMemoryEventStore()
	bus := eventbus.NewInMemoryEventBus()

	f := &fixture{
		courses:  repository.NewMemoryCourseRepository(store, bus),
		policies: repository.NewMemoryPolicyRepository(store, bus),
		catalog:  projection.NewCourseCatalogProjection(),
	}

	registry := projection.NewRegistry(store, nil)
	registry.Register(f.catalog)
	require.NoError(t, registry.SubscribeAll(bus))

	return f
}

// seedPolicy stores an active standard policy and returns its ID.
func (f *fixture) seedPolicy(t *testing.T, name string) uuid.UUID {
	t.Helper()

	policyName, err := policy.NewName(name)
	require.NoError(t, err)
	period, err := policy.NewRefundPeriod(30)
	require.NoError(t, err)
	conditions, err := policy.NewConditions("Refund within the stated window.")
	require.NoError(t, err)

	pol := policy.NewAggregate(uuid.NewUUID())
	require.NoError(t, pol.Create(policyName, policy.TypeStandard, period, conditions))
	require.NoError(t, f.policies.Save(context.Background(), pol))

	return pol.ID()
}

// seedCourse stores an active course under the given policy and returns its ID.
func (f *fixture) seedCourse(t *testing.T, title string, policyID uuid.UUID) uuid.UUID {
	t.Helper()

	courseTitle, err := course.NewTitle(title)
	require.NoError(t, err)
	description, err := course.NewDescription("A course about "+title)
	require.NoError(t, err)
	price, err := money.NewFromString("100.00", "USD")
	require.NoError(t, err)

	crs := course.NewAggregate(uuid.NewUUID())
	require.NoError(t, crs.Create(courseTitle, description, price, course.AccessUnlimited, policyID))
	require.NoError(t, f.courses.Save(context.Background(), crs))

	return crs.ID()
}
