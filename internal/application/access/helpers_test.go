package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/user"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
	"github.com/coursery/coursery/internal/infrastructure/eventstore"
	"github.com/coursery/coursery/internal/infrastructure/projection"
	"github.com/coursery/coursery/internal/infrastructure/repository"
)

// fixture wires the access, user, course and policy repositories with the
// user access projection around one shared event store and bus.
type fixture struct {
	records  *repository.MemoryAccessRepository
	users    *repository.MemoryUserRepository
	courses  *repository.MemoryCourseRepository
	policies *repository.MemoryPolicyRepository
	index    *projection.UserAccessProjection
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := eventstore.NewInMemoryEventStore()
	bus := eventbus.NewInMemoryEventBus()

	f := &fixture{
		records:  repository.NewMemoryAccessRepository(store, bus),
		users:    repository.NewMemoryUserRepository(store, bus),
		courses:  repository.NewMemoryCourseRepository(store, bus),
		policies: repository.NewMemoryPolicyRepository(store, bus),
		index:    projection.NewUserAccessProjection(),
	}

	registry := projection.NewRegistry(store, nil)
	registry.Register(f.index)
	require.NoError(t, registry.SubscribeAll(bus))

	return f
}

// seedUser stores a registered user and returns its ID.
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

// seedAccess stores an active access record and returns its ID.
func (f *fixture) seedAccess(t *testing.T, userID, courseID uuid.UUID, expiresAt *time.Time) uuid.UUID {
	t.Helper()

	agg := access.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Grant(userID, courseID, time.Now().Add(-time.Hour), expiresAt))
	require.NoError(t, f.records.Save(context.Background(), agg))

	return agg.ID()
}

// seedExpiredAccess stores an access record that has already expired and
// returns its ID.
func (f *fixture) seedExpiredAccess(t *testing.T, userID, courseID uuid.UUID) uuid.UUID {
	t.Helper()

	expiry := time.Now().Add(-time.Hour)
	accessID := f.seedAccess(t, userID, courseID, &expiry)

	agg, err := f.records.FindByID(context.Background(), accessID)
	require.NoError(t, err)
	require.NoError(t, agg.Expire(time.Now()))
	require.NoError(t, f.records.Save(context.Background(), agg))

	return accessID
}
