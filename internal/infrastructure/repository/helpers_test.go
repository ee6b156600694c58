package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/user"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
	"github.com/coursery/coursery/internal/infrastructure/eventstore"
)

// newBackend returns the event store and bus a repository under test runs on.
func newBackend() (*eventstore.InMemoryEventStore, *eventbus.InMemoryEventBus) {
	return eventstore.NewInMemoryEventStore(), eventbus.NewInMemoryEventBus()
}

func mustMoney(t *testing.T, amount, currency string) money.Money {
	t.Helper()
	m, err := money.NewFromString(amount, currency)
	require.NoError(t, err)
	return m
}

func placedOrder(t *testing.T, userID uuid.UUID, courseIDs ...uuid.UUID) *order.Aggregate {
	t.Helper()

	agg := order.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Place(userID, courseIDs, mustMoney(t, "100.00", "USD")))

	return agg
}

func registeredUser(t *testing.T, email string) *user.Aggregate {
	t.Helper()

	address, err := user.NewEmailAddress(email)
	require.NoError(t, err)
	profile, err := user.NewProfile("Demo", "User", "")
	require.NoError(t, err)

	agg := user.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Register(address, profile))

	return agg
}

func createdCourse(t *testing.T, title string, policyID uuid.UUID) *course.Aggregate {
	t.Helper()

	courseTitle, err := course.NewTitle(title)
	require.NoError(t, err)
	description, err := course.NewDescription("A course about " + title)
	require.NoError(t, err)

	agg := course.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Create(
		courseTitle,
		description,
		mustMoney(t, "100.00", "USD"),
		course.AccessUnlimited,
		policyID,
	))

	return agg
}

func grantedAccess(t *testing.T, userID, courseID uuid.UUID, expiresAt *time.Time) *access.Aggregate {
	t.Helper()

	agg := access.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Grant(userID, courseID, time.Now(), expiresAt))

	return agg
}

func createdPolicy(t *testing.T, name string, days int) *policy.Aggregate {
	t.Helper()

	policyName, err := policy.NewName(name)
	require.NoError(t, err)
	period, err := policy.NewRefundPeriod(days)
	require.NoError(t, err)
	conditions, err := policy.NewConditions("Refund within the stated window.")
	require.NoError(t, err)

	agg := policy.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Create(policyName, policy.TypeStandard, period, conditions))

	return agg
}

func timePtr(t time.Time) *time.Time {
	return &t
}
