package projection_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/uuid"
)

func mustMoney(t *testing.T, amount, currency string) money.Money {
	t.Helper()
	m, err := money.NewFromString(amount, currency)
	require.NoError(t, err)
	return m
}

func mustTitle(t *testing.T, raw string) course.Title {
	t.Helper()
	title, err := course.NewTitle(raw)
	require.NoError(t, err)
	return title
}

func mustDescription(t *testing.T, raw string) course.Description {
	t.Helper()
	description, err := course.NewDescription(raw)
	require.NoError(t, err)
	return description
}

func mustPolicyName(t *testing.T, raw string) policy.Name {
	t.Helper()
	name, err := policy.NewName(raw)
	require.NoError(t, err)
	return name
}

func mustRefundPeriod(t *testing.T, days int) policy.RefundPeriod {
	t.Helper()
	period, err := policy.NewRefundPeriod(days)
	require.NoError(t, err)
	return period
}

func mustConditions(t *testing.T, raw string) policy.Conditions {
	t.Helper()
	conditions, err := policy.NewConditions(raw)
	require.NoError(t, err)
	return conditions
}

func mustProgress(t *testing.T, value int) access.Progress {
	t.Helper()
	progress, err := access.NewProgress(value)
	require.NoError(t, err)
	return progress
}

func testMetadata() event.Metadata {
	return event.NewMetadata("test-actor", "test-correlation", "")
}

func placedEvent(t *testing.T, orderID, userID uuid.UUID, courseIDs []uuid.UUID, amount string) *order.Placed {
	t.Helper()
	return order.NewOrderPlaced(orderID, userID, courseIDs, mustMoney(t, amount, "USD"), 1, testMetadata())
}

func paidEvent(t *testing.T, orderID, userID uuid.UUID, courseIDs []uuid.UUID, amount string, version int) *order.Paid {
	t.Helper()
	return order.NewOrderPaid(orderID, userID, courseIDs, "pay-1", mustMoney(t, amount, "USD"), version, testMetadata())
}

func courseCreatedEvent(t *testing.T, courseID, policyID uuid.UUID, title, amount string) *course.Created {
	t.Helper()
	return course.NewCourseCreated(
		courseID,
		mustTitle(t, title),
		mustDescription(t, "A course about "+title),
		mustMoney(t, amount, "USD"),
		course.AccessUnlimited,
		policyID,
		1,
		testMetadata(),
	)
}

func policyCreatedEvent(t *testing.T, policyID uuid.UUID, name string, days int) *policy.Created {
	t.Helper()
	return policy.NewPolicyCreated(
		policyID,
		mustPolicyName(t, name),
		policy.TypeStandard,
		mustRefundPeriod(t, days),
		mustConditions(t, "Refund within the stated window."),
		1,
		testMetadata(),
	)
}

func grantedEvent(accessID, userID, courseID uuid.UUID, expiresAt *time.Time) *access.Granted {
	return access.NewAccessGranted(accessID, userID, courseID, time.Now(), expiresAt, 1, testMetadata())
}
