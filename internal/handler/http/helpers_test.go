package httphandler_test

import (
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/user"
	"github.com/coursery/coursery/internal/domain/uuid"
)

func newJSONRequest(method, target, body string) *stdhttp.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func newTestUser(t *testing.T, emailAddr string) *user.Aggregate {
	t.Helper()

	email, err := user.NewEmailAddress(emailAddr)
	require.NoError(t, err)
	profile, err := user.NewProfile("Alex", "Morgan", "Lifelong learner")
	require.NoError(t, err)

	u := user.NewAggregate(uuid.NewUUID())
	require.NoError(t, u.Register(email, profile))
	return u
}

func newTestCourse(t *testing.T, title string) *course.Aggregate {
	t.Helper()

	titleVO, err := course.NewTitle(title)
	require.NoError(t, err)
	description, err := course.NewDescription("A practical course")
	require.NoError(t, err)
	price, err := money.NewFromString("100.00", "USD")
	require.NoError(t, err)

	a := course.NewAggregate(uuid.NewUUID())
	require.NoError(t, a.Create(titleVO, description, price, course.AccessUnlimited, uuid.NewUUID()))
	return a
}

func newTestOrder(t *testing.T, userID uuid.UUID, courseIDs ...uuid.UUID) *order.Aggregate {
	t.Helper()

	total, err := money.NewFromString("100.00", "USD")
	require.NoError(t, err)

	a := order.NewAggregate(uuid.NewUUID())
	require.NoError(t, a.Place(userID, courseIDs, total))
	return a
}

func newTestAccess(t *testing.T, userID, courseID uuid.UUID) *access.Aggregate {
	t.Helper()

	a := access.NewAggregate(uuid.NewUUID())
	require.NoError(t, a.Grant(userID, courseID, time.Now(), nil))
	return a
}

func newExpiredAccess(t *testing.T, userID, courseID uuid.UUID) *access.Aggregate {
	t.Helper()

	now := time.Now()
	expiry := now.Add(-24 * time.Hour)

	a := access.NewAggregate(uuid.NewUUID())
	require.NoError(t, a.Grant(userID, courseID, now.Add(-48*time.Hour), &expiry))
	require.NoError(t, a.Expire(now))
	return a
}

func newTestPolicy(t *testing.T, name string) *policy.Aggregate {
	t.Helper()

	nameVO, err := policy.NewName(name)
	require.NoError(t, err)
	period, err := policy.NewRefundPeriod(30)
	require.NoError(t, err)
	conditions, err := policy.NewConditions("Full refund within 30 days of purchase.")
	require.NoError(t, err)

	a := policy.NewAggregate(uuid.NewUUID())
	require.NoError(t, a.Create(nameVO, policy.TypeStandard, period, conditions))
	return a
}
