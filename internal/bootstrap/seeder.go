// Package bootstrap seeds a fixed demo data set into a fresh process so the
// API has something to serve before any client traffic arrives.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	courseapp "github.com/coursery/coursery/internal/application/course"
	orderapp "github.com/coursery/coursery/internal/application/order"
	policyapp "github.com/coursery/coursery/internal/application/policy"
	userapp "github.com/coursery/coursery/internal/application/user"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// Fixed demo records. The order total matches Course A's price.
const (
	demoPolicyName   = "Standard"
	demoPolicyType   = "standard"
	demoRefundDays   = 30
	demoPolicyTerms  = "Full refund within 30 days of purchase."
	demoCourseATitle = "Course A"
	demoCourseBTitle = "Course B"
	demoCourseAPrice = "100.00"
	demoCourseBPrice = "150.00"
	demoCurrency     = "USD"
	demoUserEmail    = "demo@example.com"
)

// SeededIDs lists the identifiers of the demo records.
type SeededIDs struct {
	PolicyID uuid.UUID
	CourseA  uuid.UUID
	CourseB  uuid.UUID
	UserID   uuid.UUID
	OrderID  uuid.UUID
}

// Seeder creates the demo data set through the regular application use
// cases, so every seeded record flows through the event store, the bus and
// the projections exactly like client traffic would.
type Seeder struct {
	policies *policyapp.CreatePolicyUseCase
	courses  *courseapp.CreateCourseUseCase
	users    *userapp.RegisterUserUseCase
	orders   *orderapp.PlaceOrderUseCase
	logger   *slog.Logger
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder)

// WithSeederLogger sets the logger.
func WithSeederLogger(logger *slog.Logger) SeederOption {
	return func(s *Seeder) {
		s.logger = logger
	}
}

// NewSeeder creates a Seeder over the given use cases.
func NewSeeder(
	policies *policyapp.CreatePolicyUseCase,
	courses *courseapp.CreateCourseUseCase,
	users *userapp.RegisterUserUseCase,
	orders *orderapp.PlaceOrderUseCase,
	opts ...SeederOption,
) *Seeder {
	s := &Seeder{
		policies: policies,
		courses:  courses,
		users:    users,
		orders:   orders,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Seed creates the demo records: the "Standard" refund policy, Course A and
// Course B under it, the demo user and a pending order for Course A. Every
// created identifier is logged. Seeding expects a fresh store; rerunning it
// against existing data fails on the uniqueness checks.
func (s *Seeder) Seed(ctx context.Context) (SeededIDs, error) {
	policyRes, err := s.policies.Execute(ctx, policyapp.CreatePolicyCommand{
		Name:             demoPolicyName,
		PolicyType:       demoPolicyType,
		RefundPeriodDays: demoRefundDays,
		Conditions:       demoPolicyTerms,
	})
	if err != nil {
		return SeededIDs{}, fmt.Errorf("failed to seed refund policy: %w", err)
	}
	ids := SeededIDs{PolicyID: policyRes.Policy.ID()}
	s.logger.InfoContext(ctx, "seeded refund policy",
		slog.String("policy_id", ids.PolicyID.String()),
		slog.String("name", demoPolicyName),
	)

	courseA, err := s.courses.Execute(ctx, courseapp.CreateCourseCommand{
		Title:       demoCourseATitle,
		Description: "Intro A",
		Amount:      demoCourseAPrice,
		Currency:    demoCurrency,
		AccessType:  "unlimited",
		PolicyID:    ids.PolicyID,
	})
	if err != nil {
		return SeededIDs{}, fmt.Errorf("failed to seed %s: %w", demoCourseATitle, err)
	}
	ids.CourseA = courseA.Course.ID()
	s.logger.InfoContext(ctx, "seeded course",
		slog.String("course_id", ids.CourseA.String()),
		slog.String("title", demoCourseATitle),
	)

	courseB, err := s.courses.Execute(ctx, courseapp.CreateCourseCommand{
		Title:       demoCourseBTitle,
		Description: "Intro B",
		Amount:      demoCourseBPrice,
		Currency:    demoCurrency,
		AccessType:  "limited",
		PolicyID:    ids.PolicyID,
	})
	if err != nil {
		return SeededIDs{}, fmt.Errorf("failed to seed %s: %w", demoCourseBTitle, err)
	}
	ids.CourseB = courseB.Course.ID()
	s.logger.InfoContext(ctx, "seeded course",
		slog.String("course_id", ids.CourseB.String()),
		slog.String("title", demoCourseBTitle),
	)

	userRes, err := s.users.Execute(ctx, userapp.RegisterUserCommand{
		Email:     demoUserEmail,
		FirstName: "Demo",
		LastName:  "User",
	})
	if err != nil {
		return SeededIDs{}, fmt.Errorf("failed to seed demo user: %w", err)
	}
	ids.UserID = userRes.User.ID()
	s.logger.InfoContext(ctx, "seeded user",
		slog.String("user_id", ids.UserID.String()),
		slog.String("email", demoUserEmail),
	)

	orderRes, err := s.orders.Execute(ctx, orderapp.PlaceOrderCommand{
		UserID:    ids.UserID,
		CourseIDs: []uuid.UUID{ids.CourseA},
		Amount:    demoCourseAPrice,
		Currency:  demoCurrency,
	})
	if err != nil {
		return SeededIDs{}, fmt.Errorf("failed to seed demo order: %w", err)
	}
	ids.OrderID = orderRes.Order.ID()
	s.logger.InfoContext(ctx, "seeded pending order",
		slog.String("order_id", ids.OrderID.String()),
		slog.String("user_id", ids.UserID.String()),
	)

	s.logger.InfoContext(ctx, "demo data seeded",
		slog.String("policy_id", ids.PolicyID.String()),
		slog.String("course_a", ids.CourseA.String()),
		slog.String("course_b", ids.CourseB.String()),
		slog.String("user_id", ids.UserID.String()),
		slog.String("order_id", ids.OrderID.String()),
	)

	return ids, nil
}
