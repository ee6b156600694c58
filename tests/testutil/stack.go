package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	accessapp "github.com/coursery/coursery/internal/application/access"
	courseapp "github.com/coursery/coursery/internal/application/course"
	orderapp "github.com/coursery/coursery/internal/application/order"
	policyapp "github.com/coursery/coursery/internal/application/policy"
	userapp "github.com/coursery/coursery/internal/application/user"
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
	"github.com/coursery/coursery/internal/infrastructure/eventstore"
	"github.com/coursery/coursery/internal/infrastructure/projection"
	"github.com/coursery/coursery/internal/infrastructure/repository"
	"github.com/coursery/coursery/internal/service"
)

// Stack is the full in-memory wiring the cross-package suites drive: event
// store, bus, projections, repositories and the write-side services. Every
// command issued through it flows over the bus into the projections, the
// same path production traffic takes.
type Stack struct {
	Store    *eventstore.InMemoryEventStore
	Bus      *eventbus.InMemoryEventBus
	Registry *projection.Registry

	Catalog *projection.CourseCatalogProjection
	History *projection.OrderHistoryProjection
	Access  *projection.UserAccessProjection
	Usage   *projection.PolicyUsageProjection
	Revenue *projection.RevenueSummaryProjection

	Users    *repository.MemoryUserRepository
	Courses  *repository.MemoryCourseRepository
	Policies *repository.MemoryPolicyRepository
	Orders   *repository.MemoryOrderRepository
	Records  *repository.MemoryAccessRepository

	Eligibility *service.RefundEligibilityService
	Processing  *service.OrderProcessingService
	Lifecycle   *service.AccessLifecycleService

	CreatePolicyUC   *policyapp.CreatePolicyUseCase
	CreateCourseUC   *courseapp.CreateCourseUseCase
	RegisterUserUC   *userapp.RegisterUserUseCase
	PlaceOrderUC     *orderapp.PlaceOrderUseCase
	PayOrderUC       *orderapp.PayOrderUseCase
	RequestRefundUC  *orderapp.RequestRefundUseCase
	GrantAccessUC    *accessapp.GrantAccessUseCase
	UpdateProgressUC *accessapp.UpdateProgressUseCase

	mu        sync.Mutex
	published []event.DomainEvent
}

// StackOption configures a Stack.
type StackOption func(*stackConfig)

type stackConfig struct {
	accessTerm time.Duration
}

// WithAccessTerm sets how long access to time-limited courses lasts after
// payment.
func WithAccessTerm(term time.Duration) StackOption {
	return func(c *stackConfig) {
		c.accessTerm = term
	}
}

// NewStack wires a fresh in-memory stack.
func NewStack(t *testing.T, opts ...StackOption) *Stack {
	t.Helper()

	cfg := stackConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Stack{
		Store:   eventstore.NewInMemoryEventStore(),
		Catalog: projection.NewCourseCatalogProjection(),
		History: projection.NewOrderHistoryProjection(),
		Access:  projection.NewUserAccessProjection(),
		Usage:   projection.NewPolicyUsageProjection(),
		Revenue: projection.NewRevenueSummaryProjection(),
	}
	s.Bus = eventbus.NewInMemoryEventBus()

	s.Registry = projection.NewRegistry(s.Store, nil)
	s.Registry.Register(s.Catalog)
	s.Registry.Register(s.History)
	s.Registry.Register(s.Access)
	s.Registry.Register(s.Usage)
	s.Registry.Register(s.Revenue)
	require.NoError(t, s.Registry.SubscribeAll(s.Bus))

	// Record every published event for assertions
	require.NoError(t, s.Bus.SubscribeAll(func(_ context.Context, evt event.DomainEvent) error {
		s.mu.Lock()
		s.published = append(s.published, evt)
		s.mu.Unlock()
		return nil
	}))

	s.Users = repository.NewMemoryUserRepository(s.Store, s.Bus)
	s.Courses = repository.NewMemoryCourseRepository(s.Store, s.Bus)
	s.Policies = repository.NewMemoryPolicyRepository(s.Store, s.Bus)
	s.Orders = repository.NewMemoryOrderRepository(s.Store, s.Bus)
	s.Records = repository.NewMemoryAccessRepository(s.Store, s.Bus)

	s.Eligibility = service.NewRefundEligibilityService(s.Courses, s.Policies, s.Records)

	processingOpts := []service.OrderProcessingOption{}
	if cfg.accessTerm > 0 {
		processingOpts = append(processingOpts, service.WithAccessTerm(cfg.accessTerm))
	}
	s.Processing = service.NewOrderProcessingService(s.Orders, s.Courses, s.Records, s.Eligibility, processingOpts...)
	s.Lifecycle = service.NewAccessLifecycleService(s.Records)

	s.CreatePolicyUC = policyapp.NewCreatePolicyUseCase(s.Policies)
	s.CreateCourseUC = courseapp.NewCreateCourseUseCase(s.Courses, s.Policies)
	s.RegisterUserUC = userapp.NewRegisterUserUseCase(s.Users)
	s.PlaceOrderUC = orderapp.NewPlaceOrderUseCase(s.Orders, s.Users, s.Courses)
	s.PayOrderUC = orderapp.NewPayOrderUseCase(s.Processing)
	s.RequestRefundUC = orderapp.NewRequestRefundUseCase(s.Processing)
	s.GrantAccessUC = accessapp.NewGrantAccessUseCase(s.Records, s.Users, s.Courses)
	s.UpdateProgressUC = accessapp.NewUpdateProgressUseCase(s.Records)

	return s
}

// Published returns a copy of every event published so far, in dispatch
// order.
func (s *Stack) Published() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]event.DomainEvent, len(s.published))
	copy(out, s.published)
	return out
}

// StreamEvents loads the event stream of one aggregate.
func (s *Stack) StreamEvents(t *testing.T, ctx context.Context, aggregateID uuid.UUID) []event.DomainEvent {
	t.Helper()

	events, err := s.Store.LoadEvents(ctx, aggregateID.String())
	require.NoError(t, err)
	return events
}

// CreatePolicy creates a refund policy and returns its ID.
func (s *Stack) CreatePolicy(t *testing.T, ctx context.Context, policyType string, refundDays int) uuid.UUID {
	t.Helper()

	res, err := s.CreatePolicyUC.Execute(ctx, policyapp.CreatePolicyCommand{
		Name:             "Test " + policyType + " policy",
		PolicyType:       policyType,
		RefundPeriodDays: refundDays,
		Conditions:       "Test policy terms.",
	})
	require.NoError(t, err)
	return res.Policy.ID()
}

// CreateCourse creates a course and returns its ID.
func (s *Stack) CreateCourse(t *testing.T, ctx context.Context, cmd courseapp.CreateCourseCommand) uuid.UUID {
	t.Helper()

	res, err := s.CreateCourseUC.Execute(ctx, cmd)
	require.NoError(t, err)
	return res.Course.ID()
}

// RegisterUser registers a user under the given email and returns its ID.
func (s *Stack) RegisterUser(t *testing.T, ctx context.Context, email string) uuid.UUID {
	t.Helper()

	res, err := s.RegisterUserUC.Execute(ctx, userapp.RegisterUserCommand{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return res.User.ID()
}

// PlaceOrder places an order for the given courses and returns its ID.
func (s *Stack) PlaceOrder(
	t *testing.T,
	ctx context.Context,
	userID uuid.UUID,
	courseIDs []uuid.UUID,
	amount, currency string,
) uuid.UUID {
	t.Helper()

	res, err := s.PlaceOrderUC.Execute(ctx, orderapp.PlaceOrderCommand{
		UserID:    userID,
		CourseIDs: courseIDs,
		Amount:    amount,
		Currency:  currency,
	})
	require.NoError(t, err)
	return res.Order.ID()
}

// PayOrder pays an order.
func (s *Stack) PayOrder(t *testing.T, ctx context.Context, orderID uuid.UUID, paymentID string) {
	t.Helper()

	_, err := s.PayOrderUC.Execute(ctx, orderapp.PayOrderCommand{
		OrderID:   orderID,
		PaymentID: paymentID,
	})
	require.NoError(t, err)
}
