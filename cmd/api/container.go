// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	accessapp "github.com/coursery/coursery/internal/application/access"
	courseapp "github.com/coursery/coursery/internal/application/course"
	orderapp "github.com/coursery/coursery/internal/application/order"
	policyapp "github.com/coursery/coursery/internal/application/policy"
	userapp "github.com/coursery/coursery/internal/application/user"
	"github.com/coursery/coursery/internal/bootstrap"
	"github.com/coursery/coursery/internal/config"
	httphandler "github.com/coursery/coursery/internal/handler/http"
	wshandler "github.com/coursery/coursery/internal/handler/websocket"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
	"github.com/coursery/coursery/internal/infrastructure/eventstore"
	"github.com/coursery/coursery/internal/infrastructure/healthcheck"
	"github.com/coursery/coursery/internal/infrastructure/httpserver"
	"github.com/coursery/coursery/internal/infrastructure/metrics"
	"github.com/coursery/coursery/internal/infrastructure/projection"
	"github.com/coursery/coursery/internal/infrastructure/repository"
	"github.com/coursery/coursery/internal/infrastructure/websocket"
	"github.com/coursery/coursery/internal/service"
	"github.com/coursery/coursery/internal/worker"
)

// Container holds all application dependencies and manages their lifecycle.
// It implements httpserver.HealthChecker for unified health endpoint support.
type Container struct {
	// Configuration
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	EventStore   *eventstore.InMemoryEventStore
	EventBus     *eventbus.InMemoryEventBus
	EventMetrics *metrics.EventMetrics
	Hub          *websocket.Hub
	Broadcaster  *websocket.Broadcaster

	// Read models
	Registry          *projection.Registry
	CatalogProjection *projection.CourseCatalogProjection
	HistoryProjection *projection.OrderHistoryProjection
	AccessProjection  *projection.UserAccessProjection
	UsageProjection   *projection.PolicyUsageProjection
	RevenueProjection *projection.RevenueSummaryProjection

	// Repositories
	UserRepo   *repository.MemoryUserRepository
	CourseRepo *repository.MemoryCourseRepository
	PolicyRepo *repository.MemoryPolicyRepository
	OrderRepo  *repository.MemoryOrderRepository
	AccessRepo *repository.MemoryAccessRepository

	// Domain services
	RefundEligibility *service.RefundEligibilityService
	OrderProcessing   *service.OrderProcessingService
	AccessLifecycle   *service.AccessLifecycleService

	// User use cases
	RegisterUserUC   *userapp.RegisterUserUseCase
	UpdateProfileUC  *userapp.UpdateProfileUseCase
	ChangeEmailUC    *userapp.ChangeEmailUseCase
	GetUserUC        *userapp.GetUserUseCase
	GetUserByEmailUC *userapp.GetUserByEmailUseCase
	ListUsersUC      *userapp.ListUsersUseCase

	// Policy use cases
	CreatePolicyUC     *policyapp.CreatePolicyUseCase
	UpdatePolicyUC     *policyapp.UpdatePolicyUseCase
	DeprecatePolicyUC  *policyapp.DeprecatePolicyUseCase
	ReactivatePolicyUC *policyapp.ReactivatePolicyUseCase
	GetPolicyUC        *policyapp.GetPolicyUseCase
	ListPolicyUsageUC  *policyapp.ListPolicyUsageUseCase

	// Course use cases
	CreateCourseUC       *courseapp.CreateCourseUseCase
	UpdateCourseUC       *courseapp.UpdateCourseUseCase
	ChangeCoursePolicyUC *courseapp.ChangePolicyUseCase
	DeprecateCourseUC    *courseapp.DeprecateCourseUseCase
	GetCourseUC          *courseapp.GetCourseUseCase
	ListCatalogUC        *courseapp.ListCatalogUseCase

	// Order use cases
	PlaceOrderUC     *orderapp.PlaceOrderUseCase
	PayOrderUC       *orderapp.PayOrderUseCase
	FailPaymentUC    *orderapp.FailPaymentUseCase
	RequestRefundUC  *orderapp.RequestRefundUseCase
	CancelOrderUC    *orderapp.CancelOrderUseCase
	GetOrderUC       *orderapp.GetOrderUseCase
	ListUserOrdersUC *orderapp.ListUserOrdersUseCase

	// Access use cases
	GrantAccessUC      *accessapp.GrantAccessUseCase
	RevokeAccessUC     *accessapp.RevokeAccessUseCase
	ReactivateAccessUC *accessapp.ReactivateAccessUseCase
	UpdateProgressUC   *accessapp.UpdateProgressUseCase
	ListUserAccessUC   *accessapp.ListUserAccessUseCase

	// HTTP handlers
	UserHandler      *httphandler.UserHandler
	CourseHandler    *httphandler.CourseHandler
	PolicyHandler    *httphandler.PolicyHandler
	OrderHandler     *httphandler.OrderHandler
	AccessHandler    *httphandler.AccessHandler
	ReportingHandler *httphandler.ReportingHandler
	WSHandler        *wshandler.Handler

	// Background workers
	SweepWorker       *worker.AccessSweepWorker
	ConsistencyWorker *worker.ConsistencyWorker

	// Health checks
	DeadLetterCheck    *healthcheck.DeadLetterChecker
	ReadModelSyncCheck *healthcheck.ReadModelSyncChecker

	// Bootstrap
	Seeder *bootstrap.Seeder

	registerer prometheus.Registerer
}

// Ensure Container implements httpserver.HealthChecker.
var _ httpserver.HealthChecker = (*Container)(nil)

// ContainerOption configures the Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// WithRegisterer sets the Prometheus registerer for event metrics. Tests
// pass a fresh registry so repeated container construction does not collide
// on metric registration.
func WithRegisterer(registerer prometheus.Registerer) ContainerOption {
	return func(c *Container) {
		c.registerer = registerer
	}
}

// NewContainer creates a new dependency injection container. Everything is
// wired in memory: event store, bus, projections, repositories, services,
// use cases and handlers.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		Config:     cfg,
		Logger:     slog.Default(),
		registerer: prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Logger.Info("container starting",
		slog.String("app", cfg.App.Name),
		slog.String("environment", string(cfg.App.Environment)),
		slog.Bool("is_development", cfg.IsDevelopment()),
		slog.Bool("is_production", cfg.IsProduction()),
	)

	// Initialize all components in order
	c.setupInfrastructure()

	if err := c.setupReadModels(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup read models: %w", err)
	}

	c.setupRepositories()
	c.setupServices()
	c.setupUseCases()
	c.setupHandlers()
	c.setupWorkers()
	c.setupHealthChecks()
	c.setupSeeder()

	// Validate that all required components are initialized
	if err := c.validateWiring(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("wiring validation failed: %w", err)
	}

	return c, nil
}

// validateWiring ensures all required dependencies are properly initialized.
func (c *Container) validateWiring() error {
	var errs []error

	errs = c.validateInfrastructure(errs)
	errs = c.validateReadModels(errs)
	errs = c.validateHandlers(errs)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// validateInfrastructure checks that all infrastructure components are initialized.
func (c *Container) validateInfrastructure(errs []error) []error {
	if c.EventStore == nil {
		errs = append(errs, errors.New("event store not initialized"))
	}
	if c.EventBus == nil {
		errs = append(errs, errors.New("event bus not initialized"))
	}
	if c.Hub == nil {
		errs = append(errs, errors.New("websocket hub not initialized"))
	}
	if c.Broadcaster == nil {
		errs = append(errs, errors.New("event broadcaster not initialized"))
	}
	return errs
}

// validateReadModels checks that the projection registry is wired.
func (c *Container) validateReadModels(errs []error) []error {
	if c.Registry == nil {
		errs = append(errs, errors.New("projection registry not initialized"))
		return errs
	}
	if len(c.Registry.Projections()) == 0 {
		errs = append(errs, errors.New("no projections registered"))
	}
	return errs
}

// validateHandlers checks that every HTTP handler is initialized.
func (c *Container) validateHandlers(errs []error) []error {
	if c.UserHandler == nil {
		errs = append(errs, errors.New("user handler not initialized"))
	}
	if c.CourseHandler == nil {
		errs = append(errs, errors.New("course handler not initialized"))
	}
	if c.PolicyHandler == nil {
		errs = append(errs, errors.New("policy handler not initialized"))
	}
	if c.OrderHandler == nil {
		errs = append(errs, errors.New("order handler not initialized"))
	}
	if c.AccessHandler == nil {
		errs = append(errs, errors.New("access handler not initialized"))
	}
	if c.ReportingHandler == nil {
		errs = append(errs, errors.New("reporting handler not initialized"))
	}
	if c.WSHandler == nil {
		errs = append(errs, errors.New("websocket handler not initialized"))
	}
	return errs
}

// setupInfrastructure initializes the event store, the event bus, the
// metrics collectors and the WebSocket hub.
func (c *Container) setupInfrastructure() {
	c.EventStore = eventstore.NewInMemoryEventStore()
	c.EventMetrics = metrics.NewEventMetrics(c.registerer)

	retry := eventbus.DefaultRetryConfig()
	retry.MaxRetries = c.Config.EventBus.RetryMaxAttempts
	retry.InitialBackoff = c.Config.EventBus.RetryInitialBackoff
	retry.MaxBackoff = c.Config.EventBus.RetryMaxBackoff

	c.EventBus = eventbus.NewInMemoryEventBus(
		eventbus.WithLogger(c.Logger),
		eventbus.WithRetryConfig(retry),
		eventbus.WithDeadLetterCapacity(c.Config.EventBus.DeadLetterCapacity),
		eventbus.WithMetrics(c.EventMetrics),
	)

	c.Hub = websocket.NewHub(websocket.WithHubLogger(c.Logger))
	c.Broadcaster = websocket.NewBroadcaster(c.Hub, c.EventBus,
		websocket.WithBroadcasterLogger(c.Logger))

	c.Logger.Debug("infrastructure initialized")
}

// setupReadModels creates the projections and subscribes them to the bus
// through the registry. Registration order fixes dispatch order.
func (c *Container) setupReadModels() error {
	c.CatalogProjection = projection.NewCourseCatalogProjection()
	c.HistoryProjection = projection.NewOrderHistoryProjection()
	c.AccessProjection = projection.NewUserAccessProjection()
	c.UsageProjection = projection.NewPolicyUsageProjection()
	c.RevenueProjection = projection.NewRevenueSummaryProjection()

	c.Registry = projection.NewRegistry(c.EventStore, c.Logger)
	c.Registry.Register(c.CatalogProjection)
	c.Registry.Register(c.HistoryProjection)
	c.Registry.Register(c.AccessProjection)
	c.Registry.Register(c.UsageProjection)
	c.Registry.Register(c.RevenueProjection)

	if err := c.Registry.SubscribeAll(c.EventBus); err != nil {
		return fmt.Errorf("failed to subscribe projections: %w", err)
	}

	c.Logger.Debug("read models initialized",
		slog.Int("projections", len(c.Registry.Projections())))
	return nil
}

// setupRepositories initializes the event-sourced repositories.
func (c *Container) setupRepositories() {
	c.UserRepo = repository.NewMemoryUserRepository(c.EventStore, c.EventBus,
		repository.WithUserRepoLogger(c.Logger))
	c.CourseRepo = repository.NewMemoryCourseRepository(c.EventStore, c.EventBus,
		repository.WithCourseRepoLogger(c.Logger))
	c.PolicyRepo = repository.NewMemoryPolicyRepository(c.EventStore, c.EventBus,
		repository.WithPolicyRepoLogger(c.Logger))
	c.OrderRepo = repository.NewMemoryOrderRepository(c.EventStore, c.EventBus,
		repository.WithOrderRepoLogger(c.Logger))
	c.AccessRepo = repository.NewMemoryAccessRepository(c.EventStore, c.EventBus,
		repository.WithAccessRepoLogger(c.Logger))

	c.Logger.Debug("repositories initialized")
}

// setupServices initializes the domain services that span aggregates.
func (c *Container) setupServices() {
	c.RefundEligibility = service.NewRefundEligibilityService(c.CourseRepo, c.PolicyRepo, c.AccessRepo)
	c.OrderProcessing = service.NewOrderProcessingService(
		c.OrderRepo, c.CourseRepo, c.AccessRepo, c.RefundEligibility,
		service.WithOrderProcessingLogger(c.Logger),
	)
	c.AccessLifecycle = service.NewAccessLifecycleService(c.AccessRepo,
		service.WithAccessLifecycleLogger(c.Logger))

	c.Logger.Debug("domain services initialized")
}

// setupUseCases initializes every application use case once; handlers and
// the seeder share these instances.
func (c *Container) setupUseCases() {
	// Users
	c.RegisterUserUC = userapp.NewRegisterUserUseCase(c.UserRepo)
	c.UpdateProfileUC = userapp.NewUpdateProfileUseCase(c.UserRepo)
	c.ChangeEmailUC = userapp.NewChangeEmailUseCase(c.UserRepo)
	c.GetUserUC = userapp.NewGetUserUseCase(c.UserRepo)
	c.GetUserByEmailUC = userapp.NewGetUserByEmailUseCase(c.UserRepo)
	c.ListUsersUC = userapp.NewListUsersUseCase(c.UserRepo)

	// Refund policies
	c.CreatePolicyUC = policyapp.NewCreatePolicyUseCase(c.PolicyRepo)
	c.UpdatePolicyUC = policyapp.NewUpdatePolicyUseCase(c.PolicyRepo)
	c.DeprecatePolicyUC = policyapp.NewDeprecatePolicyUseCase(c.PolicyRepo)
	c.ReactivatePolicyUC = policyapp.NewReactivatePolicyUseCase(c.PolicyRepo)
	c.GetPolicyUC = policyapp.NewGetPolicyUseCase(c.PolicyRepo)
	c.ListPolicyUsageUC = policyapp.NewListPolicyUsageUseCase(c.UsageProjection)

	// Courses
	c.CreateCourseUC = courseapp.NewCreateCourseUseCase(c.CourseRepo, c.PolicyRepo)
	c.UpdateCourseUC = courseapp.NewUpdateCourseUseCase(c.CourseRepo)
	c.ChangeCoursePolicyUC = courseapp.NewChangePolicyUseCase(c.CourseRepo, c.PolicyRepo)
	c.DeprecateCourseUC = courseapp.NewDeprecateCourseUseCase(c.CourseRepo)
	c.GetCourseUC = courseapp.NewGetCourseUseCase(c.CatalogProjection)
	c.ListCatalogUC = courseapp.NewListCatalogUseCase(c.CatalogProjection)

	// Orders
	c.PlaceOrderUC = orderapp.NewPlaceOrderUseCase(c.OrderRepo, c.UserRepo, c.CourseRepo)
	c.PayOrderUC = orderapp.NewPayOrderUseCase(c.OrderProcessing)
	c.FailPaymentUC = orderapp.NewFailPaymentUseCase(c.OrderRepo)
	c.RequestRefundUC = orderapp.NewRequestRefundUseCase(c.OrderProcessing)
	c.CancelOrderUC = orderapp.NewCancelOrderUseCase(c.OrderRepo)
	c.GetOrderUC = orderapp.NewGetOrderUseCase(c.HistoryProjection)
	c.ListUserOrdersUC = orderapp.NewListUserOrdersUseCase(c.HistoryProjection)

	// Access records
	c.GrantAccessUC = accessapp.NewGrantAccessUseCase(c.AccessRepo, c.UserRepo, c.CourseRepo)
	c.RevokeAccessUC = accessapp.NewRevokeAccessUseCase(c.AccessRepo)
	c.ReactivateAccessUC = accessapp.NewReactivateAccessUseCase(c.AccessRepo)
	c.UpdateProgressUC = accessapp.NewUpdateProgressUseCase(c.AccessRepo)
	c.ListUserAccessUC = accessapp.NewListUserAccessUseCase(c.AccessProjection)

	c.Logger.Debug("use cases initialized")
}

// setupHandlers wires the HTTP and WebSocket handlers over the use cases.
func (c *Container) setupHandlers() {
	// === 1. User handler ===
	c.UserHandler = httphandler.NewUserHandler(&userServiceAdapter{
		register:       c.RegisterUserUC,
		updateProfile:  c.UpdateProfileUC,
		changeEmail:    c.ChangeEmailUC,
		getUser:        c.GetUserUC,
		getUserByEmail: c.GetUserByEmailUC,
		listUsers:      c.ListUsersUC,
	})
	c.Logger.Debug("user handler initialized")

	// === 2. Policy handler ===
	c.PolicyHandler = httphandler.NewPolicyHandler(&policyServiceAdapter{
		create:     c.CreatePolicyUC,
		update:     c.UpdatePolicyUC,
		deprecate:  c.DeprecatePolicyUC,
		reactivate: c.ReactivatePolicyUC,
		get:        c.GetPolicyUC,
		listUsage:  c.ListPolicyUsageUC,
	})
	c.Logger.Debug("policy handler initialized")

	// === 3. Course handler ===
	c.CourseHandler = httphandler.NewCourseHandler(&courseServiceAdapter{
		create:       c.CreateCourseUC,
		update:       c.UpdateCourseUC,
		changePolicy: c.ChangeCoursePolicyUC,
		deprecate:    c.DeprecateCourseUC,
		get:          c.GetCourseUC,
		listCatalog:  c.ListCatalogUC,
	})
	c.Logger.Debug("course handler initialized")

	// === 4. Order handler ===
	c.OrderHandler = httphandler.NewOrderHandler(&orderServiceAdapter{
		place:         c.PlaceOrderUC,
		pay:           c.PayOrderUC,
		failPayment:   c.FailPaymentUC,
		requestRefund: c.RequestRefundUC,
		cancel:        c.CancelOrderUC,
		get:           c.GetOrderUC,
		listForUser:   c.ListUserOrdersUC,
	})
	c.Logger.Debug("order handler initialized")

	// === 5. Access handler ===
	c.AccessHandler = httphandler.NewAccessHandler(&accessServiceAdapter{
		grant:          c.GrantAccessUC,
		revoke:         c.RevokeAccessUC,
		reactivate:     c.ReactivateAccessUC,
		updateProgress: c.UpdateProgressUC,
		listForUser:    c.ListUserAccessUC,
	})
	c.Logger.Debug("access handler initialized")

	// === 6. Reporting handler ===
	c.ReportingHandler = httphandler.NewReportingHandler(c.RevenueProjection)
	c.Logger.Debug("reporting handler initialized")

	// === 7. WebSocket handler ===
	c.WSHandler = wshandler.NewHandler(c.Hub, wshandler.WithHandlerLogger(c.Logger))
	c.Logger.Debug("websocket handler initialized")
}

// setupWorkers initializes the background workers. They only run once
// StartBackground launches them.
func (c *Container) setupWorkers() {
	c.SweepWorker = worker.NewAccessSweepWorker(c.AccessLifecycle, c.Logger,
		worker.AccessSweepConfig{
			Interval: c.Config.Workers.AccessSweepInterval,
			Enabled:  true,
		})
	c.ConsistencyWorker = worker.NewConsistencyWorker(c.EventStore, c.Registry, c.Logger,
		worker.ConsistencyConfig{
			Interval:   c.Config.Workers.ConsistencyInterval,
			SampleSize: c.Config.Workers.ConsistencySample,
			Enabled:    true,
		})

	c.Logger.Debug("background workers initialized")
}

// setupHealthChecks initializes the component health checkers used by the
// detailed health endpoint.
func (c *Container) setupHealthChecks() {
	c.DeadLetterCheck = healthcheck.NewDeadLetterChecker(c.EventBus)
	c.ReadModelSyncCheck = healthcheck.NewReadModelSyncChecker(
		c.Registry, c.EventStore, c.Config.Workers.ConsistencySample)

	c.Logger.Debug("health checks initialized")
}

// setupSeeder wires the demo data seeder over the create use cases.
func (c *Container) setupSeeder() {
	c.Seeder = bootstrap.NewSeeder(
		c.CreatePolicyUC, c.CreateCourseUC, c.RegisterUserUC, c.PlaceOrderUC,
		bootstrap.WithSeederLogger(c.Logger),
	)
}

// StartBackground launches the WebSocket hub, the event broadcaster and the
// background workers. The hub must be running before the broadcaster
// subscribes, otherwise published events could fill the broadcast buffer.
func (c *Container) StartBackground(ctx context.Context) error {
	go c.Hub.Run(ctx)

	if err := c.Broadcaster.Start(ctx); err != nil {
		return fmt.Errorf("failed to start broadcaster: %w", err)
	}

	go func() {
		if err := c.SweepWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.Logger.Error("access sweep worker stopped", slog.String("error", err.Error()))
		}
	}()

	go func() {
		if err := c.ConsistencyWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.Logger.Error("consistency worker stopped", slog.String("error", err.Error()))
		}
	}()

	c.Logger.InfoContext(ctx, "background components started")
	return nil
}

// Close gracefully shuts down container resources. Safe to call on a
// partially initialized container.
func (c *Container) Close() error {
	c.Logger.Info("closing container resources...")

	if c.Hub != nil {
		c.Hub.Stop()
	}

	c.Logger.Info("all container resources closed")
	return nil
}

// IsReady checks if the container is ready to serve requests.
func (c *Container) IsReady(ctx context.Context) bool {
	if c.EventStore == nil || c.EventBus == nil {
		return false
	}

	if c.Hub == nil || !c.Hub.IsRunning() {
		c.Logger.WarnContext(ctx, "readiness check failed: websocket hub not running")
		return false
	}

	return true
}

// GetHealthStatus returns detailed health status of all components.
func (c *Container) GetHealthStatus(ctx context.Context) []httpserver.ComponentStatus {
	components := make([]httpserver.ComponentStatus, 0, 3)

	// WebSocket hub
	hubStatus := httpserver.ComponentStatus{
		Name:    "websocket_hub",
		Status:  httpserver.StatusHealthy,
		Message: "hub is running",
	}
	if c.Hub == nil || !c.Hub.IsRunning() {
		hubStatus.Status = httpserver.StatusUnhealthy
		hubStatus.Message = "hub is not running"
	}
	components = append(components, hubStatus)

	// Dead letter queue. Parked events mean a handler keeps failing, but
	// the API itself still serves, so this only degrades.
	if c.DeadLetterCheck != nil {
		result := c.DeadLetterCheck.Check(ctx)
		status := httpserver.ComponentStatus{
			Name:    c.DeadLetterCheck.Name(),
			Status:  httpserver.StatusHealthy,
			Message: result.Message,
		}
		if !result.Healthy {
			status.Status = httpserver.StatusDegraded
		}
		components = append(components, status)
	}

	// Read model consistency. Drift is repairable via rebuild, so this
	// also only degrades.
	if c.ReadModelSyncCheck != nil {
		result := c.ReadModelSyncCheck.Check(ctx)
		status := httpserver.ComponentStatus{
			Name:    c.ReadModelSyncCheck.Name(),
			Status:  httpserver.StatusHealthy,
			Message: result.Message,
		}
		if !result.Healthy {
			status.Status = httpserver.StatusDegraded
		}
		components = append(components, status)
	}

	return components
}

// userServiceAdapter exposes the user use cases as the UserService consumed
// by the HTTP handler.
type userServiceAdapter struct {
	register       *userapp.RegisterUserUseCase
	updateProfile  *userapp.UpdateProfileUseCase
	changeEmail    *userapp.ChangeEmailUseCase
	getUser        *userapp.GetUserUseCase
	getUserByEmail *userapp.GetUserByEmailUseCase
	listUsers      *userapp.ListUsersUseCase
}

func (a *userServiceAdapter) Register(ctx context.Context, cmd userapp.RegisterUserCommand) (userapp.Result, error) {
	return a.register.Execute(ctx, cmd)
}

func (a *userServiceAdapter) UpdateProfile(ctx context.Context, cmd userapp.UpdateProfileCommand) (userapp.Result, error) {
	return a.updateProfile.Execute(ctx, cmd)
}

func (a *userServiceAdapter) ChangeEmail(ctx context.Context, cmd userapp.ChangeEmailCommand) (userapp.Result, error) {
	return a.changeEmail.Execute(ctx, cmd)
}

func (a *userServiceAdapter) GetUser(ctx context.Context, query userapp.GetUserQuery) (userapp.Result, error) {
	return a.getUser.Execute(ctx, query)
}

func (a *userServiceAdapter) GetUserByEmail(ctx context.Context, query userapp.GetUserByEmailQuery) (userapp.Result, error) {
	return a.getUserByEmail.Execute(ctx, query)
}

func (a *userServiceAdapter) ListUsers(ctx context.Context, query userapp.ListUsersQuery) (userapp.ListResult, error) {
	return a.listUsers.Execute(ctx, query)
}

// policyServiceAdapter exposes the policy use cases as the PolicyService
// consumed by the HTTP handler.
type policyServiceAdapter struct {
	create     *policyapp.CreatePolicyUseCase
	update     *policyapp.UpdatePolicyUseCase
	deprecate  *policyapp.DeprecatePolicyUseCase
	reactivate *policyapp.ReactivatePolicyUseCase
	get        *policyapp.GetPolicyUseCase
	listUsage  *policyapp.ListPolicyUsageUseCase
}

func (a *policyServiceAdapter) CreatePolicy(ctx context.Context, cmd policyapp.CreatePolicyCommand) (policyapp.Result, error) {
	return a.create.Execute(ctx, cmd)
}

func (a *policyServiceAdapter) UpdatePolicy(ctx context.Context, cmd policyapp.UpdatePolicyCommand) (policyapp.Result, error) {
	return a.update.Execute(ctx, cmd)
}

func (a *policyServiceAdapter) DeprecatePolicy(ctx context.Context, cmd policyapp.DeprecatePolicyCommand) (policyapp.Result, error) {
	return a.deprecate.Execute(ctx, cmd)
}

func (a *policyServiceAdapter) ReactivatePolicy(ctx context.Context, cmd policyapp.ReactivatePolicyCommand) (policyapp.Result, error) {
	return a.reactivate.Execute(ctx, cmd)
}

func (a *policyServiceAdapter) GetPolicy(ctx context.Context, query policyapp.GetPolicyQuery) (policyapp.Result, error) {
	return a.get.Execute(ctx, query)
}

func (a *policyServiceAdapter) ListPolicyUsage(ctx context.Context, query policyapp.ListPolicyUsageQuery) (policyapp.UsageResult, error) {
	return a.listUsage.Execute(ctx, query)
}

// courseServiceAdapter exposes the course use cases as the CourseService
// consumed by the HTTP handler.
type courseServiceAdapter struct {
	create       *courseapp.CreateCourseUseCase
	update       *courseapp.UpdateCourseUseCase
	changePolicy *courseapp.ChangePolicyUseCase
	deprecate    *courseapp.DeprecateCourseUseCase
	get          *courseapp.GetCourseUseCase
	listCatalog  *courseapp.ListCatalogUseCase
}

func (a *courseServiceAdapter) CreateCourse(ctx context.Context, cmd courseapp.CreateCourseCommand) (courseapp.Result, error) {
	return a.create.Execute(ctx, cmd)
}

func (a *courseServiceAdapter) UpdateCourse(ctx context.Context, cmd courseapp.UpdateCourseCommand) (courseapp.Result, error) {
	return a.update.Execute(ctx, cmd)
}

func (a *courseServiceAdapter) ChangePolicy(ctx context.Context, cmd courseapp.ChangePolicyCommand) (courseapp.Result, error) {
	return a.changePolicy.Execute(ctx, cmd)
}

func (a *courseServiceAdapter) DeprecateCourse(ctx context.Context, cmd courseapp.DeprecateCourseCommand) (courseapp.Result, error) {
	return a.deprecate.Execute(ctx, cmd)
}

func (a *courseServiceAdapter) GetCourse(ctx context.Context, query courseapp.GetCourseQuery) (courseapp.ViewResult, error) {
	return a.get.Execute(ctx, query)
}

func (a *courseServiceAdapter) ListCatalog(ctx context.Context, query courseapp.ListCatalogQuery) (courseapp.CatalogResult, error) {
	return a.listCatalog.Execute(ctx, query)
}

// orderServiceAdapter exposes the order use cases as the OrderService
// consumed by the HTTP handler.
type orderServiceAdapter struct {
	place         *orderapp.PlaceOrderUseCase
	pay           *orderapp.PayOrderUseCase
	failPayment   *orderapp.FailPaymentUseCase
	requestRefund *orderapp.RequestRefundUseCase
	cancel        *orderapp.CancelOrderUseCase
	get           *orderapp.GetOrderUseCase
	listForUser   *orderapp.ListUserOrdersUseCase
}

func (a *orderServiceAdapter) PlaceOrder(ctx context.Context, cmd orderapp.PlaceOrderCommand) (orderapp.Result, error) {
	return a.place.Execute(ctx, cmd)
}

func (a *orderServiceAdapter) PayOrder(ctx context.Context, cmd orderapp.PayOrderCommand) (orderapp.Result, error) {
	return a.pay.Execute(ctx, cmd)
}

func (a *orderServiceAdapter) FailPayment(ctx context.Context, cmd orderapp.FailPaymentCommand) (orderapp.Result, error) {
	return a.failPayment.Execute(ctx, cmd)
}

func (a *orderServiceAdapter) RequestRefund(ctx context.Context, cmd orderapp.RequestRefundCommand) (orderapp.Result, error) {
	return a.requestRefund.Execute(ctx, cmd)
}

func (a *orderServiceAdapter) CancelOrder(ctx context.Context, cmd orderapp.CancelOrderCommand) (orderapp.Result, error) {
	return a.cancel.Execute(ctx, cmd)
}

func (a *orderServiceAdapter) GetOrder(ctx context.Context, query orderapp.GetOrderQuery) (orderapp.ViewResult, error) {
	return a.get.Execute(ctx, query)
}

func (a *orderServiceAdapter) ListUserOrders(ctx context.Context, query orderapp.ListUserOrdersQuery) (orderapp.ListResult, error) {
	return a.listForUser.Execute(ctx, query)
}

// accessServiceAdapter exposes the access use cases as the AccessService
// consumed by the HTTP handler.
type accessServiceAdapter struct {
	grant          *accessapp.GrantAccessUseCase
	revoke         *accessapp.RevokeAccessUseCase
	reactivate     *accessapp.ReactivateAccessUseCase
	updateProgress *accessapp.UpdateProgressUseCase
	listForUser    *accessapp.ListUserAccessUseCase
}

func (a *accessServiceAdapter) GrantAccess(ctx context.Context, cmd accessapp.GrantAccessCommand) (accessapp.Result, error) {
	return a.grant.Execute(ctx, cmd)
}

func (a *accessServiceAdapter) RevokeAccess(ctx context.Context, cmd accessapp.RevokeAccessCommand) (accessapp.Result, error) {
	return a.revoke.Execute(ctx, cmd)
}

func (a *accessServiceAdapter) ReactivateAccess(ctx context.Context, cmd accessapp.ReactivateAccessCommand) (accessapp.Result, error) {
	return a.reactivate.Execute(ctx, cmd)
}

func (a *accessServiceAdapter) UpdateProgress(ctx context.Context, cmd accessapp.UpdateProgressCommand) (accessapp.Result, error) {
	return a.updateProgress.Execute(ctx, cmd)
}

func (a *accessServiceAdapter) ListUserAccess(ctx context.Context, query accessapp.ListUserAccessQuery) (accessapp.ListResult, error) {
	return a.listForUser.Execute(ctx, query)
}
