// Package main provides the worker service entry point.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coursery/coursery/internal/application/course"
	"github.com/coursery/coursery/internal/application/order"
	"github.com/coursery/coursery/internal/application/policy"
	"github.com/coursery/coursery/internal/application/user"
	"github.com/coursery/coursery/internal/bootstrap"
	"github.com/coursery/coursery/internal/config"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
	"github.com/coursery/coursery/internal/infrastructure/eventstore"
	"github.com/coursery/coursery/internal/infrastructure/metrics"
	"github.com/coursery/coursery/internal/infrastructure/projection"
	"github.com/coursery/coursery/internal/infrastructure/repository"
	"github.com/coursery/coursery/internal/service"
	"github.com/coursery/coursery/internal/worker"
)

// Timeout constants for worker service.
const seedTimeout = 30 * time.Second

//nolint:funlen // Main function handles startup orchestration and is readable as-is
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		//nolint:sloglint // No context available before logger setup
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)

	logger.Info("starting coursery worker service",
		slog.String("version", "0.1.0"),
		slog.String("environment", getEnvironment(cfg)),
	)

	// Create a context that will be cancelled on shutdown signal
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	go handleShutdown(cancel, logger)

	// Setup the event store and bus this process operates on
	eventStore := eventstore.NewInMemoryEventStore()

	eventMetrics := metrics.NewEventMetrics(prometheus.DefaultRegisterer)

	retry := eventbus.DefaultRetryConfig()
	retry.MaxRetries = cfg.EventBus.RetryMaxAttempts
	retry.InitialBackoff = cfg.EventBus.RetryInitialBackoff
	retry.MaxBackoff = cfg.EventBus.RetryMaxBackoff

	eventBus := eventbus.NewInMemoryEventBus(
		eventbus.WithLogger(logger),
		eventbus.WithRetryConfig(retry),
		eventbus.WithDeadLetterCapacity(cfg.EventBus.DeadLetterCapacity),
		eventbus.WithMetrics(eventMetrics),
	)

	// Setup read models so the consistency worker has projections to verify
	registry, err := setupProjections(eventStore, eventBus, logger)
	if err != nil {
		logger.Error("failed to set up projections", slog.String("error", err.Error()))
		cancel()
		os.Exit(1) //nolint:gocritic // cancel() called before exit
	}

	// Setup repositories
	accessRepo := repository.NewMemoryAccessRepository(eventStore, eventBus,
		repository.WithAccessRepoLogger(logger))

	lifecycle := service.NewAccessLifecycleService(accessRepo,
		service.WithAccessLifecycleLogger(logger))

	// Seed demo data when enabled so the workers have streams to operate on
	if cfg.Bootstrap.SeedDemo {
		if seedErr := seedDemoData(ctx, eventStore, eventBus, logger); seedErr != nil {
			logger.Error("failed to seed demo data", slog.String("error", seedErr.Error()))
			cancel()
			os.Exit(1)
		}
	}

	// Setup workers
	sweepWorker, sweepConfig := setupSweepWorker(cfg, lifecycle, logger)
	consistencyWorker, consistencyConfig := setupConsistencyWorker(cfg, eventStore, registry, logger)

	logger.Info("starting workers",
		slog.Bool("access_sweep_enabled", sweepConfig.Enabled),
		slog.Duration("access_sweep_interval", sweepConfig.Interval),
		slog.Bool("consistency_enabled", consistencyConfig.Enabled),
		slog.Duration("consistency_interval", consistencyConfig.Interval),
		slog.Int("consistency_sample", consistencyConfig.SampleSize),
	)

	// Use WaitGroup to run multiple workers concurrently
	var wg sync.WaitGroup

	// Start access sweep worker
	wg.Add(1)
	go func() {
		defer wg.Done()
		if runErr := sweepWorker.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Error("access sweep worker error", slog.String("error", runErr.Error()))
		}
	}()

	// Start consistency worker
	wg.Add(1)
	go func() {
		defer wg.Done()
		if runErr := consistencyWorker.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Error("consistency worker error", slog.String("error", runErr.Error()))
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	logger.Info("worker service shutdown complete")
}

// setupLogger creates and configures the structured logger based on configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	level := parseLogLevel(cfg.App.LogLevel)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.IsDevelopment(),
	}

	switch cfg.App.LogFormat {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvironment returns the environment name based on configuration.
func getEnvironment(cfg *config.Config) string {
	if cfg.IsDevelopment() {
		return "development"
	}
	if cfg.IsProduction() {
		return "production"
	}
	return "staging"
}

// handleShutdown listens for OS signals and cancels the context.
func handleShutdown(cancel context.CancelFunc, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-quit
	logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	cancel()
}

// setupProjections registers the read model projections and subscribes them
// to the event bus.
func setupProjections(
	store *eventstore.InMemoryEventStore,
	bus *eventbus.InMemoryEventBus,
	logger *slog.Logger,
) (*projection.Registry, error) {
	registry := projection.NewRegistry(store, logger)
	registry.Register(projection.NewCourseCatalogProjection())
	registry.Register(projection.NewOrderHistoryProjection())
	registry.Register(projection.NewUserAccessProjection())
	registry.Register(projection.NewPolicyUsageProjection())
	registry.Register(projection.NewRevenueSummaryProjection())

	if err := registry.SubscribeAll(bus); err != nil {
		return nil, err
	}

	return registry, nil
}

// seedDemoData populates the store with a demo policy, courses, user and a
// pending order through the regular use cases.
func seedDemoData(
	ctx context.Context,
	store *eventstore.InMemoryEventStore,
	bus *eventbus.InMemoryEventBus,
	logger *slog.Logger,
) error {
	userRepo := repository.NewMemoryUserRepository(store, bus)
	courseRepo := repository.NewMemoryCourseRepository(store, bus)
	policyRepo := repository.NewMemoryPolicyRepository(store, bus)
	orderRepo := repository.NewMemoryOrderRepository(store, bus)

	seeder := bootstrap.NewSeeder(
		policy.NewCreatePolicyUseCase(policyRepo),
		course.NewCreateCourseUseCase(courseRepo, policyRepo),
		user.NewRegisterUserUseCase(userRepo),
		order.NewPlaceOrderUseCase(orderRepo, userRepo, courseRepo),
		bootstrap.WithSeederLogger(logger),
	)

	seedCtx, seedCancel := context.WithTimeout(ctx, seedTimeout)
	defer seedCancel()

	ids, err := seeder.Seed(seedCtx)
	if err != nil {
		return err
	}

	logger.InfoContext(seedCtx, "demo data seeded",
		slog.String("user_id", ids.UserID.String()),
		slog.String("order_id", ids.OrderID.String()),
	)

	return nil
}

// setupSweepWorker creates and configures the access sweep worker.
func setupSweepWorker(
	cfg *config.Config,
	lifecycle *service.AccessLifecycleService,
	logger *slog.Logger,
) (*worker.AccessSweepWorker, worker.AccessSweepConfig) {
	sweepConfig := worker.DefaultAccessSweepConfig()
	sweepConfig.Interval = cfg.Workers.AccessSweepInterval
	// Override from environment if needed
	if interval := os.Getenv("ACCESS_SWEEP_INTERVAL"); interval != "" {
		if parsed, parseErr := time.ParseDuration(interval); parseErr == nil {
			sweepConfig.Interval = parsed
		}
	}
	if os.Getenv("ACCESS_SWEEP_DISABLED") == "true" {
		sweepConfig.Enabled = false
	}

	return worker.NewAccessSweepWorker(lifecycle, logger, sweepConfig), sweepConfig
}

// setupConsistencyWorker creates and configures the read model consistency worker.
func setupConsistencyWorker(
	cfg *config.Config,
	store *eventstore.InMemoryEventStore,
	registry *projection.Registry,
	logger *slog.Logger,
) (*worker.ConsistencyWorker, worker.ConsistencyConfig) {
	consistencyConfig := worker.DefaultConsistencyConfig()
	consistencyConfig.Interval = cfg.Workers.ConsistencyInterval
	consistencyConfig.SampleSize = cfg.Workers.ConsistencySample
	if os.Getenv("CONSISTENCY_WORKER_DISABLED") == "true" {
		consistencyConfig.Enabled = false
	}

	return worker.NewConsistencyWorker(store, registry, logger, consistencyConfig), consistencyConfig
}
