package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	accessapp "github.com/coursery/coursery/internal/application/access"
	courseapp "github.com/coursery/coursery/internal/application/course"
	orderapp "github.com/coursery/coursery/internal/application/order"
	policyapp "github.com/coursery/coursery/internal/application/policy"
	userapp "github.com/coursery/coursery/internal/application/user"
	"github.com/coursery/coursery/internal/bootstrap"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
	"github.com/coursery/coursery/internal/infrastructure/eventstore"
	"github.com/coursery/coursery/internal/infrastructure/projection"
	"github.com/coursery/coursery/internal/infrastructure/repository"
	"github.com/coursery/coursery/internal/service"
)

// Scenario names accepted by the -scenario flag.
const (
	scenarioSeed = "seed"
	scenarioFull = "full"
)

// Records created by the full scenario on top of the seeded data. The second
// order total matches the seeded Course B price.
const (
	demoPaymentCourseA = "pay-demo-001"
	demoPaymentCourseB = "pay-demo-002"
	demoProgress       = 40
	demoCourseBAmount  = "150.00"
	demoCurrency       = "USD"
	demoRefundReason   = "changed my mind"
)

func main() {
	// Setup logger first
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Define flags
	scenario := flag.String("scenario", scenarioFull,
		"Scenario to run: seed (demo data only) or full (pay, progress, refund)")
	output := flag.String("output", "", "File to write the read model dump (omit for stdout)")
	pretty := flag.Bool("pretty", true, "Indent the JSON dump")
	verify := flag.Bool("verify", true, "Verify read model consistency after the run")

	flag.Parse()

	// Validate flags
	if *scenario != scenarioSeed && *scenario != scenarioFull {
		logger.Error("invalid scenario",
			slog.String("scenario", *scenario),
			slog.String("valid_values", "seed or full"))
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()

	wiring, err := buildWiring(logger)
	if err != nil {
		logger.Error("failed to build wiring", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ids := runSeed(ctx, wiring, logger)

	if *scenario == scenarioFull {
		runLifecycle(ctx, wiring, ids, logger)
	}

	if *verify {
		runVerify(ctx, wiring, logger)
	}

	writeDump(buildDump(wiring, ids), *output, *pretty, logger)
}

// demoWiring bundles the in-memory stack the tool drives.
type demoWiring struct {
	store    *eventstore.InMemoryEventStore
	registry *projection.Registry

	catalog *projection.CourseCatalogProjection
	history *projection.OrderHistoryProjection
	access  *projection.UserAccessProjection
	usage   *projection.PolicyUsageProjection
	revenue *projection.RevenueSummaryProjection

	accessRepo *repository.MemoryAccessRepository

	seeder     *bootstrap.Seeder
	placeOrder *orderapp.PlaceOrderUseCase
	payOrder   *orderapp.PayOrderUseCase
	refund     *orderapp.RequestRefundUseCase
	progress   *accessapp.UpdateProgressUseCase
}

// buildWiring assembles the event store, the bus, the projections and the
// use cases the scenarios run through.
func buildWiring(logger *slog.Logger) (*demoWiring, error) {
	store := eventstore.NewInMemoryEventStore()
	bus := eventbus.NewInMemoryEventBus(eventbus.WithLogger(logger))

	w := &demoWiring{
		store:   store,
		catalog: projection.NewCourseCatalogProjection(),
		history: projection.NewOrderHistoryProjection(),
		access:  projection.NewUserAccessProjection(),
		usage:   projection.NewPolicyUsageProjection(),
		revenue: projection.NewRevenueSummaryProjection(),
	}

	w.registry = projection.NewRegistry(store, logger)
	w.registry.Register(w.catalog)
	w.registry.Register(w.history)
	w.registry.Register(w.access)
	w.registry.Register(w.usage)
	w.registry.Register(w.revenue)
	if err := w.registry.SubscribeAll(bus); err != nil {
		return nil, fmt.Errorf("subscribe projections: %w", err)
	}

	userRepo := repository.NewMemoryUserRepository(store, bus)
	courseRepo := repository.NewMemoryCourseRepository(store, bus)
	policyRepo := repository.NewMemoryPolicyRepository(store, bus)
	orderRepo := repository.NewMemoryOrderRepository(store, bus)
	w.accessRepo = repository.NewMemoryAccessRepository(store, bus)

	eligibility := service.NewRefundEligibilityService(courseRepo, policyRepo, w.accessRepo)
	processing := service.NewOrderProcessingService(
		orderRepo, courseRepo, w.accessRepo, eligibility,
		service.WithOrderProcessingLogger(logger),
	)

	w.seeder = bootstrap.NewSeeder(
		policyapp.NewCreatePolicyUseCase(policyRepo),
		courseapp.NewCreateCourseUseCase(courseRepo, policyRepo),
		userapp.NewRegisterUserUseCase(userRepo),
		orderapp.NewPlaceOrderUseCase(orderRepo, userRepo, courseRepo),
		bootstrap.WithSeederLogger(logger),
	)
	w.placeOrder = orderapp.NewPlaceOrderUseCase(orderRepo, userRepo, courseRepo)
	w.payOrder = orderapp.NewPayOrderUseCase(processing)
	w.refund = orderapp.NewRequestRefundUseCase(processing)
	w.progress = accessapp.NewUpdateProgressUseCase(w.accessRepo)

	return w, nil
}

// runSeed creates the demo policy, courses, user and pending order.
func runSeed(ctx context.Context, w *demoWiring, logger *slog.Logger) bootstrap.SeededIDs {
	ids, err := w.seeder.Seed(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	return ids
}

// runLifecycle drives the seeded data through the full order lifecycle: the
// pending order is paid and the granted access progressed, then a second
// order for Course B is placed, paid and refunded. The final state shows a
// paid order with active access next to a refunded one with revoked access.
func runLifecycle(ctx context.Context, w *demoWiring, ids bootstrap.SeededIDs, logger *slog.Logger) {
	payRes, err := w.payOrder.Execute(ctx, orderapp.PayOrderCommand{
		OrderID:   ids.OrderID,
		PaymentID: demoPaymentCourseA,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to pay seeded order", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "paid seeded order",
		slog.String("order_id", ids.OrderID.String()),
		slog.String("status", string(payRes.Order.Status())))

	record, err := w.accessRepo.FindByUserAndCourse(ctx, ids.UserID, ids.CourseA)
	if err != nil {
		logger.ErrorContext(ctx, "paid order granted no access", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if _, err = w.progress.Execute(ctx, accessapp.UpdateProgressCommand{
		AccessID: record.ID(),
		Progress: demoProgress,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to update progress", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "updated course progress",
		slog.String("access_id", record.ID().String()),
		slog.Int("progress", demoProgress))

	secondRes, err := w.placeOrder.Execute(ctx, orderapp.PlaceOrderCommand{
		UserID:    ids.UserID,
		CourseIDs: []uuid.UUID{ids.CourseB},
		Amount:    demoCourseBAmount,
		Currency:  demoCurrency,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to place second order", slog.String("error", err.Error()))
		os.Exit(1)
	}
	secondID := secondRes.Order.ID()

	if _, err = w.payOrder.Execute(ctx, orderapp.PayOrderCommand{
		OrderID:   secondID,
		PaymentID: demoPaymentCourseB,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to pay second order", slog.String("error", err.Error()))
		os.Exit(1)
	}

	refundRes, err := w.refund.Execute(ctx, orderapp.RequestRefundCommand{
		OrderID: secondID,
		Reason:  demoRefundReason,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to refund second order", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "refunded second order",
		slog.String("order_id", secondID.String()),
		slog.String("status", string(refundRes.Order.Status())))
}

// runVerify replays every aggregate and compares the result against the live
// projections.
func runVerify(ctx context.Context, w *demoWiring, logger *slog.Logger) {
	var checked, inconsistent int

	for _, raw := range w.store.AllAggregateIDs() {
		id, parseErr := uuid.ParseUUID(raw)
		if parseErr != nil {
			continue
		}

		consistent, verifyErr := w.registry.VerifyConsistency(ctx, id)
		if verifyErr != nil {
			logger.ErrorContext(ctx, "verification failed",
				slog.String("aggregate_id", raw),
				slog.String("error", verifyErr.Error()))
			os.Exit(1)
		}

		checked++
		if !consistent {
			inconsistent++
			logger.WarnContext(ctx, "read model is INCONSISTENT", slog.String("aggregate_id", raw))
		}
	}

	if inconsistent > 0 {
		logger.WarnContext(ctx, "read models out of sync",
			slog.Int("checked", checked),
			slog.Int("inconsistent", inconsistent))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "read models verified", slog.Int("checked", checked))
}

// readModelDump is the JSON document the tool writes.
type readModelDump struct {
	Catalog []projection.CourseView      `json:"catalog"`
	Orders  []projection.OrderView       `json:"orders"`
	Access  []projection.AccessView      `json:"access"`
	Usage   []projection.PolicyUsageView `json:"policy_usage"`
	Revenue []projection.CurrencyRevenue `json:"revenue"`
}

// buildDump collects the projection state for the demo user.
func buildDump(w *demoWiring, ids bootstrap.SeededIDs) readModelDump {
	return readModelDump{
		Catalog: w.catalog.Catalog(),
		Orders:  w.history.UserOrders(ids.UserID.String()),
		Access:  w.access.UserAccess(ids.UserID.String()),
		Usage:   w.usage.Usage(),
		Revenue: w.revenue.Summary(),
	}
}

// writeDump serializes the dump to the output file, or to stdout when no
// file is given.
func writeDump(dump readModelDump, output string, pretty bool, logger *slog.Logger) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(dump, "", "  ")
	} else {
		data, err = json.Marshal(dump)
	}
	if err != nil {
		logger.Error("failed to marshal read model dump", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if output == "" {
		fmt.Println(string(data))
		return
	}

	if writeErr := os.WriteFile(output, data, 0o600); writeErr != nil {
		logger.Error("failed to write read model dump",
			slog.String("file", output),
			slog.String("error", writeErr.Error()))
		os.Exit(1)
	}

	logger.Info("read model dump written", slog.String("file", output))
}
