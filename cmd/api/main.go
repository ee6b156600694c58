// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coursery/coursery/internal/config"
)

// Startup and shutdown timing constants.
const (
	seedTimeout           = 30 * time.Second
	gracefulShutdownSleep = 100 * time.Millisecond
)

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

	logger.Info("starting coursery API server",
		slog.String("version", "0.1.0"),
		slog.String("environment", getEnvironment(cfg)),
	)

	// Build DI container
	container, err := NewContainer(cfg, WithLogger(logger))
	if err != nil {
		logger.Error("failed to build container", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create a context that will be cancelled on shutdown signal
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start WebSocket hub, event broadcaster and background workers
	if startErr := container.StartBackground(ctx); startErr != nil {
		logger.Error("failed to start background components", slog.String("error", startErr.Error()))
		_ = container.Close()
		os.Exit(1) //nolint:gocritic // Intentional exit after cleanup
	}

	// Seed demo data when enabled; the records flow through the regular
	// use cases so projections and the event log see them like traffic.
	if cfg.Bootstrap.SeedDemo {
		if seedErr := seedDemoData(ctx, container, logger); seedErr != nil {
			cancel()
			_ = container.Close()
			os.Exit(1)
		}
	}

	// Setup routes
	router := SetupRoutes(container)

	// Get the Echo instance from the router
	e := router.Echo()

	// Configure Echo server timeouts
	e.Server.ReadTimeout = cfg.HTTPServer.ReadTimeout
	e.Server.WriteTimeout = cfg.HTTPServer.WriteTimeout

	// Start graceful shutdown handler
	go gracefulShutdown(ctx, cancel, e, container, cfg.HTTPServer.ShutdownTimeout, logger)

	// Start server
	logger.Info("server listening",
		slog.String("address", cfg.HTTPServer.Address()),
		slog.Duration("read_timeout", cfg.HTTPServer.ReadTimeout),
		slog.Duration("write_timeout", cfg.HTTPServer.WriteTimeout),
	)

	if serverErr := e.Start(cfg.HTTPServer.Address()); serverErr != nil && !errors.Is(serverErr, http.ErrServerClosed) {
		logger.Error("server error", slog.String("error", serverErr.Error()))
		cancel()
		_ = container.Close()
		os.Exit(1)
	}
}

// seedDemoData creates the demo data set at startup.
func seedDemoData(ctx context.Context, container *Container, logger *slog.Logger) error {
	seedCtx, seedCancel := context.WithTimeout(ctx, seedTimeout)
	defer seedCancel()

	ids, err := container.Seeder.Seed(seedCtx)
	if err != nil {
		logger.ErrorContext(seedCtx, "failed to seed demo data", slog.String("error", err.Error()))
		return err
	}

	logger.InfoContext(seedCtx, "demo data seeded",
		slog.String("user_id", ids.UserID.String()),
		slog.String("order_id", ids.OrderID.String()),
	)

	return nil
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
	default: // "json" or any other value defaults to JSON
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

// gracefulShutdown handles graceful shutdown on OS signals.
func gracefulShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	e *echo.Echo,
	container *Container,
	shutdownTimeout time.Duration,
	logger *slog.Logger,
) {
	// Listen for shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	// Create a background context for shutdown logging
	shutdownLogCtx := context.Background()

	select {
	case sig := <-quit:
		logger.InfoContext(shutdownLogCtx, "received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.InfoContext(shutdownLogCtx, "context cancelled, initiating shutdown")
	}

	logger.InfoContext(shutdownLogCtx, "shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer shutdownCancel()

	// 1. Stop accepting new connections
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "server shutdown error", slog.String("error", err.Error()))
	} else {
		logger.InfoContext(shutdownCtx, "HTTP server stopped")
	}

	// 2. Cancel the main context to stop background services
	cancel()

	// Give background services a moment to clean up
	time.Sleep(gracefulShutdownSleep)

	// 3. Close container resources
	if err := container.Close(); err != nil {
		logger.ErrorContext(shutdownCtx, "container close error", slog.String("error", err.Error()))
	}

	logger.InfoContext(shutdownCtx, "server shutdown complete")
}
