// Package main provides the API server entry point.
package main

import (
	"github.com/labstack/echo/v4"

	"github.com/coursery/coursery/internal/infrastructure/httpserver"
	"github.com/coursery/coursery/internal/middleware"
)

// SetupRoutes configures all API routes and middleware chains.
func SetupRoutes(c *Container) *httpserver.Router {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Create router configuration
	routerConfig := httpserver.RouterConfig{
		Logger:              c.Logger,
		RateLimitMiddleware: buildRateLimitMiddleware(c),
		CORSConfig:          middleware.DefaultCORSConfig(),
		LoggingConfig:       middleware.DefaultLoggingConfig(),
		RecoveryConfig:      middleware.DefaultRecoveryConfig(),
		APIPrefix:           "/api/v1",
	}

	// Create router with configuration
	router := httpserver.NewRouter(e, routerConfig)

	// Register health check endpoints using the HealthChecker interface.
	// Container implements httpserver.HealthChecker, so we pass it directly.
	router.RegisterHealthEndpointsWithChecker(c)

	// Prometheus metrics endpoint
	router.RegisterMetricsEndpoint()

	// Register API routes
	router.RegisterAll(
		c.UserHandler,
		c.PolicyHandler,
		c.CourseHandler,
		c.OrderHandler,
		c.AccessHandler,
		c.ReportingHandler,
	)

	// WebSocket endpoint for read model change notifications
	registerWebSocketRoutes(router, c)

	// Log all registered routes in debug mode
	if c.Config.IsDevelopment() {
		router.PrintRoutes()
	}

	return router
}

// buildRateLimitMiddleware builds the rate limiting middleware from
// configuration. Returns nil when rate limiting is disabled.
func buildRateLimitMiddleware(c *Container) echo.MiddlewareFunc {
	if !c.Config.RateLimit.Enabled {
		return nil
	}

	rlConfig := middleware.DefaultRateLimitConfig()
	rlConfig.Logger = c.Logger
	rlConfig.Store = middleware.NewMemoryRateLimitStore()
	rlConfig.Limit = c.Config.RateLimit.RPS
	rlConfig.Window = c.Config.RateLimit.Window
	rlConfig.BurstSize = c.Config.RateLimit.Burst

	return middleware.RateLimit(rlConfig)
}

// registerWebSocketRoutes registers WebSocket routes.
func registerWebSocketRoutes(r *httpserver.Router, c *Container) {
	r.API().GET("/ws", c.WSHandler.HandleWebSocket)
}
