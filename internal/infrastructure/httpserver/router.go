package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coursery/coursery/internal/middleware"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	// Logger is the structured logger for router events.
	Logger *slog.Logger

	// RateLimitMiddleware is the rate limiting middleware.
	RateLimitMiddleware echo.MiddlewareFunc

	// CORSConfig is the CORS configuration.
	CORSConfig middleware.CORSConfig

	// LoggingConfig is the logging middleware configuration.
	LoggingConfig middleware.LoggingConfig

	// RecoveryConfig is the recovery middleware configuration.
	RecoveryConfig middleware.RecoveryConfig

	// APIPrefix is the prefix for all API routes.
	// Default is "/api/v1".
	APIPrefix string
}

// DefaultRouterConfig returns a RouterConfig with sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Logger:         slog.Default(),
		CORSConfig:     middleware.DefaultCORSConfig(),
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		RecoveryConfig: middleware.DefaultRecoveryConfig(),
		APIPrefix:      "/api/v1",
	}
}

// Router manages HTTP route groups and middleware chains.
type Router struct {
	echo   *echo.Echo
	config RouterConfig
	logger *slog.Logger

	api *echo.Group
}

// NewRouter creates a new router with the given configuration.
func NewRouter(e *echo.Echo, config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.APIPrefix == "" {
		config.APIPrefix = "/api/v1"
	}

	r := &Router{
		echo:   e,
		config: config,
		logger: config.Logger,
	}

	// Apply global middleware
	r.setupGlobalMiddleware()

	// All resource routes hang off the API prefix
	r.api = r.echo.Group(r.config.APIPrefix)

	return r
}

// setupGlobalMiddleware applies global middleware to the Echo instance.
func (r *Router) setupGlobalMiddleware() {
	// Recovery middleware (must be first to catch all panics)
	r.echo.Use(middleware.RecoveryWithConfig(r.config.RecoveryConfig))

	// CORS middleware
	r.echo.Use(middleware.CORS(r.config.CORSConfig))

	// Logging middleware
	r.echo.Use(middleware.Logging(r.config.LoggingConfig))

	// Rate limiting middleware (if configured)
	if r.config.RateLimitMiddleware != nil {
		r.echo.Use(r.config.RateLimitMiddleware)
	}
}

// Echo returns the underlying Echo instance.
func (r *Router) Echo() *echo.Echo {
	return r.echo
}

// API returns the versioned API route group all resource routes register on.
func (r *Router) API() *echo.Group {
	return r.api
}

// RouteBuilder provides a fluent API for building routes.
type RouteBuilder struct {
	group      *echo.Group
	middleware []echo.MiddlewareFunc
}

// NewRouteBuilder creates a new route builder for the given group.
func NewRouteBuilder(group *echo.Group) *RouteBuilder {
	return &RouteBuilder{
		group:      group,
		middleware: make([]echo.MiddlewareFunc, 0),
	}
}

// Use adds middleware to the route builder.
func (rb *RouteBuilder) Use(middleware ...echo.MiddlewareFunc) *RouteBuilder {
	rb.middleware = append(rb.middleware, middleware...)
	return rb
}

// Group creates a sub-group with the builder's middleware.
func (rb *RouteBuilder) Group(prefix string, m ...echo.MiddlewareFunc) *echo.Group {
	allMiddleware := make([]echo.MiddlewareFunc, 0, len(rb.middleware)+len(m))
	allMiddleware = append(allMiddleware, rb.middleware...)
	allMiddleware = append(allMiddleware, m...)
	return rb.group.Group(prefix, allMiddleware...)
}

// GET registers a GET route with the builder's middleware.
func (rb *RouteBuilder) GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	allMiddleware := make([]echo.MiddlewareFunc, 0, len(rb.middleware)+len(m))
	allMiddleware = append(allMiddleware, rb.middleware...)
	allMiddleware = append(allMiddleware, m...)
	return rb.group.GET(path, h, allMiddleware...)
}

// POST registers a POST route with the builder's middleware.
func (rb *RouteBuilder) POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	allMiddleware := make([]echo.MiddlewareFunc, 0, len(rb.middleware)+len(m))
	allMiddleware = append(allMiddleware, rb.middleware...)
	allMiddleware = append(allMiddleware, m...)
	return rb.group.POST(path, h, allMiddleware...)
}

// PUT registers a PUT route with the builder's middleware.
func (rb *RouteBuilder) PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	allMiddleware := make([]echo.MiddlewareFunc, 0, len(rb.middleware)+len(m))
	allMiddleware = append(allMiddleware, rb.middleware...)
	allMiddleware = append(allMiddleware, m...)
	return rb.group.PUT(path, h, allMiddleware...)
}

// PATCH registers a PATCH route with the builder's middleware.
func (rb *RouteBuilder) PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	allMiddleware := make([]echo.MiddlewareFunc, 0, len(rb.middleware)+len(m))
	allMiddleware = append(allMiddleware, rb.middleware...)
	allMiddleware = append(allMiddleware, m...)
	return rb.group.PATCH(path, h, allMiddleware...)
}

// DELETE registers a DELETE route with the builder's middleware.
func (rb *RouteBuilder) DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	allMiddleware := make([]echo.MiddlewareFunc, 0, len(rb.middleware)+len(m))
	allMiddleware = append(allMiddleware, rb.middleware...)
	allMiddleware = append(allMiddleware, m...)
	return rb.group.DELETE(path, h, allMiddleware...)
}

// RouteRegistrar defines the interface for registering routes.
type RouteRegistrar interface {
	RegisterRoutes(r *Router)
}

// RegisterAll registers all route registrars with the router.
func (r *Router) RegisterAll(registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		registrar.RegisterRoutes(r)
	}
}

// PrintRoutes logs all registered routes (for debugging).
func (r *Router) PrintRoutes() {
	for _, route := range r.echo.Routes() {
		r.logger.Debug("registered route",
			slog.String("method", route.Method),
			slog.String("path", route.Path),
			slog.String("name", route.Name),
		)
	}
}

// RegisterMetricsEndpoint registers the Prometheus metrics endpoint.
func (r *Router) RegisterMetricsEndpoint() {
	// We use echo.WrapHandler to convert http.Handler to echo.HandlerFunc
	r.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
