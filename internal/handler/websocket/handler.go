// Package websocket provides the HTTP handler that upgrades connections
// onto the live domain-event feed.
package websocket

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "github.com/coursery/coursery/internal/infrastructure/websocket"
)

// Handler configuration constants.
const (
	defaultHandlerReadBufferSize  = 1024
	defaultHandlerWriteBufferSize = 1024
)

// Handler handles WebSocket upgrade requests.
type Handler struct {
	hub          *ws.Hub
	upgrader     websocket.Upgrader
	logger       *slog.Logger
	clientConfig ws.ClientConfig
}

// HandlerConfig holds configuration for the WebSocket handler.
type HandlerConfig struct {
	// ReadBufferSize is the size of the read buffer for WebSocket connections.
	ReadBufferSize int

	// WriteBufferSize is the size of the write buffer for WebSocket connections.
	WriteBufferSize int

	// CheckOrigin is a function that returns true if the request origin is acceptable.
	// If nil, a default function allowing all origins is used.
	CheckOrigin func(r *http.Request) bool

	// Logger is the structured logger for the handler.
	Logger *slog.Logger

	// ClientConfig is the configuration for WebSocket clients.
	ClientConfig ws.ClientConfig
}

// DefaultHandlerConfig returns a default configuration.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		ReadBufferSize:  defaultHandlerReadBufferSize,
		WriteBufferSize: defaultHandlerWriteBufferSize,
		CheckOrigin:     nil,
		Logger:          slog.Default(),
		ClientConfig:    ws.DefaultClientConfig(),
	}
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the logger for the handler.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithHandlerConfig sets the handler configuration.
func WithHandlerConfig(config HandlerConfig) HandlerOption {
	return func(h *Handler) {
		h.upgrader.ReadBufferSize = config.ReadBufferSize
		h.upgrader.WriteBufferSize = config.WriteBufferSize
		if config.CheckOrigin != nil {
			h.upgrader.CheckOrigin = config.CheckOrigin
		}
		if config.Logger != nil {
			h.logger = config.Logger
		}
		h.clientConfig = config.ClientConfig
	}
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *ws.Hub, opts ...HandlerOption) *Handler {
	h := &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  defaultHandlerReadBufferSize,
			WriteBufferSize: defaultHandlerWriteBufferSize,
			CheckOrigin: func(_ *http.Request) bool {
				// Allow all origins in development
				// In production, this should be configured properly
				return true
			},
		},
		logger:       slog.Default(),
		clientConfig: ws.DefaultClientConfig(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// HandleWebSocket handles WebSocket upgrade requests. The upgraded client
// starts with no subscriptions; it picks topics with subscribe messages.
func (h *Handler) HandleWebSocket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			slog.String("remote_ip", c.RealIP()),
			slog.String("error", err.Error()),
		)
		return nil // Upgrade already sent an error response
	}

	client := ws.NewClient(
		h.hub,
		conn,
		ws.WithClientConfig(h.clientConfig),
		ws.WithClientLogger(h.logger),
	)

	h.hub.Register(client)

	h.logger.Info("websocket connection established",
		slog.String("conn_id", client.ConnID().String()),
		slog.String("remote_ip", c.RealIP()),
	)

	go client.WritePump()
	go client.ReadPump()

	return nil
}

// RegisterRoutes registers the WebSocket handler with the Echo router.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleWebSocket)
}

// RegisterRoutesWithGroup registers the WebSocket handler with an Echo group.
func (h *Handler) RegisterRoutesWithGroup(g *echo.Group) {
	g.GET("/ws", h.HandleWebSocket)
}
