package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coursery/coursery/internal/domain/uuid"
)

// Default client configuration constants.
const (
	defaultReadBufferSize  = 1024
	defaultWriteBufferSize = 1024
	defaultPingInterval    = 30 * time.Second
	defaultPongWait        = 60 * time.Second
	defaultWriteWait       = 10 * time.Second
	defaultMaxMessageSize  = 65536
	defaultSendBufferSize  = 256
)

// ClientConfig holds configuration for WebSocket clients.
type ClientConfig struct {
	// ReadBufferSize is the size of the read buffer.
	ReadBufferSize int

	// WriteBufferSize is the size of the write buffer.
	WriteBufferSize int

	// PingInterval is the interval for sending ping messages.
	PingInterval time.Duration

	// PongWait is the maximum time to wait for a pong response.
	PongWait time.Duration

	// WriteWait is the maximum time to wait for a write operation.
	WriteWait time.Duration

	// MaxMessageSize is the maximum allowed message size.
	MaxMessageSize int64
}

// DefaultClientConfig returns sensible default configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ReadBufferSize:  defaultReadBufferSize,
		WriteBufferSize: defaultWriteBufferSize,
		PingInterval:    defaultPingInterval,
		PongWait:        defaultPongWait,
		WriteWait:       defaultWriteWait,
		MaxMessageSize:  defaultMaxMessageSize,
	}
}

// ClientMessage represents a message from client to server.
type ClientMessage struct {
	Type  string `json:"type"`
	Topic string `json:"topic,omitempty"`
}

// Client represents a single WebSocket connection.
type Client struct {
	// hub is the hub this client belongs to.
	hub *Hub

	// conn is the underlying WebSocket connection.
	conn *websocket.Conn

	// send is the channel for outgoing frames.
	send chan []byte

	// connID identifies this connection in logs.
	connID uuid.UUID

	// topics are the topics this client has subscribed to.
	topics map[string]bool

	// mu protects concurrent access to topics.
	mu sync.RWMutex

	// config holds client configuration.
	config ClientConfig

	// logger for structured logging.
	logger *slog.Logger

	// closed indicates if the client connection has been closed.
	closed bool

	// closedMu protects the closed flag.
	closedMu sync.RWMutex
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientConfig sets the client configuration.
func WithClientConfig(config ClientConfig) ClientOption {
	return func(c *Client) {
		c.config = config
	}
}

// WithClientLogger sets the logger for the client.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new WebSocket client.
func NewClient(hub *Hub, conn *websocket.Conn, opts ...ClientOption) *Client {
	c := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, defaultSendBufferSize),
		connID: uuid.NewUUID(),
		topics: make(map[string]bool),
		config: DefaultClientConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ConnID returns the connection identifier of this client.
func (c *Client) ConnID() uuid.UUID {
	return c.connID
}

// Subscriptions returns a copy of the topics this client is subscribed to.
func (c *Client) Subscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	topics := make([]string, 0, len(c.topics))
	for topic := range c.topics {
		topics = append(topics, topic)
	}
	return topics
}

// AddTopic adds a topic to the client's subscriptions.
func (c *Client) AddTopic(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[topic] = true
}

// RemoveTopic removes a topic from the client's subscriptions.
func (c *Client) RemoveTopic(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.topics, topic)
}

// HasTopic checks if the client is subscribed to a topic.
func (c *Client) HasTopic(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topics[topic]
}

// IsClosed returns whether the client connection has been closed.
func (c *Client) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

// ReadPump reads messages from the WebSocket connection.
// It should be run as a goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait)); err != nil {
		c.logger.Error("failed to set read deadline", slog.String("error", err.Error()))
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error",
					slog.String("conn_id", c.connID.String()),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		c.handleClientMessage(message)
	}
}

// WritePump writes frames to the WebSocket connection.
// It should be run as a goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait)); err != nil {
				c.logger.Error("failed to set write deadline", slog.String("error", err.Error()))
				return
			}

			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("websocket write error",
					slog.String("conn_id", c.connID.String()),
					slog.String("error", err.Error()),
				)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait)); err != nil {
				c.logger.Error("failed to set write deadline", slog.String("error", err.Error()))
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleClientMessage processes a message received from the client.
func (c *Client) handleClientMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("invalid client message",
			slog.String("conn_id", c.connID.String()),
			slog.String("error", err.Error()),
		)
		c.sendError("invalid message format")
		return
	}

	switch msg.Type {
	case "subscribe":
		if msg.Topic == "" {
			c.sendError("topic is required for subscribe")
			return
		}
		c.hub.Subscribe(c, msg.Topic)
		c.sendAck("subscribed", msg.Topic)

	case "unsubscribe":
		if msg.Topic == "" {
			c.sendError("topic is required for unsubscribe")
			return
		}
		c.hub.Unsubscribe(c, msg.Topic)
		c.sendAck("unsubscribed", msg.Topic)

	case "ping":
		c.sendPong()

	default:
		c.logger.Debug("unknown message type",
			slog.String("conn_id", c.connID.String()),
			slog.String("type", msg.Type),
		)
		c.sendError("unknown message type: " + msg.Type)
	}
}

// sendError sends an error message to the client.
func (c *Client) sendError(message string) {
	response := map[string]any{
		"type":    "error",
		"message": message,
	}
	data, _ := json.Marshal(response)
	c.Send(data)
}

// sendAck sends an acknowledgment message to the client.
func (c *Client) sendAck(action, topic string) {
	response := map[string]any{
		"type":   "ack",
		"action": action,
		"topic":  topic,
	}
	data, _ := json.Marshal(response)
	c.Send(data)
}

// sendPong sends a pong response to the client.
func (c *Client) sendPong() {
	response := map[string]string{
		"type": "pong",
	}
	data, _ := json.Marshal(response)
	c.Send(data)
}

// Send queues a frame for delivery to the client.
func (c *Client) Send(message []byte) {
	if c.IsClosed() {
		return
	}

	select {
	case c.send <- message:
	default:
		c.logger.Warn("client send buffer full",
			slog.String("conn_id", c.connID.String()),
		)
	}
}

// Close closes the client connection.
func (c *Client) Close() {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	close(c.send)
	_ = c.conn.Close()

	c.logger.Debug("client connection closed",
		slog.String("conn_id", c.connID.String()),
	)
}
