// Package websocket provides the live domain-event feed. Clients connect,
// subscribe to topics named after aggregate types, and receive every event
// published for those aggregates as JSON frames.
package websocket

import (
	"context"
	"log/slog"
	"sync"
)

// TopicAll subscribes a client to every event regardless of aggregate type.
const TopicAll = "*"

// Hub configuration constants.
const (
	defaultBroadcastBufferSize = 256
)

// Hub manages all WebSocket connections and topic subscriptions.
type Hub struct {
	// clients holds all connected clients.
	clients map[*Client]bool

	// topics maps topic names to their subscribed clients.
	topics map[string]map[*Client]bool

	// register channel for new client connections.
	register chan *Client

	// unregister channel for client disconnections.
	unregister chan *Client

	// broadcast channel for frames to be fanned out.
	broadcast chan *broadcastMessage

	// mu protects concurrent access to maps.
	mu sync.RWMutex

	// logger for structured logging.
	logger *slog.Logger

	// done signals when the hub should stop.
	done chan struct{}

	// running indicates if the hub is currently running.
	running bool

	// runningMu protects the running flag.
	runningMu sync.RWMutex
}

// broadcastMessage represents a frame to be fanned out to one topic.
type broadcastMessage struct {
	topic   string
	message []byte
}

// HubOption configures the Hub.
type HubOption func(*Hub)

// WithHubLogger sets the logger for the hub.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// NewHub creates a new Hub with the given options.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		topics:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMessage, defaultBroadcastBufferSize),
		logger:     slog.Default(),
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Run starts the hub's main event loop.
// It should be run as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.runningMu.Lock()
	if h.running {
		h.runningMu.Unlock()
		return
	}
	h.running = true
	h.runningMu.Unlock()

	h.logger.InfoContext(ctx, "websocket hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case <-h.done:
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.handleBroadcast(msg)
		}
	}
}

// Stop signals the hub to stop.
func (h *Hub) Stop() {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if !h.running {
		return
	}

	close(h.done)
}

// shutdown performs graceful shutdown of all connections.
func (h *Hub) shutdown() {
	h.runningMu.Lock()
	h.running = false
	h.runningMu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
	}

	h.clients = make(map[*Client]bool)
	h.topics = make(map[string]map[*Client]bool)

	h.logger.Info("websocket hub stopped")
}

// Register registers a new client with the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// registerClient adds a client to the hub.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	h.logger.Debug("client registered",
		slog.String("conn_id", client.connID.String()),
		slog.Int("total_clients", len(h.clients)),
	)
}

// unregisterClient removes a client from the hub.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	for _, topic := range client.Subscriptions() {
		if room, ok := h.topics[topic]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.topics, topic)
			}
		}
	}

	delete(h.clients, client)
	client.Close()

	h.logger.Debug("client unregistered",
		slog.String("conn_id", client.connID.String()),
		slog.Int("total_clients", len(h.clients)),
	)
}

// Subscribe adds a client to a topic.
func (h *Hub) Subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]bool)
	}
	h.topics[topic][client] = true
	client.AddTopic(topic)

	h.logger.Debug("client subscribed",
		slog.String("conn_id", client.connID.String()),
		slog.String("topic", topic),
	)
}

// Unsubscribe removes a client from a topic.
func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.topics[topic]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.topics, topic)
		}
	}
	client.RemoveTopic(topic)

	h.logger.Debug("client unsubscribed",
		slog.String("conn_id", client.connID.String()),
		slog.String("topic", topic),
	)
}

// Broadcast sends a frame to every client subscribed to the topic, plus
// every client subscribed to TopicAll.
func (h *Hub) Broadcast(topic string, message []byte) {
	h.broadcast <- &broadcastMessage{
		topic:   topic,
		message: message,
	}
}

// handleBroadcast fans a frame out to the topic room and the wildcard room.
func (h *Hub) handleBroadcast(msg *broadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.deliver(h.topics[msg.topic], msg)
	if msg.topic != TopicAll {
		h.deliver(h.topics[TopicAll], msg)
	}
}

func (h *Hub) deliver(room map[*Client]bool, msg *broadcastMessage) {
	for client := range room {
		select {
		case client.send <- msg.message:
		default:
			// Client's send buffer is full, skip this frame.
			h.logger.Warn("client send buffer full, dropping frame",
				slog.String("conn_id", client.connID.String()),
				slog.String("topic", msg.topic),
			)
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TopicCount returns the number of topics with at least one subscriber.
func (h *Hub) TopicCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics)
}

// Subscribers returns the number of clients subscribed to a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.topics[topic]; ok {
		return len(room)
	}
	return 0
}

// IsRunning returns whether the hub is currently running.
func (h *Hub) IsRunning() bool {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()
	return h.running
}
