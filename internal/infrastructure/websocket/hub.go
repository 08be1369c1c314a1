// Package websocket provides the WebSocket server for real-time updates.
package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/parley/parley/internal/domain/uuid"
)

const defaultBroadcastBufferSize = 256

// Hub manages all WebSocket connections and channel subscriptions.
type Hub struct {
	// clients holds all connected clients.
	clients map[*Client]bool

	// channelRooms maps channel IDs to their subscribed clients.
	channelRooms map[uuid.UUID]map[*Client]bool

	// userClients maps user IDs to their connections. One user can be
	// connected from several devices at once.
	userClients map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	mu     sync.RWMutex
	logger *slog.Logger
	done   chan struct{}

	running   bool
	runningMu sync.RWMutex

	connectionGauge ConnectionGauge
}

// ConnectionGauge tracks the number of open connections.
// Satisfied by prometheus.Gauge.
type ConnectionGauge interface {
	Inc()
	Dec()
}

// broadcastMessage targets either a channel room or a single user.
type broadcastMessage struct {
	channelID *uuid.UUID
	userID    *uuid.UUID
	message   []byte
}

// HubOption configures the Hub.
type HubOption func(*Hub)

// WithHubLogger sets the logger for the hub.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithHubConnectionGauge sets a gauge updated on client register/unregister.
func WithHubConnectionGauge(gauge ConnectionGauge) HubOption {
	return func(h *Hub) {
		h.connectionGauge = gauge
	}
}

// NewHub creates a new Hub with the given options.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:      make(map[*Client]bool),
		channelRooms: make(map[uuid.UUID]map[*Client]bool),
		userClients:  make(map[uuid.UUID]map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		broadcast:    make(chan *broadcastMessage, defaultBroadcastBufferSize),
		logger:       slog.Default(),
		done:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Run starts the hub's main event loop. It should be run as a goroutine.
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

func (h *Hub) shutdown() {
	h.runningMu.Lock()
	h.running = false
	h.runningMu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		if h.connectionGauge != nil {
			h.connectionGauge.Dec()
		}
	}

	h.clients = make(map[*Client]bool)
	h.channelRooms = make(map[uuid.UUID]map[*Client]bool)
	h.userClients = make(map[uuid.UUID]map[*Client]bool)

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

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if h.connectionGauge != nil {
		h.connectionGauge.Inc()
	}

	if !client.userID.IsZero() {
		if h.userClients[client.userID] == nil {
			h.userClients[client.userID] = make(map[*Client]bool)
		}
		h.userClients[client.userID][client] = true
	}

	h.logger.Debug("client registered",
		slog.String("user_id", client.userID.String()),
		slog.Int("total_clients", len(h.clients)),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	for _, channelID := range client.ChannelIDs() {
		if room, ok := h.channelRooms[channelID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.channelRooms, channelID)
			}
		}
	}

	if !client.userID.IsZero() {
		if userClients, ok := h.userClients[client.userID]; ok {
			delete(userClients, client)
			if len(userClients) == 0 {
				delete(h.userClients, client.userID)
			}
		}
	}

	delete(h.clients, client)
	if h.connectionGauge != nil {
		h.connectionGauge.Dec()
	}
	client.Close()

	h.logger.Debug("client unregistered",
		slog.String("user_id", client.userID.String()),
		slog.Int("total_clients", len(h.clients)),
	)
}

// JoinChannel subscribes a client to a channel room.
func (h *Hub) JoinChannel(client *Client, channelID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	if h.channelRooms[channelID] == nil {
		h.channelRooms[channelID] = make(map[*Client]bool)
	}
	h.channelRooms[channelID][client] = true
	client.AddChannel(channelID)

	h.logger.Debug("client joined channel",
		slog.String("user_id", client.userID.String()),
		slog.String("channel_id", channelID.String()),
	)
}

// LeaveChannel removes a client from a channel room.
func (h *Hub) LeaveChannel(client *Client, channelID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.channelRooms[channelID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.channelRooms, channelID)
		}
	}
	client.RemoveChannel(channelID)

	h.logger.Debug("client left channel",
		slog.String("user_id", client.userID.String()),
		slog.String("channel_id", channelID.String()),
	)
}

// BroadcastToChannel sends a message to every client subscribed to a channel.
func (h *Hub) BroadcastToChannel(channelID uuid.UUID, message []byte) {
	h.broadcast <- &broadcastMessage{
		channelID: &channelID,
		message:   message,
	}
}

// SendToUser sends a message to all connections of one user.
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	h.broadcast <- &broadcastMessage{
		userID:  &userID,
		message: message,
	}
}

func (h *Hub) handleBroadcast(msg *broadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch {
	case msg.channelID != nil:
		if room, ok := h.channelRooms[*msg.channelID]; ok {
			for client := range room {
				select {
				case client.send <- msg.message:
				default:
					// Send buffer full, the client is too slow. Drop the message.
					h.logger.Warn("client send buffer full, dropping message",
						slog.String("user_id", client.userID.String()),
						slog.String("channel_id", msg.channelID.String()),
					)
				}
			}
		}
	case msg.userID != nil:
		if userClients, ok := h.userClients[*msg.userID]; ok {
			for client := range userClients {
				select {
				case client.send <- msg.message:
				default:
					h.logger.Warn("client send buffer full, dropping message",
						slog.String("user_id", msg.userID.String()),
					)
				}
			}
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ChannelRoomCount returns the number of active channel rooms.
func (h *Hub) ChannelRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channelRooms)
}

// ClientsInChannel returns the number of clients subscribed to a channel.
func (h *Hub) ClientsInChannel(channelID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.channelRooms[channelID]; ok {
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

// UserConnectionCount returns the number of connections for one user.
func (h *Hub) UserConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.userClients[userID]; ok {
		return len(clients)
	}
	return 0
}
