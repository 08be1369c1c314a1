package websocket

import (
	"encoding/json"
	"log/slog"

	"github.com/parley/parley/internal/domain/uuid"
)

// OutboundMessage represents a message to be sent over WebSocket.
type OutboundMessage struct {
	Type      string  `json:"type"`
	ChannelID *string `json:"channel_id,omitempty"`
	Data      any     `json:"data,omitempty"`
}

// BroadcastTyping tells everyone in a channel that a user is typing.
func (h *Hub) BroadcastTyping(channelID, userID uuid.UUID) {
	raw := channelID.String()
	msg := &OutboundMessage{
		Type:      "channel.typing",
		ChannelID: &raw,
		Data: map[string]any{
			"user_id": userID.String(),
		},
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("failed to marshal typing message", slog.String("error", err.Error()))
		return
	}
	h.BroadcastToChannel(channelID, payload)
}

// Events pushes write results to connected WebSocket clients.
// Handlers call it after a successful state change.
type Events struct {
	hub    *Hub
	logger *slog.Logger
}

// EventsOption configures an Events notifier.
type EventsOption func(*Events)

// WithEventsLogger sets the logger for the notifier.
func WithEventsLogger(logger *slog.Logger) EventsOption {
	return func(e *Events) {
		e.logger = logger
	}
}

// NewEvents creates a notifier bound to the given hub.
func NewEvents(hub *Hub, opts ...EventsOption) *Events {
	e := &Events{
		hub:    hub,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MessageSent broadcasts a new message to its channel room.
func (e *Events) MessageSent(channelID uuid.UUID, payload any) {
	e.broadcast("message.new", channelID, payload)
}

// MessageUpdated broadcasts an edited message to its channel room.
func (e *Events) MessageUpdated(channelID uuid.UUID, payload any) {
	e.broadcast("message.updated", channelID, payload)
}

// MessageDeleted broadcasts a deletion to the channel room.
func (e *Events) MessageDeleted(channelID, messageID uuid.UUID) {
	e.broadcast("message.deleted", channelID, map[string]any{
		"id":         messageID.String(),
		"channel_id": channelID.String(),
	})
}

// ChannelUpdated broadcasts changed channel details to its room.
func (e *Events) ChannelUpdated(channelID uuid.UUID, payload any) {
	e.broadcast("channel.updated", channelID, payload)
}

// InvitationReceived notifies the invited user on all their connections.
func (e *Events) InvitationReceived(userID uuid.UUID, payload any) {
	e.send("invitation.new", userID, payload)
}

// InvitationResponded notifies the inviter about the recipient's decision.
func (e *Events) InvitationResponded(userID uuid.UUID, payload any) {
	e.send("invitation.responded", userID, payload)
}

func (e *Events) broadcast(msgType string, channelID uuid.UUID, payload any) {
	raw := channelID.String()
	data, ok := e.marshal(&OutboundMessage{Type: msgType, ChannelID: &raw, Data: payload})
	if !ok {
		return
	}
	e.hub.BroadcastToChannel(channelID, data)
}

func (e *Events) send(msgType string, userID uuid.UUID, payload any) {
	data, ok := e.marshal(&OutboundMessage{Type: msgType, Data: payload})
	if !ok {
		return
	}
	e.hub.SendToUser(userID, data)
}

func (e *Events) marshal(msg *OutboundMessage) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		e.logger.Warn("failed to marshal websocket message",
			slog.String("type", msg.Type),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return data, true
}
