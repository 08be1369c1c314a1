package httphandler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/parley/parley/internal/domain/message"
	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/service"
)

// MessageHandlerService defines the message operations used by MessageHandler.
// Declared on the consumer side per project guidelines.
type MessageHandlerService interface {
	Send(ctx context.Context, actorID, channelID uuid.UUID, text string, resourceKeys []string) (*message.Message, error)
	Update(ctx context.Context, actorID, messageID uuid.UUID, text string, resourceKeys []string) (*message.Message, error)
	Delete(ctx context.Context, actorID, messageID uuid.UUID) (*message.Message, error)
	List(ctx context.Context, actorID, channelID uuid.UUID, skip, limit int) ([]service.MessageView, error)
}

// MessageNotifier pushes message changes to connected WebSocket clients.
// Declared on the consumer side per project guidelines.
type MessageNotifier interface {
	MessageSent(channelID uuid.UUID, payload any)
	MessageUpdated(channelID uuid.UUID, payload any)
	MessageDeleted(channelID, messageID uuid.UUID)
}

// MessageHandler serves channel message endpoints.
type MessageHandler struct {
	service  MessageHandlerService
	notifier MessageNotifier
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(svc MessageHandlerService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// SetNotifier enables WebSocket notifications for message changes.
func (h *MessageHandler) SetNotifier(notifier MessageNotifier) {
	h.notifier = notifier
}

// RegisterRoutes registers message routes.
func (h *MessageHandler) RegisterRoutes(r *httpserver.Router) {
	g := r.Auth()
	g.POST("/channels/:id/messages", h.Send)
	g.GET("/channels/:id/messages", h.List)
	g.PUT("/messages/:id", h.Update)
	g.DELETE("/messages/:id", h.Delete)
}

// SendMessageRequest carries the message text and optional attachments.
type SendMessageRequest struct {
	Text         string   `json:"text"         validate:"required,max=4000"`
	ResourceKeys []string `json:"resourceKeys" validate:"max=10"`
}

// Send handles POST /api/v1/channels/:id/messages.
func (h *MessageHandler) Send(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	channelID, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	var req SendMessageRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	msg, err := h.service.Send(c.Request().Context(), actorID, channelID, req.Text, req.ResourceKeys)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	resp := ToMessageResponse(msg)
	if h.notifier != nil {
		h.notifier.MessageSent(msg.ChannelID(), resp)
	}
	return httpserver.RespondCreated(c, resp)
}

// List handles GET /api/v1/channels/:id/messages.
// Messages are returned newest first; skip and limit page through history.
func (h *MessageHandler) List(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	channelID, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 0)

	views, err := h.service.List(c.Request().Context(), actorID, channelID, skip, limit)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	items := make([]*MessageResponse, 0, len(views))
	for _, view := range views {
		items = append(items, ToMessageViewResponse(view))
	}

	return httpserver.RespondOK(c, ListResponse[*MessageResponse]{Items: items, Total: len(items)})
}

// UpdateMessageRequest carries edited message content.
type UpdateMessageRequest struct {
	Text         string   `json:"text"         validate:"required,max=4000"`
	ResourceKeys []string `json:"resourceKeys" validate:"max=10"`
}

// Update handles PUT /api/v1/messages/:id. Only the author may edit.
func (h *MessageHandler) Update(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	messageID, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	var req UpdateMessageRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	msg, err := h.service.Update(c.Request().Context(), actorID, messageID, req.Text, req.ResourceKeys)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	resp := ToMessageResponse(msg)
	if h.notifier != nil {
		h.notifier.MessageUpdated(msg.ChannelID(), resp)
	}
	return httpserver.RespondOK(c, resp)
}

// Delete handles DELETE /api/v1/messages/:id.
func (h *MessageHandler) Delete(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	messageID, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	msg, err := h.service.Delete(c.Request().Context(), actorID, messageID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	if h.notifier != nil {
		h.notifier.MessageDeleted(msg.ChannelID(), msg.ID())
	}
	return httpserver.RespondNoContent(c)
}
