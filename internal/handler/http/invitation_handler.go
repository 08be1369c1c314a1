package httphandler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/invitation"
	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/service"
)

// InvitationHandlerService defines the invitation operations used by
// InvitationHandler. Declared on the consumer side per project guidelines.
type InvitationHandlerService interface {
	SendToGroup(ctx context.Context, actorID, channelID uuid.UUID, userIDs []uuid.UUID, msg string) (*service.InvitationSendResult, error)
	SendDirect(ctx context.Context, actorID uuid.UUID, userIDs []uuid.UUID, msg string) (*service.InvitationSendResult, error)
	Respond(ctx context.Context, actorID, invitationID uuid.UUID, response invitation.Status, msg string) (*invitation.Invitation, error)
	List(ctx context.Context, filter invitation.Filter) (*service.InvitationPage, error)
	FindRecipientCandidate(ctx context.Context, actorID uuid.UUID, loginID string, channelType channel.Type, channelID uuid.UUID) (*service.RecipientCandidate, error)
}

// InvitationNotifier pushes invitation events to connected WebSocket clients.
// Declared on the consumer side per project guidelines.
type InvitationNotifier interface {
	InvitationReceived(userID uuid.UUID, payload any)
	InvitationResponded(userID uuid.UUID, payload any)
}

// InvitationHandler serves invitation endpoints.
type InvitationHandler struct {
	service  InvitationHandlerService
	notifier InvitationNotifier
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(svc InvitationHandlerService) *InvitationHandler {
	return &InvitationHandler{service: svc}
}

// SetNotifier enables WebSocket notifications for invitation events.
func (h *InvitationHandler) SetNotifier(notifier InvitationNotifier) {
	h.notifier = notifier
}

func (h *InvitationHandler) notifyRecipients(items []*InvitationResponse) {
	if h.notifier == nil {
		return
	}
	for _, item := range items {
		h.notifier.InvitationReceived(item.UserID, item)
	}
}

// RegisterRoutes registers invitation routes.
func (h *InvitationHandler) RegisterRoutes(r *httpserver.Router) {
	g := r.Auth()
	g.POST("/channels/:id/invitations", h.SendToGroup)
	g.POST("/invitations/direct", h.SendDirect)
	g.POST("/invitations/:id/respond", h.Respond)
	g.GET("/invitations", h.List)
	g.GET("/invitations/recipient", h.FindRecipient)
}

// SendInvitationsRequest carries invitation targets and an optional message.
type SendInvitationsRequest struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,max=50,dive,uuid"`
	Message string   `json:"message" validate:"max=500"`
}

// SendInvitationsResponse lists created invitations. Message is set when
// every target was filtered out and nothing was created.
type SendInvitationsResponse struct {
	Items   []*InvitationResponse `json:"items"`
	Total   int                   `json:"total"`
	Message string                `json:"message,omitempty"`
}

func (h *InvitationHandler) respondSendResult(c echo.Context, result *service.InvitationSendResult) error {
	items := make([]*InvitationResponse, 0, len(result.Created))
	for _, inv := range result.Created {
		items = append(items, ToInvitationResponse(inv))
	}
	h.notifyRecipients(items)

	if len(items) == 0 {
		return httpserver.RespondOK(c, SendInvitationsResponse{Items: items, Message: result.Info})
	}
	return httpserver.RespondCreated(c, SendInvitationsResponse{Items: items, Total: len(items)})
}

func parseUUIDs(c echo.Context, raw []string, field string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.ParseUUID(s)
		if err != nil {
			_ = httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid id in "+field)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// SendToGroup handles POST /api/v1/channels/:id/invitations.
func (h *InvitationHandler) SendToGroup(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	channelID, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	var req SendInvitationsRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	userIDs, ok := parseUUIDs(c, req.UserIDs, "userIds")
	if !ok {
		return nil
	}

	result, err := h.service.SendToGroup(c.Request().Context(), actorID, channelID, userIDs, req.Message)
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	return h.respondSendResult(c, result)
}

// SendDirect handles POST /api/v1/invitations/direct.
func (h *InvitationHandler) SendDirect(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	var req SendInvitationsRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	userIDs, ok := parseUUIDs(c, req.UserIDs, "userIds")
	if !ok {
		return nil
	}

	result, err := h.service.SendDirect(c.Request().Context(), actorID, userIDs, req.Message)
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	return h.respondSendResult(c, result)
}

// RespondInvitationRequest carries the decision on a pending invitation.
type RespondInvitationRequest struct {
	Response string `json:"response" validate:"required,oneof=ACCEPTED REJECTED"`
	Message  string `json:"message"  validate:"max=500"`
}

// Respond handles POST /api/v1/invitations/:id/respond.
func (h *InvitationHandler) Respond(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	invitationID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req RespondInvitationRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	inv, err := h.service.Respond(
		c.Request().Context(),
		actorID,
		invitationID,
		invitation.Status(req.Response),
		req.Message,
	)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	resp := ToInvitationResponse(inv)
	if h.notifier != nil {
		h.notifier.InvitationResponded(resp.CreatedByID, resp)
	}
	return httpserver.RespondOK(c, resp)
}

// RecipientCandidateResponse reports whether a login resolves to a user and
// whether that user already belongs to the target channel.
type RecipientCandidateResponse struct {
	UserPresent bool          `json:"userPresent"`
	IsMember    bool          `json:"isMember"`
	User        *UserResponse `json:"user,omitempty"`
}

// FindRecipient handles GET /api/v1/invitations/recipient.
// Query parameters: login (username or email), channelType (GROUP|DIRECT),
// channelId (GROUP only; for DIRECT the channel id is derived).
func (h *InvitationHandler) FindRecipient(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	loginID := c.QueryParam("login")
	if loginID == "" {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "login is required")
	}

	channelType := channel.Type(c.QueryParam("channelType"))
	var channelID uuid.UUID
	switch channelType {
	case channel.TypeGroup:
		raw := c.QueryParam("channelId")
		if raw == "" {
			return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "channelId is required for GROUP")
		}
		channelID = uuid.UUID(raw)
	case channel.TypeDirect:
	default:
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "channelType must be GROUP or DIRECT")
	}

	candidate, err := h.service.FindRecipientCandidate(c.Request().Context(), actorID, loginID, channelType, channelID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, RecipientCandidateResponse{
		UserPresent: candidate.User != nil,
		IsMember:    candidate.IsMember,
		User:        ToUserResponse(candidate.User),
	})
}

// List handles GET /api/v1/invitations.
// Query parameters: direction (received|sent, default received), status
// (repeatable), channelType, channelId, skip, limit.
func (h *InvitationHandler) List(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	filter := invitation.Filter{
		ChannelType: channel.Type(c.QueryParam("channelType")),
		Skip:        queryInt(c, "skip", 0),
		Limit:       queryInt(c, "limit", 0),
	}

	switch c.QueryParam("direction") {
	case "sent":
		filter.CreatedByID = actorID
	case "received", "":
		filter.UserID = actorID
	default:
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "direction must be received or sent")
	}

	if raw := c.QueryParam("channelId"); raw != "" {
		filter.ChannelID = uuid.UUID(raw)
	}

	for _, s := range c.QueryParams()["status"] {
		status := invitation.Status(s)
		if status != invitation.StatusPending && !status.IsValidResponse() {
			return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid status filter")
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	page, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	items := make([]*InvitationResponse, 0, len(page.Items))
	for _, view := range page.Items {
		items = append(items, ToInvitationViewResponse(view))
	}

	return httpserver.RespondOK(c, ListResponse[*InvitationResponse]{Items: items, Total: page.Total})
}
