package httphandler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/service"
)

// ChannelHandlerService defines the channel operations used by ChannelHandler.
// Declared on the consumer side per project guidelines.
type ChannelHandlerService interface {
	CreateGroup(ctx context.Context, actorID uuid.UUID, name, description string) (*channel.Channel, error)
	CreateDirect(ctx context.Context, actorID, otherUserID uuid.UUID) (*channel.Channel, error)
	UpdateDetails(ctx context.Context, actorID, channelID uuid.UUID, name, description string) (*channel.Channel, error)
	UpdateAvatar(ctx context.Context, actorID, channelID uuid.UUID, avatar media.Resource) (*channel.Channel, error)
	Get(ctx context.Context, actorID, channelID uuid.UUID) (*service.ChannelView, error)
	My(ctx context.Context, actorID uuid.UUID) ([]service.ChannelView, error)
}

// ChannelMemberService defines the membership operations used by ChannelHandler.
// Declared on the consumer side per project guidelines.
type ChannelMemberService interface {
	ListMembers(ctx context.Context, actorID, channelID uuid.UUID) ([]service.MemberView, error)
	AssignRole(ctx context.Context, actorID, channelID, targetUserID uuid.UUID, newRole channel.Role) (string, error)
	MarkSeen(ctx context.Context, actorID, channelID uuid.UUID) error
}

// ChannelMediaResolver resolves uploaded media keys to their metadata.
// Declared on the consumer side per project guidelines.
type ChannelMediaResolver interface {
	Resource(ctx context.Context, key string) (*media.Resource, error)
	Attach(ctx context.Context, keys []string, typeID string) error
}

// ChannelHandler serves channel, membership and role endpoints.
type ChannelHandler struct {
	channels ChannelHandlerService
	members  ChannelMemberService
	media    ChannelMediaResolver
}

// NewChannelHandler creates a new ChannelHandler.
func NewChannelHandler(
	channels ChannelHandlerService,
	members ChannelMemberService,
	mediaResolver ChannelMediaResolver,
) *ChannelHandler {
	return &ChannelHandler{channels: channels, members: members, media: mediaResolver}
}

// RegisterRoutes registers channel routes.
func (h *ChannelHandler) RegisterRoutes(r *httpserver.Router) {
	g := r.Auth()
	g.POST("/channels/group", h.CreateGroup)
	g.POST("/channels/direct", h.CreateDirect)
	g.GET("/channels/my", h.My)
	g.GET("/channels/:id", h.Get)
	g.PUT("/channels/:id", h.Update)
	g.PUT("/channels/:id/avatar", h.UpdateAvatar)
	g.GET("/channels/:id/members", h.ListMembers)
	g.PUT("/channels/:id/members/:userId/role", h.AssignRole)
	g.POST("/channels/:id/seen", h.MarkSeen)
}

// CreateGroupChannelRequest carries parameters for a new group channel.
type CreateGroupChannelRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// CreateGroup handles POST /api/v1/channels/group.
func (h *ChannelHandler) CreateGroup(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	var req CreateGroupChannelRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	ch, err := h.channels.CreateGroup(c.Request().Context(), actorID, req.Name, req.Description)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondCreated(c, ToChannelResponse(ch))
}

// CreateDirectChannelRequest names the other participant of a direct channel.
type CreateDirectChannelRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// CreateDirect handles POST /api/v1/channels/direct. The operation is
// idempotent: the channel between two users is the same one every time.
func (h *ChannelHandler) CreateDirect(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	var req CreateDirectChannelRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	otherID, err := uuid.ParseUUID(req.UserID)
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid userId")
	}

	ch, err := h.channels.CreateDirect(c.Request().Context(), actorID, otherID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToChannelResponse(ch))
}

// My handles GET /api/v1/channels/my.
func (h *ChannelHandler) My(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	views, err := h.channels.My(c.Request().Context(), actorID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	items := make([]*ChannelResponse, 0, len(views))
	for _, view := range views {
		items = append(items, ToChannelViewResponse(view))
	}

	return httpserver.RespondOK(c, ListResponse[*ChannelResponse]{Items: items, Total: len(items)})
}

// Get handles GET /api/v1/channels/:id.
func (h *ChannelHandler) Get(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	channelID, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	view, err := h.channels.Get(c.Request().Context(), actorID, channelID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToChannelViewResponse(*view))
}

// UpdateChannelRequest carries new channel details.
type UpdateChannelRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// Update handles PUT /api/v1/channels/:id.
func (h *ChannelHandler) Update(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	channelID, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	var req UpdateChannelRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	ch, err := h.channels.UpdateDetails(c.Request().Context(), actorID, channelID, req.Name, req.Description)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToChannelResponse(ch))
}

// UpdateAvatarRequest references a previously uploaded media resource.
type UpdateAvatarRequest struct {
	Key string `json:"key" validate:"required"`
}

// UpdateAvatar handles PUT /api/v1/channels/:id/avatar.
func (h *ChannelHandler) UpdateAvatar(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	channelID, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	var req UpdateAvatarRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	ctx := c.Request().Context()

	resource, err := h.media.Resource(ctx, req.Key)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	ch, err := h.channels.UpdateAvatar(ctx, actorID, channelID, *resource)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	if err = h.media.Attach(ctx, []string{req.Key}, channelID.String()); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToChannelResponse(ch))
}

// ListMembers handles GET /api/v1/channels/:id/members.
func (h *ChannelHandler) ListMembers(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	channelID, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	views, err := h.members.ListMembers(c.Request().Context(), actorID, channelID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	items := make([]MemberResponse, 0, len(views))
	for _, view := range views {
		items = append(items, ToMemberResponse(view))
	}

	return httpserver.RespondOK(c, ListResponse[MemberResponse]{Items: items, Total: len(items)})
}

// AssignRoleRequest carries the new role for a member.
type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=OWNER ADMIN MODERATOR MEMBER VIEWER"`
}

// AssignRole handles PUT /api/v1/channels/:id/members/:userId/role.
// Assigning OWNER transfers ownership: the current owner is demoted to ADMIN.
func (h *ChannelHandler) AssignRole(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	channelID, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return nil
	}

	var req AssignRoleRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	info, err := h.members.AssignRole(c.Request().Context(), actorID, channelID, targetID, channel.Role(req.Role))
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	if info != "" {
		return httpserver.RespondOK(c, map[string]string{"message": info})
	}

	return httpserver.RespondNoContent(c)
}

// MarkSeen handles POST /api/v1/channels/:id/seen.
func (h *ChannelHandler) MarkSeen(c echo.Context) error {
	actorID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	channelID, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	if err := h.members.MarkSeen(c.Request().Context(), actorID, channelID); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondNoContent(c)
}
