package httphandler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/middleware"
	"github.com/parley/parley/internal/service"
)

// UserHandlerService defines the user operations used by UserHandler.
// Declared on the consumer side per project guidelines.
type UserHandlerService interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	List(ctx context.Context, filter user.SearchFilter) (*service.UserPage, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, username, firstName, lastName string) (*user.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error
	SetProfilePicture(ctx context.Context, id uuid.UUID, picture media.Resource) (*user.User, error)
	AssignProfiles(ctx context.Context, id uuid.UUID, profileIDs []uuid.UUID) (*user.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// UserMediaResolver resolves uploaded media keys to their metadata.
// Declared on the consumer side per project guidelines.
type UserMediaResolver interface {
	Resource(ctx context.Context, key string) (*media.Resource, error)
	Attach(ctx context.Context, keys []string, typeID string) error
}

// UserHandler serves user directory and account endpoints.
type UserHandler struct {
	service UserHandlerService
	media   UserMediaResolver
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserHandlerService, mediaResolver UserMediaResolver) *UserHandler {
	return &UserHandler{service: svc, media: mediaResolver}
}

// RegisterRoutes registers user routes.
func (h *UserHandler) RegisterRoutes(r *httpserver.Router) {
	g := r.Auth()
	g.GET("/users/me", h.Me)
	g.PUT("/users/me", h.UpdateMe)
	g.PUT("/users/me/password", h.ChangePassword)
	g.PUT("/users/me/picture", h.SetProfilePicture)
	g.GET("/users", h.List)
	g.GET("/users/:id", h.Get)

	g.PUT("/users/:id/profiles", h.AssignProfiles, middleware.RequireSuperUser())
	g.DELETE("/users/:id", h.Deactivate, middleware.RequireSuperUser())
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	u, err := h.service.Get(c.Request().Context(), userID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(u))
}

// UpdateMeRequest carries editable account fields.
type UpdateMeRequest struct {
	Username  string `json:"username"  validate:"required,min=3,max=50"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName"  validate:"required,max=100"`
}

// UpdateMe handles PUT /api/v1/users/me.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	var req UpdateMeRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	u, err := h.service.UpdateProfile(c.Request().Context(), userID, req.Username, req.FirstName, req.LastName)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(u))
}

// ChangePasswordRequest carries the current and the new password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=128"`
}

// ChangePassword handles PUT /api/v1/users/me/password.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	var req ChangePasswordRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	err := h.service.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondNoContent(c)
}

// SetProfilePictureRequest references a previously uploaded media resource.
type SetProfilePictureRequest struct {
	Key string `json:"key" validate:"required"`
}

// SetProfilePicture handles PUT /api/v1/users/me/picture.
func (h *UserHandler) SetProfilePicture(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	var req SetProfilePictureRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	ctx := c.Request().Context()

	resource, err := h.media.Resource(ctx, req.Key)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	u, err := h.service.SetProfilePicture(ctx, userID, *resource)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	if err = h.media.Attach(ctx, []string{req.Key}, userID.String()); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(u))
}

// List handles GET /api/v1/users. Supports substring search over username,
// email and name.
func (h *UserHandler) List(c echo.Context) error {
	if _, ok := requireUserID(c); !ok {
		return nil
	}

	filter := user.SearchFilter{
		Search: c.QueryParam("search"),
		Offset: queryInt(c, "skip", 0),
		Limit:  queryInt(c, "limit", 0),
	}

	page, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	items := make([]*UserResponse, 0, len(page.Items))
	for _, u := range page.Items {
		items = append(items, toUserSummary(u))
	}

	return httpserver.RespondOK(c, ListResponse[*UserResponse]{Items: items, Total: page.Total})
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	if _, ok := requireUserID(c); !ok {
		return nil
	}

	userID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	u, err := h.service.Get(c.Request().Context(), userID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, toUserSummary(u))
}

// AssignProfilesRequest replaces a user's permission profile set.
type AssignProfilesRequest struct {
	ProfileIDs []string `json:"profileIds" validate:"dive,uuid"`
}

// AssignProfiles handles PUT /api/v1/users/:id/profiles. Super users only.
func (h *UserHandler) AssignProfiles(c echo.Context) error {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req AssignProfilesRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	profileIDs, ok := parseUUIDs(c, req.ProfileIDs, "profileIds")
	if !ok {
		return nil
	}

	u, err := h.service.AssignProfiles(c.Request().Context(), userID, profileIDs)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(u))
}

// Deactivate handles DELETE /api/v1/users/:id. Super users only.
// Deactivation takes effect on the user's next request.
func (h *UserHandler) Deactivate(c echo.Context) error {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	if err := h.service.Deactivate(c.Request().Context(), userID); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondNoContent(c)
}
