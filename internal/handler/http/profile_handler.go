package httphandler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/parley/parley/internal/domain/profile"
	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/middleware"
	"github.com/parley/parley/internal/service"
)

// ProfileHandlerService defines the profile catalog operations used by
// ProfileHandler. Declared on the consumer side per project guidelines.
type ProfileHandlerService interface {
	Create(ctx context.Context, name, description string, grants []profile.Grant) (*profile.Profile, error)
	Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	List(ctx context.Context, offset, limit int) (*service.ProfilePage, error)
	Update(ctx context.Context, id uuid.UUID, name, description string, grants []profile.Grant) (*profile.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileHandler serves the permission profile catalog. All routes require
// super user.
type ProfileHandler struct {
	service ProfileHandlerService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc ProfileHandlerService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// RegisterRoutes registers profile catalog routes.
func (h *ProfileHandler) RegisterRoutes(r *httpserver.Router) {
	g := r.Auth().Group("/profiles", middleware.RequireSuperUser())
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// GrantRequest is a single permission grant.
type GrantRequest struct {
	Permission string   `json:"permission" validate:"required"`
	Actions    []string `json:"actions"    validate:"required,min=1"`
}

// ProfileRequest carries profile fields for create and update.
type ProfileRequest struct {
	Name        string         `json:"name"        validate:"required,max=100"`
	Description string         `json:"description" validate:"max=500"`
	Grants      []GrantRequest `json:"grants"      validate:"dive"`
}

func toGrants(reqs []GrantRequest) []profile.Grant {
	grants := make([]profile.Grant, 0, len(reqs))
	for _, g := range reqs {
		grants = append(grants, profile.Grant{Permission: g.Permission, Actions: g.Actions})
	}
	return grants
}

// Create handles POST /api/v1/profiles.
func (h *ProfileHandler) Create(c echo.Context) error {
	var req ProfileRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	p, err := h.service.Create(c.Request().Context(), req.Name, req.Description, toGrants(req.Grants))
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondCreated(c, ToProfileResponse(p))
}

// List handles GET /api/v1/profiles.
func (h *ProfileHandler) List(c echo.Context) error {
	offset := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 0)

	page, err := h.service.List(c.Request().Context(), offset, limit)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	items := make([]*ProfileResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, ToProfileResponse(p))
	}

	return httpserver.RespondOK(c, ListResponse[*ProfileResponse]{Items: items, Total: page.Total})
}

// Get handles GET /api/v1/profiles/:id.
func (h *ProfileHandler) Get(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	p, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToProfileResponse(p))
}

// Update handles PUT /api/v1/profiles/:id.
func (h *ProfileHandler) Update(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req ProfileRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	p, err := h.service.Update(c.Request().Context(), id, req.Name, req.Description, toGrants(req.Grants))
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToProfileResponse(p))
}

// Delete handles DELETE /api/v1/profiles/:id. The profile is deactivated, not
// removed: users holding its snapshot keep working.
func (h *ProfileHandler) Delete(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondNoContent(c)
}
