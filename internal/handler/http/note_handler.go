package httphandler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/parley/parley/internal/domain/note"
	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/service"
)

// NoteHandlerService defines the note operations used by NoteHandler.
// Declared on the consumer side per project guidelines.
type NoteHandlerService interface {
	Create(ctx context.Context, ownerID uuid.UUID, title, content string) (*note.Note, error)
	Get(ctx context.Context, ownerID, noteID uuid.UUID) (*note.Note, error)
	List(ctx context.Context, ownerID uuid.UUID, skip, limit int) (*service.NotePage, error)
	Update(ctx context.Context, ownerID, noteID uuid.UUID, title, content string) (*note.Note, error)
	Delete(ctx context.Context, ownerID, noteID uuid.UUID) error
}

// NoteHandler serves personal note endpoints.
type NoteHandler struct {
	service NoteHandlerService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc NoteHandlerService) *NoteHandler {
	return &NoteHandler{service: svc}
}

// RegisterRoutes registers note routes.
func (h *NoteHandler) RegisterRoutes(r *httpserver.Router) {
	g := r.Auth()
	g.POST("/notes", h.Create)
	g.GET("/notes", h.List)
	g.GET("/notes/:id", h.Get)
	g.PUT("/notes/:id", h.Update)
	g.DELETE("/notes/:id", h.Delete)
}

// NoteRequest carries note fields for create and update.
type NoteRequest struct {
	Title   string `json:"title"   validate:"required,max=200"`
	Content string `json:"content" validate:"max=20000"`
}

// Create handles POST /api/v1/notes.
func (h *NoteHandler) Create(c echo.Context) error {
	ownerID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	var req NoteRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	n, err := h.service.Create(c.Request().Context(), ownerID, req.Title, req.Content)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondCreated(c, ToNoteResponse(n))
}

// List handles GET /api/v1/notes, most recently updated first.
func (h *NoteHandler) List(c echo.Context) error {
	ownerID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 0)

	page, err := h.service.List(c.Request().Context(), ownerID, skip, limit)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	items := make([]*NoteResponse, 0, len(page.Items))
	for _, n := range page.Items {
		items = append(items, ToNoteResponse(n))
	}

	return httpserver.RespondOK(c, ListResponse[*NoteResponse]{Items: items, Total: page.Total})
}

// Get handles GET /api/v1/notes/:id.
func (h *NoteHandler) Get(c echo.Context) error {
	ownerID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	noteID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	n, err := h.service.Get(c.Request().Context(), ownerID, noteID)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToNoteResponse(n))
}

// Update handles PUT /api/v1/notes/:id.
func (h *NoteHandler) Update(c echo.Context) error {
	ownerID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	noteID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	var req NoteRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	n, err := h.service.Update(c.Request().Context(), ownerID, noteID, req.Title, req.Content)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToNoteResponse(n))
}

// Delete handles DELETE /api/v1/notes/:id.
func (h *NoteHandler) Delete(c echo.Context) error {
	ownerID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	noteID, ok := pathUUID(c, "id")
	if !ok {
		return nil
	}

	if err := h.service.Delete(c.Request().Context(), ownerID, noteID); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondNoContent(c)
}
