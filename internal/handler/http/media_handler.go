package httphandler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/middleware"
)

// MediaHandlerService defines the file operations used by MediaHandler.
// Declared on the consumer side per project guidelines.
type MediaHandlerService interface {
	Upload(ctx context.Context, upload media.Upload, resourceType string) (*media.Resource, error)
	Resource(ctx context.Context, key string) (*media.Resource, error)
	Download(ctx context.Context, key string) (*media.Resource, io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MediaHandler serves file upload and download endpoints.
type MediaHandler struct {
	service       MediaHandlerService
	maxUploadSize int64
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(svc MediaHandlerService, maxUploadSize int64) *MediaHandler {
	return &MediaHandler{service: svc, maxUploadSize: maxUploadSize}
}

// RegisterRoutes registers media routes.
func (h *MediaHandler) RegisterRoutes(r *httpserver.Router) {
	g := r.Auth()
	g.POST("/media", h.Upload)
	g.GET("/media/:key", h.Download)
	g.DELETE("/media/:key", h.Delete)
}

func validResourceType(t string) bool {
	switch t {
	case media.TypeUserProfilePicture, media.TypeChatChannelAvatar, media.TypeChatChannelMessage:
		return true
	}
	return false
}

// Upload handles POST /api/v1/media. Expects a multipart form with a "file"
// part and a "type" field naming the resource type.
func (h *MediaHandler) Upload(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	resourceType := c.FormValue("type")
	if !validResourceType(resourceType) {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid resource type")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "file part is required")
	}
	if fileHeader.Size > h.maxUploadSize {
		return httpserver.RespondErrorWithCode(
			c,
			http.StatusRequestEntityTooLarge,
			"FILE_TOO_LARGE",
			fmt.Sprintf("file exceeds the %d byte limit", h.maxUploadSize),
		)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	defer file.Close()

	resource, err := h.service.Upload(c.Request().Context(), media.Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     file,
		CreatedByID: userID,
	}, resourceType)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondCreated(c, resource)
}

// Download handles GET /api/v1/media/:key, streaming the file body.
func (h *MediaHandler) Download(c echo.Context) error {
	if _, ok := requireUserID(c); !ok {
		return nil
	}

	key := c.Param("key")
	if key == "" {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "missing key")
	}

	resource, body, err := h.service.Download(c.Request().Context(), key)
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	defer body.Close()

	contentType := resource.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(
		echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", resource.FileName),
	)

	return c.Stream(http.StatusOK, contentType, body)
}

// Delete handles DELETE /api/v1/media/:key. Only the uploader or a super user
// may delete a file.
func (h *MediaHandler) Delete(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	key := c.Param("key")
	if key == "" {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "missing key")
	}

	ctx := c.Request().Context()

	resource, err := h.service.Resource(ctx, key)
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	if resource.CreatedByID != userID && !middleware.IsSuperUser(c) {
		return httpserver.RespondErrorWithCode(c, http.StatusForbidden, "FORBIDDEN", "not the owner of this file")
	}

	if err = h.service.Delete(ctx, key); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondNoContent(c)
}
