package httphandler_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/uuid"
	httphandler "github.com/parley/parley/internal/handler/http"
	"github.com/parley/parley/internal/service"
)

const testMaxUploadSize = 1 << 20

type mockMediaService struct {
	uploadFunc   func(ctx context.Context, upload media.Upload, resourceType string) (*media.Resource, error)
	resourceFunc func(ctx context.Context, key string) (*media.Resource, error)
	downloadFunc func(ctx context.Context, key string) (*media.Resource, io.ReadCloser, error)
	deleteFunc   func(ctx context.Context, key string) error
}

func (m *mockMediaService) Upload(
	ctx context.Context,
	upload media.Upload,
	resourceType string,
) (*media.Resource, error) {
	return m.uploadFunc(ctx, upload, resourceType)
}

func (m *mockMediaService) Resource(ctx context.Context, key string) (*media.Resource, error) {
	return m.resourceFunc(ctx, key)
}

func (m *mockMediaService) Download(ctx context.Context, key string) (*media.Resource, io.ReadCloser, error) {
	return m.downloadFunc(ctx, key)
}

func (m *mockMediaService) Delete(ctx context.Context, key string) error {
	return m.deleteFunc(ctx, key)
}

// newUploadContext builds an echo context carrying a multipart upload.
func newUploadContext(t *testing.T, resourceType, fileName, content string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("type", resourceType))
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	e := echo.New()
	req := httptest.NewRequest(stdhttp.MethodPost, "/api/v1/media", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestMediaHandler_Upload(t *testing.T) {
	t.Run("stores file", func(t *testing.T) {
		userID := uuid.NewUUID()
		mock := &mockMediaService{
			uploadFunc: func(_ context.Context, upload media.Upload, resourceType string) (*media.Resource, error) {
				assert.Equal(t, media.TypeChatChannelMessage, resourceType)
				assert.Equal(t, "report.pdf", upload.FileName)
				assert.Equal(t, userID, upload.CreatedByID)

				body, readErr := io.ReadAll(upload.Content)
				require.NoError(t, readErr)
				assert.Equal(t, "file-bytes", string(body))

				return &media.Resource{
					Key:         "new-key",
					FileName:    upload.FileName,
					ContentType: upload.ContentType,
					Size:        upload.Size,
					Type:        resourceType,
					CreatedByID: userID,
					CreatedAt:   time.Now(),
				}, nil
			},
		}
		handler := httphandler.NewMediaHandler(mock, testMaxUploadSize)

		c, rec := newUploadContext(t, media.TypeChatChannelMessage, "report.pdf", "file-bytes")
		setupAuthContext(c, userID)

		require.NoError(t, handler.Upload(c))
		assert.Equal(t, stdhttp.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "new-key")
	})

	t.Run("unknown resource type", func(t *testing.T) {
		handler := httphandler.NewMediaHandler(&mockMediaService{}, testMaxUploadSize)

		c, rec := newUploadContext(t, "HOME_VIDEO", "cat.mp4", "bytes")
		setupAuthContext(c, uuid.NewUUID())

		require.NoError(t, handler.Upload(c))
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
		requireErrorCode(t, rec, "INVALID_INPUT")
	})

	t.Run("file too large", func(t *testing.T) {
		handler := httphandler.NewMediaHandler(&mockMediaService{}, 4)

		c, rec := newUploadContext(t, media.TypeChatChannelMessage, "big.bin", "way more than four bytes")
		setupAuthContext(c, uuid.NewUUID())

		require.NoError(t, handler.Upload(c))
		assert.Equal(t, stdhttp.StatusRequestEntityTooLarge, rec.Code)
		requireErrorCode(t, rec, "FILE_TOO_LARGE")
	})
}

func TestMediaHandler_Download(t *testing.T) {
	t.Run("streams file", func(t *testing.T) {
		mock := &mockMediaService{
			downloadFunc: func(_ context.Context, key string) (*media.Resource, io.ReadCloser, error) {
				assert.Equal(t, "file-key", key)
				resource := &media.Resource{
					Key:         key,
					FileName:    "report.pdf",
					ContentType: "application/pdf",
				}
				return resource, io.NopCloser(strings.NewReader("pdf-bytes")), nil
			},
		}
		handler := httphandler.NewMediaHandler(mock, testMaxUploadSize)

		c, rec := newJSONContext(stdhttp.MethodGet, "/api/v1/media/x", "")
		c.SetParamNames("key")
		c.SetParamValues("file-key")
		setupAuthContext(c, uuid.NewUUID())

		require.NoError(t, handler.Download(c))
		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, "pdf-bytes", rec.Body.String())
		assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "report.pdf")
	})

	t.Run("missing file", func(t *testing.T) {
		mock := &mockMediaService{
			downloadFunc: func(_ context.Context, _ string) (*media.Resource, io.ReadCloser, error) {
				return nil, nil, service.ErrFileNotFound
			},
		}
		handler := httphandler.NewMediaHandler(mock, testMaxUploadSize)

		c, rec := newJSONContext(stdhttp.MethodGet, "/api/v1/media/x", "")
		c.SetParamNames("key")
		c.SetParamValues("missing")
		setupAuthContext(c, uuid.NewUUID())

		require.NoError(t, handler.Download(c))
		assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	})
}

func TestMediaHandler_Delete(t *testing.T) {
	t.Run("owner deletes file", func(t *testing.T) {
		userID := uuid.NewUUID()
		var deleted bool
		mock := &mockMediaService{
			resourceFunc: func(_ context.Context, key string) (*media.Resource, error) {
				return &media.Resource{Key: key, CreatedByID: userID}, nil
			},
			deleteFunc: func(_ context.Context, key string) error {
				assert.Equal(t, "file-key", key)
				deleted = true
				return nil
			},
		}
		handler := httphandler.NewMediaHandler(mock, testMaxUploadSize)

		c, rec := newJSONContext(stdhttp.MethodDelete, "/api/v1/media/x", "")
		c.SetParamNames("key")
		c.SetParamValues("file-key")
		setupAuthContext(c, userID)

		require.NoError(t, handler.Delete(c))
		assert.Equal(t, stdhttp.StatusNoContent, rec.Code)
		assert.True(t, deleted)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		mock := &mockMediaService{
			resourceFunc: func(_ context.Context, key string) (*media.Resource, error) {
				return &media.Resource{Key: key, CreatedByID: uuid.NewUUID()}, nil
			},
		}
		handler := httphandler.NewMediaHandler(mock, testMaxUploadSize)

		c, rec := newJSONContext(stdhttp.MethodDelete, "/api/v1/media/x", "")
		c.SetParamNames("key")
		c.SetParamValues("file-key")
		setupAuthContext(c, uuid.NewUUID())

		require.NoError(t, handler.Delete(c))
		assert.Equal(t, stdhttp.StatusForbidden, rec.Code)
		requireErrorCode(t, rec, "FORBIDDEN")
	})

	t.Run("super user deletes any file", func(t *testing.T) {
		super := newTestAccount(t)
		super.MarkSuperUser()

		var deleted bool
		mock := &mockMediaService{
			resourceFunc: func(_ context.Context, key string) (*media.Resource, error) {
				return &media.Resource{Key: key, CreatedByID: uuid.NewUUID()}, nil
			},
			deleteFunc: func(_ context.Context, _ string) error {
				deleted = true
				return nil
			},
		}
		handler := httphandler.NewMediaHandler(mock, testMaxUploadSize)

		c, rec := newJSONContext(stdhttp.MethodDelete, "/api/v1/media/x", "")
		c.SetParamNames("key")
		c.SetParamValues("file-key")
		setupSuperUserContext(c, super)

		require.NoError(t, handler.Delete(c))
		assert.Equal(t, stdhttp.StatusNoContent, rec.Code)
		assert.True(t, deleted)
	})
}
