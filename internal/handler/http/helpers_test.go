package httphandler_test

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/middleware"
)

// newJSONContext builds an echo context for a JSON request.
func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *stdhttp.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// setupAuthContext marks the context as authenticated.
func setupAuthContext(c echo.Context, userID uuid.UUID) {
	c.Set(string(middleware.ContextKeyUserID), userID)
}

// setupSuperUserContext marks the context as an authenticated super user.
func setupSuperUserContext(c echo.Context, u *user.User) {
	c.Set(string(middleware.ContextKeyUserID), u.ID())
	c.Set(string(middleware.ContextKeyUser), u)
}

// decodeResponse unmarshals the standard response envelope.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httpserver.Response {
	t.Helper()
	var resp httpserver.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// requireErrorCode asserts the response carries the given error code.
func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	require.Equal(t, code, resp.Error.Code)
}
