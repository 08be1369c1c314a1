package httpserver_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/infrastructure/httpserver"
)

func newResponseContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name           string
		code           int
		data           any
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success with data",
			code:           http.StatusOK,
			data:           map[string]string{"key": "value"},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true,"data":{"key":"value"}}`,
		},
		{
			name:           "success with nil data",
			code:           http.StatusOK,
			data:           nil,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true}`,
		},
		{
			name: "created with struct",
			code: http.StatusCreated,
			data: struct {
				ID string `json:"id"`
			}{ID: "123"},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"success":true,"data":{"id":"123"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newResponseContext(t)

			err := httpserver.RespondJSON(c, tt.code, tt.data)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
		})
	}
}

func TestRespondOK(t *testing.T) {
	c, rec := newResponseContext(t)

	err := httpserver.RespondOK(c, map[string]int{"count": 42})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"count":42}}`, rec.Body.String())
}

func TestRespondCreated(t *testing.T) {
	c, rec := newResponseContext(t)

	err := httpserver.RespondCreated(c, map[string]string{"id": "abc"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":"abc"}}`, rec.Body.String())
}

func TestRespondNoContent(t *testing.T) {
	c, rec := newResponseContext(t)

	err := httpserver.RespondNoContent(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRespondError_DomainErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"not found", errs.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"already exists", errs.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{"invalid input", errs.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{"unauthorized", errs.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", errs.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"invalid state", errs.ErrInvalidState, http.StatusUnprocessableEntity, "INVALID_STATE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newResponseContext(t)

			err := httpserver.RespondError(c, tt.err)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedCode)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestRespondError_WrappedDomainError(t *testing.T) {
	c, rec := newResponseContext(t)

	wrapped := errors.Join(errors.New("channel lookup"), errs.ErrNotFound)
	err := httpserver.RespondError(c, wrapped)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type statusError struct{}

func (statusError) Error() string       { return "teapot" }
func (statusError) HTTPStatus() int     { return http.StatusTeapot }
func (statusError) HTTPCode() string    { return "TEAPOT" }
func (statusError) HTTPMessage() string { return "I'm a teapot" }

func TestRespondError_HTTPErrorInterface(t *testing.T) {
	c, rec := newResponseContext(t)

	err := httpserver.RespondError(c, statusError{})

	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, rec.Body.String(), "TEAPOT")
}

func TestRespondErrorWithCode(t *testing.T) {
	c, rec := newResponseContext(t)

	err := httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"error":{"code":"VALIDATION_ERROR","message":"name is required"}}`,
		rec.Body.String())
}
