package httphandler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/middleware"
)

// validate is shared across handlers; validator instances cache struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// bindAndValidate decodes the request body into req and runs struct validation.
// On failure it writes the error response and returns false.
func bindAndValidate(c echo.Context, req any) bool {
	if err := c.Bind(req); err != nil {
		_ = httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
		return false
	}

	if err := validate.Struct(req); err != nil {
		_ = httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err))
		return false
	}

	return true
}

// validationMessage formats the first validation failure as a human-readable message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// requireUserID extracts the authenticated user id from the context.
// Writes a 401 response and returns false when the request is not authenticated.
func requireUserID(c echo.Context) (uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID.IsZero() {
		_ = httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return "", false
	}
	return userID, true
}

// pathUUID parses a path parameter as a strict RFC-4122 UUID.
func pathUUID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.ParseUUID(c.Param(name))
	if err != nil {
		_ = httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", fmt.Sprintf("invalid %s", name))
		return "", false
	}
	return id, true
}

// pathID reads a path parameter as an opaque id. Derived ids, such as direct
// channel ids and message ids, are not RFC-4122 UUIDs.
func pathID(c echo.Context, name string) (uuid.UUID, bool) {
	raw := c.Param(name)
	if raw == "" {
		_ = httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_INPUT", fmt.Sprintf("missing %s", name))
		return "", false
	}
	return uuid.UUID(raw), true
}

// queryInt reads an integer query parameter, falling back to def when absent
// or malformed.
func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
