package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/infrastructure/auth"
)

// Context keys for authentication data.
type contextKey string

const (
	// ContextKeyUserID is the context key for the authenticated user's ID.
	ContextKeyUserID contextKey = "user_id"

	// ContextKeyUser is the context key for the authenticated user.
	ContextKeyUser contextKey = "user"
)

// Auth errors.
var (
	ErrMissingAuthHeader       = errors.New("missing authorization header")
	ErrInvalidAuthHeader       = errors.New("invalid authorization header format")
	ErrInvalidToken            = errors.New("invalid token")
	ErrUserNotFound            = errors.New("user not found")
	ErrUserDeactivated         = errors.New("user deactivated")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// TokenVerifier verifies access tokens.
type TokenVerifier interface {
	// Verify parses and validates an access token, returning its claims.
	Verify(token string) (*auth.Claims, error)
}

// UserLoader loads the authenticated user.
type UserLoader interface {
	// FindByID finds a user by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Logger is the structured logger for auth events.
	Logger *slog.Logger

	// Verifier validates access tokens.
	Verifier TokenVerifier

	// Users loads the authenticated user. The user is re-read on every
	// request, so deactivation takes effect immediately.
	Users UserLoader

	// SkipPaths are paths that don't require authentication.
	SkipPaths []string
}

// DefaultAuthConfig returns an AuthConfig with sensible defaults.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Logger: slog.Default(),
		SkipPaths: []string{
			"/health", "/ready", "/metrics",
			"/api/v1/auth/login", "/api/v1/auth/refresh",
			"/api/v1/auth/register", "/api/v1/auth/register/complete",
		},
	}
}

// Auth returns an authentication middleware with the given configuration.
func Auth(config AuthConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if _, ok := skipPaths[path]; ok {
				return next(c)
			}

			token, err := extractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return respondAuthError(c, err)
			}

			if config.Verifier == nil {
				config.Logger.Error("token verifier not configured")
				return respondAuthError(c, ErrInvalidToken)
			}

			claims, err := config.Verifier.Verify(token)
			if err != nil {
				config.Logger.Warn("token verification failed",
					slog.String("error", err.Error()),
					slog.String("path", path),
					slog.String("remote_ip", c.RealIP()),
				)
				return respondAuthError(c, ErrInvalidToken)
			}

			userID, err := claims.UserID()
			if err != nil {
				return respondAuthError(c, ErrInvalidToken)
			}

			u, err := config.Users.FindByID(c.Request().Context(), userID)
			if err != nil {
				config.Logger.Warn("authenticated user not found",
					slog.String("user_id", userID.String()),
				)
				return respondAuthError(c, ErrUserNotFound)
			}
			if !u.IsActive() {
				return respondAuthError(c, ErrUserDeactivated)
			}

			c.Set(string(ContextKeyUserID), userID)
			c.Set(string(ContextKeyUser), u)

			return next(c)
		}
	}
}

// extractBearerToken extracts the token from a Bearer authorization header.
func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrInvalidAuthHeader
	}
	return token, nil
}

// respondAuthError sends an authentication error response.
func respondAuthError(c echo.Context, err error) error {
	code := "UNAUTHORIZED"
	message := "Authentication required"
	status := http.StatusUnauthorized

	switch {
	case errors.Is(err, ErrMissingAuthHeader):
		message = "Missing authorization header"
	case errors.Is(err, ErrInvalidAuthHeader):
		message = "Invalid authorization header format"
	case errors.Is(err, ErrInvalidToken):
		message = "Invalid token"
	case errors.Is(err, ErrUserNotFound):
		message = "User not found"
		code = "USER_NOT_FOUND"
	case errors.Is(err, ErrUserDeactivated):
		message = "User account is disabled"
		code = "USER_DEACTIVATED"
	case errors.Is(err, ErrInsufficientPermissions):
		message = "Insufficient permissions"
		code = "FORBIDDEN"
		status = http.StatusForbidden
	}

	return c.JSON(status, map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// GetUserID extracts the authenticated user's ID from the echo context.
func GetUserID(c echo.Context) uuid.UUID {
	if id, ok := c.Get(string(ContextKeyUserID)).(uuid.UUID); ok {
		return id
	}
	return uuid.UUID("")
}

// GetUser extracts the authenticated user from the echo context.
func GetUser(c echo.Context) *user.User {
	if u, ok := c.Get(string(ContextKeyUser)).(*user.User); ok {
		return u
	}
	return nil
}

// IsSuperUser checks if the current user is a super user.
func IsSuperUser(c echo.Context) bool {
	if u := GetUser(c); u != nil {
		return u.IsSuperUser()
	}
	return false
}

// RequireSuperUser returns a middleware that restricts the route to super users.
func RequireSuperUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsSuperUser(c) {
				return respondAuthError(c, ErrInsufficientPermissions)
			}
			return next(c)
		}
	}
}
