package httphandler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/service"
)

// AuthHandlerService defines the authentication operations used by AuthHandler.
// Declared on the consumer side per project guidelines.
type AuthHandlerService interface {
	Login(ctx context.Context, loginID, password string) (*service.LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*service.RefreshResult, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	BeginRegistration(ctx context.Context, email string) error
	CompleteRegistration(ctx context.Context, params service.CompleteRegistrationParams) (*service.LoginResult, error)
}

// AuthHandler serves login, token refresh and registration endpoints.
type AuthHandler struct {
	service AuthHandlerService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthHandlerService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// RegisterRoutes registers authentication routes.
func (h *AuthHandler) RegisterRoutes(r *httpserver.Router) {
	public := r.Public()
	public.POST("/auth/login", h.Login)
	public.POST("/auth/refresh", h.Refresh)
	public.POST("/auth/register", h.Register)
	public.POST("/auth/register/complete", h.CompleteRegistration)

	r.Auth().POST("/auth/logout", h.Logout)
}

// LoginRequest carries username-or-email credentials.
type LoginRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int           `json:"expiresIn"`
	User         *UserResponse `json:"user,omitempty"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	result, err := h.service.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, TokenResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		User:         ToUserResponse(result.User),
	})
}

// RefreshRequest carries a refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	result, err := h.service.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, TokenResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

// RegisterRequest starts email-verified registration.
type RegisterRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Register handles POST /api/v1/auth/register. It always responds 200 so the
// endpoint does not reveal whether the email is already taken.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	if err := h.service.BeginRegistration(c.Request().Context(), req.Email); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, map[string]string{"message": "verification code sent"})
}

// CompleteRegistrationRequest finishes registration with the emailed code.
type CompleteRegistrationRequest struct {
	Email     string `json:"email"     validate:"required,email"`
	Code      string `json:"code"      validate:"required"`
	Username  string `json:"username"  validate:"required,min=3,max=50"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName"  validate:"required,max=100"`
	Password  string `json:"password"  validate:"required,min=8,max=128"`
}

// CompleteRegistration handles POST /api/v1/auth/register/complete.
func (h *AuthHandler) CompleteRegistration(c echo.Context) error {
	var req CompleteRegistrationRequest
	if !bindAndValidate(c, &req) {
		return nil
	}

	result, err := h.service.CompleteRegistration(c.Request().Context(), service.CompleteRegistrationParams{
		Email:     req.Email,
		Code:      req.Code,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondCreated(c, TokenResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		User:         ToUserResponse(result.User),
	})
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	if err := h.service.Logout(c.Request().Context(), userID); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondNoContent(c)
}
