package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley/parley/internal/config"
	"github.com/parley/parley/internal/infrastructure/auth"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/infrastructure/websocket"
)

// newTestContainer builds a container with handlers wired over nil services.
// Route registration never invokes the services, so this is enough to
// exercise the route tree without MongoDB or Redis.
func newTestContainer(t *testing.T) *Container {
	t.Helper()

	issuer, err := auth.NewJWTIssuer(auth.JWTIssuerConfig{Secret: "test-secret"})
	require.NoError(t, err)

	hub := websocket.NewHub()

	c := &Container{
		Config:      config.DefaultConfig(),
		Logger:      slog.Default(),
		Hub:         hub,
		Events:      websocket.NewEvents(hub),
		TokenIssuer: issuer,
	}
	c.setupHandlers()

	return c
}

func TestSetupRoutes_ReturnsRouter(t *testing.T) {
	c := newTestContainer(t)
	e := echo.New()

	router := setupRoutes(e, c)

	require.NotNil(t, router)
	assert.Same(t, e, router.Echo())
}

func TestSetupRoutes_HealthEndpoint(t *testing.T) {
	c := newTestContainer(t)
	e := echo.New()
	setupRoutes(e, c)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), httpserver.StatusHealthy)
}

func TestSetupRoutes_ReadyEndpoint_NotReady(t *testing.T) {
	c := newTestContainer(t)
	e := echo.New()
	setupRoutes(e, c)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), httpserver.StatusNotReady)
}

func TestSetupRoutes_MetricsEndpoint(t *testing.T) {
	c := newTestContainer(t)
	e := echo.New()
	setupRoutes(e, c)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetupRoutes_RegistersExpectedPaths(t *testing.T) {
	c := newTestContainer(t)
	e := echo.New()
	setupRoutes(e, c)

	paths := make(map[string]bool)
	for _, route := range e.Routes() {
		paths[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/refresh",
		"POST /api/v1/auth/logout",
		"POST /api/v1/channels/group",
		"POST /api/v1/channels/direct",
		"GET /api/v1/channels/my",
		"GET /api/v1/invitations",
		"GET /api/v1/invitations/recipient",
		"GET /ws",
		"GET /health",
		"GET /ready",
		"GET /metrics",
	}
	for _, route := range expected {
		assert.True(t, paths[route], "route %s should be registered", route)
	}
}

func TestSetupRoutes_ProtectedRouteRequiresAuth(t *testing.T) {
	c := newTestContainer(t)
	e := echo.New()
	setupRoutes(e, c)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/my", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
