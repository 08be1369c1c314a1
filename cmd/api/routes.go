package main

import (
	"github.com/labstack/echo/v4"

	"github.com/parley/parley/internal/infrastructure/httpserver"
	"github.com/parley/parley/internal/middleware"
)

// setupRoutes builds the HTTP route tree on top of the Echo instance.
func setupRoutes(e *echo.Echo, container *Container) *httpserver.Router {
	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Logger:   container.Logger,
		Verifier: container.TokenIssuer,
		Users:    container.UserRepo,
	})

	routerConfig := httpserver.DefaultRouterConfig()
	routerConfig.Logger = container.Logger
	routerConfig.AuthMiddleware = authMiddleware

	router := httpserver.NewRouter(e, routerConfig)

	if container.Metrics != nil {
		e.Use(container.Metrics.Middleware())
	}

	router.RegisterAll(
		container.AuthHandler,
		container.UserHandler,
		container.ProfileHandler,
		container.ChannelHandler,
		container.InvitationHandler,
		container.MessageHandler,
		container.NoteHandler,
		container.MediaHandler,
	)

	router.RegisterHealthEndpoints(container)
	router.RegisterMetricsEndpoint()

	// The WebSocket endpoint lives outside the API prefix and does its own
	// token verification, since browsers cannot set headers on upgrades.
	container.WSHandler.RegisterRoutes(router.Echo())

	return router
}
