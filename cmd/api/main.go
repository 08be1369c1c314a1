package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parley/parley/internal/config"
	"github.com/parley/parley/internal/infrastructure/httpserver"
)

const shutdownDrainDelay = 100 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting server",
		slog.String("app", cfg.App.Name),
		slog.String("address", cfg.Server.Address()),
	)

	container, err := NewContainer(cfg, WithLogger(logger))
	if err != nil {
		logger.Error("failed to initialize container", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container.StartHub(ctx)

	if err = container.Bootstrap(ctx); err != nil {
		logger.Error("bootstrap failed", slog.String("error", err.Error()))
		_ = container.Close()
		os.Exit(1)
	}

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	router := setupRoutes(server.Echo(), container)
	if cfg.IsDevelopment() {
		router.PrintRoutes()
	}

	go gracefulShutdown(server, container, cancel, logger)

	if err = server.Start(); err != nil {
		logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// setupLogger builds the application logger from the log configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(cfg.Log.Level),
		AddSource: cfg.IsDevelopment(),
	}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// gracefulShutdown drains in-flight requests and closes container resources
// when a termination signal arrives.
func gracefulShutdown(
	server *httpserver.Server,
	container *Container,
	cancel context.CancelFunc,
	logger *slog.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-quit

	logger.Info("shutting down", slog.String("signal", sig.String()))

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}

	// Stop the hub and let in-flight websocket writes settle.
	cancel()
	time.Sleep(shutdownDrainDelay)

	if err := container.Close(); err != nil {
		logger.Error("failed to close container resources", slog.String("error", err.Error()))
	}
}
