// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/parley/parley/internal/config"
	httphandler "github.com/parley/parley/internal/handler/http"
	wshandler "github.com/parley/parley/internal/handler/websocket"
	"github.com/parley/parley/internal/infrastructure/auth"
	"github.com/parley/parley/internal/infrastructure/httpserver"
	mediastore "github.com/parley/parley/internal/infrastructure/media"
	"github.com/parley/parley/internal/infrastructure/metrics"
	mongodbinfra "github.com/parley/parley/internal/infrastructure/mongodb"
	"github.com/parley/parley/internal/infrastructure/repository/mongodb"
	"github.com/parley/parley/internal/infrastructure/websocket"
	"github.com/parley/parley/internal/service"
)

// Container initialization timeouts.
const (
	containerInitTimeout   = 30 * time.Second
	redisPingTimeout       = 5 * time.Second
	mongoDisconnectTimeout = 10 * time.Second

	bcryptCost = 12

	superUserUsername = "admin"
)

// Container holds all application dependencies and manages their lifecycle.
// It implements httpserver.HealthChecker for unified health endpoint support.
type Container struct {
	// Configuration
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	MongoDB     *mongo.Client
	MongoDBName string
	Redis       *redis.Client
	Hub         *websocket.Hub
	Events      *websocket.Events
	TokenIssuer *auth.JWTIssuer
	TokenStore  *auth.TokenStore
	Hasher      *auth.BcryptHasher
	BlobStore   *mediastore.GridFSStore
	Metrics     *metrics.HTTPMetrics

	// Repositories
	UserRepo       *mongodb.MongoUserRepository
	ProfileRepo    *mongodb.MongoProfileRepository
	ChannelRepo    *mongodb.MongoChannelRepository
	MemberRepo     *mongodb.MongoMemberRepository
	InvitationRepo *mongodb.MongoInvitationRepository
	MessageRepo    *mongodb.MongoMessageRepository
	NoteRepo       *mongodb.MongoNoteRepository
	MediaRepo      *mongodb.MongoMediaRepository

	// Services
	AuthService       *service.AuthService
	UserService       *service.UserService
	ProfileService    *service.ProfileService
	ChannelService    *service.ChannelService
	MemberService     *service.MemberService
	InvitationService *service.InvitationService
	MessageService    *service.MessageService
	NoteService       *service.NoteService
	MediaService      *service.MediaService

	// HTTP Handlers
	AuthHandler       *httphandler.AuthHandler
	UserHandler       *httphandler.UserHandler
	ProfileHandler    *httphandler.ProfileHandler
	ChannelHandler    *httphandler.ChannelHandler
	InvitationHandler *httphandler.InvitationHandler
	MessageHandler    *httphandler.MessageHandler
	NoteHandler       *httphandler.NoteHandler
	MediaHandler      *httphandler.MediaHandler
	WSHandler         *wshandler.Handler
}

// Ensure Container implements httpserver.HealthChecker.
var _ httpserver.HealthChecker = (*Container)(nil)

// ContainerOption configures the Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// NewContainer creates a new dependency injection container.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.setupInfrastructure(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	c.setupRepositories()
	c.setupServices()
	c.setupHandlers()

	if err := c.validateWiring(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("wiring validation failed: %w", err)
	}

	return c, nil
}

// setupInfrastructure initializes MongoDB, Redis, auth components and the hub.
func (c *Container) setupInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), containerInitTimeout)
	defer cancel()

	if err := c.setupMongoDB(ctx); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}

	if err := c.setupRedis(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := c.setupAuth(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	c.Metrics = metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	c.Hub = websocket.NewHub(
		websocket.WithHubLogger(c.Logger),
		websocket.WithHubConnectionGauge(c.Metrics.WebSocketConnections),
	)
	c.Events = websocket.NewEvents(c.Hub, websocket.WithEventsLogger(c.Logger))

	return nil
}

// setupMongoDB initializes the MongoDB client, indexes and the GridFS store.
func (c *Container) setupMongoDB(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(c.Config.MongoDB.URI).
		SetMaxPoolSize(c.Config.MongoDB.MaxPoolSize)

	client, connectErr := mongo.Connect(clientOpts)
	if connectErr != nil {
		return fmt.Errorf("failed to connect: %w", connectErr)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.MongoDB = client
	c.MongoDBName = c.Config.MongoDB.Database

	c.Logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", c.Config.MongoDB.Database),
	)

	db := client.Database(c.Config.MongoDB.Database)

	indexCtx, indexCancel := context.WithTimeout(ctx, c.Config.MongoDB.Timeout)
	defer indexCancel()

	if indexErr := mongodbinfra.CreateAllIndexes(indexCtx, db); indexErr != nil {
		return fmt.Errorf("failed to create indexes: %w", indexErr)
	}

	c.Logger.InfoContext(ctx, "MongoDB indexes created")

	c.BlobStore = mediastore.NewGridFSStore(
		db.GridFSBucket(),
		mediastore.WithGridFSLogger(c.Logger),
	)

	return nil
}

// setupRedis initializes the Redis client.
func (c *Container) setupRedis(ctx context.Context) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
		PoolSize: c.Config.Redis.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := c.Redis.Ping(pingCtx).Err(); pingErr != nil {
		return fmt.Errorf("failed to ping: %w", pingErr)
	}

	c.Logger.InfoContext(ctx, "connected to Redis",
		slog.String("addr", c.Config.Redis.Addr),
	)

	return nil
}

// setupAuth initializes the token issuer, token store and password hasher.
func (c *Container) setupAuth() error {
	issuer, err := auth.NewJWTIssuer(auth.JWTIssuerConfig{
		Secret:   c.Config.Auth.JWTSecret,
		Issuer:   c.Config.Auth.JWTIssuer,
		TokenTTL: c.Config.Auth.AccessTokenTTL,
	})
	if err != nil {
		return err
	}

	c.TokenIssuer = issuer
	c.TokenStore = auth.NewTokenStore(auth.TokenStoreConfig{Client: c.Redis})
	c.Hasher = auth.NewBcryptHasher(bcryptCost)

	return nil
}

// setupRepositories initializes all MongoDB repositories.
func (c *Container) setupRepositories() {
	db := c.MongoDB.Database(c.MongoDBName)

	c.UserRepo = mongodb.NewMongoUserRepository(
		db.Collection(mongodbinfra.CollectionUsers),
		mongodb.WithUserRepoLogger(c.Logger),
	)
	c.ProfileRepo = mongodb.NewMongoProfileRepository(
		db.Collection(mongodbinfra.CollectionProfiles),
		mongodb.WithProfileRepoLogger(c.Logger),
	)
	c.ChannelRepo = mongodb.NewMongoChannelRepository(
		db.Collection(mongodbinfra.CollectionChannels),
		mongodb.WithChannelRepoLogger(c.Logger),
	)
	c.MemberRepo = mongodb.NewMongoMemberRepository(
		db.Collection(mongodbinfra.CollectionMembers),
		mongodb.WithMemberRepoLogger(c.Logger),
	)
	c.InvitationRepo = mongodb.NewMongoInvitationRepository(
		db.Collection(mongodbinfra.CollectionInvitations),
		mongodb.WithInvitationRepoLogger(c.Logger),
	)
	c.MessageRepo = mongodb.NewMongoMessageRepository(
		db.Collection(mongodbinfra.CollectionMessages),
		mongodb.WithMessageRepoLogger(c.Logger),
	)
	c.NoteRepo = mongodb.NewMongoNoteRepository(
		db.Collection(mongodbinfra.CollectionNotes),
		mongodb.WithNoteRepoLogger(c.Logger),
	)
	c.MediaRepo = mongodb.NewMongoMediaRepository(
		db.Collection(mongodbinfra.CollectionMedia),
		mongodb.WithMediaRepoLogger(c.Logger),
	)
}

// setupServices initializes the application services.
func (c *Container) setupServices() {
	c.AuthService = service.NewAuthService(service.AuthServiceConfig{
		Users:      c.UserRepo,
		Hasher:     c.Hasher,
		Issuer:     c.TokenIssuer,
		TokenStore: c.TokenStore,
		Mailer:     service.NewLogMailer(c.Logger),

		RefreshTokenTTL: c.Config.Auth.RefreshTokenTTL,

		Logger: c.Logger,
	})

	c.UserService = service.NewUserService(c.UserRepo, c.ProfileRepo, c.Hasher, c.Logger)
	c.ProfileService = service.NewProfileService(c.ProfileRepo, c.Logger)
	c.ChannelService = service.NewChannelService(c.ChannelRepo, c.MemberRepo, c.MessageRepo, c.UserRepo, c.Logger)
	c.MemberService = service.NewMemberService(c.ChannelRepo, c.MemberRepo, c.UserRepo, c.Logger)
	c.InvitationService = service.NewInvitationService(
		c.InvitationRepo, c.ChannelRepo, c.MemberRepo, c.UserRepo, c.Logger,
	)
	c.MessageService = service.NewMessageService(
		c.MessageRepo, c.MemberRepo, c.ChannelRepo, c.UserRepo, c.MediaRepo, c.Logger,
	)
	c.NoteService = service.NewNoteService(c.NoteRepo)
	c.MediaService = service.NewMediaService(c.MediaRepo, c.BlobStore, c.Logger)
}

// setupHandlers initializes HTTP and WebSocket handlers.
func (c *Container) setupHandlers() {
	c.AuthHandler = httphandler.NewAuthHandler(c.AuthService)
	c.UserHandler = httphandler.NewUserHandler(c.UserService, c.MediaService)
	c.ProfileHandler = httphandler.NewProfileHandler(c.ProfileService)
	c.ChannelHandler = httphandler.NewChannelHandler(c.ChannelService, c.MemberService, c.MediaService)
	c.InvitationHandler = httphandler.NewInvitationHandler(c.InvitationService)
	c.MessageHandler = httphandler.NewMessageHandler(c.MessageService)
	c.NoteHandler = httphandler.NewNoteHandler(c.NoteService)
	c.MediaHandler = httphandler.NewMediaHandler(c.MediaService, c.Config.Media.MaxUploadSize)

	// Write results are pushed to connected clients.
	c.MessageHandler.SetNotifier(c.Events)
	c.InvitationHandler.SetNotifier(c.Events)

	clientConfig := websocket.DefaultClientConfig()
	clientConfig.ReadBufferSize = c.Config.WebSocket.ReadBufferSize
	clientConfig.WriteBufferSize = c.Config.WebSocket.WriteBufferSize
	clientConfig.PingInterval = c.Config.WebSocket.PingInterval
	clientConfig.PongWait = c.Config.WebSocket.PongTimeout

	c.WSHandler = wshandler.NewHandler(c.Hub,
		wshandler.WithTokenVerifier(c.TokenIssuer),
		wshandler.WithHandlerConfig(wshandler.HandlerConfig{
			ReadBufferSize:  c.Config.WebSocket.ReadBufferSize,
			WriteBufferSize: c.Config.WebSocket.WriteBufferSize,
			Logger:          c.Logger,
			ClientConfig:    clientConfig,
		}),
	)
}

// validateWiring ensures all required dependencies are initialized.
func (c *Container) validateWiring() error {
	var errs []error

	if c.MongoDB == nil {
		errs = append(errs, errors.New("mongodb client not initialized"))
	}
	if c.Redis == nil {
		errs = append(errs, errors.New("redis client not initialized"))
	}
	if c.Hub == nil {
		errs = append(errs, errors.New("websocket hub not initialized"))
	}
	if c.TokenIssuer == nil {
		errs = append(errs, errors.New("token issuer not initialized"))
	}
	if c.AuthHandler == nil {
		errs = append(errs, errors.New("auth handler not initialized"))
	}
	if c.WSHandler == nil {
		errs = append(errs, errors.New("websocket handler not initialized"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// StartHub starts the WebSocket hub.
// This should be called before the HTTP server starts accepting requests.
func (c *Container) StartHub(ctx context.Context) {
	go c.Hub.Run(ctx)
	c.Logger.InfoContext(ctx, "websocket hub started")
}

// Bootstrap seeds initial data. Currently it creates the super user when
// auth.super_user_email and auth.super_user_password are configured.
func (c *Container) Bootstrap(ctx context.Context) error {
	email := c.Config.Auth.SuperUserEmail
	password := c.Config.Auth.SuperUserPassword
	if email == "" || password == "" {
		c.Logger.Debug("super user bootstrap skipped, credentials not configured")
		return nil
	}

	return c.AuthService.EnsureSuperUser(ctx, superUserUsername, email, password)
}

// Close gracefully closes all container resources.
// Resources are closed in reverse order of initialization.
func (c *Container) Close() error {
	c.Logger.Info("closing container resources...")

	var errs []error

	if c.Hub != nil {
		c.Hub.Stop()
		c.Logger.Debug("websocket hub stopped")
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		} else {
			c.Logger.Debug("redis connection closed")
		}
	}

	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()

		if err := c.MongoDB.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect: %w", err))
		} else {
			c.Logger.Debug("mongodb connection closed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.Logger.Info("all container resources closed")
	return nil
}

// IsReady implements httpserver.HealthChecker.
func (c *Container) IsReady(ctx context.Context) bool {
	if c.MongoDB == nil {
		return false
	}
	if err := c.MongoDB.Ping(ctx, nil); err != nil {
		c.Logger.WarnContext(ctx, "mongodb health check failed", slog.String("error", err.Error()))
		return false
	}

	if c.Redis == nil {
		return false
	}
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		c.Logger.WarnContext(ctx, "redis health check failed", slog.String("error", err.Error()))
		return false
	}

	if c.Hub == nil || !c.Hub.IsRunning() {
		c.Logger.WarnContext(ctx, "websocket hub is not running")
		return false
	}

	return true
}

// GetHealthStatus implements httpserver.HealthChecker.
func (c *Container) GetHealthStatus(ctx context.Context) []httpserver.ComponentStatus {
	var statuses []httpserver.ComponentStatus

	mongoStatus := httpserver.ComponentStatus{Name: "mongodb", Status: httpserver.StatusHealthy}
	if c.MongoDB == nil {
		mongoStatus.Status = httpserver.StatusUnhealthy
		mongoStatus.Message = "client not initialized"
	} else if err := c.MongoDB.Ping(ctx, nil); err != nil {
		mongoStatus.Status = httpserver.StatusUnhealthy
		mongoStatus.Message = err.Error()
	}
	statuses = append(statuses, mongoStatus)

	redisStatus := httpserver.ComponentStatus{Name: "redis", Status: httpserver.StatusHealthy}
	if c.Redis == nil {
		redisStatus.Status = httpserver.StatusUnhealthy
		redisStatus.Message = "client not initialized"
	} else if err := c.Redis.Ping(ctx).Err(); err != nil {
		redisStatus.Status = httpserver.StatusUnhealthy
		redisStatus.Message = err.Error()
	}
	statuses = append(statuses, redisStatus)

	hubStatus := httpserver.ComponentStatus{Name: "websocket_hub", Status: httpserver.StatusHealthy}
	if c.Hub == nil {
		hubStatus.Status = httpserver.StatusUnhealthy
		hubStatus.Message = "hub not initialized"
	} else if !c.Hub.IsRunning() {
		hubStatus.Status = httpserver.StatusUnhealthy
		hubStatus.Message = "hub not running"
	}
	statuses = append(statuses, hubStatus)

	return statuses
}
