package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/infrastructure/auth"
)

const (
	otpLength = 6
	otpTTL    = 15 * time.Minute

	defaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// AuthServicePasswordHasher defines the interface for password hashing.
// Declared on the consumer side per project guidelines.
type AuthServicePasswordHasher interface {
	// Hash derives a storable hash from a plaintext password.
	Hash(password string) (string, error)

	// Compare reports whether the plaintext password matches the hash.
	Compare(hash, password string) bool
}

// AuthServiceTokenIssuer defines the interface for access token issuance.
// Declared on the consumer side per project guidelines.
type AuthServiceTokenIssuer interface {
	// Issue signs an access token for the user and returns it with its TTL.
	Issue(u *user.User) (token string, expiresIn time.Duration, err error)
}

// AuthServiceTokenStore defines the interface for token and OTP storage.
// Declared on the consumer side per project guidelines.
type AuthServiceTokenStore interface {
	// StoreRefreshToken stores a refresh token with TTL.
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, refreshToken string, ttl time.Duration) error

	// GetRefreshToken retrieves a stored refresh token.
	GetRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// DeleteRefreshToken removes a stored refresh token.
	DeleteRefreshToken(ctx context.Context, userID uuid.UUID) error

	// StoreOTP stores a one-time registration code for an email with TTL.
	StoreOTP(ctx context.Context, email, code string, ttl time.Duration) error

	// GetOTP retrieves a stored one-time code.
	GetOTP(ctx context.Context, email string) (string, error)

	// DeleteOTP removes a stored one-time code.
	DeleteOTP(ctx context.Context, email string) error
}

// AuthServiceMailer defines the interface for outbound mail.
// Declared on the consumer side per project guidelines.
type AuthServiceMailer interface {
	// SendOTP delivers a one-time registration code to the address.
	SendOTP(ctx context.Context, email, code string) error
}

// LoginResult contains tokens issued on successful authentication.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         *user.User
}

// RefreshResult contains tokens issued on refresh.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// AuthService implements password authentication with OTP-verified
// registration and Redis-backed refresh tokens.
type AuthService struct {
	users           user.Repository
	hasher          AuthServicePasswordHasher
	issuer          AuthServiceTokenIssuer
	tokenStore      AuthServiceTokenStore
	mailer          AuthServiceMailer
	refreshTokenTTL time.Duration
	logger          *slog.Logger
}

// AuthServiceConfig contains dependencies for AuthService.
type AuthServiceConfig struct {
	Users      user.Repository
	Hasher     AuthServicePasswordHasher
	Issuer     AuthServiceTokenIssuer
	TokenStore AuthServiceTokenStore
	Mailer     AuthServiceMailer

	// RefreshTokenTTL bounds the lifetime of stored refresh tokens.
	// Defaults to 30 days.
	RefreshTokenTTL time.Duration

	Logger *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTokenTTL
	}

	return &AuthService{
		users:           cfg.Users,
		hasher:          cfg.Hasher,
		issuer:          cfg.Issuer,
		tokenStore:      cfg.TokenStore,
		mailer:          cfg.Mailer,
		refreshTokenTTL: refreshTTL,
		logger:          logger,
	}
}

// Login authenticates a user by username or email and password.
func (s *AuthService) Login(ctx context.Context, loginID, password string) (*LoginResult, error) {
	u, err := s.users.FindByLogin(ctx, strings.ToLower(strings.TrimSpace(loginID)))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Compare(u.PasswordHash(), password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive() {
		return nil, ErrUserInactive
	}

	result, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		slog.String("user_id", u.ID().String()),
		slog.String("username", u.Username()),
	)
	return result, nil
}

// RefreshToken rotates the token pair. The refresh token is single-use:
// a successful refresh replaces the stored token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	userID, ok := parseRefreshToken(refreshToken)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	stored, err := s.tokenStore.GetRefreshToken(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if stored != refreshToken {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive() {
		return nil, ErrUserInactive
	}

	login, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
		ExpiresIn:    login.ExpiresIn,
	}, nil
}

// Logout invalidates the user's refresh token.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.tokenStore.DeleteRefreshToken(ctx, userID); err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			s.logger.Debug("refresh token not found during logout",
				slog.String("user_id", userID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	s.logger.Info("user logged out", slog.String("user_id", userID.String()))
	return nil
}

// BeginRegistration sends a one-time code to the email. The email must not
// belong to an existing user.
func (s *AuthService) BeginRegistration(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.FindByLogin(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, errs.ErrNotFound) {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err = s.tokenStore.StoreOTP(ctx, email, code, otpTTL); err != nil {
		return err
	}
	if err = s.mailer.SendOTP(ctx, email, code); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}

	s.logger.Info("registration code sent", slog.String("email", email))
	return nil
}

// CompleteRegistrationParams carries the data of the final registration step.
type CompleteRegistrationParams struct {
	Email     string
	Code      string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// CompleteRegistration verifies the one-time code and creates the user.
func (s *AuthService) CompleteRegistration(
	ctx context.Context,
	params CompleteRegistrationParams,
) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	stored, err := s.tokenStore.GetOTP(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, err
	}
	if stored != params.Code {
		return nil, ErrInvalidOTP
	}

	if !user.IsValidUsername(params.Username) {
		return nil, ErrInvalidUsername
	}
	if _, err = s.users.FindByUsername(ctx, params.Username, ""); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	u, err := user.NewUser(params.Username, email, params.FirstName, params.LastName, hash)
	if err != nil {
		return nil, err
	}
	if err = s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	if err = s.tokenStore.DeleteOTP(ctx, email); err != nil {
		s.logger.Warn("failed to delete used registration code",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("user registered",
		slog.String("user_id", u.ID().String()),
		slog.String("username", u.Username()),
	)
	return s.issueTokens(ctx, u)
}

// EnsureSuperUser creates the bootstrap super user on first start.
// Does nothing when any super user already exists.
func (s *AuthService) EnsureSuperUser(
	ctx context.Context,
	username, email, password string,
) error {
	exists, err := s.users.ExistsSuperUser(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	u, err := user.NewUser(username, email, "Super", "User", hash)
	if err != nil {
		return err
	}
	u.MarkSuperUser()

	if err = s.users.Save(ctx, u); err != nil {
		// lost the bootstrap race to another instance
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	s.logger.Info("super user created",
		slog.String("user_id", u.ID().String()),
		slog.String("username", u.Username()),
	)
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, u *user.User) (*LoginResult, error) {
	accessToken, expiresIn, err := s.issuer.Issue(u)
	if err != nil {
		return nil, err
	}

	refreshToken := newRefreshToken(u.ID())
	if err = s.tokenStore.StoreRefreshToken(ctx, u.ID(), refreshToken, s.refreshTokenTTL); err != nil {
		// the access token still works, only refresh is degraded
		s.logger.Warn("failed to store refresh token",
			slog.String("user_id", u.ID().String()),
			slog.String("error", err.Error()),
		)
		refreshToken = ""
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(expiresIn.Seconds()),
		User:         u,
	}, nil
}

// newRefreshToken builds an opaque refresh token carrying the user id, so
// refresh does not need to parse the expired access token.
func newRefreshToken(userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", userID.String(), uuid.NewUUID().String())
}

func parseRefreshToken(token string) (uuid.UUID, bool) {
	idPart, _, found := strings.Cut(token, ":")
	if !found {
		return "", false
	}
	id, err := uuid.ParseUUID(idPart)
	if err != nil {
		return "", false
	}
	return id, true
}

func generateOTP() (string, error) {
	digits := make([]byte, otpLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
