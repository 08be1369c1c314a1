package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parley/parley/internal/domain/uuid"
)

// Token store errors.
var (
	ErrTokenNotFound = errors.New("token not found")
)

// TokenStore manages refresh tokens and registration codes in Redis.
type TokenStore struct {
	client    *redis.Client
	keyPrefix string
}

// TokenStoreConfig contains configuration for TokenStore.
type TokenStoreConfig struct {
	Client    *redis.Client
	KeyPrefix string
}

const (
	defaultKeyPrefix = "auth:"

	refreshTokenKeyspace = "refresh_token:"
	otpKeyspace          = "otp:"
)

// NewTokenStore creates a new Redis-based token store.
func NewTokenStore(cfg TokenStoreConfig) *TokenStore {
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}

	return &TokenStore{
		client:    cfg.Client,
		keyPrefix: keyPrefix,
	}
}

// tokenKey generates the Redis key for a user's refresh token.
func (s *TokenStore) tokenKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s%s", s.keyPrefix, refreshTokenKeyspace, userID.String())
}

// otpKey generates the Redis key for a registration code.
func (s *TokenStore) otpKey(email string) string {
	return fmt.Sprintf("%s%s%s", s.keyPrefix, otpKeyspace, email)
}

// StoreRefreshToken stores a refresh token for a user with the given TTL.
func (s *TokenStore) StoreRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
	refreshToken string,
	ttl time.Duration,
) error {
	if userID.IsZero() {
		return errors.New("userID is required")
	}
	if refreshToken == "" {
		return errors.New("refreshToken is required")
	}

	if err := s.client.Set(ctx, s.tokenKey(userID), refreshToken, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken retrieves a stored refresh token for a user.
func (s *TokenStore) GetRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID.IsZero() {
		return "", errors.New("userID is required")
	}

	token, err := s.client.Get(ctx, s.tokenKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to get refresh token: %w", err)
	}
	return token, nil
}

// DeleteRefreshToken removes a user's refresh token (logout).
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, userID uuid.UUID) error {
	if userID.IsZero() {
		return errors.New("userID is required")
	}

	if err := s.client.Del(ctx, s.tokenKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// StoreOTP stores a one-time registration code for an email with TTL.
func (s *TokenStore) StoreOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	if email == "" {
		return errors.New("email is required")
	}
	if code == "" {
		return errors.New("code is required")
	}

	if err := s.client.Set(ctx, s.otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store registration code: %w", err)
	}
	return nil
}

// GetOTP retrieves a stored one-time code.
func (s *TokenStore) GetOTP(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", errors.New("email is required")
	}

	code, err := s.client.Get(ctx, s.otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to get registration code: %w", err)
	}
	return code, nil
}

// DeleteOTP removes a stored one-time code.
func (s *TokenStore) DeleteOTP(ctx context.Context, email string) error {
	if email == "" {
		return errors.New("email is required")
	}

	if err := s.client.Del(ctx, s.otpKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete registration code: %w", err)
	}
	return nil
}
