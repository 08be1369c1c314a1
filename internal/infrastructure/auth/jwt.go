package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
)

// JWT errors.
var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the identity embedded in an access token.
type Claims struct {
	Username    string `json:"username"`
	IsSuperUser bool   `json:"is_super_user"`
	jwt.RegisteredClaims
}

// JWTIssuer issues and verifies HS256 access tokens.
type JWTIssuer struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
}

// JWTIssuerConfig contains configuration for JWTIssuer.
type JWTIssuerConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

const defaultTokenTTL = 15 * time.Minute

// NewJWTIssuer creates a new JWTIssuer.
func NewJWTIssuer(cfg JWTIssuerConfig) (*JWTIssuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}

	return &JWTIssuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		tokenTTL: tokenTTL,
	}, nil
}

// Issue signs an access token for the user and returns it with its TTL.
func (j *JWTIssuer) Issue(u *user.User) (string, time.Duration, error) {
	now := time.Now()
	claims := Claims{
		Username:    u.Username(),
		IsSuperUser: u.IsSuperUser(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   u.ID().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
			ID:        uuid.NewUUID().String(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, j.tokenTTL, nil
}

// Verify parses and validates an access token, returning its claims.
func (j *JWTIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("%w: unexpected signing method %s", ErrInvalidToken, t.Header["alg"])
			}
			return j.secret, nil
		},
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserID extracts the subject as a domain id.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.ParseUUID(c.Subject)
}
