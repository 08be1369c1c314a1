package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/infrastructure/auth"
)

func newIssuer(t *testing.T, ttl time.Duration) *auth.JWTIssuer {
	t.Helper()
	issuer, err := auth.NewJWTIssuer(auth.JWTIssuerConfig{
		Secret:   "test-secret",
		Issuer:   "parley",
		TokenTTL: ttl,
	})
	require.NoError(t, err)
	return issuer
}

func newTokenUser(t *testing.T) *user.User {
	t.Helper()
	u, err := user.NewUser("alice", "alice@example.com", "Alice", "Liddell", "hash")
	require.NoError(t, err)
	return u
}

func TestJWTIssuer_IssueAndVerify(t *testing.T) {
	issuer := newIssuer(t, time.Hour)
	u := newTokenUser(t)

	token, ttl, err := issuer.Issue(u)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, time.Hour, ttl)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.Username(), claims.Username)
	assert.False(t, claims.IsSuperUser)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, u.ID(), userID)
}

func TestJWTIssuer_Verify_WrongSecret(t *testing.T) {
	issuer := newIssuer(t, time.Hour)
	token, _, err := issuer.Issue(newTokenUser(t))
	require.NoError(t, err)

	other, err := auth.NewJWTIssuer(auth.JWTIssuerConfig{Secret: "other-secret"})
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTIssuer_Verify_Expired(t *testing.T) {
	issuer := newIssuer(t, time.Nanosecond)
	token, _, err := issuer.Issue(newTokenUser(t))
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTIssuer_Verify_Garbage(t *testing.T) {
	issuer := newIssuer(t, time.Hour)
	_, err := issuer.Verify("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestNewJWTIssuer_RequiresSecret(t *testing.T) {
	_, err := auth.NewJWTIssuer(auth.JWTIssuerConfig{})
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	hasher := auth.NewBcryptHasher(bcryptTestCost)

	hash, err := hasher.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.True(t, hasher.Compare(hash, "secret"))
	assert.False(t, hasher.Compare(hash, "wrong"))
	assert.False(t, hasher.Compare("not-a-hash", "secret"))
}

// minimal cost keeps the test fast
const bcryptTestCost = 4
