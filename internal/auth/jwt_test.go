package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "vicinity", "vicinity", time.Hour, 24*time.Hour)
}

func TestGenerateAndValidate(t *testing.T) {
	a := newTestAuthenticator()

	access, refresh, err := a.GenerateTokens(42, "admin")
	require.NoError(t, err)

	tok, err := a.ValidateAccessToken(access)
	require.NoError(t, err)
	id, err := UserID(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "admin", tok.Claims.(jwt.MapClaims)["role"])

	tok, err = a.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	id, err = UserID(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	a := newTestAuthenticator()
	access, refresh, err := a.GenerateTokens(1, "user")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(refresh)
	assert.Error(t, err)
	_, err = a.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	a := NewJWTAuthenticator("s", "r", "vicinity", "vicinity", -time.Minute, -time.Minute)
	access, _, err := a.GenerateTokens(1, "user")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(access)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestUserID_RejectsBadSubject(t *testing.T) {
	for _, sub := range []any{"42", 0.5, float64(-1), nil} {
		_, err := UserID(&jwt.Token{Claims: jwt.MapClaims{"sub": sub}})
		assert.ErrorIs(t, err, ErrInvalidSubject, "sub %v", sub)
	}
}
