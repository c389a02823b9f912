package utils

import (
	"testing"
	"time"

	"cinema-go/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setJWTConfig(t *testing.T, secret string, hours int) {
	t.Helper()
	config.Set(&config.Config{
		App: config.AppConfig{Name: "cinema-go"},
		JWT: config.JWTConfig{Secret: secret, ExpireHours: hours},
	})
}

func TestGenerateAndParseToken(t *testing.T) {
	setJWTConfig(t, "test-secret", 1)

	token, err := GenerateToken(42)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "cinema-go", claims.Issuer)
}

func TestParseToken_WrongSecret(t *testing.T) {
	setJWTConfig(t, "secret-one", 1)
	token, err := GenerateToken(7)
	require.NoError(t, err)

	setJWTConfig(t, "secret-two", 1)
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	setJWTConfig(t, "test-secret", 1)

	claims := Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseToken_Garbage(t *testing.T) {
	setJWTConfig(t, "test-secret", 1)

	_, err := ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
