package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, claims, err := GenerateJWT(42, "creator")
	require.NoError(t, err)
	require.NotEmpty(t, claims.SessionID)
	require.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt, 5*time.Second)

	parsed, err := ParseJWT(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), parsed.UserID)
	require.Equal(t, "creator", parsed.Username)
	require.Equal(t, claims.SessionID, parsed.SessionID)
	require.Equal(t, claims.ExpiresAt.Unix(), parsed.ExpiresAt.Unix())
}

func TestParseJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := foreign.SignedString([]byte("someone-else"))
	require.NoError(t, err)
	_, err = ParseJWT(signed)
	require.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	signed, err = expired.SignedString(jwtSecret)
	require.NoError(t, err)
	_, err = ParseJWT(signed)
	require.Error(t, err)

	_, err = ParseJWT("not-a-token")
	require.Error(t, err)
}
