package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TokenTTL = 24 * time.Hour

var jwtSecret []byte

func InitJWT(secret string) {
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	jwtSecret = []byte(secret)
}

// TokenClaims is what a session token carries.
type TokenClaims struct {
	UserID    int64
	Username  string
	SessionID string
	ExpiresAt time.Time
}

func GenerateJWT(userID int64, username string) (string, *TokenClaims, error) {
	now := time.Now()
	tc := &TokenClaims{
		UserID:    userID,
		Username:  username,
		SessionID: uuid.NewString(),
		ExpiresAt: now.Add(TokenTTL),
	}

	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"jti":      tc.SessionID,
		"exp":      tc.ExpiresAt.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, tc, nil
}

func ParseJWT(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, errors.New("user_id not found")
	}

	tc := &TokenClaims{UserID: int64(userID)}
	tc.Username, _ = claims["username"].(string)
	tc.SessionID, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}

	return tc, nil
}
