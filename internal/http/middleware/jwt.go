package middleware

import (
	"context"
	"net/http"
	"strings"

	"membership_webapp/internal/logger"
	"membership_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxClaims   = "claims"
)

// SessionChecker confirms a verified token still has a live session.
type SessionChecker interface {
	CheckSession(ctx context.Context, claims *service.TokenClaims) (bool, error)
}

// JWT requires "Authorization: Bearer <token>" with a live session.
func JWT(sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing token"})
			return
		}

		claims, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}

		if sessions != nil {
			live, err := sessions.CheckSession(c.Request.Context(), claims)
			if err != nil {
				logger.WithContext(c.Request.Context()).Error("session lookup failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "session lookup failed"})
				return
			}
			if !live {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "session ended"})
				return
			}
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// UserID returns the id JWT stored on the context.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// Username returns the username JWT stored on the context.
func Username(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUsername)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

// Claims returns the verified token claims.
func Claims(c *gin.Context) (*service.TokenClaims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	tc, ok := v.(*service.TokenClaims)
	return tc, ok
}

// OptionalJWT behaves like JWT when a token is sent and lets anonymous
// requests through untouched. An invalid token is still rejected.
func OptionalJWT(sessions SessionChecker) gin.HandlerFunc {
	strict := JWT(sessions)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		strict(c)
	}
}
