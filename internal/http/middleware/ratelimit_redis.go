package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"membership_webapp/internal/metrics"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RateLimiter implements fixed-window limits with Redis INCR/EXPIRE.
// Without a client, or when Redis errors, requests are let through.
type RateLimiter struct {
	rdb *redis.Client
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

// PerIP limits by client address.
// key format: rl:<scope>:<window_seconds>:<ip>
func (l *RateLimiter) PerIP(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return l.limit(maxRequests, window, func(c *gin.Context) (string, bool) {
		return "rl:" + scope + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP(), true
	})
}

// PerUser limits by the authenticated user and must run after JWT.
// key format: rl:<scope>:<window_seconds>:u<user_id>
func (l *RateLimiter) PerUser(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return l.limit(maxRequests, window, func(c *gin.Context) (string, bool) {
		userID, ok := UserID(c)
		if !ok {
			return "", false
		}
		return "rl:" + scope + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":u" + strconv.FormatInt(userID, 10), true
	})
}

func (l *RateLimiter) limit(maxRequests int, window time.Duration, keyFn func(*gin.Context) (string, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rdb == nil || maxRequests <= 0 {
			c.Next()
			return
		}

		key, ok := keyFn(c)
		if !ok {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		val, err := l.rdb.Incr(ctx, key).Result()
		if err != nil {
			// fail-open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			l.rdb.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			metrics.RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		metrics.RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
