package db

import (
	"context"
	"time"

	"membership_webapp/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when addr is empty or the server does not
// answer, so callers fall back to running without Redis.
func ConnectRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		logger.Warn("REDIS_ADDR not set; rate limiting and server-side sessions disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable; rate limiting and server-side sessions disabled", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("redis connected", "addr", addr)
	return client
}
