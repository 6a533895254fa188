package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreWithoutRedis(t *testing.T) {
	s := NewSessionStore(nil)
	ctx := context.Background()

	require.False(t, s.Enabled())
	require.NoError(t, s.Start(ctx, "sid", 1, time.Now().Add(time.Hour)))

	live, err := s.Active(ctx, "sid", 1)
	require.NoError(t, err)
	require.True(t, live)

	require.NoError(t, s.End(ctx, "sid"))

	var none *SessionStore
	require.False(t, none.Enabled())
}

// Runs only if REDIS_ADDR env is set.
func TestSessionStoreRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	defer rdb.Close()

	s := NewSessionStore(rdb)
	ctx := context.Background()
	sid := "test-" + uuid.NewString()

	require.NoError(t, s.Start(ctx, sid, 7, time.Now().Add(time.Minute)))

	live, err := s.Active(ctx, sid, 7)
	require.NoError(t, err)
	require.True(t, live)

	live, err = s.Active(ctx, sid, 8)
	require.NoError(t, err)
	require.False(t, live, "session bound to another user")

	require.NoError(t, s.End(ctx, sid))
	live, err = s.Active(ctx, sid, 7)
	require.NoError(t, err)
	require.False(t, live)

	require.ErrorIs(t, s.Start(ctx, sid, 7, time.Now().Add(-time.Second)), ErrSessionExpired)
}
