package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStore tracks live token ids in Redis. Without a client every
// token that verifies is treated as live and logout is a no-op.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Enabled() bool {
	return s != nil && s.rdb != nil
}

// Start registers a session until expiresAt.
func (s *SessionStore) Start(ctx context.Context, sessionID string, userID int64, expiresAt time.Time) error {
	if !s.Enabled() {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}
	return s.rdb.Set(ctx, sessionKeyPrefix+sessionID, strconv.FormatInt(userID, 10), ttl).Err()
}

// Active reports whether sessionID belongs to userID and has not ended.
func (s *SessionStore) Active(ctx context.Context, sessionID string, userID int64) (bool, error) {
	if !s.Enabled() {
		return true, nil
	}
	if sessionID == "" {
		return false, nil
	}
	v, err := s.rdb.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == strconv.FormatInt(userID, 10), nil
}

// End removes the session. Ending an unknown session is not an error.
func (s *SessionStore) End(ctx context.Context, sessionID string) error {
	if !s.Enabled() || sessionID == "" {
		return nil
	}
	return s.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
