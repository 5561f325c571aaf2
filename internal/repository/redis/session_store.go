package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NordCoder/crmdesk/internal/domain/auth"
	goredis "github.com/redis/go-redis/v9"
)

var _ auth.SessionStore = (*SessionStore)(nil)

const refreshKeyPrefix = "refresh_token:"

// SessionStore keeps one refresh token per username under
// refresh_token:<username>. A later Put overwrites the earlier one, so a new
// login ends any other session of the same user.
type SessionStore struct {
	rdb goredis.Cmdable
}

func NewSessionStore(rdb goredis.Cmdable) *SessionStore { return &SessionStore{rdb: rdb} }

func refreshKey(username string) string { return refreshKeyPrefix + username }

func (s *SessionStore) Put(ctx context.Context, username, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("put refresh token: non-positive ttl %s", ttl)
	}
	if err := s.rdb.Set(ctx, refreshKey(username), token, ttl).Err(); err != nil {
		return fmt.Errorf("put refresh token: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, username string) (string, error) {
	v, err := s.rdb.Get(ctx, refreshKey(username)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	return v, nil
}

func (s *SessionStore) Delete(ctx context.Context, username string) error {
	if err := s.rdb.Del(ctx, refreshKey(username)).Err(); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
