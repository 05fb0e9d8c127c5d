package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV keeps each session's cart under a single key with a TTL that
// is refreshed on every write, so an abandoned session expires on its
// own. This mirrors sessionStorage scoping on the browser side.
type RedisKV struct {
	client     *redis.Client
	sessionTTL time.Duration
}

func NewRedisKV(client *redis.Client, sessionTTL time.Duration) *RedisKV {
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	return &RedisKV{
		client:     client,
		sessionTTL: sessionTTL,
	}
}

func (r *RedisKV) Get(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoCart
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisKV) Set(ctx context.Context, sessionID string, value []byte) error {
	if err := r.client.Set(ctx, sessionKey(sessionID), value, r.sessionTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// sessionKey namespaces cart entries. "kosen_cart" is the storage key
// the original site used; keeping it lets pre-existing carts survive.
func sessionKey(sessionID string) string {
	return fmt.Sprintf("kosen_cart:%s", sessionID)
}
