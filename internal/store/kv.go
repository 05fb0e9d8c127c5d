package store

import (
	"context"
	"errors"
)

// SessionKV is the session-scoped persistence medium: one serialized
// cart per session id. Implementations tie the entry's lifetime to the
// browsing session (TTL in Redis/Mongo, process lifetime in memory).
// Consumers define this interface, not the backing implementation.
type SessionKV interface {
	Get(ctx context.Context, sessionID string) ([]byte, error)
	Set(ctx context.Context, sessionID string, value []byte) error
	Delete(ctx context.Context, sessionID string) error
}

// ErrNoCart is returned by Get when the session has no persisted cart.
var ErrNoCart = errors.New("no cart for session")
