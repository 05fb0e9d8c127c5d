package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tunafishyummy/kosen-website/internal/domain"
)

// ChangeListener is told whenever a session's persisted cart changes.
// On CartChanged, listeners should re-derive whatever they display from
// a fresh Load rather than from any cached copy. On CartCleared, they
// should release anything held for the session.
type ChangeListener interface {
	CartChanged(ctx context.Context, sessionID string)
	CartCleared(ctx context.Context, sessionID string)
}

// CartStore owns the persisted representation of carts. It is the only
// component allowed to write the persistence medium: every mutation
// elsewhere ends in Save or Clear here.
type CartStore struct {
	kv  SessionKV
	log *zap.Logger

	mu        sync.RWMutex
	listeners []ChangeListener
}

func NewCartStore(kv SessionKV, log *zap.Logger) *CartStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartStore{kv: kv, log: log}
}

// Subscribe registers a listener notified after every write.
func (s *CartStore) Subscribe(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Load reads the session's cart. Missing, corrupt, or unreadable data
// yields an empty cart; a read failure is logged and never propagated,
// so a storage fault can never block the shopper.
func (s *CartStore) Load(ctx context.Context, sessionID string) domain.Cart {
	raw, err := s.kv.Get(ctx, sessionID)
	if errors.Is(err, ErrNoCart) {
		return domain.Cart{}
	}
	if err != nil {
		s.log.Warn("cart read failed, treating as empty",
			zap.String("session_id", sessionID), zap.Error(err))
		return domain.Cart{}
	}

	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		s.log.Warn("discarding corrupt persisted cart",
			zap.String("session_id", sessionID), zap.Error(err))
		return domain.Cart{}
	}
	return cart
}

// Save serializes the full cart, writes it through, then notifies
// listeners. Notification completes before Save returns, so every view
// surface has seen the new state by the time the mutation finishes.
func (s *CartStore) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	if cart == nil {
		cart = domain.Cart{}
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.kv.Set(ctx, sessionID, raw); err != nil {
		return fmt.Errorf("persist cart failed: %w", err)
	}

	for _, l := range s.listenerSnapshot() {
		l.CartChanged(ctx, sessionID)
	}
	return nil
}

// Clear erases the session's persisted cart entirely. Listeners get the
// cleared event rather than a change, so they release per-session state
// instead of re-rendering it.
func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.kv.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart failed: %w", err)
	}

	for _, l := range s.listenerSnapshot() {
		l.CartCleared(ctx, sessionID)
	}
	return nil
}

func (s *CartStore) listenerSnapshot() []ChangeListener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listeners := make([]ChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	return listeners
}
