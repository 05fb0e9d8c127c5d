// Package view implements the render-synchronization contract: after
// every cart mutation, each mounted surface re-derives its display
// content from a fresh store load. The policy is re-render everything
// on every change; at human-scale cart sizes the recomputation is
// cheaper than any class of stale-view bug.
package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tunafishyummy/kosen-website/internal/domain"
	"github.com/tunafishyummy/kosen-website/internal/store"
)

// Surface is one display of cart-derived information (count badge,
// line-item listing, checkout summary). Render must tolerate any cart
// content; a surface that is not mounted is skipped entirely. Drop
// releases whatever the surface holds for the session, so ended
// sessions do not pile up.
type Surface interface {
	Name() string
	Mounted() bool
	Render(sessionID string, cart domain.Cart) error
	Drop(sessionID string)
}

// Notifier fans a cart change out to every registered surface. Each
// surface gets its own fresh load, never a shared cached copy. A
// failing surface is logged and skipped; rendering can never undo or
// block a mutation.
type Notifier struct {
	store *store.CartStore
	log   *zap.Logger

	mu       sync.RWMutex
	surfaces []Surface
}

func NewNotifier(st *store.CartStore, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{store: st, log: log}
}

// Register adds surfaces to the fan-out. A surface registered
// mid-session gets its initial content through Refresh on first read.
func (n *Notifier) Register(surfaces ...Surface) {
	n.mu.Lock()
	n.surfaces = append(n.surfaces, surfaces...)
	n.mu.Unlock()
}

// CartChanged implements store.ChangeListener.
func (n *Notifier) CartChanged(ctx context.Context, sessionID string) {
	for _, s := range n.snapshot() {
		n.render(ctx, sessionID, s)
	}
}

// CartCleared implements store.ChangeListener. Clearing ends the cart's
// life for the session, so every surface releases its fragment instead
// of re-rendering; the next read re-derives on demand.
func (n *Notifier) CartCleared(_ context.Context, sessionID string) {
	for _, s := range n.snapshot() {
		s.Drop(sessionID)
	}
}

func (n *Notifier) snapshot() []Surface {
	n.mu.RLock()
	defer n.mu.RUnlock()
	surfaces := make([]Surface, len(n.surfaces))
	copy(surfaces, n.surfaces)
	return surfaces
}

// Refresh re-renders one named surface from current state, used when a
// surface is read before any mutation has happened in the session.
func (n *Notifier) Refresh(ctx context.Context, sessionID, name string) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, s := range n.surfaces {
		if s.Name() == name {
			n.render(ctx, sessionID, s)
			return
		}
	}
}

func (n *Notifier) render(ctx context.Context, sessionID string, s Surface) {
	if !s.Mounted() {
		return
	}
	cart := n.store.Load(ctx, sessionID)
	if err := s.Render(sessionID, cart); err != nil {
		n.log.Warn("surface render failed",
			zap.String("surface", s.Name()),
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}
