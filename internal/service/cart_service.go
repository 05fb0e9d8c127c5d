package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tunafishyummy/kosen-website/internal/domain"
	"github.com/tunafishyummy/kosen-website/internal/pricing"
	"github.com/tunafishyummy/kosen-website/internal/store"
)

// AddInput carries the raw attributes an add-to-cart trigger supplies.
// PriceText is the catalog's display label, parsed here; unparseable
// text resolves to a price of 0 rather than failing the add.
type AddInput struct {
	Title     string
	PriceText string
	Size      string
	Img       string
	Qty       int
}

// CartService is the mutation API over the cart. Every operation is a
// full load -> pure transform -> save cycle, which keeps the persisted
// and in-memory forms in step within a single mutation.
type CartService struct {
	store *store.CartStore
	log   *zap.Logger
	sfg   singleflight.Group // Prevents redundant concurrent loads per session
}

func NewCartService(st *store.CartStore, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{store: st, log: log}
}

// Snapshot returns a fresh view of the session's cart.
func (s *CartService) Snapshot(ctx context.Context, sessionID string) domain.Cart {
	v, _, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		return s.store.Load(ctx, sessionID), nil
	})
	return v.(domain.Cart)
}

// Add parses the price label, derives the line identity and merges the
// item into the cart: an existing (title, size) line absorbs the
// quantity, otherwise a new line is appended.
func (s *CartService) Add(ctx context.Context, sessionID string, input AddInput) (domain.Cart, error) {
	item := domain.NewLineItem(
		input.Title,
		pricing.Parse(input.PriceText),
		input.Qty,
		input.Size,
		input.Img,
	)

	cart := s.store.Load(ctx, sessionID).Upsert(item)
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		s.log.Error("add item failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	s.log.Info("item added",
		zap.String("session_id", sessionID),
		zap.String("line_id", item.ID),
		zap.Int("qty", item.Qty))
	return cart, nil
}

// Increment bumps the identified line's quantity by one. An unknown id
// is a silent no-op: nothing is written and no views re-render.
func (s *CartService) Increment(ctx context.Context, sessionID, id string) (domain.Cart, error) {
	cart, ok := s.store.Load(ctx, sessionID).Increment(id)
	if !ok {
		return cart, nil
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		s.log.Error("increment failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return cart, nil
}

// Decrement lowers the identified line's quantity by one, clamping at
// 1. It never removes the line. An unknown id is a silent no-op.
func (s *CartService) Decrement(ctx context.Context, sessionID, id string) (domain.Cart, error) {
	cart, ok := s.store.Load(ctx, sessionID).Decrement(id)
	if !ok {
		return cart, nil
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		s.log.Error("decrement failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return cart, nil
}

// Remove deletes the identified line. An unknown id is a silent no-op.
func (s *CartService) Remove(ctx context.Context, sessionID, id string) (domain.Cart, error) {
	cart, ok := s.store.Load(ctx, sessionID).Remove(id)
	if !ok {
		return cart, nil
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		s.log.Error("remove failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart and erases its persisted state.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		s.log.Error("clear failed", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	s.log.Info("cart cleared", zap.String("session_id", sessionID))
	return nil
}
