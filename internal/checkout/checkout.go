// Package checkout is the order-placement boundary. It validates the
// buyer's input, reads the cart through the engine, and on success
// clears the cart. It never touches the persistence medium directly.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tunafishyummy/kosen-website/internal/pricing"
	"github.com/tunafishyummy/kosen-website/internal/service"
)

var (
	// ErrMissingFields is a user-input error, surfaced as a blocking
	// notice by the transport layer.
	ErrMissingFields = errors.New("please fill in all required fields")
	ErrEmptyCart     = errors.New("cart is empty")
)

// Order is the buyer's checkout form.
type Order struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Confirmation is returned after a successful placement.
type Confirmation struct {
	Message      string  `json:"message"`
	Total        float64 `json:"total"`
	TotalDisplay string  `json:"total_display"`
	Lines        int     `json:"lines"`
}

type Checkout struct {
	carts *service.CartService
	fmtr  *pricing.Formatter
	log   *zap.Logger
}

// NewCheckout builds the checkout boundary. The formatter renders the
// confirmation total in the configured locale; nil falls back to the
// default locale.
func NewCheckout(carts *service.CartService, fmtr *pricing.Formatter, log *zap.Logger) *Checkout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checkout{carts: carts, fmtr: fmtr, log: log}
}

func (c *Checkout) format(v float64) string {
	if c.fmtr != nil {
		return c.fmtr.Format(v)
	}
	return pricing.Format(v)
}

// PlaceOrder validates the form and the cart, then clears the cart.
// The cart is untouched on any validation failure.
func (c *Checkout) PlaceOrder(ctx context.Context, sessionID string, order Order) (*Confirmation, error) {
	name := strings.TrimSpace(order.Name)
	address := strings.TrimSpace(order.Address)
	if name == "" || address == "" {
		return nil, ErrMissingFields
	}

	cart := c.carts.Snapshot(ctx, sessionID)
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	total := cart.Total()
	if err := c.carts.Clear(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to clear cart after order: %w", err)
	}

	c.log.Info("order placed",
		zap.String("session_id", sessionID),
		zap.Float64("total", total),
		zap.Int("lines", len(cart)))

	return &Confirmation{
		Message:      fmt.Sprintf("Thank you for your purchase, %s! Your order has been placed.", name),
		Total:        total,
		TotalDisplay: c.format(total),
		Lines:        len(cart),
	}, nil
}
