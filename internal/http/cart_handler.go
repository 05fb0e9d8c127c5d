package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tunafishyummy/kosen-website/internal/domain"
	"github.com/tunafishyummy/kosen-website/internal/pricing"
	"github.com/tunafishyummy/kosen-website/internal/service"
)

// CartHandler maps the page-side cart triggers (add button, row
// plus/minus/remove, clear) onto the cart engine.
type CartHandler struct {
	carts   *service.CartService
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(carts *service.CartService, timeout time.Duration, log *zap.Logger) *CartHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
		log:     log,
	}
}

// AddItemRequestDTO carries the raw attributes the add-to-cart button
// scrapes from a product box. Price arrives as display text and is
// parsed by the engine.
type AddItemRequestDTO struct {
	Title     string `json:"title"`
	PriceText string `json:"price_text"`
	Size      string `json:"size"`
	Img       string `json:"img"`
	Qty       int    `json:"qty"`
}

// CartResponseDTO is the full cart view returned after every call, so
// callers always hold a fresh snapshot.
type CartResponseDTO struct {
	Items        []domain.LineItem `json:"items"`
	Count        int               `json:"count"`
	Total        float64           `json:"total"`
	TotalDisplay string            `json:"total_display"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func cartResponse(cart domain.Cart) CartResponseDTO {
	items := cart
	if items == nil {
		items = domain.Cart{}
	}
	return CartResponseDTO{
		Items:        items,
		Count:        cart.Count(),
		Total:        cart.Total(),
		TotalDisplay: pricing.Format(cart.Total()),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(h.log, w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	cart := h.carts.Snapshot(ctx, sessionID)
	respondJSON(h.log, w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(h.log, w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.log, w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Qty < 0 || req.Qty > 99 {
		respondError(h.log, w, http.StatusBadRequest, "invalid_quantity", "qty must be between 1 and 99")
		return
	}
	if req.Qty == 0 {
		req.Qty = 1 // add button always adds one
	}

	cart, err := h.carts.Add(ctx, sessionID, service.AddInput{
		Title:     req.Title,
		PriceText: req.PriceText,
		Size:      req.Size,
		Img:       req.Img,
		Qty:       req.Qty,
	})
	if err != nil {
		respondError(h.log, w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	respondJSON(h.log, w, http.StatusCreated, cartResponse(cart))
}

func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, h.carts.Increment)
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, h.carts.Decrement)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, h.carts.Remove)
}

// lineOp handles the three row actions keyed by line id. An unknown id
// is not an error: the engine no-ops and the current cart is returned.
func (h *CartHandler) lineOp(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, sessionID, id string) (domain.Cart, error),
) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(h.log, w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(h.log, w, http.StatusBadRequest, "invalid_id", "line id is required")
		return
	}

	cart, err := op(ctx, sessionID, id)
	if err != nil {
		respondError(h.log, w, http.StatusInternalServerError, "internal_error", "cart operation failed")
		return
	}

	respondJSON(h.log, w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(h.log, w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	if err := h.carts.Clear(ctx, sessionID); err != nil {
		respondError(h.log, w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondJSON(h.log, w, http.StatusOK, cartResponse(domain.Cart{}))
}

func respondJSON(log *zap.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to encode response", zap.Error(err))
	}
}

func respondError(log *zap.Logger, w http.ResponseWriter, status int, code, message string) {
	respondJSON(log, w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
