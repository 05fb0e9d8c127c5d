package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tunafishyummy/kosen-website/internal/checkout"
)

// CheckoutHandler exposes order placement and the address lookup helper.
type CheckoutHandler struct {
	checkout *checkout.Checkout
	geocoder *checkout.Geocoder
	timeout  time.Duration
	log      *zap.Logger
}

func NewCheckoutHandler(co *checkout.Checkout, geo *checkout.Geocoder, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutHandler{
		checkout: co,
		geocoder: geo,
		timeout:  timeout,
		log:      log,
	}
}

type ReverseGeocodeResponseDTO struct {
	Address string `json:"address"`
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(h.log, w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var order checkout.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		respondError(h.log, w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	conf, err := h.checkout.PlaceOrder(ctx, sessionID, order)
	switch {
	case errors.Is(err, checkout.ErrMissingFields):
		respondError(h.log, w, http.StatusBadRequest, "missing_fields", err.Error())
		return
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(h.log, w, http.StatusBadRequest, "empty_cart", err.Error())
		return
	case err != nil:
		respondError(h.log, w, http.StatusInternalServerError, "internal_error", "failed to place order")
		return
	}

	respondJSON(h.log, w, http.StatusOK, conf)
}

func (h *CheckoutHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		respondError(h.log, w, http.StatusBadRequest, "invalid_coordinates", "lat and lon must be numbers")
		return
	}

	address := h.geocoder.ReverseGeocode(ctx, lat, lon)
	respondJSON(h.log, w, http.StatusOK, ReverseGeocodeResponseDTO{Address: address})
}
