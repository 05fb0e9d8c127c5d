package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// Geocoder resolves coordinates to a display address via the Nominatim
// reverse-geocoding API. It is an external collaborator of the cart
// engine: its result only populates the checkout address field. Every
// lookup has a hard timeout so a stalled upstream can't leave the form
// pending forever.
type Geocoder struct {
	client  *http.Client
	baseURL string
	log     *zap.Logger
}

func NewGeocoder(timeout time.Duration, log *zap.Logger) *Geocoder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Geocoder{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultNominatimURL,
		log:     log,
	}
}

// NewGeocoderWithBaseURL is used by tests and self-hosted Nominatim
// deployments.
func NewGeocoderWithBaseURL(baseURL string, timeout time.Duration, log *zap.Logger) *Geocoder {
	g := NewGeocoder(timeout, log)
	g.baseURL = baseURL
	return g
}

// ReverseGeocode returns a human-readable address for the coordinates.
// On any failure (network, timeout, or no address found) it degrades
// to the raw coordinate text instead of erroring, so the shopper still
// gets something usable in the address field.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	fallback := fmt.Sprintf("Latitude: %v, Longitude: %v", lat, lon)

	endpoint := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%s&lon=%s",
		g.baseURL,
		url.QueryEscape(fmt.Sprintf("%v", lat)),
		url.QueryEscape(fmt.Sprintf("%v", lon)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		g.log.Warn("reverse geocode request build failed", zap.Error(err))
		return fallback
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn("reverse geocode lookup failed", zap.Error(err))
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.log.Warn("reverse geocode lookup failed",
			zap.Int("status", resp.StatusCode))
		return fallback
	}

	var payload struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		g.log.Warn("reverse geocode decode failed", zap.Error(err))
		return fallback
	}
	if payload.DisplayName == "" {
		return fallback
	}
	return payload.DisplayName
}
