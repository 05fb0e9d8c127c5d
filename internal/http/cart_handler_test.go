package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tunafishyummy/kosen-website/internal/checkout"
	"github.com/tunafishyummy/kosen-website/internal/service"
	"github.com/tunafishyummy/kosen-website/internal/store"
	"github.com/tunafishyummy/kosen-website/internal/view"
)

func newTestRouter(t *testing.T) chi.Router {
	logger := zap.NewNop()
	cartStore := store.NewCartStore(store.NewMemoryKV(), logger)
	carts := service.NewCartService(cartStore, logger)

	badge := view.NewBadge()
	listing := view.NewListing(nil)
	summary := view.NewSummary(nil)
	notifier := view.NewNotifier(cartStore, logger)
	notifier.Register(badge, listing, summary)
	cartStore.Subscribe(notifier)

	co := checkout.NewCheckout(carts, nil, logger)
	geocoder := checkout.NewGeocoder(time.Second, logger)

	cartHandler := NewCartHandler(carts, 5*time.Second, logger)
	viewHandler := NewViewHandler(notifier, logger, badge, listing, summary)
	checkoutHandler := NewCheckoutHandler(co, geocoder, 5*time.Second, logger)

	r := chi.NewRouter()
	r.Use(SessionMiddleware)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Post("/items/{id}/increment", cartHandler.Increment)
			r.Post("/items/{id}/decrement", cartHandler.Decrement)
			r.Delete("/items/{id}", cartHandler.RemoveItem)
		})
		r.Get("/views/{surface}", viewHandler.GetView)
		r.Post("/checkout", checkoutHandler.PlaceOrder)
	})
	return r
}

func doRequest(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "test-session"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) CartResponseDTO {
	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestGetCart_NewSessionIsEmpty(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeCart(t, w)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, "0.00", resp.TotalDisplay)
}

func TestAddItem_MergesAndReturnsFreshSnapshot(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		Title: "Hoodie", PriceText: "₱1,299.00", Size: "L", Qty: 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		Title: "Hoodie", PriceText: "₱1,299.00", Size: "L", Qty: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeCart(t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Qty)
	assert.Equal(t, 3, resp.Count)
	assert.InDelta(t, 3897.00, resp.Total, 0.001)
	assert.Equal(t, "3,897.00", resp.TotalDisplay)
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		Title: "Hoodie", PriceText: "1299", Size: "L",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeCart(t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Items[0].Qty)
}

func TestAddItem_InvalidBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("not-json"))
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "test-session"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddItem_RejectsOutOfRangeQuantity(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		Title: "Hoodie", PriceText: "1299", Qty: 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLineOps_IncrementDecrementRemove(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		Title: "Hoodie", PriceText: "1299", Size: "L", Qty: 1,
	})
	id := decodeCart(t, w).Items[0].ID

	w = doRequest(t, router, http.MethodPost, "/api/v1/cart/items/"+id+"/increment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeCart(t, w).Items[0].Qty)

	w = doRequest(t, router, http.MethodPost, "/api/v1/cart/items/"+id+"/decrement", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeCart(t, w).Items[0].Qty)

	// Decrement at 1 clamps, the line stays.
	w = doRequest(t, router, http.MethodPost, "/api/v1/cart/items/"+id+"/decrement", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeCart(t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Items[0].Qty)

	w = doRequest(t, router, http.MethodDelete, "/api/v1/cart/items/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, w).Items)
}

func TestLineOps_UnknownIdReturnsCurrentCart(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/cart/items/unknown/increment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, w).Items)
}

func TestClearCart(t *testing.T) {
	router := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		Title: "Hoodie", PriceText: "1299", Size: "L", Qty: 2,
	})

	w := doRequest(t, router, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, w).Items)

	w = doRequest(t, router, http.MethodGet, "/api/v1/cart", nil)
	assert.Equal(t, 0, decodeCart(t, w).Count)
}

func TestViews_BadgeTracksMutations(t *testing.T) {
	router := newTestRouter(t)

	// Fresh session: badge renders on demand and shows zero.
	w := doRequest(t, router, http.MethodGet, "/api/v1/views/badge", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Body.String())

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		Title: "Hoodie", PriceText: "1299", Size: "L", Qty: 3,
	})

	w = doRequest(t, router, http.MethodGet, "/api/v1/views/badge", nil)
	assert.Equal(t, "3", w.Body.String())

	doRequest(t, router, http.MethodDelete, "/api/v1/cart", nil)

	w = doRequest(t, router, http.MethodGet, "/api/v1/views/badge", nil)
	assert.Equal(t, "0", w.Body.String())
}

func TestViews_UnknownSurface(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/views/sidebar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckout_MissingFields(t *testing.T) {
	router := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		Title: "Hoodie", PriceText: "1299", Size: "L", Qty: 1,
	})

	w := doRequest(t, router, http.MethodPost, "/api/v1/checkout", checkout.Order{Name: "Ana"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Equal(t, "missing_fields", errResp.Code)

	// The cart survives a rejected checkout.
	w = doRequest(t, router, http.MethodGet, "/api/v1/cart", nil)
	assert.Len(t, decodeCart(t, w).Items, 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/checkout",
		checkout.Order{Name: "Ana", Address: "123 Main St"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout_Success_ClearsCartAndBadge(t *testing.T) {
	router := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		Title: "Hoodie", PriceText: "₱1,299.00", Size: "L", Qty: 3,
	})

	w := doRequest(t, router, http.MethodPost, "/api/v1/checkout",
		checkout.Order{Name: "Ana", Address: "123 Main St"})
	require.Equal(t, http.StatusOK, w.Code)

	var conf checkout.Confirmation
	require.NoError(t, json.NewDecoder(w.Body).Decode(&conf))
	assert.Contains(t, conf.Message, "Ana")
	assert.Equal(t, "3,897.00", conf.TotalDisplay)

	w = doRequest(t, router, http.MethodGet, "/api/v1/cart", nil)
	assert.Empty(t, decodeCart(t, w).Items)

	w = doRequest(t, router, http.MethodGet, "/api/v1/views/badge", nil)
	assert.Equal(t, "0", w.Body.String())
}

func TestSessionMiddleware_MintsCookieForNewVisitors(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestSessions_AreIsolated(t *testing.T) {
	router := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		Title: "Hoodie", PriceText: "1299", Size: "L", Qty: 1,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "other-session"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, decodeCart(t, w).Items)
}
