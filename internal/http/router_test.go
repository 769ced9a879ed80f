package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/food_cart/internal/catalog"
	"github.com/fjod/food_cart/internal/domain"
	"github.com/fjod/food_cart/internal/identity"
	"github.com/fjod/food_cart/internal/orders"
	"github.com/fjod/food_cart/internal/repository"
	"github.com/fjod/food_cart/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func margherita() *domain.CatalogItem {
	return &domain.CatalogItem{
		ID: "margherita", CategoryID: "pizzas", Name: "Margherita", BasePrice: 14.50, IsActive: true,
		ModifierGroups: []domain.ModifierGroup{
			{ID: "margherita-size", Name: "Size", IsRequired: true, MinSelect: 1, MaxSelect: 1, Options: []domain.ModifierOption{
				{ID: "size-regular", Name: "Regular", PriceDelta: 0, IsActive: true},
				{ID: "size-large", Name: "Large", PriceDelta: 2.00, IsActive: true},
			}},
		},
	}
}

type testServer struct {
	handler http.Handler
	catalog *catalog.StaticCatalog
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	menu := catalog.NewStaticCatalog(margherita())
	repo := repository.NewMemoryRepository(time.Hour)
	t.Cleanup(func() { repo.Close() })

	dir := identity.NewMemoryDirectory(
		domain.User{ID: "u1", Email: "u1@example.com", PhoneVerified: true, AddressLine1: "1 Main St", AddressCity: "Springfield"},
		domain.User{ID: "u2", Email: "u2@example.com", PhoneVerified: false},
	)
	svc := service.NewCartService(repo, menu, orders.NewMemoryStore())

	return &testServer{
		handler: NewRouter(RouterConfig{
			Store:          svc,
			Menu:           menu,
			Directory:      dir,
			RequestTimeout: 5 * time.Second,
		}),
		catalog: menu,
	}
}

type call struct {
	method string
	path   string
	body   interface{}
	userID string
	cookie *http.Cookie
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.userID != "" {
		req.Header.Set(UserIDHeader, c.userID)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func guestCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == GuestCookieName {
			return c
		}
	}
	return nil
}

func addLargeMargherita(t *testing.T, s *testServer, userID string) domain.CartSnapshot {
	t.Helper()
	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", userID: userID, body: map[string]interface{}{
		"itemId":            "margherita",
		"quantity":          2,
		"selectedOptionIds": []string{"size-large"},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.CartSnapshot](t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/health"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func TestGetCart_GuestGetsCookieAndConfig(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/cart"})
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := guestCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, identity.ValidGuestToken(cookie.Value))
	assert.True(t, cookie.HttpOnly)

	resp := decode[CartResponse](t, rec)
	assert.Equal(t, domain.OrderTypeDelivery, resp.OrderType)
	assert.Empty(t, resp.Lines)
	assert.Equal(t, "inclusive", resp.Config.TaxMode)
	assert.Equal(t, 0.085, resp.Config.TaxRate)
	assert.Equal(t, "USD", resp.Config.Currency)
	assert.Equal(t, domain.OrderTypes, resp.Config.OrderTypes)
	assert.Equal(t, 15.0, resp.Config.MinimumOrderTotals[domain.OrderTypeDelivery])
}

func TestGuestCookieKeepsTheSameCart(t *testing.T) {
	s := newTestServer(t)

	first := s.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", body: map[string]interface{}{
		"itemId": "margherita", "selectedOptionIds": []string{"size-regular"},
	}})
	require.Equal(t, http.StatusCreated, first.Code)
	cookie := guestCookie(first)
	require.NotNil(t, cookie)

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/cart", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, guestCookie(rec), "a valid cookie must not be reissued")

	resp := decode[CartResponse](t, rec)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 14.50, resp.Subtotal)
}

func TestMalformedGuestCookieIsReplaced(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/cart", cookie: &http.Cookie{Name: GuestCookieName, Value: "not-a-token"}})

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := guestCookie(rec)
	require.NotNil(t, cookie)
	assert.NotEqual(t, "not-a-token", cookie.Value)
}

func TestUnknownUserIsRejected(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/cart", userID: "ghost"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_REQUIRED", decode[ErrorResponse](t, rec).Code)
}

func TestCartLineLifecycle(t *testing.T) {
	s := newTestServer(t)

	snapshot := addLargeMargherita(t, s, "u1")
	require.Len(t, snapshot.Lines, 1)
	line := snapshot.Lines[0]
	assert.Equal(t, 16.50, line.UnitPrice)
	assert.Equal(t, 33.00, line.LineTotal)
	assert.Equal(t, 33.00, snapshot.Subtotal)

	rec := s.do(t, call{method: http.MethodPatch, path: "/api/v1/cart/items/" + line.ID, userID: "u1", body: map[string]interface{}{
		"quantity": 3,
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snapshot = decode[domain.CartSnapshot](t, rec)
	assert.Equal(t, 49.50, snapshot.Subtotal)
	assert.Equal(t, 3, snapshot.ItemCount)

	rec = s.do(t, call{method: http.MethodDelete, path: "/api/v1/cart/items/" + line.ID, userID: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[domain.CartSnapshot](t, rec).Lines)
}

func TestPatchCartOrderType(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPatch, path: "/api/v1/cart", userID: "u1", body: map[string]string{"orderType": "pickup"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.OrderTypePickup, decode[domain.CartSnapshot](t, rec).OrderType)

	rec = s.do(t, call{method: http.MethodPatch, path: "/api/v1/cart", userID: "u1", body: map[string]string{"orderType": "drone"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode[ErrorResponse](t, rec).Code)
}

func TestAddItem_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "quantity out of range",
			body:       map[string]interface{}{"itemId": "margherita", "quantity": 21, "selectedOptionIds": []string{"size-large"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_QUANTITY",
		},
		{
			name:       "required group missing",
			body:       map[string]interface{}{"itemId": "margherita"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "MODIFIER_RULE_VIOLATION",
		},
		{
			name:       "unknown option",
			body:       map[string]interface{}{"itemId": "margherita", "selectedOptionIds": []string{"size-large", "anchovies"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_MODIFIER_SELECTION",
		},
		{
			name:       "unknown item",
			body:       map[string]interface{}{"itemId": "calzone"},
			wantStatus: http.StatusConflict,
			wantCode:   "ITEM_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", userID: "u1", body: tt.body})
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestAddItem_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{not json"))
	req.Header.Set(UserIDHeader, "u1")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode[ErrorResponse](t, rec).Code)
}

func TestUpdateUnknownLine(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPatch, path: "/api/v1/cart/items/ln-99", userID: "u1", body: map[string]int{"quantity": 2}})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CART_ITEM_NOT_FOUND", decode[ErrorResponse](t, rec).Code)
}

func TestPreviewDoesNotEmptyTheCart(t *testing.T) {
	s := newTestServer(t)
	addLargeMargherita(t, s, "u1")

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/preview", userID: "u1", body: map[string]string{"paymentMethod": "CARD"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	prep := decode[domain.CheckoutPreparation](t, rec)
	assert.Equal(t, domain.OrderTypeDelivery, prep.OrderType)
	require.NotNil(t, prep.DeliveryAddress)
	assert.Equal(t, "1 Main St", prep.DeliveryAddress.Line1)
	assert.Equal(t, 33.00, prep.Summary.Subtotal)
	assert.Equal(t, 3.99, prep.Summary.DeliveryFee)
	assert.Equal(t, 36.99, prep.Summary.Total)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/cart", userID: "u1"})
	assert.Len(t, decode[CartResponse](t, rec).Lines, 1)
}

func TestPreviewEmptyBodyUsesDefaults(t *testing.T) {
	s := newTestServer(t)
	addLargeMargherita(t, s, "u1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/preview", nil)
	req.Header.Set(UserIDHeader, "u1")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.PaymentMethodCard, decode[domain.CheckoutPreparation](t, rec).PaymentMethod)
}

func TestPlaceOrder(t *testing.T) {
	s := newTestServer(t)
	addLargeMargherita(t, s, "u1")

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/place", userID: "u1", body: map[string]string{"paymentMethod": "CASH"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	placed := decode[PlaceOrderResponse](t, rec)
	require.NotNil(t, placed.Order)
	assert.Equal(t, "ORD-2001", placed.Order.ID)
	assert.Equal(t, "u1", placed.Order.UserID)
	assert.Equal(t, domain.PaymentMethodCash, placed.Order.PaymentMethod)
	assert.Equal(t, 36.99, placed.Order.Summary.Total)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/cart", userID: "u1"})
	assert.Empty(t, decode[CartResponse](t, rec).Lines)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/place", userID: "u1", body: map[string]string{"paymentMethod": "CASH"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CART_EMPTY", decode[ErrorResponse](t, rec).Code)
}

func TestPlaceOrder_RequiresVerifiedUser(t *testing.T) {
	s := newTestServer(t)

	guest := s.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", body: map[string]interface{}{
		"itemId": "margherita", "quantity": 2, "selectedOptionIds": []string{"size-large"},
	}})
	require.Equal(t, http.StatusCreated, guest.Code)

	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/place", cookie: guestCookie(guest)})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_REQUIRED", decode[ErrorResponse](t, rec).Code)

	addLargeMargherita(t, s, "u2")
	rec = s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/place", userID: "u2"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "PHONE_NOT_VERIFIED", decode[ErrorResponse](t, rec).Code)
}

func TestOrdersAreVisibleToTheirOwnerOnly(t *testing.T) {
	s := newTestServer(t)
	addLargeMargherita(t, s, "u1")
	rec := s.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/place", userID: "u1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/orders", userID: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[OrdersResponse](t, rec)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "ORD-2001", list.Orders[0].ID)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/orders/ORD-2001", userID: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ORD-2001", decode[PlaceOrderResponse](t, rec).Order.ID)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/orders/ORD-2001", userID: "u2"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", decode[ErrorResponse](t, rec).Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/orders"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMenu(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/menu"})
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[MenuResponse](t, rec).Items
	require.Len(t, items, 1)
	assert.Equal(t, "margherita", items[0].ID)

	s.catalog.SetCategoryActive("pizzas", false)
	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/menu"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[MenuResponse](t, rec).Items)
}

type brokenMenu struct{}

func (brokenMenu) ListItems(context.Context) ([]*domain.CatalogItem, error) {
	return nil, errors.New("disk I/O error")
}

func TestMenu_CatalogDown(t *testing.T) {
	h := NewMenuHandler(brokenMenu{}, time.Second, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "CATALOG_UNAVAILABLE", decode[ErrorResponse](t, rec).Code)
}
