package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fjod/food_cart/internal/domain"
	"github.com/fjod/food_cart/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "domain error",
			err:        domain.NewError(domain.CodeMinimumOrderNotMet, http.StatusConflict, "DELIVERY orders require a minimum subtotal of 15.00"),
			wantStatus: http.StatusConflict,
			wantCode:   "MINIMUM_ORDER_NOT_MET",
			wantMsg:    "DELIVERY orders require a minimum subtotal of 15.00",
		},
		{
			name:       "wrapped sentinel",
			err:        fmt.Errorf("%w: breaker open", domain.ErrCatalogUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "CATALOG_UNAVAILABLE",
			wantMsg:    domain.ErrCatalogUnavailable.Message,
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("failed to load cart: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "TIMEOUT",
			wantMsg:    "request timed out",
		},
		{
			name:       "unknown error does not leak",
			err:        errors.New("pq: password authentication failed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), zap.NewNop(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	payload := `{"specialInstructions":"` + strings.Repeat("a", maxRequestBodySize) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))

	var dst map[string]string
	err := decodeJSON(httptest.NewRecorder(), req, &dst)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHandlerWithoutCaller(t *testing.T) {
	h := NewCartHandler(nil, 0, zap.NewNop())

	rec := httptest.NewRecorder()
	h.GetCart(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_REQUIRED", decode[ErrorResponse](t, rec).Code)
}

type failingDirectory struct{}

func (failingDirectory) Lookup(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func TestIdentityMiddleware_DirectoryDown(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
	mw := IdentityMiddleware(failingDirectory{}, zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, "u1")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIdentityMiddleware_SignedInUser(t *testing.T) {
	dir := identity.NewMemoryDirectory(domain.User{ID: "u7", PhoneVerified: true})

	var got identity.Caller
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = getCaller(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, "u7")
	rec := httptest.NewRecorder()
	IdentityMiddleware(dir, zap.NewNop())(next).ServeHTTP(rec, req)

	assert.Equal(t, "user:u7", got.OwnerKey)
	require.NotNil(t, got.User)
	assert.False(t, got.IsGuest())
	assert.Nil(t, guestCookie(rec))
}
