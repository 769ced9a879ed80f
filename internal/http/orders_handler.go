package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/food_cart/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderService interface {
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
	log     *zap.Logger
}

func NewOrdersHandler(orders OrderService, timeout time.Duration, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
		log:     log,
	}
}

type OrdersResponse struct {
	Orders []*domain.Order `json:"orders"`
}

func (h *OrdersHandler) signedInUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	caller, ok := getCaller(r.Context())
	if !ok {
		missingCaller(w)
		return nil, false
	}
	if caller.IsGuest() {
		respondError(w, http.StatusUnauthorized, string(domain.CodeAuthRequired), "sign in to view orders")
		return nil, false
	}
	return caller.User, true
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := h.signedInUser(w, r)
	if !ok {
		return
	}

	list, err := h.orders.ListOrders(ctx, user.ID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, OrdersResponse{Orders: list})
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := h.signedInUser(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, user.ID, chi.URLParam(r, "order_id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, PlaceOrderResponse{Order: order})
}
