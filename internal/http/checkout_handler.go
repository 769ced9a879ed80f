package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/food_cart/internal/command"
	"github.com/fjod/food_cart/internal/domain"
	"go.uber.org/zap"
)

type CheckoutService interface {
	PreviewCheckout(ctx context.Context, ownerKey string, user *domain.User, cmd command.Checkout) (domain.CheckoutPreparation, error)
	PlaceCheckout(ctx context.Context, ownerKey string, user *domain.User, cmd command.Checkout) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
	log      *zap.Logger
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
		log:      log,
	}
}

type PlaceOrderResponse struct {
	Order *domain.Order `json:"order"`
}

func (h *CheckoutHandler) parse(w http.ResponseWriter, r *http.Request) (command.Checkout, error) {
	var req command.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return command.Checkout{}, err
	}
	return command.ParseCheckout(req)
}

// POST /api/v1/checkout/preview
func (h *CheckoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	caller, ok := getCaller(r.Context())
	if !ok {
		missingCaller(w)
		return
	}

	cmd, err := h.parse(w, r)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	prep, err := h.checkout.PreviewCheckout(ctx, caller.OwnerKey, caller.User, cmd)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, prep)
}

// POST /api/v1/checkout/place
func (h *CheckoutHandler) Place(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	caller, ok := getCaller(r.Context())
	if !ok {
		missingCaller(w)
		return
	}

	cmd, err := h.parse(w, r)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	order, err := h.checkout.PlaceCheckout(ctx, caller.OwnerKey, caller.User, cmd)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, PlaceOrderResponse{Order: order})
}
