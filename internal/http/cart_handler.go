package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/food_cart/internal/command"
	"github.com/fjod/food_cart/internal/domain"
	"github.com/fjod/food_cart/internal/pricing"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CartService interface {
	GetSnapshot(ctx context.Context, ownerKey string) (domain.CartSnapshot, error)
	UpdateCart(ctx context.Context, ownerKey string, cmd command.UpdateCart) (domain.CartSnapshot, error)
	AddItem(ctx context.Context, ownerKey string, cmd command.AddItem) (domain.CartSnapshot, error)
	UpdateCartItem(ctx context.Context, ownerKey, lineID string, cmd command.UpdateItem) (domain.CartSnapshot, error)
	RemoveCartItem(ctx context.Context, ownerKey, lineID string) (domain.CartSnapshot, error)
	Rules() pricing.Rules
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(carts CartService, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
		log:     log,
	}
}

// StoreConfig is the static storefront configuration sent along with the cart.
type StoreConfig struct {
	OrderTypes         []domain.OrderType           `json:"orderTypes"`
	TaxMode            string                       `json:"taxMode"`
	TaxRate            float64                      `json:"taxRate"`
	Currency           string                       `json:"currency"`
	MinimumOrderTotals map[domain.OrderType]float64 `json:"minimumOrderTotals"`
}

type CartResponse struct {
	domain.CartSnapshot
	Config StoreConfig `json:"config"`
}

func storeConfig(rules pricing.Rules) StoreConfig {
	mode := "exclusive"
	if rules.TaxIncluded {
		mode = "inclusive"
	}
	minimums := make(map[domain.OrderType]float64, len(domain.OrderTypes))
	for _, ot := range domain.OrderTypes {
		minimums[ot] = rules.MinimumOrderTotal(ot)
	}
	return StoreConfig{
		OrderTypes:         domain.OrderTypes,
		TaxMode:            mode,
		TaxRate:            rules.TaxRate,
		Currency:           rules.Currency,
		MinimumOrderTotals: minimums,
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	caller, ok := getCaller(r.Context())
	if !ok {
		missingCaller(w)
		return
	}

	snapshot, err := h.carts.GetSnapshot(ctx, caller.OwnerKey)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, CartResponse{
		CartSnapshot: snapshot,
		Config:       storeConfig(h.carts.Rules()),
	})
}

// PATCH /api/v1/cart
func (h *CartHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	caller, ok := getCaller(r.Context())
	if !ok {
		missingCaller(w)
		return
	}

	var req command.UpdateCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	cmd, err := command.ParseUpdateCart(req)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	snapshot, err := h.carts.UpdateCart(ctx, caller.OwnerKey, cmd)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	caller, ok := getCaller(r.Context())
	if !ok {
		missingCaller(w)
		return
	}

	var req command.AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	cmd, err := command.ParseAddItem(req)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	snapshot, err := h.carts.AddItem(ctx, caller.OwnerKey, cmd)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, snapshot)
}

// PATCH /api/v1/cart/items/{line_id}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	caller, ok := getCaller(r.Context())
	if !ok {
		missingCaller(w)
		return
	}

	lineID := chi.URLParam(r, "line_id")

	var req command.UpdateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	cmd, err := command.ParseUpdateItem(req)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	snapshot, err := h.carts.UpdateCartItem(ctx, caller.OwnerKey, lineID, cmd)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// DELETE /api/v1/cart/items/{line_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	caller, ok := getCaller(r.Context())
	if !ok {
		missingCaller(w)
		return
	}

	snapshot, err := h.carts.RemoveCartItem(ctx, caller.OwnerKey, chi.URLParam(r, "line_id"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}
