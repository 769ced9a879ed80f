package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/food_cart/internal/catalog"
	"github.com/fjod/food_cart/internal/domain"
	"go.uber.org/zap"
)

type MenuHandler struct {
	menu    catalog.Menu
	timeout time.Duration
	log     *zap.Logger
}

func NewMenuHandler(menu catalog.Menu, timeout time.Duration, log *zap.Logger) *MenuHandler {
	return &MenuHandler{
		menu:    menu,
		timeout: timeout,
		log:     log,
	}
}

type MenuResponse struct {
	Items []*domain.CatalogItem `json:"items"`
}

// GET /api/v1/menu
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.menu.ListItems(ctx)
	if err != nil {
		h.log.Error("failed to list menu", zap.Error(err))
		handleError(w, r, h.log, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err))
		return
	}
	if items == nil {
		items = []*domain.CatalogItem{}
	}

	respondJSON(w, http.StatusOK, MenuResponse{Items: items})
}
