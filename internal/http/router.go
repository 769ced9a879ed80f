package http

import (
	"net/http"
	"time"

	"github.com/fjod/food_cart/internal/catalog"
	"github.com/fjod/food_cart/internal/identity"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Storefront is everything the HTTP layer needs from the cart engine.
type Storefront interface {
	CartService
	CheckoutService
	OrderService
}

type RouterConfig struct {
	Store          Storefront
	Menu           catalog.Menu
	Directory      identity.Directory
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cartHandler := NewCartHandler(cfg.Store, cfg.RequestTimeout, log)
	checkoutHandler := NewCheckoutHandler(cfg.Store, cfg.RequestTimeout, log)
	ordersHandler := NewOrdersHandler(cfg.Store, cfg.RequestTimeout, log)
	menuHandler := NewMenuHandler(cfg.Menu, cfg.RequestTimeout, log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/menu", menuHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(IdentityMiddleware(cfg.Directory, log))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Patch("/", cartHandler.UpdateCart)
				r.Post("/items", cartHandler.AddItem)
				r.Patch("/items/{line_id}", cartHandler.UpdateItem)
				r.Delete("/items/{line_id}", cartHandler.RemoveItem)
			})
			r.Route("/checkout", func(r chi.Router) {
				r.Post("/preview", checkoutHandler.Preview)
				r.Post("/place", checkoutHandler.Place)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordersHandler.ListOrders)
				r.Get("/{order_id}", ordersHandler.GetOrder)
			})
		})
	})

	return r
}
