package repository

import (
	"context"
	"errors"

	"github.com/fjod/food_cart/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository stores whole cart values keyed by owner. Implementations hand
// out and keep private copies: a caller mutating a returned cart changes
// nothing until it calls Put.
type CartRepository interface {
	Get(ctx context.Context, ownerKey string) (*domain.Cart, error)
	Put(ctx context.Context, cart *domain.Cart) error
	Reset(ctx context.Context) error
}

// normalize replaces nil slices that some backends decode for empty arrays.
func normalize(cart *domain.Cart) *domain.Cart {
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	for i := range cart.Lines {
		if cart.Lines[i].SelectedOptionIDs == nil {
			cart.Lines[i].SelectedOptionIDs = []string{}
		}
	}
	return cart
}
