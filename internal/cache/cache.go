package cache

import (
	"context"
	"errors"

	"github.com/fjod/food_cart/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, ownerKey string) (*domain.Cart, error)
	Set(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, ownerKey string) error
	Clear(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
