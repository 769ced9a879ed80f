// Package catalog is the read-only menu lookup the cart engine depends on.
package catalog

import (
	"context"
	"errors"

	"github.com/fjod/food_cart/internal/domain"
)

var (
	ErrItemNotFound       = errors.New("catalog item not found")
	ErrCategoryNotFound   = errors.New("catalog category not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Resolver returns the current definition of a menu item. Implementations must
// not cache: prices and availability can change between calls.
type Resolver interface {
	Resolve(ctx context.Context, itemID string) (*domain.CatalogItem, error)
}

// Menu lists the items a customer can browse.
type Menu interface {
	ListItems(ctx context.Context) ([]*domain.CatalogItem, error)
}

// IsLookupMiss reports whether err means the item or its category does not exist.
func IsLookupMiss(err error) bool {
	return errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrCategoryNotFound)
}
