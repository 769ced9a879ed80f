package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fjod/food_cart/internal/domain"
)

// StaticCatalog is an in-memory catalog. Items are copied on the way in and on
// the way out, so callers can change a definition with Put between requests.
type StaticCatalog struct {
	mu                 sync.RWMutex
	items              map[string]*domain.CatalogItem
	inactiveCategories map[string]bool
}

func NewStaticCatalog(items ...*domain.CatalogItem) *StaticCatalog {
	c := &StaticCatalog{
		items:              make(map[string]*domain.CatalogItem),
		inactiveCategories: make(map[string]bool),
	}
	for _, item := range items {
		c.Put(item)
	}
	return c
}

func (c *StaticCatalog) Put(item *domain.CatalogItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = cloneItem(item)
}

func (c *StaticCatalog) Remove(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, itemID)
}

func (c *StaticCatalog) SetCategoryActive(categoryID string, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inactiveCategories[categoryID] = !active
}

func (c *StaticCatalog) Resolve(_ context.Context, itemID string) (*domain.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[itemID]
	if !ok {
		return nil, fmt.Errorf("item %q: %w", itemID, ErrItemNotFound)
	}
	if c.inactiveCategories[item.CategoryID] {
		return nil, fmt.Errorf("category %q: %w", item.CategoryID, ErrCategoryNotFound)
	}
	return cloneItem(item), nil
}

func (c *StaticCatalog) ListItems(_ context.Context) ([]*domain.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*domain.CatalogItem, 0, len(c.items))
	for _, item := range c.items {
		if item.IsActive && !c.inactiveCategories[item.CategoryID] {
			out = append(out, cloneItem(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneItem(item *domain.CatalogItem) *domain.CatalogItem {
	out := *item
	out.ModifierGroups = make([]domain.ModifierGroup, len(item.ModifierGroups))
	for i, g := range item.ModifierGroups {
		g.Options = append([]domain.ModifierOption{}, g.Options...)
		out.ModifierGroups[i] = g
	}
	return &out
}
