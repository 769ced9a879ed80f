package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/food_cart/internal/catalog"
	"github.com/fjod/food_cart/internal/command"
	"github.com/fjod/food_cart/internal/domain"
	"github.com/fjod/food_cart/internal/orders"
	"github.com/fjod/food_cart/internal/repository"
	"github.com/stretchr/testify/require"
)

const owner = "user:u1"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// brokenCatalog simulates a catalog outage.
type brokenCatalog struct{}

func (brokenCatalog) Resolve(context.Context, string) (*domain.CatalogItem, error) {
	return nil, errors.New("database is locked")
}

// switchableCatalog forwards to a catalog until it is broken.
type switchableCatalog struct {
	catalog.Resolver
	broken bool
}

func (s *switchableCatalog) Resolve(ctx context.Context, itemID string) (*domain.CatalogItem, error) {
	if s.broken {
		return brokenCatalog{}.Resolve(ctx, itemID)
	}
	return s.Resolver.Resolve(ctx, itemID)
}

func margherita() *domain.CatalogItem {
	return &domain.CatalogItem{
		ID: "margherita", CategoryID: "pizzas", Name: "Margherita", BasePrice: 14.50, IsActive: true,
		ModifierGroups: []domain.ModifierGroup{
			{ID: "size", Name: "Size", IsRequired: true, MinSelect: 1, MaxSelect: 1, Options: []domain.ModifierOption{
				{ID: "size-regular", Name: "Regular", PriceDelta: 0, IsActive: true},
				{ID: "size-large", Name: "Large", PriceDelta: 2.00, IsActive: true},
			}},
			{ID: "extras", Name: "Extras", MinSelect: 0, MaxSelect: 2, Options: []domain.ModifierOption{
				{ID: "extra-cheese", Name: "Extra cheese", PriceDelta: 1.50, IsActive: true},
				{ID: "olives", Name: "Olives", PriceDelta: 0.75, IsActive: true},
				{ID: "truffle-oil", Name: "Truffle oil", PriceDelta: 3.00, IsActive: false},
			}},
		},
	}
}

func garlicBread() *domain.CatalogItem {
	return &domain.CatalogItem{ID: "garlic-bread", CategoryID: "sides", Name: "Garlic Bread", BasePrice: 5.00, IsActive: true,
		ModifierGroups: []domain.ModifierGroup{}}
}

func retiredBurger() *domain.CatalogItem {
	return &domain.CatalogItem{ID: "retired-burger", CategoryID: "sides", Name: "Burger", BasePrice: 12.00, IsActive: false,
		ModifierGroups: []domain.ModifierGroup{}}
}

type fixture struct {
	svc     *CartService
	catalog *catalog.StaticCatalog
	gate    *switchableCatalog
	repo    *repository.MemoryRepository
	orders  *orders.MemoryStore
	clock   *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog: catalog.NewStaticCatalog(margherita(), garlicBread(), retiredBurger()),
		repo:    repository.NewMemoryRepository(0),
		orders:  orders.NewMemoryStore(),
		clock:   newFakeClock(),
	}
	t.Cleanup(func() { f.repo.Close() })
	f.gate = &switchableCatalog{Resolver: f.catalog}
	f.svc = NewCartService(f.repo, f.gate, f.orders, WithClock(f.clock))
	return f
}

func (f *fixture) add(t *testing.T, itemID string, quantity int, options ...string) domain.CartSnapshot {
	t.Helper()
	snap, err := f.svc.AddItem(context.Background(), owner, command.AddItem{
		ItemID: itemID, Quantity: quantity, OptionIDs: options,
	})
	require.NoError(t, err)
	return snap
}

func (f *fixture) stored(t *testing.T) *domain.Cart {
	t.Helper()
	cart, err := f.repo.Get(context.Background(), owner)
	require.NoError(t, err)
	return cart
}

func ptr[T any](v T) *T {
	return &v
}

func verifiedUser() *domain.User {
	return &domain.User{ID: "u1", Email: "u1@example.com", PhoneVerified: true,
		AddressLine1: "1 Main St", AddressCity: "Springfield"}
}

func assertCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, code, derr.Code, derr.Message)
}
