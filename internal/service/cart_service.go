// Package service holds the cart and checkout engine: every cart read is
// re-priced from the live catalog and every write is strictly validated.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/food_cart/internal/catalog"
	"github.com/fjod/food_cart/internal/command"
	"github.com/fjod/food_cart/internal/domain"
	"github.com/fjod/food_cart/internal/orders"
	"github.com/fjod/food_cart/internal/pricing"
	"github.com/fjod/food_cart/internal/repository"
	"go.uber.org/zap"
)

type CartService struct {
	repo       repository.CartRepository
	catalog    catalog.Resolver
	orders     orders.Store
	calculator *pricing.SummaryCalculator
	seq        orders.Sequence
	clock      Clock
	log        *zap.Logger
	locks      ownerLocks
}

type Option func(*CartService)

func WithClock(clock Clock) Option {
	return func(s *CartService) { s.clock = clock }
}

func WithSequence(seq orders.Sequence) Option {
	return func(s *CartService) { s.seq = seq }
}

func WithRules(rules pricing.Rules) Option {
	return func(s *CartService) { s.calculator = pricing.NewSummaryCalculator(rules) }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *CartService) { s.log = log }
}

func NewCartService(repo repository.CartRepository, resolver catalog.Resolver, store orders.Store, opts ...Option) *CartService {
	s := &CartService{
		repo:       repo,
		catalog:    resolver,
		orders:     store,
		calculator: pricing.NewSummaryCalculator(pricing.DefaultRules()),
		seq:        orders.NewCounterSequence(orders.FirstOrderNumber),
		clock:      SystemClock{},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CartService) Rules() pricing.Rules {
	return s.calculator.Rules()
}

// load returns the owner's cart, creating an unsaved one when there is none.
func (s *CartService) load(ctx context.Context, ownerKey string) (*domain.Cart, bool, error) {
	cart, err := s.repo.Get(ctx, ownerKey)
	if errors.Is(err, repository.ErrCartNotFound) {
		return domain.NewCart(ownerKey, s.clock.Now().Truncate(time.Millisecond)), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, false, nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	if err := s.repo.Put(ctx, cart); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *CartService) touch(cart *domain.Cart) {
	cart.UpdatedAt = nextStamp(s.clock, cart.UpdatedAt)
}

// GetSnapshot returns the priced view of the owner's cart. A first visit
// creates and stores an empty cart so later reads see the same timestamps.
func (s *CartService) GetSnapshot(ctx context.Context, ownerKey string) (domain.CartSnapshot, error) {
	unlock := s.locks.lock(ownerKey)
	defer unlock()

	cart, created, err := s.load(ctx, ownerKey)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	if created {
		if err := s.save(ctx, cart); err != nil {
			return domain.CartSnapshot{}, err
		}
	}
	return s.snapshot(ctx, cart)
}

func (s *CartService) snapshot(ctx context.Context, cart *domain.Cart) (domain.CartSnapshot, error) {
	snap := domain.CartSnapshot{
		OrderType:       cart.OrderType,
		Lines:           make([]domain.PricedLine, 0, len(cart.Lines)),
		DeliveryAddress: cart.DeliveryAddress.Clone(),
		CreatedAt:       cart.CreatedAt,
		UpdatedAt:       cart.UpdatedAt,
	}
	totals := make([]float64, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		priced, err := s.priceForDisplay(ctx, line)
		if err != nil {
			return domain.CartSnapshot{}, err
		}
		snap.Lines = append(snap.Lines, priced)
		snap.ItemCount += priced.Quantity
		totals = append(totals, priced.LineTotal)
		if priced.Degraded() {
			snap.HasValidationIssues = true
		}
	}
	snap.Subtotal = pricing.Sum(totals...)
	return snap, nil
}

func (s *CartService) UpdateCart(ctx context.Context, ownerKey string, cmd command.UpdateCart) (domain.CartSnapshot, error) {
	unlock := s.locks.lock(ownerKey)
	defer unlock()

	cart, _, err := s.load(ctx, ownerKey)
	if err != nil {
		return domain.CartSnapshot{}, err
	}

	if cmd.OrderType != nil {
		cart.OrderType = *cmd.OrderType
	}
	s.touch(cart)
	if err := s.save(ctx, cart); err != nil {
		return domain.CartSnapshot{}, err
	}
	return s.snapshot(ctx, cart)
}

// AddItem validates the selection against the catalog and either merges it
// into the first line with the same configuration or appends a new line.
func (s *CartService) AddItem(ctx context.Context, ownerKey string, cmd command.AddItem) (domain.CartSnapshot, error) {
	unlock := s.locks.lock(ownerKey)
	defer unlock()

	cart, _, err := s.load(ctx, ownerKey)
	if err != nil {
		return domain.CartSnapshot{}, err
	}

	item, sel, err := s.strictSelection(ctx, cmd.ItemID, cmd.ItemID, cmd.OptionIDs)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	snapshot := lineSnapshot(item, sel)

	merged := false
	for i := range cart.Lines {
		line := &cart.Lines[i]
		if !line.SameConfiguration(item.ID, cmd.Instructions, sel.OptionIDs) {
			continue
		}
		quantity := line.Quantity + cmd.Quantity
		if quantity > domain.MaxLineQuantity {
			return domain.CartSnapshot{}, quantityCapExceeded(item.Name)
		}
		line.Quantity = quantity
		line.Snapshot = snapshot
		merged = true
		break
	}
	if !merged {
		cart.LineSeq++
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:                  fmt.Sprintf("ln-%d", cart.LineSeq),
			ItemID:              item.ID,
			Quantity:            cmd.Quantity,
			SelectedOptionIDs:   sel.OptionIDs,
			SpecialInstructions: cmd.Instructions,
			Snapshot:            snapshot,
		})
	}

	s.touch(cart)
	if err := s.save(ctx, cart); err != nil {
		return domain.CartSnapshot{}, err
	}
	s.log.Info("cart item added",
		zap.String("owner_key", ownerKey),
		zap.String("item_id", item.ID),
		zap.Int("quantity", cmd.Quantity),
		zap.Bool("merged", merged))
	return s.snapshot(ctx, cart)
}

// UpdateCartItem applies a partial patch to one line and re-validates it. A
// line that ends up identical to another line is folded into that line.
func (s *CartService) UpdateCartItem(ctx context.Context, ownerKey, lineID string, cmd command.UpdateItem) (domain.CartSnapshot, error) {
	unlock := s.locks.lock(ownerKey)
	defer unlock()

	cart, _, err := s.load(ctx, ownerKey)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	idx := cart.FindLine(lineID)
	if idx < 0 {
		return domain.CartSnapshot{}, cartItemNotFound(lineID)
	}

	line := cart.Lines[idx]
	if cmd.Quantity != nil {
		line.Quantity = *cmd.Quantity
	}
	if cmd.SetOptions {
		line.SelectedOptionIDs = cmd.OptionIDs
	}
	if cmd.Instructions != nil {
		line.SpecialInstructions = *cmd.Instructions
	}

	item, sel, err := s.strictSelection(ctx, line.ItemID, line.Snapshot.ItemName, line.SelectedOptionIDs)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	line.SelectedOptionIDs = sel.OptionIDs
	line.Snapshot = lineSnapshot(item, sel)

	target := -1
	for i := range cart.Lines {
		if i != idx && cart.Lines[i].SameConfiguration(line.ItemID, line.SpecialInstructions, line.SelectedOptionIDs) {
			target = i
			break
		}
	}
	if target >= 0 {
		quantity := cart.Lines[target].Quantity + line.Quantity
		if quantity > domain.MaxLineQuantity {
			return domain.CartSnapshot{}, quantityCapExceeded(item.Name)
		}
		cart.Lines[target].Quantity = quantity
		cart.Lines[target].Snapshot = line.Snapshot
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	} else {
		cart.Lines[idx] = line
	}

	s.touch(cart)
	if err := s.save(ctx, cart); err != nil {
		return domain.CartSnapshot{}, err
	}
	return s.snapshot(ctx, cart)
}

func (s *CartService) RemoveCartItem(ctx context.Context, ownerKey, lineID string) (domain.CartSnapshot, error) {
	unlock := s.locks.lock(ownerKey)
	defer unlock()

	cart, _, err := s.load(ctx, ownerKey)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	idx := cart.FindLine(lineID)
	if idx < 0 {
		return domain.CartSnapshot{}, cartItemNotFound(lineID)
	}
	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)

	s.touch(cart)
	if err := s.save(ctx, cart); err != nil {
		return domain.CartSnapshot{}, err
	}
	return s.snapshot(ctx, cart)
}

// Reset drops every cart and, when the order store and sequence support it,
// every order and the order numbering.
func (s *CartService) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset carts: %w", err)
	}
	if r, ok := s.orders.(interface{ Reset() }); ok {
		r.Reset()
	}
	if r, ok := s.seq.(interface{ Reset() }); ok {
		r.Reset()
	}
	return nil
}

func cartItemNotFound(lineID string) error {
	return domain.NewError(domain.CodeCartItemNotFound, http.StatusNotFound, "cart item %q not found", lineID)
}

func quantityCapExceeded(name string) error {
	return domain.NewError(domain.CodeInvalidQuantity, http.StatusBadRequest,
		"%s cannot have more than %d in one line", name, domain.MaxLineQuantity)
}
