package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/food_cart/internal/command"
	"github.com/fjod/food_cart/internal/domain"
	"github.com/fjod/food_cart/internal/orders"
	"github.com/fjod/food_cart/internal/pricing"
	"go.uber.org/zap"
)

// prepare runs the checkout pipeline up to the summary. It never mutates cart.
func (s *CartService) prepare(ctx context.Context, cart *domain.Cart, cmd command.Checkout, user *domain.User) (domain.CheckoutPreparation, error) {
	if len(cart.Lines) == 0 {
		return domain.CheckoutPreparation{}, domain.ErrCartEmpty
	}

	orderType := cart.OrderType
	if cmd.OrderType != nil {
		orderType = *cmd.OrderType
	}

	lines := make([]domain.PricedLine, 0, len(cart.Lines))
	totals := make([]float64, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		priced, err := s.priceStrict(ctx, line)
		if err != nil {
			return domain.CheckoutPreparation{}, err
		}
		lines = append(lines, priced)
		totals = append(totals, priced.LineTotal)
	}
	subtotal := pricing.Sum(totals...)

	minimum := s.calculator.Rules().MinimumOrderTotal(orderType)
	if subtotal < minimum {
		return domain.CheckoutPreparation{}, domain.NewError(domain.CodeMinimumOrderNotMet, http.StatusConflict,
			"%s orders require a minimum subtotal of %.2f", orderType, minimum)
	}

	address, err := resolveAddress(orderType, cmd.DeliveryAddress, user, cart.DeliveryAddress)
	if err != nil {
		return domain.CheckoutPreparation{}, err
	}

	return domain.CheckoutPreparation{
		OrderType:         orderType,
		PaymentMethod:     cmd.PaymentMethod,
		DeliveryAddress:   address,
		MinimumOrderTotal: minimum,
		Lines:             lines,
		Summary:           s.calculator.Calculate(orderType, subtotal),
	}, nil
}

// resolveAddress picks the payload address, then the user's saved address,
// then the cart draft. Only delivery orders carry an address.
func resolveAddress(orderType domain.OrderType, payload *domain.Address, user *domain.User, draft *domain.Address) (*domain.Address, error) {
	if orderType != domain.OrderTypeDelivery {
		return nil, nil
	}
	var resolved *domain.Address
	switch {
	case payload != nil && *payload != (domain.Address{}):
		resolved = payload
	case user.SavedAddress() != nil:
		resolved = user.SavedAddress()
	default:
		resolved = draft
	}
	if !resolved.Deliverable() {
		return nil, domain.ErrDeliveryAddressRequired
	}
	return resolved.Clone(), nil
}

// PreviewCheckout prices the cart as it would be placed. Only the chosen order
// type and address are written back to the cart.
func (s *CartService) PreviewCheckout(ctx context.Context, ownerKey string, user *domain.User, cmd command.Checkout) (domain.CheckoutPreparation, error) {
	unlock := s.locks.lock(ownerKey)
	defer unlock()

	cart, _, err := s.load(ctx, ownerKey)
	if err != nil {
		return domain.CheckoutPreparation{}, err
	}

	prep, err := s.prepare(ctx, cart, cmd, user)
	if err != nil {
		return domain.CheckoutPreparation{}, err
	}

	changed := false
	if cart.OrderType != prep.OrderType {
		cart.OrderType = prep.OrderType
		changed = true
	}
	if prep.DeliveryAddress != nil && !cart.DeliveryAddress.Equal(prep.DeliveryAddress) {
		cart.DeliveryAddress = prep.DeliveryAddress.Clone()
		changed = true
	}
	if changed {
		s.touch(cart)
		if err := s.save(ctx, cart); err != nil {
			return domain.CheckoutPreparation{}, err
		}
	}
	return prep, nil
}

// PlaceCheckout turns the cart into an order. The cart is reset only after
// the order has been stored.
func (s *CartService) PlaceCheckout(ctx context.Context, ownerKey string, user *domain.User, cmd command.Checkout) (*domain.Order, error) {
	if user == nil {
		return nil, domain.ErrAuthRequired
	}
	if !user.PhoneVerified {
		return nil, domain.ErrPhoneNotVerified
	}

	unlock := s.locks.lock(ownerKey)
	defer unlock()

	cart, _, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	prep, err := s.prepare(ctx, cart, cmd, user)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:                orders.FormatID(s.seq.Next()),
		UserID:            user.ID,
		Email:             user.Email,
		OrderType:         prep.OrderType,
		PaymentMethod:     prep.PaymentMethod,
		Summary:           prep.Summary,
		MinimumOrderTotal: prep.MinimumOrderTotal,
		DeliveryAddress:   prep.DeliveryAddress,
		Items:             prep.Lines,
		Status:            domain.OrderStatusAccepted,
		CreatedAt:         s.clock.Now().Truncate(time.Millisecond),
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	cart.Reset()
	s.touch(cart)
	if err := s.save(ctx, cart); err != nil {
		// the order exists; a stale cart is the lesser problem
		s.log.Error("failed to reset cart after order",
			zap.String("owner_key", ownerKey),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}

	s.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", user.ID),
		zap.String("order_type", string(order.OrderType)),
		zap.Float64("total", order.Summary.Total))
	return order.Clone(), nil
}

func (s *CartService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	list, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return list, nil
}

// GetOrder returns an order only to the user who placed it.
func (s *CartService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}
