package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fjod/food_cart/internal/catalog"
	"github.com/fjod/food_cart/internal/domain"
	"github.com/fjod/food_cart/internal/modifier"
	"github.com/fjod/food_cart/internal/pricing"
	"go.uber.org/zap"
)

const (
	issueItemGone     = "This item is no longer on the menu"
	issueItemInactive = "This item is currently unavailable"
)

func itemUnavailable(name string) error {
	return domain.NewError(domain.CodeItemUnavailable, http.StatusConflict, "%s is not available right now", name)
}

// catalogFailure hides a storage or breaker error behind CATALOG_UNAVAILABLE.
func (s *CartService) catalogFailure(itemID string, err error) error {
	s.log.Error("catalog lookup failed", zap.String("item_id", itemID), zap.Error(err))
	return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
}

// resolveActive returns the catalog item when it can be ordered right now.
func (s *CartService) resolveActive(ctx context.Context, itemID, displayName string) (*domain.CatalogItem, error) {
	item, err := s.catalog.Resolve(ctx, itemID)
	if err != nil {
		if catalog.IsLookupMiss(err) {
			return nil, itemUnavailable(displayName)
		}
		return nil, s.catalogFailure(itemID, err)
	}
	if !item.IsActive {
		return nil, itemUnavailable(item.Name)
	}
	return item, nil
}

// strictSelection resolves the item and validates the options for a write.
func (s *CartService) strictSelection(ctx context.Context, itemID, displayName string, optionIDs []string) (*domain.CatalogItem, modifier.Selection, error) {
	item, err := s.resolveActive(ctx, itemID, displayName)
	if err != nil {
		return nil, modifier.Selection{}, err
	}
	sel, err := modifier.Strict(item, optionIDs)
	if err != nil {
		return nil, modifier.Selection{}, err
	}
	return item, sel, nil
}

func lineSnapshot(item *domain.CatalogItem, sel modifier.Selection) domain.LineSnapshot {
	unit, _ := pricing.LinePrice(item.BasePrice, sel.ModifierTotal, 1)
	return domain.LineSnapshot{
		ItemName:      item.Name,
		BasePrice:     item.BasePrice,
		ModifierTotal: sel.ModifierTotal,
		UnitPrice:     unit,
	}
}

func pricedLine(line domain.CartLine, item *domain.CatalogItem, sel modifier.Selection) domain.PricedLine {
	unit, total := pricing.LinePrice(item.BasePrice, sel.ModifierTotal, line.Quantity)
	return domain.PricedLine{
		ID:                  line.ID,
		ItemID:              line.ItemID,
		ItemName:            item.Name,
		Quantity:            line.Quantity,
		SelectedOptionIDs:   sel.OptionIDs,
		Modifiers:           sel.Modifiers,
		SpecialInstructions: line.SpecialInstructions,
		BasePrice:           item.BasePrice,
		ModifierTotal:       sel.ModifierTotal,
		UnitPrice:           unit,
		LineTotal:           total,
		Availability:        domain.AvailabilityActive,
		ValidationIssues:    []string{},
	}
}

// priceStrict re-derives a line from the catalog for checkout. Any problem
// with the line aborts.
func (s *CartService) priceStrict(ctx context.Context, line domain.CartLine) (domain.PricedLine, error) {
	item, sel, err := s.strictSelection(ctx, line.ItemID, line.Snapshot.ItemName, line.SelectedOptionIDs)
	if err != nil {
		return domain.PricedLine{}, err
	}
	return pricedLine(line, item, sel), nil
}

// priceForDisplay re-derives a line for the cart view. Problems with the line
// degrade it instead of failing; only catalog outages are errors.
func (s *CartService) priceForDisplay(ctx context.Context, line domain.CartLine) (domain.PricedLine, error) {
	item, err := s.catalog.Resolve(ctx, line.ItemID)
	if err != nil {
		if catalog.IsLookupMiss(err) {
			return fromSnapshot(line, issueItemGone), nil
		}
		return domain.PricedLine{}, s.catalogFailure(line.ItemID, err)
	}

	sel := modifier.Lenient(item, line.SelectedOptionIDs)
	priced := pricedLine(line, item, sel)
	if !item.IsActive {
		priced.ValidationIssues = append(priced.ValidationIssues, issueItemInactive)
	}
	priced.ValidationIssues = append(priced.ValidationIssues, sel.Issues()...)
	if priced.Degraded() {
		priced.Availability = domain.AvailabilityInactive
	}
	return priced, nil
}

func fromSnapshot(line domain.CartLine, issue string) domain.PricedLine {
	_, total := pricing.LinePrice(line.Snapshot.UnitPrice, 0, line.Quantity)
	return domain.PricedLine{
		ID:                  line.ID,
		ItemID:              line.ItemID,
		ItemName:            line.Snapshot.ItemName,
		Quantity:            line.Quantity,
		SelectedOptionIDs:   line.SelectedOptionIDs,
		Modifiers:           []domain.SelectedModifier{},
		SpecialInstructions: line.SpecialInstructions,
		BasePrice:           line.Snapshot.BasePrice,
		ModifierTotal:       line.Snapshot.ModifierTotal,
		UnitPrice:           line.Snapshot.UnitPrice,
		LineTotal:           total,
		Availability:        domain.AvailabilityInactive,
		ValidationIssues:    []string{issue},
	}
}
