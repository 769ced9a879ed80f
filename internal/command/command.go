// Package command is the single validation boundary between raw request
// payloads and the cart service. Everything it returns is already normalized.
package command

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fjod/food_cart/internal/domain"
	"github.com/fjod/food_cart/internal/modifier"
)

// Raw payloads as they arrive from the transport layer.

type AddItemRequest struct {
	ItemID              string   `json:"itemId"`
	Quantity            *float64 `json:"quantity"`
	SelectedOptionIDs   []string `json:"selectedOptionIds"`
	SpecialInstructions string   `json:"specialInstructions"`
}

type UpdateItemRequest struct {
	Quantity            *float64  `json:"quantity"`
	SelectedOptionIDs   *[]string `json:"selectedOptionIds"`
	SpecialInstructions *string   `json:"specialInstructions"`
}

type UpdateCartRequest struct {
	OrderType *string `json:"orderType"`
}

type AddressRequest struct {
	Line1        string `json:"line1"`
	Line2        string `json:"line2"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	Instructions string `json:"instructions"`
}

type CheckoutRequest struct {
	OrderType       *string         `json:"orderType"`
	PaymentMethod   string          `json:"paymentMethod"`
	DeliveryAddress *AddressRequest `json:"deliveryAddress"`
}

// Normalized commands consumed by the service.

type AddItem struct {
	ItemID       string
	Quantity     int
	OptionIDs    []string
	Instructions string
}

// UpdateItem is a partial patch; nil fields are left untouched.
type UpdateItem struct {
	Quantity     *int
	OptionIDs    []string
	SetOptions   bool
	Instructions *string
}

type UpdateCart struct {
	OrderType *domain.OrderType
}

type Checkout struct {
	OrderType       *domain.OrderType
	PaymentMethod   domain.PaymentMethod
	DeliveryAddress *domain.Address
}

func ParseAddItem(req AddItemRequest) (AddItem, error) {
	itemID := strings.TrimSpace(req.ItemID)
	if itemID == "" {
		return AddItem{}, domain.InvalidInput("itemId is required")
	}
	qty := domain.MinLineQuantity
	if req.Quantity != nil {
		q, err := ParseQuantity(*req.Quantity)
		if err != nil {
			return AddItem{}, err
		}
		qty = q
	}
	instructions, err := NormalizeInstructions(req.SpecialInstructions)
	if err != nil {
		return AddItem{}, err
	}
	return AddItem{
		ItemID:       itemID,
		Quantity:     qty,
		OptionIDs:    NormalizeOptionIDs(req.SelectedOptionIDs),
		Instructions: instructions,
	}, nil
}

func ParseUpdateItem(req UpdateItemRequest) (UpdateItem, error) {
	var cmd UpdateItem
	if req.Quantity != nil {
		q, err := ParseQuantity(*req.Quantity)
		if err != nil {
			return UpdateItem{}, err
		}
		cmd.Quantity = &q
	}
	if req.SelectedOptionIDs != nil {
		cmd.SetOptions = true
		cmd.OptionIDs = NormalizeOptionIDs(*req.SelectedOptionIDs)
	}
	if req.SpecialInstructions != nil {
		instructions, err := NormalizeInstructions(*req.SpecialInstructions)
		if err != nil {
			return UpdateItem{}, err
		}
		cmd.Instructions = &instructions
	}
	if cmd.Quantity == nil && !cmd.SetOptions && cmd.Instructions == nil {
		return UpdateItem{}, domain.InvalidInput("nothing to update")
	}
	return cmd, nil
}

func ParseUpdateCart(req UpdateCartRequest) (UpdateCart, error) {
	if req.OrderType == nil {
		return UpdateCart{}, nil
	}
	ot, ok := domain.ParseOrderType(*req.OrderType)
	if !ok {
		return UpdateCart{}, domain.InvalidInput("orderType must be one of DELIVERY, PICKUP, DINE_IN")
	}
	return UpdateCart{OrderType: &ot}, nil
}

func ParseCheckout(req CheckoutRequest) (Checkout, error) {
	var cmd Checkout
	if req.OrderType != nil {
		ot, ok := domain.ParseOrderType(*req.OrderType)
		if !ok {
			return Checkout{}, domain.InvalidInput("orderType must be one of DELIVERY, PICKUP, DINE_IN")
		}
		cmd.OrderType = &ot
	}
	pm, ok := domain.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return Checkout{}, domain.InvalidInput("paymentMethod must be CARD or CASH")
	}
	cmd.PaymentMethod = pm
	if req.DeliveryAddress != nil {
		cmd.DeliveryAddress = &domain.Address{
			Line1:        collapse(req.DeliveryAddress.Line1),
			Line2:        collapse(req.DeliveryAddress.Line2),
			City:         collapse(req.DeliveryAddress.City),
			PostalCode:   collapse(req.DeliveryAddress.PostalCode),
			Instructions: collapse(req.DeliveryAddress.Instructions),
		}
	}
	return cmd, nil
}

// ParseQuantity accepts whole numbers between 1 and 20.
func ParseQuantity(raw float64) (int, error) {
	if math.IsNaN(raw) || raw != math.Trunc(raw) || raw < domain.MinLineQuantity || raw > domain.MaxLineQuantity {
		return 0, domain.ErrInvalidQuantity
	}
	return int(raw), nil
}

// NormalizeInstructions trims and collapses whitespace, then enforces the
// length limit in characters.
func NormalizeInstructions(raw string) (string, error) {
	s := collapse(raw)
	if utf8.RuneCountInString(s) > domain.MaxInstructionsLength {
		return "", domain.ErrInvalidSpecialInstructions
	}
	return s, nil
}

// NormalizeOptionIDs deduplicates and sorts option ids. Ids are matched
// exactly against the catalog, so they are not trimmed or case-folded.
func NormalizeOptionIDs(raw []string) []string {
	return modifier.Normalize(raw)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
