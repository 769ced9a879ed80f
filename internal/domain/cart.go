package domain

import (
	"strings"
	"time"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeDelivery OrderType = "DELIVERY"
	OrderTypePickup   OrderType = "PICKUP"

	// DefaultOrderType is what a new or freshly reset cart starts with.
	DefaultOrderType = OrderTypeDelivery

	MinLineQuantity       = 1
	MaxLineQuantity       = 20
	MaxInstructionsLength = 280
)

// OrderTypes lists the accepted order types in display order.
var OrderTypes = []OrderType{OrderTypeDelivery, OrderTypePickup, OrderTypeDineIn}

func ParseOrderType(raw string) (OrderType, bool) {
	switch OrderType(strings.ToUpper(strings.TrimSpace(raw))) {
	case OrderTypeDineIn:
		return OrderTypeDineIn, true
	case OrderTypeDelivery:
		return OrderTypeDelivery, true
	case OrderTypePickup:
		return OrderTypePickup, true
	}
	return "", false
}

func (t OrderType) String() string {
	return string(t)
}

type Address struct {
	Line1        string `bson:"line1" json:"line1"`
	Line2        string `bson:"line2,omitempty" json:"line2,omitempty"`
	City         string `bson:"city" json:"city"`
	PostalCode   string `bson:"postal_code,omitempty" json:"postalCode,omitempty"`
	Instructions string `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

// Deliverable reports whether the address carries the fields a courier needs.
func (a *Address) Deliverable() bool {
	return a != nil && strings.TrimSpace(a.Line1) != "" && strings.TrimSpace(a.City) != ""
}

func (a *Address) Equal(b *Address) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (a *Address) Clone() *Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// LineSnapshot keeps the last strictly validated pricing of a line. It is only
// shown when the catalog item can no longer be resolved.
type LineSnapshot struct {
	ItemName      string  `bson:"item_name" json:"itemName"`
	BasePrice     float64 `bson:"base_price" json:"basePrice"`
	ModifierTotal float64 `bson:"modifier_total" json:"modifierTotal"`
	UnitPrice     float64 `bson:"unit_price" json:"unitPrice"`
}

type CartLine struct {
	ID                  string       `bson:"id" json:"id"`
	ItemID              string       `bson:"item_id" json:"itemId"`
	Quantity            int          `bson:"quantity" json:"quantity"`
	SelectedOptionIDs   []string     `bson:"selected_option_ids" json:"selectedOptionIds"`
	SpecialInstructions string       `bson:"special_instructions" json:"specialInstructions"`
	Snapshot            LineSnapshot `bson:"snapshot" json:"snapshot"`
}

// SameConfiguration reports whether two lines describe the same logical line.
// Both sides are expected to be normalized already.
func (l CartLine) SameConfiguration(itemID, instructions string, optionIDs []string) bool {
	if l.ItemID != itemID || l.SpecialInstructions != instructions {
		return false
	}
	if len(l.SelectedOptionIDs) != len(optionIDs) {
		return false
	}
	for i := range optionIDs {
		if l.SelectedOptionIDs[i] != optionIDs[i] {
			return false
		}
	}
	return true
}

type Cart struct {
	OwnerKey        string     `bson:"owner_key" json:"ownerKey"`
	OrderType       OrderType  `bson:"order_type" json:"orderType"`
	Lines           []CartLine `bson:"lines" json:"lines"`
	DeliveryAddress *Address   `bson:"delivery_address,omitempty" json:"deliveryAddress,omitempty"`
	LineSeq         int64      `bson:"line_seq" json:"lineSeq"`
	CreatedAt       time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `bson:"updated_at" json:"updatedAt"`
}

func NewCart(ownerKey string, now time.Time) *Cart {
	return &Cart{
		OwnerKey:  ownerKey,
		OrderType: DefaultOrderType,
		Lines:     []CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers can mutate it without exposing
// intermediate state through a shared pointer.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.DeliveryAddress = c.DeliveryAddress.Clone()
	out.Lines = make([]CartLine, len(c.Lines))
	for i, line := range c.Lines {
		line.SelectedOptionIDs = append([]string{}, line.SelectedOptionIDs...)
		out.Lines[i] = line
	}
	return &out
}

func (c *Cart) FindLine(id string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

// Reset empties the cart after an order has been placed from it.
func (c *Cart) Reset() {
	c.Lines = []CartLine{}
	c.OrderType = DefaultOrderType
	c.DeliveryAddress = nil
}
