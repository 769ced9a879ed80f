package domain

import "time"

type Availability string

const (
	AvailabilityActive   Availability = "active"
	AvailabilityInactive Availability = "inactive"
)

type SelectedModifier struct {
	GroupID    string  `json:"groupId"`
	GroupName  string  `json:"groupName"`
	OptionID   string  `json:"optionId"`
	OptionName string  `json:"optionName"`
	PriceDelta float64 `json:"priceDelta"`
}

// PricedLine is a cart line re-derived from the catalog at read time.
type PricedLine struct {
	ID                  string             `json:"id"`
	ItemID              string             `json:"itemId"`
	ItemName            string             `json:"itemName"`
	Quantity            int                `json:"quantity"`
	SelectedOptionIDs   []string           `json:"selectedOptionIds"`
	Modifiers           []SelectedModifier `json:"modifiers"`
	SpecialInstructions string             `json:"specialInstructions"`
	BasePrice           float64            `json:"basePrice"`
	ModifierTotal       float64            `json:"modifierTotal"`
	UnitPrice           float64            `json:"unitPrice"`
	LineTotal           float64            `json:"lineTotal"`
	Availability        Availability       `json:"availability"`
	ValidationIssues    []string           `json:"validationIssues"`
}

func (l PricedLine) Degraded() bool {
	return len(l.ValidationIssues) > 0
}

type CartSnapshot struct {
	OrderType           OrderType    `json:"orderType"`
	ItemCount           int          `json:"itemCount"`
	Subtotal            float64      `json:"subtotal"`
	HasValidationIssues bool         `json:"hasValidationIssues"`
	Lines               []PricedLine `json:"items"`
	DeliveryAddress     *Address     `json:"deliveryAddress"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

type CheckoutSummary struct {
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	TaxableAmount float64 `json:"taxableAmount"`
	TaxRate       float64 `json:"taxRate"`
	TaxIncluded   bool    `json:"taxIncludedInMenuPrices"`
	Tax           float64 `json:"tax"`
	DeliveryFee   float64 `json:"deliveryFee"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency"`
}

type CheckoutPreparation struct {
	OrderType         OrderType       `json:"orderType"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod"`
	DeliveryAddress   *Address        `json:"deliveryAddress"`
	MinimumOrderTotal float64         `json:"minimumOrderTotal"`
	Lines             []PricedLine    `json:"items"`
	Summary           CheckoutSummary `json:"summary"`
}
