package pricing

import (
	"sort"

	"github.com/fjod/food_cart/internal/domain"
	"github.com/shopspring/decimal"
)

type DiscountTier struct {
	Threshold float64
	Amount    float64
}

// Rules is the checkout pricing configuration.
type Rules struct {
	Currency              string
	TaxRate               float64
	TaxIncluded           bool
	DiscountTiers         []DiscountTier
	DeliveryFee           float64
	FreeDeliveryThreshold float64
	Minimums              map[domain.OrderType]float64
}

func DefaultRules() Rules {
	return Rules{
		Currency:    "USD",
		TaxRate:     0.085,
		TaxIncluded: true,
		DiscountTiers: []DiscountTier{
			{Threshold: 60, Amount: 8},
			{Threshold: 40, Amount: 4},
		},
		DeliveryFee:           3.99,
		FreeDeliveryThreshold: 35,
		Minimums: map[domain.OrderType]float64{
			domain.OrderTypeDelivery: 15,
			domain.OrderTypeDineIn:   0,
			domain.OrderTypePickup:   0,
		},
	}
}

// MinimumOrderTotal returns the smallest subtotal accepted for the order type.
func (r Rules) MinimumOrderTotal(orderType domain.OrderType) float64 {
	return r.Minimums[orderType]
}

type SummaryCalculator struct {
	rules Rules
}

func NewSummaryCalculator(rules Rules) *SummaryCalculator {
	tiers := append([]DiscountTier{}, rules.DiscountTiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Threshold > tiers[j].Threshold })
	rules.DiscountTiers = tiers
	return &SummaryCalculator{rules: rules}
}

func (c *SummaryCalculator) Rules() Rules {
	return c.rules
}

func (c *SummaryCalculator) Discount(subtotal float64) float64 {
	for _, tier := range c.rules.DiscountTiers {
		if subtotal >= tier.Threshold {
			return tier.Amount
		}
	}
	return 0
}

func (c *SummaryCalculator) DeliveryFee(orderType domain.OrderType, subtotal float64) float64 {
	if orderType == domain.OrderTypeDelivery && subtotal < c.rules.FreeDeliveryThreshold {
		return c.rules.DeliveryFee
	}
	return 0
}

// Calculate prices an order of the given type and subtotal. In tax-inclusive
// mode the reported tax is the share already contained in menu prices and is
// not added to the total.
func (c *SummaryCalculator) Calculate(orderType domain.OrderType, subtotal float64) domain.CheckoutSummary {
	sub := decimal.NewFromFloat(subtotal).Round(2)
	discount := decimal.NewFromFloat(c.Discount(subtotal))
	taxable := decimal.Max(decimal.Zero, sub.Sub(discount))
	rate := decimal.NewFromFloat(c.rules.TaxRate)

	var tax, taxApplied decimal.Decimal
	if c.rules.TaxIncluded {
		tax = taxable.Sub(taxable.Div(decimal.NewFromInt(1).Add(rate))).Round(2)
		taxApplied = decimal.Zero
	} else {
		tax = taxable.Mul(rate).Round(2)
		taxApplied = tax
	}

	fee := decimal.NewFromFloat(c.DeliveryFee(orderType, subtotal))
	total := sub.Sub(discount).Add(taxApplied).Add(fee).Round(2)

	return domain.CheckoutSummary{
		Subtotal:      sub.InexactFloat64(),
		Discount:      discount.InexactFloat64(),
		TaxableAmount: taxable.Round(2).InexactFloat64(),
		TaxRate:       c.rules.TaxRate,
		TaxIncluded:   c.rules.TaxIncluded,
		Tax:           tax.InexactFloat64(),
		DeliveryFee:   fee.InexactFloat64(),
		Total:         total.InexactFloat64(),
		Currency:      c.rules.Currency,
	}
}
