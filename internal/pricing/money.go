package pricing

import "github.com/shopspring/decimal"

// Round2 rounds an amount to cents, half away from zero.
func Round2(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// Sum adds amounts exactly and rounds the result to cents.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}

// LinePrice returns the unit price and line total for a line. The unit price is
// rounded before it is multiplied so a line of two never disagrees with two
// lines of one.
func LinePrice(basePrice, modifierTotal float64, quantity int) (unitPrice, lineTotal float64) {
	unit := decimal.NewFromFloat(basePrice).Add(decimal.NewFromFloat(modifierTotal)).Round(2)
	total := unit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	return unit.InexactFloat64(), total.InexactFloat64()
}
