package rate

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ApplyMarkup adds a percentage markup to a base price and applies the
// store's rounding policy: the marked-up price is first fixed to two decimal
// places, then either returned as-is or raised to the next whole amount.
// Rounding acts on the two-decimal value, not the raw product, so e.g.
// ApplyMarkup(103.2, 10, true) = ceil(113.52) = 114.
func ApplyMarkup(base, markupPercent decimal.Decimal, roundUp bool) decimal.Decimal {
	marked := base.Add(base.Mul(markupPercent.Div(hundred)))
	fixed := marked.Round(2)
	if roundUp {
		return fixed.Ceil()
	}
	return fixed
}
