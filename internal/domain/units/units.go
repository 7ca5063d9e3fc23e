// Package units converts length and mass values between the unit systems a
// store may be configured with. All conversions are pure and deterministic.
package units

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// UnsupportedUnitError indicates a unit symbol that no conversion table knows.
type UnsupportedUnitError struct {
	Unit string
}

func (e *UnsupportedUnitError) Error() string {
	return fmt.Sprintf("unsupported unit %q", e.Unit)
}

// Factors express each unit in its base unit (meters for length, kilograms
// for mass). Both tables are keyed by lowercase symbols.
var (
	lengthFactors = map[string]decimal.Decimal{
		"mm": decimal.RequireFromString("0.001"),
		"cm": decimal.RequireFromString("0.01"),
		"m":  decimal.RequireFromString("1"),
		"in": decimal.RequireFromString("0.0254"),
		"yd": decimal.RequireFromString("0.9144"),
	}
	massFactors = map[string]decimal.Decimal{
		"g":  decimal.RequireFromString("0.001"),
		"kg": decimal.RequireFromString("1"),
		"lb": decimal.RequireFromString("0.45359237"),
		"oz": decimal.RequireFromString("0.028349523125"),
	}
)

// Convert converts value from one unit to another, rounding the result to
// precision decimal places. Both units must belong to the same dimension.
// Unknown symbols yield an UnsupportedUnitError.
func Convert(value decimal.Decimal, from, to string, precision int32) (decimal.Decimal, error) {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))

	if from == to {
		return value.Round(precision), nil
	}

	fromFactor, toFactor, err := factors(from, to)
	if err != nil {
		return decimal.Zero, err
	}

	return value.Mul(fromFactor).Div(toFactor).Round(precision), nil
}

func factors(from, to string) (decimal.Decimal, decimal.Decimal, error) {
	if f, ok := lengthFactors[from]; ok {
		t, ok := lengthFactors[to]
		if !ok {
			return decimal.Zero, decimal.Zero, &UnsupportedUnitError{Unit: to}
		}
		return f, t, nil
	}
	if f, ok := massFactors[from]; ok {
		t, ok := massFactors[to]
		if !ok {
			return decimal.Zero, decimal.Zero, &UnsupportedUnitError{Unit: to}
		}
		return f, t, nil
	}
	return decimal.Zero, decimal.Zero, &UnsupportedUnitError{Unit: from}
}
