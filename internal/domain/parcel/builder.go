package parcel

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/zash22/collivery-rates/internal/domain/units"
)

// volumetricDivisor is the courier's fixed cm-based divisor for deriving a
// billable weight from package volume. Not configurable.
var volumetricDivisor = decimal.NewFromInt(4000)

// conversionPrecision keeps intermediate conversions from compounding
// rounding error before the final price rounding.
const conversionPrecision = 6

// Build normalizes cart line items into a CartSummary. Dimensions are
// converted from lengthUnit to centimeters and weights from weightUnit to
// kilograms before the volumetric calculation. Quantity is expanded: an item
// with quantity 3 contributes 3 identical parcels. An empty cart yields a
// zero-value summary and no error.
func Build(items []LineItem, lengthUnit, weightUnit string) (CartSummary, error) {
	summary := CartSummary{
		Total:          decimal.Zero,
		Weight:         decimal.Zero,
		BillableWeight: decimal.Zero,
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}

		length, err := toCentimeters(item.Length, lengthUnit)
		if err != nil {
			return CartSummary{}, errors.Wrapf(err, "product %s length", item.ProductID)
		}
		width, err := toCentimeters(item.Width, lengthUnit)
		if err != nil {
			return CartSummary{}, errors.Wrapf(err, "product %s width", item.ProductID)
		}
		height, err := toCentimeters(item.Height, lengthUnit)
		if err != nil {
			return CartSummary{}, errors.Wrapf(err, "product %s height", item.ProductID)
		}
		weight, err := toKilograms(item.Weight, weightUnit)
		if err != nil {
			return CartSummary{}, errors.Wrapf(err, "product %s weight", item.ProductID)
		}

		volumetric := length.Mul(width).Mul(height).Div(volumetricDivisor)
		billable := weight
		if volumetric.GreaterThan(weight) {
			billable = volumetric
		}

		qty := decimal.NewFromInt(int64(item.Quantity))
		summary.ItemCount += item.Quantity
		summary.Total = summary.Total.Add(item.LineSubtotal)
		summary.Weight = summary.Weight.Add(weight.Mul(qty))
		summary.BillableWeight = summary.BillableWeight.Add(billable.Mul(qty))

		p := Parcel{Length: length, Width: width, Height: height, Weight: weight}
		for i := 0; i < item.Quantity; i++ {
			summary.Parcels = append(summary.Parcels, p)
		}
	}

	return summary, nil
}

func toCentimeters(value decimal.Decimal, unit string) (decimal.Decimal, error) {
	if unit == "cm" {
		return value, nil
	}
	return units.Convert(value, unit, "cm", conversionPrecision)
}

func toKilograms(value decimal.Decimal, unit string) (decimal.Decimal, error) {
	if unit == "kg" {
		return value, nil
	}
	return units.Convert(value, unit, "kg", conversionPrecision)
}
