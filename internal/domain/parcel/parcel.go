// Package parcel normalizes cart line items into the flat parcel list the
// courier pricing API expects: dimensions in centimeters, weights in
// kilograms, one parcel per physical unit of quantity.
package parcel

import (
	"github.com/shopspring/decimal"
)

// LineItem is one cart row as supplied by the checkout, with dimensions and
// weight expressed in the store's configured units.
type LineItem struct {
	ProductID    string
	Quantity     int
	UnitPrice    decimal.Decimal
	LineSubtotal decimal.Decimal
	Length       decimal.Decimal
	Width        decimal.Decimal
	Height       decimal.Decimal
	Weight       decimal.Decimal
}

// Parcel is a single physical package, normalized to centimeters and
// kilograms. Immutable once built.
type Parcel struct {
	Length decimal.Decimal `json:"length"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Weight decimal.Decimal `json:"weight"`
}

// CartSummary aggregates a normalized cart. BillableWeight accumulates the
// per-item max of actual and volumetric weight, so it is never below Weight.
type CartSummary struct {
	ItemCount      int
	Total          decimal.Decimal
	Weight         decimal.Decimal
	BillableWeight decimal.Decimal
	Parcels        []Parcel
}

// Empty reports whether the summary carries no parcels.
func (s CartSummary) Empty() bool {
	return len(s.Parcels) == 0
}
