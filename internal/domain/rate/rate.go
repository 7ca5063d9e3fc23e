// Package rate turns a normalized cart and a destination into the ordered
// list of shipping rate quotes offered at checkout.
package rate

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/zash22/collivery-rates/internal/collivery"
)

// ServiceOption is the operator's configuration for one courier service
// tier, keyed by the courier's service id.
type ServiceOption struct {
	ID            int
	Title         string
	Enabled       bool
	MarkupPercent decimal.Decimal
	Wording       string
}

// FreeDelivery configures the free-delivery threshold rules.
type FreeDelivery struct {
	Enabled   bool
	Wording   string
	MinTotal  decimal.Decimal
	LocalOnly bool
}

// Settings is the full persisted operator configuration consulted per
// calculation. It is loaded fresh for each request; the engine never caches
// it.
type Settings struct {
	RiskCover bool
	RoundUp   bool
	Free      FreeDelivery
	Services  map[int]ServiceOption
}

// Destination identifies where the cart ships to, by the labels the checkout
// form works with. Labels are resolved against the courier catalogs before
// any pricing query.
type Destination struct {
	Town         string
	LocationType string
}

// Quote is one shipping option offered to the checkout. Cost is a
// non-negative two-decimal monetary value; exactly zero for free delivery.
type Quote struct {
	ID    string
	Label string
	Cost  decimal.Decimal
}

// Courier is the slice of the pricing API the engine needs. Satisfied by
// *collivery.Client.
type Courier interface {
	Services(ctx context.Context) ([]collivery.Service, error)
	Towns(ctx context.Context) (map[int]string, error)
	LocationTypes(ctx context.Context) (map[int]string, error)
	DefaultAddress(ctx context.Context) (collivery.Address, error)
	Quote(ctx context.Context, req collivery.QuoteRequest) (collivery.QuoteResponse, error)
}
