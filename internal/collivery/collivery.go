// Package collivery is a thin HTTP client for the MDS Collivery pricing API.
// Every operation is a single synchronous request/response; retries and
// backoff are left to the caller.
package collivery

import (
	"github.com/shopspring/decimal"

	"github.com/zash22/collivery-rates/internal/domain/parcel"
)

// Service is one courier service tier (overnight, economy, ...). The catalog
// is returned ordered by ascending id, which is the enumeration order rate
// quotes follow.
type Service struct {
	ID    int
	Title string
}

// Contact is a person reachable at an address.
type Contact struct {
	ID       int    `json:"id"`
	Name     string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	CellNo   string `json:"cellphone"`
	WorkNo   string `json:"work_phone"`
	Primary  bool   `json:"primary"`
	Archived bool   `json:"archived"`
}

// Address is a courier-registered address. TownID and LocationType are the
// opaque identifiers pricing queries are built from.
type Address struct {
	ID           int       `json:"address_id"`
	TownID       int       `json:"town_id"`
	TownName     string    `json:"town_name"`
	LocationType int       `json:"location_type"`
	StreetName   string    `json:"street"`
	Suburb       string    `json:"suburb_name"`
	Contacts     []Contact `json:"-"`
}

// QuoteRequest describes one pricing query between two locations for a given
// service. Zero town/location ids are passed through untouched; the remote
// service treats them as an absent constraint.
type QuoteRequest struct {
	FromTownID       int             `json:"from_town_id"`
	FromLocationType int             `json:"from_location_type"`
	ToTownID         int             `json:"to_town_id"`
	ToLocationType   int             `json:"to_location_type"`
	PackageCount     int             `json:"num_package"`
	ServiceID        int             `json:"service"`
	Parcels          []parcel.Parcel `json:"parcels,omitempty"`
	ExcludeWeekend   bool            `json:"exclude_weekend"`
	Cover            bool            `json:"cover"`
}

// Price is the courier's quoted amount for a parcel set.
type Price struct {
	IncVAT decimal.Decimal `json:"inc_vat"`
	ExVAT  decimal.Decimal `json:"ex_vat"`
}

// QuoteResponse is the pricing service's answer. A nil Price means the
// service returned no usable price for the route; that is not an error.
type QuoteResponse struct {
	Price        *Price `json:"price"`
	DeliveryType string `json:"delivery_type"`
}

// Local reports whether the quoted route was classified as a local delivery.
func (r QuoteResponse) Local() bool {
	return r.DeliveryType == "local"
}
