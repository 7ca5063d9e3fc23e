package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/zash22/collivery-rates/internal/domain/parcel"
	"github.com/zash22/collivery-rates/internal/domain/rate"
	"github.com/zash22/collivery-rates/internal/domain/units"
)

type quoteItem struct {
	ProductID    string          `json:"productId"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	LineSubtotal decimal.Decimal `json:"lineSubtotal"`
	Length       decimal.Decimal `json:"length"`
	Width        decimal.Decimal `json:"width"`
	Height       decimal.Decimal `json:"height"`
	Weight       decimal.Decimal `json:"weight"`
}

// quoteDestination mirrors the checkout form state: the shipping address is
// used only when the customer explicitly ships to a different address.
type quoteDestination struct {
	BillingTown            string `json:"billingTown"`
	BillingLocationType    string `json:"billingLocationType"`
	ShippingTown           string `json:"shippingTown"`
	ShippingLocationType   string `json:"shippingLocationType"`
	ShipToDifferentAddress bool   `json:"shipToDifferentAddress"`
}

type quoteRequest struct {
	Items       []quoteItem      `json:"items"`
	Destination quoteDestination `json:"destination"`
}

type quoteResponse struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Cost  float64 `json:"cost"`
}

type cartResponse struct {
	ItemCount      int     `json:"itemCount"`
	Total          float64 `json:"total"`
	Weight         float64 `json:"weight"`
	BillableWeight float64 `json:"billableWeight"`
}

func (d quoteDestination) resolve() rate.Destination {
	if d.ShipToDifferentAddress {
		return rate.Destination{Town: d.ShippingTown, LocationType: d.ShippingLocationType}
	}
	return rate.Destination{Town: d.BillingTown, LocationType: d.BillingLocationType}
}

// Quote computes the shipping options for a cart and destination.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}

	items := make([]parcel.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = parcel.LineItem{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineSubtotal: item.LineSubtotal,
			Length:       item.Length,
			Width:        item.Width,
			Height:       item.Height,
			Weight:       item.Weight,
		}
	}

	summary, err := parcel.Build(items, h.lengthUnit, h.weightUnit)
	if err != nil {
		var uErr *units.UnsupportedUnitError
		if errors.As(err, &uErr) {
			writeError(w, http.StatusUnprocessableEntity, "UNSUPPORTED_UNIT", err.Error())
			return
		}
		logError(r, "build parcels", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to normalize cart")
		return
	}

	settings, err := h.settings.Load(r.Context())
	if err != nil {
		logError(r, "load settings", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to load settings")
		return
	}

	quotes, err := h.engine.Calculate(r.Context(), summary, req.Destination.resolve(), settings)
	if err != nil {
		logError(r, "calculate rates", err)
		writeError(w, http.StatusBadGateway, "COURIER_UNAVAILABLE", "courier pricing service unavailable")
		return
	}

	out := make([]quoteResponse, len(quotes))
	for i, q := range quotes {
		out[i] = quoteResponse{ID: q.ID, Label: q.Label, Cost: q.Cost.InexactFloat64()}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"quotes": out,
		"cart": cartResponse{
			ItemCount:      summary.ItemCount,
			Total:          summary.Total.InexactFloat64(),
			Weight:         summary.Weight.InexactFloat64(),
			BillableWeight: summary.BillableWeight.InexactFloat64(),
		},
	})
}
