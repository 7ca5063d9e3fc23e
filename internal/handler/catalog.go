package handler

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/zash22/collivery-rates/internal/collivery"
)

// Catalog returns the town and location-type labels checkout selects are
// populated from.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	var towns, locationTypes collivery.Catalog

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		m, err := h.courier.Towns(ctx)
		towns = collivery.NewCatalog(m)
		return err
	})
	g.Go(func() error {
		m, err := h.courier.LocationTypes(ctx)
		locationTypes = collivery.NewCatalog(m)
		return err
	})
	if err := g.Wait(); err != nil {
		logError(r, "fetch catalogs", err)
		writeError(w, http.StatusBadGateway, "COURIER_UNAVAILABLE", "courier catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"towns":         towns.Labels(),
		"locationTypes": locationTypes.Labels(),
	})
}

type serviceResponse struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Enabled       bool    `json:"enabled"`
	MarkupPercent float64 `json:"markupPercent"`
	Wording       string  `json:"wording,omitempty"`
}

// Services returns the courier service catalog merged with the operator's
// per-service configuration.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.courier.Services(r.Context())
	if err != nil {
		logError(r, "fetch services", err)
		writeError(w, http.StatusBadGateway, "COURIER_UNAVAILABLE", "courier catalog unavailable")
		return
	}

	settings, err := h.settings.Load(r.Context())
	if err != nil {
		logError(r, "load settings", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to load settings")
		return
	}

	out := make([]serviceResponse, len(services))
	for i, svc := range services {
		opt := settings.Services[svc.ID]
		out[i] = serviceResponse{
			ID:            svc.ID,
			Title:         svc.Title,
			Enabled:       opt.Enabled,
			MarkupPercent: opt.MarkupPercent.InexactFloat64(),
			Wording:       opt.Wording,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": out})
}

type contactResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// DefaultAddress returns the courier account's default collection address
// and its contacts.
func (h *Handler) DefaultAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := h.courier.DefaultAddress(r.Context())
	if err != nil {
		logError(r, "fetch default address", err)
		writeError(w, http.StatusBadGateway, "COURIER_UNAVAILABLE", "courier address unavailable")
		return
	}

	contacts := make([]contactResponse, len(addr.Contacts))
	for i, c := range addr.Contacts {
		contacts[i] = contactResponse{Name: c.Name, Phone: c.Phone, Email: c.Email}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address": map[string]any{
			"townId":       addr.TownID,
			"townName":     addr.TownName,
			"locationType": addr.LocationType,
			"street":       addr.StreetName,
			"suburb":       addr.Suburb,
		},
		"contacts": contacts,
	})
}
