// Package handler exposes the rate service's HTTP API to checkout
// frontends.
package handler

import (
	"context"
	"net/http"

	"github.com/zash22/collivery-rates/internal/domain/rate"
)

// SettingsSource loads the operator configuration consulted per request.
// Satisfied by *postgres.SettingsRepository.
type SettingsSource interface {
	Load(ctx context.Context) (rate.Settings, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// LengthUnit and WeightUnit are the units cart item dimensions arrive
	// in, as configured store-wide (one of mm/cm/m/in/yd and g/kg/lb/oz).
	LengthUnit string
	WeightUnit string
}

// Handler wires the parcel builder and rate engine behind HTTP endpoints.
type Handler struct {
	engine   *rate.Engine
	courier  rate.Courier
	settings SettingsSource

	lengthUnit string
	weightUnit string
}

// New constructs a Handler with the required dependencies.
func New(cfg Config, engine *rate.Engine, courier rate.Courier, settings SettingsSource) *Handler {
	return &Handler{
		engine:     engine,
		courier:    courier,
		settings:   settings,
		lengthUnit: cfg.LengthUnit,
		weightUnit: cfg.WeightUnit,
	}
}

// Register attaches all API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/rates/quote", h.Quote)
	mux.HandleFunc("GET /api/rates/catalog", h.Catalog)
	mux.HandleFunc("GET /api/rates/services", h.Services)
	mux.HandleFunc("GET /api/rates/default-address", h.DefaultAddress)
}
