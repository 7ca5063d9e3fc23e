package rate

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zash22/collivery-rates/internal/collivery"
	"github.com/zash22/collivery-rates/internal/domain/parcel"
)

const (
	// freeQuoteID identifies the free-delivery option in checkout output.
	freeQuoteID = "free"
	// paidQuoteIDPrefix prefixes the courier service id for paid options.
	paidQuoteIDPrefix = "mds_"
	// localCheckServiceID is the service used to probe whether a route is
	// local before granting restricted free delivery.
	localCheckServiceID = 2
	// outlyingSuffix is the courier's caveat for its two express tiers.
	outlyingSuffix = ", additional 24 hours on outlying areas"

	defaultFreeWording = "Free Delivery"
)

// Engine computes the rate quotes offered for a cart and destination. It is
// stateless; every calculation fetches catalogs and settings-driven prices
// fresh.
type Engine struct {
	courier Courier
}

// NewEngine creates an Engine backed by the given courier gateway.
func NewEngine(courier Courier) *Engine {
	return &Engine{courier: courier}
}

// catalogs bundles the per-calculation courier reference data.
type catalogs struct {
	services      []collivery.Service
	towns         collivery.Catalog
	locationTypes collivery.Catalog
	origin        collivery.Address
}

// Calculate returns the ordered rate quotes for the cart. Quote order
// follows the service catalog enumeration. An empty cart yields no quotes
// and no pricing queries. Individual services that fail to price are
// skipped; only catalog or default-address unavailability is a hard error.
func (e *Engine) Calculate(ctx context.Context, summary parcel.CartSummary, dest Destination, settings Settings) ([]Quote, error) {
	if summary.Empty() {
		return nil, nil
	}

	cat, err := e.fetchCatalogs(ctx)
	if err != nil {
		return nil, err
	}

	// Labels that miss the catalog resolve to zero ids, which the pricing
	// service interprets as an absent constraint.
	toTownID, _ := cat.towns.ID(dest.Town)
	toLocationType, _ := cat.locationTypes.ID(dest.LocationType)

	if e.freeDeliveryGranted(ctx, summary, settings, cat, toTownID, toLocationType) {
		wording := settings.Free.Wording
		if wording == "" {
			wording = defaultFreeWording
		}
		return []Quote{{ID: freeQuoteID, Label: wording, Cost: decimal.Zero}}, nil
	}

	return e.paidQuotes(ctx, summary, settings, cat, toTownID, toLocationType), nil
}

// fetchCatalogs loads all courier reference data concurrently. The fan-out
// is order-independent; only quote emission order is contractual.
func (e *Engine) fetchCatalogs(ctx context.Context) (catalogs, error) {
	var cat catalogs

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		services, err := e.courier.Services(ctx)
		cat.services = services
		return err
	})
	g.Go(func() error {
		towns, err := e.courier.Towns(ctx)
		cat.towns = collivery.NewCatalog(towns)
		return err
	})
	g.Go(func() error {
		types, err := e.courier.LocationTypes(ctx)
		cat.locationTypes = collivery.NewCatalog(types)
		return err
	})
	g.Go(func() error {
		origin, err := e.courier.DefaultAddress(ctx)
		cat.origin = origin
		return err
	})

	if err := g.Wait(); err != nil {
		return catalogs{}, errors.Wrap(err, "load courier catalogs")
	}
	return cat, nil
}

// freeDeliveryGranted decides the free branch. When free delivery is
// restricted to local routes, a single probe query must classify the route
// as local; any other outcome falls through to paid pricing.
func (e *Engine) freeDeliveryGranted(ctx context.Context, summary parcel.CartSummary, settings Settings, cat catalogs, toTownID, toLocationType int) bool {
	if !settings.Free.Enabled || summary.Total.LessThan(settings.Free.MinTotal) {
		return false
	}
	if !settings.Free.LocalOnly {
		return true
	}

	resp, err := e.courier.Quote(ctx, collivery.QuoteRequest{
		FromTownID:       cat.origin.TownID,
		FromLocationType: cat.origin.LocationType,
		ToTownID:         toTownID,
		ToLocationType:   toLocationType,
		PackageCount:     1,
		ServiceID:        localCheckServiceID,
		ExcludeWeekend:   true,
	})
	if err != nil {
		zctx.From(ctx).Debug("local route check failed, falling through to paid services",
			zap.Error(err))
		return false
	}
	return resp.Local()
}

// paidQuotes prices every enabled service in catalog order. Services whose
// query fails or returns no price contribute nothing.
func (e *Engine) paidQuotes(ctx context.Context, summary parcel.CartSummary, settings Settings, cat catalogs, toTownID, toLocationType int) []Quote {
	lg := zctx.From(ctx)

	var quotes []Quote
	for _, svc := range cat.services {
		opt, ok := settings.Services[svc.ID]
		if !ok || !opt.Enabled {
			continue
		}

		resp, err := e.courier.Quote(ctx, collivery.QuoteRequest{
			FromTownID:       cat.origin.TownID,
			FromLocationType: cat.origin.LocationType,
			ToTownID:         toTownID,
			ToLocationType:   toLocationType,
			PackageCount:     len(summary.Parcels),
			ServiceID:        svc.ID,
			Parcels:          summary.Parcels,
			ExcludeWeekend:   true,
			Cover:            settings.RiskCover,
		})
		if err != nil {
			lg.Debug("pricing query failed, skipping service",
				zap.Int("service_id", svc.ID), zap.Error(err))
			continue
		}
		if resp.Price == nil {
			lg.Debug("no price for service", zap.Int("service_id", svc.ID))
			continue
		}

		quotes = append(quotes, Quote{
			ID:    paidQuoteIDPrefix + strconv.Itoa(svc.ID),
			Label: serviceLabel(svc, opt),
			Cost:  ApplyMarkup(resp.Price.IncVAT, opt.MarkupPercent, settings.RoundUp),
		})
	}
	return quotes
}

// serviceLabel picks the displayed wording. The two express tiers carry the
// courier's outlying-area caveat unless the operator kept the stock title as
// their wording.
func serviceLabel(svc collivery.Service, opt ServiceOption) string {
	title := svc.Title
	if (opt.Wording == "" || opt.Wording != title) && (svc.ID == 1 || svc.ID == 2) {
		title += outlyingSuffix
	}
	if opt.Wording != "" {
		return opt.Wording
	}
	return title
}
