package rate

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zash22/collivery-rates/internal/collivery"
	"github.com/zash22/collivery-rates/internal/domain/parcel"
)

// mockCourier scripts catalog data and per-service quote outcomes, recording
// every pricing query it receives.
type mockCourier struct {
	services   []collivery.Service
	towns      map[int]string
	types      map[int]string
	origin     collivery.Address
	responses  map[int]collivery.QuoteResponse
	quoteErrs  map[int]error
	catalogErr error

	quoteCalls []collivery.QuoteRequest
}

func (m *mockCourier) Services(context.Context) ([]collivery.Service, error) {
	return m.services, m.catalogErr
}

func (m *mockCourier) Towns(context.Context) (map[int]string, error) {
	return m.towns, m.catalogErr
}

func (m *mockCourier) LocationTypes(context.Context) (map[int]string, error) {
	return m.types, m.catalogErr
}

func (m *mockCourier) DefaultAddress(context.Context) (collivery.Address, error) {
	return m.origin, m.catalogErr
}

func (m *mockCourier) Quote(_ context.Context, req collivery.QuoteRequest) (collivery.QuoteResponse, error) {
	m.quoteCalls = append(m.quoteCalls, req)
	if err, ok := m.quoteErrs[req.ServiceID]; ok {
		return collivery.QuoteResponse{}, err
	}
	return m.responses[req.ServiceID], nil
}

func newMockCourier() *mockCourier {
	return &mockCourier{
		services: []collivery.Service{
			{ID: 1, Title: "Next Day"},
			{ID: 2, Title: "Same Day"},
			{ID: 5, Title: "Economy Road"},
		},
		towns:  map[int]string{147: "Johannesburg", 129: "Cape Town"},
		types:  map[int]string{1: "Business Premises", 2: "Private Residence"},
		origin: collivery.Address{TownID: 147, LocationType: 1},
		responses: map[int]collivery.QuoteResponse{
			1: {Price: &collivery.Price{IncVAT: decimal.RequireFromString("100")}},
			2: {Price: &collivery.Price{IncVAT: decimal.RequireFromString("200")}},
			5: {Price: &collivery.Price{IncVAT: decimal.RequireFromString("50")}},
		},
	}
}

func allEnabled(markup string) Settings {
	pct := decimal.RequireFromString(markup)
	return Settings{
		RiskCover: true,
		RoundUp:   false,
		Services: map[int]ServiceOption{
			1: {ID: 1, Enabled: true, MarkupPercent: pct},
			2: {ID: 2, Enabled: true, MarkupPercent: pct},
			5: {ID: 5, Enabled: true, MarkupPercent: pct},
		},
	}
}

func testSummary() parcel.CartSummary {
	p := parcel.Parcel{
		Length: decimal.NewFromInt(20),
		Width:  decimal.NewFromInt(10),
		Height: decimal.NewFromInt(10),
		Weight: decimal.NewFromInt(1),
	}
	return parcel.CartSummary{
		ItemCount:      2,
		Total:          decimal.NewFromInt(500),
		Weight:         decimal.NewFromInt(2),
		BillableWeight: decimal.NewFromInt(2),
		Parcels:        []parcel.Parcel{p, p},
	}
}

func jhbToCt() Destination {
	return Destination{Town: "Cape Town", LocationType: "Private Residence"}
}

func TestCalculate_EmptyCart(t *testing.T) {
	courier := newMockCourier()
	engine := NewEngine(courier)

	quotes, err := engine.Calculate(context.Background(), parcel.CartSummary{}, jhbToCt(), allEnabled("10"))
	require.NoError(t, err)

	assert.Empty(t, quotes)
	assert.Empty(t, courier.quoteCalls, "empty cart must not trigger pricing queries")
}

func TestCalculate_PaidServicesInCatalogOrder(t *testing.T) {
	courier := newMockCourier()
	engine := NewEngine(courier)

	quotes, err := engine.Calculate(context.Background(), testSummary(), jhbToCt(), allEnabled("10"))
	require.NoError(t, err)

	require.Len(t, quotes, 3)
	assert.Equal(t, "mds_1", quotes[0].ID)
	assert.Equal(t, "mds_2", quotes[1].ID)
	assert.Equal(t, "mds_5", quotes[2].ID)
	assert.True(t, decimal.RequireFromString("110.00").Equal(quotes[0].Cost))
	assert.True(t, decimal.RequireFromString("220.00").Equal(quotes[1].Cost))
	assert.True(t, decimal.RequireFromString("55.00").Equal(quotes[2].Cost))
}

func TestCalculate_QueryCarriesCartAndSettings(t *testing.T) {
	courier := newMockCourier()
	engine := NewEngine(courier)
	summary := testSummary()

	_, err := engine.Calculate(context.Background(), summary, jhbToCt(), allEnabled("10"))
	require.NoError(t, err)

	require.NotEmpty(t, courier.quoteCalls)
	first := courier.quoteCalls[0]
	assert.Equal(t, 147, first.FromTownID)
	assert.Equal(t, 1, first.FromLocationType)
	assert.Equal(t, 129, first.ToTownID)
	assert.Equal(t, 2, first.ToLocationType)
	assert.Equal(t, len(summary.Parcels), first.PackageCount)
	assert.Len(t, first.Parcels, 2)
	assert.True(t, first.ExcludeWeekend)
	assert.True(t, first.Cover)
}

func TestCalculate_FailedServiceSkipped(t *testing.T) {
	courier := newMockCourier()
	courier.quoteErrs = map[int]error{1: errors.New("courier unavailable")}
	delete(courier.responses, 2) // no usable price for service 2
	engine := NewEngine(courier)

	settings := allEnabled("10")
	settings.Services[5] = ServiceOption{
		ID: 5, Enabled: true,
		MarkupPercent: decimal.RequireFromString("10"),
		Wording:       "Road Freight",
	}

	quotes, err := engine.Calculate(context.Background(), testSummary(), jhbToCt(), settings)
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	assert.Equal(t, "mds_5", quotes[0].ID)
	assert.Equal(t, "Road Freight", quotes[0].Label)
	assert.True(t, decimal.RequireFromString("55.00").Equal(quotes[0].Cost))
}

func TestCalculate_DisabledServiceNotQueried(t *testing.T) {
	courier := newMockCourier()
	engine := NewEngine(courier)

	settings := allEnabled("10")
	settings.Services[2] = ServiceOption{ID: 2, Enabled: false}

	quotes, err := engine.Calculate(context.Background(), testSummary(), jhbToCt(), settings)
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	for _, call := range courier.quoteCalls {
		assert.NotEqual(t, 2, call.ServiceID)
	}
}

func TestCalculate_FreeDeliveryUnconditional(t *testing.T) {
	courier := newMockCourier()
	engine := NewEngine(courier)

	settings := allEnabled("10")
	settings.Free = FreeDelivery{Enabled: true, MinTotal: decimal.NewFromInt(1000)}

	summary := testSummary()
	summary.Total = decimal.NewFromInt(1200)

	quotes, err := engine.Calculate(context.Background(), summary, jhbToCt(), settings)
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	assert.Equal(t, "free", quotes[0].ID)
	assert.Equal(t, "Free Delivery", quotes[0].Label)
	assert.True(t, quotes[0].Cost.IsZero())
	assert.Empty(t, courier.quoteCalls, "unconditional free delivery must not price anything")
}

func TestCalculate_FreeDeliveryWording(t *testing.T) {
	courier := newMockCourier()
	engine := NewEngine(courier)

	settings := allEnabled("10")
	settings.Free = FreeDelivery{Enabled: true, MinTotal: decimal.NewFromInt(100), Wording: "On us!"}

	quotes, err := engine.Calculate(context.Background(), testSummary(), jhbToCt(), settings)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "On us!", quotes[0].Label)
}

func TestCalculate_FreeDeliveryBelowThreshold(t *testing.T) {
	courier := newMockCourier()
	engine := NewEngine(courier)

	settings := allEnabled("10")
	settings.Free = FreeDelivery{Enabled: true, MinTotal: decimal.NewFromInt(1000)}

	quotes, err := engine.Calculate(context.Background(), testSummary(), jhbToCt(), settings)
	require.NoError(t, err)
	require.Len(t, quotes, 3, "below the threshold all paid services are offered")
}

func TestCalculate_FreeDeliveryLocalOnly_LocalRoute(t *testing.T) {
	courier := newMockCourier()
	courier.responses[localCheckServiceID] = collivery.QuoteResponse{
		Price:        &collivery.Price{IncVAT: decimal.NewFromInt(60)},
		DeliveryType: "local",
	}
	engine := NewEngine(courier)

	settings := allEnabled("10")
	settings.Free = FreeDelivery{Enabled: true, MinTotal: decimal.NewFromInt(100), LocalOnly: true}

	quotes, err := engine.Calculate(context.Background(), testSummary(), jhbToCt(), settings)
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	assert.Equal(t, "free", quotes[0].ID)

	// Exactly one probe query: service 2, one package, no parcels, no cover.
	require.Len(t, courier.quoteCalls, 1)
	probe := courier.quoteCalls[0]
	assert.Equal(t, localCheckServiceID, probe.ServiceID)
	assert.Equal(t, 1, probe.PackageCount)
	assert.Empty(t, probe.Parcels)
	assert.True(t, probe.ExcludeWeekend)
	assert.False(t, probe.Cover)
}

func TestCalculate_FreeDeliveryLocalOnly_FallsThroughToPaid(t *testing.T) {
	courier := newMockCourier()
	courier.responses[localCheckServiceID] = collivery.QuoteResponse{
		Price:        &collivery.Price{IncVAT: decimal.NewFromInt(60)},
		DeliveryType: "long_distance",
	}
	engine := NewEngine(courier)

	settings := allEnabled("10")
	settings.Free = FreeDelivery{Enabled: true, MinTotal: decimal.NewFromInt(100), LocalOnly: true}

	quotes, err := engine.Calculate(context.Background(), testSummary(), jhbToCt(), settings)
	require.NoError(t, err)

	// Probe plus all three paid services; no free quote.
	require.Len(t, quotes, 3)
	for _, q := range quotes {
		assert.NotEqual(t, "free", q.ID)
	}
	assert.Len(t, courier.quoteCalls, 4)
}

func TestCalculate_LabelSuffixRules(t *testing.T) {
	tests := []struct {
		name      string
		serviceID int
		wording   string
		want      string
	}{
		{name: "service 1 stock wording gets suffix", serviceID: 1, wording: "", want: "Next Day" + outlyingSuffix},
		{name: "service 2 stock wording gets suffix", serviceID: 2, wording: "", want: "Same Day" + outlyingSuffix},
		{name: "service 1 override wins", serviceID: 1, wording: "Express", want: "Express"},
		{name: "economy tier never suffixed", serviceID: 5, wording: "", want: "Economy Road"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courier := newMockCourier()
			engine := NewEngine(courier)

			settings := Settings{
				Services: map[int]ServiceOption{
					tt.serviceID: {
						ID: tt.serviceID, Enabled: true,
						MarkupPercent: decimal.Zero,
						Wording:       tt.wording,
					},
				},
			}

			quotes, err := engine.Calculate(context.Background(), testSummary(), jhbToCt(), settings)
			require.NoError(t, err)
			require.Len(t, quotes, 1)
			assert.Equal(t, tt.want, quotes[0].Label)
		})
	}
}

func TestCalculate_UnresolvedDestinationPassedThrough(t *testing.T) {
	courier := newMockCourier()
	engine := NewEngine(courier)

	dest := Destination{Town: "Atlantis", LocationType: "Castle"}
	quotes, err := engine.Calculate(context.Background(), testSummary(), dest, allEnabled("0"))
	require.NoError(t, err)

	assert.NotEmpty(t, quotes)
	require.NotEmpty(t, courier.quoteCalls)
	assert.Zero(t, courier.quoteCalls[0].ToTownID)
	assert.Zero(t, courier.quoteCalls[0].ToLocationType)
}

func TestCalculate_CatalogFailureAborts(t *testing.T) {
	courier := newMockCourier()
	courier.catalogErr = errors.New("courier down")
	engine := NewEngine(courier)

	_, err := engine.Calculate(context.Background(), testSummary(), jhbToCt(), allEnabled("10"))
	require.Error(t, err)
}

func TestCalculate_RoundUpPolicy(t *testing.T) {
	courier := newMockCourier()
	courier.responses[5] = collivery.QuoteResponse{
		Price: &collivery.Price{IncVAT: decimal.RequireFromString("103.2")},
	}
	engine := NewEngine(courier)

	settings := Settings{
		RoundUp: true,
		Services: map[int]ServiceOption{
			5: {ID: 5, Enabled: true, MarkupPercent: decimal.RequireFromString("10")},
		},
	}

	quotes, err := engine.Calculate(context.Background(), testSummary(), jhbToCt(), settings)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.True(t, decimal.NewFromInt(114).Equal(quotes[0].Cost))
}
