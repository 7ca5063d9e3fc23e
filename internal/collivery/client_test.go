package collivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zash22/collivery-rates/internal/domain/parcel"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Token: "test-token"})
}

func TestClient_Services_OrderedByID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/service_types", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-App-Token"))
		_, _ = w.Write([]byte(`{"data":{"5":"Economy Road","1":"Next Day","2":"Same Day"}}`))
	}))

	services, err := client.Services(context.Background())
	require.NoError(t, err)

	require.Len(t, services, 3)
	assert.Equal(t, Service{ID: 1, Title: "Next Day"}, services[0])
	assert.Equal(t, Service{ID: 2, Title: "Same Day"}, services[1])
	assert.Equal(t, Service{ID: 5, Title: "Economy Road"}, services[2])
}

func TestClient_Towns(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/towns", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"147":"Johannesburg","129":"Cape Town"}}`))
	}))

	towns, err := client.Towns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int]string{147: "Johannesburg", 129: "Cape Town"}, towns)
}

func TestClient_DefaultAddress(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/default_address", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{
			"address":{"address_id":88,"town_id":147,"town_name":"Johannesburg","location_type":1},
			"contacts":[{"id":3,"full_name":"Warehouse","phone":"0115551234"}]
		}}`))
	}))

	addr, err := client.DefaultAddress(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 147, addr.TownID)
	assert.Equal(t, 1, addr.LocationType)
	require.Len(t, addr.Contacts, 1)
	assert.Equal(t, "Warehouse", addr.Contacts[0].Name)
}

func TestClient_Quote(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v3/quote", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 147, req["from_town_id"])
		assert.EqualValues(t, 129, req["to_town_id"])
		assert.EqualValues(t, 2, req["num_package"])
		assert.EqualValues(t, 1, req["service"])
		assert.Equal(t, true, req["exclude_weekend"])
		assert.Equal(t, true, req["cover"])
		assert.Len(t, req["parcels"], 2)

		_, _ = w.Write([]byte(`{"data":{"price":{"inc_vat":"123.45","ex_vat":"107.35"},"delivery_type":"local"}}`))
	}))

	p := parcel.Parcel{
		Length: decimal.NewFromInt(20),
		Width:  decimal.NewFromInt(10),
		Height: decimal.NewFromInt(10),
		Weight: decimal.RequireFromString("1.5"),
	}
	resp, err := client.Quote(context.Background(), QuoteRequest{
		FromTownID:       147,
		FromLocationType: 1,
		ToTownID:         129,
		ToLocationType:   2,
		PackageCount:     2,
		ServiceID:        1,
		Parcels:          []parcel.Parcel{p, p},
		ExcludeWeekend:   true,
		Cover:            true,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Price)
	assert.True(t, decimal.RequireFromString("123.45").Equal(resp.Price.IncVAT))
	assert.True(t, resp.Local())
}

func TestClient_Quote_NoPrice(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"delivery_type":"long_distance"}}`))
	}))

	resp, err := client.Quote(context.Background(), QuoteRequest{ServiceID: 3})
	require.NoError(t, err)
	assert.Nil(t, resp.Price)
	assert.False(t, resp.Local())
}

func TestClient_UnexpectedStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))

	_, err := client.Towns(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCatalog_ReverseLookup(t *testing.T) {
	catalog := NewCatalog(map[int]string{147: "Johannesburg", 129: "Cape Town"})

	id, ok := catalog.ID("Johannesburg")
	assert.True(t, ok)
	assert.Equal(t, 147, id)

	label, ok := catalog.Label(129)
	assert.True(t, ok)
	assert.Equal(t, "Cape Town", label)

	id, ok = catalog.ID("Atlantis")
	assert.False(t, ok)
	assert.Zero(t, id)

	assert.Equal(t, []string{"Cape Town", "Johannesburg"}, catalog.Labels())
	assert.Equal(t, 2, catalog.Len())
}
