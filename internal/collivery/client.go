package collivery

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the client's connection parameters.
type Config struct {
	// BaseURL is the API root, e.g. https://api.collivery.net.
	BaseURL string
	// Token authenticates requests when set (X-App-Token header).
	Token string
	// Timeout bounds each request. Defaults to 15s when zero.
	Timeout time.Duration
}

// Client talks to the Collivery v3 API over HTTP. Outbound requests are
// traced via otelhttp.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Services fetches the service-tier catalog, ordered by ascending id.
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	var payload map[string]string
	if err := c.get(ctx, "/v3/service_types", &payload); err != nil {
		return nil, errors.Wrap(err, "fetch service types")
	}

	services := make([]Service, 0, len(payload))
	for key, title := range payload {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Wrapf(err, "service id %q", key)
		}
		services = append(services, Service{ID: id, Title: title})
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services, nil
}

// Towns fetches the town catalog as an id→label mapping.
func (c *Client) Towns(ctx context.Context) (map[int]string, error) {
	m, err := c.getIDLabelMap(ctx, "/v3/towns")
	if err != nil {
		return nil, errors.Wrap(err, "fetch towns")
	}
	return m, nil
}

// LocationTypes fetches the location-type catalog as an id→label mapping.
func (c *Client) LocationTypes(ctx context.Context) (map[int]string, error) {
	m, err := c.getIDLabelMap(ctx, "/v3/location_types")
	if err != nil {
		return nil, errors.Wrap(err, "fetch location types")
	}
	return m, nil
}

// DefaultAddress fetches the account's default collection address together
// with its contacts.
func (c *Client) DefaultAddress(ctx context.Context) (Address, error) {
	var payload struct {
		Address  Address   `json:"address"`
		Contacts []Contact `json:"contacts"`
	}
	if err := c.get(ctx, "/v3/default_address", &payload); err != nil {
		return Address{}, errors.Wrap(err, "fetch default address")
	}
	addr := payload.Address
	addr.Contacts = payload.Contacts
	return addr, nil
}

// Quote prices a parcel set between two locations for one service. A
// response without a price is returned as-is; the caller decides whether
// that skips the service or declines an eligibility check.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (QuoteResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return QuoteResponse{}, errors.Wrap(err, "encode quote request")
	}

	var resp QuoteResponse
	if err := c.do(ctx, http.MethodPost, "/v3/quote", bytes.NewReader(body), &resp); err != nil {
		return QuoteResponse{}, errors.Wrap(err, "quote")
	}
	return resp, nil
}

func (c *Client) getIDLabelMap(ctx context.Context, path string) (map[int]string, error) {
	var payload map[string]string
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}

	result := make(map[int]string, len(payload))
	for key, label := range payload {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Wrapf(err, "catalog id %q", key)
		}
		result[id] = label
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// do issues one request and decodes the standard {"data": ...} envelope.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return errors.Wrap(err, "build url")
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-App-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return errors.Wrap(err, "decode envelope")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return errors.Wrap(err, "decode payload")
	}
	return nil
}
