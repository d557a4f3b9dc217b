// Package api is the REST client for the shipment API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/shipment-tracker/pkg/wire"
)

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *Error with the given status code.
func IsStatus(err error, status int) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == status
}

// Client talks to the REST API under baseURL (e.g. http://localhost:8080/api).
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// --- users ---

func (c *Client) Login(ctx context.Context, email, password string) (*wire.Session, error) {
	s, err := call[wire.Session](ctx, c, http.MethodPost, "/users/login", nil,
		wire.LoginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

func (c *Client) Register(ctx context.Context, req wire.RegisterRequest) (*wire.Session, error) {
	s, err := call[wire.Session](ctx, c, http.MethodPost, "/users/register", nil, req, nil)
	if err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

// --- shipments ---

func (c *Client) ListShipments(ctx context.Context, q wire.ListQuery) (*wire.Page[wire.Shipment], error) {
	p, err := call[wire.Page[wire.Shipment]](ctx, c, http.MethodGet, "/shipments", listValues(q), nil, nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetShipmentWithHistory fetches a shipment and its ordered trail in one call.
func (c *Client) GetShipmentWithHistory(ctx context.Context, id string) (*wire.ShipmentWithHistory, error) {
	d, err := call[wire.ShipmentWithHistory](ctx, c, http.MethodGet, "/shipments/"+url.PathEscape(id), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) CreateShipment(ctx context.Context, req wire.CreateShipmentRequest) (*wire.Shipment, error) {
	s, err := call[wire.Shipment](ctx, c, http.MethodPost, "/shipments", nil, req, nil)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteShipment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/shipments/"+url.PathEscape(id), nil, nil, nil, nil)
}

// AddHistory appends an event. Each call carries a fresh Idempotency-Key so
// a transport-level resend of the same request is not recorded twice.
func (c *Client) AddHistory(ctx context.Context, shipmentID string, req wire.AddHistoryRequest) (*wire.History, error) {
	hdr := http.Header{}
	hdr.Set("Idempotency-Key", uuid.NewString())
	h, err := call[wire.History](ctx, c, http.MethodPost, "/shipments/"+url.PathEscape(shipmentID)+"/history", nil, req, hdr)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// --- catalogue ---

func (c *Client) ListCarriers(ctx context.Context, q wire.ListQuery) (*wire.Page[wire.Carrier], error) {
	p, err := call[wire.Page[wire.Carrier]](ctx, c, http.MethodGet, "/carriers", listValues(q), nil, nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateCarrier(ctx context.Context, req wire.CarrierRequest) (*wire.Carrier, error) {
	v, err := call[wire.Carrier](ctx, c, http.MethodPost, "/carriers", nil, req, nil)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) UpdateCarrier(ctx context.Context, id string, req wire.CarrierRequest) (*wire.Carrier, error) {
	v, err := call[wire.Carrier](ctx, c, http.MethodPatch, "/carriers/"+url.PathEscape(id), nil, req, nil)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) DeleteCarrier(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/carriers/"+url.PathEscape(id), nil, nil, nil, nil)
}

func (c *Client) ListRoutes(ctx context.Context, q wire.ListQuery) (*wire.Page[wire.Route], error) {
	p, err := call[wire.Page[wire.Route]](ctx, c, http.MethodGet, "/routes", listValues(q), nil, nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateRoute(ctx context.Context, req wire.RouteRequest) (*wire.Route, error) {
	v, err := call[wire.Route](ctx, c, http.MethodPost, "/routes", nil, req, nil)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) UpdateRoute(ctx context.Context, id string, req wire.RouteRequest) (*wire.Route, error) {
	v, err := call[wire.Route](ctx, c, http.MethodPatch, "/routes/"+url.PathEscape(id), nil, req, nil)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) DeleteRoute(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/routes/"+url.PathEscape(id), nil, nil, nil, nil)
}

// --- metrics & places ---

// Metrics fetches the dashboard aggregates. The endpoint answers without the
// success envelope.
func (c *Client) Metrics(ctx context.Context) (*wire.DashboardMetrics, error) {
	var m wire.DashboardMetrics
	if err := c.do(ctx, http.MethodGet, "/metrics", nil, nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Directions asks the API for a routed path between two points.
func (c *Client) Directions(ctx context.Context, origin, dest wire.LatLng, mode string) ([]wire.LatLng, error) {
	q := url.Values{}
	q.Set("origin", formatLatLng(origin))
	q.Set("destination", formatLatLng(dest))
	if mode != "" {
		q.Set("mode", mode)
	}
	d, err := call[wire.Directions](ctx, c, http.MethodGet, "/directions", q, nil, nil)
	if err != nil {
		return nil, err
	}
	return d.Path, nil
}

func (c *Client) Autocomplete(ctx context.Context, input string) ([]wire.PlaceSuggestion, error) {
	q := url.Values{}
	q.Set("input", input)
	return call[[]wire.PlaceSuggestion](ctx, c, http.MethodGet, "/places/autocomplete", q, nil, nil)
}

// --- plumbing ---

// call performs a request whose success body is a wire.Envelope[T].
func call[T any](ctx context.Context, c *Client, method, path string, q url.Values, body any, hdr http.Header) (T, error) {
	var env wire.Envelope[T]
	if err := c.do(ctx, method, path, q, body, hdr, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body any, hdr http.Header, out any) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var env wire.Envelope[json.RawMessage]
	msg := http.StatusText(resp.StatusCode)
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		msg = env.Error
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}

func listValues(q wire.ListQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

func formatLatLng(p wire.LatLng) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}
