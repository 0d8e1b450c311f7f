// Package client is the dashboard's view of the analytics API. Every call
// is a single attempt bounded by the configured timeout, and nothing is
// cached between calls.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edyou/engine-dashboard/internal/config"
	"github.com/edyou/engine-dashboard/internal/meter"
	"github.com/edyou/engine-dashboard/internal/models"
)

const (
	DefaultLimit  = 50
	DefaultOffset = 0
	MaxLimit      = 500
	DefaultDays   = 7

	serviceSubject = "dashboard"
	maxErrorBody   = 4 << 10
)

// TokenSource mints bearer tokens for outgoing requests
type TokenSource interface {
	GenerateServiceToken(subject string) (string, error)
}

// Client calls the analytics API
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	meter   *meter.Meter
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the transport. Its Timeout still bounds every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource signs each request with a fresh bearer token
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithMeter records each call
func WithMeter(m *meter.Meter) Option {
	return func(c *Client) { c.meter = m }
}

// New creates a client for the configured backend
func New(cfg config.BackendConfig, opts ...Option) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultBackendURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NormalizePage applies the paging defaults: a non-positive limit becomes
// 50, a negative offset 0, and limit never exceeds 500.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = DefaultOffset
	}
	return limit, offset
}

// MetricsQuery filters the metrics endpoint. An empty TenantName means all
// tenants and is never sent.
type MetricsQuery struct {
	Days       int
	TenantName string
}

// FetchTenants lists tenants with their user counts
func (c *Client) FetchTenants(ctx context.Context) (*models.TenantsResponse, error) {
	var out models.TenantsResponse
	if err := c.get(ctx, "fetch tenants", "tenants", "/api/v1/tenants", nil, &out); err != nil {
		return nil, err
	}
	if out.Tenants == nil {
		out.Tenants = []models.TenantItem{}
	}
	return &out, nil
}

// FetchUsersByTenant lists one page of a tenant's users. tenantName is the
// decoded name; it is escaped here.
func (c *Client) FetchUsersByTenant(ctx context.Context, tenantName, q string, limit, offset int) (*models.UsersResponse, error) {
	limit, offset = NormalizePage(limit, offset)

	query := url.Values{}
	if q != "" {
		query.Set("q", q)
	}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	path := "/api/v1/tenants/" + url.PathEscape(tenantName) + "/users"

	var out models.UsersResponse
	if err := c.get(ctx, "fetch users by tenant", "tenant_users", path, query, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []models.User{}
	}
	return &out, nil
}

// FetchUserOverview returns a user's runs and the expanded latest run
func (c *Client) FetchUserOverview(ctx context.Context, email string) (*models.UserOverviewResponse, error) {
	path := "/api/v1/users/" + url.PathEscape(email) + "/overview"

	var out models.UserOverviewResponse
	if err := c.get(ctx, "fetch user overview", "user_overview", path, nil, &out); err != nil {
		return nil, err
	}
	if out.Runs == nil {
		out.Runs = []models.Run{}
	}
	return &out, nil
}

// FetchMetrics returns KPIs, series and distributions for the window
func (c *Client) FetchMetrics(ctx context.Context, mq MetricsQuery) (*models.MetricsResponse, error) {
	if mq.Days <= 0 {
		mq.Days = DefaultDays
	}

	query := url.Values{}
	query.Set("days", strconv.Itoa(mq.Days))
	if mq.TenantName != "" {
		query.Set("tenantName", mq.TenantName)
	}

	var out models.MetricsResponse
	if err := c.get(ctx, "fetch metrics", "metrics", "/api/v1/metrics", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, op, endpoint, path string, query url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	start := time.Now()
	status, err := c.do(ctx, op, target, out)
	c.meter.ObserveBackend(endpoint, status, time.Since(start))

	if err != nil {
		log.Debug().Err(err).Str("endpoint", endpoint).Msg("Backend request failed")
	}
	return err
}

func (c *Client) do(ctx context.Context, op, target string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, &FetchError{Op: op, URL: target, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	if c.tokens != nil {
		token, err := c.tokens.GenerateServiceToken(serviceSubject)
		if err != nil {
			return 0, &FetchError{Op: op, URL: target, Message: "sign request", Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &FetchError{Op: op, URL: target, Message: "backend unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &FetchError{
			Op:         op,
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, &FetchError{
			Op:         op,
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    "decode response",
			Err:        err,
		}
	}
	return resp.StatusCode, nil
}

// errorMessage prefers the backend's own message ({"error"} or {"detail"})
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	return http.StatusText(status)
}

// FetchError describes a failed backend call
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a backend 404
func IsNotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound
}
