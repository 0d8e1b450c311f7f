package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/edyou/engine-dashboard/internal/config"
	"github.com/edyou/engine-dashboard/internal/meter"
)

type recorded struct {
	path    string
	query   map[string][]string
	headers http.Header
}

func newTestClient(t *testing.T, status int, body string, opts ...Option) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.EscapedPath()
		rec.query = r.URL.Query()
		rec.headers = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return New(config.BackendConfig{BaseURL: srv.URL + "/", Timeout: time.Second}, opts...), rec
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{-5, -1, 50, 0},
		{20, 40, 20, 40},
		{10000, 3, 500, 3},
		{1, -100, 1, 0},
	}
	for _, tt := range tests {
		l, o := NormalizePage(tt.limit, tt.offset)
		require.Equal(t, tt.wantLimit, l, "limit for %d", tt.limit)
		require.Equal(t, tt.wantOffset, o, "offset for %d", tt.offset)
	}
}

func TestFetchTenants(t *testing.T) {
	c, rec := newTestClient(t, 200, `{"tenants":[{"tenantName":"acme","count":3},{"tenantName":"beta","count":1}],"total_users":4}`)

	got, err := c.FetchTenants(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/api/v1/tenants", rec.path)
	require.Equal(t, "no-cache", rec.headers.Get("Cache-Control"))
	require.Empty(t, rec.headers.Get("Authorization"))
	require.Len(t, got.Tenants, 2)
	require.Equal(t, "acme", got.Tenants[0].TenantName)
	require.EqualValues(t, 4, got.TotalUsers)
}

func TestFetchUsersByTenantEscapesAndDefaults(t *testing.T) {
	c, rec := newTestClient(t, 200, `{"items":null,"count":0,"total":0}`)

	got, err := c.FetchUsersByTenant(context.Background(), "Acme Co/East", "", -1, -10)
	require.NoError(t, err)
	require.Equal(t, "/api/v1/tenants/Acme%20Co%2FEast/users", rec.path)
	require.Equal(t, []string{"50"}, rec.query["limit"])
	require.Equal(t, []string{"0"}, rec.query["offset"])
	require.NotContains(t, rec.query, "q")
	require.NotNil(t, got.Items)
	require.Empty(t, got.Items)
}

func TestFetchUsersByTenantSendsQuery(t *testing.T) {
	c, rec := newTestClient(t, 200, `{"items":[{"id":"6f1c2b1e-0e53-4c4e-9d0c-2f3f7c1d2a11","email":"a@x.io","tenantName":"acme","created_at":"2024-01-01T00:00:00Z"}],"count":1,"total":9}`)

	got, err := c.FetchUsersByTenant(context.Background(), "acme", "jo", 10, 20)
	require.NoError(t, err)
	require.Equal(t, []string{"jo"}, rec.query["q"])
	require.Equal(t, []string{"10"}, rec.query["limit"])
	require.Equal(t, []string{"20"}, rec.query["offset"])
	require.Len(t, got.Items, 1)
	require.EqualValues(t, 9, got.Total)
}

func TestFetchMetricsTenantParameter(t *testing.T) {
	c, rec := newTestClient(t, 200, `{"kpis":{},"series":{},"distributions":{},"filters":{"days":14,"tenantName":"acme"}}`)

	_, err := c.FetchMetrics(context.Background(), MetricsQuery{Days: 14, TenantName: "acme"})
	require.NoError(t, err)
	require.Equal(t, []string{"acme"}, rec.query["tenantName"])
	require.Equal(t, []string{"14"}, rec.query["days"])

	_, err = c.FetchMetrics(context.Background(), MetricsQuery{Days: 7})
	require.NoError(t, err)
	require.NotContains(t, rec.query, "tenantName")
	require.Equal(t, []string{"7"}, rec.query["days"])

	_, err = c.FetchMetrics(context.Background(), MetricsQuery{})
	require.NoError(t, err)
	require.Equal(t, []string{"7"}, rec.query["days"])
}

func TestFetchUserOverviewNoRuns(t *testing.T) {
	c, rec := newTestClient(t, 200, `{"user":{"id":"6f1c2b1e-0e53-4c4e-9d0c-2f3f7c1d2a11","email":"a+b@x.io","tenantName":"acme","created_at":"2024-01-01T00:00:00Z"},"runs":[],"latest_run":null}`)

	got, err := c.FetchUserOverview(context.Background(), "a+b@x.io")
	require.NoError(t, err)
	require.Equal(t, "/api/v1/users/a+b@x.io/overview", rec.path)
	require.Nil(t, got.LatestRun)
	require.Empty(t, got.Runs)
	require.Nil(t, got.LatestRunEvents)
}

func TestFetchErrorOnStatus(t *testing.T) {
	c, _ := newTestClient(t, 500, `{"error":"database down"}`)

	_, err := c.FetchTenants(context.Background())
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, 500, fe.StatusCode)
	require.Equal(t, "database down", fe.Message)
	require.False(t, IsNotFound(err))
}

func TestFetchErrorNotFound(t *testing.T) {
	c, _ := newTestClient(t, 404, `{"detail":"user not found"}`)

	_, err := c.FetchUserOverview(context.Background(), "ghost@x.io")
	require.True(t, IsNotFound(err))
	require.Contains(t, err.Error(), "user not found")
}

func TestFetchErrorOnBadBody(t *testing.T) {
	c, _ := newTestClient(t, 200, `<html>`)

	_, err := c.FetchTenants(context.Background())
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "decode response", fe.Message)
	require.NotNil(t, errors.Unwrap(err))
}

func TestFetchErrorUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	reg := prometheus.NewRegistry()
	c := New(config.BackendConfig{BaseURL: url, Timeout: time.Second}, WithMeter(meter.New(reg)))

	_, err := c.FetchTenants(context.Background())
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	require.Zero(t, fe.StatusCode)
	require.True(t, strings.HasPrefix(err.Error(), "fetch tenants"))

	count, err := testutil.GatherAndCount(reg, "edyou_dashboard_backend_requests_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

type staticTokens string

func (s staticTokens) GenerateServiceToken(string) (string, error) { return string(s), nil }

func TestBearerToken(t *testing.T) {
	c, rec := newTestClient(t, 200, `{"tenants":[],"total_users":0}`, WithTokenSource(staticTokens("abc")))

	got, err := c.FetchTenants(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer abc", rec.headers.Get("Authorization"))
	require.NotNil(t, got.Tenants)
}
