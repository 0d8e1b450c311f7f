package meter

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveBackend(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBackend("tenants", 200, 10*time.Millisecond)
	m.ObserveBackend("tenants", 200, 10*time.Millisecond)
	m.ObserveBackend("metrics", 0, time.Second)

	require.Equal(t, 2.0, testutil.ToFloat64(m.backendCnt.WithLabelValues("tenants", "2xx")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.backendCnt.WithLabelValues("metrics", "error")))
}

func TestRunNotificationExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RunNotification("failed")
	m.RunNotification("")

	expected := `
# HELP edyou_run_notifications_total Run notifications received from NATS
# TYPE edyou_run_notifications_total counter
edyou_run_notifications_total{status="failed"} 1
edyou_run_notifications_total{status="unknown"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "edyou_run_notifications_total"))
}

func TestNilMeter(t *testing.T) {
	var m *Meter
	m.ObserveBackend("tenants", 500, time.Millisecond)
	m.ObservePage("home", 200)
	m.ObserveAPI("/api/v1/tenants", 200, time.Millisecond)
	m.RunNotification("success")
}

func TestStatusLabel(t *testing.T) {
	tests := map[int]string{0: "error", 200: "2xx", 204: "2xx", 302: "other", 404: "4xx", 502: "5xx"}
	for code, want := range tests {
		require.Equal(t, want, statusLabel(code), "code %d", code)
	}
}
