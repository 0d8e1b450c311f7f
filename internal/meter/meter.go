package meter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Meter holds the process collectors. A nil *Meter records nothing.
type Meter struct {
	backendCnt *prometheus.CounterVec
	backendLat *prometheus.HistogramVec
	pageCnt    *prometheus.CounterVec
	apiCnt     *prometheus.CounterVec
	apiLat     *prometheus.HistogramVec
	runNotify  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Meter {
	backendCnt := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edyou_dashboard_backend_requests_total",
			Help: "Requests issued by the dashboard to the analytics API",
		},
		[]string{"endpoint", "status"},
	)
	backendLat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edyou_dashboard_backend_request_duration_seconds",
			Help:    "Analytics API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	pageCnt := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edyou_dashboard_page_renders_total",
			Help: "Dashboard page renders by page and outcome",
		},
		[]string{"page", "status"},
	)
	apiCnt := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edyou_api_requests_total",
			Help: "Requests served by the analytics API",
		},
		[]string{"route", "status"},
	)
	apiLat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edyou_api_request_duration_seconds",
			Help:    "Analytics API handler latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	runNotify := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edyou_run_notifications_total",
			Help: "Run notifications received from NATS",
		},
		[]string{"status"},
	)
	if reg != nil {
		reg.MustRegister(backendCnt, backendLat, pageCnt, apiCnt, apiLat, runNotify)
	}
	return &Meter{
		backendCnt: backendCnt,
		backendLat: backendLat,
		pageCnt:    pageCnt,
		apiCnt:     apiCnt,
		apiLat:     apiLat,
		runNotify:  runNotify,
	}
}

// ObserveBackend records one analytics API call. status 0 means the call
// never produced a response.
func (m *Meter) ObserveBackend(endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.backendCnt.WithLabelValues(endpoint, statusLabel(status)).Inc()
	m.backendLat.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObservePage records one page render
func (m *Meter) ObservePage(page string, status int) {
	if m == nil {
		return
	}
	m.pageCnt.WithLabelValues(page, statusLabel(status)).Inc()
}

// ObserveAPI records one request served by the analytics API
func (m *Meter) ObserveAPI(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.apiCnt.WithLabelValues(route, statusLabel(status)).Inc()
	m.apiLat.WithLabelValues(route).Observe(d.Seconds())
}

// RunNotification counts a run notification by run status
func (m *Meter) RunNotification(status string) {
	if m == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	m.runNotify.WithLabelValues(status).Inc()
}

func statusLabel(code int) string {
	if code == 0 {
		return "error"
	}
	if code >= 200 && code < 300 {
		return "2xx"
	}
	if code >= 400 && code < 500 {
		return "4xx"
	}
	if code >= 500 {
		return "5xx"
	}
	return "other"
}
