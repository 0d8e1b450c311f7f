package models

import "encoding/json"

// KPI keys returned by the metrics endpoint. *_window values cover the
// requested number of days.
const (
	KPIUsersTotal        = "users_total"
	KPIActiveUsersWindow = "active_users_window"
	KPIRunsTotal         = "runs_total"
	KPIRunsWindow        = "runs_window"
	KPIRunsFailedWindow  = "runs_failed_window"
	KPIEventsTotal       = "events_total"
	KPIEventsWindow      = "events_window"
	KPIDecisionsTotal    = "decisions_total"
	KPIDecisionsWindow   = "decisions_window"
	KPIEmailsSentTotal   = "emails_sent_total"
	KPIEmailsSentWindow  = "emails_sent_window"
)

// MetricsResponse is the aggregate view behind the dashboard page.
// Every count is kept as raw JSON; the backend does not promise numbers.
type MetricsResponse struct {
	KPIs          map[string]json.RawMessage `json:"kpis"`
	Series        MetricsSeries              `json:"series"`
	Distributions MetricsDistributions       `json:"distributions"`
	Filters       MetricsFilters             `json:"filters"`
}

// RawSeriesPoint is one day of a time series as sent by the backend
type RawSeriesPoint struct {
	Day string          `json:"day"`
	C   json.RawMessage `json:"c"`
}

// MetricsSeries holds the per-day series
type MetricsSeries struct {
	RunsByDay      []RawSeriesPoint `json:"runs_by_day"`
	EventsByDay    []RawSeriesPoint `json:"events_by_day"`
	DecisionsByDay []RawSeriesPoint `json:"decisions_by_day"`
}

// RuleCount is the number of decisions a rule produced
type RuleCount struct {
	Rule string          `json:"rule"`
	C    json.RawMessage `json:"c"`
}

// TemplateStatusCount is the number of attempts per template and status
type TemplateStatusCount struct {
	TemplateKey string          `json:"template_key"`
	Status      string          `json:"status"`
	C           json.RawMessage `json:"c"`
}

// MetricsDistributions holds the categorical breakdowns
type MetricsDistributions struct {
	DecisionsByRule          []RuleCount           `json:"decisions_by_rule"`
	AttemptsByTemplateStatus []TemplateStatusCount `json:"attempts_by_template_status"`
}

// MetricsFilters echoes the filters the backend applied
type MetricsFilters struct {
	Days       int     `json:"days"`
	TenantName *string `json:"tenantName"`
}
