package web

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/edyou/engine-dashboard/internal/chartdata"
	"github.com/edyou/engine-dashboard/internal/models"
)

const timeLayout = "2006-01-02 15:04"

// view wraps page data with the layout fields
type view struct {
	Title  string
	Active string
	Theme  Theme
	Data   interface{}
}

type homePage struct {
	BackendURL string
}

type tenantRow struct {
	Name  string
	Count int64
	Href  string
}

type tenantsPage struct {
	Rows       []tenantRow
	TotalUsers int64
}

func newTenantsPage(resp *models.TenantsResponse) tenantsPage {
	p := tenantsPage{
		Rows:       make([]tenantRow, 0, len(resp.Tenants)),
		TotalUsers: resp.TotalUsers,
	}
	for _, t := range resp.Tenants {
		p.Rows = append(p.Rows, tenantRow{Name: t.TenantName, Count: t.Count, Href: tenantUsersPath(t.TenantName)})
	}
	return p
}

type userRow struct {
	Email      string
	Name       string
	TenantName string
	Created    string
	Href       string
}

type usersPage struct {
	TenantName string
	Action     string
	Q          string
	Limit      int
	Offset     int
	Count      int
	Total      int64
	Columns    int
	Rows       []userRow
	PrevURL    string
	NextURL    string
}

// usersColumns is the number of columns in the users table
const usersColumns = 4

func newUsersPage(tenantName, q string, limit, offset int, resp *models.UsersResponse) usersPage {
	p := usersPage{
		TenantName: tenantName,
		Action:     tenantUsersPath(tenantName),
		Q:          q,
		Limit:      limit,
		Offset:     offset,
		Count:      len(resp.Items),
		Total:      resp.Total,
		Columns:    usersColumns,
		Rows:       make([]userRow, 0, len(resp.Items)),
	}
	for _, u := range resp.Items {
		p.Rows = append(p.Rows, userRow{
			Email:      u.Email,
			Name:       u.DisplayName(),
			TenantName: u.TenantName,
			Created:    formatTime(u.CreatedAt),
			Href:       userPath(u.Email),
		})
	}

	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		p.PrevURL = p.pageURL(prev)
	}
	if int64(offset+p.Count) < resp.Total && p.Count > 0 {
		p.NextURL = p.pageURL(offset + limit)
	}
	return p
}

func (p usersPage) pageURL(offset int) string {
	q := url.Values{}
	if p.Q != "" {
		q.Set("q", p.Q)
	}
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(offset))
	return p.Action + "?" + q.Encode()
}

type runRow struct {
	ID       string
	Status   string
	Tone     string
	Started  string
	Finished string
	Context  string
}

type jsonRow struct {
	Type string
	At   string
	JSON string
}

type decisionRow struct {
	Rule     string
	Decision string
	At       string
	JSON     string
}

type attemptRow struct {
	Template  string
	Stage     string
	Status    string
	Tone      string
	Reason    string
	Scheduled string
	Sent      string
}

type featureRow struct {
	Name string
	At   string
	JSON string
}

type latestRun struct {
	ID        string
	Status    string
	Tone      string
	Events    []jsonRow
	Decisions []decisionRow
	Attempts  []attemptRow
	Features  []featureRow
}

type suppressionRow struct {
	Template string
	Reason   string
	Since    string
}

type triggerRow struct {
	Type   string
	Active bool
	Next   string
	Last   string
	JSON   string
}

type overviewPage struct {
	Email        string
	Name         string
	TenantName   string
	TenantHref   string
	Runs         []runRow
	Latest       *latestRun
	Suppressions []suppressionRow
	Triggers     []triggerRow
}

func newOverviewPage(resp *models.UserOverviewResponse) overviewPage {
	p := overviewPage{
		Email:      resp.User.Email,
		Name:       resp.User.DisplayName(),
		TenantName: resp.User.TenantName,
		TenantHref: tenantUsersPath(resp.User.TenantName),
		Runs:       make([]runRow, 0, len(resp.Runs)),
	}

	for _, r := range resp.Runs {
		p.Runs = append(p.Runs, runRow{
			ID:       r.ID.String(),
			Status:   string(r.Status),
			Tone:     r.Status.Tone(),
			Started:  formatTime(r.StartedAt),
			Finished: formatTimePtr(r.FinishedAt),
			Context:  TruncateJSON(r.Context),
		})
	}

	if run := resp.LatestRun; run != nil {
		latest := &latestRun{
			ID:     run.ID.String(),
			Status: string(run.Status),
			Tone:   run.Status.Tone(),
		}
		for _, e := range resp.LatestRunEvents {
			latest.Events = append(latest.Events, jsonRow{Type: e.EventType, At: formatTime(e.OccurredAt), JSON: TruncateJSON(e.Payload)})
		}
		for _, d := range resp.LatestRunDecisions {
			latest.Decisions = append(latest.Decisions, decisionRow{Rule: d.Rule, Decision: d.Decision, At: formatTime(d.DecidedAt), JSON: TruncateJSON(d.Rationale)})
		}
		for _, a := range resp.LatestRunEmailAttempts {
			latest.Attempts = append(latest.Attempts, attemptRow{
				Template:  a.TemplateKey,
				Stage:     a.Stage,
				Status:    string(a.Status),
				Tone:      a.Status.Tone(),
				Reason:    deref(a.Reason),
				Scheduled: formatTimePtr(a.ScheduledAt),
				Sent:      formatTimePtr(a.SentAt),
			})
		}
		for _, f := range resp.LatestRunFeatures {
			latest.Features = append(latest.Features, featureRow{Name: f.Name, At: formatTime(f.ComputedAt), JSON: TruncateJSON(f.Value)})
		}
		p.Latest = latest
	}

	for _, s := range resp.Suppressions {
		tmpl := "all templates"
		if !s.Global() {
			tmpl = *s.TemplateKey
		}
		p.Suppressions = append(p.Suppressions, suppressionRow{Template: tmpl, Reason: deref(s.Reason), Since: formatTime(s.CreatedAt)})
	}
	for _, t := range resp.AutomationTriggers {
		p.Triggers = append(p.Triggers, triggerRow{
			Type:   t.TriggerType,
			Active: t.Active,
			Next:   formatTimePtr(t.NextFireAt),
			Last:   formatTimePtr(t.LastFiredAt),
			JSON:   TruncateJSON(t.Params),
		})
	}
	return p
}

type option struct {
	Value    string
	Selected bool
}

type dashboardPage struct {
	Days          int
	TenantName    string
	DayOptions    []option
	TenantOptions []option
	Cards         []KPICard
	Lines         []LineChart
	Bars          []BarChart
}

func newDashboardPage(theme Theme, days int, tenantName string, tenants *models.TenantsResponse, metrics *models.MetricsResponse) dashboardPage {
	p := dashboardPage{Days: days, TenantName: tenantName}
	for _, d := range AllowedDays {
		p.DayOptions = append(p.DayOptions, option{Value: strconv.Itoa(d), Selected: d == days})
	}
	for _, t := range tenants.Tenants {
		p.TenantOptions = append(p.TenantOptions, option{Value: t.TenantName, Selected: t.TenantName == tenantName})
	}

	kpi := func(key string) float64 { return chartdata.KPI(metrics.KPIs, key) }
	hint := func(key string) string {
		return fmt.Sprintf("last %dd: %s", days, formatCount(kpi(key)))
	}
	p.Cards = []KPICard{
		{Label: "Users", Value: kpi(models.KPIUsersTotal), Hint: fmt.Sprintf("active last %dd: %s", days, formatCount(kpi(models.KPIActiveUsersWindow)))},
		{Label: "Runs", Value: kpi(models.KPIRunsTotal), Hint: hint(models.KPIRunsWindow)},
		{Label: "Failed runs", Value: kpi(models.KPIRunsFailedWindow), Hint: fmt.Sprintf("in the last %dd", days)},
		{Label: "Events", Value: kpi(models.KPIEventsTotal), Hint: hint(models.KPIEventsWindow)},
		{Label: "Decisions", Value: kpi(models.KPIDecisionsTotal), Hint: hint(models.KPIDecisionsWindow)},
		{Label: "Emails sent", Value: kpi(models.KPIEmailsSentTotal), Hint: hint(models.KPIEmailsSentWindow)},
	}

	ds := chartdata.Shape(metrics)
	p.Lines = []LineChart{
		{Title: "Runs by day", Color: theme.Primary(), Points: ds.RunsByDay},
		{Title: "Events by day", Color: theme.Secondary(), Points: ds.EventsByDay},
		{Title: "Decisions by day", Color: theme.Primary(), Points: ds.DecisionsByDay},
	}
	p.Bars = []BarChart{
		{Title: "Decisions by rule", Color: theme.Primary(), YLabel: "Decisions", Bars: ds.DecisionsByRule},
		{Title: "Email attempts by template:status", Color: theme.Secondary(), YLabel: "Attempts", Bars: ds.AttemptsByStatus},
	}
	return p
}

type errorPage struct {
	Heading string
	Message string
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
