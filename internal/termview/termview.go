// Package termview renders analytics responses for the terminal.
package termview

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/edyou/engine-dashboard/internal/chartdata"
	"github.com/edyou/engine-dashboard/internal/models"
)

const (
	timeLayout   = "2006-01-02 15:04"
	maxJSONWidth = 60
	sparkWidth   = 30
	kpiBoxWidth  = 22
	kpisPerRow   = 3
	placeholder  = "-"
)

var sparks = []rune("▁▂▃▄▅▆▇█")

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	kpiStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Width(kpiBoxWidth)

	sparkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00F2FF"))

	headerCellStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
	jsonStyle       = lipgloss.NewStyle().MaxWidth(maxJSONWidth)

	toneStyles = map[string]lipgloss.Style{
		"ok":      lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		"bad":     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
		"pending": lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		"muted":   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
)

// Tenants renders the tenant list in backend order
func Tenants(resp *models.TenantsResponse) string {
	rows := make([][]string, 0, len(resp.Tenants))
	for _, t := range resp.Tenants {
		name := t.TenantName
		if name == "" {
			name = "(none)"
		}
		rows = append(rows, []string{name, strconv.FormatInt(t.Count, 10)})
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Tenants"),
		grid([]string{"Tenant", "Users"}, rows, "No tenants found"),
		labelStyle.Render("total users: ")+valueStyle.Render(strconv.FormatInt(resp.TotalUsers, 10)),
	)
}

// Users renders one page of a tenant's users
func Users(tenantName string, offset int, resp *models.UsersResponse) string {
	rows := make([][]string, 0, len(resp.Items))
	for _, u := range resp.Items {
		rows = append(rows, []string{u.Email, u.DisplayName(), formatTime(u.CreatedAt)})
	}

	summary := fmt.Sprintf("count=%d total=%d offset=%d", resp.Count, resp.Total, offset)
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(tenantName+" users"),
		grid([]string{"Email", "Name", "Created"}, rows, "No users found"),
		labelStyle.Render(summary),
	)
}

// Overview renders a user's runs and, when there is one, the latest run
func Overview(resp *models.UserOverviewResponse) string {
	u := resp.User
	sections := []string{
		titleStyle.Render(u.Email),
		field("Name", u.DisplayName()) + "  " + field("Tenant", u.TenantName) + "  " + field("Created", formatTime(u.CreatedAt)),
	}

	runRows := make([][]string, 0, len(resp.Runs))
	for _, r := range resp.Runs {
		runRows = append(runRows, []string{r.ID.String(), tone(r.Status.Tone(), string(r.Status)), formatTime(r.StartedAt), formatTimePtr(r.FinishedAt)})
	}
	sections = append(sections, "", labelStyle.Render("Runs"),
		grid([]string{"Run", "Status", "Started", "Finished"}, runRows, "No runs"))

	if resp.LatestRun != nil {
		sections = append(sections, "", titleStyle.Render("Latest run "+resp.LatestRun.ID.String()))

		events := make([][]string, 0, len(resp.LatestRunEvents))
		for _, e := range resp.LatestRunEvents {
			events = append(events, []string{formatTime(e.OccurredAt), e.EventType, jsonCell(e.Payload)})
		}
		sections = append(sections, labelStyle.Render("Events"),
			grid([]string{"When", "Type", "Payload"}, events, "No events"))

		decisions := make([][]string, 0, len(resp.LatestRunDecisions))
		for _, d := range resp.LatestRunDecisions {
			decisions = append(decisions, []string{d.Rule, d.Decision, jsonCell(d.Rationale)})
		}
		sections = append(sections, labelStyle.Render("Decisions"),
			grid([]string{"Rule", "Decision", "Rationale"}, decisions, "No decisions"))

		attempts := make([][]string, 0, len(resp.LatestRunEmailAttempts))
		for _, a := range resp.LatestRunEmailAttempts {
			attempts = append(attempts, []string{a.TemplateKey, a.Stage, tone(a.Status.Tone(), string(a.Status)), deref(a.Reason)})
		}
		sections = append(sections, labelStyle.Render("Email attempts"),
			grid([]string{"Template", "Stage", "Status", "Reason"}, attempts, "No email attempts"))

		features := make([][]string, 0, len(resp.LatestRunFeatures))
		for _, f := range resp.LatestRunFeatures {
			features = append(features, []string{f.Name, jsonCell(f.Value)})
		}
		sections = append(sections, labelStyle.Render("Features"),
			grid([]string{"Name", "Value"}, features, "No features"))
	}

	if len(resp.Suppressions) > 0 {
		rows := make([][]string, 0, len(resp.Suppressions))
		for _, s := range resp.Suppressions {
			template := "all templates"
			if !s.Global() {
				template = *s.TemplateKey
			}
			rows = append(rows, []string{template, deref(s.Reason), formatTime(s.CreatedAt)})
		}
		sections = append(sections, "", labelStyle.Render("Suppressions"),
			grid([]string{"Template", "Reason", "Since"}, rows, ""))
	}

	if len(resp.AutomationTriggers) > 0 {
		rows := make([][]string, 0, len(resp.AutomationTriggers))
		for _, t := range resp.AutomationTriggers {
			rows = append(rows, []string{t.TriggerType, formatTimePtr(t.NextFireAt), formatTimePtr(t.LastFiredAt), jsonCell(t.Params)})
		}
		sections = append(sections, "", labelStyle.Render("Automation triggers"),
			grid([]string{"Type", "Next fire", "Last fired", "Params"}, rows, ""))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Metrics renders KPI boxes, one sparkline per daily series and the
// distribution tables
func Metrics(resp *models.MetricsResponse) string {
	ds := chartdata.Shape(resp)

	title := fmt.Sprintf("Metrics, last %d days", resp.Filters.Days)
	if resp.Filters.TenantName != nil && *resp.Filters.TenantName != "" {
		title += " for " + *resp.Filters.TenantName
	}

	kpis := []struct {
		label string
		key   string
		hint  string
	}{
		{"Users", models.KPIUsersTotal, models.KPIActiveUsersWindow},
		{"Runs", models.KPIRunsTotal, models.KPIRunsWindow},
		{"Failed runs", models.KPIRunsFailedWindow, ""},
		{"Events", models.KPIEventsTotal, models.KPIEventsWindow},
		{"Decisions", models.KPIDecisionsTotal, models.KPIDecisionsWindow},
		{"Emails sent", models.KPIEmailsSentTotal, models.KPIEmailsSentWindow},
	}
	boxes := make([]string, 0, len(kpis))
	for _, k := range kpis {
		hint := ""
		if k.hint != "" {
			hint = fmt.Sprintf("last %dd: %s", resp.Filters.Days, formatCount(chartdata.KPI(resp.KPIs, k.hint)))
		}
		boxes = append(boxes, KPIBox(k.label, formatCount(chartdata.KPI(resp.KPIs, k.key)), hint))
	}
	var kpiRows []string
	for i := 0; i < len(boxes); i += kpisPerRow {
		end := i + kpisPerRow
		if end > len(boxes) {
			end = len(boxes)
		}
		kpiRows = append(kpiRows, lipgloss.JoinHorizontal(lipgloss.Top, boxes[i:end]...))
	}

	series := [][]string{
		seriesRow("Runs", ds.RunsByDay),
		seriesRow("Events", ds.EventsByDay),
		seriesRow("Decisions", ds.DecisionsByDay),
	}

	sections := []string{titleStyle.Render(title)}
	sections = append(sections, kpiRows...)
	sections = append(sections,
		"",
		grid([]string{"Series", "Trend", "Total"}, series, ""),
		"",
		labelStyle.Render("Decisions by rule"),
		grid([]string{"Rule", "Count"}, barRows(ds.DecisionsByRule), "No decisions"),
		labelStyle.Render("Email attempts by template:status"),
		grid([]string{"Template:Status", "Count"}, barRows(ds.AttemptsByStatus), "No email attempts"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// KPIBox is a bordered label, value and optional hint
func KPIBox(label, value, hint string) string {
	lines := []string{labelStyle.Render(label), valueStyle.Render(value)}
	if hint != "" {
		lines = append(lines, labelStyle.Render(hint))
	}
	return kpiStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Sparkline resamples points to at most width cells. Values are scaled
// against the series peak; an all-zero series is a flat baseline.
func Sparkline(points []chartdata.SeriesPoint, width int) string {
	if width <= 0 {
		return ""
	}
	if len(points) == 0 {
		return strings.Repeat("─", width)
	}
	if len(points) < width {
		width = len(points)
	}

	peak := 0.0
	for _, p := range points {
		if p.C > peak {
			peak = p.C
		}
	}

	var b strings.Builder
	step := float64(len(points)) / float64(width)
	for i := 0; i < width; i++ {
		idx := int(float64(i) * step)
		if idx >= len(points) {
			idx = len(points) - 1
		}
		level := 0
		if peak > 0 && points[idx].C > 0 {
			level = int(points[idx].C / peak * float64(len(sparks)-1))
		}
		if level >= len(sparks) {
			level = len(sparks) - 1
		}
		b.WriteRune(sparks[level])
	}
	return b.String()
}

func seriesRow(name string, points []chartdata.SeriesPoint) []string {
	total := 0.0
	for _, p := range points {
		total += p.C
	}
	return []string{name, sparkStyle.Render(Sparkline(points, sparkWidth)), formatCount(total)}
}

func barRows(bars []chartdata.Bar) [][]string {
	rows := make([][]string, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, []string{b.Name, formatCount(b.Value)})
	}
	return rows
}

// grid renders a bordered table, or the placeholder when there are no rows
func grid(headers []string, rows [][]string, empty string) string {
	if len(rows) == 0 {
		if empty == "" {
			empty = placeholder
		}
		rows = [][]string{{empty}}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(labelStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func field(label, value string) string {
	if value == "" {
		value = placeholder
	}
	return labelStyle.Render(label+": ") + value
}

func tone(name, text string) string {
	if s, ok := toneStyles[name]; ok {
		return s.Render(text)
	}
	return text
}

func jsonCell(v models.JSON) string {
	if v.IsNull() {
		return ""
	}
	return jsonStyle.Render(v.String())
}

func formatCount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
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
