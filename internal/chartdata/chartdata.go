// Package chartdata turns raw metrics payloads into chart-ready values.
// Counts arrive as untyped JSON and are coerced so that a chart never sees
// a missing or non-finite value.
package chartdata

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/edyou/engine-dashboard/internal/models"
)

// NameSeparator joins the discriminating fields of a bar name
const NameSeparator = ":"

// SeriesPoint is one day of a time series
type SeriesPoint struct {
	Day string  `json:"day"`
	C   float64 `json:"c"`
}

// Bar is one category of a bar chart
type Bar struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Number coerces a raw JSON count. Numbers and numeric strings yield their
// value; everything else, including NaN and infinities, yields 0.
func Number(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		return parseFinite(strings.TrimSpace(s))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return parseFinite(string(raw))
	default:
		return 0
	}
}

func parseFinite(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Series coerces a backend series, keeping its order
func Series(points []models.RawSeriesPoint) []SeriesPoint {
	out := make([]SeriesPoint, 0, len(points))
	for _, p := range points {
		out = append(out, SeriesPoint{Day: p.Day, C: Number(p.C)})
	}
	return out
}

// JoinName builds a bar name from its discriminating fields
func JoinName(parts ...string) string {
	return strings.Join(parts, NameSeparator)
}

// BarsByRule names each bar after its rule
func BarsByRule(rows []models.RuleCount) []Bar {
	out := make([]Bar, 0, len(rows))
	for _, r := range rows {
		out = append(out, Bar{Name: r.Rule, Value: Number(r.C)})
	}
	return out
}

// BarsByTemplateStatus names each bar template_key:status so every
// combination is its own category
func BarsByTemplateStatus(rows []models.TemplateStatusCount) []Bar {
	out := make([]Bar, 0, len(rows))
	for _, r := range rows {
		out = append(out, Bar{Name: JoinName(r.TemplateKey, r.Status), Value: Number(r.C)})
	}
	return out
}

// KPI returns the coerced value of a KPI, 0 when absent
func KPI(kpis map[string]json.RawMessage, key string) float64 {
	return Number(kpis[key])
}

// Dataset is everything the dashboard charts need from one metrics response
type Dataset struct {
	RunsByDay        []SeriesPoint
	EventsByDay      []SeriesPoint
	DecisionsByDay   []SeriesPoint
	DecisionsByRule  []Bar
	AttemptsByStatus []Bar
}

// Shape converts a whole metrics response
func Shape(m *models.MetricsResponse) Dataset {
	return Dataset{
		RunsByDay:        Series(m.Series.RunsByDay),
		EventsByDay:      Series(m.Series.EventsByDay),
		DecisionsByDay:   Series(m.Series.DecisionsByDay),
		DecisionsByRule:  BarsByRule(m.Distributions.DecisionsByRule),
		AttemptsByStatus: BarsByTemplateStatus(m.Distributions.AttemptsByTemplateStatus),
	}
}
