package chartdata

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edyou/engine-dashboard/internal/models"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"integer", `12`, 12},
		{"float", `2.5`, 2.5},
		{"negative", `-3`, -3},
		{"numeric string", `"42"`, 42},
		{"padded string", `" 7 "`, 7},
		{"empty", ``, 0},
		{"null", `null`, 0},
		{"true", `true`, 0},
		{"false", `false`, 0},
		{"object", `{"c":1}`, 0},
		{"array", `[1]`, 0},
		{"word", `"abc"`, 0},
		{"empty string", `""`, 0},
		{"nan string", `"NaN"`, 0},
		{"inf string", `"Infinity"`, 0},
		{"overflow", `1e400`, 0},
		{"broken string", `"12`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Number(json.RawMessage(tt.raw))
			require.False(t, math.IsNaN(got))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSeriesKeepsOrderAndCoerces(t *testing.T) {
	in := []models.RawSeriesPoint{
		{Day: "2024-01-03", C: json.RawMessage(`5`)},
		{Day: "2024-01-01", C: nil},
		{Day: "2024-01-02", C: json.RawMessage(`"x"`)},
	}

	got := Series(in)
	require.Equal(t, []SeriesPoint{
		{Day: "2024-01-03", C: 5},
		{Day: "2024-01-01", C: 0},
		{Day: "2024-01-02", C: 0},
	}, got)

	require.NotNil(t, Series(nil))
	require.Empty(t, Series(nil))
}

func TestBars(t *testing.T) {
	rules := BarsByRule([]models.RuleCount{
		{Rule: "inactive_7d", C: models.Count(3)},
		{Rule: "low_score", C: json.RawMessage(`null`)},
	})
	require.Equal(t, []Bar{{Name: "inactive_7d", Value: 3}, {Name: "low_score", Value: 0}}, rules)

	attempts := BarsByTemplateStatus([]models.TemplateStatusCount{
		{TemplateKey: "nudge", Status: "sent", C: json.RawMessage(`"4"`)},
		{TemplateKey: "nudge", Status: "failed", C: json.RawMessage(`1`)},
	})
	require.Equal(t, []Bar{{Name: "nudge:sent", Value: 4}, {Name: "nudge:failed", Value: 1}}, attempts)
}

func TestKPI(t *testing.T) {
	kpis := map[string]json.RawMessage{
		models.KPIUsersTotal: json.RawMessage(`120`),
		models.KPIRunsWindow: json.RawMessage(`"9"`),
	}
	require.Equal(t, 120.0, KPI(kpis, models.KPIUsersTotal))
	require.Equal(t, 9.0, KPI(kpis, models.KPIRunsWindow))
	require.Equal(t, 0.0, KPI(kpis, models.KPIEventsTotal))
	require.Equal(t, 0.0, KPI(nil, models.KPIEventsTotal))
}

func TestShape(t *testing.T) {
	var m models.MetricsResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"kpis": {},
		"series": {"runs_by_day": [{"day": "2024-01-01", "c": 2}]},
		"distributions": {"attempts_by_template_status": [{"template_key": "a", "status": "queued", "c": "1"}]},
		"filters": {"days": 7, "tenantName": null}
	}`), &m))

	ds := Shape(&m)
	require.Equal(t, []SeriesPoint{{Day: "2024-01-01", C: 2}}, ds.RunsByDay)
	require.Empty(t, ds.EventsByDay)
	require.Empty(t, ds.DecisionsByRule)
	require.Equal(t, []Bar{{Name: "a:queued", Value: 1}}, ds.AttemptsByStatus)
}
