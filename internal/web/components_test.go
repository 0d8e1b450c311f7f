package web

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edyou/engine-dashboard/internal/chartdata"
)

var tickRe = regexp.MustCompile(`<text class="tick"[^>]*>([^<]*)</text>`)

func TestKPICardDisplayValue(t *testing.T) {
	require.Equal(t, "12", KPICard{Value: 12.0}.DisplayValue())
	require.Equal(t, "2.50", KPICard{Value: 2.5}.DisplayValue())
	require.Equal(t, "n/a", KPICard{Value: "n/a"}.DisplayValue())
	require.Equal(t, "7", KPICard{Value: int64(7)}.DisplayValue())
	require.Equal(t, "0", KPICard{}.DisplayValue())
}

func TestIntegerScale(t *testing.T) {
	top, step := integerScale(0)
	require.Equal(t, 4, top)
	require.Equal(t, 1, step)

	top, step = integerScale(3)
	require.Equal(t, 4, top)
	require.Equal(t, 1, step)

	top, step = integerScale(10)
	require.Equal(t, 12, top)
	require.Equal(t, 3, step)
}

func TestLineChartSVG(t *testing.T) {
	lc := LineChart{
		Title: "Runs <by> day",
		Color: "#123456",
		Points: []chartdata.SeriesPoint{
			{Day: "2024-03-01", C: 1},
			{Day: "2024-03-02", C: 5},
			{Day: "2024-03-03", C: 2},
		},
	}
	svg := string(lc.SVG())

	require.Contains(t, svg, fmt.Sprintf(`height="%d"`, ChartHeight))
	require.Contains(t, svg, "Runs &lt;by&gt; day")
	require.NotContains(t, svg, "<by>")
	require.Equal(t, 3, strings.Count(svg, "<circle"))
	require.Contains(t, svg, "<title>2024-03-02: 5</title>")
	require.Equal(t, 5, strings.Count(svg, `class="grid"`))

	for _, m := range tickRe.FindAllStringSubmatch(svg, -1) {
		require.NotContains(t, m[1], ".", "tick %q is fractional", m[1])
	}
}

func TestLineChartEmpty(t *testing.T) {
	svg := string(LineChart{Title: "Events"}.SVG())
	require.Contains(t, svg, "No data")
	require.NotContains(t, svg, "<polyline")
}

func TestBarChartRendersEveryLabel(t *testing.T) {
	var bars []chartdata.Bar
	for i := 0; i < 25; i++ {
		bars = append(bars, chartdata.Bar{Name: fmt.Sprintf("tmpl%d:sent", i), Value: float64(i)})
	}
	svg := string(BarChart{Title: "Attempts", Color: "#000", YLabel: "Attempts", Bars: bars}.SVG())

	for _, b := range bars {
		require.Contains(t, svg, ">"+b.Name+"</text>")
	}
	require.Equal(t, 25, strings.Count(svg, `class="xlabel"`))
	require.Contains(t, svg, "rotate(-40")
	require.Contains(t, svg, `class="ylabel"`)
}

func TestBarChartSparseLabelsUpright(t *testing.T) {
	svg := string(BarChart{Title: "Rules", YLabel: "Decisions", Bars: []chartdata.Bar{{Name: "a", Value: 1}}}.SVG())
	require.NotContains(t, svg, "rotate(-40")
	require.Contains(t, svg, ">Decisions</text>")
}
