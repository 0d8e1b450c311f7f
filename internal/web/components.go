package web

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/edyou/engine-dashboard/internal/chartdata"
)

// ChartHeight is the fixed height of every chart
const ChartHeight = 240

const (
	chartWidth   = 640
	marginLeft   = 56
	marginRight  = 16
	marginTop    = 32
	marginBottom = 36
	yTicks       = 4
	denseBars    = 6
)

// KPICard is a label, a primary value and an optional hint
type KPICard struct {
	Label string
	Value interface{}
	Hint  string
}

// DisplayValue formats the primary value. Strings are shown as given.
func (k KPICard) DisplayValue() string {
	switch v := k.Value.(type) {
	case nil:
		return "0"
	case string:
		return v
	case float64:
		return formatCount(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
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

// LineChart is a titled daily series
type LineChart struct {
	Title  string
	Color  string
	Points []chartdata.SeriesPoint
}

// BarChart is a titled category chart. Every label is drawn.
type BarChart struct {
	Title  string
	Color  string
	YLabel string
	Bars   []chartdata.Bar
}

// integerScale picks a y maximum divisible into yTicks whole-number steps
func integerScale(peak float64) (top, step int) {
	step = int(math.Ceil(peak / yTicks))
	if step < 1 {
		step = 1
	}
	return step * yTicks, step
}

type svgCanvas struct {
	b       strings.Builder
	plotW   float64
	plotH   float64
	top     int
	scaleBy float64
}

func newCanvas(title string, peak float64, bottom int) *svgCanvas {
	c := &svgCanvas{}
	c.plotW = float64(chartWidth - marginLeft - marginRight)
	c.plotH = float64(ChartHeight - marginTop - bottom)
	var step int
	c.top, step = integerScale(peak)
	c.scaleBy = c.plotH / float64(c.top)

	fmt.Fprintf(&c.b, `<svg class="chart" viewBox="0 0 %d %d" height="%d" role="img" aria-label="%s" xmlns="http://www.w3.org/2000/svg">`,
		chartWidth, ChartHeight, ChartHeight, esc(title))

	for i := 0; i <= yTicks; i++ {
		v := i * step
		y := c.y(float64(v))
		fmt.Fprintf(&c.b, `<line class="grid" x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="currentColor" stroke-opacity="0.15"/>`,
			marginLeft, y, chartWidth-marginRight, y)
		fmt.Fprintf(&c.b, `<text class="tick" x="%d" y="%.1f" text-anchor="end" font-size="11">%d</text>`,
			marginLeft-6, y+4, v)
	}
	return c
}

func (c *svgCanvas) y(v float64) float64 {
	return float64(marginTop) + c.plotH - v*c.scaleBy
}

func (c *svgCanvas) baseline() float64 {
	return float64(marginTop) + c.plotH
}

func (c *svgCanvas) legend(title, color string) {
	fmt.Fprintf(&c.b, `<rect x="%d" y="10" width="12" height="12" fill="%s"/>`, marginLeft, esc(color))
	fmt.Fprintf(&c.b, `<text class="legend" x="%d" y="20" font-size="12">%s</text>`, marginLeft+18, esc(title))
}

func (c *svgCanvas) empty() {
	fmt.Fprintf(&c.b, `<text class="empty" x="%d" y="%.1f" text-anchor="middle" font-size="13">No data</text>`,
		chartWidth/2, float64(marginTop)+c.plotH/2)
}

func (c *svgCanvas) done() template.HTML {
	c.b.WriteString(`</svg>`)
	// every interpolated string went through esc
	return template.HTML(c.b.String())
}

// SVG renders the chart
func (lc LineChart) SVG() template.HTML {
	peak := 0.0
	for _, p := range lc.Points {
		peak = math.Max(peak, p.C)
	}

	bottom := marginBottom
	rotate := len(lc.Points) > 10
	if rotate {
		bottom += 28
	}
	c := newCanvas(lc.Title, peak, bottom)
	c.legend(lc.Title, lc.Color)

	if len(lc.Points) == 0 {
		c.empty()
		return c.done()
	}

	x := func(i int) float64 {
		if len(lc.Points) == 1 {
			return float64(marginLeft) + c.plotW/2
		}
		return float64(marginLeft) + float64(i)*c.plotW/float64(len(lc.Points)-1)
	}

	coords := make([]string, 0, len(lc.Points))
	for i, p := range lc.Points {
		coords = append(coords, fmt.Sprintf("%.1f,%.1f", x(i), c.y(math.Max(p.C, 0))))
	}
	fmt.Fprintf(&c.b, `<polyline fill="none" stroke="%s" stroke-width="2" points="%s"/>`, esc(lc.Color), strings.Join(coords, " "))

	for i, p := range lc.Points {
		fmt.Fprintf(&c.b, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>%s: %s</title></circle>`,
			x(i), c.y(math.Max(p.C, 0)), esc(lc.Color), esc(p.Day), formatCount(p.C))
		axisLabel(c, x(i), p.Day, rotate)
	}
	return c.done()
}

// SVG renders the chart
func (bc BarChart) SVG() template.HTML {
	peak := 0.0
	for _, b := range bc.Bars {
		peak = math.Max(peak, b.Value)
	}

	bottom := marginBottom
	rotate := len(bc.Bars) > denseBars
	if rotate {
		bottom += 56
	}
	c := newCanvas(bc.Title, peak, bottom)
	c.legend(bc.Title, bc.Color)

	if bc.YLabel != "" {
		mid := float64(marginTop) + c.plotH/2
		fmt.Fprintf(&c.b, `<text class="ylabel" x="14" y="%.1f" transform="rotate(-90 14 %.1f)" text-anchor="middle" font-size="11">%s</text>`,
			mid, mid, esc(bc.YLabel))
	}

	if len(bc.Bars) == 0 {
		c.empty()
		return c.done()
	}

	slot := c.plotW / float64(len(bc.Bars))
	width := slot * 0.7
	for i, b := range bc.Bars {
		v := math.Max(b.Value, 0)
		left := float64(marginLeft) + float64(i)*slot + (slot-width)/2
		top := c.y(v)
		fmt.Fprintf(&c.b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s: %s</title></rect>`,
			left, top, width, c.baseline()-top, esc(bc.Color), esc(b.Name), formatCount(b.Value))
		axisLabel(c, left+width/2, b.Name, rotate)
	}
	return c.done()
}

func axisLabel(c *svgCanvas, x float64, label string, rotate bool) {
	y := c.baseline() + 16
	if rotate {
		fmt.Fprintf(&c.b, `<text class="xlabel" x="%.1f" y="%.1f" transform="rotate(-40 %.1f %.1f)" text-anchor="end" font-size="10">%s</text>`,
			x, y, x, y, esc(label))
		return
	}
	fmt.Fprintf(&c.b, `<text class="xlabel" x="%.1f" y="%.1f" text-anchor="middle" font-size="10">%s</text>`, x, y, esc(label))
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}
