// Package charts renders dashboard figures as PNG images.
package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/socialpulse-cli/internal/analysis"
	"github.com/KaramelBytes/socialpulse-cli/internal/pipeline"
)

// ErrNoData is returned when a figure would have nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Options sets the canvas size in pixels.
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 500
	}
	return w, h
}

var palette = []drawing.Color{
	chart.ColorBlue, chart.ColorGreen, chart.ColorRed, chart.ColorOrange,
	chart.ColorCyan, chart.ColorYellow, chart.ColorAlternateGray,
}

var paletteNames = []string{"blue", "green", "red", "orange", "cyan", "yellow", "gray"}

// pointStyle draws markers only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// Pie draws one slice per category.
func Pie(w io.Writer, title string, d analysis.Distribution, opt Options) error {
	if d.Total == 0 || len(d.Counts) == 0 {
		return ErrNoData
	}
	values := make([]chart.Value, 0, len(d.Counts))
	for i, c := range d.Counts {
		values = append(values, chart.Value{
			Value: float64(c.Count),
			Label: fmt.Sprintf("%s (%s%%)", c.Category, c.Percent.Format(1)),
			Style: chart.Style{FillColor: palette[i%len(palette)]},
		})
	}
	width, height := opt.size()
	pie := chart.PieChart{
		Title:  title,
		Width:  width,
		Height: height,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render pie: %w", err)
	}
	return nil
}

// Bar draws labelled bars. Bars with undefined values are skipped.
func Bar(w io.Writer, title string, labels []string, values []analysis.Metric, opt Options) error {
	bars := make([]chart.Value, 0, len(values))
	for i, v := range values {
		if !v.Defined() {
			continue
		}
		bars = append(bars, chart.Value{Value: v.Float(), Label: labels[i]})
	}
	return renderBars(w, title, bars, opt)
}

func renderBars(w io.Writer, title string, bars []chart.Value, opt Options) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	top := 0.0
	for _, b := range bars {
		top = math.Max(top, b.Value)
	}
	if top <= 0 {
		top = 1
	}
	width, height := opt.size()
	// leave room for the y axis labels and keep every bar on the canvas
	slot := (width - 120) / len(bars)
	barWidth := max(slot*3/5, 2)
	spacing := max(slot-barWidth, 1)
	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar: %w", err)
	}
	return nil
}

// GroupMeans draws one bar per group mean.
func GroupMeans(w io.Writer, title string, ms []analysis.GroupMean, opt Options) error {
	labels := make([]string, len(ms))
	values := make([]analysis.Metric, len(ms))
	for i, m := range ms {
		labels[i] = m.Group
		values[i] = m.Mean
	}
	return Bar(w, title, labels, values, opt)
}

// Countries draws mean addiction score per country in the given order.
func Countries(w io.Writer, title string, aggs []analysis.CountryAggregate, opt Options) error {
	labels := make([]string, len(aggs))
	values := make([]analysis.Metric, len(aggs))
	for i, a := range aggs {
		labels[i] = a.Country
		values[i] = analysis.Metric(a.MeanAddictedScore)
	}
	return Bar(w, title, labels, values, opt)
}

// Histogram draws bin counts as bars labelled by their lower edge. A split
// histogram draws one bar per group side by side within each bin, coloured
// in group order, and names the colours in the title.
func Histogram(w io.Writer, title string, h analysis.Histogram, opt Options) error {
	if len(h.Counts) == 0 {
		return ErrNoData
	}
	if len(h.Groups) == 0 {
		labels := make([]string, len(h.Counts))
		values := make([]analysis.Metric, len(h.Counts))
		for i, c := range h.Counts {
			labels[i] = strconv.FormatFloat(h.Edges[i], 'f', 1, 64)
			values[i] = analysis.Metric(c)
		}
		return Bar(w, title, labels, values, opt)
	}
	bars := make([]chart.Value, 0, len(h.Counts)*len(h.Groups))
	for i := range h.Counts {
		for j, g := range h.Groups {
			col := palette[j%len(palette)]
			b := chart.Value{Value: float64(g.Counts[i]), Style: chart.Style{FillColor: col, StrokeColor: col}}
			if j == 0 {
				b.Label = strconv.FormatFloat(h.Edges[i], 'f', 1, 64)
			}
			bars = append(bars, b)
		}
	}
	return renderBars(w, title+" "+legendText(h.Groups), bars, opt)
}

// legendText names the bar colour of each group, e.g. "(blue: Female, green: Male)".
func legendText(groups []analysis.HistogramGroup) string {
	parts := make([]string, len(groups))
	for j, g := range groups {
		parts[j] = paletteNames[j%len(paletteNames)] + ": " + g.Group
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Scatter plots y against x for every record, one series per group when
// split is set.
func Scatter(w io.Writer, title string, view []pipeline.Record, x, y pipeline.NumericField, split *pipeline.GroupField, opt Options) error {
	if len(view) == 0 {
		return ErrNoData
	}
	type pts struct{ xs, ys []float64 }
	byGroup := map[string]*pts{}
	var order []string
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, r := range view {
		xv, err := x.Value(r)
		if err != nil {
			return err
		}
		yv, err := y.Value(r)
		if err != nil {
			return err
		}
		key := "All"
		if split != nil {
			if key, err = split.Key(r); err != nil {
				return err
			}
		}
		p := byGroup[key]
		if p == nil {
			p = &pts{}
			byGroup[key] = p
			order = append(order, key)
		}
		p.xs = append(p.xs, xv)
		p.ys = append(p.ys, yv)
		minX, maxX = math.Min(minX, xv), math.Max(maxX, xv)
		minY, maxY = math.Min(minY, yv), math.Max(maxY, yv)
	}
	series := make([]chart.Series, 0, len(order))
	for i, k := range order {
		p := byGroup[k]
		series = append(series, chart.ContinuousSeries{Name: k, XValues: p.xs, YValues: p.ys, Style: pointStyle(palette[i%len(palette)])})
	}
	width, height := opt.size()
	ch := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: x.Label(), Range: padded(minX, maxX)},
		YAxis:      chart.YAxis{Name: y.Label(), Range: padded(minY, maxY)},
		Series:     series,
	}
	if split != nil {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

// padded widens [lo, hi] so single points and constant columns still render.
func padded(lo, hi float64) *chart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
