// Package chart renders the dashboard's line and bar charts as PNG or SVG.
package chart

import (
	"fmt"
	"io"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/series"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 400
)

type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case PNG, SVG:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) renderer() gochart.RendererProvider {
	if f == SVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Line draws one column against time.
func Line(w io.Writer, title string, points []data.Point, format Format) error {
	if len(points) < 2 {
		return fmt.Errorf("line chart needs at least 2 points, got %d", len(points))
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Timestamp
		ys[i] = p.Value
	}

	ch := gochart.Chart{
		Title:      title,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{ValueFormatter: gochart.TimeValueFormatterWithFormat("01-02 15h")},
		YAxis:      gochart.YAxis{Range: paddedRange(ys)},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    title,
				Style:   gochart.Style{StrokeColor: gochart.ColorBlue, StrokeWidth: 1.5},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return ch.Render(format.renderer(), w)
}

// Bar draws the daily means, one bar per calendar date.
func Bar(w io.Writer, title string, daily []series.DailyValue, format Format) error {
	if len(daily) == 0 {
		return fmt.Errorf("bar chart needs at least 1 value")
	}

	bars := make([]gochart.Value, len(daily))
	ys := make([]float64, len(daily))
	for i, d := range daily {
		bars[i] = gochart.Value{Value: d.Mean, Label: d.Date.Format("01-02")}
		ys[i] = d.Mean
	}

	slot := (DefaultWidth - 100) / len(daily)
	bc := gochart.BarChart{
		Title:      title,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 40}},
		BarWidth:   max(4, slot*2/3),
		BarSpacing: max(2, slot/3),
		YAxis:      gochart.YAxis{Range: paddedRange(ys)},
		Bars:       bars,
	}
	return bc.Render(format.renderer(), w)
}

// paddedRange brackets values with a margin so a flat series still has a
// non-empty range.
func paddedRange(values []float64) *gochart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := math.Max(0.05*(hi-lo), math.Max(0.01*math.Abs(hi), 1e-3))
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
