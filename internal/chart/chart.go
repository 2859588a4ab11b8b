// Package chart draws an analyte's series as a grouped bar chart.
package chart

import (
	"io"
	"math"

	"cytodash/domain/cytokine"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Palettes cycle per timepoint: blue shades for HC, orange/red for AD/MCI.
var (
	HCPalette    = []string{"003f5c", "2f4b7c", "665191", "a05195"}
	ADMCIPalette = []string{"f95d6a", "ff7c43", "ffa600", "ff4500"}
)

const (
	barWidth   = 36
	barSpacing = 12
	minWidth   = 640
)

// Options controls rendering
type Options struct {
	LogScale bool
	Width    int
	Height   int
}

// Bar is one bar of the chart before it is handed to the renderer
type Bar struct {
	Label  string
	Cohort cytokine.Cohort
	Color  string
	Value  float64
	Null   bool
}

// Bars lays out the series: for each timepoint an HC bar then an AD/MCI bar.
// Null means draw as zero-height bars labeled "n/a". With logScale the
// plotted value is log10(1 + v).
func Bars(series cytokine.AggregatedSeries, logScale bool) []Bar {
	bars := make([]Bar, 0, 2*len(series.Points))
	for i, p := range series.Points {
		for _, c := range cytokine.Cohorts {
			palette := HCPalette
			if c == cytokine.ADMCI {
				palette = ADMCIPalette
			}

			b := Bar{
				Label:  p.Label + " " + c.Label(),
				Cohort: c,
				Color:  palette[i%len(palette)],
			}
			if mean := p.Mean(c); mean.Valid {
				b.Value = scale(mean.Float64, logScale)
			} else {
				b.Null = true
				b.Label += " n/a"
			}
			bars = append(bars, b)
		}
	}
	return bars
}

func scale(v float64, logScale bool) float64 {
	if !logScale {
		return v
	}
	return math.Log10(1 + v)
}

// AxisName is the y axis title for the chosen scale
func AxisName(logScale bool) string {
	if logScale {
		return "log10(1 + pg/mL)"
	}
	return "Concentration (pg/mL)"
}

// Render writes the series as a PNG
func Render(w io.Writer, series cytokine.AggregatedSeries, opts Options) error {
	bars := Bars(series, opts.LogScale)

	values := make([]gochart.Value, 0, len(bars))
	top := 0.0
	for _, b := range bars {
		values = append(values, gochart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: gochart.Style{
				FillColor:   drawing.ColorFromHex(b.Color),
				StrokeColor: drawing.ColorFromHex(b.Color),
				StrokeWidth: 1,
			},
		})
		top = math.Max(top, b.Value)
	}
	if len(values) == 0 {
		values = append(values, gochart.Value{Label: "no data"})
	}
	if top <= 0 {
		top = 1
	}

	width := opts.Width
	if width == 0 {
		width = max(minWidth, len(values)*(barWidth+barSpacing)+160)
	}
	height := opts.Height
	if height == 0 {
		height = 480
	}

	title := series.DisplayName
	if series.Category != "" {
		title += " (" + series.Category + ")"
	}

	graph := gochart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: gochart.YAxis{
			Name:  AxisName(opts.LogScale),
			Range: &gochart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: values,
	}
	return graph.Render(gochart.PNG, w)
}
