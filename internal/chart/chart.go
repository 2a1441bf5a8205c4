// Package chart describes the aggregated series as a line chart: one marker
// per bucket, currency formatted y values and a dashed reference line at the
// average. The description is plain data that any front end can draw.
package chart

import (
	"fmt"

	"github.com/soltixdb/tsexplorer/internal/timeseries"
)

// DateFormat is the x value layout for bucket starts
const DateFormat = "2006-01-02"

// YTickFormat is the d3-style currency tick format used by the front end
const YTickFormat = "$,.2f"

// Point is one bucket on the chart
type Point struct {
	X     string  `json:"x"`
	Y     float64 `json:"y"`
	Hover string  `json:"hover"`
}

// Axis describes one chart axis
type Axis struct {
	Title      string `json:"title"`
	TickFormat string `json:"tick_format,omitempty"`
}

// ReferenceLine is a horizontal line across the chart
type ReferenceLine struct {
	Y          float64 `json:"y"`
	Dash       string  `json:"dash"`
	Color      string  `json:"color"`
	Annotation string  `json:"annotation"`
	Position   string  `json:"position"`
}

// LineChart is a renderable line chart description
type LineChart struct {
	Title          string          `json:"title"`
	XAxis          Axis            `json:"x_axis"`
	YAxis          Axis            `json:"y_axis"`
	Markers        bool            `json:"markers"`
	Points         []Point         `json:"points"`
	ReferenceLines []ReferenceLine `json:"reference_lines"`
}

// Renderer builds chart descriptions
type Renderer struct{}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render turns the aggregated series into a line chart with an average line
func (r *Renderer) Render(agg timeseries.AggregatedSeries, average float64, valueLabel string, granularity timeseries.Granularity) *LineChart {
	label := granularity.Label()

	points := make([]Point, len(agg))
	for i, b := range agg {
		x := b.Start.Format(DateFormat)
		points[i] = Point{
			X:     x,
			Y:     b.Total,
			Hover: x + " " + FormatCurrency(b.Total),
		}
	}

	return &LineChart{
		Title:   fmt.Sprintf("%s - %s sum", valueLabel, label),
		XAxis:   Axis{Title: "Date"},
		YAxis:   Axis{Title: valueLabel, TickFormat: YTickFormat},
		Markers: true,
		Points:  points,
		ReferenceLines: []ReferenceLine{
			{
				Y:          average,
				Dash:       "dash",
				Color:      "green",
				Annotation: fmt.Sprintf("Avg (%s) = %s", label, FormatCurrency(average)),
				Position:   "top left",
			},
		},
	}
}
