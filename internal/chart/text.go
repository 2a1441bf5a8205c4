package chart

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const barWidth = 40

// RenderText writes the chart as a table with a proportional bar per point
func RenderText(w io.Writer, c *LineChart) error {
	if _, err := fmt.Fprintln(w, c.Title); err != nil {
		return err
	}

	peak := 0.0
	for _, p := range c.Points {
		if abs(p.Y) > peak {
			peak = abs(p.Y)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, p := range c.Points {
		n := 0
		if peak > 0 {
			n = int(abs(p.Y) / peak * barWidth)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t %s\n", p.X, FormatCurrency(p.Y), strings.Repeat("#", n)); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, line := range c.ReferenceLines {
		if _, err := fmt.Fprintln(w, "--- "+line.Annotation); err != nil {
			return err
		}
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
