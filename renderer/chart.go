package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/btcfolio"
)

// chart is the geometry of an SVG line chart.
type chart struct {
	Width, Height int
	Series        []line
	YTicks        []tick
	XTicks        []tick
}

type line struct {
	Name   string
	Class  string
	Points string // svg polyline points
}

type tick struct {
	Pos   float64
	Label string
}

const (
	chartWidth  = 720
	chartHeight = 260
	padLeft     = 70
	padRight    = 10
	padTop      = 10
	padBottom   = 30
)

// newChart scales the series to a shared time and value range. It returns nil
// when there is nothing to draw.
func newChart(series map[string][]btcfolio.Point, order ...string) *chart {
	var first, last time.Time
	var top float64
	n := 0
	for _, points := range series {
		for _, p := range points {
			if n == 0 || p.Time.Before(first) {
				first = p.Time
			}
			if n == 0 || p.Time.After(last) {
				last = p.Time
			}
			top = max(top, p.Value.InexactFloat64())
			n++
		}
	}
	if n == 0 {
		return nil
	}
	if top <= 0 {
		top = 1
	}
	span := last.Sub(first)
	if span <= 0 {
		span = 24 * time.Hour
	}

	plotW := float64(chartWidth - padLeft - padRight)
	plotH := float64(chartHeight - padTop - padBottom)
	x := func(t time.Time) float64 { return padLeft + plotW*float64(t.Sub(first))/float64(span) }
	y := func(v float64) float64 { return padTop + plotH*(1-v/top) }

	c := &chart{Width: chartWidth, Height: chartHeight}
	for _, name := range order {
		points := series[name]
		if len(points) == 0 {
			continue
		}
		var b strings.Builder
		for i, p := range points {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%.1f,%.1f", x(p.Time), y(p.Value.InexactFloat64()))
		}
		c.Series = append(c.Series, line{Name: name, Class: strings.ToLower(name), Points: b.String()})
	}
	for i := range 5 {
		v := top * float64(i) / 4
		c.YTicks = append(c.YTicks, tick{Pos: y(v), Label: fmt.Sprintf("%.0f", v)})
	}
	for i := range 5 {
		t := first.Add(span * time.Duration(i) / 4)
		c.XTicks = append(c.XTicks, tick{Pos: x(t), Label: t.UTC().Format("2006-01-02")})
	}
	return c
}
