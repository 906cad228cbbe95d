package stats

import (
	"fmt"
	"strings"

	"github.com/giygas/medication-catalog/entities"
)

const (
	chartPadLeft   = 40.0
	chartPadBottom = 60.0
	chartPadTop    = 10.0
)

// Bar is one positioned rectangle of a BarChart.
type Bar struct {
	Label  string
	Count  int
	X, Y   float64
	W, H   float64
	LabelX float64
}

// BarChart is a vertical bar chart laid out in SVG user units.
type BarChart struct {
	Title  string
	Width  float64
	Height float64
	BaseY  float64
	Max    int
	Bars   []Bar
}

// Empty reports whether there is nothing to draw.
func (c BarChart) Empty() bool {
	return len(c.Bars) == 0
}

// NewBarChart scales buckets into a width x height box.
func NewBarChart(title string, buckets []Bucket, width, height float64) BarChart {
	c := BarChart{Title: title, Width: width, Height: height, BaseY: height - chartPadBottom}
	if len(buckets) == 0 {
		return c
	}

	for _, b := range buckets {
		if b.Count > c.Max {
			c.Max = b.Count
		}
	}

	plotW := width - chartPadLeft
	plotH := c.BaseY - chartPadTop
	slot := plotW / float64(len(buckets))
	barW := slot * 0.7

	c.Bars = make([]Bar, 0, len(buckets))
	for i, b := range buckets {
		h := 0.0
		if c.Max > 0 {
			h = plotH * float64(b.Count) / float64(c.Max)
		}
		x := chartPadLeft + float64(i)*slot + (slot-barW)/2
		c.Bars = append(c.Bars, Bar{
			Label:  b.Label,
			Count:  b.Count,
			X:      x,
			Y:      c.BaseY - h,
			W:      barW,
			H:      h,
			LabelX: x + barW/2,
		})
	}
	return c
}

// Point is one vertex of a LineChart.
type Point struct {
	X, Y   float64
	Label  string
	Weight float64
}

// LineChart plots estimated weight against age for one band.
type LineChart struct {
	Width     float64
	Height    float64
	BaseY     float64
	MaxWeight float64
	Points    []Point
}

// Polyline returns the points attribute of an SVG polyline.
func (c LineChart) Polyline() string {
	parts := make([]string, 0, len(c.Points))
	for _, p := range c.Points {
		parts = append(parts, fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
	}
	return strings.Join(parts, " ")
}

// NewLineChart lays out estimates (already ordered by age) in a
// width x height box. The weight axis starts at zero.
func NewLineChart(est []entities.AgeWeightEstimate, width, height float64) LineChart {
	c := LineChart{Width: width, Height: height, BaseY: height - chartPadBottom}
	if len(est) == 0 {
		return c
	}

	minAge, maxAge := est[0].AgeMonths, est[0].AgeMonths
	for _, e := range est {
		if e.AgeMonths < minAge {
			minAge = e.AgeMonths
		}
		if e.AgeMonths > maxAge {
			maxAge = e.AgeMonths
		}
		if e.EstimatedWeightKg > c.MaxWeight {
			c.MaxWeight = e.EstimatedWeightKg
		}
	}

	plotW := width - chartPadLeft - chartPadTop
	plotH := c.BaseY - chartPadTop
	span := float64(maxAge - minAge)

	c.Points = make([]Point, 0, len(est))
	for _, e := range est {
		x := chartPadLeft
		if span > 0 {
			x += plotW * float64(e.AgeMonths-minAge) / span
		}
		y := c.BaseY
		if c.MaxWeight > 0 {
			y -= plotH * e.EstimatedWeightKg / c.MaxWeight
		}
		c.Points = append(c.Points, Point{X: x, Y: y, Label: e.AgeText, Weight: e.EstimatedWeightKg})
	}
	return c
}
