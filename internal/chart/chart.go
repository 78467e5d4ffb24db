// Package chart renders spectrum sweeps as PNG files (gonum/plot) and
// HTML pages (go-echarts).
package chart

import (
	"fmt"
	"image/color"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Series is one named curve over the wavelength grid.
type Series struct {
	Name   string
	Values []float64
}

// Band marks a horizontal interval to shade behind the curves, e.g. a
// reflection stop band with its analytic ceiling.
type Band struct {
	XMin, XMax float64
	YMax       float64
}

// Spec describes one chart.
type Spec struct {
	Title      string
	XLabel     string
	YLabel     string
	X          []float64
	Series     []Series
	Band       *Band
	WidthInch  float64
	HeightInch float64
}

func (s *Spec) validate() error {
	if len(s.X) == 0 {
		return fmt.Errorf("chart %q has no x data", s.Title)
	}
	for _, ser := range s.Series {
		if len(ser.Values) != len(s.X) {
			return fmt.Errorf("series %q has %d values for %d x points", ser.Name, len(ser.Values), len(s.X))
		}
	}
	return nil
}

// palette returns n distinct line colors.
func palette(n int) []color.Color {
	base := []color.RGBA{
		{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
		{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
		{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	}
	out := make([]color.Color, n)
	for i := 0; i < n; i++ {
		out[i] = base[i%len(base)]
	}
	return out
}

// SavePNG renders the chart to a PNG file.
func SavePNG(s *Spec, file string) error {
	if err := s.validate(); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel

	if s.Band != nil {
		corners := plotter.XYs{
			{X: s.Band.XMin, Y: 0},
			{X: s.Band.XMax, Y: 0},
			{X: s.Band.XMax, Y: s.Band.YMax},
			{X: s.Band.XMin, Y: s.Band.YMax},
		}
		poly, err := plotter.NewPolygon(corners)
		if err != nil {
			return fmt.Errorf("stop-band marker: %w", err)
		}
		poly.Color = color.RGBA{R: 0xa0, G: 0xe8, B: 0xf0, A: 0xff}
		poly.LineStyle.Width = 0
		p.Add(poly)
	}

	colors := palette(len(s.Series))
	for i, ser := range s.Series {
		pts := make(plotter.XYs, len(s.X))
		for k := range s.X {
			pts[k] = plotter.XY{X: s.X[k], Y: ser.Values[k]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %q: %w", ser.Name, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(ser.Name, line)
	}
	p.Legend.Top = true
	p.Legend.Left = false

	w, h := s.WidthInch, s.HeightInch
	if w <= 0 {
		w = 8
	}
	if h <= 0 {
		h = 5
	}
	if err := p.Save(vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, file); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

// RenderHTML writes the chart as a self-contained echarts page.
func RenderHTML(s *Spec, w io.Writer) error {
	if err := s.validate(); err != nil {
		return err
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.Title, Width: "1000px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: s.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
		charts.WithXAxisOpts(opts.XAxis{Name: s.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: s.YLabel}),
	)

	xs := make([]string, len(s.X))
	for i, x := range s.X {
		xs[i] = fmt.Sprintf("%.4g", x)
	}
	line.SetXAxis(xs)
	for _, ser := range s.Series {
		data := make([]opts.LineData, len(ser.Values))
		for i, v := range ser.Values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(ser.Name, data)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
