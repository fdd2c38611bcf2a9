package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/alveoli-tools/internal/imaging"
)

const (
	plotWidth  = 1500
	plotHeight = 900
	plotDPI    = 150

	boxHalfWidth = 0.3
	capHalfWidth = 0.12
)

var (
	pointColor = drawing.Color{R: 64, G: 64, B: 64, A: 255}
	lineColor  = drawing.Color{R: 40, G: 40, B: 40, A: 255}
	white      = drawing.Color{R: 255, G: 255, B: 255, A: 255}
)

// BoxStats are the box plot statistics of one condition.
type BoxStats struct {
	Q1, Median, Q3 float64

	// LowWhisker and HighWhisker are the most extreme values within 1.5 IQR
	// of the box.
	LowWhisker, HighWhisker float64
}

// ComputeBoxStats returns box plot statistics for values. values must not be
// empty.
func ComputeBoxStats(values []float64) BoxStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	b := BoxStats{
		Q1:     quantile(0.25, sorted),
		Median: quantile(0.5, sorted),
		Q3:     quantile(0.75, sorted),
	}

	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.LowWhisker, b.HighWhisker = b.Q1, b.Q3
	for _, v := range sorted {
		if v >= lo {
			b.LowWhisker = v
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= hi {
			b.HighWhisker = sorted[i]
			break
		}
	}
	return b
}

// quantile interpolates linearly between the closest ranks of sorted, the
// convention box plots are usually drawn with. gonum's LinInterp places the
// median of 1..5 at 2.5.
func quantile(p float64, sorted []float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// RenderPlot writes the box plot of rows to path as PNG.
func RenderPlot(path string, rows []Row, order []string, colors []string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer closeFile(file, path, &err)

	return RenderPlotTo(file, rows, order, colors)
}

// RenderPlotTo draws one box per condition in order, filled with the matching
// color, with every sample drawn as a point spread sideways so equal counts
// stay visible.
func RenderPlotTo(w io.Writer, rows []Row, order []string, colors []string) error {
	if len(order) == 0 {
		return fmt.Errorf("no conditions to plot")
	}
	if len(colors) < len(order) {
		return fmt.Errorf("need %d colors, got %d", len(order), len(colors))
	}

	byCondition := make(map[string][]float64)
	all := make([]float64, 0, len(rows))
	for _, r := range rows {
		v := float64(r.Count)
		byCondition[r.Condition] = append(byCondition[r.Condition], v)
		all = append(all, v)
	}
	maxCount := 0.0
	if len(all) > 0 {
		maxCount = floats.Max(all)
	}

	var fills, outlines, points []chart.Series
	ticks := make([]chart.Tick, 0, len(order))
	for i, cond := range order {
		x := float64(i)
		ticks = append(ticks, chart.Tick{Value: x, Label: cond})

		values := byCondition[cond]
		if len(values) == 0 {
			continue
		}

		c, err := imaging.ParseHexColor(colors[i])
		if err != nil {
			return fmt.Errorf("color for %s: %w", cond, err)
		}
		fill := drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}

		b := ComputeBoxStats(values)
		fills = append(fills, boxFill(x, b, fill)...)
		outlines = append(outlines, boxOutline(x, b)...)
		points = append(points, samplePoints(x, values))
	}

	if len(points) == 0 {
		return fmt.Errorf("no samples to plot")
	}

	series := append(append(fills, outlines...), points...)

	graph := chart.Chart{
		Title:      "Alveoli Counts by Condition",
		TitleStyle: chart.Style{FontSize: 16},
		Width:      plotWidth,
		Height:     plotHeight,
		DPI:        plotDPI,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
			FillColor: white,
		},
		XAxis: chart.XAxis{
			Name:  "Condition",
			Style: chart.Style{FontSize: 12},
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(order)) - 0.5},
		},
		YAxis: chart.YAxis{
			Name:  "Alveoli Count",
			Style: chart.Style{FontSize: 12},
			Range: &chart.ContinuousRange{Min: 0, Max: maxCount*1.1 + 1},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Series: series,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return nil
}

// boxFill paints the box from Q1 to Q3. Filled series run down to the
// bottom of the canvas, so the area below Q1 is painted back to white.
func boxFill(x float64, b BoxStats, fill drawing.Color) []chart.Series {
	xs := []float64{x - boxHalfWidth, x + boxHalfWidth}
	return []chart.Series{
		chart.ContinuousSeries{
			XValues: xs,
			YValues: []float64{b.Q3, b.Q3},
			Style:   chart.Style{StrokeColor: fill, StrokeWidth: 1, FillColor: fill},
		},
		chart.ContinuousSeries{
			XValues: xs,
			YValues: []float64{b.Q1, b.Q1},
			Style:   chart.Style{StrokeColor: white, StrokeWidth: 1, FillColor: white},
		},
	}
}

// boxOutline draws the box edges, the median and both whiskers with caps.
func boxOutline(x float64, b BoxStats) []chart.Series {
	l, r := x-boxHalfWidth, x+boxHalfWidth
	style := chart.Style{StrokeColor: lineColor, StrokeWidth: 2}
	line := func(xs, ys []float64) chart.Series {
		return chart.ContinuousSeries{XValues: xs, YValues: ys, Style: style}
	}

	return []chart.Series{
		line([]float64{l, r, r, l, l}, []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1}),
		chart.ContinuousSeries{
			XValues: []float64{l, r},
			YValues: []float64{b.Median, b.Median},
			Style:   chart.Style{StrokeColor: lineColor, StrokeWidth: 3},
		},
		line([]float64{x, x}, []float64{b.Q3, b.HighWhisker}),
		line([]float64{x, x}, []float64{b.Q1, b.LowWhisker}),
		line([]float64{x - capHalfWidth, x + capHalfWidth}, []float64{b.HighWhisker, b.HighWhisker}),
		line([]float64{x - capHalfWidth, x + capHalfWidth}, []float64{b.LowWhisker, b.LowWhisker}),
	}
}

// samplePoints spreads the samples around x. Samples sharing a count are
// offset from each other; the spread is deterministic.
func samplePoints(x float64, values []float64) chart.Series {
	seen := make(map[float64]int)
	xs := make([]float64, len(values))
	for i, v := range values {
		k := seen[v]
		seen[v]++
		xs[i] = x + swarmOffset(k)
	}
	return chart.ContinuousSeries{
		XValues: xs,
		YValues: values,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    5,
			DotColor:    pointColor,
		},
	}
}

// swarmOffset returns 0, +d, -d, +2d, -2d, ... for the k-th duplicate.
func swarmOffset(k int) float64 {
	const d = 0.05
	if k == 0 {
		return 0
	}
	step := float64((k + 1) / 2)
	if k%2 == 1 {
		return step * d
	}
	return -step * d
}
