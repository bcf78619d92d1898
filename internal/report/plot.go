package report

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Chart file names.
const (
	EquityChart   = "equity_curve.png"
	DrawdownChart = "drawdown.png"
	SpreadChart   = "spread_regimes.png"
)

// ErrNothingToPlot is returned when every series of a chart is missing.
var ErrNothingToPlot = errors.New("no data to plot")

type namedSeries struct {
	name   string
	values model.Float64s
	dashed bool
}

// PlotCharts renders the equity, drawdown and spread charts into dir and returns the written paths.
// Charts without any data are skipped.
func PlotCharts(dir string, md model.MonthlyData) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}
	charts := []struct {
		file string
		plot func(model.MonthlyData, string) error
	}{
		{EquityChart, PlotEquity},
		{DrawdownChart, PlotDrawdown},
		{SpreadChart, PlotSpread},
	}

	var written []string
	for _, c := range charts {
		path := filepath.Join(dir, c.file)
		if err := c.plot(md, path); err != nil {
			if errors.Is(err, ErrNothingToPlot) {
				continue
			}
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// PlotEquity draws the growth of one unit for the strategy and the benchmark.
func PlotEquity(md model.MonthlyData, path string) error {
	return plotLines(md.Dates, "Growth of $1", []namedSeries{
		{name: "Strategy", values: md.StrategyCumulative},
		{name: "SPY", values: md.BenchmarkCumulative},
	}, path)
}

// PlotDrawdown draws both drawdown series in percent.
func PlotDrawdown(md model.MonthlyData, path string) error {
	return plotLines(md.Dates, "Drawdown (%)", []namedSeries{
		{name: "Strategy", values: md.StrategyDrawdown},
		{name: "SPY", values: md.BenchmarkDrawdown},
	}, path)
}

// PlotSpread draws the spread against its rolling regime thresholds.
func PlotSpread(md model.MonthlyData, path string) error {
	return plotLines(md.Dates, "HY-IG spread (%)", []namedSeries{
		{name: "Spread", values: md.Spread},
		{name: "P25", values: md.SpreadP25, dashed: true},
		{name: "P50", values: md.SpreadP50, dashed: true},
		{name: "P75", values: md.SpreadP75, dashed: true},
		{name: "P90", values: md.SpreadP90, dashed: true},
	}, path)
}

func plotLines(dates []string, yLabel string, series []namedSeries, path string) error {
	xs, err := dateAxis(dates)
	if err != nil {
		return err
	}

	p := plot.New()
	p.X.Label.Text = "Date"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Legend.Top = true
	p.Legend.Left = true

	grid := plotter.NewGrid()
	dashes := []vg.Length{vg.Points(2), vg.Points(2)}
	grid.Horizontal.Dashes = dashes
	grid.Vertical.Dashes = dashes
	grid.Horizontal.Color = color.Gray{Y: 200}
	grid.Vertical.Color = color.Gray{Y: 200}
	p.Add(grid)

	drawn := 0
	for i, s := range series {
		pts := points(xs, s.values)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to create %s line: %w", s.name, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.2)
		if s.dashed {
			line.LineStyle.Dashes = plotutil.Dashes(1)
			line.LineStyle.Width = vg.Points(0.8)
		}
		p.Add(line)
		p.Legend.Add(s.name, line)
		drawn++
	}
	if drawn == 0 {
		return ErrNothingToPlot
	}

	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot (%s): %w", path, err)
	}
	return nil
}

func dateAxis(dates []string) ([]float64, error) {
	xs := make([]float64, len(dates))
	for i, d := range dates {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", d, err)
		}
		xs[i] = float64(t.Unix())
	}
	return xs, nil
}

// points pairs the axis with the present values, skipping gaps.
func points(xs []float64, values model.Float64s) plotter.XYs {
	var pts plotter.XYs
	for i, v := range values {
		if i >= len(xs) || model.IsMissing(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: v})
	}
	return pts
}
