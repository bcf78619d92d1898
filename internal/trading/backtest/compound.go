package backtest

import "math"

// Curves are the compounded strategy and benchmark paths of a position series.
// Returns and drawdowns are in percent; cumulative values start from an implicit 1.0.
type Curves struct {
	StrategyReturns     []float64
	BenchmarkCumulative []float64
	StrategyCumulative  []float64
	BenchmarkDrawdown   []float64
	StrategyDrawdown    []float64
}

// Compound applies positions to benchmark returns. A missing benchmark return contributes
// zero to the strategy; the benchmark path is missing on that row but its product carries over.
func Compound(positions, benchmarkReturns []float64) Curves {
	n := len(benchmarkReturns)
	c := Curves{
		StrategyReturns:     make([]float64, n),
		BenchmarkCumulative: make([]float64, n),
		StrategyCumulative:  make([]float64, n),
	}

	benchGrowth, stratGrowth := 1.0, 1.0
	for i, r := range benchmarkReturns {
		pos := 0.0
		if i < len(positions) && !math.IsNaN(positions[i]) {
			pos = positions[i]
		}

		if math.IsNaN(r) {
			c.BenchmarkCumulative[i] = math.NaN()
		} else {
			c.StrategyReturns[i] = pos * r
			benchGrowth *= 1 + r/100
			c.BenchmarkCumulative[i] = benchGrowth
		}

		stratGrowth *= 1 + c.StrategyReturns[i]/100
		c.StrategyCumulative[i] = stratGrowth
	}

	c.BenchmarkDrawdown = Drawdown(c.BenchmarkCumulative)
	c.StrategyDrawdown = Drawdown(c.StrategyCumulative)
	return c
}

// Drawdown returns the percent distance of each value below its running maximum.
// Missing values stay missing and do not update the maximum.
func Drawdown(cumulative []float64) []float64 {
	out := make([]float64, len(cumulative))
	peak := math.NaN()
	for i, v := range cumulative {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		if math.IsNaN(peak) || v > peak {
			peak = v
		}
		out[i] = (v/peak - 1) * 100
	}
	return out
}

// growth recompounds percent returns from 1.0.
func growth(returns []float64) []float64 {
	out := make([]float64, len(returns))
	g := 1.0
	for i, r := range returns {
		g *= 1 + r/100
		out[i] = g
	}
	return out
}
