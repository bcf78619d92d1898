package backtest

import (
	"math"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
	"gonum.org/v1/gonum/stat"
)

// YearsBasis selects how the length of a row subset is converted to years.
type YearsBasis int

const (
	// BasisCalendar uses the calendar-day span between the first and last row.
	BasisCalendar YearsBasis = iota
	// BasisMonths uses the row count divided by the periods per year.
	BasisMonths
)

const daysPerYear = 365.25

// Calculator computes performance statistics for any subset of backtest rows.
type Calculator struct {
	RiskFreeRate   float64 // annual, percent
	PeriodsPerYear float64
	Basis          YearsBasis
}

// Calculate evaluates the rows that carry a benchmark return. Each subset is recompounded
// from 1.0 so it never inherits growth from outside rows. An empty subset yields zeros.
func (c Calculator) Calculate(rows []model.BacktestRow) model.PeriodMetrics {
	times := make([]time.Time, 0, len(rows))
	bench := make([]float64, 0, len(rows))
	strat := make([]float64, 0, len(rows))
	for _, r := range rows {
		if math.IsNaN(r.BenchmarkReturn) {
			continue
		}
		times = append(times, r.Time)
		bench = append(bench, r.BenchmarkReturn)
		strat = append(strat, r.StrategyReturn)
	}

	n := len(times)
	if n == 0 {
		return model.PeriodMetrics{}
	}

	years := c.years(times)
	s := c.stream(strat, years)
	b := c.stream(bench, years)

	return model.PeriodMetrics{
		NMonths:        n,
		Strategy:       s,
		Benchmark:      b,
		Outperformance: Compare(s, b),
	}
}

// Compare returns strategy minus benchmark.
func Compare(strategy, benchmark model.PerformanceMetrics) model.Outperformance {
	return model.Outperformance{
		TotalReturn:        strategy.TotalReturn - benchmark.TotalReturn,
		AnnualizedReturn:   strategy.AnnualizedReturn - benchmark.AnnualizedReturn,
		SharpeImprovement:  strategy.SharpeRatio - benchmark.SharpeRatio,
		SortinoImprovement: strategy.SortinoRatio - benchmark.SortinoRatio,
		MaxDDImprovement:   strategy.MaxDrawdown - benchmark.MaxDrawdown,
	}
}

func (c Calculator) periodsPerYear() float64 {
	if c.PeriodsPerYear <= 0 {
		return 12
	}
	return c.PeriodsPerYear
}

func (c Calculator) years(times []time.Time) float64 {
	if c.Basis == BasisMonths {
		return float64(len(times)) / c.periodsPerYear()
	}
	return times[len(times)-1].Sub(times[0]).Hours() / 24 / daysPerYear
}

// stream computes the statistics of one non-empty return series.
func (c Calculator) stream(returns []float64, years float64) model.PerformanceMetrics {
	n := len(returns)
	g := growth(returns)
	ratio := g[n-1] / g[0]

	m := model.PerformanceMetrics{
		NMonths:     n,
		TotalReturn: (ratio - 1) * 100,
	}

	if years > 0 {
		m.AnnualizedReturn = (math.Pow(ratio, 1/years) - 1) * 100
	}
	m.ExcessReturn = m.AnnualizedReturn - c.RiskFreeRate

	scale := math.Sqrt(c.periodsPerYear())
	if n > 1 {
		m.Volatility = stat.StdDev(returns, nil) * scale
	}
	if m.Volatility > 0 {
		m.SharpeRatio = m.ExcessReturn / m.Volatility
	}

	var downside []float64
	wins := 0
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
		if r > 0 {
			wins++
		}
	}
	if len(downside) > 1 {
		if dv := stat.StdDev(downside, nil) * scale; dv > 0 {
			m.SortinoRatio = m.ExcessReturn / dv
		}
	}
	m.WinRate = float64(wins) / float64(n) * 100

	for _, dd := range Drawdown(g) {
		m.MaxDrawdown = math.Min(m.MaxDrawdown, dd)
	}

	return finite(m)
}

// finite replaces NaN and infinities so results always serialize.
func finite(m model.PerformanceMetrics) model.PerformanceMetrics {
	clean := func(v *float64) {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = 0
		}
	}
	clean(&m.TotalReturn)
	clean(&m.AnnualizedReturn)
	clean(&m.ExcessReturn)
	clean(&m.Volatility)
	clean(&m.SharpeRatio)
	clean(&m.SortinoRatio)
	clean(&m.MaxDrawdown)
	clean(&m.WinRate)
	return m
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

func round4(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*1e4) / 1e4
}
