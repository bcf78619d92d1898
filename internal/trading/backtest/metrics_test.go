package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthEnds(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i+1, -1)
	}
	return out
}

func rowsFrom(bench, positions []float64) []model.BacktestRow {
	c := Compound(positions, bench)
	times := monthEnds(len(bench))
	rows := make([]model.BacktestRow, len(bench))
	for i := range rows {
		rows[i] = model.BacktestRow{
			Time:                times[i],
			PositionSize:        positions[i],
			BenchmarkReturn:     bench[i],
			StrategyReturn:      c.StrategyReturns[i],
			BenchmarkCumulative: c.BenchmarkCumulative[i],
			StrategyCumulative:  c.StrategyCumulative[i],
			BenchmarkDrawdown:   c.BenchmarkDrawdown[i],
			StrategyDrawdown:    c.StrategyDrawdown[i],
			PolicyRate:          math.NaN(),
		}
	}
	return rows
}

func TestCalculatorScenario(t *testing.T) {
	rows := rowsFrom([]float64{5, -10, 5, 5}, []float64{1.0, 0.1, 1.0, 1.0})
	calc := Calculator{RiskFreeRate: 4, PeriodsPerYear: 12, Basis: BasisMonths}

	m := calc.Calculate(rows)

	require.Equal(t, 4, m.NMonths)
	s := m.Strategy
	assert.InDelta(t, (1.05*0.99*1.05*1.05/1.05-1)*100, s.TotalReturn, 1e-9)
	assert.InDelta(t, (math.Pow(0.99*1.05*1.05, 3)-1)*100, s.AnnualizedReturn, 1e-9)
	assert.InDelta(t, s.AnnualizedReturn-4, s.ExcessReturn, 1e-12)
	assert.InDelta(t, 3*math.Sqrt(12), s.Volatility, 1e-9)
	assert.InDelta(t, s.ExcessReturn/s.Volatility, s.SharpeRatio, 1e-12)
	assert.Equal(t, 0.0, s.SortinoRatio, "a single negative month has no downside deviation")
	assert.InDelta(t, -1.0, s.MaxDrawdown, 1e-9)
	assert.Equal(t, 75.0, s.WinRate)

	assert.InDelta(t, -10.0, m.Benchmark.MaxDrawdown, 1e-9)
	assert.InDelta(t, 9.0, m.Outperformance.MaxDDImprovement, 1e-9)
	assert.InDelta(t, s.SharpeRatio-m.Benchmark.SharpeRatio, m.Outperformance.SharpeImprovement, 1e-12)
}

func TestCalculatorEmptySubset(t *testing.T) {
	calc := Calculator{RiskFreeRate: 4, PeriodsPerYear: 12}

	assert.Equal(t, model.PeriodMetrics{}, calc.Calculate(nil))

	rows := rowsFrom([]float64{math.NaN(), math.NaN()}, []float64{1, 1})
	assert.Equal(t, model.PeriodMetrics{}, calc.Calculate(rows))
}

func TestCalculatorZeroVolatility(t *testing.T) {
	rows := rowsFrom([]float64{1, 1, 1}, []float64{1, 1, 1})
	m := Calculator{RiskFreeRate: 4, PeriodsPerYear: 12, Basis: BasisMonths}.Calculate(rows)

	assert.Equal(t, 0.0, m.Strategy.Volatility)
	assert.Equal(t, 0.0, m.Strategy.SharpeRatio)
	assert.Equal(t, 0.0, m.Strategy.MaxDrawdown)
	assert.Equal(t, 100.0, m.Strategy.WinRate)
}

func TestCalculatorSingleRowCalendarBasis(t *testing.T) {
	rows := rowsFrom([]float64{3}, []float64{1})
	m := Calculator{RiskFreeRate: 4, PeriodsPerYear: 12, Basis: BasisCalendar}.Calculate(rows)

	assert.Equal(t, 1, m.NMonths)
	assert.Equal(t, 0.0, m.Strategy.TotalReturn)
	assert.Equal(t, 0.0, m.Strategy.AnnualizedReturn)
	assert.Equal(t, 0.0, m.Strategy.Volatility)
}

func TestCalculatorSortino(t *testing.T) {
	rows := rowsFrom([]float64{4, -2, 3, -4, 5, 1}, []float64{1, 1, 1, 1, 1, 1})
	m := Calculator{RiskFreeRate: 0, PeriodsPerYear: 12, Basis: BasisMonths}.Calculate(rows)

	downside := math.Sqrt(2) * math.Sqrt(12) // sample std of {-2, -4}
	assert.InDelta(t, m.Strategy.ExcessReturn/downside, m.Strategy.SortinoRatio, 1e-9)
}

func TestCalculatorRecompoundsSubset(t *testing.T) {
	rows := rowsFrom([]float64{50, -10, 2, 2}, []float64{1, 1, 1, 1})
	calc := Calculator{PeriodsPerYear: 12, Basis: BasisMonths}

	tail := calc.Calculate(rows[2:])

	assert.InDelta(t, 2.0, tail.Benchmark.TotalReturn, 1e-9)
	assert.Equal(t, 0.0, tail.Benchmark.MaxDrawdown, "subset drawdown ignores earlier peaks")
}

func TestCalculatorDeterministic(t *testing.T) {
	rows := rowsFrom([]float64{2, -3, 1, 4, -1, 2, 3}, []float64{1, 0.5, 0.75, 1, 0.25, 1, 1})
	calc := Calculator{RiskFreeRate: 4, PeriodsPerYear: 12, Basis: BasisMonths}

	whole := calc.Calculate(rows)
	again := calc.Calculate(append([]model.BacktestRow(nil), rows...))

	assert.Equal(t, whole, again)
}
