package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Alias1177/CreditRegime/internal/analysis/market"
	"github.com/Alias1177/CreditRegime/internal/analysis/spread"
	"github.com/Alias1177/CreditRegime/internal/config"
	"github.com/Alias1177/CreditRegime/internal/model"
	"github.com/Alias1177/CreditRegime/internal/trading/risk"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Markers listed in BacktestResults.Unavailable when an input column is absent.
const (
	UnavailableSpread          = "spread"
	UnavailableBenchmarkReturn = "benchmark_return"
	UnavailablePolicyRate      = "policy_rate"
)

// minAnnualRows is the history below which annualized figures are flagged as unreliable.
const minAnnualRows = 12

// Engine runs the regime backtest over a monthly frame
type Engine struct {
	cfg    config.Strategy
	sizer  *risk.Sizer
	logger zerolog.Logger
	now    func() time.Time
}

// NewEngine creates a new backtesting engine
func NewEngine(cfg config.Strategy) *Engine {
	return &Engine{
		cfg:    cfg,
		sizer:  risk.NewSizer(cfg.PositionTable()),
		logger: log.With().Str("component", "backtest_engine").Logger(),
		now:    time.Now,
	}
}

// Run executes the backtest. Structural problems with the frame are returned as errors;
// absent or short inputs degrade the result instead.
func (e *Engine) Run(frame *model.Frame) (*model.BacktestResults, error) {
	if frame == nil {
		return nil, fmt.Errorf("nil frame")
	}
	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}

	n := frame.Len()
	results := &model.BacktestResults{
		Metadata: model.BacktestMetadata{
			RunID:        uuid.NewString(),
			BacktestDate: e.now(),
		},
		Unavailable: []string{},
	}
	if n > 0 {
		results.Metadata.DateRange = model.DateRange{Start: frame.Times[0], End: frame.Times[n-1]}
	}

	spreads := frame.Spread
	if !frame.HasSpread() {
		e.logger.Warn().Msg("Spread column absent, every month is classified Unknown")
		results.Unavailable = append(results.Unavailable, UnavailableSpread)
		spreads = model.NewMissing(n)
	}

	returns, haveReturns := e.benchmarkReturns(frame)
	if !haveReturns {
		e.logger.Warn().Msg("Benchmark returns unavailable, performance metrics skipped")
		results.Unavailable = append(results.Unavailable, UnavailableBenchmarkReturn)
	}

	rates := model.NewMissing(n)
	changes := make([]model.RateChange, n)
	haveRates := frame.PolicyRate != nil
	if haveRates {
		if !frame.HasPolicyRate() {
			e.logger.Warn().Msg("Policy rate column carries no observations, every month is classified none")
		}
		rates = model.ForwardFill(frame.PolicyRate, 0)
		changes = market.ClassifyRateChanges(rates, e.cfg.RateChangeThreshold)
		results.RatePeriods = market.RatePeriods(frame.Times, changes)
	} else {
		e.logger.Warn().Msg("Policy rate unavailable, rate segments skipped")
		results.Unavailable = append(results.Unavailable, UnavailablePolicyRate)
	}
	if results.RatePeriods == nil {
		results.RatePeriods = []model.RatePeriod{}
	}

	thresholds := spread.RollingThresholds(spreads, e.cfg.Window, e.cfg.MinPeriods)
	regimes := spread.ClassifySeries(spreads, thresholds)
	positions := e.sizer.Sizes(regimes)
	curves := Compound(positions, returns)

	rows := make([]model.BacktestRow, n)
	for i := range rows {
		rows[i] = model.BacktestRow{
			Time:                frame.Times[i],
			Spread:              spreads[i],
			Thresholds:          thresholds[i],
			Regime:              regimes[i],
			PositionSize:        positions[i],
			BenchmarkReturn:     returns[i],
			StrategyReturn:      curves.StrategyReturns[i],
			BenchmarkCumulative: curves.BenchmarkCumulative[i],
			StrategyCumulative:  curves.StrategyCumulative[i],
			BenchmarkDrawdown:   curves.BenchmarkDrawdown[i],
			StrategyDrawdown:    curves.StrategyDrawdown[i],
			PolicyRate:          rates[i],
			RateChange:          changes[i],
		}
	}
	results.Rows = rows

	e.logger.Debug().
		Int("rows", n).
		Int("periods", len(results.RatePeriods)).
		Interface("regimes", regimeCounts(regimes)).
		Interface("rate_changes", market.CountChanges(changes)).
		Msg("Regimes classified")

	if haveReturns {
		results.Performance = e.performance(rows, haveRates)
	}
	results.CurrentReview = e.review(rows)
	results.MonthlyData = monthlyData(rows)

	return results, nil
}

// benchmarkReturns prefers the return column and falls back to the price column.
func (e *Engine) benchmarkReturns(frame *model.Frame) (model.Float64s, bool) {
	switch {
	case frame.HasBenchmarkReturn() && !frame.BenchmarkReturn.AllMissing():
		return frame.BenchmarkReturn, true
	case frame.HasBenchmarkPrice() && !frame.BenchmarkPrice.AllMissing():
		e.logger.Debug().Msg("Deriving benchmark returns from prices")
		returns := model.PercentChange(frame.BenchmarkPrice)
		return returns, !returns.AllMissing()
	}
	return model.NewMissing(frame.Len()), false
}

func (e *Engine) performance(rows []model.BacktestRow, haveRates bool) *model.PerformanceReport {
	overall := Calculator{
		RiskFreeRate:   e.cfg.RiskFreeRate,
		PeriodsPerYear: e.cfg.PeriodsPerYear,
		Basis:          BasisCalendar,
	}.Calculate(rows)

	if overall.NMonths < minAnnualRows {
		e.logger.Warn().Int("months", overall.NMonths).Msg("Fewer than 12 months of returns, annual metrics are unreliable")
	}

	report := &model.PerformanceReport{
		Benchmark:      overall.Benchmark,
		Strategy:       overall.Strategy,
		Outperformance: overall.Outperformance,
		RiskFreeRate:   e.cfg.RiskFreeRate,
		RegimeStats:    RegimeStats(rows),
		Segments:       map[string]model.PeriodMetrics{},
	}
	if haveRates {
		report.Segments = e.Segments(rows)
	}
	return report
}

// Segments computes metrics per policy-rate direction and per policy-rate level.
// Segments without rows are omitted.
func (e *Engine) Segments(rows []model.BacktestRow) map[string]model.PeriodMetrics {
	calc := Calculator{
		RiskFreeRate:   e.cfg.RiskFreeRate,
		PeriodsPerYear: e.cfg.PeriodsPerYear,
		Basis:          BasisMonths,
	}

	segments := make(map[string]model.PeriodMetrics)
	for _, change := range []model.RateChange{model.RateIncrease, model.RateDecrease, model.RateNone} {
		if subset := market.PartitionByChange(rows, change); len(subset) > 0 {
			segments[change.String()] = calc.Calculate(subset)
		}
	}

	if subset := market.PartitionByLevel(rows, e.cfg.RateLevel, true); len(subset) > 0 {
		segments[LevelKey(e.cfg.RateLevel, true)] = calc.Calculate(subset)
	}
	if subset := market.PartitionByLevel(rows, e.cfg.RateLevel, false); len(subset) > 0 {
		segments[LevelKey(e.cfg.RateLevel, false)] = calc.Calculate(subset)
	}
	return segments
}

// LevelKey names a policy-rate level segment, e.g. "rate_above_2.5".
func LevelKey(level float64, above bool) string {
	if above {
		return fmt.Sprintf("rate_above_%g", level)
	}
	return fmt.Sprintf("rate_below_%g", level)
}

// RegimeStats summarizes strategy and benchmark returns per regime over rows with returns.
func RegimeStats(rows []model.BacktestRow) map[string]model.RegimeStat {
	strat := map[model.Regime][]float64{}
	bench := map[model.Regime][]float64{}
	for _, r := range rows {
		if math.IsNaN(r.BenchmarkReturn) {
			continue
		}
		strat[r.Regime] = append(strat[r.Regime], r.StrategyReturn)
		bench[r.Regime] = append(bench[r.Regime], r.BenchmarkReturn)
	}

	stats := make(map[string]model.RegimeStat, len(strat))
	for regime, values := range strat {
		stats[regime.String()] = model.RegimeStat{
			Count:         len(values),
			MeanStrategy:  round4(mean(values)),
			StdStrategy:   round4(stdDev(values)),
			MeanBenchmark: round4(mean(bench[regime])),
		}
	}
	return stats
}

// review lists the months within the lookback of the last row and flags exposure changes.
func (e *Engine) review(rows []model.BacktestRow) []model.ReviewRecord {
	records := []model.ReviewRecord{}
	if len(rows) == 0 {
		return records
	}

	cutoff := subtractMonths(rows[len(rows)-1].Time, e.cfg.ReviewMonths)
	var prev *model.BacktestRow
	for i := range rows {
		row := &rows[i]
		if row.Time.Before(cutoff) {
			continue
		}

		rec := model.ReviewRecord{
			Date:            row.Time,
			Regime:          row.Regime,
			Spread:          optional(row.Spread),
			PositionSize:    optional(row.PositionSize),
			BenchmarkReturn: optional(row.BenchmarkReturn),
			StrategyReturn:  optional(row.StrategyReturn),
		}

		prevSize := row.PositionSize
		if prev != nil {
			prevSize = prev.PositionSize
		}
		if prev == nil || prev.Regime != row.Regime || prev.PositionSize != row.PositionSize {
			action := model.ActionRegimeChange
			switch {
			case row.PositionSize > prevSize:
				action = model.ActionIncrease
			case row.PositionSize < prevSize:
				action = model.ActionDecrease
			}
			rec.HasAction = true
			rec.Action = &action
		}

		records = append(records, rec)
		prev = row
	}
	return records
}

// subtractMonths steps back whole months, clamping to the last day of the target month.
func subtractMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m-time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := target.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	h, mi, s := t.Clock()
	return time.Date(target.Year(), target.Month(), d, h, mi, s, t.Nanosecond(), t.Location())
}

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func regimeCounts(regimes []model.Regime) map[string]int {
	counts := make(map[string]int)
	for r, c := range spread.Distribution(regimes) {
		counts[r.Key()] = c
	}
	return counts
}

func monthlyData(rows []model.BacktestRow) model.MonthlyData {
	n := len(rows)
	md := model.MonthlyData{
		Dates:               make([]string, n),
		BenchmarkReturns:    make(model.Float64s, n),
		StrategyReturns:     make(model.Float64s, n),
		BenchmarkCumulative: make(model.Float64s, n),
		StrategyCumulative:  make(model.Float64s, n),
		BenchmarkDrawdown:   make(model.Float64s, n),
		StrategyDrawdown:    make(model.Float64s, n),
		Regime:              make([]model.Regime, n),
		PositionSize:        make(model.Float64s, n),
		Spread:              make(model.Float64s, n),
		PolicyRate:          make(model.Float64s, n),
		RateChange:          make([]model.RateChange, n),
		SpreadP25:           make(model.Float64s, n),
		SpreadP50:           make(model.Float64s, n),
		SpreadP75:           make(model.Float64s, n),
		SpreadP90:           make(model.Float64s, n),
	}
	for i, r := range rows {
		md.Dates[i] = r.Time.Format(time.DateOnly)
		md.BenchmarkReturns[i] = r.BenchmarkReturn
		md.StrategyReturns[i] = r.StrategyReturn
		md.BenchmarkCumulative[i] = r.BenchmarkCumulative
		md.StrategyCumulative[i] = r.StrategyCumulative
		md.BenchmarkDrawdown[i] = r.BenchmarkDrawdown
		md.StrategyDrawdown[i] = r.StrategyDrawdown
		md.Regime[i] = r.Regime
		md.PositionSize[i] = r.PositionSize
		md.Spread[i] = r.Spread
		md.PolicyRate[i] = r.PolicyRate
		md.RateChange[i] = r.RateChange
		md.SpreadP25[i] = r.Thresholds.P25
		md.SpreadP50[i] = r.Thresholds.P50
		md.SpreadP75[i] = r.Thresholds.P75
		md.SpreadP90[i] = r.Thresholds.P90
	}
	return md
}

// FormatResults creates a human-readable summary of backtest results
func (e *Engine) FormatResults(results *model.BacktestResults) string {
	if results == nil {
		return "No backtest results available"
	}

	output := "\n===== BACKTEST RESULTS =====\n"
	output += fmt.Sprintf("Run: %s\n", results.Metadata.RunID)
	output += fmt.Sprintf("Period: %s to %s (%d months)\n",
		results.Metadata.DateRange.Start.Format(time.DateOnly),
		results.Metadata.DateRange.End.Format(time.DateOnly),
		len(results.Rows))

	if len(results.Unavailable) > 0 {
		output += fmt.Sprintf("Unavailable inputs: %v\n", results.Unavailable)
	}

	perf := results.Performance
	if perf == nil {
		output += "\nNo performance metrics (benchmark returns unavailable)\n"
		return output
	}

	output += fmt.Sprintf("\n%-22s %12s %12s\n", "", "Strategy", "Benchmark")
	line := func(label string, s, b float64, unit string) {
		output += fmt.Sprintf("%-22s %11.2f%s %11.2f%s\n", label, s, unit, b, unit)
	}
	line("Total return", perf.Strategy.TotalReturn, perf.Benchmark.TotalReturn, "%")
	line("Annualized return", perf.Strategy.AnnualizedReturn, perf.Benchmark.AnnualizedReturn, "%")
	line("Volatility", perf.Strategy.Volatility, perf.Benchmark.Volatility, "%")
	line("Sharpe ratio", perf.Strategy.SharpeRatio, perf.Benchmark.SharpeRatio, " ")
	line("Sortino ratio", perf.Strategy.SortinoRatio, perf.Benchmark.SortinoRatio, " ")
	line("Maximum drawdown", perf.Strategy.MaxDrawdown, perf.Benchmark.MaxDrawdown, "%")
	line("Win rate", perf.Strategy.WinRate, perf.Benchmark.WinRate, "%")
	output += fmt.Sprintf("Risk-free rate: %.2f%%\n", perf.RiskFreeRate)

	output += "\nOutperformance:\n"
	output += fmt.Sprintf("- Annualized return: %+.2f%%\n", perf.Outperformance.AnnualizedReturn)
	output += fmt.Sprintf("- Sharpe improvement: %+.2f\n", perf.Outperformance.SharpeImprovement)
	output += fmt.Sprintf("- Max drawdown improvement: %+.2f%%\n", perf.Outperformance.MaxDDImprovement)

	if len(perf.RegimeStats) > 0 {
		output += "\nPerformance by regime:\n"
		for _, r := range model.Regimes {
			stat, ok := perf.RegimeStats[r.String()]
			if !ok {
				continue
			}
			output += fmt.Sprintf("- %s: %d months, strategy %.2f%% avg, benchmark %.2f%% avg\n",
				r, stat.Count, stat.MeanStrategy, stat.MeanBenchmark)
		}
	}

	if len(perf.Segments) > 0 {
		output += "\nPerformance by policy rate:\n"

		keys := make([]string, 0, len(perf.Segments))
		for k := range perf.Segments {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			seg := perf.Segments[k]
			output += fmt.Sprintf("- %s (%d months): strategy %.2f%%/yr, benchmark %.2f%%/yr\n",
				k, seg.NMonths, seg.Strategy.AnnualizedReturn, seg.Benchmark.AnnualizedReturn)
		}
	}

	if n := len(results.CurrentReview); n > 0 {
		last := results.CurrentReview[n-1]
		output += fmt.Sprintf("\nCurrent regime: %s", last.Regime)
		if last.PositionSize != nil {
			output += fmt.Sprintf(" (exposure %.0f%%)", *last.PositionSize*100)
		}
		output += "\n"
	}

	return output
}
