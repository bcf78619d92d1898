package model

import "time"

// BacktestRow is one month of the backtest after regimes, sizing and compounding.
// Missing values are NaN; the row is never serialized directly.
type BacktestRow struct {
	Time                time.Time
	Spread              float64
	Thresholds          Thresholds
	Regime              Regime
	PositionSize        float64
	BenchmarkReturn     float64
	StrategyReturn      float64
	BenchmarkCumulative float64
	StrategyCumulative  float64
	BenchmarkDrawdown   float64
	StrategyDrawdown    float64
	PolicyRate          float64
	RateChange          RateChange
}

// PerformanceMetrics holds risk-adjusted statistics for one return stream. All values are
// percentages except the ratios and the month count.
type PerformanceMetrics struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	ExcessReturn     float64 `json:"excess_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRate          float64 `json:"win_rate"`
	NMonths          int     `json:"n_months"`
}

// Outperformance is strategy minus benchmark.
type Outperformance struct {
	TotalReturn        float64 `json:"total_return"`
	AnnualizedReturn   float64 `json:"annualized_return"`
	SharpeImprovement  float64 `json:"sharpe_improvement"`
	SortinoImprovement float64 `json:"sortino_improvement"`
	MaxDDImprovement   float64 `json:"max_dd_improvement"`
}

// PeriodMetrics pairs strategy and benchmark statistics over the same rows.
type PeriodMetrics struct {
	NMonths        int                `json:"n_months"`
	Strategy       PerformanceMetrics `json:"strategy"`
	Benchmark      PerformanceMetrics `json:"spy"`
	Outperformance Outperformance     `json:"outperformance"`
}

// RegimeStat summarizes the months spent in one regime.
type RegimeStat struct {
	Count         int     `json:"count"`
	MeanStrategy  float64 `json:"strategy_mean"`
	StdStrategy   float64 `json:"strategy_std"`
	MeanBenchmark float64 `json:"spy_mean"`
}

// ReviewRecord is one month of the recent strategy review.
type ReviewRecord struct {
	Date            time.Time `json:"date"`
	Regime          Regime    `json:"regime"`
	Spread          *float64  `json:"spread"`
	PositionSize    *float64  `json:"position_size"`
	BenchmarkReturn *float64  `json:"spy_return"`
	StrategyReturn  *float64  `json:"strategy_return"`
	HasAction       bool      `json:"has_action"`
	Action          *string   `json:"action"`
}

// Review actions.
const (
	ActionIncrease     = "Increase Position"
	ActionDecrease     = "Decrease Position"
	ActionRegimeChange = "Regime Change"
)

// PerformanceReport is the aggregate metrics object of a run.
type PerformanceReport struct {
	Benchmark      PerformanceMetrics       `json:"spy"`
	Strategy       PerformanceMetrics       `json:"strategy"`
	Outperformance Outperformance           `json:"outperformance"`
	RiskFreeRate   float64                  `json:"risk_free_rate"`
	RegimeStats    map[string]RegimeStat    `json:"regime_stats"`
	Segments       map[string]PeriodMetrics `json:"fed_rate_periods"`
}

// DateRange bounds a run.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BacktestMetadata identifies a run.
type BacktestMetadata struct {
	RunID        string    `json:"run_id"`
	BacktestDate time.Time `json:"backtest_date"`
	DateRange    DateRange `json:"date_range"`
}

// MonthlyData is the column-oriented view of the backtest rows consumed by reporting.
type MonthlyData struct {
	Dates               []string     `json:"dates"`
	BenchmarkReturns    Float64s     `json:"spy_returns"`
	StrategyReturns     Float64s     `json:"strategy_returns"`
	BenchmarkCumulative Float64s     `json:"spy_cumulative"`
	StrategyCumulative  Float64s     `json:"strategy_cumulative"`
	BenchmarkDrawdown   Float64s     `json:"spy_drawdown"`
	StrategyDrawdown    Float64s     `json:"strategy_drawdown"`
	Regime              []Regime     `json:"regime"`
	PositionSize        Float64s     `json:"position_size"`
	Spread              Float64s     `json:"spread"`
	PolicyRate          Float64s     `json:"fedfunds"`
	RateChange          []RateChange `json:"fed_rate_change_type"`
	SpreadP25           Float64s     `json:"spread_p25"`
	SpreadP50           Float64s     `json:"spread_p50"`
	SpreadP75           Float64s     `json:"spread_p75"`
	SpreadP90           Float64s     `json:"spread_p90"`
}

// BacktestResults is the result bundle of one run.
type BacktestResults struct {
	Metadata      BacktestMetadata   `json:"metadata"`
	Performance   *PerformanceReport `json:"performance_metrics"`
	RatePeriods   []RatePeriod       `json:"fed_rate_periods"`
	CurrentReview []ReviewRecord     `json:"current_strategy_review"`
	MonthlyData   MonthlyData        `json:"monthly_data"`
	Unavailable   []string           `json:"unavailable"`
	Rows          []BacktestRow      `json:"-"`
}
