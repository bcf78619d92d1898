package model

import "time"

// CorrelationResult is one Pearson correlation of the exploratory grid.
type CorrelationResult struct {
	X           string  `json:"x"`
	Y           string  `json:"y"`
	Correlation float64 `json:"correlation"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
	NObs        int     `json:"n_obs"`
}

// LeadLagPoint is the cross-correlation at one lag. Negative lags mean X leads Y.
type LeadLagPoint struct {
	Lag         int     `json:"lag"`
	Correlation float64 `json:"correlation"`
	PValue      float64 `json:"p_value"`
	NObs        int     `json:"n_obs"`
}

// GrangerPoint is the SSR F-test of "X does not Granger-cause Y" at one lag order.
type GrangerPoint struct {
	Lag    int     `json:"lag"`
	FStat  float64 `json:"f_stat"`
	PValue float64 `json:"p_value"`
}

// QuartileStat summarizes returns observed while the spread sat in one quartile.
type QuartileStat struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Sum    float64 `json:"sum"`
	Sharpe float64 `json:"sharpe"`
}

// SpreadStats are descriptive statistics of the spread column.
type SpreadStats struct {
	Mean float64 `json:"spread_mean"`
	Std  float64 `json:"spread_std"`
	Min  float64 `json:"spread_min"`
	Max  float64 `json:"spread_max"`
	P25  float64 `json:"spread_p25"`
	P50  float64 `json:"spread_p50"`
	P75  float64 `json:"spread_p75"`
	P90  float64 `json:"spread_p90"`
}

// AnalysisSummary is the result bundle of the exploratory statistics.
type AnalysisSummary struct {
	AnalysisDate  time.Time           `json:"analysis_date"`
	DataPeriod    DateRange           `json:"data_period"`
	NMonths       int                 `json:"n_months"`
	Correlations  []CorrelationResult `json:"correlations"`
	NSignificant  int                 `json:"n_significant"`
	LeadLag       []LeadLagPoint      `json:"lead_lag"`
	BestLag       *LeadLagPoint       `json:"best_lag"`
	Granger       []GrangerPoint      `json:"granger"`
	Quartiles     []QuartileStat      `json:"regime_analysis"`
	QuartileEdges []float64           `json:"quartile_thresholds"`
}
