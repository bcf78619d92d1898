package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Alias1177/CreditRegime/internal/dataset"
	"github.com/Alias1177/CreditRegime/internal/model"
	"github.com/rs/zerolog/log"
)

// Output file names.
const (
	BacktestJSON    = "strategy_backtest.json"
	BacktestCSV     = "strategy_backtest.csv"
	AnalysisJSON    = "analysis_summary.json"
	CorrelationsCSV = "correlations.csv"
	LeadLagCSV      = "lead_lag.csv"
	DatasetJSON     = "hyig_data.json"
	MetricsFile     = "backtest.prom"
)

const dateLayout = time.DateOnly

// SaveBacktest writes the result bundle as JSON and the monthly rows as CSV into dir.
func SaveBacktest(dir string, results *model.BacktestResults) error {
	if err := writeJSON(filepath.Join(dir, BacktestJSON), results); err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, BacktestCSV), backtestRecords(results.MonthlyData))
}

// LoadBacktest reads a result bundle written by SaveBacktest. Rows are not restored.
func LoadBacktest(path string) (*model.BacktestResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var results model.BacktestResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &results, nil
}

// SaveAnalysis writes the analysis summary plus the correlation and lead-lag tables into dir.
func SaveAnalysis(dir string, summary *model.AnalysisSummary) error {
	if err := writeJSON(filepath.Join(dir, AnalysisJSON), summary); err != nil {
		return err
	}

	corr := [][]string{{"x", "y", "correlation", "p_value", "significant", "n_obs"}}
	for _, c := range summary.Correlations {
		corr = append(corr, []string{
			c.X, c.Y, formatFloat(c.Correlation), formatFloat(c.PValue),
			strconv.FormatBool(c.Significant), strconv.Itoa(c.NObs),
		})
	}
	if err := writeCSV(filepath.Join(dir, CorrelationsCSV), corr); err != nil {
		return err
	}

	if summary.LeadLag == nil {
		return nil
	}
	lags := [][]string{{"lag", "correlation", "p_value", "n_obs"}}
	for _, p := range summary.LeadLag {
		lags = append(lags, []string{
			strconv.Itoa(p.Lag), formatFloat(p.Correlation), formatFloat(p.PValue), strconv.Itoa(p.NObs),
		})
	}
	return writeCSV(filepath.Join(dir, LeadLagCSV), lags)
}

// SaveDataset writes the prepared dataset document into dir.
func SaveDataset(dir string, bundle *dataset.Bundle, now time.Time) error {
	return writeJSON(filepath.Join(dir, DatasetJSON), NewDatasetDocument(bundle, now))
}

func backtestRecords(md model.MonthlyData) [][]string {
	records := [][]string{{
		"date", model.ColumnSpread, model.ColumnBenchmarkReturn, "Regime", "Position_Size",
		"Strategy_Return", "SPY_Cumulative", "Strategy_Cumulative", "SPY_Drawdown",
		"Strategy_Drawdown", model.ColumnPolicyRate, "Fed_Rate_Change_Type",
		"Spread_P25", "Spread_P50", "Spread_P75", "Spread_P90",
	}}
	for i, date := range md.Dates {
		records = append(records, []string{
			date,
			formatFloat(md.Spread[i]),
			formatFloat(md.BenchmarkReturns[i]),
			md.Regime[i].String(),
			formatFloat(md.PositionSize[i]),
			formatFloat(md.StrategyReturns[i]),
			formatFloat(md.BenchmarkCumulative[i]),
			formatFloat(md.StrategyCumulative[i]),
			formatFloat(md.BenchmarkDrawdown[i]),
			formatFloat(md.StrategyDrawdown[i]),
			formatFloat(md.PolicyRate[i]),
			md.RateChange[i].String(),
			formatFloat(md.SpreadP25[i]),
			formatFloat(md.SpreadP50[i]),
			formatFloat(md.SpreadP75[i]),
			formatFloat(md.SpreadP90[i]),
		})
	}
	return records
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Debug().Str("component", "report").Str("path", path).Msg("Wrote JSON")
	return nil
}

func writeCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// formatFloat renders missing values as empty cells.
func formatFloat(v float64) string {
	if model.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
