package report

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Alias1177/CreditRegime/internal/config"
	"github.com/Alias1177/CreditRegime/internal/dataset"
	"github.com/Alias1177/CreditRegime/internal/model"
	"github.com/Alias1177/CreditRegime/internal/trading/backtest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFrame(n int) *model.Frame {
	f := &model.Frame{
		Times:           make([]time.Time, n),
		Spread:          make(model.Float64s, n),
		BenchmarkReturn: make(model.Float64s, n),
		PolicyRate:      make(model.Float64s, n),
	}
	for i := 0; i < n; i++ {
		f.Times[i] = time.Date(2015, time.February, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, -1)
		f.Spread[i] = 3 + math.Sin(float64(i)/3)
		f.BenchmarkReturn[i] = math.Cos(float64(i)/2) * 2
		f.PolicyRate[i] = 1 + 0.25*float64(i/6)
	}
	f.BenchmarkReturn[0] = math.NaN()
	return f
}

func sampleResults(t *testing.T) *model.BacktestResults {
	t.Helper()
	results, err := backtest.NewEngine(config.DefaultStrategy()).Run(sampleFrame(36))
	require.NoError(t, err)
	return results
}

func TestSaveAndLoadBacktest(t *testing.T) {
	dir := t.TempDir()
	results := sampleResults(t)

	require.NoError(t, SaveBacktest(dir, results))

	loaded, err := LoadBacktest(filepath.Join(dir, BacktestJSON))
	require.NoError(t, err)
	assert.Equal(t, results.Metadata.RunID, loaded.Metadata.RunID)
	assert.Len(t, loaded.MonthlyData.Dates, 36)
	assert.Equal(t, results.MonthlyData.Regime, loaded.MonthlyData.Regime)
	assert.True(t, model.IsMissing(loaded.MonthlyData.SpreadP25[0]), "missing thresholds survive as null")
	require.NotNil(t, loaded.Performance)
	assert.Equal(t, results.Performance.Strategy.TotalReturn, loaded.Performance.Strategy.TotalReturn)

	raw, err := os.ReadFile(filepath.Join(dir, BacktestCSV))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 37)
	assert.True(t, strings.HasPrefix(lines[0], "date,HY_IG_Spread,SPY_Returns,Regime"))
	assert.Contains(t, lines[1], "Unknown")

	_, err = LoadBacktest(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSaveAnalysis(t *testing.T) {
	summary := &model.AnalysisSummary{
		NMonths: 10,
		Correlations: []model.CorrelationResult{
			{X: model.ColumnSpread, Y: model.ColumnBenchmarkReturn, Correlation: -0.3, PValue: 0.01, Significant: true, NObs: 40},
		},
		NSignificant: 1,
	}

	t.Run("without_lead_lag", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, SaveAnalysis(dir, summary))

		raw, err := os.ReadFile(filepath.Join(dir, CorrelationsCSV))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "HY_IG_Spread,SPY_Returns,-0.3,0.01,true,40")
		assert.NoFileExists(t, filepath.Join(dir, LeadLagCSV))
	})

	t.Run("with_lead_lag", func(t *testing.T) {
		dir := t.TempDir()
		withLags := *summary
		withLags.LeadLag = []model.LeadLagPoint{{Lag: -2, Correlation: -0.4, PValue: 0.001, NObs: 38}}
		withLags.BestLag = &withLags.LeadLag[0]
		require.NoError(t, SaveAnalysis(dir, &withLags))

		raw, err := os.ReadFile(filepath.Join(dir, LeadLagCSV))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "-2,-0.4,0.001,38")

		var decoded map[string]any
		data, err := os.ReadFile(filepath.Join(dir, AnalysisJSON))
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.EqualValues(t, 1, decoded["n_significant"])
	})
}

func TestSaveDataset(t *testing.T) {
	daily := sampleFrame(5)
	daily.HYOAS = model.Float64s{5, 5, 5, 5, 5}
	daily.IGOAS = nil
	daily.BenchmarkReturn = nil
	bundle := &dataset.Bundle{
		Daily:     daily,
		Monthly:   sampleFrame(3),
		Quarterly: sampleFrame(1),
		Stats:     dataset.SpreadStats(daily),
	}

	dir := t.TempDir()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, SaveDataset(dir, bundle, now))

	data, err := os.ReadFile(filepath.Join(dir, DatasetJSON))
	require.NoError(t, err)

	var doc struct {
		Metadata DatasetMetadata            `json:"metadata"`
		Daily    map[string]json.RawMessage `json:"daily"`
		Monthly  map[string]json.RawMessage `json:"monthly"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 5, doc.Metadata.TotalRecords)
	assert.Equal(t, now, doc.Metadata.GeneratedAt)
	assert.JSONEq(t, `[null,null,null,null,null]`, string(doc.Daily["ig_oas"]))
	assert.NotContains(t, doc.Daily, "spy_returns")
	assert.Contains(t, doc.Monthly, "spy_returns")
}

func TestRunMetrics(t *testing.T) {
	results := sampleResults(t)

	m := NewRunMetrics()
	m.Observe(results)

	assert.Equal(t, results.Performance.Strategy.SharpeRatio, testutil.ToFloat64(m.Sharpe.WithLabelValues("strategy")))
	assert.Equal(t, results.Performance.Benchmark.MaxDrawdown, testutil.ToFloat64(m.MaxDrawdown.WithLabelValues("spy")))

	last := results.MonthlyData.Regime[len(results.MonthlyData.Regime)-1]
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Regime.WithLabelValues(last.String())))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Regime.WithLabelValues(model.RegimeUnknown.String())))

	path, err := m.WriteTextfile(t.TempDir())
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "creditregime_sharpe_ratio{stream=\"strategy\"}")
}

func TestPlotCharts(t *testing.T) {
	dir := t.TempDir()
	written, err := PlotCharts(dir, sampleResults(t).MonthlyData)
	require.NoError(t, err)
	require.Len(t, written, 3)
	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	empty := model.MonthlyData{
		Dates:               []string{"2020-01-31"},
		StrategyCumulative:  model.NewMissing(1),
		BenchmarkCumulative: model.NewMissing(1),
	}
	assert.ErrorIs(t, PlotEquity(empty, filepath.Join(dir, "empty.png")), ErrNothingToPlot)
}

func TestFormatAnalysis(t *testing.T) {
	assert.Equal(t, "No analysis results available", FormatAnalysis(nil))

	out := FormatAnalysis(&model.AnalysisSummary{
		NMonths:      24,
		Correlations: []model.CorrelationResult{{X: model.ColumnSpread, Y: model.ColumnBenchmarkReturn, Correlation: -0.25, PValue: 0.02, NObs: 24}},
		BestLag:      &model.LeadLagPoint{Lag: -3, Correlation: -0.31},
		Granger:      []model.GrangerPoint{{Lag: 1, PValue: 0.2}, {Lag: 2, PValue: 0.03}},
		Quartiles:    []model.QuartileStat{{Label: "Q1 (Lowest)", Count: 6, Mean: 1.2}},
	})
	assert.Contains(t, out, "Level correlation: -0.250")
	assert.Contains(t, out, "Best lag: -3 months")
	assert.Contains(t, out, "minimum p-value 0.0300 at lag 2")
	assert.Contains(t, out, "Q1 (Lowest): 6 months")
}
