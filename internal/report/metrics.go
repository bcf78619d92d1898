package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// RunMetrics holds the gauges exported after a backtest run.
type RunMetrics struct {
	registry *prometheus.Registry

	TotalReturn  *prometheus.GaugeVec
	Annualized   *prometheus.GaugeVec
	Sharpe       *prometheus.GaugeVec
	Sortino      *prometheus.GaugeVec
	MaxDrawdown  *prometheus.GaugeVec
	RegimeMonths *prometheus.GaugeVec
	Regime       *prometheus.GaugeVec
	Position     prometheus.Gauge
	Spread       prometheus.Gauge
	LastRun      prometheus.Gauge
}

// NewRunMetrics creates the gauges on a private registry.
func NewRunMetrics() *RunMetrics {
	stream := []string{"stream"}
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		TotalReturn: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creditregime_total_return_percent",
			Help: "Total compounded return over the backtest",
		}, stream),
		Annualized: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creditregime_annualized_return_percent",
			Help: "Annualized return over the backtest",
		}, stream),
		Sharpe: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creditregime_sharpe_ratio",
			Help: "Annualized Sharpe ratio",
		}, stream),
		Sortino: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creditregime_sortino_ratio",
			Help: "Annualized Sortino ratio",
		}, stream),
		MaxDrawdown: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creditregime_max_drawdown_percent",
			Help: "Deepest peak-to-trough decline",
		}, stream),
		RegimeMonths: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creditregime_regime_months",
			Help: "Months with returns spent in each regime",
		}, []string{"regime"}),
		Regime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creditregime_current_regime",
			Help: "1 for the regime of the latest month",
		}, []string{"regime"}),
		Position: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creditregime_current_position_size",
			Help: "Equity exposure of the latest month",
		}),
		Spread: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creditregime_current_spread_percent",
			Help: "HY-IG spread of the latest month",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creditregime_last_run_timestamp_seconds",
			Help: "Unix time of the backtest run",
		}),
	}
	m.registry.MustRegister(
		m.TotalReturn, m.Annualized, m.Sharpe, m.Sortino, m.MaxDrawdown,
		m.RegimeMonths, m.Regime, m.Position, m.Spread, m.LastRun,
	)
	return m
}

// Registry exposes the private registry for gathering.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe sets every gauge from results.
func (m *RunMetrics) Observe(results *model.BacktestResults) {
	m.LastRun.Set(float64(results.Metadata.BacktestDate.Unix()))

	if perf := results.Performance; perf != nil {
		for stream, pm := range map[string]model.PerformanceMetrics{
			"strategy": perf.Strategy,
			"spy":      perf.Benchmark,
		} {
			m.TotalReturn.WithLabelValues(stream).Set(pm.TotalReturn)
			m.Annualized.WithLabelValues(stream).Set(pm.AnnualizedReturn)
			m.Sharpe.WithLabelValues(stream).Set(pm.SharpeRatio)
			m.Sortino.WithLabelValues(stream).Set(pm.SortinoRatio)
			m.MaxDrawdown.WithLabelValues(stream).Set(pm.MaxDrawdown)
		}
		for label, rs := range perf.RegimeStats {
			m.RegimeMonths.WithLabelValues(label).Set(float64(rs.Count))
		}
	}

	md := results.MonthlyData
	if n := len(md.Regime); n > 0 {
		current := md.Regime[n-1]
		for _, r := range model.Regimes {
			v := 0.0
			if r == current {
				v = 1
			}
			m.Regime.WithLabelValues(r.String()).Set(v)
		}
		if n <= len(md.PositionSize) && !model.IsMissing(md.PositionSize[n-1]) {
			m.Position.Set(md.PositionSize[n-1])
		}
		if n <= len(md.Spread) && !model.IsMissing(md.Spread[n-1]) {
			m.Spread.Set(md.Spread[n-1])
		}
	}
}

// WriteTextfile writes the gauges in the node exporter textfile format into dir.
func (m *RunMetrics) WriteTextfile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}
	path := filepath.Join(dir, MetricsFile)
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return "", fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return path, nil
}

// ExportMetrics observes results and writes the textfile into dir.
func ExportMetrics(dir string, results *model.BacktestResults) (string, error) {
	start := time.Now()
	m := NewRunMetrics()
	m.Observe(results)
	path, err := m.WriteTextfile(dir)
	if err != nil {
		return "", err
	}
	log.Debug().Str("component", "report").Str("path", path).Dur("took", time.Since(start)).Msg("Exported run metrics")
	return path, nil
}
