package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
	"github.com/rs/zerolog/log"
)

// ErrMissingColumn is returned when the frame lacks the spread or the benchmark.
var ErrMissingColumn = errors.New("frame lacks a required column")

// Analyze runs the exploratory statistics of the spread against benchmark returns over a
// monthly frame. Tests without enough data are left empty rather than failing the run.
func Analyze(frame *model.Frame, now time.Time) (*model.AnalysisSummary, error) {
	logger := log.With().Str("component", "analysis").Logger()

	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if !frame.HasSpread() {
		return nil, fmt.Errorf("%s: %w", model.ColumnSpread, ErrMissingColumn)
	}
	returns := frame.BenchmarkReturn
	if returns == nil && frame.HasBenchmarkPrice() {
		returns = model.PercentChange(frame.BenchmarkPrice)
	}
	if returns == nil {
		return nil, fmt.Errorf("%s: %w", model.ColumnBenchmarkReturn, ErrMissingColumn)
	}

	summary := &model.AnalysisSummary{
		AnalysisDate: now,
		NMonths:      frame.Len(),
		Correlations: []model.CorrelationResult{},
	}
	if frame.Len() > 0 {
		summary.DataPeriod = model.DateRange{Start: frame.Times[0], End: frame.Times[frame.Len()-1]}
	}

	sd := Derive(frame.Spread)
	xs := []Column{
		{Name: model.ColumnSpread, Values: frame.Spread},
		{Name: "Spread_MoM", Values: sd.MoM},
		{Name: "Spread_QoQ", Values: sd.QoQ},
		{Name: "Spread_YoY", Values: sd.YoY},
		{Name: "Spread_ZScore", Values: sd.ZScore},
	}
	ys := []Column{{Name: model.ColumnBenchmarkReturn, Values: returns}}
	if frame.HasBenchmarkPrice() {
		bd := Derive(frame.BenchmarkPrice)
		ys = append(ys,
			Column{Name: "SPY_MoM", Values: bd.MoM},
			Column{Name: "SPY_QoQ", Values: bd.QoQ},
			Column{Name: "SPY_YoY", Values: bd.YoY},
		)
	}

	if grid := CorrelationGrid(xs, ys); grid != nil {
		summary.Correlations = grid
	}
	for _, c := range summary.Correlations {
		if c.Significant {
			summary.NSignificant++
		}
	}

	summary.LeadLag, summary.BestLag = LeadLag(frame.Spread, returns, DefaultMaxLag)
	if summary.LeadLag == nil {
		logger.Warn().Msg("Lead-lag scan skipped, not enough aligned observations")
	}

	granger, err := Granger(frame.Spread, returns, DefaultGrangerLags)
	if err != nil {
		logger.Warn().Err(err).Msg("Granger causality test skipped")
	}
	summary.Granger = granger

	quartiles, edges, err := Quartiles(frame.Spread, returns)
	if err != nil {
		logger.Warn().Err(err).Msg("Quartile analysis skipped")
	}
	summary.Quartiles = quartiles
	summary.QuartileEdges = edges

	logger.Info().
		Int("pairs", len(summary.Correlations)).
		Int("significant", summary.NSignificant).
		Msg("Analysis complete")
	return summary, nil
}
