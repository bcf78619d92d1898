package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/Alias1177/CreditRegime/internal/dataset"
	"github.com/Alias1177/CreditRegime/internal/model"
)

// FormatAnalysis creates a human-readable summary of the exploratory statistics
func FormatAnalysis(s *model.AnalysisSummary) string {
	if s == nil {
		return "No analysis results available"
	}

	output := "\n===== SPREAD ANALYSIS =====\n"
	output += fmt.Sprintf("Period: %s to %s (%d months)\n",
		s.DataPeriod.Start.Format(time.DateOnly), s.DataPeriod.End.Format(time.DateOnly), s.NMonths)
	output += fmt.Sprintf("Correlations: %d pairs, %d significant\n", len(s.Correlations), s.NSignificant)

	for _, c := range s.Correlations {
		if c.X == model.ColumnSpread && c.Y == model.ColumnBenchmarkReturn {
			output += fmt.Sprintf("- Level correlation: %.3f (p=%.4f, n=%d)\n", c.Correlation, c.PValue, c.NObs)
		}
	}

	if s.BestLag != nil {
		output += fmt.Sprintf("Best lag: %d months (correlation %.3f, p=%.4f)\n",
			s.BestLag.Lag, s.BestLag.Correlation, s.BestLag.PValue)
	}

	if len(s.Granger) > 0 {
		minP := s.Granger[0]
		for _, g := range s.Granger[1:] {
			if g.PValue < minP.PValue {
				minP = g
			}
		}
		output += fmt.Sprintf("Granger causality: minimum p-value %.4f at lag %d\n", minP.PValue, minP.Lag)
	}

	if len(s.Quartiles) > 0 {
		output += "\nReturns by spread quartile:\n"
		for _, q := range s.Quartiles {
			output += fmt.Sprintf("- %s: %d months, mean %.2f%%, Sharpe %.2f\n", q.Label, q.Count, q.Mean, q.Sharpe)
		}
	}
	return output
}

// FormatDataset summarizes the size and coverage of a prepared dataset
func FormatDataset(b *dataset.Bundle) string {
	if b == nil || b.Daily.Len() == 0 {
		return "No data available"
	}

	output := "\n===== DATASET =====\n"
	output += fmt.Sprintf("Date range: %s to %s\n",
		b.Daily.Times[0].Format(time.DateOnly), b.Daily.Times[b.Daily.Len()-1].Format(time.DateOnly))
	output += fmt.Sprintf("Records: %d daily, %d monthly, %d quarterly\n",
		b.Daily.Len(), b.Monthly.Len(), b.Quarterly.Len())

	coverage := dataset.Coverage(b.Daily)
	names := make([]string, 0, len(coverage))
	for name := range coverage {
		names = append(names, name)
	}
	sort.Strings(names)

	output += "\nData coverage:\n"
	for _, name := range names {
		output += fmt.Sprintf("- %s: %.1f%%\n", name, coverage[name])
	}

	output += fmt.Sprintf("\nSpread: mean %.2f, std %.2f, range %.2f to %.2f\n",
		b.Stats.Mean, b.Stats.Std, b.Stats.Min, b.Stats.Max)
	output += fmt.Sprintf("Percentiles: P25 %.2f, P50 %.2f, P75 %.2f, P90 %.2f\n",
		b.Stats.P25, b.Stats.P50, b.Stats.P75, b.Stats.P90)
	return output
}
