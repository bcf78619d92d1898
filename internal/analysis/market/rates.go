package market

import (
	"math"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
)

// Defaults for monthly policy-rate segmentation, in percentage points.
const (
	DefaultRateChangeThreshold = 0.05
	DefaultRateLevel           = 2.5
)

// diffPrecision removes binary noise from rate differences before the threshold comparison.
const diffPrecision = 1e9

// ClassifyRateChanges labels each step by the direction of the forward-filled policy rate.
// A step is an increase when its difference exceeds +threshold and a decrease when it is
// below -threshold. The first row, and rows before the first observation, are RateNone.
func ClassifyRateChanges(rates []float64, threshold float64) []model.RateChange {
	out := make([]model.RateChange, len(rates))
	filled := model.ForwardFill(rates, 0)
	for i := 1; i < len(filled); i++ {
		prev, cur := filled[i-1], filled[i]
		if math.IsNaN(prev) || math.IsNaN(cur) {
			continue
		}
		diff := math.Round((cur-prev)*diffPrecision) / diffPrecision
		switch {
		case diff > threshold:
			out[i] = model.RateIncrease
		case diff < -threshold:
			out[i] = model.RateDecrease
		}
	}
	return out
}

// RatePeriods collapses step labels into maximal runs of one non-none direction.
// A run ends at the timestamp of the first step with a different label; a run still open
// at the end of the series closes at the last timestamp.
func RatePeriods(times []time.Time, changes []model.RateChange) []model.RatePeriod {
	n := min(len(times), len(changes))
	var (
		periods []model.RatePeriod
		open    *model.RatePeriod
	)

	for i := 0; i < n; i++ {
		c := changes[i]
		if open != nil && c == open.Type {
			continue
		}
		if open != nil {
			open.End = times[i]
			periods = append(periods, *open)
			open = nil
		}
		if c != model.RateNone {
			open = &model.RatePeriod{Type: c, Start: times[i]}
		}
	}

	if open != nil {
		open.End = times[n-1]
		periods = append(periods, *open)
	}
	return periods
}

// PartitionByChange returns the rows whose step label equals change.
func PartitionByChange(rows []model.BacktestRow, change model.RateChange) []model.BacktestRow {
	var out []model.BacktestRow
	for _, r := range rows {
		if r.RateChange == change {
			out = append(out, r)
		}
	}
	return out
}

// PartitionByLevel returns the rows whose policy rate is at or above level (above=true)
// or strictly below it. Rows with a missing rate belong to neither side.
func PartitionByLevel(rows []model.BacktestRow, level float64, above bool) []model.BacktestRow {
	var out []model.BacktestRow
	for _, r := range rows {
		if math.IsNaN(r.PolicyRate) {
			continue
		}
		if (r.PolicyRate >= level) == above {
			out = append(out, r)
		}
	}
	return out
}

// CountChanges tallies step labels by name.
func CountChanges(changes []model.RateChange) map[string]int {
	counts := make(map[string]int, 3)
	for _, c := range changes {
		counts[c.String()]++
	}
	return counts
}
