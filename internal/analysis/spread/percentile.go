package spread

import (
	"iter"
	"math"
	"sort"

	"github.com/Alias1177/CreditRegime/internal/model"
)

// Default window parameters for monthly data: five years of history, at least one year observed.
const (
	DefaultWindow     = 60
	DefaultMinPeriods = 12
)

// Quantile levels of the regime bands.
const (
	Q25 = 0.25
	Q50 = 0.50
	Q75 = 0.75
	Q90 = 0.90
)

// Quantile returns the q-quantile of an ascending slice using linear interpolation
// between order statistics at h = q*(n-1). An empty slice yields NaN.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 || q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	h := q * float64(n-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// Thresholds lazily yields the trailing-window thresholds of every position of values.
// The window at t covers positions [t-window+1, t]; missing values inside it are skipped
// and the window is valid once minPeriods values have been observed.
func Thresholds(values []float64, window, minPeriods int) iter.Seq2[int, model.Thresholds] {
	if window < 1 {
		window = 1
	}
	if minPeriods < 1 {
		minPeriods = 1
	}
	return func(yield func(int, model.Thresholds) bool) {
		buf := make([]float64, 0, window)
		for t := range values {
			start := t - window + 1
			if start < 0 {
				start = 0
			}

			buf = buf[:0]
			for _, v := range values[start : t+1] {
				if !math.IsNaN(v) {
					buf = append(buf, v)
				}
			}

			if !yield(t, windowThresholds(buf, minPeriods)) {
				return
			}
		}
	}
}

// RollingThresholds materializes Thresholds into one entry per input position.
func RollingThresholds(values []float64, window, minPeriods int) []model.Thresholds {
	out := make([]model.Thresholds, len(values))
	for t, th := range Thresholds(values, window, minPeriods) {
		out[t] = th
	}
	return out
}

// windowThresholds sorts buf in place.
func windowThresholds(buf []float64, minPeriods int) model.Thresholds {
	if len(buf) < minPeriods {
		return model.InvalidThresholds(len(buf))
	}
	sort.Float64s(buf)
	return model.Thresholds{
		P25:   Quantile(buf, Q25),
		P50:   Quantile(buf, Q50),
		P75:   Quantile(buf, Q75),
		P90:   Quantile(buf, Q90),
		Count: len(buf),
		Valid: true,
	}
}
