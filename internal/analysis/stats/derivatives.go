package stats

import (
	"math"

	"github.com/Alias1177/CreditRegime/internal/model"
	"gonum.org/v1/gonum/stat"
)

// Derivatives are the transformed views of one monthly column.
type Derivatives struct {
	MoM    model.Float64s
	QoQ    model.Float64s
	YoY    model.Float64s
	MoMDir model.Float64s
	YoYDir model.Float64s
	ZScore model.Float64s
}

// Derive computes period-over-period changes, their signs and a rolling z-score.
func Derive(values []float64) Derivatives {
	d := Derivatives{
		MoM:    PctChange(values, 1),
		QoQ:    PctChange(values, 3),
		YoY:    PctChange(values, 12),
		ZScore: RollingZScore(values, 60, 12),
	}
	d.MoMDir = direction(d.MoM)
	d.YoYDir = direction(d.YoY)
	return d
}

// PctChange returns 100*(v[t]/v[t-k]-1). Missing operands or a zero base yield missing.
func PctChange(values []float64, k int) model.Float64s {
	out := model.NewMissing(len(values))
	for t := k; t < len(values); t++ {
		prev, cur := values[t-k], values[t]
		if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
			continue
		}
		out[t] = (cur/prev - 1) * 100
	}
	return out
}

// RollingZScore standardizes each value against its trailing window. Windows with fewer
// than minPeriods observations or zero dispersion yield missing.
func RollingZScore(values []float64, window, minPeriods int) model.Float64s {
	out := model.NewMissing(len(values))
	buf := make([]float64, 0, window)
	for t, v := range values {
		if math.IsNaN(v) {
			continue
		}
		buf = buf[:0]
		for _, w := range values[max(0, t-window+1) : t+1] {
			if !math.IsNaN(w) {
				buf = append(buf, w)
			}
		}
		if len(buf) < minPeriods || len(buf) < 2 {
			continue
		}
		mean, std := stat.MeanStdDev(buf, nil)
		if std == 0 {
			continue
		}
		out[t] = (v - mean) / std
	}
	return out
}

// direction is the sign of each value, with missing treated as zero.
func direction(values model.Float64s) model.Float64s {
	out := make(model.Float64s, len(values))
	for i, v := range values {
		switch {
		case v > 0:
			out[i] = 1
		case v < 0:
			out[i] = -1
		}
	}
	return out
}
