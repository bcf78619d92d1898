package stats

import (
	"math"
	"sort"

	"github.com/Alias1177/CreditRegime/internal/analysis/spread"
	"github.com/Alias1177/CreditRegime/internal/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var quartileLabels = []string{"Q1 (Lowest)", "Q2", "Q3", "Q4 (Highest)"}

// Quartiles buckets returns by the full-sample quartile of the spread observed in the same
// month and summarizes each bucket. Bucket upper bounds are inclusive.
func Quartiles(spreads, returns []float64) ([]model.QuartileStat, []float64, error) {
	s, r := paired(spreads, returns)
	if len(s) < MinAligned {
		return nil, nil, ErrInsufficientData
	}

	sorted := append([]float64(nil), s...)
	sort.Float64s(sorted)
	edges := []float64{
		spread.Quantile(sorted, 0.25),
		spread.Quantile(sorted, 0.50),
		spread.Quantile(sorted, 0.75),
	}

	buckets := make([][]float64, len(quartileLabels))
	for i, v := range s {
		k := sort.SearchFloat64s(edges, v)
		buckets[k] = append(buckets[k], r[i])
	}

	out := make([]model.QuartileStat, 0, len(buckets))
	for k, values := range buckets {
		qs := model.QuartileStat{Label: quartileLabels[k], Count: len(values)}
		if len(values) > 0 {
			qs.Mean = round4(stat.Mean(values, nil))
			qs.Sum = round4(floats.Sum(values))
		}
		if len(values) > 1 {
			qs.Std = round4(stat.StdDev(values, nil))
		}
		if qs.Std > 0 {
			qs.Sharpe = qs.Mean / qs.Std * math.Sqrt(12)
		}
		out = append(out, qs)
	}
	return out, edges, nil
}

func round4(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*1e4) / 1e4
}
