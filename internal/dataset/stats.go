package dataset

import (
	"math"
	"sort"

	"github.com/Alias1177/CreditRegime/internal/analysis/spread"
	"github.com/Alias1177/CreditRegime/internal/model"
	"gonum.org/v1/gonum/stat"
)

// SpreadStats describes the non-missing spread observations of f.
func SpreadStats(f *model.Frame) model.SpreadStats {
	values := make([]float64, 0, f.Len())
	for _, v := range f.Spread {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return model.SpreadStats{}
	}

	sort.Float64s(values)
	s := model.SpreadStats{
		Mean: stat.Mean(values, nil),
		Min:  values[0],
		Max:  values[len(values)-1],
		P25:  spread.Quantile(values, spread.Q25),
		P50:  spread.Quantile(values, spread.Q50),
		P75:  spread.Quantile(values, spread.Q75),
		P90:  spread.Quantile(values, spread.Q90),
	}
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
	}
	return s
}

// Coverage returns the share of rows, in percent, carrying a value for each present column.
func Coverage(f *model.Frame) map[string]float64 {
	out := make(map[string]float64)
	if f.Len() == 0 {
		return out
	}
	for name, col := range f.Columns() {
		out[name] = float64(col.Count()) / float64(f.Len()) * 100
	}
	return out
}
