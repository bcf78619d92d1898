package stats

import (
	"math"

	"github.com/Alias1177/CreditRegime/internal/model"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Observation thresholds of the exploratory tests.
const (
	MinPairs       = 30
	MinAligned     = 50
	DefaultMaxLag  = 12
	SignificanceAt = 0.05
)

// Column is a named numeric series aligned with the frame index.
type Column struct {
	Name   string
	Values []float64
}

// Pearson returns the correlation of x and y and its two-sided p-value under the
// Student t distribution with n-2 degrees of freedom.
func Pearson(x, y []float64) (r, p float64) {
	n := len(x)
	if n < 3 || n != len(y) {
		return math.NaN(), math.NaN()
	}
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return r, math.NaN()
	}
	if math.Abs(r) >= 1 {
		return r, 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return r, 2 * (1 - dist.CDF(math.Abs(t)))
}

// CorrelationGrid correlates every x column with every y column over rows where both are
// present. Pairs with fewer than MinPairs observations or no dispersion are skipped.
func CorrelationGrid(xs, ys []Column) []model.CorrelationResult {
	var out []model.CorrelationResult
	for _, x := range xs {
		for _, y := range ys {
			a, b := paired(x.Values, y.Values)
			if len(a) < MinPairs {
				continue
			}
			r, p := Pearson(a, b)
			if math.IsNaN(r) || math.IsNaN(p) {
				continue
			}
			out = append(out, model.CorrelationResult{
				X:           x.Name,
				Y:           y.Name,
				Correlation: r,
				PValue:      p,
				Significant: p < SignificanceAt,
				NObs:        len(a),
			})
		}
	}
	return out
}

// LeadLag scans cross-correlations for lags in [-maxLag, maxLag]. A negative lag pairs
// x[t] with y[t+|lag|], so x leads. It returns nil when fewer than MinAligned rows are
// aligned or either series is constant.
func LeadLag(x, y []float64, maxLag int) (points []model.LeadLagPoint, best *model.LeadLagPoint) {
	a, b := paired(x, y)
	if len(a) < MinAligned {
		return nil, nil
	}
	if stat.StdDev(a, nil) == 0 || stat.StdDev(b, nil) == 0 {
		return nil, nil
	}

	n := len(a)
	for lag := -maxLag; lag <= maxLag; lag++ {
		var xs, ys []float64
		switch {
		case lag < 0:
			xs, ys = a[:n+lag], b[-lag:]
		case lag > 0:
			xs, ys = a[lag:], b[:n-lag]
		default:
			xs, ys = a, b
		}
		if len(xs) < MinPairs {
			continue
		}
		r, p := Pearson(xs, ys)
		if math.IsNaN(r) || math.IsNaN(p) {
			continue
		}
		points = append(points, model.LeadLagPoint{Lag: lag, Correlation: r, PValue: p, NObs: len(xs)})
	}

	for i := range points {
		if best == nil || math.Abs(points[i].Correlation) > math.Abs(best.Correlation) {
			pt := points[i]
			best = &pt
		}
	}
	return points, best
}

// paired keeps the positions where both inputs are present.
func paired(x, y []float64) (a, b []float64) {
	n := min(len(x), len(y))
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		a = append(a, x[i])
		b = append(b, y[i])
	}
	return a, b
}
