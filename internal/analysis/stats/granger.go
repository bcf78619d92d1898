package stats

import (
	"errors"
	"math"

	"github.com/Alias1177/CreditRegime/internal/model"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultGrangerLags is the highest lag order tested.
const DefaultGrangerLags = 6

// ErrInsufficientData is returned when a test has too few aligned observations.
var ErrInsufficientData = errors.New("insufficient aligned observations")

// Granger runs the sum-of-squared-residuals F-test of "x does not Granger-cause y" for
// every lag order from 1 to maxLag. Each order compares an autoregression of y on its own
// lags against one that adds the lags of x.
func Granger(x, y []float64, maxLag int) ([]model.GrangerPoint, error) {
	a, b := paired(x, y)
	if len(a) < MinAligned {
		return nil, ErrInsufficientData
	}

	var out []model.GrangerPoint
	for p := 1; p <= maxLag; p++ {
		pt, ok := grangerAt(a, b, p)
		if !ok {
			continue
		}
		out = append(out, pt)
	}
	return out, nil
}

func grangerAt(x, y []float64, p int) (model.GrangerPoint, bool) {
	nobs := len(y) - p
	dfDenom := nobs - 2*p - 1
	if nobs <= 0 || dfDenom <= 0 {
		return model.GrangerPoint{}, false
	}

	target := mat.NewVecDense(nobs, nil)
	restricted := mat.NewDense(nobs, p+1, nil)
	unrestricted := mat.NewDense(nobs, 2*p+1, nil)
	for i := 0; i < nobs; i++ {
		t := i + p
		target.SetVec(i, y[t])
		restricted.Set(i, 0, 1)
		unrestricted.Set(i, 0, 1)
		for k := 1; k <= p; k++ {
			restricted.Set(i, k, y[t-k])
			unrestricted.Set(i, k, y[t-k])
			unrestricted.Set(i, p+k, x[t-k])
		}
	}

	ssrR, err := ssr(restricted, target)
	if err != nil {
		return model.GrangerPoint{}, false
	}
	ssrU, err := ssr(unrestricted, target)
	if err != nil || ssrU <= 0 {
		return model.GrangerPoint{}, false
	}

	f := ((ssrR - ssrU) / float64(p)) / (ssrU / float64(dfDenom))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return model.GrangerPoint{}, false
	}
	dist := distuv.F{D1: float64(p), D2: float64(dfDenom)}
	return model.GrangerPoint{Lag: p, FStat: f, PValue: 1 - dist.CDF(math.Max(f, 0))}, true
}

// ssr fits target on design by least squares and returns the residual sum of squares.
func ssr(design *mat.Dense, target *mat.VecDense) (float64, error) {
	var beta mat.VecDense
	if err := beta.SolveVec(design, target); err != nil {
		return 0, err
	}
	var fitted mat.VecDense
	fitted.MulVec(design, &beta)

	var resid mat.VecDense
	resid.SubVec(target, &fitted)
	return mat.Dot(&resid, &resid), nil
}
