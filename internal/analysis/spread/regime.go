package spread

import (
	"math"

	"github.com/Alias1177/CreditRegime/internal/model"
)

// Classify maps a spread onto its regime band given the thresholds at the same timestamp.
// Bands include their upper bound. A missing spread or threshold yields RegimeUnknown.
func Classify(spread float64, th model.Thresholds) model.Regime {
	if math.IsNaN(spread) || !th.Complete() {
		return model.RegimeUnknown
	}

	switch {
	case spread <= th.P25:
		return model.RegimeLowSpread
	case spread <= th.P50:
		return model.RegimeModerateLow
	case spread <= th.P75:
		return model.RegimeModerateHigh
	case spread <= th.P90:
		return model.RegimeHighSpread
	default:
		return model.RegimeVeryHighSpread
	}
}

// ClassifySeries classifies each position. Positions beyond the shorter input are Unknown.
func ClassifySeries(spread []float64, th []model.Thresholds) []model.Regime {
	out := make([]model.Regime, len(spread))
	for i, s := range spread {
		if i >= len(th) {
			out[i] = model.RegimeUnknown
			continue
		}
		out[i] = Classify(s, th[i])
	}
	return out
}

// Distribution counts the months spent in each regime.
func Distribution(regimes []model.Regime) map[model.Regime]int {
	counts := make(map[model.Regime]int, len(model.Regimes))
	for _, r := range regimes {
		counts[r]++
	}
	return counts
}
