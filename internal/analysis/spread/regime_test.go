package spread

import (
	"math"
	"testing"

	"github.com/Alias1177/CreditRegime/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	th := model.Thresholds{P25: 2, P50: 3, P75: 4, P90: 5, Count: 20, Valid: true}

	tests := []struct {
		name   string
		spread float64
		th     model.Thresholds
		want   model.Regime
	}{
		{name: "below_p25", spread: 1.5, th: th, want: model.RegimeLowSpread},
		{name: "at_p25", spread: 2, th: th, want: model.RegimeLowSpread},
		{name: "between_p25_p50", spread: 2.5, th: th, want: model.RegimeModerateLow},
		{name: "at_p50", spread: 3, th: th, want: model.RegimeModerateLow},
		{name: "at_p75", spread: 4, th: th, want: model.RegimeModerateHigh},
		{name: "at_p90", spread: 5, th: th, want: model.RegimeHighSpread},
		{name: "above_p90", spread: 5.01, th: th, want: model.RegimeVeryHighSpread},
		{name: "missing_spread", spread: math.NaN(), th: th, want: model.RegimeUnknown},
		{name: "invalid_thresholds", spread: 1, th: model.InvalidThresholds(3), want: model.RegimeUnknown},
		{name: "degenerate_bands", spread: 50, th: model.Thresholds{P25: 50, P50: 50, P75: 50, P90: 50, Valid: true}, want: model.RegimeLowSpread},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.spread, tt.th))
		})
	}
}

func TestClassifySeriesConstantSpread(t *testing.T) {
	values := make([]float64, 70)
	for i := range values {
		values[i] = 50
	}

	regimes := ClassifySeries(values, RollingThresholds(values, DefaultWindow, DefaultMinPeriods))

	for i, r := range regimes {
		if i < DefaultMinPeriods-1 {
			assert.Equal(t, model.RegimeUnknown, r, "row %d", i)
			continue
		}
		assert.Equal(t, model.RegimeLowSpread, r, "row %d", i)
	}

	dist := Distribution(regimes)
	assert.Equal(t, DefaultMinPeriods-1, dist[model.RegimeUnknown])
	assert.Equal(t, 70-DefaultMinPeriods+1, dist[model.RegimeLowSpread])
}

func TestClassifySeriesShortThresholds(t *testing.T) {
	th := []model.Thresholds{{P25: 1, P50: 2, P75: 3, P90: 4, Valid: true}}
	regimes := ClassifySeries([]float64{0.5, 0.5}, th)
	assert.Equal(t, []model.Regime{model.RegimeLowSpread, model.RegimeUnknown}, regimes)
}
