package stats

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}

	r, p := Pearson(x, []float64{2, 4, 6, 8, 10})
	assert.InDelta(t, 1.0, r, 1e-12)
	assert.InDelta(t, 0.0, p, 1e-6)

	// r = 0.8 with n = 5 gives t = 2.309, two-sided p = 0.1041
	r, p = Pearson(x, []float64{1, 3, 2, 5, 4})
	assert.InDelta(t, 0.8, r, 1e-12)
	assert.InDelta(t, 0.1041, p, 1e-4)

	r, _ = Pearson([]float64{1, 2}, []float64{1, 2})
	assert.True(t, math.IsNaN(r))
}

func TestPctChange(t *testing.T) {
	got := PctChange([]float64{100, 110, 121, math.NaN(), 133.1}, 1)

	assert.True(t, math.IsNaN(got[0]))
	assert.InDelta(t, 10.0, got[1], 1e-9)
	assert.InDelta(t, 10.0, got[2], 1e-9)
	assert.True(t, math.IsNaN(got[3]))
	assert.True(t, math.IsNaN(got[4]))

	yoy := PctChange([]float64{100, 1, 1, 150}, 3)
	assert.InDelta(t, 50.0, yoy[3], 1e-9)
}

func TestDeriveDirection(t *testing.T) {
	d := Derive([]float64{10, 12, 9, 9})
	assert.Equal(t, model.Float64s{0, 1, -1, 0}, d.MoMDir)
}

func TestRollingZScore(t *testing.T) {
	z := RollingZScore([]float64{1, 2, 3, 4}, 60, 3)

	assert.True(t, math.IsNaN(z[1]))
	assert.InDelta(t, 1.0, z[2], 1e-12) // mean 2, sample std 1
	assert.InDelta(t, (4-2.5)/math.Sqrt(5.0/3.0), z[3], 1e-12)

	flat := RollingZScore([]float64{5, 5, 5}, 60, 2)
	assert.True(t, math.IsNaN(flat[2]))
}

func synthetic(n int, seed int64) (spread, returns []float64) {
	rng := rand.New(rand.NewSource(seed))
	spread = make([]float64, n)
	returns = make([]float64, n)
	level := 4.0
	for i := 0; i < n; i++ {
		level += rng.NormFloat64() * 0.2
		spread[i] = level
		returns[i] = rng.NormFloat64() * 4
		if i >= 2 {
			// returns respond to the spread two months earlier
			returns[i] -= 3 * (spread[i-2] - 4)
		}
	}
	return spread, returns
}

func TestLeadLagFindsLeadingSeries(t *testing.T) {
	s, r := synthetic(240, 7)

	points, best := LeadLag(s, r, DefaultMaxLag)
	require.NotEmpty(t, points)
	require.NotNil(t, best)

	assert.Len(t, points, 2*DefaultMaxLag+1)
	assert.Less(t, best.Lag, 0, "the spread leads returns")
	assert.Less(t, best.Correlation, 0.0)
}

func TestLeadLagGuards(t *testing.T) {
	points, best := LeadLag(make([]float64, 10), make([]float64, 10), 3)
	assert.Nil(t, points)
	assert.Nil(t, best)

	flat := make([]float64, 80)
	noise, _ := synthetic(80, 1)
	points, best = LeadLag(flat, noise, 3)
	assert.Nil(t, points)
	assert.Nil(t, best)
}

func TestGranger(t *testing.T) {
	s, r := synthetic(240, 11)

	points, err := Granger(s, r, DefaultGrangerLags)
	require.NoError(t, err)
	require.Len(t, points, DefaultGrangerLags)

	assert.Equal(t, 1, points[0].Lag)
	for _, p := range points[1:] {
		assert.Less(t, p.PValue, 0.01, "lag %d", p.Lag)
		assert.Greater(t, p.FStat, 0.0)
	}

	_, err = Granger(s[:20], r[:20], 3)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestQuartiles(t *testing.T) {
	n := 100
	s := make([]float64, n)
	r := make([]float64, n)
	for i := range s {
		s[i] = float64(i + 1)
		r[i] = float64(i%4) - 1
		if i >= 75 {
			r[i] = -5 + float64(i%2)
		}
	}

	stats, edges, err := Quartiles(s, r)
	require.NoError(t, err)
	require.Len(t, stats, 4)
	assert.InDeltaSlice(t, []float64{25.75, 50.5, 75.25}, edges, 1e-9)

	total := 0
	for _, q := range stats {
		total += q.Count
	}
	assert.Equal(t, n, total)
	assert.Equal(t, "Q4 (Highest)", stats[3].Label)
	assert.Equal(t, 25, stats[3].Count)
	assert.Equal(t, -4.48, stats[3].Mean)
	assert.Less(t, stats[3].Sharpe, 0.0)

	_, _, err = Quartiles(s[:10], r[:10])
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestAnalyze(t *testing.T) {
	s, r := synthetic(120, 3)
	times := make([]time.Time, len(s))
	price := make(model.Float64s, len(s))
	p := 100.0
	for i := range times {
		times[i] = time.Date(2010, time.February, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, -1)
		p *= 1 + r[i]/100
		price[i] = p
	}
	frame := &model.Frame{Times: times, Spread: s, BenchmarkPrice: price}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	summary, err := Analyze(frame, now)
	require.NoError(t, err)

	assert.Equal(t, 120, summary.NMonths)
	assert.Equal(t, now, summary.AnalysisDate)
	assert.NotEmpty(t, summary.Correlations)
	assert.NotNil(t, summary.BestLag)
	assert.Len(t, summary.Granger, DefaultGrangerLags)
	assert.Len(t, summary.Quartiles, 4)

	_, err = Analyze(&model.Frame{Times: times, BenchmarkPrice: price}, now)
	assert.ErrorIs(t, err, ErrMissingColumn)
}
