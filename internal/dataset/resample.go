package dataset

import (
	"fmt"
	"math"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
)

// Frequency is a resampling period.
type Frequency int

const (
	Monthly Frequency = iota
	Quarterly
)

func (f Frequency) String() string {
	if f == Quarterly {
		return "quarterly"
	}
	return "monthly"
}

// ParseFrequency accepts "monthly" or "quarterly".
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "monthly", "M", "ME":
		return Monthly, nil
	case "quarterly", "Q", "QE":
		return Quarterly, nil
	}
	return Monthly, fmt.Errorf("unknown frequency %q", s)
}

// PeriodEnd returns the last calendar day of the period containing t, at UTC midnight.
func (f Frequency) PeriodEnd(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	if f == Quarterly {
		m = ((m-1)/3)*3 + 3
	}
	return time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

func (f Frequency) next(end time.Time) time.Time {
	step := 1
	if f == Quarterly {
		step = 3
	}
	first := end.AddDate(0, 0, 1)
	return f.PeriodEnd(first.AddDate(0, step-1, 0))
}

// Resample reduces a daily frame to one row per period end holding the last non-missing
// value of each column. Periods without observations are kept as missing rows. Benchmark
// returns are recomputed from the resampled prices and the policy rate is forward filled.
func Resample(daily *model.Frame, freq Frequency) (*model.Frame, error) {
	if err := daily.Validate(); err != nil {
		return nil, err
	}
	if daily.Len() == 0 {
		return &model.Frame{}, nil
	}

	var ends []time.Time
	last := freq.PeriodEnd(daily.Times[daily.Len()-1])
	for end := freq.PeriodEnd(daily.Times[0]); !end.After(last); end = freq.next(end) {
		ends = append(ends, end)
	}
	index := make(map[time.Time]int, len(ends))
	for i, e := range ends {
		index[e] = i
	}

	reduce := func(c model.Float64s) model.Float64s {
		if c == nil {
			return nil
		}
		out := model.NewMissing(len(ends))
		for i, t := range daily.Times {
			if !math.IsNaN(c[i]) {
				out[index[freq.PeriodEnd(t)]] = c[i]
			}
		}
		return out
	}

	out := &model.Frame{
		Times:          ends,
		HYOAS:          reduce(daily.HYOAS),
		IGOAS:          reduce(daily.IGOAS),
		Spread:         reduce(daily.Spread),
		BenchmarkPrice: reduce(daily.BenchmarkPrice),
		PolicyRate:     reduce(daily.PolicyRate),
	}
	if out.BenchmarkPrice != nil {
		out.BenchmarkReturn = model.PercentChange(out.BenchmarkPrice)
	}
	if out.PolicyRate != nil {
		out.PolicyRate = model.ForwardFill(out.PolicyRate, 0)
	}
	return out, nil
}
