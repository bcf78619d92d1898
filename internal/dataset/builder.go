package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
)

// DefaultFillLimit caps forward filling of daily gaps.
const DefaultFillLimit = 5

// ErrNoOverlap is returned when no day carries both a spread and a benchmark price.
var ErrNoOverlap = errors.New("no dates with both spread and benchmark price")

// Inputs are the raw provider series. PolicyRate is optional.
type Inputs struct {
	HighYield  model.Series
	InvGrade   model.Series
	Benchmark  model.Series
	PolicyRate *model.Series
}

// BuildDaily aligns the inputs on the union of their dates, derives the spread, forward
// fills each column up to fillLimit rows and drops days missing the spread or the price.
func BuildDaily(in Inputs, fillLimit int) (*model.Frame, error) {
	for _, s := range []model.Series{in.HighYield, in.InvGrade, in.Benchmark} {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
	}
	if in.PolicyRate != nil {
		if err := in.PolicyRate.Validate(); err != nil {
			return nil, fmt.Errorf("series %s: %w", in.PolicyRate.Name, err)
		}
	}

	sources := []model.Series{in.HighYield, in.InvGrade, in.Benchmark}
	if in.PolicyRate != nil {
		sources = append(sources, *in.PolicyRate)
	}
	times := unionTimes(sources...)

	hy := align(times, in.HighYield)
	ig := align(times, in.InvGrade)
	spread := model.NewMissing(len(times))
	for i := range times {
		if !math.IsNaN(hy[i]) && !math.IsNaN(ig[i]) {
			spread[i] = hy[i] - ig[i]
		}
	}

	full := &model.Frame{
		Times:          times,
		HYOAS:          model.ForwardFill(hy, fillLimit),
		IGOAS:          model.ForwardFill(ig, fillLimit),
		Spread:         model.ForwardFill(spread, fillLimit),
		BenchmarkPrice: model.ForwardFill(align(times, in.Benchmark), fillLimit),
	}
	if in.PolicyRate != nil {
		full.PolicyRate = model.ForwardFill(align(times, *in.PolicyRate), fillLimit)
	}

	keep := make([]int, 0, len(times))
	for i := range times {
		if !math.IsNaN(full.Spread[i]) && !math.IsNaN(full.BenchmarkPrice[i]) {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, ErrNoOverlap
	}
	return selectRows(full, keep), nil
}

func unionTimes(series ...model.Series) []time.Time {
	seen := make(map[time.Time]struct{})
	var out []time.Time
	for _, s := range series {
		for _, t := range s.Times {
			day := t.UTC()
			if _, ok := seen[day]; ok {
				continue
			}
			seen[day] = struct{}{}
			out = append(out, day)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// align projects s onto times; dates absent from s are missing.
func align(times []time.Time, s model.Series) model.Float64s {
	byDate := make(map[time.Time]float64, s.Len())
	for i, t := range s.Times {
		byDate[t.UTC()] = s.Values[i]
	}
	out := model.NewMissing(len(times))
	for i, t := range times {
		if v, ok := byDate[t]; ok {
			out[i] = v
		}
	}
	return out
}

func selectRows(f *model.Frame, idx []int) *model.Frame {
	pick := func(c model.Float64s) model.Float64s {
		if c == nil {
			return nil
		}
		out := make(model.Float64s, len(idx))
		for j, i := range idx {
			out[j] = c[i]
		}
		return out
	}
	times := make([]time.Time, len(idx))
	for j, i := range idx {
		times[j] = f.Times[i]
	}
	return &model.Frame{
		Times:           times,
		HYOAS:           pick(f.HYOAS),
		IGOAS:           pick(f.IGOAS),
		Spread:          pick(f.Spread),
		BenchmarkPrice:  pick(f.BenchmarkPrice),
		BenchmarkReturn: pick(f.BenchmarkReturn),
		PolicyRate:      pick(f.PolicyRate),
	}
}
