package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"
)

var (
	ErrUnsortedTimestamps = errors.New("timestamps are not in ascending order")
	ErrDuplicateTimestamp = errors.New("duplicate timestamp")
	ErrLengthMismatch     = errors.New("column length does not match timestamps")
)

// Missing returns the in-memory marker for a missing observation.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v marks a missing observation.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Float64s is a numeric column where NaN marks a missing value.
// It serializes missing values as JSON null so they stay distinguishable from zero.
type Float64s []float64

// NewMissing returns a column of n missing values.
func NewMissing(n int) Float64s {
	out := make(Float64s, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Count returns the number of non-missing values.
func (f Float64s) Count() int {
	n := 0
	for _, v := range f {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// AllMissing reports whether the column carries no observation at all.
func (f Float64s) AllMissing() bool {
	return f.Count() == 0
}

// Clone returns an independent copy.
func (f Float64s) Clone() Float64s {
	if f == nil {
		return nil
	}
	out := make(Float64s, len(f))
	copy(out, f)
	return out
}

// MarshalJSON implements json.Marshaler.
func (f Float64s) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, reading null as missing.
func (f *Float64s) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Float64s, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*f = out
	return nil
}

// Series is an ordered sequence of (timestamp, value) pairs.
type Series struct {
	Name   string      `json:"name"`
	Times  []time.Time `json:"dates"`
	Values Float64s    `json:"values"`
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Times)
}

// Validate checks that timestamps are strictly increasing and aligned with values.
func (s Series) Validate() error {
	if len(s.Values) != len(s.Times) {
		return ErrLengthMismatch
	}
	return ValidateTimes(s.Times)
}

// ValidateTimes checks that timestamps are unique and strictly increasing.
func ValidateTimes(times []time.Time) error {
	for i := 1; i < len(times); i++ {
		switch {
		case times[i].Equal(times[i-1]):
			return ErrDuplicateTimestamp
		case times[i].Before(times[i-1]):
			return ErrUnsortedTimestamps
		}
	}
	return nil
}

// ForwardFill propagates the last observation over missing values. A positive limit caps
// the number of consecutive rows filled after each observation; zero means unlimited.
func ForwardFill(values []float64, limit int) Float64s {
	out := make(Float64s, len(values))
	last := math.NaN()
	run := 0
	for i, v := range values {
		if !math.IsNaN(v) {
			out[i] = v
			last = v
			run = 0
			continue
		}
		run++
		if math.IsNaN(last) || (limit > 0 && run > limit) {
			out[i] = math.NaN()
			continue
		}
		out[i] = last
	}
	return out
}

// PercentChange returns 100*(v[t]/v[prev]-1) where prev is the last earlier non-missing
// observation. The first observation and missing inputs yield missing values.
func PercentChange(values []float64) Float64s {
	out := NewMissing(len(values))
	prev := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !math.IsNaN(prev) && prev != 0 {
			out[i] = (v/prev - 1) * 100
		}
		prev = v
	}
	return out
}
