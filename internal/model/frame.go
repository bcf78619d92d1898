package model

import (
	"fmt"
	"time"
)

// Column names used in frames, CSV headers and "unavailable" markers.
const (
	ColumnHYOAS           = "HY_OAS"
	ColumnIGOAS           = "IG_OAS"
	ColumnSpread          = "HY_IG_Spread"
	ColumnBenchmark       = "SPY"
	ColumnBenchmarkReturn = "SPY_Returns"
	ColumnPolicyRate      = "FEDFUNDS"
)

// Frame is a calendar-indexed table of the input columns. A nil column is absent;
// a present column may still carry missing values.
type Frame struct {
	Times           []time.Time
	HYOAS           Float64s
	IGOAS           Float64s
	Spread          Float64s
	BenchmarkPrice  Float64s
	BenchmarkReturn Float64s
	PolicyRate      Float64s
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Times)
}

// HasSpread reports whether the spread column is present.
func (f *Frame) HasSpread() bool { return f.Spread != nil }

// HasBenchmarkReturn reports whether the benchmark return column is present.
func (f *Frame) HasBenchmarkReturn() bool { return f.BenchmarkReturn != nil }

// HasBenchmarkPrice reports whether the benchmark price column is present.
func (f *Frame) HasBenchmarkPrice() bool { return f.BenchmarkPrice != nil }

// HasPolicyRate reports whether the policy rate column is present and carries data.
func (f *Frame) HasPolicyRate() bool { return f.PolicyRate != nil && !f.PolicyRate.AllMissing() }

// Columns returns the present columns keyed by name.
func (f *Frame) Columns() map[string]Float64s {
	cols := map[string]Float64s{}
	add := func(name string, c Float64s) {
		if c != nil {
			cols[name] = c
		}
	}
	add(ColumnHYOAS, f.HYOAS)
	add(ColumnIGOAS, f.IGOAS)
	add(ColumnSpread, f.Spread)
	add(ColumnBenchmark, f.BenchmarkPrice)
	add(ColumnBenchmarkReturn, f.BenchmarkReturn)
	add(ColumnPolicyRate, f.PolicyRate)
	return cols
}

// Validate rejects structurally invalid frames: unsorted or duplicate timestamps
// and columns whose length differs from the index.
func (f *Frame) Validate() error {
	if err := ValidateTimes(f.Times); err != nil {
		return err
	}
	for name, col := range f.Columns() {
		if len(col) != len(f.Times) {
			return fmt.Errorf("column %s has %d values for %d rows: %w", name, len(col), len(f.Times), ErrLengthMismatch)
		}
	}
	return nil
}

// Column returns a pointer to the named column, or nil for an unknown name.
func (f *Frame) Column(name string) *Float64s {
	switch name {
	case ColumnHYOAS:
		return &f.HYOAS
	case ColumnIGOAS:
		return &f.IGOAS
	case ColumnSpread:
		return &f.Spread
	case ColumnBenchmark:
		return &f.BenchmarkPrice
	case ColumnBenchmarkReturn:
		return &f.BenchmarkReturn
	case ColumnPolicyRate:
		return &f.PolicyRate
	}
	return nil
}
