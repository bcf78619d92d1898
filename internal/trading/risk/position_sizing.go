package risk

import (
	"fmt"

	"github.com/Alias1177/CreditRegime/internal/model"
)

// NeutralPosition is the exposure used when the regime is unknown or unmapped.
const NeutralPosition = 0.50

// defaultPositions scales equity exposure inversely to credit stress.
var defaultPositions = map[model.Regime]float64{
	model.RegimeLowSpread:      1.00,
	model.RegimeModerateLow:    0.75,
	model.RegimeModerateHigh:   0.50,
	model.RegimeHighSpread:     0.25,
	model.RegimeVeryHighSpread: 0.10,
	model.RegimeUnknown:        NeutralPosition,
}

// PositionSize returns the default exposure for a regime.
func PositionSize(r model.Regime) float64 {
	if size, ok := defaultPositions[r]; ok {
		return size
	}
	return NeutralPosition
}

// DefaultTable returns a copy of the default regime to exposure table.
func DefaultTable() map[model.Regime]float64 {
	table := make(map[model.Regime]float64, len(defaultPositions))
	for r, size := range defaultPositions {
		table[r] = size
	}
	return table
}

// Sizer maps regimes to exposures using an overridable table.
type Sizer struct {
	table map[model.Regime]float64
}

// NewSizer builds a sizer from the default table overlaid with overrides.
func NewSizer(overrides map[model.Regime]float64) *Sizer {
	table := DefaultTable()
	for r, size := range overrides {
		table[r] = size
	}
	return &Sizer{table: table}
}

// Size returns the exposure for r. Unmapped, NaN or out-of-range entries fall back to NeutralPosition.
func (s *Sizer) Size(r model.Regime) float64 {
	size, ok := s.table[r]
	if !ok || !(size >= 0 && size <= 1) {
		return NeutralPosition
	}
	return size
}

// Sizes maps a regime series to exposures.
func (s *Sizer) Sizes(regimes []model.Regime) []float64 {
	out := make([]float64, len(regimes))
	for i, r := range regimes {
		out[i] = s.Size(r)
	}
	return out
}

// Validate rejects exposures outside [0, 1], NaN included.
func (s *Sizer) Validate() error {
	for _, r := range model.Regimes {
		size, ok := s.table[r]
		if !ok {
			continue
		}
		if !(size >= 0 && size <= 1) {
			return fmt.Errorf("position size for %s must be in [0, 1], got %g", r.Key(), size)
		}
	}
	return nil
}
