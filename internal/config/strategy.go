package config

import (
	"fmt"
	"math"
	"os"

	"github.com/Alias1177/CreditRegime/internal/model"
	"gopkg.in/yaml.v3"
)

// Strategy holds the constants of a backtest run. It is passed by value into the engine
// and never mutated after loading.
type Strategy struct {
	Window              int                `yaml:"window"`
	MinPeriods          int                `yaml:"min_periods"`
	RateChangeThreshold float64            `yaml:"rate_change_threshold"`
	RateLevel           float64            `yaml:"rate_level"`
	PeriodsPerYear      float64            `yaml:"periods_per_year"`
	RiskFreeRate        float64            `yaml:"risk_free_rate"` // annual, percent
	ReviewMonths        int                `yaml:"review_months"`
	PositionSizes       map[string]float64 `yaml:"position_sizes"` // keyed by model.Regime.Key()
}

// DefaultStrategy returns the reference configuration.
func DefaultStrategy() Strategy {
	return Strategy{
		Window:              60,
		MinPeriods:          12,
		RateChangeThreshold: 0.05,
		RateLevel:           2.5,
		PeriodsPerYear:      12,
		RiskFreeRate:        4.0,
		ReviewMonths:        12,
		PositionSizes: map[string]float64{
			model.RegimeLowSpread.Key():      1.00,
			model.RegimeModerateLow.Key():    0.75,
			model.RegimeModerateHigh.Key():   0.50,
			model.RegimeHighSpread.Key():     0.25,
			model.RegimeVeryHighSpread.Key(): 0.10,
			model.RegimeUnknown.Key():        0.50,
		},
	}
}

// LoadStrategy decodes the YAML file at path onto the defaults. Keys absent from the file keep
// their default; position sizes are merged per regime. An empty path returns the defaults.
// RISK_FREE_RATE overrides the file.
func LoadStrategy(path string) (Strategy, error) {
	s := DefaultStrategy()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Strategy{}, fmt.Errorf("failed to read strategy file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Strategy{}, fmt.Errorf("failed to parse strategy file %s: %w", path, err)
		}
	}
	s.RiskFreeRate = getEnvFloatWithDefault("RISK_FREE_RATE", s.RiskFreeRate)
	if err := s.Validate(); err != nil {
		return Strategy{}, fmt.Errorf("strategy validation failed: %w", err)
	}
	return s, nil
}

// Validate checks ranges of every field.
func (s Strategy) Validate() error {
	if s.Window < 1 {
		return fmt.Errorf("window must be positive, got %d", s.Window)
	}
	if s.MinPeriods < 1 || s.MinPeriods > s.Window {
		return fmt.Errorf("min_periods must be in [1, %d], got %d", s.Window, s.MinPeriods)
	}
	if !(s.RateChangeThreshold >= 0) {
		return fmt.Errorf("rate_change_threshold must not be negative, got %g", s.RateChangeThreshold)
	}
	if !(s.PeriodsPerYear > 0) {
		return fmt.Errorf("periods_per_year must be positive, got %g", s.PeriodsPerYear)
	}
	if math.IsNaN(s.RateLevel) || math.IsNaN(s.RiskFreeRate) {
		return fmt.Errorf("rate_level and risk_free_rate must be numbers")
	}
	if s.ReviewMonths < 0 {
		return fmt.Errorf("review_months must not be negative, got %d", s.ReviewMonths)
	}
	for key, size := range s.PositionSizes {
		if _, err := model.ParseRegime(key); err != nil {
			return fmt.Errorf("position_sizes: %w", err)
		}
		if !(size >= 0 && size <= 1) {
			return fmt.Errorf("position size for %s must be in [0, 1], got %g", key, size)
		}
	}
	return nil
}

// PositionTable returns a copy of the position sizes keyed by regime.
func (s Strategy) PositionTable() map[model.Regime]float64 {
	table := make(map[model.Regime]float64, len(s.PositionSizes))
	for key, size := range s.PositionSizes {
		r, err := model.ParseRegime(key)
		if err != nil {
			continue
		}
		table[r] = size
	}
	return table
}
