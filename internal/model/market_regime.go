package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Regime is the credit-stress bucket of a month, ordered from lowest to highest spread.
type Regime int

const (
	RegimeUnknown Regime = iota
	RegimeLowSpread
	RegimeModerateLow
	RegimeModerateHigh
	RegimeHighSpread
	RegimeVeryHighSpread
)

// Regimes lists every regime, Unknown first.
var Regimes = []Regime{
	RegimeUnknown,
	RegimeLowSpread,
	RegimeModerateLow,
	RegimeModerateHigh,
	RegimeHighSpread,
	RegimeVeryHighSpread,
}

func (r Regime) String() string {
	switch r {
	case RegimeLowSpread:
		return "Low Spread (Buy)"
	case RegimeModerateLow:
		return "Moderate-Low Spread"
	case RegimeModerateHigh:
		return "Moderate-High Spread"
	case RegimeHighSpread:
		return "High Spread (Caution)"
	case RegimeVeryHighSpread:
		return "Very High Spread (Reduce Exposure)"
	default:
		return "Unknown"
	}
}

// Key returns the snake_case identifier used in configuration files.
func (r Regime) Key() string {
	switch r {
	case RegimeLowSpread:
		return "low_spread"
	case RegimeModerateLow:
		return "moderate_low"
	case RegimeModerateHigh:
		return "moderate_high"
	case RegimeHighSpread:
		return "high_spread"
	case RegimeVeryHighSpread:
		return "very_high_spread"
	default:
		return "unknown"
	}
}

// ParseRegime accepts either the display label or the configuration key.
func ParseRegime(s string) (Regime, error) {
	for _, r := range Regimes {
		if s == r.String() || s == r.Key() {
			return r, nil
		}
	}
	return RegimeUnknown, fmt.Errorf("unknown regime %q", s)
}

// MarshalJSON writes the display label.
func (r Regime) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON reads a display label or key.
func (r *Regime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRegime(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Thresholds are the trailing-window spread percentiles at one timestamp.
type Thresholds struct {
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	P90   float64 `json:"p90"`
	Count int     `json:"count"`
	Valid bool    `json:"valid"`
}

// InvalidThresholds returns thresholds for a window with insufficient history.
func InvalidThresholds(count int) Thresholds {
	nan := math.NaN()
	return Thresholds{P25: nan, P50: nan, P75: nan, P90: nan, Count: count}
}

// Complete reports whether every percentile is defined.
func (t Thresholds) Complete() bool {
	return t.Valid && !math.IsNaN(t.P25) && !math.IsNaN(t.P50) && !math.IsNaN(t.P75) && !math.IsNaN(t.P90)
}

// RateChange is the per-month direction of the policy rate.
type RateChange int

const (
	RateNone RateChange = iota
	RateIncrease
	RateDecrease
)

func (c RateChange) String() string {
	switch c {
	case RateIncrease:
		return "increase"
	case RateDecrease:
		return "decrease"
	default:
		return "none"
	}
}

// ParseRateChange inverts String.
func ParseRateChange(s string) (RateChange, error) {
	switch s {
	case "increase":
		return RateIncrease, nil
	case "decrease":
		return RateDecrease, nil
	case "none", "":
		return RateNone, nil
	}
	return RateNone, fmt.Errorf("unknown rate change %q", s)
}

// MarshalJSON writes the lowercase name.
func (c RateChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON reads the lowercase name.
func (c *RateChange) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRateChange(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// RatePeriod is a maximal run of months with the same non-none rate change.
type RatePeriod struct {
	Type  RateChange `json:"type"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
}
