// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package derive

import (
	"fmt"
	"math"
)

// Tier classifies render frame rate against the configured rate.
type Tier int

const (
	TierGood Tier = iota
	TierWarning
	TierCritical
)

func (t Tier) String() string {
	switch t {
	case TierGood:
		return "good"
	case TierWarning:
		return "warning"
	default:
		return "critical"
	}
}

// Color is the HUD color for the tier.
func (t Tier) Color() string {
	switch t {
	case TierGood:
		return "green"
	case TierWarning:
		return "yellow"
	default:
		return "red"
	}
}

// RoundFPS rounds the reported frame rate to one decimal, the precision
// shown on screen and used for the health ratio.
func RoundFPS(fps float64) float64 {
	return math.Round(fps*10) / 10
}

// FormatFPS renders fps with one decimal.
func FormatFPS(fps float64) string {
	return fmt.Sprintf("%.1f", fps)
}

// FPSRatio is activeFps over numerator/denominator. A zero denominator or
// numerator produces a non-finite or zero ratio, which classifies as critical.
func FPSRatio(activeFps float64, numerator, denominator int64) float64 {
	target := float64(numerator) / float64(denominator)
	return activeFps / target
}

// ClassifyFPS maps a ratio to a tier: >= 1 good, > 0.9 warning, otherwise
// critical. NaN compares false everywhere and lands in critical.
func ClassifyFPS(ratio float64) Tier {
	switch {
	case ratio >= 1:
		return TierGood
	case ratio > 0.9:
		return TierWarning
	default:
		return TierCritical
	}
}

// MeterPercent is the fps meter fill: ratio as a percentage clamped to [0, 100].
// Non-finite ratios render as an empty meter.
func MeterPercent(ratio float64) float64 {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, ratio*100))
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
