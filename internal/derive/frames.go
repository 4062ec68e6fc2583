// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package derive

import (
	"fmt"
	"math"
)

// MissedFramesPct is output skipped over output total, in percent.
// It is 0 when no frames were output.
func MissedFramesPct(skipped, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(skipped) / float64(total)
}

// RenderSkippedPct is render skipped over render total, in percent.
// There is no zero guard: 0/0 yields NaN, which FormatPercent renders as "0%".
func RenderSkippedPct(skipped, total uint64) float64 {
	return 100 * float64(skipped) / float64(total)
}

// FormatMissedPct renders MissedFramesPct with one decimal, or "0%" when
// no frames were output.
func FormatMissedPct(skipped, total uint64) string {
	if total == 0 {
		return "0%"
	}
	return FormatPercent(MissedFramesPct(skipped, total))
}

// FormatPercent renders v with one decimal. Non-finite values render as "0%".
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", v)
}
