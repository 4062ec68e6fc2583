// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package derive

import (
	"fmt"
	"math"
)

// BitrateMeter holds the previous stream sample. It starts at (0, 0), lives
// for the whole process across reconnects, and is never reset: a stale
// sample only skews the first reading after a gap.
type BitrateMeter struct {
	prevTimecodeMs uint64
	prevBytes      uint64
}

// Observe computes kbps from the previous sample and then stores the new
// one. The arithmetic is floating point: an unchanged timecode yields Inf or
// NaN. A byte counter that went backwards while the timecode advanced yields
// a negative rate; when both went backwards the quotient is positive.
func (b *BitrateMeter) Observe(timecodeMs, bytes uint64) float64 {
	deltaBytes := float64(bytes) - float64(b.prevBytes)
	deltaMs := float64(timecodeMs) - float64(b.prevTimecodeMs)
	b.prevTimecodeMs = timecodeMs
	b.prevBytes = bytes
	return deltaBytes * 8 / deltaMs
}

// Previous returns the stored sample.
func (b *BitrateMeter) Previous() (timecodeMs, bytes uint64) {
	return b.prevTimecodeMs, b.prevBytes
}

// FormatKbps renders floor(kbps) followed by " kb/s". Non-finite values
// render as "0 kb/s".
func FormatKbps(kbps float64) string {
	if math.IsNaN(kbps) || math.IsInf(kbps, 0) {
		return "0 kb/s"
	}
	return fmt.Sprintf("%d kb/s", int64(math.Floor(kbps)))
}
