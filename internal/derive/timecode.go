// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package derive turns raw producer counters into display metrics:
// stream bitrate, frame loss, fps health and timecodes. Everything here is
// pure except BitrateMeter, which keeps the previous stream sample.
package derive

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidTimecode is returned for timecodes that are not HH:MM:SS[.mmm].
var ErrInvalidTimecode = errors.New("invalid timecode")

// ParseTimecode converts "HH:MM:SS.mmm" to milliseconds. The seconds field
// may carry a fraction of any precision.
func ParseTimecode(tc string) (uint64, error) {
	parts := strings.Split(strings.TrimSpace(tc), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, tc)
	}
	hours, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: hours in %q", ErrInvalidTimecode, tc)
	}
	minutes, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: minutes in %q", ErrInvalidTimecode, tc)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: seconds in %q", ErrInvalidTimecode, tc)
	}
	total := float64(hours)*3600 + float64(minutes)*60 + seconds
	return uint64(math.Round(total * 1000)), nil
}

// StripMillis drops everything from the first '.' on: "01:02:03.456" becomes "01:02:03".
func StripMillis(tc string) string {
	if i := strings.IndexByte(tc, '.'); i >= 0 {
		return tc[:i]
	}
	return tc
}
