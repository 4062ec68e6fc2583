// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package derive

import "fmt"

// Megabytes renders bytes as binary megabytes with two decimals, e.g. "12.35MB".
func Megabytes(bytes uint64) string {
	return fmt.Sprintf("%.2fMB", float64(bytes)/1024/1024)
}

// CPUPercent renders a CPU usage percentage with one decimal.
func CPUPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// MemoryMB renders a memory figure already expressed in MB.
func MemoryMB(v float64) string {
	return fmt.Sprintf("%.1fMB", v)
}

// RenderTimeMs renders the average frame render time in milliseconds.
func RenderTimeMs(v float64) string {
	return fmt.Sprintf("%.1fms", v)
}
