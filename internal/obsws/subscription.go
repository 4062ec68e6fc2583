// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

// SubscriptionMask is the eventSubscriptions bit set sent in Identify.
type SubscriptionMask uint32

// Event categories requested by the HUD.
const (
	SubscribeOutputs           SubscriptionMask = 1 << 7
	SubscribeInputVolumeMeters SubscriptionMask = 1 << 16
)

// ComputeMask returns the subscription mask for a process run. The volume
// meter bit is requested even when no audio input is watched; filtering by
// input name happens in the event router. The result is always 65664.
func ComputeMask(watchAudioInput bool) SubscriptionMask {
	return SubscribeInputVolumeMeters | SubscribeOutputs
}

// Has reports whether every bit of other is set in m.
func (m SubscriptionMask) Has(other SubscriptionMask) bool {
	return m&other == other
}
