// Package orientation isolates the sign-reflection needed to support both
// token orientations (bootstrapping token as token0 or token1) behind a
// single canonical code path. All of the engine's internal
// reasoning is written as if IsToken0 were true; this package is the only
// place ticks get negated.
package orientation

// Adapter reflects canonical ticks into host-pool ticks (and back) for a
// given orientation. When IsToken0 is true it is the identity.
type Adapter struct {
	IsToken0 bool
}

// ToHost maps a canonical range (lower, upper), where lower <= upper, to
// the ticks the host AMM should open a position at.
func (a Adapter) ToHost(canonicalLower, canonicalUpper int32) (hostLower, hostUpper int32) {
	if a.IsToken0 {
		return canonicalLower, canonicalUpper
	}
	return -canonicalUpper, -canonicalLower
}

// FromHostTick maps a tick read from the host's slot0 back into canonical
// orientation.
func (a Adapter) FromHostTick(hostTick int32) int32 {
	if a.IsToken0 {
		return hostTick
	}
	return -hostTick
}

// ToHostTick maps a single canonical tick (e.g. a forced-sell price limit)
// into host orientation.
func (a Adapter) ToHostTick(canonicalTick int32) int32 {
	if a.IsToken0 {
		return canonicalTick
	}
	return -canonicalTick
}

// PriceAboveFloor reports whether the current canonical tick is still
// inside or above the shrinking floor L*, i.e. whether a forced sell is
// required before the position can be reopened. In canonical orientation
// this is simply cur >= lowerStar; IsToken0 doesn't change the comparison
// because callers always pass already-canonicalised ticks; the adapter
// exists so callers never have to flip the comparison themselves when
// IsToken0 is false.
func PriceAboveFloor(canonicalCur, canonicalLowerStar int32) bool {
	return canonicalCur >= canonicalLowerStar
}

// ZeroForOne reports the swap direction for "sell the bootstrapping token"
// in host orientation: selling token0 for token1 when IsToken0, else the
// reverse.
func (a Adapter) ZeroForOne() bool {
	return a.IsToken0
}
