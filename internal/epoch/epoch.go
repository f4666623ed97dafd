// Package epoch floors timestamps to epoch boundaries and tracks which
// epochs have already been reconciled, giving the engine its
// at-most-once-per-epoch guarantee.
package epoch

// Floor returns the start of the epoch containing t, per epoch_size.
// epochSize must be > 0; callers validate that at init time.
func Floor(t uint32, epochSize uint64) uint64 {
	tt := uint64(t)
	return (tt / epochSize) * epochSize
}

// Gate tracks which epoch-floor timestamps have already been synced for a
// single pool. It holds no time-related behaviour itself, only membership.
type Gate struct {
	synced map[uint64]bool
}

// NewGate returns an empty gate.
func NewGate() *Gate {
	return &Gate{synced: make(map[uint64]bool)}
}

// Synced reports whether the given epoch-floor timestamp has already been
// processed.
func (g *Gate) Synced(epochFloor uint64) bool {
	return g.synced[epochFloor]
}

// MarkSynced records an epoch-floor timestamp as processed. Idempotent.
func (g *Gate) MarkSynced(epochFloor uint64) {
	g.synced[epochFloor] = true
}
