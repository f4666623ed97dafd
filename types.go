// Package lbpengine implements a per-pool liquidity-bootstrapping epoch
// synchronisation engine hosted behind a concentrated-liquidity AMM's
// hook protocol. Given the current time, the host pool's price, and the
// position currently on book, it decides the target liquidity range and
// committed amount, whether to reopen the position or first force-sell,
// and atomically carries the position from one epoch to the next.
package lbpengine

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lbpsync/lbpengine/pkg/hostamm"
)

// Error kinds surfaced across the public API.
var (
	ErrInvalidTimeRange = errors.New("lbpengine: invalid time range")
	ErrInvalidTickRange = errors.New("lbpengine: invalid tick range")
	ErrBeforeEndTime    = errors.New("lbpengine: exit called before the schedule has ended")
	ErrUnauthorised     = errors.New("lbpengine: caller is not the pool owner")
	ErrHostFailure      = hostamm.ErrHostFailure

	// errBeforeStartTime is an internal assertion: the schedule evaluator
	// was asked for a target before start_time. The public surface
	// (BeforeSwap) guards against this; reaching it is a programmer error.
	errBeforeStartTime = errors.New("lbpengine: internal: queried before start time")
)

// Schedule is the immutable configuration pulled from the hook payload at
// pool initialisation. All fields are set once and read-only thereafter.
type Schedule struct {
	TotalAmount *big.Int
	StartTime   uint32
	EndTime     uint32
	MinTick     int32
	MaxTick     int32
	IsToken0    bool
	EpochSize   uint64
	TickSpacing int32
	Owner       common.Address
}

// Phase is the coarse lifecycle stage of a pool's schedule, derived from
// the schedule bounds and exit latch rather than stored directly.
type Phase int

const (
	// PhasePending is before StartTime: sync is a guarded no-op.
	PhasePending Phase = iota
	// PhaseActive is StartTime <= now < EndTime: normal epoch sync.
	PhaseActive
	// PhaseConcluding is now >= EndTime but Exit has not yet run.
	PhaseConcluding
	// PhaseClosed is after Exit: permanently latched, no further syncing.
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseActive:
		return "active"
	case PhaseConcluding:
		return "concluding"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Phase reports the state's current lifecycle stage at time now.
func (s *EngineState) Phase(sched Schedule, now uint32) Phase {
	if s.Exited {
		return PhaseClosed
	}
	if now < sched.StartTime {
		return PhasePending
	}
	if now < sched.EndTime {
		return PhaseActive
	}
	return PhaseConcluding
}

// EngineState is the mutable per-pool state the engine threads through
// every sync/exit call. AmountCommitted, CurrentMinTick, InInternalSwap
// and Exited are the only fields mutated outside of init; the per-epoch
// synced set lives alongside it in poolEntry.gate (internal/epoch.Gate),
// since it's gated and read independently of the rest of this state.
type EngineState struct {
	AmountCommitted *big.Int
	CurrentMinTick  int32

	// InInternalSwap guards re-entrancy while the engine's own forced-sell
	// swap is in flight; Exited is the permanent post-exit lockout. The
	// source models both with one flag; this port keeps them distinct.
	InInternalSwap bool
	Exited         bool
}

// newEngineState returns the state a freshly initialised pool starts in:
// no commitment yet, range pinned at the widest tick.
func newEngineState(sched Schedule) *EngineState {
	return &EngineState{
		AmountCommitted: big.NewInt(0),
		CurrentMinTick:  sched.MaxTick,
	}
}

// EventAction names what a Sync/Exit call actually did, for reporting.
type EventAction string

const (
	ActionNoOp       EventAction = "no_op"
	ActionReconciled EventAction = "reconciled"
	ActionForcedSell EventAction = "forced_sell"
	ActionDeferred   EventAction = "deferred"
	ActionExited     EventAction = "exited"
)

// Event is the JSON-reportable record of one Sync or Exit call, meant to
// be logged or pushed onto a reporting channel by the caller.
type Event struct {
	Pool            hostamm.PoolID `json:"pool"`
	Epoch           uint64         `json:"epoch"`
	Phase           string         `json:"phase"`
	Action          EventAction    `json:"action"`
	AmountCommitted string         `json:"amount_committed"`
	CurrentMinTick  int32          `json:"current_min_tick"`
}
