package lbpengine

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lbpsync/lbpengine/internal/epoch"
	"github.com/lbpsync/lbpengine/internal/orientation"
	"github.com/lbpsync/lbpengine/pkg/hostamm"
	"github.com/lbpsync/lbpengine/pkg/tickmath"
)

// Recorder persists a completed Sync/Exit action for later inspection.
// It is purely observational: a failing or nil Recorder never changes the
// engine's decisions. internal/db.MySQLRecorder is the shipped
// implementation.
type Recorder interface {
	RecordEvent(Event) error
}

// poolEntry bundles the per-pool configuration and state a Manager keeps,
// replacing the one-state-per-contract layout with a keyed structure so a
// single engine instance can host many pools.
type poolEntry struct {
	mu       sync.Mutex
	schedule Schedule
	state    *EngineState
	gate     *epoch.Gate
	adapter  orientation.Adapter
}

// Manager is the engine's entry point: one Manager can host any number of
// pools, each independently keyed by hostamm.PoolID.
type Manager struct {
	host     hostamm.Host
	recorder Recorder

	mu    sync.Mutex
	pools map[hostamm.PoolID]*poolEntry
}

// ManagerOption configures optional Manager collaborators.
type ManagerOption func(*Manager)

// WithRecorder attaches a Recorder that observes every Sync/Exit action
// that actually touched the host position (no-op epochs aren't recorded).
func WithRecorder(r Recorder) ManagerOption {
	return func(m *Manager) { m.recorder = r }
}

// NewManager builds a Manager bound to a single host AMM collaborator.
func NewManager(host hostamm.Host, opts ...ManagerOption) *Manager {
	m := &Manager{
		host:  host,
		pools: make(map[hostamm.PoolID]*poolEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// record hands ev to the configured Recorder, if any, logging (never
// returning) a recorder failure: observability must never perturb the
// state machine's own error handling.
func (m *Manager) record(ev Event) {
	if m.recorder == nil || ev.Action == ActionNoOp {
		return
	}
	if err := m.recorder.RecordEvent(ev); err != nil {
		log.Printf("lbpengine: record event for pool %s epoch %d: %v", ev.Pool, ev.Epoch, err)
	}
}

func (m *Manager) entry(pool hostamm.PoolID) (*poolEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.pools[pool]
	return e, ok
}

// AfterInitialize validates a schedule and records it for pool. Pulling
// total_amount from the initialiser is a token-transfer concern the host
// AMM and its token contracts own; this engine only records the
// commitment it must honor. now is the initialising transaction's
// timestamp, used only to reject a schedule whose end_time has already
// passed.
func (m *Manager) AfterInitialize(pool hostamm.PoolID, sched Schedule, now uint32) error {
	if sched.StartTime > sched.EndTime || sched.EndTime < now {
		return ErrInvalidTimeRange
	}
	if sched.MinTick >= sched.MaxTick {
		return ErrInvalidTickRange
	}
	if sched.MinTick < tickmath.MinUsableTick(sched.TickSpacing) || sched.MaxTick > tickmath.MaxUsableTick(sched.TickSpacing) {
		return ErrInvalidTickRange
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pools[pool] = &poolEntry{
		schedule: sched,
		state:    newEngineState(sched),
		gate:     epoch.NewGate(),
		adapter:  orientation.Adapter{IsToken0: sched.IsToken0},
	}
	return nil
}

// BeforeSwap is the hook the host calls ahead of every swap. It is a
// no-op before the schedule starts or while the engine's own forced-sell
// swap is in flight (re-entrancy guard); otherwise it runs Sync.
func (m *Manager) BeforeSwap(ctx context.Context, pool hostamm.PoolID, now uint32) (Event, error) {
	e, ok := m.entry(pool)
	if !ok {
		return Event{}, fmt.Errorf("lbpengine: unknown pool %s", pool)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if now < e.schedule.StartTime || e.state.InInternalSwap || e.state.Exited {
		return Event{Pool: pool, Action: ActionNoOp}, nil
	}
	return m.syncLocked(ctx, pool, e, now)
}

// Sync is the permissionless, per-epoch-idempotent entry point. The first
// call in an epoch reconciles the position; later calls in the same
// epoch are no-ops, as is any call before start_time.
func (m *Manager) Sync(ctx context.Context, pool hostamm.PoolID, now uint32) (Event, error) {
	e, ok := m.entry(pool)
	if !ok {
		return Event{}, fmt.Errorf("lbpengine: unknown pool %s", pool)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if now < e.schedule.StartTime || e.state.Exited {
		return Event{Pool: pool, Action: ActionNoOp}, nil
	}
	return m.syncLocked(ctx, pool, e, now)
}

func (m *Manager) syncLocked(ctx context.Context, pool hostamm.PoolID, e *poolEntry, now uint32) (Event, error) {
	floor := epoch.Floor(now, e.schedule.EpochSize)
	// epoch.Floor is anchored at zero, not at start_time, so the first
	// partial epoch of a schedule whose start_time isn't a multiple of
	// epoch_size floors below start_time even though now >= start_time.
	// Clamp it up so the schedule evaluator is never queried before
	// start_time: the first epoch then evaluates as A*~=0, L*=max_tick.
	if floor < uint64(e.schedule.StartTime) {
		floor = uint64(e.schedule.StartTime)
	}
	if e.gate.Synced(floor) {
		return Event{Pool: pool, Epoch: floor, Action: ActionNoOp}, nil
	}

	targetAmount, err := targetCommitted(e.schedule, floor)
	if err != nil {
		return Event{}, err
	}
	targetLower, err := targetLowerTick(e.schedule, floor)
	if err != nil {
		return Event{}, err
	}

	slot0, err := m.host.Slot0(ctx, pool)
	if err != nil {
		return Event{}, fmt.Errorf("%w: read slot0: %v", ErrHostFailure, err)
	}
	curCanonical := e.adapter.FromHostTick(slot0.Tick)

	delta := new(big.Int).Sub(targetAmount, e.state.AmountCommitted)
	action := ActionNoOp

	if orientation.PriceAboveFloor(curCanonical, targetLower) {
		a, err := forcedSell(ctx, m.host, pool, e.adapter, e.schedule, e.state, targetLower, delta)
		if err != nil {
			return Event{}, err
		}
		action = a
	} else if delta.Sign() != 0 || targetLower != e.state.CurrentMinTick {
		if err := reconcile(ctx, m.host, pool, e.adapter, e.schedule, e.state, targetLower, delta); err != nil {
			return Event{}, err
		}
		action = ActionReconciled
	}

	e.state.AmountCommitted = targetAmount
	e.gate.MarkSynced(floor)

	ev := Event{
		Pool:            pool,
		Epoch:           floor,
		Phase:           e.state.Phase(e.schedule, now).String(),
		Action:          action,
		AmountCommitted: e.state.AmountCommitted.String(),
		CurrentMinTick:  e.state.CurrentMinTick,
	}
	m.record(ev)
	return ev, nil
}

// Exit drains the position to owner and permanently disables further
// syncing. It fails with ErrUnauthorised if caller isn't the schedule's
// owner, and ErrBeforeEndTime if the current epoch hasn't reached
// end_time yet.
func (m *Manager) Exit(ctx context.Context, pool hostamm.PoolID, caller common.Address, now uint32) (Event, error) {
	e, ok := m.entry(pool)
	if !ok {
		return Event{}, fmt.Errorf("lbpengine: unknown pool %s", pool)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.schedule.Owner {
		return Event{}, ErrUnauthorised
	}
	if epoch.Floor(now, e.schedule.EpochSize) < e.schedule.EndTime {
		return Event{}, ErrBeforeEndTime
	}

	if _, err := m.syncLocked(ctx, pool, e, now); err != nil {
		return Event{}, err
	}

	lHost, uHost := e.adapter.ToHost(e.state.CurrentMinTick, e.schedule.MaxTick)
	pos, err := m.host.Position(ctx, pool, lHost, uHost)
	if err != nil {
		return Event{}, fmt.Errorf("%w: read position: %v", ErrHostFailure, err)
	}

	if pos.Liquidity.Sign() > 0 {
		_, err := m.host.LockAcquired(ctx, hostamm.ModifyPositionCallback{
			Pool: pool,
			Params: hostamm.ModifyPositionParams{
				TickLower:      lHost,
				TickUpper:      uHost,
				LiquidityDelta: new(big.Int).Neg(pos.Liquidity),
			},
			TakeToOwner: true,
			Owner:       e.schedule.Owner,
		})
		if err != nil {
			return Event{}, fmt.Errorf("%w: exit withdrawal: %v", ErrHostFailure, err)
		}
	}

	e.state.Exited = true

	ev := Event{
		Pool:            pool,
		Epoch:           epoch.Floor(now, e.schedule.EpochSize),
		Phase:           PhaseClosed.String(),
		Action:          ActionExited,
		AmountCommitted: e.state.AmountCommitted.String(),
		CurrentMinTick:  e.state.CurrentMinTick,
	}
	m.record(ev)
	return ev, nil
}
