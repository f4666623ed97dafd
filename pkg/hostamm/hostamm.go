// Package hostamm defines the engine's one external collaborator: the
// concentrated-liquidity AMM that owns pool storage, slot0, position
// accounting, swap execution and the lock/callback protocol. The engine
// never touches these mechanics directly; it only issues the handful of
// calls this interface exposes and expects to be called back through
// LockAcquired while the host's lock is held, in the style of a Uniswap
// v4 hook.
package hostamm

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolID identifies a pool instance hosted by the AMM.
type PoolID = common.Hash

// ErrHostFailure wraps any error surfaced by the host AMM, matching the
// engine's HostFailure error kind.
var ErrHostFailure = errors.New("hostamm: host call failed")

// Slot0 is the host's current price/tick reading for a pool.
type Slot0 struct {
	SqrtPriceX96 *big.Int
	Tick         int32
}

// Position is the liquidity currently open at a tick range.
type Position struct {
	Liquidity *big.Int
}

// ModifyPositionParams describes an open (positive LiquidityDelta) or close
// (negative LiquidityDelta) of a position at [TickLower, TickUpper).
type ModifyPositionParams struct {
	TickLower      int32
	TickUpper      int32
	LiquidityDelta *big.Int
}

// SwapParams describes a single-direction swap up to AmountSpecified,
// bounded by SqrtPriceLimitX96.
type SwapParams struct {
	ZeroForOne        bool
	AmountSpecified   *big.Int
	SqrtPriceLimitX96 *big.Int
}

// BalanceDelta is the signed token0/token1 movement of a host operation,
// from the caller's point of view: negative means the caller owes the
// host (must Settle), positive means the host owes the caller (must
// Take).
type BalanceDelta struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

// CallbackPayload is the tagged-sum argument the host hands back to
// LockAcquired: exactly one of ModifyPositionCallback or SwapCallback.
type CallbackPayload interface {
	isCallbackPayload()
}

// ModifyPositionCallback requests a position open/close while the host's
// lock is held. TakeToOwner routes positive deltas (tokens received on
// close) to Owner instead of back to the engine, used by the owner-exit
// withdrawal.
type ModifyPositionCallback struct {
	Pool       PoolID
	Params     ModifyPositionParams
	TakeToOwner bool
	Owner      common.Address
}

func (ModifyPositionCallback) isCallbackPayload() {}

// SwapCallback requests a swap while the host's lock is held, used by the
// forced-sell executor.
type SwapCallback struct {
	Pool   PoolID
	Params SwapParams
}

func (SwapCallback) isCallbackPayload() {}

// Host is the collaborator surface the engine requires of the AMM it is
// hooked into.
type Host interface {
	// Slot0 reads the pool's current √price and tick.
	Slot0(ctx context.Context, pool PoolID) (Slot0, error)

	// Position reads the liquidity currently open at a tick range.
	Position(ctx context.Context, pool PoolID, tickLower, tickUpper int32) (Position, error)

	// LockAcquired performs a ModifyPositionCallback or SwapCallback while
	// holding the host's per-pool transaction lock, settling or taking
	// balances as required, and returns the resulting delta.
	LockAcquired(ctx context.Context, payload CallbackPayload) (BalanceDelta, error)
}
