// Package hostammtest provides an in-memory hostamm.Host double for engine
// tests: single pool, caller-driven price, real tick-math-backed position
// accounting. It is not a general-purpose AMM simulator: swaps move the
// tracked tick directly to the caller-supplied target rather than walking
// the liquidity curve, which is enough to exercise the engine's
// reconciliation and forced-sell control flow without reimplementing a
// full matching engine.
package hostammtest

import (
	"context"
	"fmt"
	"math/big"

	"github.com/lbpsync/lbpengine/pkg/hostamm"
	"github.com/lbpsync/lbpengine/pkg/tickmath"
)

type positionKey struct {
	lower, upper int32
}

// MemHost is a single-pool in-memory Host double.
type MemHost struct {
	Pool hostamm.PoolID

	sqrtPriceX96 *big.Int
	tick         int32
	positions    map[positionKey]*big.Int

	// Balances owed to the engine and to the owner, simulating take/settle
	// bookkeeping. Positive means the account is owed that many tokens.
	EngineOwes0, EngineOwes1 *big.Int
	OwnerOwes0, OwnerOwes1   *big.Int

	// LockCalls records every LockAcquired invocation for assertions.
	LockCalls []hostamm.CallbackPayload

	// SwapFillCap, if set, bounds how much of a swap's AmountSpecified
	// this double actually fills before its price limit is reached,
	// simulating finite liquidity along the curve between the current
	// price and the limit. Nil (the default) fills the full amount, i.e.
	// the limit is reached exactly as the requested amount is exhausted.
	SwapFillCap *big.Int
}

// NewMemHost creates a double seeded at the given price/tick.
func NewMemHost(pool hostamm.PoolID, sqrtPriceX96 *big.Int, tick int32) *MemHost {
	return &MemHost{
		Pool:         pool,
		sqrtPriceX96: sqrtPriceX96,
		tick:         tick,
		positions:    make(map[positionKey]*big.Int),
		EngineOwes0:  big.NewInt(0),
		EngineOwes1:  big.NewInt(0),
		OwnerOwes0:   big.NewInt(0),
		OwnerOwes1:   big.NewInt(0),
	}
}

// SetPrice lets the test harness move the market, simulating external
// trading between syncs.
func (m *MemHost) SetPrice(sqrtPriceX96 *big.Int, tick int32) {
	m.sqrtPriceX96 = sqrtPriceX96
	m.tick = tick
}

func (m *MemHost) Slot0(_ context.Context, pool hostamm.PoolID) (hostamm.Slot0, error) {
	if pool != m.Pool {
		return hostamm.Slot0{}, fmt.Errorf("hostammtest: unknown pool %s", pool)
	}
	return hostamm.Slot0{SqrtPriceX96: m.sqrtPriceX96, Tick: m.tick}, nil
}

func (m *MemHost) Position(_ context.Context, pool hostamm.PoolID, tickLower, tickUpper int32) (hostamm.Position, error) {
	if pool != m.Pool {
		return hostamm.Position{}, fmt.Errorf("hostammtest: unknown pool %s", pool)
	}
	l, ok := m.positions[positionKey{tickLower, tickUpper}]
	if !ok {
		return hostamm.Position{Liquidity: big.NewInt(0)}, nil
	}
	return hostamm.Position{Liquidity: new(big.Int).Set(l)}, nil
}

func (m *MemHost) LockAcquired(_ context.Context, payload hostamm.CallbackPayload) (hostamm.BalanceDelta, error) {
	m.LockCalls = append(m.LockCalls, payload)

	switch p := payload.(type) {
	case hostamm.ModifyPositionCallback:
		return m.modifyPosition(p)
	case hostamm.SwapCallback:
		return m.swap(p)
	default:
		return hostamm.BalanceDelta{}, fmt.Errorf("hostammtest: unknown callback payload %T", payload)
	}
}

func (m *MemHost) modifyPosition(cb hostamm.ModifyPositionCallback) (hostamm.BalanceDelta, error) {
	key := positionKey{cb.Params.TickLower, cb.Params.TickUpper}
	cur, ok := m.positions[key]
	if !ok {
		cur = big.NewInt(0)
	}
	next := new(big.Int).Add(cur, cb.Params.LiquidityDelta)
	if next.Sign() < 0 {
		return hostamm.BalanceDelta{}, fmt.Errorf("hostammtest: liquidity would go negative at (%d,%d)", cb.Params.TickLower, cb.Params.TickUpper)
	}
	m.positions[key] = next

	amount0, amount1, err := tickmath.CalculateTokenAmountsFromLiquidity(new(big.Int).Abs(cb.Params.LiquidityDelta), m.sqrtPriceX96, cb.Params.TickLower, cb.Params.TickUpper)
	if err != nil {
		return hostamm.BalanceDelta{}, err
	}

	if cb.Params.LiquidityDelta.Sign() < 0 {
		// Close: the host owes these amounts out, to the owner or back to
		// the engine depending on the flag.
		if cb.TakeToOwner {
			m.OwnerOwes0.Add(m.OwnerOwes0, amount0)
			m.OwnerOwes1.Add(m.OwnerOwes1, amount1)
		} else {
			m.EngineOwes0.Add(m.EngineOwes0, amount0)
			m.EngineOwes1.Add(m.EngineOwes1, amount1)
		}
		return hostamm.BalanceDelta{Amount0: amount0, Amount1: amount1}, nil
	}

	// Open: the engine owes these amounts in (a negative delta from its
	// point of view).
	neg0 := new(big.Int).Neg(amount0)
	neg1 := new(big.Int).Neg(amount1)
	return hostamm.BalanceDelta{Amount0: neg0, Amount1: neg1}, nil
}

func (m *MemHost) swap(cb hostamm.SwapCallback) (hostamm.BalanceDelta, error) {
	amountIn := new(big.Int).Abs(cb.Params.AmountSpecified)
	if m.SwapFillCap != nil && amountIn.Cmp(m.SwapFillCap) > 0 {
		amountIn = new(big.Int).Set(m.SwapFillCap)
	}

	// The price limit is always reached in this simplified model: either
	// the full (capped) amount exactly exhausts the curve up to the
	// limit, or SwapFillCap models a curve that runs out before the
	// caller's full intent is spent.
	m.sqrtPriceX96 = cb.Params.SqrtPriceLimitX96
	tick, err := tickmath.SqrtPriceX96ToTick(m.sqrtPriceX96)
	if err != nil {
		return hostamm.BalanceDelta{}, err
	}
	m.tick = int32(tick)

	if cb.Params.ZeroForOne {
		// Engine sells token0, host pays token1 out 1:1 in this
		// simplified model; amount1 out is caller-supplied via
		// AmountSpecified since this double doesn't walk the curve.
		return hostamm.BalanceDelta{Amount0: new(big.Int).Neg(amountIn), Amount1: new(big.Int).Set(amountIn)}, nil
	}
	return hostamm.BalanceDelta{Amount0: new(big.Int).Set(amountIn), Amount1: new(big.Int).Neg(amountIn)}, nil
}
