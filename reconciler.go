package lbpengine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/lbpsync/lbpengine/internal/orientation"
	"github.com/lbpsync/lbpengine/pkg/hostamm"
	"github.com/lbpsync/lbpengine/pkg/tickmath"
)

// reconcile carries the position from its current range to (lNew, maxTick)
// canonical, folding in an additional token amount delta. It closes the
// old position (if any), converts the liquidity it held back into a token
// amount, adds delta, and reopens at the new range sized to the combined
// amount.
func reconcile(ctx context.Context, host hostamm.Host, pool hostamm.PoolID, adp orientation.Adapter, sched Schedule, state *EngineState, lNew int32, delta *big.Int) error {
	if delta.Sign() == 0 && lNew == state.CurrentMinTick {
		return nil
	}

	lOld, uOld := adp.ToHost(state.CurrentMinTick, sched.MaxTick)

	pos, err := host.Position(ctx, pool, lOld, uOld)
	if err != nil {
		return fmt.Errorf("%w: read position: %v", ErrHostFailure, err)
	}

	carried := big.NewInt(0)
	if pos.Liquidity.Sign() > 0 {
		slot0, err := host.Slot0(ctx, pool)
		if err != nil {
			return fmt.Errorf("%w: read slot0: %v", ErrHostFailure, err)
		}
		amount0, amount1, err := tickmath.CalculateTokenAmountsFromLiquidity(pos.Liquidity, slot0.SqrtPriceX96, lOld, uOld)
		if err != nil {
			return fmt.Errorf("lbpengine: convert old position liquidity: %w", err)
		}
		carried = bootstrappingAmount(sched.IsToken0, amount0, amount1)

		_, err = host.LockAcquired(ctx, hostamm.ModifyPositionCallback{
			Pool: pool,
			Params: hostamm.ModifyPositionParams{
				TickLower:      lOld,
				TickUpper:      uOld,
				LiquidityDelta: new(big.Int).Neg(pos.Liquidity),
			},
			TakeToOwner: false,
		})
		if err != nil {
			return fmt.Errorf("%w: close position: %v", ErrHostFailure, err)
		}
	}

	tokenAmount := new(big.Int).Add(carried, delta)

	lHostNew, uHostNew := adp.ToHost(lNew, sched.MaxTick)
	slot0, err := host.Slot0(ctx, pool)
	if err != nil {
		return fmt.Errorf("%w: read slot0: %v", ErrHostFailure, err)
	}

	liquidity, err := tickmath.LiquidityForTokenAmount(slot0.SqrtPriceX96, minTick(lHostNew, uHostNew), maxTick(lHostNew, uHostNew), tokenAmount)
	if err != nil {
		return fmt.Errorf("lbpengine: size new position: %w", err)
	}

	if liquidity.Sign() > 0 {
		_, err = host.LockAcquired(ctx, hostamm.ModifyPositionCallback{
			Pool: pool,
			Params: hostamm.ModifyPositionParams{
				TickLower:      minTick(lHostNew, uHostNew),
				TickUpper:      maxTick(lHostNew, uHostNew),
				LiquidityDelta: liquidity,
			},
		})
		if err != nil {
			return fmt.Errorf("%w: open position: %v", ErrHostFailure, err)
		}
	}

	state.CurrentMinTick = lNew
	return nil
}

// bootstrappingAmount picks out the carried-over amount denominated in
// the bootstrapping token, per the pool's orientation.
func bootstrappingAmount(isToken0 bool, amount0, amount1 *big.Int) *big.Int {
	if isToken0 {
		return new(big.Int).Set(amount0)
	}
	return new(big.Int).Set(amount1)
}

func minTick(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxTick(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
