package lbpengine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/lbpsync/lbpengine/internal/orientation"
	"github.com/lbpsync/lbpengine/pkg/hostamm"
	"github.com/lbpsync/lbpengine/pkg/tickmath"
)

// forcedSell runs when the current price is still inside or above the
// shrinking floor: it pushes price out of range with the engine's own
// swap before the position can be widened. delta is A*(t) - amount_committed,
// the amount still owed for this epoch.
//
// If the swap's price limit is hit before delta is fully spent, the price
// has now been pushed safely out of the new range, so the unspent
// residual (delta - sold) is fed into the reconciler at lStar as the new
// position's deposit. If instead the swap spends the full delta without
// ever reaching its price limit, external demand absorbed the whole
// target and the resulting price may still sit inside the new range:
// the position is deliberately not reopened this epoch, and the
// fully-committed-but-unplaced amount simply enlarges next epoch's range.
func forcedSell(ctx context.Context, host hostamm.Host, pool hostamm.PoolID, adp orientation.Adapter, sched Schedule, state *EngineState, lStar int32, delta *big.Int) (EventAction, error) {
	if delta.Sign() == 0 {
		return ActionNoOp, nil
	}

	limitTick := adp.ToHostTick(lStar - 1)
	sqrtPriceLimit := tickmath.TickToSqrtPriceX96(int(limitTick))

	state.InInternalSwap = true
	balDelta, err := host.LockAcquired(ctx, hostamm.SwapCallback{
		Pool: pool,
		Params: hostamm.SwapParams{
			ZeroForOne:        adp.ZeroForOne(),
			AmountSpecified:   new(big.Int).Set(delta),
			SqrtPriceLimitX96: sqrtPriceLimit,
		},
	})
	state.InInternalSwap = false
	if err != nil {
		return "", fmt.Errorf("%w: forced-sell swap: %v", ErrHostFailure, err)
	}

	sold := soldAmount(sched.IsToken0, balDelta)

	if sold.Cmp(delta) < 0 {
		residual := new(big.Int).Sub(delta, sold)
		if err := reconcile(ctx, host, pool, adp, sched, state, lStar, residual); err != nil {
			return "", err
		}
		return ActionForcedSell, nil
	}

	return ActionDeferred, nil
}

// soldAmount reads how much of the bootstrapping token the engine gave up
// in a swap, from the balance delta the host returned.
func soldAmount(isToken0 bool, delta hostamm.BalanceDelta) *big.Int {
	if isToken0 {
		return new(big.Int).Abs(delta.Amount0)
	}
	return new(big.Int).Abs(delta.Amount1)
}
