// Package hostammrpc is the live hostamm.Host backend: it submits real
// transactions to the deployed concentrated-liquidity AMM via
// pkg/contractclient and pkg/txlistener, rounding out the abstract hook
// surface with a concrete on-chain runner rather than only ever being
// exercised by the in-memory test double (pkg/hostamm/hostammtest) the
// property tests drive. Composes one ContractClient + TxListener pair
// per contract it talks to.
package hostammrpc

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lbpsync/lbpengine/pkg/contractclient"
	"github.com/lbpsync/lbpengine/pkg/hostamm"
	"github.com/lbpsync/lbpengine/pkg/txlistener"
)

// RPCHost is a hostamm.Host backed by a single deployed pool contract. The
// engine calls Slot0/Position to read state and LockAcquired to submit the
// modifyPosition/swap transactions C4/C5 decide on, signed by the engine's
// own operating key.
type RPCHost struct {
	pool     *contractclient.ContractClient
	poolABI  abi.ABI
	listener *txlistener.TxListener

	operator   common.Address
	privateKey *ecdsa.PrivateKey
}

// New builds an RPCHost against pool (already bound to the AMM's ABI and
// address), waiting for transactions via listener and signing them with
// privateKey from operator's account.
func New(pool *contractclient.ContractClient, poolABI abi.ABI, listener *txlistener.TxListener, operator common.Address, privateKey *ecdsa.PrivateKey) *RPCHost {
	return &RPCHost{
		pool:       pool,
		poolABI:    poolABI,
		listener:   listener,
		operator:   operator,
		privateKey: privateKey,
	}
}

// Slot0 reads the pool's current sqrt price and tick. The AMM is expected
// to expose a "slot0" view returning (sqrtPriceX96, tick, ...): the engine
// only reads the first two return values.
func (h *RPCHost) Slot0(ctx context.Context, pool hostamm.PoolID) (hostamm.Slot0, error) {
	out, err := h.pool.Call(ctx, nil, "slot0")
	if err != nil {
		return hostamm.Slot0{}, fmt.Errorf("%w: slot0: %v", hostamm.ErrHostFailure, err)
	}
	if len(out) < 2 {
		return hostamm.Slot0{}, fmt.Errorf("%w: slot0: unexpected return shape", hostamm.ErrHostFailure)
	}

	sqrtPriceX96, ok := out[0].(*big.Int)
	if !ok {
		return hostamm.Slot0{}, fmt.Errorf("%w: slot0: sqrtPriceX96 not *big.Int", hostamm.ErrHostFailure)
	}
	tick, err := asInt32(out[1])
	if err != nil {
		return hostamm.Slot0{}, fmt.Errorf("%w: slot0: tick: %v", hostamm.ErrHostFailure, err)
	}

	return hostamm.Slot0{SqrtPriceX96: sqrtPriceX96, Tick: tick}, nil
}

// Position reads the liquidity currently open at [tickLower, tickUpper),
// keyed by the engine's own operator address the way a per-owner position
// mapping on the host AMM would be.
func (h *RPCHost) Position(ctx context.Context, pool hostamm.PoolID, tickLower, tickUpper int32) (hostamm.Position, error) {
	out, err := h.pool.Call(ctx, nil, "getPositionLiquidity", h.operator, tickLower, tickUpper)
	if err != nil {
		return hostamm.Position{}, fmt.Errorf("%w: getPositionLiquidity: %v", hostamm.ErrHostFailure, err)
	}
	if len(out) < 1 {
		return hostamm.Position{}, fmt.Errorf("%w: getPositionLiquidity: unexpected return shape", hostamm.ErrHostFailure)
	}
	liquidity, ok := out[0].(*big.Int)
	if !ok {
		return hostamm.Position{}, fmt.Errorf("%w: getPositionLiquidity: liquidity not *big.Int", hostamm.ErrHostFailure)
	}
	return hostamm.Position{Liquidity: liquidity}, nil
}

// LockAcquired submits the transaction a ModifyPositionCallback or
// SwapCallback describes, waits for its receipt, and decodes the resulting
// token deltas from the emitted event. Real CL-AMMs emit one event per
// operation carrying signed amount0/amount1 deltas (Uniswap v3/v4's
// ModifyLiquidity/Swap events are the template this follows); this engine
// reads whichever of "ModifyPosition" or "Swap" the pool ABI declares.
func (h *RPCHost) LockAcquired(ctx context.Context, payload hostamm.CallbackPayload) (hostamm.BalanceDelta, error) {
	switch p := payload.(type) {
	case hostamm.ModifyPositionCallback:
		return h.modifyPosition(ctx, p)
	case hostamm.SwapCallback:
		return h.swap(ctx, p)
	default:
		return hostamm.BalanceDelta{}, fmt.Errorf("hostammrpc: unknown callback payload %T", payload)
	}
}

func (h *RPCHost) modifyPosition(ctx context.Context, cb hostamm.ModifyPositionCallback) (hostamm.BalanceDelta, error) {
	hash, err := h.pool.Send(ctx, h.operator, h.privateKey, nil, "modifyPosition",
		cb.Params.TickLower, cb.Params.TickUpper, cb.Params.LiquidityDelta)
	if err != nil {
		return hostamm.BalanceDelta{}, fmt.Errorf("%w: modifyPosition: %v", hostamm.ErrHostFailure, err)
	}

	receipt, err := h.listener.WaitForTransaction(ctx, hash)
	if err != nil {
		return hostamm.BalanceDelta{}, fmt.Errorf("%w: modifyPosition receipt: %v", hostamm.ErrHostFailure, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return hostamm.BalanceDelta{}, fmt.Errorf("%w: modifyPosition reverted: %s", hostamm.ErrHostFailure, hash)
	}

	return h.deltaFromLogs(receipt, "ModifyPosition")
}

func (h *RPCHost) swap(ctx context.Context, cb hostamm.SwapCallback) (hostamm.BalanceDelta, error) {
	hash, err := h.pool.Send(ctx, h.operator, h.privateKey, nil, "swap",
		cb.Params.ZeroForOne, cb.Params.AmountSpecified, cb.Params.SqrtPriceLimitX96)
	if err != nil {
		return hostamm.BalanceDelta{}, fmt.Errorf("%w: swap: %v", hostamm.ErrHostFailure, err)
	}

	receipt, err := h.listener.WaitForTransaction(ctx, hash)
	if err != nil {
		return hostamm.BalanceDelta{}, fmt.Errorf("%w: swap receipt: %v", hostamm.ErrHostFailure, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return hostamm.BalanceDelta{}, fmt.Errorf("%w: swap reverted: %s", hostamm.ErrHostFailure, hash)
	}

	return h.deltaFromLogs(receipt, "Swap")
}

// deltaFromLogs scans receipt for the first log matching eventName in the
// pool's ABI and unpacks its amount0/amount1 fields.
func (h *RPCHost) deltaFromLogs(receipt *types.Receipt, eventName string) (hostamm.BalanceDelta, error) {
	event, ok := h.poolABI.Events[eventName]
	if !ok {
		return hostamm.BalanceDelta{}, fmt.Errorf("hostammrpc: pool ABI has no %s event", eventName)
	}

	for _, vlog := range receipt.Logs {
		if len(vlog.Topics) == 0 || vlog.Topics[0] != event.ID {
			continue
		}
		args := make(map[string]interface{})
		if err := h.poolABI.UnpackIntoMap(args, eventName, vlog.Data); err != nil {
			return hostamm.BalanceDelta{}, fmt.Errorf("hostammrpc: unpack %s log: %w", eventName, err)
		}
		amount0, ok0 := args["amount0"].(*big.Int)
		amount1, ok1 := args["amount1"].(*big.Int)
		if !ok0 || !ok1 {
			return hostamm.BalanceDelta{}, fmt.Errorf("hostammrpc: %s log missing amount0/amount1", eventName)
		}
		return hostamm.BalanceDelta{Amount0: amount0, Amount1: amount1}, nil
	}

	return hostamm.BalanceDelta{}, fmt.Errorf("hostammrpc: no %s log in receipt", eventName)
}

func asInt32(v interface{}) (int32, error) {
	switch n := v.(type) {
	case *big.Int:
		return int32(n.Int64()), nil
	case int32:
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
