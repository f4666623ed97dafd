// Package tickmath provides the tick/√price/liquidity conversions the
// engine needs from the host AMM's math library. Spec-wise these are an
// external collaborator ("the LiquidityAmounts conversions... tick math");
// concretely, this port backs them with github.com/daoleno/uniswapv3-sdk,
// a Go port of the Uniswap V3 SDK math, rather than hand-rolling Q96
// fixed-point arithmetic.
package tickmath

import (
	"errors"
	"math/big"

	v3constants "github.com/daoleno/uniswapv3-sdk/constants"
	v3utils "github.com/daoleno/uniswapv3-sdk/utils"
)

// ErrInvalidTickRange is returned when tickLower >= tickUpper.
var ErrInvalidTickRange = errors.New("tickmath: tickLower must be less than tickUpper")

// TickToSqrtPriceX96 converts a tick to its Q64.96 sqrt price.
func TickToSqrtPriceX96(tick int) *big.Int {
	sqrtPrice, err := v3utils.GetSqrtRatioAtTick(tick)
	if err != nil {
		// GetSqrtRatioAtTick only errors for ticks outside
		// [MinTick, MaxTick]; callers are expected to have validated
		// the tick range at schedule-init time
		panic(err)
	}
	return sqrtPrice
}

// SqrtPriceX96ToTick converts a Q64.96 sqrt price back to the nearest tick
// at or below it.
func SqrtPriceX96ToTick(sqrtPriceX96 *big.Int) (int, error) {
	return v3utils.GetTickAtSqrtRatio(sqrtPriceX96)
}

// SqrtPriceToPrice converts a Q64.96 sqrt price to a plain price ratio
// (token1 per token0), undoing the 2^96 fixed-point scaling and the square.
func SqrtPriceToPrice(sqrtPriceX96 *big.Int) *big.Float {
	q96 := new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))
	ratio := new(big.Float).Quo(new(big.Float).SetInt(sqrtPriceX96), q96)
	return new(big.Float).Mul(ratio, ratio)
}

// ComputeAmounts computes the liquidity obtainable from amount0Max/amount1Max
// at the given range and current price, and the actual token amounts that
// liquidity consumes (<= the max budget on each side).
func ComputeAmounts(sqrtPriceX96 *big.Int, tick, tickLower, tickUpper int, amount0Max, amount1Max *big.Int) (amount0, amount1, liquidity *big.Int) {
	sqrtRatioA := TickToSqrtPriceX96(tickLower)
	sqrtRatioB := TickToSqrtPriceX96(tickUpper)

	l, err := v3utils.MaxLiquidityForAmounts(sqrtPriceX96, sqrtRatioA, sqrtRatioB, amount0Max, amount1Max, false)
	if err != nil {
		return big.NewInt(0), big.NewInt(0), big.NewInt(0)
	}

	a0, a1, err := amountsForLiquidity(l, sqrtPriceX96, int32(tickLower), int32(tickUpper))
	if err != nil {
		return big.NewInt(0), big.NewInt(0), big.NewInt(0)
	}
	return a0, a1, l
}

// LiquidityForTokenAmount is the canonical-orientation analogue of
// ComputeAmounts used by the position reconciler: given a single
// token-denominated budget T (the carried-over token amount)
// it returns the liquidity units a fresh position at (tickLower, tickUpper)
// should be opened with. The budget is offered as both the amount0 and the
// amount1 limit: a range above the current price is sized from token0, a
// range below it from token1, and a range containing the price gets the
// smaller of the two liquidities.
func LiquidityForTokenAmount(sqrtPriceX96 *big.Int, tickLower, tickUpper int32, tokenAmount *big.Int) (*big.Int, error) {
	if tickLower >= tickUpper {
		return nil, ErrInvalidTickRange
	}
	sqrtRatioA := TickToSqrtPriceX96(int(tickLower))
	sqrtRatioB := TickToSqrtPriceX96(int(tickUpper))

	return v3utils.MaxLiquidityForAmounts(sqrtPriceX96, sqrtRatioA, sqrtRatioB, tokenAmount, tokenAmount, false)
}

// CalculateTokenAmountsFromLiquidity is the inverse of ComputeAmounts: given
// liquidity and a range, it returns the token0/token1 amounts that
// liquidity currently represents at sqrtPriceX96.
func CalculateTokenAmountsFromLiquidity(liquidity, sqrtPriceX96 *big.Int, tickLower, tickUpper int32) (amount0, amount1 *big.Int, err error) {
	if tickLower >= tickUpper {
		return nil, nil, ErrInvalidTickRange
	}
	return amountsForLiquidity(liquidity, sqrtPriceX96, tickLower, tickUpper)
}

func amountsForLiquidity(liquidity, sqrtPriceX96 *big.Int, tickLower, tickUpper int32) (amount0, amount1 *big.Int, err error) {
	sqrtRatioA := TickToSqrtPriceX96(int(tickLower))
	sqrtRatioB := TickToSqrtPriceX96(int(tickUpper))

	switch {
	case sqrtPriceX96.Cmp(sqrtRatioA) <= 0:
		// Entirely below the range: all token0.
		amount0, err = v3utils.GetAmount0Delta(sqrtRatioA, sqrtRatioB, liquidity, false)
		if err != nil {
			return nil, nil, err
		}
		return amount0, big.NewInt(0), nil
	case sqrtPriceX96.Cmp(sqrtRatioB) >= 0:
		// Entirely above the range: all token1.
		amount1, err = v3utils.GetAmount1Delta(sqrtRatioA, sqrtRatioB, liquidity, false)
		if err != nil {
			return nil, nil, err
		}
		return big.NewInt(0), amount1, nil
	default:
		amount0, err = v3utils.GetAmount0Delta(sqrtPriceX96, sqrtRatioB, liquidity, false)
		if err != nil {
			return nil, nil, err
		}
		amount1, err = v3utils.GetAmount1Delta(sqrtRatioA, sqrtPriceX96, liquidity, false)
		if err != nil {
			return nil, nil, err
		}
		return amount0, amount1, nil
	}
}

// MinUsableTick and MaxUsableTick return the host AMM's widest representable
// range for a given tick spacing, snapped inward to a spacing multiple.
// Used to validate Schedule.MinTick/MaxTick at init.
func MinUsableTick(tickSpacing int32) int32 {
	return (int32(v3constants.MinTick) / tickSpacing) * tickSpacing
}

func MaxUsableTick(tickSpacing int32) int32 {
	return (int32(v3constants.MaxTick) / tickSpacing) * tickSpacing
}
