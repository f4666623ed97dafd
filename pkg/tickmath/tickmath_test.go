package tickmath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickToSqrtPriceX96(t *testing.T) {
	sqrtPrice := TickToSqrtPriceX96(-252000)
	expected, _ := big.NewInt(0).SetString("304011615425126403287043", 10)
	assert.Equal(t, expected, sqrtPrice)
}

func TestComputeAmounts(t *testing.T) {
	sqrtPriceX96, _ := big.NewInt(0).SetString("275467826341246019486853", 10)
	tick := -251400
	tickLower := -252000
	tickUpper := -250800
	amount0Max, _ := big.NewInt(0).SetString("99999309985252461722", 10)
	amount1Max, _ := big.NewInt(0).SetString("1208870000", 10)

	amount0, amount1, l := ComputeAmounts(sqrtPriceX96, tick, tickLower, tickUpper, amount0Max, amount1Max)

	assert.True(t, l.Cmp(big.NewInt(0)) > 0, "liquidity should be > 0")
	assert.True(t, amount0.Cmp(big.NewInt(0)) >= 0)
	assert.True(t, amount1.Cmp(big.NewInt(0)) >= 0)
	assert.True(t, amount0.Cmp(amount0Max) <= 0, "amount0 must not exceed the budget")
	assert.True(t, amount1.Cmp(amount1Max) <= 0, "amount1 must not exceed the budget")
}

func TestCalculateTokenAmountsFromLiquidity(t *testing.T) {
	liquidity := big.NewInt(845179049218237)
	sqrtPriceX96, _ := big.NewInt(0).SetString("275467826341246019486853", 10)

	amount0, amount1, err := CalculateTokenAmountsFromLiquidity(liquidity, sqrtPriceX96, -252000, -240800)
	require.NoError(t, err)
	assert.True(t, amount0.Sign() >= 0)
	assert.True(t, amount1.Sign() >= 0)
}

func TestCalculateTokenAmountsFromLiquidity_InvalidRange(t *testing.T) {
	_, _, err := CalculateTokenAmountsFromLiquidity(big.NewInt(1), big.NewInt(1), 100, 100)
	assert.ErrorIs(t, err, ErrInvalidTickRange)
}

func TestLiquidityForTokenAmount_RoundTrip(t *testing.T) {
	// At the lower edge of the range, the whole budget should convert to
	// token0-denominated liquidity and back within a small rounding error.
	tickLower, tickUpper := int32(-5000), int32(5000)
	sqrtAtLower := TickToSqrtPriceX96(int(tickLower))

	budget := big.NewInt(1_000_000_000_000_000_000)
	liquidity, err := LiquidityForTokenAmount(sqrtAtLower, tickLower, tickUpper, budget)
	require.NoError(t, err)
	assert.True(t, liquidity.Sign() > 0)

	amount0, amount1, err := CalculateTokenAmountsFromLiquidity(liquidity, sqrtAtLower, tickLower, tickUpper)
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount1.Int64(), "at the lower edge the position should be all token0")
	assert.True(t, amount0.Cmp(budget) <= 0)
}

func TestMinMaxUsableTick(t *testing.T) {
	spacing := int32(200)
	lo := MinUsableTick(spacing)
	hi := MaxUsableTick(spacing)
	assert.True(t, lo%spacing == 0)
	assert.True(t, hi%spacing == 0)
	assert.True(t, lo < 0)
	assert.True(t, hi > 0)
}

func TestSqrtPriceToPrice(t *testing.T) {
	val, _ := big.NewInt(0).SetString("267326922672530907272725", 10)
	priceRaw := SqrtPriceToPrice(val)
	price, _ := priceRaw.Float64()
	assert.Greater(t, price, 0.0)
}
