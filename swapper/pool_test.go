package swapper_test

import (
	"testing"

	"github.com/DomeLiquid/pair/core"
	"github.com/DomeLiquid/pair/swapper"
	"github.com/DomeLiquid/pair/vault"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenA = "4d8c508b-91c5-375b-92b0-ee702ed2dac5"
	tokenB = "31d2ea9c-95eb-3355-b65b-ba096853bc18"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func newPool(t *testing.T) (*vault.Vault, *swapper.Pool) {
	tokens := vault.NewTokenLedger()
	v := vault.New(tokens, "")
	require.NoError(t, tokens.Mint(tokenA, "maker", d(1_000_000_000)))
	require.NoError(t, tokens.Mint(tokenB, "maker", d(1_000_000_000)))
	require.NoError(t, tokens.Mint(tokenA, "trader", d(1_000_000)))

	pool := swapper.NewPool(v, tokenA, tokenB, swapper.DefaultFee)
	require.NoError(t, pool.AddLiquidity("maker", d(1_000_000_000), d(1_000_000_000)))
	return v, pool
}

func TestPoolAddressIsOrderIndependent(t *testing.T) {
	v := vault.New(vault.NewTokenLedger(), "")
	assert.Equal(t,
		swapper.NewPool(v, tokenA, tokenB, swapper.DefaultFee).Address(),
		swapper.NewPool(v, tokenB, tokenA, swapper.DefaultFee).Address())
}

func TestPoolSwap(t *testing.T) {
	v, pool := newPool(t)

	_, shareIn, err := v.Deposit(tokenA, "trader", pool.Address(), d(1_000_000), decimal.Zero)
	require.NoError(t, err)

	out, err := pool.Swap(tokenA, tokenB, "trader", d(990_000), shareIn)
	require.NoError(t, err)
	assert.True(t, d(996_006).Equal(out), "got %s", out)

	traderB, err := v.BalanceOf(tokenB, "trader")
	require.NoError(t, err)
	assert.True(t, out.Equal(traderB))

	reserve, err := pool.Reserve(tokenB)
	require.NoError(t, err)
	assert.True(t, d(1_000_000_000).Sub(out).Equal(reserve))
}

func TestPoolSwapBelowMinimum(t *testing.T) {
	v, pool := newPool(t)

	_, shareIn, err := v.Deposit(tokenA, "trader", pool.Address(), d(1_000_000), decimal.Zero)
	require.NoError(t, err)

	_, err = pool.Swap(tokenA, tokenB, "trader", d(1_000_000), shareIn)
	assert.ErrorIs(t, err, core.ErrSwapFailure)

	traderB, err := v.BalanceOf(tokenB, "trader")
	require.NoError(t, err)
	assert.True(t, traderB.IsZero())
	poolA, err := v.BalanceOf(tokenA, pool.Address())
	require.NoError(t, err)
	assert.True(t, d(1_001_000_000).Equal(poolA))
}

func TestPoolRejectsForeignTokens(t *testing.T) {
	_, pool := newPool(t)

	_, err := pool.Swap(tokenA, "unknown", "trader", decimal.Zero, d(1))
	assert.ErrorIs(t, err, swapper.ErrUnsupportedToken)
	_, err = pool.Swap(tokenA, tokenA, "trader", decimal.Zero, d(1))
	assert.ErrorIs(t, err, swapper.ErrUnsupportedToken)
	_, err = pool.Swap(tokenA, tokenB, "trader", decimal.Zero, d(2_000_000_000))
	assert.ErrorIs(t, err, core.ErrUnderflow)
}

func TestGetAmountOut(t *testing.T) {
	_, pool := newPool(t)

	tests := []struct {
		name                         string
		amountIn, reserveIn, reserve decimal.Decimal
		want                         decimal.Decimal
	}{
		{"balanced", d(1_000_000), d(1_000_000_000), d(1_000_000_000), d(996_006)},
		{"empty", decimal.Zero, decimal.Zero, d(100), decimal.Zero},
		{"all fee", d(1), d(1_000), d(1_000), decimal.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pool.GetAmountOut(tt.amountIn, tt.reserveIn, tt.reserve)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
