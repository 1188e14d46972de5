package core_test

import (
	"testing"

	"github.com/DomeLiquid/pair/core"
	"github.com/DomeLiquid/pair/swapper"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dave = "dave"

// borrowers sets up alice with a large loan and carol with a small one, then moves the price so
// only alice is insolvent.
func borrowers(t *testing.T) *fixture {
	f := newFixture(t)

	_, err := f.pair.AddAsset(f.log, bob, e9(500))
	require.NoError(t, err)

	_, err = f.pair.AddCollateral(f.log, alice, e18(100))
	require.NoError(t, err)
	_, err = f.pair.Borrow(f.log, alice, e9(70), alice)
	require.NoError(t, err)

	_, err = f.pair.AddCollateral(f.log, carol, e18(100))
	require.NoError(t, err)
	_, err = f.pair.Borrow(f.log, carol, e9(10), carol)
	require.NoError(t, err)

	f.setRate(decimal.New(12, 26))
	require.False(t, f.solvent(alice, false))
	require.True(t, f.solvent(carol, false))
	return f
}

func TestLiquidateSkipsSolventUsers(t *testing.T) {
	f := borrowers(t)

	result, err := f.pair.Liquidate(f.log, bob, []string{alice, carol}, []decimal.Decimal{e9(10), e9(10)}, dave, nil, false)
	require.NoError(t, err)

	assert.Equal(t, core.Closed, result.Posture)
	assert.Equal(t, []string{carol}, result.Skipped)
	require.Len(t, result.Positions, 1)
	assert.Equal(t, alice, result.Positions[0].User)
	assertDecimal(t, e9(10), result.AllBorrowPart)
	assertDecimal(t, e9(10), result.AllBorrowShare)
	assertDecimal(t, e9(10), result.RepaidAmount)
	assertDecimal(t, decimal.New(1344, 16), result.AllCollateralShare)

	// bob paid the debt from his wallet, dave got the collateral with the bonus
	assertDecimal(t, e9(490), f.tokens.BalanceOf(assetId, bob))
	daveShare, err := f.vault.BalanceOf(collateralId, dave)
	require.NoError(t, err)
	assertDecimal(t, decimal.New(1344, 16), daveShare)

	aliceUser := f.pair.Position(alice)
	assertDecimal(t, decimal.New(60035, 6), aliceUser.BorrowPart)
	assertDecimal(t, decimal.New(8656, 16), aliceUser.CollateralShare)
	carolUser := f.pair.Position(carol)
	assertDecimal(t, decimal.New(10005, 6), carolUser.BorrowPart)
	assertDecimal(t, e18(100), carolUser.CollateralShare)

	f.assertConservation()
}

func TestLiquidateWithSwapper(t *testing.T) {
	f := borrowers(t)

	result, err := f.pair.Liquidate(f.log, bob, []string{alice}, []decimal.Decimal{e9(10)}, dave, f.pool, false)
	require.NoError(t, err)

	assert.Equal(t, f.pool.Address(), result.Swapper)
	assertDecimal(t, decimal.NewFromInt(13363865695), result.SwapOut)
	assertDecimal(t, decimal.NewFromInt(3363865695), result.Surplus)
	assert.True(t, result.RepaidAmount.IsZero())

	// the liquidator pays nothing, dave only gets the surplus asset
	assertDecimal(t, e9(500), f.tokens.BalanceOf(assetId, bob))
	daveAsset, err := f.vault.BalanceOf(assetId, dave)
	require.NoError(t, err)
	assertDecimal(t, decimal.NewFromInt(3363865695), daveAsset)
	daveCollateral, err := f.vault.BalanceOf(collateralId, dave)
	require.NoError(t, err)
	assert.True(t, daveCollateral.IsZero())

	f.assertConservation()
}

func TestLiquidateAllSolvent(t *testing.T) {
	f := newFixture(t)
	_, err := f.pair.AddAsset(f.log, bob, e9(100))
	require.NoError(t, err)
	_, err = f.pair.AddCollateral(f.log, alice, e18(100))
	require.NoError(t, err)
	_, err = f.pair.Borrow(f.log, alice, e9(10), alice)
	require.NoError(t, err)

	before := f.pair.State()
	_, err = f.pair.Liquidate(f.log, bob, []string{alice, carol}, []decimal.Decimal{e9(10), e9(10)}, dave, nil, true)
	assert.ErrorIs(t, err, core.ErrAllPositionsSolvent)
	assert.Equal(t, before, f.pair.State())
	assertDecimal(t, e9(900), f.tokens.BalanceOf(assetId, bob))
}

func TestLiquidateMismatchedInput(t *testing.T) {
	f := borrowers(t)

	_, err := f.pair.Liquidate(f.log, bob, []string{alice, carol}, []decimal.Decimal{e9(10)}, dave, nil, false)
	assert.ErrorIs(t, err, core.ErrMismatchedLiquidation)
}

func TestLiquidateSwapBelowDebtRollsBack(t *testing.T) {
	f := borrowers(t)
	// same reserves, but the fee eats almost everything
	greedy := swapper.NewPool(f.vault, collateralId, assetId, decimal.NewFromFloat(0.99))

	before := f.pair.State()
	beforePositions := f.pair.Positions()
	poolCollateral, err := f.vault.BalanceOf(collateralId, greedy.Address())
	require.NoError(t, err)

	_, err = f.pair.Liquidate(f.log, bob, []string{alice}, []decimal.Decimal{e9(10)}, dave, greedy, false)
	assert.ErrorIs(t, err, core.ErrSwapFailure)

	assert.Equal(t, before, f.pair.State())
	assert.Equal(t, beforePositions, f.pair.Positions())
	after, err := f.vault.BalanceOf(collateralId, greedy.Address())
	require.NoError(t, err)
	assertDecimal(t, poolCollateral, after)
	f.assertConservation()
}

func TestLiquidateCapsAtCollateral(t *testing.T) {
	f := borrowers(t)
	// the price collapses far enough that the bonus exceeds the pledged collateral
	f.setRate(decimal.New(2, 27))

	result, err := f.pair.Liquidate(f.log, bob, []string{alice}, []decimal.Decimal{e9(80)}, dave, nil, true)
	require.NoError(t, err)

	assertDecimal(t, decimal.New(70035, 6), result.AllBorrowPart)
	assertDecimal(t, e18(100), result.AllCollateralShare)
	assert.True(t, f.pair.Position(alice).IsEmpty())
	// alice keeps a zeroed entry
	positions := f.pair.Positions()
	require.Len(t, positions, 3)
	assert.Equal(t, alice, positions[0].User)
	assert.True(t, positions[0].IsEmpty())
	assert.Equal(t, carol, positions[2].User)
	f.assertConservation()
}

type liquidationCounter struct {
	calls     int
	positions int
}

func (c *liquidationCounter) ObserveOperation(core.ActionType, error)         {}
func (c *liquidationCounter) ObserveAccrual(decimal.Decimal, decimal.Decimal) {}

func (c *liquidationCounter) ObserveLiquidation(_ core.RiskPosture, users int) {
	c.calls++
	c.positions += users
}

func TestLiquidateObservesOnlyCommittedPositions(t *testing.T) {
	counter := &liquidationCounter{}
	f := newFixture(t, core.WithObserver(counter))
	_, err := f.pair.AddAsset(f.log, bob, e9(500))
	require.NoError(t, err)
	_, err = f.pair.AddCollateral(f.log, alice, e18(100))
	require.NoError(t, err)
	_, err = f.pair.Borrow(f.log, alice, e9(70), alice)
	require.NoError(t, err)
	f.setRate(decimal.New(12, 26))

	greedy := swapper.NewPool(f.vault, collateralId, assetId, decimal.NewFromFloat(0.99))
	_, err = f.pair.Liquidate(f.log, bob, []string{alice}, []decimal.Decimal{e9(10)}, dave, greedy, false)
	require.ErrorIs(t, err, core.ErrSwapFailure)
	assert.Equal(t, 1, counter.calls)
	assert.Equal(t, 0, counter.positions)

	_, err = f.pair.Liquidate(f.log, bob, []string{alice}, []decimal.Decimal{e9(10)}, dave, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 2, counter.calls)
	assert.Equal(t, 1, counter.positions)
}
