package core_test

import (
	"testing"

	"github.com/DomeLiquid/pair/core"
	"github.com/DomeLiquid/pair/oracle"
	"github.com/DomeLiquid/pair/swapper"
	"github.com/DomeLiquid/pair/vault"
	"github.com/facebookgo/clock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	assetId      = "c6d0c728-2624-429b-8e0d-d9d19b6592fa"
	collateralId = "43d61dcd-e413-450d-80b8-101d5e903357"
	oracleId     = "feed"
	feedKey      = "asset/collateral"

	alice = "alice"
	bob   = "bob"
	carol = "carol"
	maker = "maker"

	treasury = "treasury"
)

func e9(v int64) decimal.Decimal {
	return decimal.New(v, 9)
}

func e18(v int64) decimal.Decimal {
	return decimal.New(v, 18)
}

func assertDecimal(t *testing.T, expected, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, expected.Equal(actual), "expected %s, got %s", expected, actual)
}

type fixture struct {
	t      *testing.T
	log    core.Log
	clk    *clock.Mock
	tokens *vault.TokenLedger
	vault  *vault.Vault
	feed   *oracle.Feed
	pair   *core.Pair
	pool   *swapper.Pool
}

// newFixture deploys a pair lending a 9 decimal asset against an 18 decimal collateral,
// priced at 1e9 collateral units per asset unit.
func newFixture(t *testing.T, opts ...core.OptionFunc) *fixture {
	nop := zerolog.Nop()
	clk := clock.NewMock()
	tokens := vault.NewTokenLedger()
	v := vault.New(tokens, "")

	require.NoError(t, tokens.Mint(assetId, bob, e9(1000)))
	require.NoError(t, tokens.Mint(assetId, carol, e9(1000)))
	require.NoError(t, tokens.Mint(assetId, maker, e9(5000)))
	require.NoError(t, tokens.Mint(collateralId, alice, e18(1000)))
	require.NoError(t, tokens.Mint(collateralId, carol, e18(1000)))
	require.NoError(t, tokens.Mint(collateralId, maker, e18(5000)))

	pool := swapper.NewPool(v, collateralId, assetId, swapper.DefaultFee)
	require.NoError(t, pool.AddLiquidity(maker, e18(5000), e9(5000)))

	feed := oracle.NewFeed()
	feed.Set(feedKey, decimal.New(1, 27))

	config := core.DefaultPairConfig()
	config.FeeTo = treasury
	factory, err := core.NewFactory(v, config, append([]core.OptionFunc{core.WithClock(clk)}, opts...)...)
	require.NoError(t, err)
	factory.RegisterOracle(oracleId, feed)

	pair, err := factory.Deploy(&nop,
		&core.Asset{AssetID: assetId, Symbol: "USD", Precision: 9},
		&core.Asset{AssetID: collateralId, Symbol: "ETH", Precision: 18},
		oracleId, oracle.Data(feedKey))
	require.NoError(t, err)

	f := &fixture{t: t, log: &nop, clk: clk, tokens: tokens, vault: v, feed: feed, pair: pair, pool: pool}
	_, err = pair.UpdateExchangeRate(f.log)
	require.NoError(t, err)
	return f
}

func (f *fixture) setRate(rate decimal.Decimal) {
	f.feed.Set(feedKey, rate)
	_, err := f.pair.UpdateExchangeRate(f.log)
	require.NoError(f.t, err)
}

// halveAsset rebases the asset supply down by half, resyncs the vault and doubles the price.
// The returned func undoes both.
func (f *fixture) halveAsset(rate decimal.Decimal) func() {
	total := f.tokens.TotalSupply(assetId)
	half := total.Div(decimal.NewFromInt(2))
	_, err := f.tokens.Rebase(assetId, half.Neg())
	require.NoError(f.t, err)
	f.vault.Sync(assetId)
	f.setRate(rate)

	return func() {
		_, err := f.tokens.Rebase(assetId, half)
		require.NoError(f.t, err)
		f.vault.Sync(assetId)
		assertDecimal(f.t, total, f.tokens.TotalSupply(assetId))
		f.setRate(decimal.New(1, 27))
	}
}

func (f *fixture) solvent(user string, open bool) bool {
	solvent, err := f.pair.IsSolvent(user, open)
	require.NoError(f.t, err)
	return solvent
}

// assertConservation checks that idle asset shares plus lent shares equal lender claims plus fees,
// and that the pair holds exactly the recorded collateral.
func (f *fixture) assertConservation() {
	f.t.Helper()
	state := f.pair.State()

	idle, err := f.vault.BalanceOf(assetId, f.pair.Address())
	require.NoError(f.t, err)
	assertDecimal(f.t, state.TotalAsset.Elastic.Add(state.AccrueInfo.FeesEarned), idle.Add(state.TotalBorrow.Elastic))

	collateral, err := f.vault.BalanceOf(collateralId, f.pair.Address())
	require.NoError(f.t, err)
	assertDecimal(f.t, state.TotalCollateralShare, collateral)

	parts, shares, pool := decimal.Zero, decimal.Zero, decimal.Zero
	for _, position := range f.pair.Positions() {
		parts = parts.Add(position.BorrowPart)
		shares = shares.Add(position.CollateralShare)
		pool = pool.Add(position.PoolShareBalance)
	}
	assertDecimal(f.t, state.TotalBorrow.Base, parts)
	assertDecimal(f.t, state.TotalCollateralShare, shares)
	assertDecimal(f.t, state.TotalAsset.Base, pool)
}

func sansBorrowFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(2000)).Div(decimal.NewFromInt(2001)).Truncate(0)
}
