package core_test

import (
	"testing"

	"github.com/DomeLiquid/pair/core"
	"github.com/DomeLiquid/pair/oracle"
	"github.com/DomeLiquid/pair/vault"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryDeploy(t *testing.T) {
	log := zerolog.Nop()
	v := vault.New(vault.NewTokenLedger(), "")
	feed := oracle.NewFeed()

	factory, err := core.NewFactory(v, core.DefaultPairConfig())
	require.NoError(t, err)
	factory.RegisterOracle(oracleId, feed)

	usd := &core.Asset{AssetID: assetId, Symbol: "USD", Precision: 9}
	eth := &core.Asset{AssetID: collateralId, Symbol: "ETH", Precision: 18}

	pair, err := factory.Deploy(&log, usd, eth, oracleId, oracle.Data(feedKey))
	require.NoError(t, err)
	assert.Equal(t, core.GenPairId(assetId, collateralId, oracleId, oracle.Data(feedKey)), pair.Id)
	assert.Equal(t, int32(9), pair.Decimals())
	assertDecimal(t, core.STARTING_INTEREST_PER_SECOND, pair.AccrueInfo().InterestPerSecond)

	found, ok := factory.Pair(pair.Id.String())
	require.True(t, ok)
	assert.Same(t, pair, found)

	t.Run("same tuple twice", func(t *testing.T) {
		_, err := factory.Deploy(&log, usd, eth, oracleId, oracle.Data(feedKey))
		assert.ErrorIs(t, err, core.ErrPairExists)
	})

	t.Run("swapped roles are a different pair", func(t *testing.T) {
		swapped, err := factory.Deploy(&log, eth, usd, oracleId, oracle.Data(feedKey))
		require.NoError(t, err)
		assert.NotEqual(t, pair.Id, swapped.Id)
	})

	t.Run("unknown oracle", func(t *testing.T) {
		_, err := factory.Deploy(&log, usd, eth, "missing", nil)
		assert.ErrorIs(t, err, core.ErrUnknownOracle)
	})

	t.Run("same asset and collateral", func(t *testing.T) {
		_, err := factory.Deploy(&log, usd, usd, oracleId, nil)
		assert.ErrorIs(t, err, core.ErrInvalidConfig)
	})

	t.Run("missing asset", func(t *testing.T) {
		_, err := factory.Deploy(&log, nil, eth, oracleId, nil)
		assert.ErrorIs(t, err, core.ErrUnknownAsset)
	})

	assert.Len(t, factory.Pairs(), 2)
}

func TestFactoryRejectsInvalidConfig(t *testing.T) {
	config := core.DefaultPairConfig()
	config.CollateralizationRate = decimal.NewFromFloat(1.5)

	_, err := core.NewFactory(vault.New(vault.NewTokenLedger(), ""), config)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestPairsAreIndependent(t *testing.T) {
	f := newFixture(t)

	other := oracle.NewFeed()
	other.Set(feedKey, decimal.New(1, 27))
	factory, err := core.NewFactory(f.vault, core.DefaultPairConfig())
	require.NoError(t, err)
	factory.RegisterOracle("other", other)

	second, err := factory.Deploy(f.log,
		&core.Asset{AssetID: assetId, Symbol: "USD", Precision: 9},
		&core.Asset{AssetID: collateralId, Symbol: "ETH", Precision: 18},
		"other", oracle.Data(feedKey))
	require.NoError(t, err)
	assert.NotEqual(t, f.pair.Address(), second.Address())

	_, err = f.pair.AddAsset(f.log, bob, e9(100))
	require.NoError(t, err)
	_, err = second.AddAsset(f.log, carol, e9(40))
	require.NoError(t, err)

	assertDecimal(t, e9(100), f.pair.TotalSupply())
	assertDecimal(t, e9(40), second.TotalSupply())
	assert.True(t, f.pair.BalanceOf(carol).IsZero())

	// the second pair has no liquidity for loans taken against the first one's lenders
	_, err = second.AddCollateral(f.log, alice, e18(100))
	require.NoError(t, err)
	_, err = second.Borrow(f.log, alice, e9(50), alice)
	assert.ErrorIs(t, err, core.ErrUnderflow)
}
