package oracle

import (
	"encoding/json"
	"sync"

	"github.com/DomeLiquid/pair/core"
	"github.com/fox-one/mixin-sdk-go/v2"
	"github.com/shopspring/decimal"
)

type (
	// MarketPrice is the latest USD quote of a token together with its precision.
	MarketPrice struct {
		AssetID   string          `json:"assetId"`
		Precision int32           `json:"precision"`
		PriceUSD  decimal.Decimal `json:"priceUsd"`
	}

	// MarketPair is the oracle data of a pair priced by Market.
	MarketPair struct {
		Asset      string `json:"asset"`
		Collateral string `json:"collateral"`
	}
)

// Market derives exchange rates from USD quotes of both tokens of a pair.
type Market struct {
	mu     sync.RWMutex
	prices map[string]MarketPrice
}

var _ core.Oracle = (*Market)(nil)

func NewMarket() *Market {
	return &Market{prices: map[string]MarketPrice{}}
}

func MarketData(assetId, collateralId string) []byte {
	data, _ := json.Marshal(MarketPair{Asset: assetId, Collateral: collateralId})
	return data
}

func (m *Market) SetPrice(price MarketPrice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[price.AssetID] = price
}

// UpdateFromMixin takes the quotes of assets as returned by the Mixin safe asset API.
func (m *Market) UpdateFromMixin(assets ...*mixin.SafeAsset) {
	for _, asset := range assets {
		m.SetPrice(MarketPrice{
			AssetID:   asset.AssetID,
			Precision: asset.Precision,
			PriceUSD:  asset.PriceUSD,
		})
	}
}

func (m *Market) Get(data []byte) (decimal.Decimal, bool) {
	return m.Peek(data)
}

// Peek returns collateral base units per asset base unit, scaled by 1e18 and rounded down.
func (m *Market) Peek(data []byte) (decimal.Decimal, bool) {
	var pair MarketPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return decimal.Zero, false
	}

	m.mu.RLock()
	asset, ok := m.prices[pair.Asset]
	collateral, found := m.prices[pair.Collateral]
	m.mu.RUnlock()
	if !ok || !found || !asset.PriceUSD.IsPositive() || !collateral.PriceUSD.IsPositive() {
		return decimal.Zero, false
	}

	numerator := asset.PriceUSD.Shift(collateral.Precision).Mul(core.SCALE)
	denominator := collateral.PriceUSD.Shift(asset.Precision)
	rate, _ := numerator.QuoRem(denominator, 0)
	if !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}
