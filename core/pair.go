package core

import (
	"context"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/DomeLiquid/pair/utils"
	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type (
	PairStore interface {
		UpsertPair(ctx context.Context, snapshot *PairSnapshot) error
		GetPair(ctx context.Context, pairId uuid.UUID) (*PairSnapshot, error)
		ListPairs(ctx context.Context) ([]*PairSnapshot, error)
	}

	AccrueInfo struct {
		InterestPerSecond decimal.Decimal `json:"interestPerSecond"`
		LastAccrued       int64           `json:"lastAccrued"`
		FeesEarned        decimal.Decimal `json:"feesEarned"`
	}

	// PairState holds the pool totals. Asset and borrow elastics and FeesEarned are asset vault shares.
	PairState struct {
		ExchangeRate         decimal.Decimal `json:"exchangeRate"`
		TotalAsset           Rebase          `json:"totalAsset"`
		TotalBorrow          Rebase          `json:"totalBorrow"`
		TotalCollateralShare decimal.Decimal `json:"totalCollateralShare"`
		AccrueInfo           AccrueInfo      `json:"accrueInfo"`
	}

	Pair struct {
		mu sync.RWMutex

		clk      clock.Clock
		vault    Vault
		oracle   Oracle
		observer Observer
		operates OperateStore

		Id         uuid.UUID  `json:"id"`
		Asset      Asset      `json:"asset"`
		Collateral Asset      `json:"collateral"`
		OracleId   string     `json:"oracleId"`
		OracleData []byte     `json:"oracleData"`
		Config     PairConfig `json:"config"`
		CreatedAt  int64      `json:"createdAt"`

		state     PairState
		positions map[string]*UserPosition
	}
)

type OptionFunc func(p *Pair)

func WithClock(clk clock.Clock) OptionFunc {
	return func(p *Pair) {
		p.clk = clk
	}
}

func WithObserver(observer Observer) OptionFunc {
	return func(p *Pair) {
		if observer != nil {
			p.observer = observer
		}
	}
}

func WithOperateStore(store OperateStore) OptionFunc {
	return func(p *Pair) {
		p.operates = store
	}
}

func GenPairId(assetId, collateralId, oracleId string, oracleData []byte) uuid.UUID {
	return uuid.Must(uuid.FromString(utils.GenUuidFromOrderedStrings(assetId, collateralId, oracleId, hex.EncodeToString(oracleData))))
}

func NewPair(vault Vault, oracle Oracle, asset, collateral Asset, oracleId string, oracleData []byte, config PairConfig, opts ...OptionFunc) *Pair {
	p := &Pair{
		clk:        clock.New(),
		vault:      vault,
		oracle:     oracle,
		observer:   nopObserver{},
		Id:         GenPairId(asset.AssetID, collateral.AssetID, oracleId, oracleData),
		Asset:      asset,
		Collateral: collateral,
		OracleId:   oracleId,
		OracleData: append([]byte(nil), oracleData...),
		Config:     config,
		positions:  map[string]*UserPosition{},
	}
	for _, opt := range opts {
		opt(p)
	}

	now := p.clk.Now().Unix()
	p.CreatedAt = now
	p.state = PairState{
		ExchangeRate:         decimal.Zero,
		TotalAsset:           NewRebase(),
		TotalBorrow:          NewRebase(),
		TotalCollateralShare: decimal.Zero,
		AccrueInfo: AccrueInfo{
			InterestPerSecond: config.StartingInterestPerSecond,
			LastAccrued:       now,
			FeesEarned:        decimal.Zero,
		},
	}
	return p
}

// Address is the account the pair holds its vault shares under.
func (p *Pair) Address() string {
	return p.Id.String()
}

func (p *Pair) Decimals() int32 {
	return p.Asset.Precision
}

func (p *Pair) State() PairState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Pair) TotalAsset() Rebase {
	return p.State().TotalAsset
}

func (p *Pair) TotalBorrow() Rebase {
	return p.State().TotalBorrow
}

func (p *Pair) AccrueInfo() AccrueInfo {
	return p.State().AccrueInfo
}

func (p *Pair) ExchangeRate() decimal.Decimal {
	return p.State().ExchangeRate
}

func (p *Pair) TotalCollateralShare() decimal.Decimal {
	return p.State().TotalCollateralShare
}

func (p *Pair) TotalSupply() decimal.Decimal {
	return p.State().TotalAsset.Base
}

// Position returns a copy of the user's position, zero valued for unknown users.
func (p *Pair) Position(user string) *UserPosition {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if position, ok := p.positions[user]; ok {
		return position.Clone()
	}
	return NewUserPosition(user)
}

func (p *Pair) Positions() []*UserPosition {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.positionsLocked()
}

func (p *Pair) positionsLocked() []*UserPosition {
	positions := make([]*UserPosition, 0, len(p.positions))
	for _, position := range p.positions {
		positions = append(positions, position.Clone())
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].User < positions[j].User
	})
	return positions
}

func (p *Pair) BalanceOf(user string) decimal.Decimal {
	return p.Position(user).PoolShareBalance
}

func (p *Pair) UserCollateralShare(user string) decimal.Decimal {
	return p.Position(user).CollateralShare
}

func (p *Pair) UserBorrowFraction(user string) decimal.Decimal {
	return p.Position(user).BorrowPart
}

// IsSolvent evaluates the user against the current state without accruing or refreshing the rate.
func (p *Pair) IsSolvent(user string, open bool) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	position, ok := p.positions[user]
	if !ok {
		return true, nil
	}
	return p.riskEngine(&p.state).IsSolvent(position, PostureOf(open))
}

// LiquidationRate is the exchange rate at which the user stops being solvent under the posture.
func (p *Pair) LiquidationRate(user string, open bool) (decimal.Decimal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	position, ok := p.positions[user]
	if !ok {
		return decimal.Zero, nil
	}
	return p.riskEngine(&p.state).LiquidationRate(position, PostureOf(open))
}

func (p *Pair) riskEngine(state *PairState) *RiskEngine {
	return NewRiskEngine(p.vault, p.Asset.AssetID, p.Collateral.AssetID, &p.Config, state.ExchangeRate, state.TotalBorrow)
}
