package store

import (
	"github.com/DomeLiquid/pair/core"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Pair is the persisted pool state. Amounts are stored as text to keep full integer precision.
type Pair struct {
	Id         string     `gorm:"size:36;primaryKey"`
	Asset      core.Asset `gorm:"serializer:json"`
	Collateral core.Asset `gorm:"serializer:json"`
	OracleId   string     `gorm:"size:64;index"`
	OracleData []byte
	Config     core.PairConfig `gorm:"serializer:json"`

	ExchangeRate         decimal.Decimal `gorm:"type:text"`
	TotalAssetElastic    decimal.Decimal `gorm:"type:text"`
	TotalAssetBase       decimal.Decimal `gorm:"type:text"`
	TotalBorrowElastic   decimal.Decimal `gorm:"type:text"`
	TotalBorrowBase      decimal.Decimal `gorm:"type:text"`
	TotalCollateralShare decimal.Decimal `gorm:"type:text"`
	InterestPerSecond    decimal.Decimal `gorm:"type:text"`
	FeesEarned           decimal.Decimal `gorm:"type:text"`
	LastAccrued          int64

	CreatedAt int64 `gorm:"autoCreateTime:false"`
	UpdatedAt int64 `gorm:"autoUpdateTime:false"`
}

type Position struct {
	PairId string `gorm:"size:36;primaryKey"`
	User   string `gorm:"column:account;size:128;primaryKey"`

	CollateralShare  decimal.Decimal `gorm:"type:text"`
	BorrowPart       decimal.Decimal `gorm:"type:text"`
	PoolShareBalance decimal.Decimal `gorm:"type:text"`
}

type Operate struct {
	ID        uint64             `gorm:"primaryKey;autoIncrement"`
	PairId    string             `gorm:"size:36;index"`
	User      string             `gorm:"column:account;size:128;index"`
	Op        core.ActionType    `gorm:"index"`
	Extra     core.OperateDetail `gorm:"type:text"`
	CreatedAt int64              `gorm:"autoCreateTime:false;index"`
}

func pairFromSnapshot(snapshot *core.PairSnapshot) (*Pair, []*Position) {
	state := snapshot.PairState
	pair := &Pair{
		Id:                   snapshot.Id.String(),
		Asset:                snapshot.Asset,
		Collateral:           snapshot.Collateral,
		OracleId:             snapshot.OracleId,
		OracleData:           snapshot.OracleData,
		Config:               snapshot.Config,
		ExchangeRate:         state.ExchangeRate,
		TotalAssetElastic:    state.TotalAsset.Elastic,
		TotalAssetBase:       state.TotalAsset.Base,
		TotalBorrowElastic:   state.TotalBorrow.Elastic,
		TotalBorrowBase:      state.TotalBorrow.Base,
		TotalCollateralShare: state.TotalCollateralShare,
		InterestPerSecond:    state.AccrueInfo.InterestPerSecond,
		FeesEarned:           state.AccrueInfo.FeesEarned,
		LastAccrued:          state.AccrueInfo.LastAccrued,
		CreatedAt:            snapshot.CreatedAt,
		UpdatedAt:            snapshot.UpdatedAt,
	}

	positions := make([]*Position, 0, len(snapshot.Positions))
	for _, position := range snapshot.Positions {
		positions = append(positions, &Position{
			PairId:           pair.Id,
			User:             position.User,
			CollateralShare:  position.CollateralShare,
			BorrowPart:       position.BorrowPart,
			PoolShareBalance: position.PoolShareBalance,
		})
	}
	return pair, positions
}

func (p *Pair) snapshot(positions []*Position) (*core.PairSnapshot, error) {
	id, err := uuid.FromString(p.Id)
	if err != nil {
		return nil, err
	}

	snapshot := &core.PairSnapshot{
		Id:         id,
		Asset:      p.Asset,
		Collateral: p.Collateral,
		OracleId:   p.OracleId,
		OracleData: p.OracleData,
		Config:     p.Config,
		PairState: core.PairState{
			ExchangeRate:         p.ExchangeRate,
			TotalAsset:           core.Rebase{Elastic: p.TotalAssetElastic, Base: p.TotalAssetBase},
			TotalBorrow:          core.Rebase{Elastic: p.TotalBorrowElastic, Base: p.TotalBorrowBase},
			TotalCollateralShare: p.TotalCollateralShare,
			AccrueInfo: core.AccrueInfo{
				InterestPerSecond: p.InterestPerSecond,
				LastAccrued:       p.LastAccrued,
				FeesEarned:        p.FeesEarned,
			},
		},
		Positions: make([]*core.UserPosition, 0, len(positions)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, position := range positions {
		snapshot.Positions = append(snapshot.Positions, &core.UserPosition{
			User:             position.User,
			CollateralShare:  position.CollateralShare,
			BorrowPart:       position.BorrowPart,
			PoolShareBalance: position.PoolShareBalance,
		})
	}
	return snapshot, nil
}

func operateFromCore(operate *core.Operate) *Operate {
	return &Operate{
		PairId:    operate.PairId.String(),
		User:      operate.User,
		Op:        operate.Op,
		Extra:     operate.Extra,
		CreatedAt: operate.CreatedAt,
	}
}

func (o *Operate) operate() core.Operate {
	return core.Operate{
		PairId:    uuid.FromStringOrNil(o.PairId),
		User:      o.User,
		Op:        o.Op,
		Extra:     o.Extra,
		CreatedAt: o.CreatedAt,
	}
}
