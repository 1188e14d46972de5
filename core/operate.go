package core

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type ActionType uint8

const (
	ActionAddAsset ActionType = iota + 1
	ActionRemoveAsset
	ActionAddCollateral
	ActionRemoveCollateral
	ActionBorrow
	ActionRepay
	ActionLiquidate
	ActionAccrue
	ActionUpdateExchangeRate
	ActionWithdrawFees
)

func (a ActionType) String() string {
	switch a {
	case ActionAddAsset:
		return "AddAsset"
	case ActionRemoveAsset:
		return "RemoveAsset"
	case ActionAddCollateral:
		return "AddCollateral"
	case ActionRemoveCollateral:
		return "RemoveCollateral"
	case ActionBorrow:
		return "Borrow"
	case ActionRepay:
		return "Repay"
	case ActionLiquidate:
		return "Liquidate"
	case ActionAccrue:
		return "Accrue"
	case ActionUpdateExchangeRate:
		return "UpdateExchangeRate"
	case ActionWithdrawFees:
		return "WithdrawFees"
	default:
		return "Unknown"
	}
}

type (
	OperateStore interface {
		CreateOperate(ctx context.Context, operate *Operate) error
		ListOperates(ctx context.Context, pairId uuid.UUID, user string, createdBeforeAt, limit int64) ([]Operate, error)
	}

	// Operate is one committed pair mutation, kept as an append-only journal entry.
	Operate struct {
		PairId    uuid.UUID     `json:"pairId"`
		User      string        `json:"user"`
		Op        ActionType    `json:"op"`
		Extra     OperateDetail `json:"extra"`
		CreatedAt int64         `json:"createdAt"`
	}

	OperateDetail struct {
		To      string          `json:"to,omitempty"`
		Amount  decimal.Decimal `json:"amount"`
		Share   decimal.Decimal `json:"share"`
		Part    decimal.Decimal `json:"part"`
		Actions []ActionDetail  `json:"actions,omitempty"`
	}

	// ActionDetail is a per-user leg of a batch operation such as a liquidation.
	ActionDetail struct {
		User            string          `json:"user"`
		BorrowPart      decimal.Decimal `json:"borrowPart"`
		BorrowShare     decimal.Decimal `json:"borrowShare"`
		CollateralShare decimal.Decimal `json:"collateralShare"`
	}
)

func NewOperate(clk clock.Clock, pairId uuid.UUID, user string, typ ActionType, extra OperateDetail) Operate {
	return Operate{
		PairId:    pairId,
		User:      user,
		Op:        typ,
		Extra:     extra,
		CreatedAt: clk.Now().Unix(),
	}
}

func (j OperateDetail) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *OperateDetail) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.Errorf("unsupported operate detail type %T", value)
	}
}
