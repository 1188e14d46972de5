package core

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type RiskEngine struct {
	vault        Vault
	assetId      string
	collateralId string
	config       *PairConfig

	ExchangeRate decimal.Decimal
	TotalBorrow  Rebase
}

func NewRiskEngine(vault Vault, assetId, collateralId string, config *PairConfig, exchangeRate decimal.Decimal, totalBorrow Rebase) *RiskEngine {
	return &RiskEngine{
		vault:        vault,
		assetId:      assetId,
		collateralId: collateralId,
		config:       config,
		ExchangeRate: exchangeRate,
		TotalBorrow:  totalBorrow,
	}
}

// BorrowValue is the user's debt in asset token units, rounded against the borrower.
func (r *RiskEngine) BorrowValue(position *UserPosition) (decimal.Decimal, error) {
	share := r.TotalBorrow.ToElastic(position.BorrowPart, RoundUp)
	amount, err := r.vault.ToAmount(r.assetId, share, true)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "borrow value")
	}
	return amount, nil
}

// CollateralValue is the user's collateral priced in asset token units, rounded down.
func (r *RiskEngine) CollateralValue(position *UserPosition) (decimal.Decimal, error) {
	if r.ExchangeRate.IsZero() {
		return decimal.Zero, nil
	}
	amount, err := r.vault.ToAmount(r.collateralId, position.CollateralShare, false)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "collateral value")
	}
	value, err := MulDivDown(amount, SCALE, r.ExchangeRate)
	if err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

func (r *RiskEngine) Limit(collateralValue decimal.Decimal, posture RiskPosture) decimal.Decimal {
	rate := r.config.CollateralizationRate
	if posture == Open {
		rate = rate.Mul(r.config.OpenLiquidationBuffer)
	}
	return ApplyRate(collateralValue, rate, RoundDown)
}

func (r *RiskEngine) IsSolvent(position *UserPosition, posture RiskPosture) (bool, error) {
	if position.BorrowPart.IsZero() {
		return true, nil
	}
	if position.CollateralShare.IsZero() {
		return false, nil
	}

	borrowValue, err := r.BorrowValue(position)
	if err != nil {
		return false, err
	}
	collateralValue, err := r.CollateralValue(position)
	if err != nil {
		return false, err
	}
	return borrowValue.LessThanOrEqual(r.Limit(collateralValue, posture)), nil
}

// LiquidationRate is the exchange rate above which the position fails the posture's limit.
// Positions without debt have none and report zero.
func (r *RiskEngine) LiquidationRate(position *UserPosition, posture RiskPosture) (decimal.Decimal, error) {
	if position.BorrowPart.IsZero() {
		return decimal.Zero, nil
	}
	borrowValue, err := r.BorrowValue(position)
	if err != nil {
		return decimal.Zero, err
	}
	if borrowValue.IsZero() {
		return decimal.Zero, nil
	}
	amount, err := r.vault.ToAmount(r.collateralId, position.CollateralShare, false)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "collateral amount")
	}
	return MulDivDown(r.Limit(amount, posture), SCALE, borrowValue)
}

func (r *RiskEngine) CheckSolvent(position *UserPosition, posture RiskPosture) error {
	solvent, err := r.IsSolvent(position, posture)
	if err != nil {
		return err
	}
	if !solvent {
		return errors.Wrapf(ErrInsolventCaller, "%s under %s posture", position.User, posture)
	}
	return nil
}
