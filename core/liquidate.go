package core

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type LiquidatedPosition struct {
	User            string          `json:"user"`
	BorrowPart      decimal.Decimal `json:"borrowPart"`
	BorrowShare     decimal.Decimal `json:"borrowShare"`
	CollateralShare decimal.Decimal `json:"collateralShare"`
}

type LiquidateResult struct {
	Liquidator string      `json:"liquidator"`
	To         string      `json:"to"`
	Posture    RiskPosture `json:"posture"`
	Swapper    string      `json:"swapper,omitempty"`

	Positions []LiquidatedPosition `json:"positions"`
	Skipped   []string             `json:"skipped"`

	AllBorrowPart      decimal.Decimal `json:"allBorrowPart"`
	AllBorrowShare     decimal.Decimal `json:"allBorrowShare"`
	AllCollateralShare decimal.Decimal `json:"allCollateralShare"`

	// RepaidAmount is the asset pulled from the liquidator when no swapper is used.
	RepaidAmount decimal.Decimal `json:"repaidAmount"`
	SwapOut      decimal.Decimal `json:"swapOut"`
	Surplus      decimal.Decimal `json:"surplus"`
}

func newLiquidateResult(liquidator, to string, posture RiskPosture) *LiquidateResult {
	return &LiquidateResult{
		Liquidator:         liquidator,
		To:                 to,
		Posture:            posture,
		Positions:          []LiquidatedPosition{},
		Skipped:            []string{},
		AllBorrowPart:      decimal.Zero,
		AllBorrowShare:     decimal.Zero,
		AllCollateralShare: decimal.Zero,
		RepaidAmount:       decimal.Zero,
		SwapOut:            decimal.Zero,
		Surplus:            decimal.Zero,
	}
}

func (r *LiquidateResult) OperationDetail() OperateDetail {
	actions := make([]ActionDetail, 0, len(r.Positions))
	for _, position := range r.Positions {
		actions = append(actions, ActionDetail{
			User:            position.User,
			BorrowPart:      position.BorrowPart,
			BorrowShare:     position.BorrowShare,
			CollateralShare: position.CollateralShare,
		})
	}
	return OperateDetail{
		To:      r.To,
		Amount:  r.RepaidAmount,
		Share:   r.AllBorrowShare,
		Part:    r.AllBorrowPart,
		Actions: actions,
	}
}

// Liquidate closes debt of insolvent users. Solvent users are skipped, a failing user step is
// undone on its own, and the call fails with ErrAllPositionsSolvent when nobody could be liquidated.
// Without a swapper the liquidator pays the debt in asset and `to` receives the collateral;
// with a swapper the collateral is sold for asset and only the surplus goes to `to`.
func (p *Pair) Liquidate(log Log, liquidator string, users []string, maxBorrowParts []decimal.Decimal, to string, swapper Swapper, open bool) (*LiquidateResult, error) {
	if len(users) != len(maxBorrowParts) {
		return nil, errors.Wrapf(ErrMismatchedLiquidation, "%d users, %d parts", len(users), len(maxBorrowParts))
	}

	posture := PostureOf(open)
	result := newLiquidateResult(liquidator, to, posture)
	if swapper != nil {
		result.Swapper = swapper.Address()
	}

	err := p.transact(log, ActionLiquidate, liquidator, func(tx *pairTx) (OperateDetail, error) {
		tx.accrue(log, p.clk.Now().Unix())

		var lastErr error
		for i, user := range users {
			liquidated, err := tx.liquidatePosition(user, maxBorrowParts[i], posture)
			if err != nil {
				lastErr = err
				log.Warn().Err(err).Msgf("pair %s skip liquidation of %s", p.Id, user)
			}
			if liquidated == nil {
				result.Skipped = append(result.Skipped, user)
				continue
			}
			result.Positions = append(result.Positions, *liquidated)
			result.AllBorrowPart = result.AllBorrowPart.Add(liquidated.BorrowPart)
			result.AllBorrowShare = result.AllBorrowShare.Add(liquidated.BorrowShare)
			result.AllCollateralShare = result.AllCollateralShare.Add(liquidated.CollateralShare)
		}

		if len(result.Positions) == 0 {
			if lastErr != nil {
				return OperateDetail{}, lastErr
			}
			return OperateDetail{}, ErrAllPositionsSolvent
		}

		if swapper == nil {
			tx.settle(func() error {
				return p.settleDirect(result)
			})
		} else {
			tx.settle(func() error {
				return p.settleWithSwapper(swapper, result)
			})
		}
		return result.OperationDetail(), nil
	})
	if err != nil {
		p.observer.ObserveLiquidation(posture, 0)
		return nil, err
	}
	p.observer.ObserveLiquidation(posture, len(result.Positions))
	return result, nil
}

// liquidatePosition applies one user's step to the staged state. A nil position means the user
// was skipped; on error the user's step is undone.
func (tx *pairTx) liquidatePosition(user string, maxPart decimal.Decimal, posture RiskPosture) (*LiquidatedPosition, error) {
	p := tx.pair
	sp := tx.savepoint(user)
	position := tx.position(user)

	risk := p.riskEngine(&tx.state)
	solvent, err := risk.IsSolvent(position, posture)
	if err != nil {
		return nil, err
	}
	if solvent {
		return nil, nil
	}

	part := decimal.Min(maxPart, position.BorrowPart)
	if !part.IsPositive() {
		return nil, nil
	}

	liquidated, err := tx.seize(position, part)
	if err != nil {
		tx.rollbackTo(sp)
		return nil, err
	}
	return liquidated, nil
}

func (tx *pairTx) seize(position *UserPosition, part decimal.Decimal) (*LiquidatedPosition, error) {
	p := tx.pair
	borrowShare := tx.state.TotalBorrow.ToElastic(part, RoundUp)
	borrowAmount, err := p.vault.ToAmount(p.Asset.AssetID, borrowShare, true)
	if err != nil {
		return nil, err
	}

	collateralAmount, err := MulDivDown(borrowAmount, tx.state.ExchangeRate.Mul(ONE.Add(p.Config.LiquidationBonus)), SCALE)
	if err != nil {
		return nil, err
	}
	collateralShare, err := p.vault.ToShares(p.Collateral.AssetID, collateralAmount, false)
	if err != nil {
		return nil, err
	}
	collateralShare = decimal.Min(collateralShare, position.CollateralShare)

	if err := position.ChangeCollateralShare(collateralShare.Neg()); err != nil {
		return nil, err
	}
	if tx.state.TotalCollateralShare, err = SafeSub(tx.state.TotalCollateralShare, collateralShare); err != nil {
		return nil, err
	}
	if err := position.ChangeBorrowPart(part.Neg()); err != nil {
		return nil, err
	}
	if tx.state.TotalBorrow, err = tx.state.TotalBorrow.SubBoth(borrowShare, part); err != nil {
		return nil, err
	}

	return &LiquidatedPosition{
		User:            position.User,
		BorrowPart:      part,
		BorrowShare:     borrowShare,
		CollateralShare: collateralShare,
	}, nil
}

func (p *Pair) settleDirect(result *LiquidateResult) error {
	amount, _, err := p.depositAsset(result.Liquidator, result.AllBorrowShare)
	if err != nil {
		return err
	}
	result.RepaidAmount = amount

	if err := p.vault.Transfer(p.Collateral.AssetID, p.Address(), result.To, result.AllCollateralShare); err != nil {
		if _, _, rerr := p.vault.Withdraw(p.Asset.AssetID, p.Address(), result.Liquidator, decimal.Zero, result.AllBorrowShare); rerr != nil {
			return errors.Wrapf(err, "refund liquidator: %v", rerr)
		}
		return err
	}
	return nil
}

func (p *Pair) settleWithSwapper(swapper Swapper, result *LiquidateResult) error {
	if err := p.vault.Transfer(p.Collateral.AssetID, p.Address(), swapper.Address(), result.AllCollateralShare); err != nil {
		return err
	}

	out, err := swapper.Swap(p.Collateral.AssetID, p.Asset.AssetID, p.Address(), result.AllBorrowShare, result.AllCollateralShare)
	if err == nil && out.LessThan(result.AllBorrowShare) {
		err = errors.Wrapf(ErrSwapFailure, "swap out %s below %s", out, result.AllBorrowShare)
	}
	if err != nil {
		if !errors.Is(err, ErrSwapFailure) {
			err = errors.Wrap(ErrSwapFailure, err.Error())
		}
		if rerr := p.vault.Transfer(p.Collateral.AssetID, swapper.Address(), p.Address(), result.AllCollateralShare); rerr != nil {
			return errors.Wrapf(err, "return collateral: %v", rerr)
		}
		return err
	}
	result.SwapOut = out

	surplus := out.Sub(result.AllBorrowShare)
	if surplus.IsPositive() {
		if err := p.vault.Transfer(p.Asset.AssetID, p.Address(), result.To, surplus); err != nil {
			return err
		}
		result.Surplus = surplus
	}
	return nil
}
