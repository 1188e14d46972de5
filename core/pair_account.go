package core

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// transact runs fn against a staged copy of the pair under the write lock. The staged state is
// validated, the vault settlement is executed, and only then the copy replaces the pair state.
func (p *Pair) transact(log Log, action ActionType, user string, fn func(tx *pairTx) (OperateDetail, error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tx := p.begin()
	detail, err := fn(tx)
	if err == nil {
		err = tx.validate()
	}
	if err == nil && tx.settlement != nil {
		err = tx.settlement()
	}
	p.observer.ObserveOperation(action, err)
	if err != nil {
		log.Warn().Err(err).Msgf("pair %s %s by %s rolled back", p.Id, action, user)
		return err
	}

	tx.commit()
	if !tx.interest.IsZero() {
		p.observer.ObserveAccrual(tx.interest, p.state.AccrueInfo.InterestPerSecond)
	}
	if action == ActionAccrue && tx.interest.IsZero() {
		return nil
	}
	p.journal(log, NewOperate(p.clk, p.Id, user, action, detail))
	return nil
}

func (p *Pair) journal(log Log, operate Operate) {
	log.Info().Msgf("pair %s %s by %s: amount %s, share %s, part %s",
		p.Id, operate.Op, operate.User, operate.Extra.Amount, operate.Extra.Share, operate.Extra.Part)
	if p.operates == nil {
		return
	}
	if err := p.operates.CreateOperate(context.Background(), &operate); err != nil {
		log.Error().Err(err).Msgf("pair %s journal %s", p.Id, operate.Op)
	}
}

// requirePositive accepts whole base units above zero.
func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.IsInteger() {
		return errors.Wrapf(ErrInvalidAmount, "got %s", amount)
	}
	return nil
}

// idleAssetShare is the part of the pair's asset vault balance lenders and borrowers may draw on.
func (tx *pairTx) idleAssetShare() (decimal.Decimal, error) {
	p := tx.pair
	balance, err := p.vault.BalanceOf(p.Asset.AssetID, p.Address())
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "asset balance")
	}
	idle := balance.Sub(tx.state.AccrueInfo.FeesEarned)
	if idle.IsNegative() {
		return decimal.Zero, nil
	}
	return idle, nil
}

func (p *Pair) AddAsset(log Log, user string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := requirePositive(amount); err != nil {
		return decimal.Zero, err
	}

	fraction := decimal.Zero
	err := p.transact(log, ActionAddAsset, user, func(tx *pairTx) (OperateDetail, error) {
		tx.accrue(log, p.clk.Now().Unix())

		share, err := p.vault.ToShares(p.Asset.AssetID, amount, false)
		if err != nil {
			return OperateDetail{}, err
		}
		tx.state.TotalAsset, fraction = tx.state.TotalAsset.Add(share, RoundDown)
		if fraction.IsZero() {
			return OperateDetail{}, errors.Wrapf(ErrInvalidAmount, "%s mints no pool share", amount)
		}
		if err := tx.position(user).ChangePoolShareBalance(fraction); err != nil {
			return OperateDetail{}, err
		}

		tx.settle(func() error {
			_, _, err := p.vault.Deposit(p.Asset.AssetID, user, p.Address(), decimal.Zero, share)
			return err
		})
		return OperateDetail{Amount: amount, Share: share, Part: fraction}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return fraction, nil
}

func (p *Pair) RemoveAsset(log Log, user string, fraction decimal.Decimal) (decimal.Decimal, error) {
	if err := requirePositive(fraction); err != nil {
		return decimal.Zero, err
	}

	amount := decimal.Zero
	err := p.transact(log, ActionRemoveAsset, user, func(tx *pairTx) (OperateDetail, error) {
		tx.accrue(log, p.clk.Now().Unix())

		if err := tx.position(user).ChangePoolShareBalance(fraction.Neg()); err != nil {
			return OperateDetail{}, err
		}
		var (
			share decimal.Decimal
			err   error
		)
		tx.state.TotalAsset, share, err = tx.state.TotalAsset.Sub(fraction, RoundDown)
		if err != nil {
			return OperateDetail{}, err
		}
		idle, err := tx.idleAssetShare()
		if err != nil {
			return OperateDetail{}, err
		}
		if share.GreaterThan(idle) {
			return OperateDetail{}, errors.Wrapf(ErrUnderflow, "idle asset share %s below %s", idle, share)
		}

		tx.settle(func() error {
			amount, _, err = p.vault.Withdraw(p.Asset.AssetID, p.Address(), user, decimal.Zero, share)
			return err
		})
		return OperateDetail{Share: share, Part: fraction}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func (p *Pair) AddCollateral(log Log, user string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := requirePositive(amount); err != nil {
		return decimal.Zero, err
	}

	share := decimal.Zero
	err := p.transact(log, ActionAddCollateral, user, func(tx *pairTx) (OperateDetail, error) {
		var err error
		share, err = p.vault.ToShares(p.Collateral.AssetID, amount, false)
		if err != nil {
			return OperateDetail{}, err
		}
		if share.IsZero() {
			return OperateDetail{}, errors.Wrapf(ErrInvalidAmount, "%s mints no collateral share", amount)
		}
		if err := tx.position(user).ChangeCollateralShare(share); err != nil {
			return OperateDetail{}, err
		}
		tx.state.TotalCollateralShare = tx.state.TotalCollateralShare.Add(share)

		tx.settle(func() error {
			_, _, err := p.vault.Deposit(p.Collateral.AssetID, user, p.Address(), decimal.Zero, share)
			return err
		})
		return OperateDetail{Amount: amount, Share: share}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return share, nil
}

func (p *Pair) RemoveCollateral(log Log, user string, share decimal.Decimal, to string) (decimal.Decimal, error) {
	if err := requirePositive(share); err != nil {
		return decimal.Zero, err
	}

	amount := decimal.Zero
	err := p.transact(log, ActionRemoveCollateral, user, func(tx *pairTx) (OperateDetail, error) {
		position := tx.position(user)
		if err := position.ChangeCollateralShare(share.Neg()); err != nil {
			return OperateDetail{}, err
		}
		total, err := SafeSub(tx.state.TotalCollateralShare, share)
		if err != nil {
			return OperateDetail{}, err
		}
		tx.state.TotalCollateralShare = total

		tx.accrue(log, p.clk.Now().Unix())
		if err := p.riskEngine(&tx.state).CheckSolvent(position, Closed); err != nil {
			return OperateDetail{}, err
		}

		tx.settle(func() error {
			amount, _, err = p.vault.Withdraw(p.Collateral.AssetID, p.Address(), to, decimal.Zero, share)
			return err
		})
		return OperateDetail{To: to, Share: share}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// Borrow opens debt of amount plus the opening fee and sends amount to `to`. It returns the borrow part minted.
func (p *Pair) Borrow(log Log, user string, amount decimal.Decimal, to string) (decimal.Decimal, error) {
	if err := requirePositive(amount); err != nil {
		return decimal.Zero, err
	}

	part := decimal.Zero
	err := p.transact(log, ActionBorrow, user, func(tx *pairTx) (OperateDetail, error) {
		tx.accrue(log, p.clk.Now().Unix())

		fee := ApplyRate(amount, p.Config.BorrowOpeningFee, RoundUp)
		withdrawShare, err := p.vault.ToShares(p.Asset.AssetID, amount, true)
		if err != nil {
			return OperateDetail{}, err
		}
		debtShare, err := p.vault.ToShares(p.Asset.AssetID, amount.Add(fee), true)
		if err != nil {
			return OperateDetail{}, err
		}

		idle, err := tx.idleAssetShare()
		if err != nil {
			return OperateDetail{}, err
		}
		if debtShare.GreaterThan(idle) {
			return OperateDetail{}, errors.Wrapf(ErrUnderflow, "idle asset share %s below %s", idle, debtShare)
		}

		tx.state.TotalBorrow, part = tx.state.TotalBorrow.Add(debtShare, RoundUp)
		tx.state.AccrueInfo.FeesEarned = tx.state.AccrueInfo.FeesEarned.Add(debtShare.Sub(withdrawShare))
		position := tx.position(user)
		if err := position.ChangeBorrowPart(part); err != nil {
			return OperateDetail{}, err
		}
		if err := p.riskEngine(&tx.state).CheckSolvent(position, Closed); err != nil {
			return OperateDetail{}, err
		}

		tx.settle(func() error {
			_, _, err := p.vault.Withdraw(p.Asset.AssetID, p.Address(), to, amount, decimal.Zero)
			return err
		})
		return OperateDetail{To: to, Amount: amount, Share: debtShare, Part: part}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return part, nil
}

// Repay burns part of the user's debt and pulls the matching asset from the user. It returns the amount paid.
func (p *Pair) Repay(log Log, user string, part decimal.Decimal) (decimal.Decimal, error) {
	if err := requirePositive(part); err != nil {
		return decimal.Zero, err
	}

	amount := decimal.Zero
	err := p.transact(log, ActionRepay, user, func(tx *pairTx) (OperateDetail, error) {
		tx.accrue(log, p.clk.Now().Unix())

		if err := tx.position(user).ChangeBorrowPart(part.Neg()); err != nil {
			return OperateDetail{}, err
		}
		var (
			share decimal.Decimal
			err   error
		)
		tx.state.TotalBorrow, share, err = tx.state.TotalBorrow.Sub(part, RoundUp)
		if err != nil {
			return OperateDetail{}, err
		}

		tx.settle(func() error {
			amount, _, err = p.depositAsset(user, share)
			return err
		})
		return OperateDetail{Share: share, Part: part}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// depositAsset pulls share worth of asset from `from` into the pair.
func (p *Pair) depositAsset(from string, share decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	return p.vault.Deposit(p.Asset.AssetID, from, p.Address(), decimal.Zero, share)
}

// WithdrawFees moves all earned protocol fees, as asset vault shares, to the configured fee recipient.
func (p *Pair) WithdrawFees(log Log) (decimal.Decimal, error) {
	to := p.Config.FeeTo
	if to == "" {
		return decimal.Zero, errors.Wrap(ErrInvalidConfig, "no fee recipient")
	}

	fees := decimal.Zero
	err := p.transact(log, ActionWithdrawFees, to, func(tx *pairTx) (OperateDetail, error) {
		tx.accrue(log, p.clk.Now().Unix())

		fees = tx.state.AccrueInfo.FeesEarned
		if fees.IsZero() {
			return OperateDetail{To: to}, nil
		}
		balance, err := p.vault.BalanceOf(p.Asset.AssetID, p.Address())
		if err != nil {
			return OperateDetail{}, err
		}
		if fees.GreaterThan(balance) {
			return OperateDetail{}, errors.Wrapf(ErrUnderflow, "asset balance %s below fees %s", balance, fees)
		}
		tx.state.AccrueInfo.FeesEarned = decimal.Zero

		tx.settle(func() error {
			return p.vault.Transfer(p.Asset.AssetID, p.Address(), to, fees)
		})
		return OperateDetail{To: to, Share: fees}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return fees, nil
}
