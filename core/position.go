package core

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type (
	UserPosition struct {
		User string `json:"user"`

		CollateralShare  decimal.Decimal `json:"collateralShare"`
		BorrowPart       decimal.Decimal `json:"borrowPart"`
		PoolShareBalance decimal.Decimal `json:"poolShareBalance"`
	}
)

func NewUserPosition(user string) *UserPosition {
	return &UserPosition{
		User:             user,
		CollateralShare:  decimal.Zero,
		BorrowPart:       decimal.Zero,
		PoolShareBalance: decimal.Zero,
	}
}

func (p *UserPosition) Clone() *UserPosition {
	return &UserPosition{
		User:             p.User,
		CollateralShare:  p.CollateralShare,
		BorrowPart:       p.BorrowPart,
		PoolShareBalance: p.PoolShareBalance,
	}
}

func (p *UserPosition) IsEmpty() bool {
	return p.CollateralShare.IsZero() && p.BorrowPart.IsZero() && p.PoolShareBalance.IsZero()
}

func (p *UserPosition) ChangeCollateralShare(delta decimal.Decimal) error {
	next := p.CollateralShare.Add(delta)
	if next.IsNegative() {
		return errors.Wrapf(ErrUnderflow, "collateral share %s of %s", p.CollateralShare, p.User)
	}
	p.CollateralShare = next
	return nil
}

func (p *UserPosition) ChangeBorrowPart(delta decimal.Decimal) error {
	next := p.BorrowPart.Add(delta)
	if next.IsNegative() {
		return errors.Wrapf(ErrUnderflow, "borrow part %s of %s", p.BorrowPart, p.User)
	}
	p.BorrowPart = next
	return nil
}

func (p *UserPosition) ChangePoolShareBalance(delta decimal.Decimal) error {
	next := p.PoolShareBalance.Add(delta)
	if next.IsNegative() {
		return errors.Wrapf(ErrUnderflow, "pool share balance %s of %s", p.PoolShareBalance, p.User)
	}
	p.PoolShareBalance = next
	return nil
}
