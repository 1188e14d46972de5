package core

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Rounding selects the direction of an integer division. Debts round up, credits round down.
type Rounding uint8

const (
	RoundDown Rounding = iota
	RoundUp
)

func (r Rounding) String() string {
	switch r {
	case RoundDown:
		return "Down"
	case RoundUp:
		return "Up"
	default:
		return "Unknown"
	}
}

func RoundingOf(roundUp bool) Rounding {
	if roundUp {
		return RoundUp
	}
	return RoundDown
}

// MulDiv returns a*b/c truncated to an integer in the requested direction.
// Operands are expected to be non-negative.
func MulDiv(a, b, c decimal.Decimal, rounding Rounding) (decimal.Decimal, error) {
	if c.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	q, r := a.Mul(b).QuoRem(c, 0)
	if rounding == RoundUp && !r.IsZero() {
		q = q.Add(ONE)
	}
	return q, nil
}

func MulDivDown(a, b, c decimal.Decimal) (decimal.Decimal, error) {
	return MulDiv(a, b, c, RoundDown)
}

func MulDivUp(a, b, c decimal.Decimal) (decimal.Decimal, error) {
	return MulDiv(a, b, c, RoundUp)
}

// ApplyRate scales an integral value by a fractional rate such as 0.75.
func ApplyRate(value, rate decimal.Decimal, rounding Rounding) decimal.Decimal {
	result, _ := MulDiv(value, rate, ONE, rounding)
	return result
}

// SafeSub subtracts b from a and fails instead of going negative.
func SafeSub(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.GreaterThan(a) {
		return decimal.Zero, errors.Wrapf(ErrUnderflow, "%s - %s", a, b)
	}
	return a.Sub(b), nil
}
