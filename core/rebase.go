package core

import (
	"github.com/shopspring/decimal"
)

// Rebase is a pair of totals: Base counts ownership units, Elastic is the underlying value
// those units currently represent. The first deposit into an empty Rebase mints 1:1.
type Rebase struct {
	Elastic decimal.Decimal `json:"elastic"`
	Base    decimal.Decimal `json:"base"`
}

func NewRebase() Rebase {
	return Rebase{Elastic: decimal.Zero, Base: decimal.Zero}
}

func (r Rebase) IsZero() bool {
	return r.Elastic.IsZero() && r.Base.IsZero()
}

// ToBase converts an elastic value into base units.
func (r Rebase) ToBase(elastic decimal.Decimal, rounding Rounding) decimal.Decimal {
	if r.Elastic.IsZero() || r.Base.IsZero() {
		return elastic
	}
	base, _ := MulDiv(elastic, r.Base, r.Elastic, rounding)
	return base
}

// ToElastic converts base units into their elastic value.
func (r Rebase) ToElastic(base decimal.Decimal, rounding Rounding) decimal.Decimal {
	if r.Base.IsZero() {
		return base
	}
	elastic, _ := MulDiv(base, r.Elastic, r.Base, rounding)
	return elastic
}

// Add mints base units for an elastic value and returns the updated totals with the minted base.
func (r Rebase) Add(elastic decimal.Decimal, rounding Rounding) (Rebase, decimal.Decimal) {
	base := r.ToBase(elastic, rounding)
	return Rebase{Elastic: r.Elastic.Add(elastic), Base: r.Base.Add(base)}, base
}

// Sub burns base units and returns the updated totals with the released elastic value.
func (r Rebase) Sub(base decimal.Decimal, rounding Rounding) (Rebase, decimal.Decimal, error) {
	elastic := r.ToElastic(base, rounding)
	next, err := r.SubBoth(elastic, base)
	if err != nil {
		return r, decimal.Zero, err
	}
	return next, elastic, nil
}

func (r Rebase) AddBoth(elastic, base decimal.Decimal) Rebase {
	return Rebase{Elastic: r.Elastic.Add(elastic), Base: r.Base.Add(base)}
}

func (r Rebase) SubBoth(elastic, base decimal.Decimal) (Rebase, error) {
	nextElastic, err := SafeSub(r.Elastic, elastic)
	if err != nil {
		return r, err
	}
	nextBase, err := SafeSub(r.Base, base)
	if err != nil {
		return r, err
	}
	return Rebase{Elastic: nextElastic, Base: nextBase}, nil
}

func (r Rebase) AddElastic(elastic decimal.Decimal) Rebase {
	return Rebase{Elastic: r.Elastic.Add(elastic), Base: r.Base}
}
