package vault

import (
	"sync"

	"github.com/DomeLiquid/pair/core"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TokenLedger keeps wallet balances. Holders own internal units of the supply, so a rebase
// moves every balance proportionally.
type TokenLedger struct {
	mu     sync.RWMutex
	tokens map[string]*tokenBook
}

type tokenBook struct {
	supply core.Rebase
	units  map[string]decimal.Decimal
}

func NewTokenLedger() *TokenLedger {
	return &TokenLedger{tokens: map[string]*tokenBook{}}
}

func (l *TokenLedger) book(tokenId string) *tokenBook {
	book, ok := l.tokens[tokenId]
	if !ok {
		book = &tokenBook{supply: core.NewRebase(), units: map[string]decimal.Decimal{}}
		l.tokens[tokenId] = book
	}
	return book
}

func (l *TokenLedger) Mint(tokenId, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.Wrapf(core.ErrInvalidAmount, "mint %s", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	book := l.book(tokenId)
	var units decimal.Decimal
	book.supply, units = book.supply.Add(amount, core.RoundDown)
	book.units[to] = book.units[to].Add(units)
	return nil
}

func (l *TokenLedger) TotalSupply(tokenId string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if book, ok := l.tokens[tokenId]; ok {
		return book.supply.Elastic
	}
	return decimal.Zero
}

func (l *TokenLedger) BalanceOf(tokenId, account string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	book, ok := l.tokens[tokenId]
	if !ok {
		return decimal.Zero
	}
	return book.supply.ToElastic(book.units[account], core.RoundDown)
}

func (l *TokenLedger) Transfer(tokenId, from, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.Wrapf(core.ErrInvalidAmount, "transfer %s", amount)
	}
	if amount.IsZero() || from == to {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	book := l.book(tokenId)
	held := book.units[from]
	units := book.supply.ToBase(amount, core.RoundUp)
	if units.GreaterThan(held) {
		if amount.GreaterThan(book.supply.ToElastic(held, core.RoundDown)) {
			return errors.Wrapf(core.ErrUnderflow, "%s balance of %s below %s", tokenId, from, amount)
		}
		units = held
	}
	book.units[from] = held.Sub(units)
	book.units[to] = book.units[to].Add(units)
	return nil
}

// Rebase changes the total supply by delta and returns the new supply.
func (l *TokenLedger) Rebase(tokenId string, delta decimal.Decimal) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	book := l.book(tokenId)
	supply := book.supply.Elastic.Add(delta)
	if !supply.IsPositive() {
		return book.supply.Elastic, errors.Wrapf(core.ErrUnderflow, "rebase %s by %s", tokenId, delta)
	}
	book.supply.Elastic = supply
	return supply, nil
}
