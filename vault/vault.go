package vault

import (
	"sync"

	"github.com/DomeLiquid/pair/core"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const DefaultAddress = "vault"

// Vault custodies tokens from a TokenLedger and books them as shares per account.
// Totals per token are a core.Rebase of held amount over issued shares.
type Vault struct {
	mu sync.RWMutex

	address string
	tokens  *TokenLedger
	totals  map[string]core.Rebase
	shares  map[string]map[string]decimal.Decimal
}

var _ core.Vault = (*Vault)(nil)

func New(tokens *TokenLedger, address string) *Vault {
	if address == "" {
		address = DefaultAddress
	}
	return &Vault{
		address: address,
		tokens:  tokens,
		totals:  map[string]core.Rebase{},
		shares:  map[string]map[string]decimal.Decimal{},
	}
}

func (v *Vault) Address() string {
	return v.address
}

func (v *Vault) Totals(tokenId string) core.Rebase {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.total(tokenId)
}

func (v *Vault) total(tokenId string) core.Rebase {
	if total, ok := v.totals[tokenId]; ok {
		return total
	}
	return core.NewRebase()
}

func (v *Vault) accounts(tokenId string) map[string]decimal.Decimal {
	accounts, ok := v.shares[tokenId]
	if !ok {
		accounts = map[string]decimal.Decimal{}
		v.shares[tokenId] = accounts
	}
	return accounts
}

func (v *Vault) ToShares(tokenId string, amount decimal.Decimal, roundUp bool) (decimal.Decimal, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.total(tokenId).ToBase(amount, core.RoundingOf(roundUp)), nil
}

func (v *Vault) ToAmount(tokenId string, share decimal.Decimal, roundUp bool) (decimal.Decimal, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.total(tokenId).ToElastic(share, core.RoundingOf(roundUp)), nil
}

func (v *Vault) BalanceOf(tokenId, account string) (decimal.Decimal, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.shares[tokenId][account], nil
}

// Deposit pulls tokens from the wallet of `from` and credits shares to `to`. With a non-zero
// share the amount is derived rounding up, otherwise the share is derived rounding down.
func (v *Vault) Deposit(tokenId, from, to string, amount, share decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	total := v.total(tokenId)
	if share.IsZero() {
		share = total.ToBase(amount, core.RoundDown)
	} else {
		amount = total.ToElastic(share, core.RoundUp)
	}
	if !share.IsPositive() || !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, errors.Wrapf(core.ErrInvalidAmount, "deposit %s (%s shares) of %s", amount, share, tokenId)
	}
	if err := v.tokens.Transfer(tokenId, from, v.address, amount); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	v.totals[tokenId] = total.AddBoth(amount, share)
	accounts := v.accounts(tokenId)
	accounts[to] = accounts[to].Add(share)
	return amount, share, nil
}

// Withdraw debits shares of `from` and pays the tokens to the wallet of `to`. With a non-zero
// share the amount is derived rounding down, otherwise the share is derived rounding up.
func (v *Vault) Withdraw(tokenId, from, to string, amount, share decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	total := v.total(tokenId)
	if share.IsZero() {
		share = total.ToBase(amount, core.RoundUp)
	} else {
		amount = total.ToElastic(share, core.RoundDown)
	}
	accounts := v.accounts(tokenId)
	if share.GreaterThan(accounts[from]) {
		return decimal.Zero, decimal.Zero, errors.Wrapf(core.ErrUnderflow, "%s shares of %s below %s", tokenId, from, share)
	}
	next, err := total.SubBoth(amount, share)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if err := v.tokens.Transfer(tokenId, v.address, to, amount); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	v.totals[tokenId] = next
	accounts[from] = accounts[from].Sub(share)
	return amount, share, nil
}

func (v *Vault) Transfer(tokenId, from, to string, share decimal.Decimal) error {
	if share.IsNegative() {
		return errors.Wrapf(core.ErrInvalidAmount, "transfer %s", share)
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	accounts := v.accounts(tokenId)
	if share.GreaterThan(accounts[from]) {
		return errors.Wrapf(core.ErrUnderflow, "%s shares of %s below %s", tokenId, from, share)
	}
	accounts[from] = accounts[from].Sub(share)
	accounts[to] = accounts[to].Add(share)
	return nil
}

// Sync sets the held amount of a token to the vault's wallet balance, picking up rebases.
func (v *Vault) Sync(tokenId string) decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()

	total := v.total(tokenId)
	total.Elastic = v.tokens.BalanceOf(tokenId, v.address)
	v.totals[tokenId] = total
	return total.Elastic
}
