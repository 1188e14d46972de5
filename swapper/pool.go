package swapper

import (
	"sync"

	"github.com/DomeLiquid/pair/core"
	"github.com/DomeLiquid/pair/utils"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	DefaultFee = decimal.NewFromFloat(0.003)

	ErrUnsupportedToken = errors.New("swapper: unsupported token")
)

// Pool is a constant-product market holding its reserves as vault shares.
type Pool struct {
	mu sync.Mutex

	address string
	vault   core.Vault
	tokenA  string
	tokenB  string
	fee     decimal.Decimal
}

var _ core.Swapper = (*Pool)(nil)

func NewPool(vault core.Vault, tokenA, tokenB string, fee decimal.Decimal) *Pool {
	return &Pool{
		address: utils.GenUuidFromStrings(tokenA, tokenB),
		vault:   vault,
		tokenA:  tokenA,
		tokenB:  tokenB,
		fee:     fee,
	}
}

func (p *Pool) Address() string {
	return p.address
}

func (p *Pool) supports(tokenId string) bool {
	return tokenId == p.tokenA || tokenId == p.tokenB
}

// AddLiquidity deposits wallet tokens of `from` into the pool reserves.
func (p *Pool) AddLiquidity(from string, amountA, amountB decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, _, err := p.vault.Deposit(p.tokenA, from, p.address, amountA, decimal.Zero); err != nil {
		return err
	}
	if _, _, err := p.vault.Deposit(p.tokenB, from, p.address, amountB, decimal.Zero); err != nil {
		return err
	}
	return nil
}

// Reserve is the token amount the pool holds, excluding pending input.
func (p *Pool) Reserve(tokenId string) (decimal.Decimal, error) {
	share, err := p.vault.BalanceOf(tokenId, p.address)
	if err != nil {
		return decimal.Zero, err
	}
	return p.vault.ToAmount(tokenId, share, false)
}

func (p *Pool) GetAmountOut(amountIn, reserveIn, reserveOut decimal.Decimal) decimal.Decimal {
	amountInWithFee := core.ApplyRate(amountIn, core.ONE.Sub(p.fee), core.RoundDown)
	denominator := reserveIn.Add(amountInWithFee)
	if denominator.IsZero() {
		return decimal.Zero
	}
	out, _ := core.MulDivDown(amountInWithFee, reserveOut, denominator)
	return out
}

// Swap sells shareIn of fromToken, which must already be credited to the pool, and credits the
// proceeds in toToken shares to recipient. Nothing moves when the proceeds are below minOut.
func (p *Pool) Swap(fromToken, toToken, recipient string, minOut, shareIn decimal.Decimal) (decimal.Decimal, error) {
	if !p.supports(fromToken) || !p.supports(toToken) || fromToken == toToken {
		return decimal.Zero, errors.Wrapf(ErrUnsupportedToken, "%s -> %s", fromToken, toToken)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	balanceIn, err := p.vault.BalanceOf(fromToken, p.address)
	if err != nil {
		return decimal.Zero, err
	}
	if shareIn.GreaterThan(balanceIn) {
		return decimal.Zero, errors.Wrapf(core.ErrUnderflow, "pool holds %s, swap %s", balanceIn, shareIn)
	}
	reserveIn, err := p.vault.ToAmount(fromToken, balanceIn.Sub(shareIn), false)
	if err != nil {
		return decimal.Zero, err
	}
	amountIn, err := p.vault.ToAmount(fromToken, shareIn, false)
	if err != nil {
		return decimal.Zero, err
	}
	reserveOut, err := p.Reserve(toToken)
	if err != nil {
		return decimal.Zero, err
	}

	amountOut := p.GetAmountOut(amountIn, reserveIn, reserveOut)
	shareOut, err := p.vault.ToShares(toToken, amountOut, false)
	if err != nil {
		return decimal.Zero, err
	}
	if shareOut.LessThan(minOut) {
		return decimal.Zero, errors.Wrapf(core.ErrSwapFailure, "out %s below %s", shareOut, minOut)
	}
	if err := p.vault.Transfer(toToken, p.address, recipient, shareOut); err != nil {
		return decimal.Zero, err
	}
	return shareOut, nil
}
