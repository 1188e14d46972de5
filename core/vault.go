package core

import "github.com/shopspring/decimal"

type (
	// Vault holds tokens on behalf of accounts and tracks ownership as shares.
	// Deposit and Withdraw accept either an amount or a share; a zero share means amount-denominated.
	Vault interface {
		ToShares(tokenId string, amount decimal.Decimal, roundUp bool) (decimal.Decimal, error)
		ToAmount(tokenId string, share decimal.Decimal, roundUp bool) (decimal.Decimal, error)
		Deposit(tokenId, from, to string, amount, share decimal.Decimal) (decimal.Decimal, decimal.Decimal, error)
		Withdraw(tokenId, from, to string, amount, share decimal.Decimal) (decimal.Decimal, decimal.Decimal, error)
		Transfer(tokenId, from, to string, share decimal.Decimal) error
		BalanceOf(tokenId, account string) (decimal.Decimal, error)
	}

	// Swapper sells shareIn of fromToken, already credited to Address() in the vault,
	// and credits at least minOut shares of toToken to recipient.
	Swapper interface {
		Address() string
		Swap(fromToken, toToken, recipient string, minOut, shareIn decimal.Decimal) (decimal.Decimal, error)
	}
)
