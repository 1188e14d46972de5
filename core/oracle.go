package core

import "github.com/shopspring/decimal"

// Oracle reports how many collateral base units one asset base unit is worth, scaled by 1e18.
type Oracle interface {
	Get(data []byte) (decimal.Decimal, bool)
	Peek(data []byte) (decimal.Decimal, bool)
}

type OracleRegistry map[string]Oracle

func (r OracleRegistry) Lookup(oracleId string) (Oracle, bool) {
	oracle, ok := r[oracleId]
	return oracle, ok
}
