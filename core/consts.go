package core

import (
	"github.com/shopspring/decimal"
)

const (
	SECONDS_PER_YEAR = 31_536_000
)

var (
	ONE = decimal.NewFromInt(1)

	// SCALE is the fixed-point precision of exchange rates, interest rates and utilization.
	SCALE            = decimal.New(1, 18)
	FULL_UTILIZATION = SCALE

	MINIMUM_TARGET_UTILIZATION = decimal.New(7, 17)
	MAXIMUM_TARGET_UTILIZATION = decimal.New(8, 17)

	STARTING_INTEREST_PER_SECOND = decimal.NewFromInt(317097920)
	MINIMUM_INTEREST_PER_SECOND  = decimal.NewFromInt(79274480)
	MAXIMUM_INTEREST_PER_SECOND  = decimal.NewFromInt(317097920000)
	INTEREST_ELASTICITY          = decimal.New(288, 38)

	COLLATERIZATION_RATE    = decimal.NewFromFloat(0.75)
	OPEN_LIQUIDATION_BUFFER = decimal.NewFromFloat(1.05)
	LIQUIDATION_BONUS       = decimal.NewFromFloat(0.12)
	BORROW_OPENING_FEE      = decimal.NewFromFloat(0.0005)
	PROTOCOL_FEE            = decimal.NewFromFloat(0.1)
)
