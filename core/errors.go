package core

import "github.com/pkg/errors"

var (
	ErrUnderflow           = errors.New("pair: underflow")
	ErrInsolventCaller     = errors.New("pair: user insolvent")
	ErrAllPositionsSolvent = errors.New("pair: all users are solvent")
	ErrOracleFailure       = errors.New("pair: rate not ok")
	ErrSwapFailure         = errors.New("pair: swap output below minimum")

	ErrInvalidAmount         = errors.New("pair: amount must be positive")
	ErrInvalidConfig         = errors.New("pair: invalid config")
	ErrMismatchedLiquidation = errors.New("pair: users and borrow parts length mismatch")
	ErrDivisionByZero        = errors.New("pair: division by zero")
	ErrUnknownOracle         = errors.New("pair: unknown oracle")
	ErrUnknownAsset          = errors.New("pair: unknown asset")
	ErrPairExists            = errors.New("pair: already deployed")
	ErrPairNotFound          = errors.New("pair: not found")
)
