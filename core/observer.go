package core

import "github.com/shopspring/decimal"

type Observer interface {
	ObserveOperation(action ActionType, err error)
	ObserveLiquidation(posture RiskPosture, users int)
	ObserveAccrual(interest decimal.Decimal, interestPerSecond decimal.Decimal)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(ActionType, error)              {}
func (nopObserver) ObserveLiquidation(RiskPosture, int)             {}
func (nopObserver) ObserveAccrual(decimal.Decimal, decimal.Decimal) {}
