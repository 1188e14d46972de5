package core

import (
	"github.com/shopspring/decimal"
)

// accrue advances the staged totals to now. It depends only on the state and now,
// so calling it again without elapsed time changes nothing.
func (tx *pairTx) accrue(log Log, now int64) decimal.Decimal {
	state := &tx.state
	info := &state.AccrueInfo
	config := &tx.pair.Config

	elapsed := now - info.LastAccrued
	if elapsed <= 0 {
		return decimal.Zero
	}
	info.LastAccrued = now

	if state.TotalBorrow.Base.IsZero() {
		info.InterestPerSecond = config.StartingInterestPerSecond
		return decimal.Zero
	}

	interest, _ := MulDivDown(state.TotalBorrow.Elastic, info.InterestPerSecond.Mul(decimal.NewFromInt(elapsed)), SCALE)
	fee := ApplyRate(interest, config.ProtocolFee, RoundDown)

	state.TotalBorrow = state.TotalBorrow.AddElastic(interest)
	state.TotalAsset = state.TotalAsset.AddElastic(interest.Sub(fee))
	info.FeesEarned = info.FeesEarned.Add(fee)

	utilization := decimal.Zero
	if !state.TotalAsset.Elastic.IsZero() {
		utilization, _ = MulDivDown(state.TotalBorrow.Elastic, SCALE, state.TotalAsset.Elastic)
	}
	previous := info.InterestPerSecond
	info.InterestPerSecond = config.AdjustInterestRate(previous, utilization, elapsed)
	tx.interest = tx.interest.Add(interest)

	log.Debug().Msgf("pair %s accrued %s over %ds, utilization %s, rate %s -> %s",
		tx.pair.Id, interest, elapsed, utilization, previous, info.InterestPerSecond)
	return interest
}

func (p *Pair) Accrue(log Log) error {
	return p.transact(log, ActionAccrue, "", func(tx *pairTx) (OperateDetail, error) {
		interest := tx.accrue(log, p.clk.Now().Unix())
		return OperateDetail{Share: interest}, nil
	})
}
