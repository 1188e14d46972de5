package core

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type (
	PairConfig struct {
		CollateralizationRate decimal.Decimal `json:"collateralizationRate" toml:"collateralization_rate"`
		OpenLiquidationBuffer decimal.Decimal `json:"openLiquidationBuffer" toml:"open_liquidation_buffer"`
		LiquidationBonus      decimal.Decimal `json:"liquidationBonus" toml:"liquidation_bonus"`
		BorrowOpeningFee      decimal.Decimal `json:"borrowOpeningFee" toml:"borrow_opening_fee"`
		ProtocolFee           decimal.Decimal `json:"protocolFee" toml:"protocol_fee"`

		// FeeTo is the only recipient of withdrawn protocol fees.
		FeeTo string `json:"feeTo" toml:"fee_to"`

		InterestRateConfig `json:"interestRateConfig" toml:"interest"`
	}

	// InterestRateConfig drives the utilization-targeting rate. Rates are per second scaled by 1e18,
	// utilizations are scaled by 1e18.
	InterestRateConfig struct {
		MinimumTargetUtilization  decimal.Decimal `json:"minimumTargetUtilization" toml:"minimum_target_utilization"`
		MaximumTargetUtilization  decimal.Decimal `json:"maximumTargetUtilization" toml:"maximum_target_utilization"`
		StartingInterestPerSecond decimal.Decimal `json:"startingInterestPerSecond" toml:"starting_interest_per_second"`
		MinimumInterestPerSecond  decimal.Decimal `json:"minimumInterestPerSecond" toml:"minimum_interest_per_second"`
		MaximumInterestPerSecond  decimal.Decimal `json:"maximumInterestPerSecond" toml:"maximum_interest_per_second"`
		InterestElasticity        decimal.Decimal `json:"interestElasticity" toml:"interest_elasticity"`
	}
)

func DefaultInterestRateConfig() InterestRateConfig {
	return InterestRateConfig{
		MinimumTargetUtilization:  MINIMUM_TARGET_UTILIZATION,
		MaximumTargetUtilization:  MAXIMUM_TARGET_UTILIZATION,
		StartingInterestPerSecond: STARTING_INTEREST_PER_SECOND,
		MinimumInterestPerSecond:  MINIMUM_INTEREST_PER_SECOND,
		MaximumInterestPerSecond:  MAXIMUM_INTEREST_PER_SECOND,
		InterestElasticity:        INTEREST_ELASTICITY,
	}
}

func DefaultPairConfig() PairConfig {
	return PairConfig{
		CollateralizationRate: COLLATERIZATION_RATE,
		OpenLiquidationBuffer: OPEN_LIQUIDATION_BUFFER,
		LiquidationBonus:      LIQUIDATION_BONUS,
		BorrowOpeningFee:      BORROW_OPENING_FEE,
		ProtocolFee:           PROTOCOL_FEE,
		InterestRateConfig:    DefaultInterestRateConfig(),
	}
}

// AdjustInterestRate moves the per-second rate toward the target utilization band.
// Below the band the rate decays, above it the rate grows, both scaled by the time elapsed.
func (i *InterestRateConfig) AdjustInterestRate(rate, utilization decimal.Decimal, elapsed int64) decimal.Decimal {
	duration := decimal.NewFromInt(elapsed)
	elasticity := i.InterestElasticity

	switch {
	case utilization.LessThan(i.MinimumTargetUtilization):
		underFactor, _ := MulDivDown(i.MinimumTargetUtilization.Sub(utilization), SCALE, i.MinimumTargetUtilization)
		scale := elasticity.Add(underFactor.Mul(underFactor).Mul(duration))
		next, _ := MulDivDown(rate, elasticity, scale)
		if next.LessThan(i.MinimumInterestPerSecond) {
			next = i.MinimumInterestPerSecond
		}
		return next
	case utilization.GreaterThan(i.MaximumTargetUtilization):
		overFactor, _ := MulDivDown(utilization.Sub(i.MaximumTargetUtilization), SCALE, FULL_UTILIZATION.Sub(i.MaximumTargetUtilization))
		scale := elasticity.Add(overFactor.Mul(overFactor).Mul(duration))
		next, _ := MulDivDown(rate, scale, elasticity)
		if next.GreaterThan(i.MaximumInterestPerSecond) {
			next = i.MaximumInterestPerSecond
		}
		return next
	default:
		return rate
	}
}

func (i *InterestRateConfig) Validate() error {
	if i.MinimumTargetUtilization.LessThanOrEqual(decimal.Zero) ||
		i.MaximumTargetUtilization.GreaterThanOrEqual(FULL_UTILIZATION) ||
		i.MinimumTargetUtilization.GreaterThan(i.MaximumTargetUtilization) {
		return errors.Wrap(ErrInvalidConfig, "target utilization band")
	}
	if i.MinimumInterestPerSecond.LessThanOrEqual(decimal.Zero) ||
		i.MinimumInterestPerSecond.GreaterThan(i.MaximumInterestPerSecond) {
		return errors.Wrap(ErrInvalidConfig, "interest bounds")
	}
	if i.StartingInterestPerSecond.LessThan(i.MinimumInterestPerSecond) ||
		i.StartingInterestPerSecond.GreaterThan(i.MaximumInterestPerSecond) {
		return errors.Wrap(ErrInvalidConfig, "starting interest")
	}
	if i.InterestElasticity.LessThanOrEqual(decimal.Zero) {
		return errors.Wrap(ErrInvalidConfig, "interest elasticity")
	}
	return nil
}

func (i *InterestRateConfig) Update(irConfig *InterestRateConfig) {
	if !irConfig.MinimumTargetUtilization.IsZero() {
		i.MinimumTargetUtilization = irConfig.MinimumTargetUtilization
	}
	if !irConfig.MaximumTargetUtilization.IsZero() {
		i.MaximumTargetUtilization = irConfig.MaximumTargetUtilization
	}
	if !irConfig.StartingInterestPerSecond.IsZero() {
		i.StartingInterestPerSecond = irConfig.StartingInterestPerSecond
	}
	if !irConfig.MinimumInterestPerSecond.IsZero() {
		i.MinimumInterestPerSecond = irConfig.MinimumInterestPerSecond
	}
	if !irConfig.MaximumInterestPerSecond.IsZero() {
		i.MaximumInterestPerSecond = irConfig.MaximumInterestPerSecond
	}
	if !irConfig.InterestElasticity.IsZero() {
		i.InterestElasticity = irConfig.InterestElasticity
	}
}

func (pc *PairConfig) Validate() error {
	if pc.CollateralizationRate.LessThanOrEqual(decimal.Zero) || pc.CollateralizationRate.GreaterThan(ONE) {
		return errors.Wrap(ErrInvalidConfig, "collateralization rate")
	}
	if pc.OpenLiquidationBuffer.LessThan(ONE) {
		return errors.Wrap(ErrInvalidConfig, "open liquidation buffer")
	}
	if pc.CollateralizationRate.Mul(pc.OpenLiquidationBuffer).GreaterThan(ONE) {
		return errors.Wrap(ErrInvalidConfig, "open limit exceeds collateral value")
	}
	if pc.LiquidationBonus.IsNegative() {
		return errors.Wrap(ErrInvalidConfig, "liquidation bonus")
	}
	if pc.BorrowOpeningFee.IsNegative() || pc.BorrowOpeningFee.GreaterThanOrEqual(ONE) {
		return errors.Wrap(ErrInvalidConfig, "borrow opening fee")
	}
	if pc.ProtocolFee.IsNegative() || pc.ProtocolFee.GreaterThan(ONE) {
		return errors.Wrap(ErrInvalidConfig, "protocol fee")
	}
	return pc.InterestRateConfig.Validate()
}

// Update overrides every non-zero field of cfg onto pc.
func (pc *PairConfig) Update(cfg *PairConfig) {
	if !cfg.CollateralizationRate.IsZero() {
		pc.CollateralizationRate = cfg.CollateralizationRate
	}
	if !cfg.OpenLiquidationBuffer.IsZero() {
		pc.OpenLiquidationBuffer = cfg.OpenLiquidationBuffer
	}
	if !cfg.LiquidationBonus.IsZero() {
		pc.LiquidationBonus = cfg.LiquidationBonus
	}
	if !cfg.BorrowOpeningFee.IsZero() {
		pc.BorrowOpeningFee = cfg.BorrowOpeningFee
	}
	if !cfg.ProtocolFee.IsZero() {
		pc.ProtocolFee = cfg.ProtocolFee
	}
	if cfg.FeeTo != "" {
		pc.FeeTo = cfg.FeeTo
	}
	pc.InterestRateConfig.Update(&cfg.InterestRateConfig)
}
