package metrics

import (
	"sync"

	"github.com/DomeLiquid/pair/core"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

type PairMetrics struct {
	operations          *prometheus.CounterVec
	liquidations        *prometheus.CounterVec
	liquidatedPositions *prometheus.CounterVec
	accruedInterest     prometheus.Counter
	interestPerSecond   prometheus.Gauge
}

var _ core.Observer = (*PairMetrics)(nil)

var (
	pairOnce     sync.Once
	pairRegistry *PairMetrics
)

// Pair returns the process wide metrics registered on the default registerer.
func Pair() *PairMetrics {
	pairOnce.Do(func() {
		pairRegistry = New(prometheus.DefaultRegisterer)
	})
	return pairRegistry
}

func New(reg prometheus.Registerer) *PairMetrics {
	m := &PairMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pair_operations_total",
			Help: "Count of pair operations by action and result.",
		}, []string{"action", "result"}),
		liquidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pair_liquidations_total",
			Help: "Count of liquidation calls by posture.",
		}, []string{"posture"}),
		liquidatedPositions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pair_liquidated_positions_total",
			Help: "Number of positions liquidated by posture.",
		}, []string{"posture"}),
		accruedInterest: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pair_accrued_interest_shares_total",
			Help: "Interest accrued on borrows, in asset vault shares.",
		}),
		interestPerSecond: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pair_interest_per_second",
			Help: "Latest per-second interest rate scaled by 1e18.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.operations,
			m.liquidations,
			m.liquidatedPositions,
			m.accruedInterest,
			m.interestPerSecond,
		)
	}
	return m
}

func (m *PairMetrics) ObserveOperation(action core.ActionType, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(action.String(), Result(err)).Inc()
}

func (m *PairMetrics) ObserveLiquidation(posture core.RiskPosture, users int) {
	if m == nil {
		return
	}
	m.liquidations.WithLabelValues(posture.String()).Inc()
	if users > 0 {
		m.liquidatedPositions.WithLabelValues(posture.String()).Add(float64(users))
	}
}

func (m *PairMetrics) ObserveAccrual(interest decimal.Decimal, interestPerSecond decimal.Decimal) {
	if m == nil {
		return
	}
	if interest.IsPositive() {
		m.accruedInterest.Add(interest.InexactFloat64())
	}
	m.interestPerSecond.Set(interestPerSecond.InexactFloat64())
}

// Result labels an operation outcome by its error kind.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, core.ErrUnderflow):
		return "underflow"
	case errors.Is(err, core.ErrInsolventCaller):
		return "insolvent"
	case errors.Is(err, core.ErrAllPositionsSolvent):
		return "all_solvent"
	case errors.Is(err, core.ErrOracleFailure):
		return "oracle_failure"
	case errors.Is(err, core.ErrSwapFailure):
		return "swap_failure"
	case errors.Is(err, core.ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "error"
	}
}
