package metrics

import (
	"testing"

	"github.com/DomeLiquid/pair/core"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPairMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation(core.ActionBorrow, nil)
	m.ObserveOperation(core.ActionBorrow, errors.Wrap(core.ErrInsolventCaller, "alice"))
	m.ObserveOperation(core.ActionBorrow, nil)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues(core.ActionBorrow.String(), "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(core.ActionBorrow.String(), "insolvent")))

	m.ObserveLiquidation(core.Open, 3)
	m.ObserveLiquidation(core.Open, 0)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.liquidations.WithLabelValues("Open")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.liquidatedPositions.WithLabelValues("Open")))

	m.ObserveAccrual(decimal.NewFromInt(85616), decimal.NewFromInt(317097920))
	assert.Equal(t, 85616.0, testutil.ToFloat64(m.accruedInterest))
	assert.Equal(t, 317097920.0, testutil.ToFloat64(m.interestPerSecond))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *PairMetrics
	assert.NotPanics(t, func() {
		m.ObserveOperation(core.ActionRepay, nil)
		m.ObserveLiquidation(core.Closed, 1)
		m.ObserveAccrual(decimal.NewFromInt(1), decimal.NewFromInt(1))
	})
}

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{errors.Wrap(core.ErrUnderflow, "x"), "underflow"},
		{core.ErrAllPositionsSolvent, "all_solvent"},
		{errors.Wrap(core.ErrOracleFailure, "feed"), "oracle_failure"},
		{core.ErrSwapFailure, "swap_failure"},
		{core.ErrInvalidAmount, "invalid_amount"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Result(tt.err))
	}
}
