package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
)

func makeCurve(values []float64) []model.EquityPoint {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	curve := make([]model.EquityPoint, len(values))
	for i, v := range values {
		curve[i] = model.EquityPoint{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Value:     decimal.NewFromFloat(v),
		}
	}
	return curve
}

var testPair = model.Pair{Symbol: "GBPJPY", Timeframe: "15m"}

func TestEvaluate_ConstantCurve(t *testing.T) {
	curve := makeCurve([]float64{1000, 1000, 1000, 1000})
	s := Evaluate(testPair, curve, decimal.NewFromInt(1000), 252)

	assert.True(t, s.TotalReturn.IsZero())
	assert.Zero(t, s.MaxDrawdown)
	assert.True(t, math.IsNaN(s.Sharpe), "zero-variance returns must yield a NaN Sharpe")
	assert.True(t, decimal.NewFromInt(1000).Equal(s.FinalValue))
}

func TestEvaluate_KnownCurve(t *testing.T) {
	// Peak 110, trough 99 right after: drawdown 11/110 = 0.1.
	curve := makeCurve([]float64{100, 110, 99, 121})
	s := Evaluate(testPair, curve, decimal.NewFromInt(121), 252)

	total, _ := s.TotalReturn.Float64()
	assert.InDelta(t, 0.21, total, 1e-9)
	assert.InDelta(t, 0.1, s.MaxDrawdown, 1e-9)
	assert.False(t, math.IsNaN(s.Sharpe))
}

func TestEvaluate_MonotonicCurveHasZeroDrawdown(t *testing.T) {
	s := Evaluate(testPair, makeCurve([]float64{100, 105, 105, 120}), decimal.NewFromInt(120), 252)
	assert.Zero(t, s.MaxDrawdown)
}

func TestEvaluate_EmptyAndTinyCurves(t *testing.T) {
	s := Evaluate(testPair, nil, decimal.NewFromInt(1000), 252)
	assert.True(t, s.TotalReturn.IsZero())
	assert.True(t, math.IsNaN(s.Sharpe))
	assert.True(t, decimal.NewFromInt(1000).Equal(s.FinalValue))

	// A single point has no returns: Sharpe stays NaN.
	s = Evaluate(testPair, makeCurve([]float64{1000}), decimal.NewFromInt(1000), 252)
	assert.True(t, math.IsNaN(s.Sharpe))
	assert.Zero(t, s.MaxDrawdown)
}

func TestEvaluate_Idempotent(t *testing.T) {
	curve := makeCurve([]float64{100, 103, 98, 107, 104, 112})
	first := Evaluate(testPair, curve, decimal.NewFromInt(112), 96360)
	second := Evaluate(testPair, curve, decimal.NewFromInt(112), 96360)
	assert.Equal(t, first, second)
}

func TestAggregate(t *testing.T) {
	report := func(symbol, timeframe string) *model.BacktestReport {
		return &model.BacktestReport{
			Pair:    model.Pair{Symbol: symbol, Timeframe: timeframe},
			Summary: model.PerformanceSummary{Symbol: symbol, Timeframe: timeframe},
		}
	}
	outcomes := []PairOutcome{
		{Pair: model.Pair{Symbol: "XAUUSD", Timeframe: "30m"}, Report: report("XAUUSD", "30m")},
		{Pair: model.Pair{Symbol: "GBPJPY", Timeframe: "1h"}, Err: errors.New("boom")},
		{Pair: model.Pair{Symbol: "GBPCHF", Timeframe: "1h"}, Report: report("GBPCHF", "1h")},
		{Pair: model.Pair{Symbol: "GBPCHF", Timeframe: "15m"}, Report: report("GBPCHF", "15m")},
	}

	rows := Aggregate(outcomes)
	require.Len(t, rows, 3, "failed pairs stay out of the aggregate")
	assert.Equal(t, "GBPCHF", rows[0].Symbol)
	assert.Equal(t, "15m", rows[0].Timeframe)
	assert.Equal(t, "GBPCHF", rows[1].Symbol)
	assert.Equal(t, "1h", rows[1].Timeframe)
	assert.Equal(t, "XAUUSD", rows[2].Symbol)
}
