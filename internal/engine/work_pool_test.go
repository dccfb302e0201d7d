package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/strategy"
)

func newPool(t *testing.T, workers int) *Pool {
	t.Helper()
	gen, err := strategy.NewSMACross(2, 3)
	require.NoError(t, err)
	sim, err := NewSimulator(SimConfig{InitialCash: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	return NewPool(workers, gen, sim, 252*24*4, zap.NewNop())
}

func TestPool_RunsAllPairs(t *testing.T) {
	pool := newPool(t, 2)

	jobs := []PairJob{
		{Pair: model.Pair{Symbol: "GBPJPY", Timeframe: "15m"}, Bars: makeBars([]float64{1, 2, 3, 4, 5, 4, 3, 2, 1})},
		{Pair: model.Pair{Symbol: "XAUUSD", Timeframe: "30m"}, Bars: makeBars([]float64{5, 5, 5, 5, 5})},
		{Pair: model.Pair{Symbol: "GBPCHF", Timeframe: "1h"}, Bars: makeBars([]float64{2, 3, 4, 5, 6, 7})},
	}
	outcomes := pool.Run(context.Background(), jobs)
	require.Len(t, outcomes, len(jobs))

	for _, o := range outcomes {
		require.NoError(t, o.Err, "pair %s", o.Pair)
		require.NotNil(t, o.Report)
		// Length invariant holds for every pair.
		assert.Len(t, o.Report.EquityCurve, barCount(jobs, o.Pair), "pair %s", o.Pair)
	}
}

func barCount(jobs []PairJob, pair model.Pair) int {
	for _, j := range jobs {
		if j.Pair == pair {
			return len(j.Bars)
		}
	}
	return -1
}

// One pair carrying an invalid price must fail alone; its siblings complete.
func TestPool_IsolatesFailures(t *testing.T) {
	pool := newPool(t, 3)

	jobs := []PairJob{
		{Pair: model.Pair{Symbol: "GOOD", Timeframe: "15m"}, Bars: makeBars([]float64{1, 2, 3, 4, 5})},
		{Pair: model.Pair{Symbol: "BAD", Timeframe: "15m"}, Bars: makeBars([]float64{1, 2, -3, 4, 5})},
		{Pair: model.Pair{Symbol: "EMPTY", Timeframe: "15m"}, Bars: nil},
	}
	outcomes := pool.Run(context.Background(), jobs)
	require.Len(t, outcomes, len(jobs))

	bySymbol := make(map[string]PairOutcome, len(outcomes))
	for _, o := range outcomes {
		bySymbol[o.Pair.Symbol] = o
	}

	assert.NoError(t, bySymbol["GOOD"].Err)
	require.NotNil(t, bySymbol["GOOD"].Report)

	var priceErr *model.InvalidPriceError
	require.Error(t, bySymbol["BAD"].Err)
	assert.True(t, errors.As(bySymbol["BAD"].Err, &priceErr))

	// An empty series is a valid, empty result, not a failure.
	require.NoError(t, bySymbol["EMPTY"].Err)
	require.NotNil(t, bySymbol["EMPTY"].Report)
	assert.Empty(t, bySymbol["EMPTY"].Report.EquityCurve)
	assert.Empty(t, bySymbol["EMPTY"].Report.Trades)
}

func TestPool_CancelledContext(t *testing.T) {
	pool := newPool(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []PairJob{
		{Pair: model.Pair{Symbol: "GBPJPY", Timeframe: "15m"}, Bars: makeBars([]float64{1, 2, 3})},
	}
	outcomes := pool.Run(ctx, jobs)
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, context.Canceled)
}
