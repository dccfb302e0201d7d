package eda

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
)

func makeBars(closes []float64) []model.PriceBar {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Symbol:    "XAUUSD",
			Timeframe: "1h",
			Close:     decimal.NewFromFloat(c),
			High:      decimal.NewFromFloat(c + 1),
			Low:       decimal.NewFromFloat(c - 1),
			Volume:    decimal.NewFromInt(100),
			Spread:    decimal.NewFromFloat(0.5),
			Timestamp: start.Add(time.Duration(i) * time.Hour),
		}
	}
	return bars
}

func TestDescribe_ConstantSeries(t *testing.T) {
	rep := Describe(makeBars([]float64{100, 100, 100, 100}), 5)

	assert.Equal(t, "XAUUSD", rep.Symbol)
	assert.Equal(t, 4, rep.Bars)
	assert.Zero(t, rep.MeanReturn)
	assert.Zero(t, rep.StdevReturn)
	assert.True(t, math.IsNaN(rep.Sharpe), "zero variance yields NaN Sharpe")
}

func TestDescribe_Basics(t *testing.T) {
	rep := Describe(makeBars([]float64{100, 101, 99, 102, 101, 103, 100, 104}), 3)

	assert.Equal(t, 8, rep.Bars)
	assert.Greater(t, rep.StdevReturn, 0.0)
	assert.False(t, math.IsNaN(rep.Sharpe))
	assert.InDelta(t, 2.0, rep.AvgRange, 1e-9)
	assert.InDelta(t, 0.5, rep.AvgSpread, 1e-9)
	assert.InDelta(t, 0.25, rep.SpreadToRange, 1e-9)
	assert.InDelta(t, 100, rep.AvgVolume, 1e-9)
	require.Len(t, rep.Autocorr, 3)
	assert.LessOrEqual(t, rep.Quantile05, rep.Quantile95)
}

func TestReportMarshalJSON_DegenerateSeries(t *testing.T) {
	rep := Describe(makeBars([]float64{100, 100, 100, 100}), 5)
	require.True(t, math.IsNaN(rep.Sharpe))

	data, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sharpe":null`)
	assert.Contains(t, string(data), `"skewness":null`)
	assert.Contains(t, string(data), `"kurtosis":null`)
	// Constant returns have zero variance, so every autocorrelation lag is
	// undefined as well.
	assert.Contains(t, string(data), `"autocorr":[null,null]`)
}

func TestReportMarshalJSON_FiniteSeries(t *testing.T) {
	rep := Describe(makeBars([]float64{100, 101, 99, 102, 101, 103}), 2)

	data, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"sharpe":null`)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.InDelta(t, rep.Sharpe, decoded["sharpe"].(float64), 1e-9)
}

func TestDescribe_SkipsNonPositiveCloses(t *testing.T) {
	bars := makeBars([]float64{100, 101, 102})
	bars[1].Close = decimal.Zero

	rep := Describe(bars, 2)
	assert.Equal(t, 2, rep.Bars)
}

func TestDescribe_TooShort(t *testing.T) {
	rep := Describe(makeBars([]float64{100}), 5)
	assert.Equal(t, 1, rep.Bars)
	assert.True(t, math.IsNaN(rep.Sharpe))
	assert.Empty(t, rep.Autocorr)
}

func TestQuantile(t *testing.T) {
	xs := []float64{5, 1, 3, 2, 4}
	assert.InDelta(t, 1, quantile(xs, 0), 1e-9)
	assert.InDelta(t, 3, quantile(xs, 0.5), 1e-9)
	assert.InDelta(t, 5, quantile(xs, 1), 1e-9)
	assert.InDelta(t, 1.2, quantile(xs, 0.05), 1e-9)
}
