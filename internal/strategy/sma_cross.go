package strategy

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
)

// volWindow is the rolling window for the volatility feature.
const volWindow = 10

// SMACross is a dual moving-average crossover generator: long while the fast
// SMA is above the slow one, short while below, flat on ties or while either
// average still lacks history.
type SMACross struct {
	fast int
	slow int
}

func NewSMACross(fast, slow int) (*SMACross, error) {
	if fast <= 0 {
		return nil, &model.ConfigError{Field: "fast_window", Reason: fmt.Sprintf("must be positive, got %d", fast)}
	}
	if slow <= 0 {
		return nil, &model.ConfigError{Field: "slow_window", Reason: fmt.Sprintf("must be positive, got %d", slow)}
	}
	if fast >= slow {
		return nil, &model.ConfigError{Field: "fast_window", Reason: fmt.Sprintf("must be smaller than slow_window (%d >= %d)", fast, slow)}
	}
	return &SMACross{fast: fast, slow: slow}, nil
}

func (s *SMACross) Name() string {
	return "SMA_Cross"
}

// Generate walks the series once, maintaining running sums for both averages.
func (s *SMACross) Generate(bars []model.PriceBar) (*model.SignalSeries, error) {
	n := len(bars)
	series := &model.SignalSeries{
		Signals:   make([]model.Signal, n),
		Positions: make([]model.Signal, n),
		Features:  make([]model.FeatureRow, n),
	}

	sumFast, sumSlow := decimal.Zero, decimal.Zero
	returns := make([]float64, n)

	for i, bar := range bars {
		sumFast = sumFast.Add(bar.Close)
		if i >= s.fast {
			sumFast = sumFast.Sub(bars[i-s.fast].Close)
		}
		sumSlow = sumSlow.Add(bar.Close)
		if i >= s.slow {
			sumSlow = sumSlow.Sub(bars[i-s.slow].Close)
		}

		row := model.FeatureRow{
			Return:     math.NaN(),
			Volatility: math.NaN(),
			Hour:       bar.Timestamp.Hour(),
			Weekday:    bar.Timestamp.Weekday(),
		}

		if i >= s.fast-1 {
			row.FastSMA = decimal.NewNullDecimal(sumFast.Div(decimal.NewFromInt(int64(s.fast))))
		}
		if i >= s.slow-1 {
			row.SlowSMA = decimal.NewNullDecimal(sumSlow.Div(decimal.NewFromInt(int64(s.slow))))
		}
		if i >= 1 {
			row.CloseLag1 = decimal.NewNullDecimal(bars[i-1].Close)
			prev, _ := bars[i-1].Close.Float64()
			cur, _ := bar.Close.Float64()
			if prev != 0 {
				row.Return = cur/prev - 1
			}
		}
		if i >= 2 {
			row.CloseLag2 = decimal.NewNullDecimal(bars[i-2].Close)
		}
		returns[i] = row.Return

		// Rolling sample stdev of returns; the first return is undefined, so
		// the window is only full from bar volWindow onward.
		if i >= volWindow {
			row.Volatility = stdev(returns[i-volWindow+1 : i+1])
		}

		if row.FastSMA.Valid && row.SlowSMA.Valid {
			switch row.FastSMA.Decimal.Cmp(row.SlowSMA.Decimal) {
			case 1:
				series.Signals[i] = model.Long
			case -1:
				series.Signals[i] = model.Short
			}
		}
		if i >= 1 {
			series.Positions[i] = series.Signals[i-1]
		}
		series.Features[i] = row
	}

	return series, nil
}

func stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}
