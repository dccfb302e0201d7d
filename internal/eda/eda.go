// Package eda provides read-only descriptive statistics over a price
// series. It never feeds the simulator; it exists to sanity-check a dataset
// before spending a backtest on it.
package eda

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
)

// periodsPerTradingYear annualizes the simple Sharpe diagnostic on daily-ish
// return scale.
const periodsPerTradingYear = 252

// Report is the exploratory summary of one (symbol, timeframe) series.
type Report struct {
	Symbol        string    `json:"symbol"`
	Timeframe     string    `json:"timeframe"`
	Bars          int       `json:"bars"`
	MeanReturn    float64   `json:"mean_return"`
	StdevReturn   float64   `json:"stdev_return"`
	Sharpe        float64   `json:"sharpe"`
	Skewness      float64   `json:"skewness"`
	Kurtosis      float64   `json:"kurtosis"`
	AvgRange      float64   `json:"avg_range"`
	AvgSpread     float64   `json:"avg_spread"`
	SpreadToRange float64   `json:"spread_to_range"`
	AvgVolume     float64   `json:"avg_volume"`
	Autocorr      []float64 `json:"autocorr"`
	Quantile05    float64   `json:"quantile_05"`
	Quantile95    float64   `json:"quantile_95"`
}

// MarshalJSON renders the NaN moments of a degenerate series (constant
// prices, fewer than two bars) as null; encoding/json has no NaN literal.
func (r Report) MarshalJSON() ([]byte, error) {
	type alias Report
	return json.Marshal(struct {
		alias
		Sharpe   *float64   `json:"sharpe"`
		Skewness *float64   `json:"skewness"`
		Kurtosis *float64   `json:"kurtosis"`
		Autocorr []*float64 `json:"autocorr"`
	}{
		alias:    alias(r),
		Sharpe:   nullIfNaN(r.Sharpe),
		Skewness: nullIfNaN(r.Skewness),
		Kurtosis: nullIfNaN(r.Kurtosis),
		Autocorr: nullIfNaNSlice(r.Autocorr),
	})
}

func nullIfNaN(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func nullIfNaNSlice(xs []float64) []*float64 {
	if xs == nil {
		return nil
	}
	out := make([]*float64, len(xs))
	for i := range xs {
		out[i] = nullIfNaN(xs[i])
	}
	return out
}

// Describe computes the report over the given bars, skipping bars with a
// non-positive close. MaxLag bounds the autocorrelation diagnostics.
func Describe(bars []model.PriceBar, maxLag int) Report {
	rep := Report{
		Sharpe:   math.NaN(),
		Skewness: math.NaN(),
		Kurtosis: math.NaN(),
	}
	if len(bars) > 0 {
		rep.Symbol = bars[0].Symbol
		rep.Timeframe = bars[0].Timeframe
	}

	var closes, ranges, spreads, volumes []float64
	for _, b := range bars {
		c, _ := b.Close.Float64()
		if c <= 0 {
			continue
		}
		closes = append(closes, c)
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		ranges = append(ranges, high-low)
		spread, _ := b.Spread.Float64()
		spreads = append(spreads, spread)
		vol, _ := b.Volume.Float64()
		volumes = append(volumes, vol)
	}
	rep.Bars = len(closes)
	if len(closes) < 2 {
		return rep
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns = append(returns, closes[i]/closes[i-1]-1)
	}

	rep.MeanReturn = mean(returns)
	rep.StdevReturn = stdev(returns, rep.MeanReturn)
	if rep.StdevReturn > 0 {
		rep.Sharpe = rep.MeanReturn / rep.StdevReturn * math.Sqrt(periodsPerTradingYear)
		rep.Skewness = skewness(returns, rep.MeanReturn, rep.StdevReturn)
		rep.Kurtosis = kurtosis(returns, rep.MeanReturn, rep.StdevReturn)
	}

	rep.AvgRange = mean(ranges)
	rep.AvgSpread = mean(spreads)
	if rep.AvgRange > 0 {
		rep.SpreadToRange = rep.AvgSpread / rep.AvgRange
	}
	rep.AvgVolume = mean(volumes)

	if maxLag > len(returns)-1 {
		maxLag = len(returns) - 1
	}
	for lag := 1; lag <= maxLag; lag++ {
		rep.Autocorr = append(rep.Autocorr, autocorr(returns, lag))
	}

	rep.Quantile05 = quantile(returns, 0.05)
	rep.Quantile95 = quantile(returns, 0.95)
	return rep
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdev(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}

func skewness(xs []float64, mean, sd float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += math.Pow((x-mean)/sd, 3)
	}
	return sum / float64(len(xs))
}

// kurtosis is excess kurtosis: zero for a normal distribution.
func kurtosis(xs []float64, mean, sd float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += math.Pow((x-mean)/sd, 4)
	}
	return sum/float64(len(xs)) - 3
}

// autocorr is the Pearson correlation between the series and itself shifted
// by lag bars.
func autocorr(xs []float64, lag int) float64 {
	n := len(xs) - lag
	if n < 2 {
		return math.NaN()
	}
	a := xs[:n]
	b := xs[lag:]
	ma, mb := mean(a), mean(b)
	var cov, va, vb float64
	for i := 0; i < n; i++ {
		da := a[i] - ma
		db := b[i] - mb
		cov += da * db
		va += da * da
		vb += db * db
	}
	if va == 0 || vb == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(va*vb)
}

// quantile interpolates linearly between order statistics, matching the
// default estimator of most dataframe libraries.
func quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
