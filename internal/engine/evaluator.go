package engine

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
)

// Evaluate reduces one equity curve to its performance statistics. It never
// mutates the curve and is safe to call repeatedly; a degenerate return
// series (zero variance, or fewer than two returns) yields a NaN Sharpe
// rather than an error.
func Evaluate(pair model.Pair, curve []model.EquityPoint, finalValue decimal.Decimal, periodsPerYear float64) model.PerformanceSummary {
	summary := model.PerformanceSummary{
		Symbol:     pair.Symbol,
		Timeframe:  pair.Timeframe,
		Sharpe:     math.NaN(),
		FinalValue: finalValue,
	}
	if len(curve) == 0 {
		return summary
	}

	first := curve[0].Value
	last := curve[len(curve)-1].Value
	summary.TotalReturn = last.Div(first).Sub(decimal.NewFromInt(1))
	summary.MaxDrawdown = maxDrawdown(curve)

	returns := barReturns(curve)
	mean, sd := meanStdev(returns)
	if sd > 0 {
		summary.Sharpe = mean / sd * math.Sqrt(periodsPerYear)
	}
	return summary
}

// Aggregate collects the summaries of successful outcomes into one table,
// one row per pair, ordered by symbol then timeframe. Pairs are never
// normalized against each other.
func Aggregate(outcomes []PairOutcome) []model.PerformanceSummary {
	rows := make([]model.PerformanceSummary, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil || o.Report == nil {
			continue
		}
		rows = append(rows, o.Report.Summary)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Symbol != rows[j].Symbol {
			return rows[i].Symbol < rows[j].Symbol
		}
		return rows[i].Timeframe < rows[j].Timeframe
	})
	return rows
}

// maxDrawdown is the largest peak-to-trough decline as a fraction of the
// running peak; zero for a non-decreasing curve.
func maxDrawdown(curve []model.EquityPoint) float64 {
	peak := curve[0].Value
	maxDD := decimal.Zero
	for _, p := range curve {
		if p.Value.GreaterThan(peak) {
			peak = p.Value
		}
		dd := peak.Sub(p.Value).Div(peak)
		if dd.GreaterThan(maxDD) {
			maxDD = dd
		}
	}
	out, _ := maxDD.Float64()
	return out
}

func barReturns(curve []model.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		r, _ := curve[i].Value.Div(curve[i-1].Value).Sub(decimal.NewFromInt(1)).Float64()
		returns = append(returns, r)
	}
	return returns
}

// meanStdev returns the mean and sample standard deviation; stdev is zero
// when fewer than two observations exist.
func meanStdev(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	if len(xs) < 2 {
		return mean, 0
	}
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(xs)-1))
}
