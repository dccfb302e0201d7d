package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Signal is the discrete per-bar trading signal.
type Signal int

const (
	Short Signal = -1
	Flat  Signal = 0
	Long  Signal = 1
)

func (s Signal) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// FeatureRow holds the per-bar derived values attached alongside the signal.
// SMA and lagged-close fields are invalid while there is insufficient history;
// float64 fields use NaN for the same purpose.
type FeatureRow struct {
	FastSMA    decimal.NullDecimal `json:"fast_sma"`
	SlowSMA    decimal.NullDecimal `json:"slow_sma"`
	Return     float64             `json:"return"`
	Volatility float64             `json:"volatility"`
	CloseLag1  decimal.NullDecimal `json:"close_lag1"`
	CloseLag2  decimal.NullDecimal `json:"close_lag2"`
	Hour       int                 `json:"hour"`
	Weekday    time.Weekday        `json:"weekday"`
}

// SignalSeries is the output of a signal generator over one price series.
// Positions is Signals shifted forward by one bar (Positions[0] == Flat),
// for consumers that must not act on a same-bar signal.
type SignalSeries struct {
	Signals   []Signal
	Positions []Signal
	Features  []FeatureRow
}
