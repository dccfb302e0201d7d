package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is one sampled observation of an instrument over a fixed timeframe.
// Bars are immutable once ingested; a series is ordered by strictly increasing
// timestamps.
type PriceBar struct {
	Symbol    string          `json:"symbol" db:"symbol"`
	Timeframe string          `json:"timeframe" db:"period"` // "15m", "30m", "1h"
	Open      decimal.Decimal `json:"o" db:"open"`
	High      decimal.Decimal `json:"h" db:"high"`
	Low       decimal.Decimal `json:"l" db:"low"`
	Close     decimal.Decimal `json:"c" db:"close"`
	Volume    decimal.Decimal `json:"v" db:"volume"`
	Spread    decimal.Decimal `json:"spread" db:"spread"`
	Timestamp time.Time       `json:"t" db:"time"`
}

// Pair identifies one independent backtest stream.
type Pair struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
}

func (p Pair) String() string {
	return p.Symbol + "/" + p.Timeframe
}
