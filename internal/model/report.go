package model

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TradeAction is the side of a simulated fill.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// Trade is one immutable entry or exit in the simulated trade log.
// PnL is zero on entries; CashAfter is the cash balance right after the fill.
type Trade struct {
	Timestamp time.Time       `json:"timestamp"`
	Symbol    string          `json:"symbol"`
	Action    TradeAction     `json:"action"`
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	PnL       decimal.Decimal `json:"pnl"`
	CashAfter decimal.Decimal `json:"cash_after"`
}

// EquityPoint is the portfolio value observed at one bar, recorded before any
// action taken on that bar.
type EquityPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

// BacktestReport is the full result of one (symbol, timeframe) simulation.
type BacktestReport struct {
	Pair        Pair               `json:"pair"`
	Trades      []Trade            `json:"trades"`
	EquityCurve []EquityPoint      `json:"equity_curve"`
	FinalValue  decimal.Decimal    `json:"final_value"`
	Summary     PerformanceSummary `json:"summary"`
}

// PerformanceSummary reduces one equity curve to the standard statistics.
// Sharpe is NaN when the return series has zero variance.
type PerformanceSummary struct {
	Symbol      string          `json:"symbol"`
	Timeframe   string          `json:"timeframe"`
	TotalReturn decimal.Decimal `json:"total_return"`
	MaxDrawdown float64         `json:"max_drawdown"`
	Sharpe      float64         `json:"sharpe"`
	FinalValue  decimal.Decimal `json:"final_value"`
}

// MarshalJSON emits null for a NaN Sharpe, which encoding/json would
// otherwise reject.
func (s PerformanceSummary) MarshalJSON() ([]byte, error) {
	type alias PerformanceSummary
	var sharpe *float64
	if !math.IsNaN(s.Sharpe) {
		sharpe = &s.Sharpe
	}
	return json.Marshal(struct {
		alias
		Sharpe *float64 `json:"sharpe"`
	}{alias(s), sharpe})
}
