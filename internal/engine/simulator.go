package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
)

// SimConfig is the immutable configuration of one simulation run.
type SimConfig struct {
	InitialCash decimal.Decimal
	// UseLaggedSignal trades on the previous bar's signal (the lagged
	// position feature) instead of the current bar's, for a lookahead-free
	// variant of the same loop.
	UseLaggedSignal bool
}

// SimResult is the raw output of one simulated series.
type SimResult struct {
	Trades      []model.Trade
	EquityCurve []model.EquityPoint
	FinalValue  decimal.Decimal
}

// Simulator walks a signalled price series once, simulating a
// single-instrument, full-capital, long-only strategy.
//
// The portfolio is a two-state machine: Flat (all value held as cash) and
// Long (all cash converted to units at the entry close). A Long signal while
// Flat buys at the bar's close; a Short signal while Long sells at the bar's
// close; everything else holds. Equity is recorded before the bar's
// transition is applied, so the curve reflects decisions from prior bars.
type Simulator struct {
	cfg SimConfig
}

func NewSimulator(cfg SimConfig) (*Simulator, error) {
	if cfg.InitialCash.LessThanOrEqual(decimal.Zero) {
		return nil, &model.ConfigError{Field: "initial_cash", Reason: fmt.Sprintf("must be positive, got %s", cfg.InitialCash)}
	}
	return &Simulator{cfg: cfg}, nil
}

// Run simulates one series. A zero-length series yields empty outputs and
// ErrEmptySeries; a non-positive close aborts with InvalidPriceError.
func (s *Simulator) Run(bars []model.PriceBar, series *model.SignalSeries) (*SimResult, error) {
	res := &SimResult{
		Trades:      make([]model.Trade, 0),
		EquityCurve: make([]model.EquityPoint, 0, len(bars)),
		FinalValue:  s.cfg.InitialCash,
	}
	if len(bars) == 0 {
		return res, model.ErrEmptySeries
	}

	signals := series.Signals
	if s.cfg.UseLaggedSignal {
		signals = series.Positions
	}
	if len(signals) != len(bars) {
		return nil, fmt.Errorf("signal series length %d does not match %d bars", len(signals), len(bars))
	}

	cash := s.cfg.InitialCash
	size := decimal.Zero
	entryPrice := decimal.Zero
	long := false

	for i, bar := range bars {
		if bar.Close.LessThanOrEqual(decimal.Zero) {
			return nil, &model.InvalidPriceError{Index: i, Price: bar.Close}
		}

		equity := cash
		if long {
			equity = size.Mul(bar.Close)
		}
		res.EquityCurve = append(res.EquityCurve, model.EquityPoint{
			Timestamp: bar.Timestamp,
			Value:     equity,
		})

		switch signals[i] {
		case model.Long:
			if long {
				continue
			}
			size = cash.Div(bar.Close)
			entryPrice = bar.Close
			cash = decimal.Zero
			long = true
			res.Trades = append(res.Trades, model.Trade{
				Timestamp: bar.Timestamp,
				Symbol:    bar.Symbol,
				Action:    model.ActionBuy,
				Price:     bar.Close,
				Size:      size,
				PnL:       decimal.Zero,
				CashAfter: cash,
			})
		case model.Short:
			if !long {
				continue
			}
			proceeds := size.Mul(bar.Close)
			pnl := proceeds.Sub(size.Mul(entryPrice))
			cash = proceeds
			res.Trades = append(res.Trades, model.Trade{
				Timestamp: bar.Timestamp,
				Symbol:    bar.Symbol,
				Action:    model.ActionSell,
				Price:     bar.Close,
				Size:      size,
				PnL:       pnl,
				CashAfter: cash,
			})
			size = decimal.Zero
			long = false
		}
	}

	res.FinalValue = cash
	if long {
		res.FinalValue = size.Mul(bars[len(bars)-1].Close)
	}
	return res, nil
}
