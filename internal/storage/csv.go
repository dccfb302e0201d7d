package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReadBarsCSV loads one pair's price series from a CSV dataset, the
// data/<symbol>/<timeframe>.csv layout. The header must carry time and close
// columns; open/high/low/volume/spread are optional. Timestamps must be
// strictly increasing.
func ReadBarsCSV(path, symbol, timeframe string) ([]model.PriceBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"time", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, &model.MissingFieldError{Field: required}
		}
	}
	// The MT5 dumps name volume "tick_volume".
	volCol, hasVol := cols["volume"]
	if !hasVol {
		volCol, hasVol = cols["tick_volume"]
	}

	var bars []model.PriceBar
	var prev time.Time
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		ts, err := parseTime(record[cols["time"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		if len(bars) > 0 && !ts.After(prev) {
			return nil, fmt.Errorf("%s line %d: timestamps must be strictly increasing", path, line)
		}
		prev = ts

		bar := model.PriceBar{
			Symbol:    symbol,
			Timeframe: timeframe,
			Timestamp: ts,
		}
		if bar.Close, err = decimal.NewFromString(record[cols["close"]]); err != nil {
			return nil, fmt.Errorf("%s line %d: close: %w", path, line, err)
		}
		bar.Open = optionalDecimal(record, cols, "open")
		bar.High = optionalDecimal(record, cols, "high")
		bar.Low = optionalDecimal(record, cols, "low")
		bar.Spread = optionalDecimal(record, cols, "spread")
		if hasVol {
			if v, err := decimal.NewFromString(record[volCol]); err == nil {
				bar.Volume = v
			}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func optionalDecimal(record []string, cols map[string]int, name string) decimal.Decimal {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(record[i])
	if err != nil {
		return decimal.Zero
	}
	return d
}

// WriteTradesCSV dumps a trade log to disk, creating parent directories as
// needed.
func WriteTradesCSV(path string, trades []model.Trade) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "action", "price", "size", "pnl", "cash_after"}); err != nil {
		return err
	}
	for _, t := range trades {
		row := []string{
			t.Timestamp.Format(time.RFC3339),
			string(t.Action),
			t.Price.String(),
			t.Size.String(),
			t.PnL.String(),
			t.CashAfter.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteEquityCSV dumps an equity curve to disk.
func WriteEquityCSV(path string, curve []model.EquityPoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "equity"}); err != nil {
		return err
	}
	for _, p := range curve {
		if err := w.Write([]string{p.Timestamp.Format(time.RFC3339), p.Value.String()}); err != nil {
			return err
		}
	}
	return w.Error()
}
