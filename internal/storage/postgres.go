package storage

import (
	"context"
	"math"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS klines (
	symbol TEXT NOT NULL,
	period TEXT NOT NULL,
	open   NUMERIC NOT NULL,
	high   NUMERIC NOT NULL,
	low    NUMERIC NOT NULL,
	close  NUMERIC NOT NULL,
	volume NUMERIC NOT NULL DEFAULT 0,
	spread NUMERIC NOT NULL DEFAULT 0,
	time   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (symbol, period, time)
);

CREATE TABLE IF NOT EXISTS backtest_reports (
	id           BIGSERIAL PRIMARY KEY,
	symbol       TEXT NOT NULL,
	timeframe    TEXT NOT NULL,
	total_return NUMERIC NOT NULL,
	max_drawdown DOUBLE PRECISION NOT NULL,
	sharpe       DOUBLE PRECISION,
	final_value  NUMERIC NOT NULL,
	total_trades INT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS backtest_trades (
	id         BIGSERIAL PRIMARY KEY,
	report_id  BIGINT NOT NULL REFERENCES backtest_reports(id) ON DELETE CASCADE,
	time       TIMESTAMPTZ NOT NULL,
	action     TEXT NOT NULL,
	price      NUMERIC NOT NULL,
	size       NUMERIC NOT NULL,
	pnl        NUMERIC NOT NULL,
	cash_after NUMERIC NOT NULL
);
`

// EnsureSchema creates the tables the service relies on.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

// SaveReport persists one completed per-pair report and its trade log.
// A NaN Sharpe is stored as NULL.
func SaveReport(ctx context.Context, pool *pgxpool.Pool, report *model.BacktestReport) (int64, error) {
	var sharpe interface{}
	if !math.IsNaN(report.Summary.Sharpe) {
		sharpe = report.Summary.Sharpe
	}

	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO backtest_reports (symbol, timeframe, total_return, max_drawdown, sharpe, final_value, total_trades)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		report.Pair.Symbol, report.Pair.Timeframe,
		report.Summary.TotalReturn, report.Summary.MaxDrawdown, sharpe,
		report.FinalValue, len(report.Trades),
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	for _, t := range report.Trades {
		batch.Queue(`
			INSERT INTO backtest_trades (report_id, time, action, price, size, pnl, cash_after)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, t.Timestamp, string(t.Action), t.Price, t.Size, t.PnL, t.CashAfter)
	}
	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for range report.Trades {
		if _, err := results.Exec(); err != nil {
			return id, err
		}
	}
	return id, nil
}
