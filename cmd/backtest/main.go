package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/config"
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/engine"
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/storage"
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/strategy"
)

// backtest runs a batch job over CSV datasets: one file per (symbol,
// timeframe) pair under <data_dir>/<symbol>/<timeframe>.csv, trade logs and
// equity curves written under <out_dir>.
func main() {
	jobPath := flag.String("job", "job.yaml", "path to the job file")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	job, err := config.LoadJob(*jobPath)
	if err != nil {
		logger.Fatal("invalid job file", zap.Error(err))
	}

	gen, err := strategy.New(job.Strategy.Type, job.Strategy.Params)
	if err != nil {
		logger.Fatal("invalid strategy config", zap.Error(err))
	}
	sim, err := engine.NewSimulator(engine.SimConfig{
		InitialCash:     decimal.NewFromFloat(job.InitialCash),
		UseLaggedSignal: job.UseLaggedSignal,
	})
	if err != nil {
		logger.Fatal("invalid simulator config", zap.Error(err))
	}

	jobs := make([]engine.PairJob, 0, len(job.Pairs))
	failed := make([]engine.PairOutcome, 0)
	for _, pair := range job.Pairs {
		path := filepath.Join(job.DataDir, pair.Symbol, pair.Timeframe+".csv")
		bars, err := storage.ReadBarsCSV(path, pair.Symbol, pair.Timeframe)
		if err != nil {
			logger.Warn("failed to load dataset", zap.String("pair", pair.String()), zap.Error(err))
			failed = append(failed, engine.PairOutcome{Pair: pair, Err: err})
			continue
		}
		jobs = append(jobs, engine.PairJob{Pair: pair, Bars: bars})
	}

	pool := engine.NewPool(runtime.NumCPU(), gen, sim, job.PeriodsPerYear, logger)
	outcomes := append(pool.Run(context.Background(), jobs), failed...)

	ok := 0
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		ok++
		base := filepath.Join(job.OutDir, o.Pair.Symbol)
		if err := storage.WriteTradesCSV(filepath.Join(base, o.Pair.Timeframe+"_trades.csv"), o.Report.Trades); err != nil {
			logger.Error("failed to write trade log", zap.String("pair", o.Pair.String()), zap.Error(err))
		}
		if err := storage.WriteEquityCSV(filepath.Join(base, o.Pair.Timeframe+"_equity.csv"), o.Report.EquityCurve); err != nil {
			logger.Error("failed to write equity curve", zap.String("pair", o.Pair.String()), zap.Error(err))
		}
	}

	printSummary(outcomes)

	if ok == 0 {
		os.Exit(1)
	}
}

func printSummary(outcomes []engine.PairOutcome) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tTIMEFRAME\tTOTAL RETURN\tMAX DRAWDOWN\tSHARPE\tFINAL VALUE\tSTATUS")
	for _, row := range engine.Aggregate(outcomes) {
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.4f\t%s\tok\n",
			row.Symbol, row.Timeframe,
			toFloat(row.TotalReturn), row.MaxDrawdown, row.Sharpe,
			row.FinalValue.StringFixed(2))
	}
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t-\t-\t%v\n", o.Pair.Symbol, o.Pair.Timeframe, o.Err)
		}
	}
	w.Flush()
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
