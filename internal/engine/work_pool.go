package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/infrastructure"
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/strategy"
)

// PairJob is one independent unit of work: the full price series of a
// (symbol, timeframe) pair.
type PairJob struct {
	Pair model.Pair
	Bars []model.PriceBar
}

// PairOutcome is the per-pair result: a report on success, an error
// otherwise. A failed pair never affects its siblings.
type PairOutcome struct {
	Pair   model.Pair
	Report *model.BacktestReport
	Err    error
}

// Pool runs the generate→simulate→evaluate pipeline for many pairs
// concurrently. Pairs share no mutable state, so the only coordination is
// the final join over the results channel.
type Pool struct {
	workers        int
	gen            strategy.Generator
	sim            *Simulator
	periodsPerYear float64
	logger         *zap.Logger
}

func NewPool(workers int, gen strategy.Generator, sim *Simulator, periodsPerYear float64, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers:        workers,
		gen:            gen,
		sim:            sim,
		periodsPerYear: periodsPerYear,
		logger:         logger,
	}
}

// Run dispatches all jobs across the worker pool and blocks until every
// outcome is in. Cancelling the context stops pickup of remaining jobs;
// their outcomes carry the context error.
func (p *Pool) Run(ctx context.Context, jobs []PairJob) []PairOutcome {
	jobCh := make(chan PairJob)
	resultCh := make(chan PairOutcome, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				select {
				case <-ctx.Done():
					resultCh <- PairOutcome{Pair: job.Pair, Err: ctx.Err()}
				default:
					resultCh <- p.runPair(job)
				}
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()
	close(resultCh)

	outcomes := make([]PairOutcome, 0, len(jobs))
	for outcome := range resultCh {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (p *Pool) runPair(job PairJob) PairOutcome {
	start := time.Now()

	series, err := p.gen.Generate(job.Bars)
	if err != nil {
		return p.fail(job, err)
	}

	simRes, err := p.sim.Run(job.Bars, series)
	if err != nil && !errors.Is(err, model.ErrEmptySeries) {
		return p.fail(job, err)
	}

	summary := Evaluate(job.Pair, simRes.EquityCurve, simRes.FinalValue, p.periodsPerYear)
	report := &model.BacktestReport{
		Pair:        job.Pair,
		Trades:      simRes.Trades,
		EquityCurve: simRes.EquityCurve,
		FinalValue:  simRes.FinalValue,
		Summary:     summary,
	}

	infrastructure.BacktestRuns.WithLabelValues(job.Pair.Symbol, job.Pair.Timeframe, "ok").Inc()
	infrastructure.BacktestDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("pair backtest finished",
		zap.String("pair", job.Pair.String()),
		zap.Int("bars", len(job.Bars)),
		zap.Int("trades", len(report.Trades)),
		zap.String("final_value", report.FinalValue.String()),
	)
	return PairOutcome{Pair: job.Pair, Report: report}
}

func (p *Pool) fail(job PairJob, err error) PairOutcome {
	infrastructure.BacktestRuns.WithLabelValues(job.Pair.Symbol, job.Pair.Timeframe, "error").Inc()
	p.logger.Warn("pair backtest failed",
		zap.String("pair", job.Pair.String()),
		zap.Error(err),
	)
	return PairOutcome{Pair: job.Pair, Err: err}
}
