package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/model"
)

// Job describes one batch backtest run: which pairs to test, the strategy
// and its parameters, and the simulation settings. Loaded from YAML by the
// CLI runner.
type Job struct {
	DataDir         string       `yaml:"data_dir"`
	OutDir          string       `yaml:"out_dir"`
	Pairs           []model.Pair `yaml:"pairs"`
	Strategy        StrategySpec `yaml:"strategy"`
	InitialCash     float64      `yaml:"initial_cash"`
	PeriodsPerYear  float64      `yaml:"periods_per_year"`
	UseLaggedSignal bool         `yaml:"use_lagged_signal"`
}

type StrategySpec struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params"`
}

// LoadJob reads and validates a job file. Strategy parameter validation is
// left to the strategy factory.
func LoadJob(path string) (*Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	job := &Job{
		DataDir:        "data/raw",
		OutDir:         "trades",
		InitialCash:    1000,
		PeriodsPerYear: 252 * 24 * 4,
	}
	if err := yaml.Unmarshal(raw, job); err != nil {
		return nil, fmt.Errorf("parse job file: %w", err)
	}

	if len(job.Pairs) == 0 {
		return nil, errors.New("job file names no pairs")
	}
	for i, p := range job.Pairs {
		if p.Symbol == "" || p.Timeframe == "" {
			return nil, fmt.Errorf("pair %d needs both symbol and timeframe", i)
		}
	}
	if job.Strategy.Type == "" {
		return nil, errors.New("job file names no strategy type")
	}
	if job.InitialCash <= 0 {
		return nil, fmt.Errorf("initial_cash must be positive, got %v", job.InitialCash)
	}
	if job.PeriodsPerYear <= 0 {
		return nil, fmt.Errorf("periods_per_year must be positive, got %v", job.PeriodsPerYear)
	}
	return job, nil
}
