package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJob(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJob(t *testing.T) {
	path := writeJob(t, `
data_dir: data/raw
pairs:
  - symbol: GBPJPY
    timeframe: 15m
  - symbol: XAUUSD
    timeframe: 1h
strategy:
  type: sma_cross
  params:
    fast_window: 50
    slow_window: 200
initial_cash: 5000
use_lagged_signal: true
`)

	job, err := LoadJob(path)
	require.NoError(t, err)

	require.Len(t, job.Pairs, 2)
	assert.Equal(t, "GBPJPY", job.Pairs[0].Symbol)
	assert.Equal(t, "15m", job.Pairs[0].Timeframe)
	assert.Equal(t, "sma_cross", job.Strategy.Type)
	assert.Equal(t, 5000.0, job.InitialCash)
	assert.True(t, job.UseLaggedSignal)

	// Defaults fill what the file leaves out.
	assert.Equal(t, "trades", job.OutDir)
	assert.Equal(t, float64(252*24*4), job.PeriodsPerYear)
}

func TestLoadJob_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no pairs", "strategy:\n  type: sma_cross\n"},
		{"pair missing timeframe", "pairs:\n  - symbol: GBPJPY\nstrategy:\n  type: sma_cross\n"},
		{"no strategy", "pairs:\n  - symbol: GBPJPY\n    timeframe: 15m\n"},
		{"negative cash", "pairs:\n  - symbol: GBPJPY\n    timeframe: 15m\nstrategy:\n  type: sma_cross\ninitial_cash: -1\n"},
		{"bad yaml", "pairs: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeJob(t, tt.content)
			_, err := LoadJob(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadJob_MissingFile(t *testing.T) {
	_, err := LoadJob(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
