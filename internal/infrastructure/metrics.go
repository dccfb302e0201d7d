package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BacktestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backtest_runs_total",
		Help: "Per-pair backtest runs by outcome",
	}, []string{"symbol", "timeframe", "status"})

	BacktestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "backtest_pair_duration_seconds",
		Help: "Wall time of one pair's signal+simulation+evaluation pipeline",
	})

	ReportPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backtest_report_publish_errors_total",
		Help: "Failed publishes of completed reports to the stream",
	})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections_total",
		Help: "Active WebSocket clients on the report gateway",
	})
)
