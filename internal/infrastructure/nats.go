package infrastructure

import (
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ReportSubjects matches every per-pair report published by the runner,
// backtest.report.<symbol>.<timeframe>.
const ReportSubjects = "backtest.report.*.*"

func InitNATS(url string, logger *zap.Logger) (*nats.Conn, nats.JetStreamContext, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, nil, err
	}

	cfg := &nats.StreamConfig{
		Name:     "BACKTEST",
		Subjects: []string{ReportSubjects},
	}
	if _, err := js.AddStream(cfg); err != nil {
		if _, err := js.UpdateStream(cfg); err != nil {
			logger.Warn("failed to create or update report stream", zap.Error(err))
		}
	}

	return nc, js, nil
}
