package main

import (
	"context"

	config "github.com/NordCoder/crmdesk/internal/config/api-gateway"
	"github.com/NordCoder/crmdesk/internal/obs/retry"
	"github.com/NordCoder/crmdesk/internal/outbox"
	kafkarepo "github.com/NordCoder/crmdesk/internal/repository/kafka"
	pg "github.com/NordCoder/crmdesk/internal/repository/postgres"
	"go.uber.org/zap"
)

// initOutboxRelay wires the outbox runner to Kafka. It returns a nil runner
// when Kafka is disabled; rows then wait in the table until it is enabled.
func initOutboxRelay(ctx context.Context, cfg *config.Config, logger *zap.Logger, db *pg.DB) (*outbox.Runner, func() error) {
	if !cfg.Kafka.Enable {
		logger.Info("kafka disabled, outbox relay not started")
		return nil, func() error { return nil }
	}

	prod := kafkarepo.BootstrapProducer(ctx, cfg.Kafka.AsProducerConfig(), logger)
	dispatch := outbox.MakeGlobalOutboxHandler(
		kafkarepo.NewCRMEventsKafka(prod),
		retry.DefaultKafkaPolicy(logger),
	)
	runner := outbox.NewOutboxRunner(
		logger.Named("outbox"),
		pg.NewOutboxRepo(db),
		dispatch,
		cfg.Outbox.Workers,
		cfg.Outbox.BatchSize,
		cfg.Outbox.WaitTime,
		cfg.Outbox.InProgressTTL,
	)
	return runner, prod.Close
}
