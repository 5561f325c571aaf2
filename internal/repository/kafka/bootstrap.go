package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ProducerConfig struct {
	Brokers           []string
	Topic             string
	NumPartitions     int
	ReplicationFactor int
}

// BootstrapProducer makes a best effort to create the topic and returns a
// producer regardless; the writer auto-creates topics as a fallback.
func BootstrapProducer(ctx context.Context, cfg ProducerConfig, logger *zap.Logger) *Producer {
	if err := EnsureTopic(ctx, cfg.Brokers, TopicSpec{
		Name:              cfg.Topic,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
		MaxWait:           5 * time.Second,
	}, logger); err != nil && logger != nil {
		logger.Warn("ensure topic", zap.String("topic", cfg.Topic), zap.Error(err))
	}

	return NewProducer(cfg.Brokers, cfg.Topic).WithLogger(logger)
}
