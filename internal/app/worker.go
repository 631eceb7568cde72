package app

import (
	"context"

	"aisg-audit/internal/bootstrap"
	"aisg-audit/internal/messaging/kafka"
	"aisg-audit/internal/messaging/kafka/producer"
	"aisg-audit/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker memindahkan outbox_events ke Kafka sampai menerima sinyal berhenti.
func RunWorker(cfg Config, logger *zap.Logger) error {
	log := logger.Named("app.worker")

	if err := cfg.requireKafka(); err != nil {
		return err
	}

	_, sqlDB, err := connectDB(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		kafka.NewOutboxRepository(sqlDB),
		kafkaWriter,
		logger,
		producer.WorkerConfig{PollInterval: cfg.OutboxPollInterval},
	)

	sig := bootstrap.WaitForSignal()
	log.Info("worker shutting down", zap.String("signal", sig.String()))
	cancel()

	return nil
}
