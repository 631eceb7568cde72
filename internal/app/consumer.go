package app

import (
	"context"

	"aisg-audit/internal/bootstrap"
	"aisg-audit/internal/events"
	"aisg-audit/internal/messaging/kafka/consumer"
	"aisg-audit/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer mendengarkan audit lifecycle dan menyegarkan agregasi audit atasan.
func RunConsumer(cfg Config, logger *zap.Logger) error {
	log := logger.Named("app.consumer")

	if err := cfg.requireKafka(); err != nil {
		return err
	}

	gormDB, sqlDB, err := connectDB(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	mods, err := buildServices(cfg, sqlDB, gormDB, redisClient, logger)
	if err != nil {
		return err
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.AuditLifecycleTopic,
		GroupID:        cfg.ConsumerGroupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.ConsumeAuditLifecycle(ctx, reader, mods.audits, consumer.RetryPolicy{}, logger)
	}()

	sig := bootstrap.WaitForSignal()
	log.Info("consumer shutting down", zap.String("signal", sig.String()))
	cancel()
	<-done

	return nil
}
