package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/config"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/messaging/kafka"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/messaging/kafka/producer"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker drains the outbox to Kafka until SIGINT/SIGTERM.
func RunWorker(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.worker")

	if cfg.Kafka.Broker == "" {
		return errors.New("kafka.broker (KAFKA_BROKER) is required")
	}

	_, sqlDB, err := connectDB(cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	producer.ProcessOutboxEvents(ctx, sqlDB, outboxRepo, kafkaWriter, logger, cfg.Kafka.PollInterval)

	log.Info("worker shut down")
	return nil
}
