package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/config"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/events"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/messaging/kafka/consumer"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer persists lifecycle events as inbox notifications until
// SIGINT/SIGTERM.
func RunConsumer(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return errors.New("kafka.broker (KAFKA_BROKER) is required")
	}

	gormDB, sqlDB, err := connectDB(cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	sink := notification.NewSink(notification.NewRepository(gormDB), logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.ComplianceLifecycleTopic,
		GroupID:        cfg.Kafka.ConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.ConsumeComplianceLifecycle(ctx, reader, sink, logger)

	log.Info("consumer shut down")
	return nil
}
