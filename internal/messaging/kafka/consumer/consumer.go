package consumer

import (
	"context"
	"encoding/json"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type EventHandler interface {
	Handle(ctx context.Context, event events.ComplianceEvent) (int64, error)
}

// ConsumeComplianceLifecycle feeds lifecycle events to handler until ctx is
// cancelled. Undecodable messages are committed and dropped; handler
// failures leave the offset uncommitted so the message is redelivered.
func ConsumeComplianceLifecycle(
	ctx context.Context,
	reader MessageReader,
	handler EventHandler,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.compliance_lifecycle")
	log.Info("compliance lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("compliance lifecycle consumer stopped")
				return
			}
			log.Error("fetch compliance lifecycle message failed", zap.Error(err))
			continue
		}

		handleMessage(ctx, reader, handler, msg, log)
	}
}

func handleMessage(
	ctx context.Context,
	reader MessageReader,
	handler EventHandler,
	msg kafkago.Message,
	log *zap.Logger,
) {
	var event events.ComplianceEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode compliance event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	created, err := handler.Handle(ctx, event)
	if err != nil {
		log.Error("handle compliance event failed",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.String("request_id", event.RequestID),
			zap.Error(err),
		)
		return
	}

	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit compliance lifecycle message failed", zap.Error(err))
		return
	}

	log.Info("compliance event handled",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.Int64("notifications", created),
	)
}
