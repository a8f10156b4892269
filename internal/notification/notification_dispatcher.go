package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/events"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/messaging/kafka"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher queues a lifecycle event in the same transaction as the write
// that caused it. Delivery happens later in the outbox worker.
//
//go:generate mockgen -source=notification_dispatcher.go -destination=mock/dispatcher_mock.go -package=mock
type Dispatcher interface {
	Enqueue(ctx context.Context, tx *sql.Tx, event events.ComplianceEvent) error
}

type outboxDispatcher struct {
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewOutboxDispatcher(outbox kafka.OutboxRepository, logger ...*zap.Logger) Dispatcher {
	l := zap.L().Named("notification.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.dispatcher")
	}
	return &outboxDispatcher{outbox: outbox, logger: l}
}

func (d *outboxDispatcher) Enqueue(ctx context.Context, tx *sql.Tx, event events.ComplianceEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.RequestID == "" {
		event.RequestID = contextutil.GetRequestID(ctx)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Error("marshal compliance event failed", zap.String("event_type", event.EventType), zap.Error(err))
		return err
	}

	if err := d.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:         event.EventID,
		RequestID:  event.RequestID,
		TenantID:   event.TenantID,
		Resource:   event.Resource,
		ResourceID: event.ResourceID,
		EventType:  event.EventType,
		Topic:      events.ComplianceLifecycleTopic,
		Payload:    payload,
		Status:     kafka.OutboxStatusPending,
	}); err != nil {
		d.logger.Error("queue compliance event failed",
			zap.String("event_type", event.EventType),
			zap.String("resource_id", event.ResourceID),
			zap.Error(err),
		)
		return err
	}

	d.logger.Debug("compliance event queued",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
	)
	return nil
}

type noopDispatcher struct{}

// Noop drops every event.
func Noop() Dispatcher {
	return noopDispatcher{}
}

func (noopDispatcher) Enqueue(context.Context, *sql.Tx, events.ComplianceEvent) error {
	return nil
}
