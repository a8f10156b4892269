package notification_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/events"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/messaging/kafka"
	kafkaMock "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/messaging/kafka/mock"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/notification"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOutboxDispatcher_Enqueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := kafkaMock.NewMockOutboxRepository(ctrl)
	dispatcher := notification.NewOutboxDispatcher(outbox)

	ctx := contextutil.WithRequestID(context.Background(), "req-1")
	tenantID := uuid.NewString()
	grievanceID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		outbox.EXPECT().WithTx(gomock.Any()).Return(outbox)
		outbox.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, e kafka.OutboxEvent) error {
				assert.NotEmpty(t, e.ID)
				assert.Equal(t, "req-1", e.RequestID)
				assert.Equal(t, tenantID, e.TenantID)
				assert.Equal(t, events.ComplianceLifecycleTopic, e.Topic)
				assert.Equal(t, kafka.OutboxStatusPending, e.Status)

				var payload events.ComplianceEvent
				require.NoError(t, json.Unmarshal(e.Payload, &payload))
				assert.Equal(t, e.ID, payload.EventID)
				assert.Equal(t, events.GrievanceCreated, payload.EventType)
				assert.False(t, payload.OccurredAt.IsZero())
				return nil
			})

		err := dispatcher.Enqueue(ctx, &sql.Tx{}, events.ComplianceEvent{
			EventType:  events.GrievanceCreated,
			TenantID:   tenantID,
			Resource:   "grievance",
			ResourceID: grievanceID,
		})
		assert.NoError(t, err)
	})

	t.Run("negative outbox error", func(t *testing.T) {
		outbox.EXPECT().WithTx(gomock.Any()).Return(outbox)
		outbox.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("insert failed"))

		err := dispatcher.Enqueue(ctx, &sql.Tx{}, events.ComplianceEvent{EventType: events.AuditCreated, TenantID: tenantID})
		assert.EqualError(t, err, "insert failed")
	})
}

type fakeNotificationRepository struct {
	seen map[string]bool
	err  error
}

func (f *fakeNotificationRepository) CreateIgnoreDuplicates(_ context.Context, rows []notification.Notification) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var created int64
	for _, r := range rows {
		key := r.EventID.String() + "|" + r.RecipientRole
		if f.seen[key] {
			continue
		}
		f.seen[key] = true
		created++
	}
	return created, nil
}

func (f *fakeNotificationRepository) FindByTenantAndRole(context.Context, string, string, int) ([]notification.Notification, error) {
	return nil, nil
}

func TestSink_Handle(t *testing.T) {
	ctx := context.Background()
	repo := &fakeNotificationRepository{seen: map[string]bool{}}
	sink := notification.NewSink(repo)

	event := events.ComplianceEvent{
		EventID:    uuid.NewString(),
		EventType:  events.GrievanceResolved,
		TenantID:   uuid.NewString(),
		FactoryID:  uuid.NewString(),
		Resource:   "grievance",
		ResourceID: uuid.NewString(),
		OccurredAt: time.Now(),
	}

	created, err := sink.Handle(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, int64(2), created)

	created, err = sink.Handle(ctx, event)
	require.NoError(t, err)
	assert.Zero(t, created, "replayed event must not create rows")

	t.Run("unknown event type is ignored", func(t *testing.T) {
		created, err := sink.Handle(ctx, events.ComplianceEvent{EventType: "factory.toggled"})
		assert.NoError(t, err)
		assert.Zero(t, created)
	})

	t.Run("negative malformed ids", func(t *testing.T) {
		bad := event
		bad.EventID = "not-a-uuid"
		_, err := sink.Handle(ctx, bad)
		assert.Error(t, err)
	})
}
