package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeReader struct {
	messages  []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.messages) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type fakeHandler struct {
	handled []string
	failOn  string
}

func (h *fakeHandler) Handle(_ context.Context, event events.ComplianceEvent) (int64, error) {
	if event.EventID == h.failOn {
		return 0, errors.New("db down")
	}
	h.handled = append(h.handled, event.EventID)
	return 1, nil
}

func TestConsumeComplianceLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		messages: []kafkago.Message{
			{Offset: 1, Value: []byte(`{"event_id":"e-1","event_type":"grievance.created"}`)},
			{Offset: 2, Value: []byte(`not json`)},
			{Offset: 3, Value: []byte(`{"event_id":"e-3","event_type":"audit.created"}`)},
			{Offset: 4, Value: []byte(`{"event_id":"e-4","event_type":"grievance.closed"}`)},
		},
	}
	handler := &fakeHandler{failOn: "e-3"}

	ConsumeComplianceLifecycle(ctx, reader, handler, zap.NewNop())

	assert.Equal(t, []string{"e-1", "e-4"}, handler.handled)
	assert.Equal(t, []int64{1, 2, 4}, reader.committed, "failed message must stay uncommitted")
}
