package access

import (
	"context"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/obs"

	"go.uber.org/zap"
)

type Activity struct {
	TenantID   string
	ActorID    string
	Resource   string
	ResourceID string
	Action     string
	Meta       map[string]any
}

type ActivityRecorder interface {
	Record(ctx context.Context, a Activity) error
}

// RecordBestEffort writes an activity entry and swallows any failure; the
// primary operation has already committed.
func RecordBestEffort(ctx context.Context, rec ActivityRecorder, logger *zap.Logger, a Activity) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, a); err != nil {
		obs.ActivityDropped(a.Resource)
		logger.Warn("activity log failed",
			zap.String("resource", a.Resource),
			zap.String("resource_id", a.ResourceID),
			zap.String("action", a.Action),
			zap.Error(err),
		)
	}
}
