package activity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dbRecorder struct {
	db *gorm.DB
}

// NewRecorder persists activity entries to activity_logs.
func NewRecorder(db *gorm.DB) access.ActivityRecorder {
	return &dbRecorder{db: db}
}

func (r *dbRecorder) Record(ctx context.Context, a access.Activity) error {
	row := ActivityLog{
		TenantID:   parseOptionalUUID(a.TenantID),
		ActorID:    parseOptionalUUID(a.ActorID),
		Resource:   a.Resource,
		ResourceID: a.ResourceID,
		Action:     a.Action,
		CreatedAt:  time.Now().UTC(),
	}

	meta := a.Meta
	if rid := contextutil.GetRequestID(ctx); rid != "" {
		meta = withRequestID(meta, rid)
	}
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		row.Metadata = b
	}

	return r.db.WithContext(ctx).Create(&row).Error
}

type logRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder writes activity entries to the structured log only.
func NewLogRecorder(logger *zap.Logger) access.ActivityRecorder {
	if logger == nil {
		logger = zap.L()
	}
	return &logRecorder{logger: logger.Named("activity")}
}

func (l *logRecorder) Record(ctx context.Context, a access.Activity) error {
	contextutil.GetLogger(ctx, l.logger).Info("activity",
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("tenant_id", a.TenantID),
		zap.String("actor_id", a.ActorID),
		zap.String("resource", a.Resource),
		zap.String("resource_id", a.ResourceID),
		zap.String("action", a.Action),
		zap.Any("meta", a.Meta),
	)
	return nil
}

type multiRecorder []access.ActivityRecorder

// Multi fans an entry out to every recorder and joins their errors.
func Multi(recorders ...access.ActivityRecorder) access.ActivityRecorder {
	return multiRecorder(recorders)
}

func (m multiRecorder) Record(ctx context.Context, a access.Activity) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func parseOptionalUUID(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func withRequestID(meta map[string]any, rid string) map[string]any {
	out := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	out["request_id"] = rid
	return out
}
