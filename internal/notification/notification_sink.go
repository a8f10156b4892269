package notification

import (
	"context"
	"fmt"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/events"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var recipients = map[string][]access.Role{
	events.AuditCreated:      {access.RoleFactoryAdmin, access.RoleAuditor},
	events.AuditCompleted:    {access.RoleTenantAdmin, access.RoleFactoryAdmin},
	events.DocumentCreated:   {access.RoleFactoryAdmin},
	events.DocumentPublished: {access.RoleHRStaff, access.RoleWorker},
	events.GrievanceCreated:  {access.RoleGrievanceCommittee},
	events.GrievanceAssigned: {access.RoleGrievanceCommittee},
	events.GrievanceResolved: {access.RoleFactoryAdmin, access.RoleGrievanceCommittee},
	events.GrievanceClosed:   {access.RoleFactoryAdmin},
	events.FactoryCreated:    {access.RoleTenantAdmin},
}

// RecipientRoles lists who is told about eventType.
func RecipientRoles(eventType string) []access.Role {
	return recipients[eventType]
}

// Sink turns consumed lifecycle events into inbox rows. Replays of the same
// event are absorbed by the unique (event_id, recipient_role) index.
type Sink struct {
	repo   Repository
	logger *zap.Logger
}

func NewSink(repo Repository, logger ...*zap.Logger) *Sink {
	l := zap.L().Named("notification.sink")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.sink")
	}
	return &Sink{repo: repo, logger: l}
}

func (s *Sink) Handle(ctx context.Context, event events.ComplianceEvent) (int64, error) {
	roles := RecipientRoles(event.EventType)
	if len(roles) == 0 {
		s.logger.Debug("no recipients for event", zap.String("event_type", event.EventType))
		return 0, nil
	}

	eventID, err := uuid.Parse(event.EventID)
	if err != nil {
		return 0, fmt.Errorf("notification: invalid event id %q: %w", event.EventID, err)
	}
	tenantID, err := uuid.Parse(event.TenantID)
	if err != nil {
		return 0, fmt.Errorf("notification: invalid tenant id %q: %w", event.TenantID, err)
	}
	resourceID, err := uuid.Parse(event.ResourceID)
	if err != nil {
		return 0, fmt.Errorf("notification: invalid resource id %q: %w", event.ResourceID, err)
	}
	var factoryID *uuid.UUID
	if id, err := uuid.Parse(event.FactoryID); err == nil {
		factoryID = &id
	}

	rows := lo.Map(roles, func(role access.Role, _ int) Notification {
		return Notification{
			EventID:       eventID,
			RecipientRole: string(role),
			TenantID:      tenantID,
			FactoryID:     factoryID,
			Resource:      event.Resource,
			ResourceID:    resourceID,
			EventType:     event.EventType,
			CreatedAt:     event.OccurredAt.UTC(),
		}
	})

	created, err := s.repo.CreateIgnoreDuplicates(ctx, rows)
	if err != nil {
		s.logger.Error("persist notifications failed",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return 0, err
	}
	if created == 0 {
		s.logger.Warn("duplicate event skipped", zap.String("event_id", event.EventID))
	}
	return created, nil
}
