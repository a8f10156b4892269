package audit

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	auditerrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/audit/errors"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/events"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/notification"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/counter"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const referencePrefix = "AUD"

//go:generate mockgen -source=audit_service.go -destination=mock/audit_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateAuditRequest) (AuditResponse, error)
	GetAll(ctx context.Context, actorID string, q ListAuditQuery) (pagination.Result[AuditResponse], error)
	GetByID(ctx context.Context, actorID, id string) (AuditResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateAuditRequest) (AuditResponse, error)
	Delete(ctx context.Context, actorID, id string) error
	Start(ctx context.Context, actorID, id string) (AuditResponse, error)
	Complete(ctx context.Context, actorID, id string, req CompleteAuditRequest) (AuditResponse, error)
	GetStats(ctx context.Context, actorID, factoryID string) (StatsResponse, error)
	Report(ctx context.Context, actorID, id string) (Report, error)
}

type service struct {
	db            *sql.DB
	repo          Repository
	counter       counter.Repository
	guard         *access.Guard[*Audit]
	dispatcher    notification.Dispatcher
	passThreshold float64
	logger        *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	guard *access.Guard[*Audit],
	dispatcher notification.Dispatcher,
	passThreshold float64,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("audit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.service")
	}
	if dispatcher == nil {
		dispatcher = notification.Noop()
	}
	return &service{
		db:            db,
		repo:          repo,
		counter:       counterRepo,
		guard:         guard,
		dispatcher:    dispatcher,
		passThreshold: passThreshold,
		logger:        l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateAuditRequest) (AuditResponse, error) {
	s.logger.Debug("create audit requested",
		zap.String("actor_id", actorID),
		zap.String("factory_id", req.FactoryID),
		zap.String("type", req.Type),
	)

	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return AuditResponse{}, err
	}
	if err := s.guard.Authorize(actor, access.OpCreate); err != nil {
		return AuditResponse{}, err
	}

	tenantID, err := s.resolveFactoryTenant(ctx, actor, req.FactoryID)
	if err != nil {
		return AuditResponse{}, err
	}
	if err := s.guard.AuthorizeCreate(actor, access.Target{TenantID: tenantID, FactoryID: req.FactoryID}); err != nil {
		return AuditResponse{}, err
	}

	if err := s.validateParticipants(ctx, tenantID, req.LeadAuditorID, req.AuditorIDs, req.WitnessIDs); err != nil {
		s.logger.Warn("create audit participant validation failed", zap.Error(err))
		return AuditResponse{}, err
	}

	scheduledDate, err := parseDate(req.ScheduledDate)
	if err != nil {
		return AuditResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create audit begin tx failed", zap.Error(err))
		return AuditResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	seq, err := s.counter.WithTx(tx).GetNextValue(ctx, tenantID, counter.TypeAudit)
	if err != nil {
		s.logger.Error("create audit reference failed", zap.Error(err))
		return AuditResponse{}, err
	}

	a := &Audit{
		ID:            uuid.New(),
		TenantID:      uuid.MustParse(tenantID),
		FactoryID:     uuid.MustParse(req.FactoryID),
		Reference:     counter.Reference(referencePrefix, seq),
		Title:         req.Title,
		Type:          req.Type,
		Status:        StatusPlanned,
		ScheduledDate: scheduledDate,
		LeadAuditorID: parseOptionalUUID(req.LeadAuditorID),
		AuditorIDs:    lo.Uniq(req.AuditorIDs),
		WitnessIDs:    lo.Uniq(req.WitnessIDs),
		CreatedBy:     uuid.MustParse(actor.ID),
	}
	if a.AuditorIDs == nil {
		a.AuditorIDs = []string{}
	}
	if a.WitnessIDs == nil {
		a.WitnessIDs = []string{}
	}

	if err := qtx.Create(ctx, a); err != nil {
		s.logger.Error("create audit persist failed", zap.Error(err))
		return AuditResponse{}, err
	}

	if err := s.dispatcher.Enqueue(ctx, tx, s.event(events.AuditCreated, a, actor)); err != nil {
		return AuditResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create audit commit failed", zap.Error(err))
		return AuditResponse{}, err
	}

	s.guard.Record(ctx, &actor, tenantID, access.OpCreate, a.ID.String(), map[string]any{"reference": a.Reference})
	s.logger.Info("create audit success",
		zap.String("audit_id", a.ID.String()),
		zap.String("reference", a.Reference),
		zap.String("tenant_id", tenantID),
	)

	return mapToResponse(*a), nil
}

func (s *service) GetAll(ctx context.Context, actorID string, q ListAuditQuery) (pagination.Result[AuditResponse], error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return pagination.Result[AuditResponse]{}, err
	}
	scope, err := s.guard.ListScope(actor, access.OpRead, q.FactoryID)
	if err != nil {
		return pagination.Result[AuditResponse]{}, err
	}

	page := pagination.Normalize(q.Page, q.Limit)
	audits, total, err := s.repo.FindAll(ctx, scope, ListFilter{Status: q.Status, Type: q.Type, Search: q.Search}, page)
	if err != nil {
		s.logger.Error("list audits failed", zap.Error(err))
		return pagination.Result[AuditResponse]{}, err
	}

	return pagination.NewResult(lo.Map(audits, func(a Audit, _ int) AuditResponse {
		return mapToResponse(a)
	}), total, page), nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (AuditResponse, error) {
	a, err := s.load(ctx, actorID, id)
	if err != nil {
		return AuditResponse{}, err
	}
	return mapToResponse(*a), nil
}

// load resolves the actor and fetches one audit it may read.
func (s *service) load(ctx context.Context, actorID, id string) (*Audit, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, auditerrors.ErrAuditNotFound
	}

	a, err := s.repo.FindByID(ctx, s.guard.LookupScope(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auditerrors.ErrAuditNotFound
		}
		return nil, err
	}
	if err := s.guard.AuthorizeRead(actor, a); err != nil {
		return nil, err
	}
	return a, nil
}

// lockForMutation resolves the actor and row-locks the audit inside tx.
func (s *service) lockForMutation(ctx context.Context, qtx Repository, actorID, id string) (access.Actor, *Audit, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return access.Actor{}, nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return access.Actor{}, nil, auditerrors.ErrAuditNotFound
	}
	a, err := qtx.FindByIDForUpdate(ctx, s.guard.LookupScope(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Actor{}, nil, auditerrors.ErrAuditNotFound
		}
		return access.Actor{}, nil, err
	}
	return actor, a, nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateAuditRequest) (AuditResponse, error) {
	s.logger.Debug("update audit requested", zap.String("audit_id", id), zap.String("actor_id", actorID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update audit begin tx failed", zap.Error(err))
		return AuditResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actor, a, err := s.lockForMutation(ctx, qtx, actorID, id)
	if err != nil {
		return AuditResponse{}, err
	}
	if err := s.guard.AuthorizeMutation(actor, access.OpUpdate, a); err != nil {
		return AuditResponse{}, err
	}
	if !lo.Contains(editableStatuses, a.Status) {
		return AuditResponse{}, apperror.InvalidState(editableStatuses, a.Status, "completed audits cannot be edited")
	}

	tenantID := a.TenantID.String()
	if err := s.validateParticipants(ctx, tenantID, req.LeadAuditorID, req.AuditorIDs, req.WitnessIDs); err != nil {
		return AuditResponse{}, err
	}

	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Type != nil {
		a.Type = *req.Type
	}
	if req.ScheduledDate != nil {
		d, err := parseDate(*req.ScheduledDate)
		if err != nil {
			return AuditResponse{}, err
		}
		a.ScheduledDate = d
	}
	if req.LeadAuditorID != nil {
		a.LeadAuditorID = parseOptionalUUID(req.LeadAuditorID)
	}
	if req.AuditorIDs != nil {
		a.AuditorIDs = lo.Uniq(req.AuditorIDs)
	}
	if req.WitnessIDs != nil {
		a.WitnessIDs = lo.Uniq(req.WitnessIDs)
	}

	if err := qtx.Update(ctx, a); err != nil {
		s.logger.Error("update audit persist failed", zap.String("audit_id", id), zap.Error(err))
		return AuditResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update audit commit failed", zap.String("audit_id", id), zap.Error(err))
		return AuditResponse{}, err
	}

	s.guard.Record(ctx, &actor, tenantID, access.OpUpdate, id, nil)
	s.logger.Info("update audit success", zap.String("audit_id", id))
	return mapToResponse(*a), nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete audit begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actor, a, err := s.lockForMutation(ctx, qtx, actorID, id)
	if err != nil {
		return err
	}
	if err := s.guard.AuthorizeMutation(actor, access.OpDelete, a); err != nil {
		return err
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete audit persist failed", zap.String("audit_id", id), zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.guard.Record(ctx, &actor, a.TenantID.String(), access.OpDelete, id, nil)
	s.logger.Info("delete audit success", zap.String("audit_id", id))
	return nil
}

func (s *service) Start(ctx context.Context, actorID, id string) (AuditResponse, error) {
	return s.transition(ctx, actorID, id, access.OpStart, func(a *Audit, now time.Time) (map[string]any, error) {
		a.ActualStartDate = &now
		return map[string]any{"actual_start_date": now}, nil
	})
}

func (s *service) Complete(ctx context.Context, actorID, id string, req CompleteAuditRequest) (AuditResponse, error) {
	return s.transition(ctx, actorID, id, access.OpComplete, func(a *Audit, now time.Time) (map[string]any, error) {
		if req.Score == nil {
			return nil, auditerrors.ErrScoreRequired
		}
		if *req.Score < 0 || *req.Score > 100 {
			return nil, auditerrors.ErrScoreOutOfRange
		}
		if req.Summary == "" {
			return nil, auditerrors.ErrSummaryRequired
		}
		if req.Recommendations == "" {
			return nil, auditerrors.ErrRecommendationsRequired
		}

		score := *req.Score
		a.Score = &score
		a.Summary = &req.Summary
		a.Recommendations = &req.Recommendations
		a.ActualEndDate = &now
		return map[string]any{
			"score":           score,
			"summary":         req.Summary,
			"recommendations": req.Recommendations,
			"actual_end_date": now,
		}, nil
	})
}

// transition runs one lifecycle move as a single read-modify-write: lock the
// row, check permission, check the transition table, validate the payload,
// then update conditionally on the status that was read.
func (s *service) transition(
	ctx context.Context,
	actorID, id string,
	op access.Operation,
	apply func(a *Audit, now time.Time) (map[string]any, error),
) (AuditResponse, error) {
	s.logger.Debug("audit transition requested",
		zap.String("audit_id", id),
		zap.String("actor_id", actorID),
		zap.String("operation", string(op)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("audit transition begin tx failed", zap.Error(err))
		return AuditResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actor, a, err := s.lockForMutation(ctx, qtx, actorID, id)
	if err != nil {
		return AuditResponse{}, err
	}
	tr, err := s.guard.AuthorizeTransition(actor, op, a, a.Status)
	if err != nil {
		return AuditResponse{}, err
	}

	now := time.Now().UTC()
	updates, err := apply(a, now)
	if err != nil {
		s.logger.Warn("audit transition validation failed", zap.String("audit_id", id), zap.Error(err))
		return AuditResponse{}, err
	}
	from := a.Status
	updates["status"] = tr.To
	updates["updated_at"] = now

	n, err := qtx.TransitionStatus(ctx, id, from, updates)
	if err != nil {
		s.logger.Error("audit transition persist failed", zap.String("audit_id", id), zap.Error(err))
		return AuditResponse{}, err
	}
	if n == 0 {
		current, err := qtx.FindByID(ctx, s.guard.LookupScope(actor), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return AuditResponse{}, auditerrors.ErrAuditNotFound
			}
			return AuditResponse{}, err
		}
		return AuditResponse{}, s.guard.RejectStale(op, a, current.Status)
	}
	a.Status = tr.To
	a.UpdatedAt = now

	if op == access.OpComplete {
		if err := s.dispatcher.Enqueue(ctx, tx, s.event(events.AuditCompleted, a, actor)); err != nil {
			return AuditResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("audit transition commit failed", zap.String("audit_id", id), zap.Error(err))
		return AuditResponse{}, err
	}
	s.guard.Transitioned(op)

	s.guard.Record(ctx, &actor, a.TenantID.String(), op, id, map[string]any{"from": from, "to": tr.To})
	s.logger.Info("audit transition success",
		zap.String("audit_id", id),
		zap.String("from", from),
		zap.String("to", tr.To),
	)
	return mapToResponse(*a), nil
}

func (s *service) GetStats(ctx context.Context, actorID, factoryID string) (StatsResponse, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return StatsResponse{}, err
	}
	scope, err := s.guard.StatsScope(actor, factoryID)
	if err != nil {
		return StatsResponse{}, err
	}

	st, err := s.repo.Stats(ctx, scope, s.passThreshold, time.Now().UTC())
	if err != nil {
		s.logger.Error("audit stats failed", zap.Error(err))
		return StatsResponse{}, err
	}
	return mapToStatsResponse(st), nil
}

func (s *service) resolveFactoryTenant(ctx context.Context, actor access.Actor, factoryID string) (string, error) {
	tenantID, err := s.repo.FindFactoryTenant(ctx, factoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", auditerrors.ErrInvalidFactoryID
		}
		return "", err
	}
	if !actor.IsSuperAdmin() && tenantID != actor.TenantID {
		return "", auditerrors.ErrInvalidFactoryID
	}
	return tenantID, nil
}

func (s *service) validateParticipants(ctx context.Context, tenantID string, lead *string, auditors, witnesses []string) error {
	if lead != nil && *lead != "" {
		n, err := s.repo.CountActiveAuditors(ctx, tenantID, []string{*lead})
		if err != nil {
			return err
		}
		if n != 1 {
			return auditerrors.ErrInvalidLeadAuditor
		}
	}
	if ids := lo.Uniq(auditors); len(ids) > 0 {
		n, err := s.repo.CountActiveAuditors(ctx, tenantID, ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return auditerrors.ErrInvalidAuditorIDs
		}
	}
	if ids := lo.Uniq(witnesses); len(ids) > 0 {
		n, err := s.repo.CountActiveTenantUsers(ctx, tenantID, ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return auditerrors.ErrInvalidWitnessIDs
		}
	}
	return nil
}

func (s *service) event(eventType string, a *Audit, actor access.Actor) events.ComplianceEvent {
	return events.ComplianceEvent{
		EventType:  eventType,
		TenantID:   a.TenantID.String(),
		FactoryID:  a.FactoryID.String(),
		Resource:   Resource,
		ResourceID: a.ID.String(),
		ActorID:    actor.ID,
	}
}
