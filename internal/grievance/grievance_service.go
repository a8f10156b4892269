package grievance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/events"
	grievanceerrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/grievance/errors"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/notification"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/counter"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const referencePrefix = "GRV"

type Service interface {
	Create(ctx context.Context, actorID string, req CreateGrievanceRequest) (GrievanceResponse, error)
	// CreateAnonymous accepts a submission with no authenticated actor. The
	// tenant is taken from the factory.
	CreateAnonymous(ctx context.Context, req CreateGrievanceRequest) (SubmissionResponse, error)
	GetAll(ctx context.Context, actorID string, q ListGrievanceQuery) (pagination.Result[GrievanceResponse], error)
	GetByID(ctx context.Context, actorID, id string) (GrievanceResponse, error)
	Assign(ctx context.Context, actorID, id string, req AssignGrievanceRequest) (GrievanceResponse, error)
	Resolve(ctx context.Context, actorID, id string, req ResolveGrievanceRequest) (GrievanceResponse, error)
	Close(ctx context.Context, actorID, id string) (GrievanceResponse, error)
	Delete(ctx context.Context, actorID, id string) error
	GetStats(ctx context.Context, actorID, factoryID string) (StatsResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	counter    counter.Repository
	guard      *access.Guard[*Grievance]
	dispatcher notification.Dispatcher
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	guard *access.Guard[*Grievance],
	dispatcher notification.Dispatcher,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("grievance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("grievance.service")
	}
	if dispatcher == nil {
		dispatcher = notification.Noop()
	}
	return &service{
		db:         db,
		repo:       repo,
		counter:    counterRepo,
		guard:      guard,
		dispatcher: dispatcher,
		logger:     l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateGrievanceRequest) (GrievanceResponse, error) {
	s.logger.Debug("create grievance requested",
		zap.String("actor_id", actorID),
		zap.String("factory_id", req.FactoryID),
		zap.Bool("is_anonymous", req.IsAnonymous),
	)

	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return GrievanceResponse{}, err
	}
	if err := s.guard.Authorize(actor, access.OpCreate); err != nil {
		return GrievanceResponse{}, err
	}

	tenantID, err := s.factoryTenant(ctx, req.FactoryID)
	if err != nil {
		return GrievanceResponse{}, err
	}
	if !actor.IsSuperAdmin() && tenantID != actor.TenantID {
		return GrievanceResponse{}, grievanceerrors.ErrInvalidFactoryID
	}
	if err := s.guard.AuthorizeCreate(actor, access.Target{TenantID: tenantID, FactoryID: req.FactoryID}); err != nil {
		return GrievanceResponse{}, err
	}

	g, err := s.create(ctx, &actor, tenantID, req)
	if err != nil {
		return GrievanceResponse{}, err
	}
	return mapToResponse(*g), nil
}

func (s *service) CreateAnonymous(ctx context.Context, req CreateGrievanceRequest) (SubmissionResponse, error) {
	s.logger.Debug("anonymous grievance submitted", zap.String("factory_id", req.FactoryID))

	if !req.IsAnonymous {
		return SubmissionResponse{}, grievanceerrors.ErrAnonymousRequired
	}
	tenantID, err := s.factoryTenant(ctx, req.FactoryID)
	if err != nil {
		return SubmissionResponse{}, err
	}

	g, err := s.create(ctx, nil, tenantID, req)
	if err != nil {
		return SubmissionResponse{}, err
	}
	return SubmissionResponse{Reference: g.Reference, Status: g.Status}, nil
}

// create persists a new grievance. actor is nil for anonymous submissions;
// an authenticated reporter who asks for anonymity is not recorded either.
func (s *service) create(ctx context.Context, actor *access.Actor, tenantID string, req CreateGrievanceRequest) (*Grievance, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create grievance begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	seq, err := s.counter.WithTx(tx).GetNextValue(ctx, tenantID, counter.TypeGrievance)
	if err != nil {
		s.logger.Error("create grievance reference failed", zap.Error(err))
		return nil, err
	}

	g := &Grievance{
		ID:          uuid.New(),
		TenantID:    uuid.MustParse(tenantID),
		FactoryID:   uuid.MustParse(req.FactoryID),
		Reference:   counter.Reference(referencePrefix, seq),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Severity:    lo.Ternary(req.Severity == "", SeverityMedium, req.Severity),
		Status:      StatusSubmitted,
		IsAnonymous: actor == nil || req.IsAnonymous,
	}
	if !g.IsAnonymous {
		reporter := uuid.MustParse(actor.ID)
		g.ReportedBy = &reporter
	}

	if err := s.repo.WithTx(tx).Create(ctx, g); err != nil {
		s.logger.Error("create grievance persist failed", zap.Error(err))
		return nil, err
	}

	ev := s.event(events.GrievanceCreated, g, "")
	if !g.IsAnonymous {
		ev.ActorID = actor.ID
	}
	if err := s.dispatcher.Enqueue(ctx, tx, ev); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create grievance commit failed", zap.Error(err))
		return nil, err
	}

	recordAs := actor
	if g.IsAnonymous {
		recordAs = nil
	}
	s.guard.Record(ctx, recordAs, tenantID, access.OpCreate, g.ID.String(), map[string]any{
		"reference":    g.Reference,
		"is_anonymous": g.IsAnonymous,
	})
	s.logger.Info("create grievance success",
		zap.String("grievance_id", g.ID.String()),
		zap.String("reference", g.Reference),
		zap.Bool("is_anonymous", g.IsAnonymous),
	)
	return g, nil
}

func (s *service) factoryTenant(ctx context.Context, factoryID string) (string, error) {
	tenantID, err := s.repo.FindFactoryTenant(ctx, factoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", grievanceerrors.ErrInvalidFactoryID
		}
		return "", err
	}
	return tenantID, nil
}

func (s *service) GetAll(ctx context.Context, actorID string, q ListGrievanceQuery) (pagination.Result[GrievanceResponse], error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return pagination.Result[GrievanceResponse]{}, err
	}
	scope, err := s.guard.ListScope(actor, access.OpRead, q.FactoryID)
	if err != nil {
		return pagination.Result[GrievanceResponse]{}, err
	}

	page := pagination.Normalize(q.Page, q.Limit)
	rows, total, err := s.repo.FindAll(ctx, scope, ListFilter{
		Status:     q.Status,
		Category:   q.Category,
		Severity:   q.Severity,
		AssignedTo: q.AssignedTo,
	}, page)
	if err != nil {
		s.logger.Error("list grievances failed", zap.Error(err))
		return pagination.Result[GrievanceResponse]{}, err
	}

	return pagination.NewResult(lo.Map(rows, func(g Grievance, _ int) GrievanceResponse {
		return mapToResponse(g)
	}), total, page), nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (GrievanceResponse, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return GrievanceResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return GrievanceResponse{}, grievanceerrors.ErrGrievanceNotFound
	}

	g, err := s.repo.FindByID(ctx, s.guard.LookupScope(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GrievanceResponse{}, grievanceerrors.ErrGrievanceNotFound
		}
		return GrievanceResponse{}, err
	}
	if err := s.guard.AuthorizeRead(actor, g); err != nil {
		return GrievanceResponse{}, err
	}
	return mapToResponse(*g), nil
}

func (s *service) Assign(ctx context.Context, actorID, id string, req AssignGrievanceRequest) (GrievanceResponse, error) {
	return s.transition(ctx, actorID, id, access.OpAssign, events.GrievanceAssigned,
		func(ctx context.Context, g *Grievance, now time.Time) (map[string]any, error) {
			if g.AssignedTo != nil {
				return nil, grievanceerrors.ErrAlreadyAssigned
			}
			n, err := s.repo.CountEligibleAssignees(ctx, g.TenantID.String(), g.FactoryID.String(), req.AssignedTo)
			if err != nil {
				return nil, err
			}
			if n != 1 {
				return nil, grievanceerrors.ErrInvalidAssignee
			}
			assignee := uuid.MustParse(req.AssignedTo)
			g.AssignedTo = &assignee
			g.AssignedAt = &now
			return map[string]any{"assigned_to": assignee, "assigned_at": now}, nil
		})
}

func (s *service) Resolve(ctx context.Context, actorID, id string, req ResolveGrievanceRequest) (GrievanceResponse, error) {
	return s.transition(ctx, actorID, id, access.OpResolve, events.GrievanceResolved,
		func(_ context.Context, g *Grievance, now time.Time) (map[string]any, error) {
			if req.Resolution == "" {
				return nil, grievanceerrors.ErrResolutionRequired
			}
			g.Resolution = &req.Resolution
			g.ResolvedAt = &now
			return map[string]any{"resolution": req.Resolution, "resolved_at": now}, nil
		})
}

func (s *service) Close(ctx context.Context, actorID, id string) (GrievanceResponse, error) {
	return s.transition(ctx, actorID, id, access.OpClose, events.GrievanceClosed,
		func(_ context.Context, g *Grievance, now time.Time) (map[string]any, error) {
			g.ClosedAt = &now
			return map[string]any{"closed_at": now}, nil
		})
}

func (s *service) transition(
	ctx context.Context,
	actorID, id string,
	op access.Operation,
	eventType string,
	apply func(ctx context.Context, g *Grievance, now time.Time) (map[string]any, error),
) (GrievanceResponse, error) {
	s.logger.Debug("grievance transition requested",
		zap.String("grievance_id", id),
		zap.String("actor_id", actorID),
		zap.String("operation", string(op)),
	)

	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return GrievanceResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return GrievanceResponse{}, grievanceerrors.ErrGrievanceNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("grievance transition begin tx failed", zap.Error(err))
		return GrievanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	g, err := qtx.FindByIDForUpdate(ctx, s.guard.LookupScope(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GrievanceResponse{}, grievanceerrors.ErrGrievanceNotFound
		}
		return GrievanceResponse{}, err
	}
	tr, err := s.guard.AuthorizeTransition(actor, op, g, g.Status)
	if err != nil {
		return GrievanceResponse{}, err
	}

	now := time.Now().UTC()
	from := g.Status
	updates, err := apply(ctx, g, now)
	if err != nil {
		s.logger.Warn("grievance transition validation failed", zap.String("grievance_id", id), zap.Error(err))
		return GrievanceResponse{}, err
	}
	updates["status"] = tr.To
	updates["updated_at"] = now

	n, err := qtx.TransitionStatus(ctx, id, from, updates)
	if err != nil {
		s.logger.Error("grievance transition persist failed", zap.String("grievance_id", id), zap.Error(err))
		return GrievanceResponse{}, err
	}
	if n == 0 {
		current, err := qtx.FindByID(ctx, s.guard.LookupScope(actor), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return GrievanceResponse{}, grievanceerrors.ErrGrievanceNotFound
			}
			return GrievanceResponse{}, err
		}
		return GrievanceResponse{}, s.guard.RejectStale(op, g, current.Status)
	}
	g.Status = tr.To
	g.UpdatedAt = now

	if err := s.dispatcher.Enqueue(ctx, tx, s.event(eventType, g, actor.ID)); err != nil {
		return GrievanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("grievance transition commit failed", zap.String("grievance_id", id), zap.Error(err))
		return GrievanceResponse{}, err
	}
	s.guard.Transitioned(op)

	s.guard.Record(ctx, &actor, g.TenantID.String(), op, id, map[string]any{"from": from, "to": tr.To})
	s.logger.Info("grievance transition success",
		zap.String("grievance_id", id),
		zap.String("from", from),
		zap.String("to", tr.To),
	)
	return mapToResponse(*g), nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(actor, access.OpDelete); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return grievanceerrors.ErrGrievanceNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete grievance begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	g, err := qtx.FindByIDForUpdate(ctx, s.guard.LookupScope(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return grievanceerrors.ErrGrievanceNotFound
		}
		return err
	}
	if err := s.guard.AuthorizeMutation(actor, access.OpDelete, g); err != nil {
		return err
	}
	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete grievance persist failed", zap.String("grievance_id", id), zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.guard.Record(ctx, &actor, g.TenantID.String(), access.OpDelete, id, map[string]any{"reference": g.Reference})
	s.logger.Info("delete grievance success", zap.String("grievance_id", id))
	return nil
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

	st, err := s.repo.Stats(ctx, scope)
	if err != nil {
		s.logger.Error("grievance stats failed", zap.Error(err))
		return StatsResponse{}, err
	}
	return mapToStatsResponse(st), nil
}

func (s *service) event(eventType string, g *Grievance, actorID string) events.ComplianceEvent {
	return events.ComplianceEvent{
		EventType:  eventType,
		TenantID:   g.TenantID.String(),
		FactoryID:  g.FactoryID.String(),
		Resource:   Resource,
		ResourceID: g.ID.String(),
		ActorID:    actorID,
	}
}
