package document

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	documenterrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/document/errors"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/events"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/notification"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/counter"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const referencePrefix = "DOC"

type Service interface {
	Create(ctx context.Context, actorID string, req CreateDocumentRequest) (DocumentResponse, error)
	GetAll(ctx context.Context, actorID string, q ListDocumentQuery) (pagination.Result[DocumentResponse], error)
	GetByID(ctx context.Context, actorID, id string) (DocumentResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateDocumentRequest) (DocumentResponse, error)
	Publish(ctx context.Context, actorID, id string) (DocumentResponse, error)
	Archive(ctx context.Context, actorID, id string) (DocumentResponse, error)
	// Delete is a soft delete (is_active = false).
	Delete(ctx context.Context, actorID, id string) error
	Purge(ctx context.Context, actorID, id string) error
	GetStats(ctx context.Context, actorID, factoryID string) (StatsResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	counter    counter.Repository
	guard      *access.Guard[*Document]
	dispatcher notification.Dispatcher
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	guard *access.Guard[*Document],
	dispatcher notification.Dispatcher,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("document.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("document.service")
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

func (s *service) Create(ctx context.Context, actorID string, req CreateDocumentRequest) (DocumentResponse, error) {
	s.logger.Debug("create document requested",
		zap.String("actor_id", actorID),
		zap.String("factory_id", req.FactoryID),
		zap.String("category", req.Category),
	)

	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return DocumentResponse{}, err
	}
	if err := s.guard.Authorize(actor, access.OpCreate); err != nil {
		return DocumentResponse{}, err
	}

	tenantID, err := s.repo.FindFactoryTenant(ctx, req.FactoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DocumentResponse{}, documenterrors.ErrInvalidFactoryID
		}
		return DocumentResponse{}, err
	}
	if !actor.IsSuperAdmin() && tenantID != actor.TenantID {
		return DocumentResponse{}, documenterrors.ErrInvalidFactoryID
	}
	if err := s.guard.AuthorizeCreate(actor, access.Target{TenantID: tenantID, FactoryID: req.FactoryID}); err != nil {
		return DocumentResponse{}, err
	}

	expiresAt, err := parseOptionalDate(req.ExpiresAt)
	if err != nil {
		return DocumentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create document begin tx failed", zap.Error(err))
		return DocumentResponse{}, err
	}
	defer tx.Rollback()

	seq, err := s.counter.WithTx(tx).GetNextValue(ctx, tenantID, counter.TypeDocument)
	if err != nil {
		s.logger.Error("create document reference failed", zap.Error(err))
		return DocumentResponse{}, err
	}

	d := &Document{
		ID:          uuid.New(),
		TenantID:    uuid.MustParse(tenantID),
		FactoryID:   uuid.MustParse(req.FactoryID),
		Reference:   counter.Reference(referencePrefix, seq),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      StatusDraft,
		Version:     1,
		FileURL:     req.FileURL,
		ExpiresAt:   expiresAt,
		IsActive:    true,
		OwnerID:     uuid.MustParse(actor.ID),
	}

	if err := s.repo.WithTx(tx).Create(ctx, d); err != nil {
		s.logger.Error("create document persist failed", zap.Error(err))
		return DocumentResponse{}, err
	}
	if err := s.dispatcher.Enqueue(ctx, tx, s.event(events.DocumentCreated, d, actor)); err != nil {
		return DocumentResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create document commit failed", zap.Error(err))
		return DocumentResponse{}, err
	}

	s.guard.Record(ctx, &actor, tenantID, access.OpCreate, d.ID.String(), map[string]any{"reference": d.Reference})
	s.logger.Info("create document success",
		zap.String("document_id", d.ID.String()),
		zap.String("reference", d.Reference),
	)
	return mapToResponse(*d), nil
}

func (s *service) GetAll(ctx context.Context, actorID string, q ListDocumentQuery) (pagination.Result[DocumentResponse], error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return pagination.Result[DocumentResponse]{}, err
	}
	scope, err := s.guard.ListScope(actor, access.OpRead, q.FactoryID)
	if err != nil {
		return pagination.Result[DocumentResponse]{}, err
	}

	page := pagination.Normalize(q.Page, q.Limit)
	docs, total, err := s.repo.FindAll(ctx, scope, ListFilter{Status: q.Status, Category: q.Category, Search: q.Search}, page)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		return pagination.Result[DocumentResponse]{}, err
	}

	return pagination.NewResult(lo.Map(docs, func(d Document, _ int) DocumentResponse {
		return mapToResponse(d)
	}), total, page), nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (DocumentResponse, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return DocumentResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return DocumentResponse{}, documenterrors.ErrDocumentNotFound
	}

	d, err := s.repo.FindByID(ctx, s.guard.LookupScope(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DocumentResponse{}, documenterrors.ErrDocumentNotFound
		}
		return DocumentResponse{}, err
	}
	if err := s.guard.AuthorizeRead(actor, d); err != nil {
		return DocumentResponse{}, err
	}
	return mapToResponse(*d), nil
}

// lock resolves the actor and row-locks the document inside tx. Inactive
// documents are only visible when includeInactive is set.
func (s *service) lock(ctx context.Context, qtx Repository, actorID, id string, includeInactive bool) (access.Actor, *Document, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return access.Actor{}, nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return access.Actor{}, nil, documenterrors.ErrDocumentNotFound
	}
	d, err := qtx.FindByIDForUpdate(ctx, s.guard.LookupScope(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Actor{}, nil, documenterrors.ErrDocumentNotFound
		}
		return access.Actor{}, nil, err
	}
	if !d.IsActive && !includeInactive {
		return access.Actor{}, nil, documenterrors.ErrDocumentNotFound
	}
	return actor, d, nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateDocumentRequest) (DocumentResponse, error) {
	s.logger.Debug("update document requested", zap.String("document_id", id), zap.String("actor_id", actorID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update document begin tx failed", zap.Error(err))
		return DocumentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actor, d, err := s.lock(ctx, qtx, actorID, id, false)
	if err != nil {
		return DocumentResponse{}, err
	}
	if err := s.guard.AuthorizeMutation(actor, access.OpUpdate, d); err != nil {
		return DocumentResponse{}, err
	}
	if !lo.Contains(editableStatuses, d.Status) {
		return DocumentResponse{}, documenterrors.ErrDocumentArchived
	}

	if req.ExpiresAt != nil {
		expiresAt, err := parseOptionalDate(req.ExpiresAt)
		if err != nil {
			return DocumentResponse{}, err
		}
		d.ExpiresAt = expiresAt
	}
	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Description != nil {
		d.Description = req.Description
	}
	if req.Category != nil {
		d.Category = *req.Category
	}
	// A new file on a published document is a new revision.
	if req.FileURL != nil && lo.FromPtr(d.FileURL) != *req.FileURL {
		d.FileURL = req.FileURL
		if d.Status == StatusActive {
			d.Version++
		}
	}

	if err := qtx.Update(ctx, d); err != nil {
		s.logger.Error("update document persist failed", zap.String("document_id", id), zap.Error(err))
		return DocumentResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update document commit failed", zap.String("document_id", id), zap.Error(err))
		return DocumentResponse{}, err
	}

	s.guard.Record(ctx, &actor, d.TenantID.String(), access.OpUpdate, id, map[string]any{"version": d.Version})
	s.logger.Info("update document success", zap.String("document_id", id))
	return mapToResponse(*d), nil
}

func (s *service) Publish(ctx context.Context, actorID, id string) (DocumentResponse, error) {
	return s.transition(ctx, actorID, id, access.OpPublish, func(d *Document, now time.Time) map[string]any {
		d.PublishedAt = &now
		return map[string]any{"published_at": now}
	})
}

func (s *service) Archive(ctx context.Context, actorID, id string) (DocumentResponse, error) {
	return s.transition(ctx, actorID, id, access.OpArchive, func(d *Document, now time.Time) map[string]any {
		d.ArchivedAt = &now
		return map[string]any{"archived_at": now}
	})
}

// transition applies op and bumps the version in the same conditional write.
func (s *service) transition(
	ctx context.Context,
	actorID, id string,
	op access.Operation,
	apply func(d *Document, now time.Time) map[string]any,
) (DocumentResponse, error) {
	s.logger.Debug("document transition requested",
		zap.String("document_id", id),
		zap.String("actor_id", actorID),
		zap.String("operation", string(op)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("document transition begin tx failed", zap.Error(err))
		return DocumentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actor, d, err := s.lock(ctx, qtx, actorID, id, false)
	if err != nil {
		return DocumentResponse{}, err
	}
	tr, err := s.guard.AuthorizeTransition(actor, op, d, d.Status)
	if err != nil {
		return DocumentResponse{}, err
	}

	now := time.Now().UTC()
	from := d.Status
	updates := apply(d, now)
	d.Version++
	updates["status"] = tr.To
	updates["version"] = d.Version
	updates["updated_at"] = now

	n, err := qtx.TransitionStatus(ctx, id, from, updates)
	if err != nil {
		s.logger.Error("document transition persist failed", zap.String("document_id", id), zap.Error(err))
		return DocumentResponse{}, err
	}
	if n == 0 {
		current, err := qtx.FindByID(ctx, s.guard.LookupScope(actor), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return DocumentResponse{}, documenterrors.ErrDocumentNotFound
			}
			return DocumentResponse{}, err
		}
		return DocumentResponse{}, s.guard.RejectStale(op, d, current.Status)
	}
	d.Status = tr.To
	d.UpdatedAt = now

	if op == access.OpPublish {
		if err := s.dispatcher.Enqueue(ctx, tx, s.event(events.DocumentPublished, d, actor)); err != nil {
			return DocumentResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("document transition commit failed", zap.String("document_id", id), zap.Error(err))
		return DocumentResponse{}, err
	}
	s.guard.Transitioned(op)

	s.guard.Record(ctx, &actor, d.TenantID.String(), op, id, map[string]any{
		"from":    from,
		"to":      tr.To,
		"version": d.Version,
	})
	s.logger.Info("document transition success",
		zap.String("document_id", id),
		zap.String("from", from),
		zap.String("to", tr.To),
		zap.Int("version", d.Version),
	)
	return mapToResponse(*d), nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete document begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actor, d, err := s.lock(ctx, qtx, actorID, id, false)
	if err != nil {
		return err
	}
	if err := s.guard.AuthorizeMutation(actor, access.OpDelete, d); err != nil {
		return err
	}

	if err := qtx.Deactivate(ctx, id); err != nil {
		s.logger.Error("delete document persist failed", zap.String("document_id", id), zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.guard.Record(ctx, &actor, d.TenantID.String(), access.OpDelete, id, nil)
	s.logger.Info("delete document success", zap.String("document_id", id))
	return nil
}

func (s *service) Purge(ctx context.Context, actorID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("purge document begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actor, d, err := s.lock(ctx, qtx, actorID, id, true)
	if err != nil {
		return err
	}
	if err := s.guard.AuthorizeMutation(actor, access.OpPurge, d); err != nil {
		return err
	}

	if err := qtx.Purge(ctx, id); err != nil {
		s.logger.Error("purge document persist failed", zap.String("document_id", id), zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.guard.Record(ctx, &actor, d.TenantID.String(), access.OpPurge, id, map[string]any{"reference": d.Reference})
	s.logger.Info("purge document success", zap.String("document_id", id))
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

	st, err := s.repo.Stats(ctx, scope, time.Now().UTC())
	if err != nil {
		s.logger.Error("document stats failed", zap.Error(err))
		return StatsResponse{}, err
	}
	return mapToStatsResponse(st), nil
}

func (s *service) event(eventType string, d *Document, actor access.Actor) events.ComplianceEvent {
	return events.ComplianceEvent{
		EventType:  eventType,
		TenantID:   d.TenantID.String(),
		FactoryID:  d.FactoryID.String(),
		Resource:   Resource,
		ResourceID: d.ID.String(),
		ActorID:    actor.ID,
	}
}
