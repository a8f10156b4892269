package factory

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/events"
	factoryerrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/factory/errors"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/notification"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/contextutil"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=factory_service.go -destination=mock/factory_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateFactoryRequest) (FactoryResponse, error)
	GetAll(ctx context.Context, actorID string, q ListFactoryQuery) (pagination.Result[FactoryResponse], error)
	GetByID(ctx context.Context, actorID, id string) (FactoryResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateFactoryRequest) (FactoryResponse, error)
	Toggle(ctx context.Context, actorID, id string) (FactoryResponse, error)
	Delete(ctx context.Context, actorID, id string) error
	// GetOptions lists active factories for dropdowns. tenantID is only
	// read for SuperAdmin.
	GetOptions(ctx context.Context, actorID, tenantID string) ([]OptionResponse, error)
	GetStats(ctx context.Context, actorID, factoryID string) (StatsResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	guard      *access.Guard[*Factory]
	dispatcher notification.Dispatcher
	options    *optionsCache
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	guard *access.Guard[*Factory],
	dispatcher notification.Dispatcher,
	rdb *redis.Client,
	optionsTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("factory.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("factory.service")
	}
	if dispatcher == nil {
		dispatcher = notification.Noop()
	}
	return &service{
		db:         db,
		repo:       repo,
		guard:      guard,
		dispatcher: dispatcher,
		options:    newOptionsCache(rdb, optionsTTL, l),
		logger:     l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateFactoryRequest) (FactoryResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create factory requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actorID),
		zap.String("code", req.Code),
	)

	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return FactoryResponse{}, err
	}
	if err := s.guard.Authorize(actor, access.OpCreate); err != nil {
		return FactoryResponse{}, err
	}

	tenantID, err := s.targetTenant(ctx, actor, req.TenantID)
	if err != nil {
		return FactoryResponse{}, err
	}
	if err := s.guard.AuthorizeCreate(actor, access.Target{TenantID: tenantID}); err != nil {
		return FactoryResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.assertUnique(ctx, s.repo, tenantID, name, req.Code, ""); err != nil {
		return FactoryResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create factory begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return FactoryResponse{}, err
	}
	defer tx.Rollback()

	f := &Factory{
		ID:            uuid.New(),
		TenantID:      uuid.MustParse(tenantID),
		Name:          name,
		Code:          req.Code,
		Address:       req.Address,
		Country:       req.Country,
		Industry:      req.Industry,
		EmployeeCount: req.EmployeeCount,
		IsActive:      true,
		CreatedBy:     uuid.MustParse(actor.ID),
	}

	if err := s.repo.WithTx(tx).Create(ctx, f); err != nil {
		mapped := mapRepositoryError(err)
		if mapped == err {
			s.logger.Error("create factory persist failed", zap.String("request_id", rid), zap.Error(err))
		}
		return FactoryResponse{}, mapped
	}
	if err := s.dispatcher.Enqueue(ctx, tx, events.ComplianceEvent{
		EventType:  events.FactoryCreated,
		TenantID:   tenantID,
		FactoryID:  f.ID.String(),
		Resource:   Resource,
		ResourceID: f.ID.String(),
		ActorID:    actor.ID,
	}); err != nil {
		return FactoryResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create factory commit failed", zap.String("request_id", rid), zap.Error(err))
		return FactoryResponse{}, err
	}

	s.options.invalidate(ctx, tenantID)
	s.guard.Record(ctx, &actor, tenantID, access.OpCreate, f.ID.String(), map[string]any{"code": f.Code})
	s.logger.Info("create factory success",
		zap.String("request_id", rid),
		zap.String("factory_id", f.ID.String()),
	)
	return mapToResponse(*f), nil
}

// targetTenant picks the tenant a new factory is created in. SuperAdmin
// names it explicitly; everyone else is bound to their own.
func (s *service) targetTenant(ctx context.Context, actor access.Actor, requested string) (string, error) {
	if !actor.IsSuperAdmin() {
		if requested != "" && requested != actor.TenantID {
			return "", factoryerrors.ErrInvalidTenantID
		}
		return actor.TenantID, nil
	}
	if requested == "" {
		return "", apperror.RequiredField("tenant_id")
	}
	ok, err := s.repo.TenantExists(ctx, requested)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", factoryerrors.ErrInvalidTenantID
	}
	return requested, nil
}

func (s *service) assertUnique(ctx context.Context, repo Repository, tenantID, name, code, excludeID string) error {
	if name != "" {
		taken, err := repo.ExistsActiveName(ctx, tenantID, name, excludeID)
		if err != nil {
			return err
		}
		if taken {
			s.logger.Warn("factory name taken", zap.String("tenant_id", tenantID), zap.String("name", name))
			return factoryerrors.ErrFactoryNameExists
		}
	}
	if code != "" {
		taken, err := repo.ExistsCode(ctx, tenantID, code, excludeID)
		if err != nil {
			return err
		}
		if taken {
			s.logger.Warn("factory code taken", zap.String("tenant_id", tenantID), zap.String("code", code))
			return factoryerrors.ErrFactoryCodeExists
		}
	}
	return nil
}

func (s *service) GetAll(ctx context.Context, actorID string, q ListFactoryQuery) (pagination.Result[FactoryResponse], error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return pagination.Result[FactoryResponse]{}, err
	}
	scope, err := s.guard.ListScope(actor, access.OpRead, "")
	if err != nil {
		return pagination.Result[FactoryResponse]{}, err
	}

	page := pagination.Normalize(q.Page, q.Limit)
	factories, total, err := s.repo.FindAll(ctx, scope, ListFilter{Search: q.Search, IsActive: q.IsActive}, page)
	if err != nil {
		s.logger.Error("list factories failed", zap.Error(err))
		return pagination.Result[FactoryResponse]{}, err
	}

	return pagination.NewResult(lo.Map(factories, func(f Factory, _ int) FactoryResponse {
		return mapToResponse(f)
	}), total, page), nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (FactoryResponse, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return FactoryResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return FactoryResponse{}, factoryerrors.ErrFactoryNotFound
	}

	f, err := s.repo.FindByID(ctx, s.guard.LookupScope(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FactoryResponse{}, factoryerrors.ErrFactoryNotFound
		}
		return FactoryResponse{}, err
	}
	if err := s.guard.AuthorizeRead(actor, f); err != nil {
		return FactoryResponse{}, err
	}
	return mapToResponse(*f), nil
}

func (s *service) lock(ctx context.Context, qtx Repository, actorID, id string) (access.Actor, *Factory, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return access.Actor{}, nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return access.Actor{}, nil, factoryerrors.ErrFactoryNotFound
	}
	f, err := qtx.FindByIDForUpdate(ctx, s.guard.LookupScope(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Actor{}, nil, factoryerrors.ErrFactoryNotFound
		}
		return access.Actor{}, nil, err
	}
	return actor, f, nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateFactoryRequest) (FactoryResponse, error) {
	s.logger.Debug("update factory requested", zap.String("factory_id", id), zap.String("actor_id", actorID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update factory begin tx failed", zap.Error(err))
		return FactoryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actor, f, err := s.lock(ctx, qtx, actorID, id)
	if err != nil {
		return FactoryResponse{}, err
	}
	if err := s.guard.AuthorizeMutation(actor, access.OpUpdate, f); err != nil {
		return FactoryResponse{}, err
	}

	var newName, newCode string
	if req.Name != nil && !strings.EqualFold(strings.TrimSpace(*req.Name), f.Name) && f.IsActive {
		newName = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil && *req.Code != f.Code {
		newCode = *req.Code
	}
	if err := s.assertUnique(ctx, qtx, f.TenantID.String(), newName, newCode, id); err != nil {
		return FactoryResponse{}, err
	}

	if req.Name != nil {
		f.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		f.Code = *req.Code
	}
	if req.Address != nil {
		f.Address = req.Address
	}
	if req.Country != nil {
		f.Country = *req.Country
	}
	if req.Industry != nil {
		f.Industry = req.Industry
	}
	if req.EmployeeCount != nil {
		f.EmployeeCount = *req.EmployeeCount
	}

	if err := qtx.Update(ctx, f); err != nil {
		mapped := mapRepositoryError(err)
		if mapped == err {
			s.logger.Error("update factory persist failed", zap.String("factory_id", id), zap.Error(err))
		}
		return FactoryResponse{}, mapped
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update factory commit failed", zap.String("factory_id", id), zap.Error(err))
		return FactoryResponse{}, err
	}

	s.options.invalidate(ctx, f.TenantID.String())
	s.guard.Record(ctx, &actor, f.TenantID.String(), access.OpUpdate, id, nil)
	s.logger.Info("update factory success", zap.String("factory_id", id))
	return mapToResponse(*f), nil
}

func (s *service) Toggle(ctx context.Context, actorID, id string) (FactoryResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("toggle factory begin tx failed", zap.Error(err))
		return FactoryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actor, f, err := s.lock(ctx, qtx, actorID, id)
	if err != nil {
		return FactoryResponse{}, err
	}
	if err := s.guard.AuthorizeMutation(actor, access.OpToggle, f); err != nil {
		return FactoryResponse{}, err
	}

	// Reactivating must not produce two active factories with one name.
	if !f.IsActive {
		if err := s.assertUnique(ctx, qtx, f.TenantID.String(), f.Name, "", id); err != nil {
			return FactoryResponse{}, err
		}
	}

	f.IsActive = !f.IsActive
	if err := qtx.SetActive(ctx, id, f.IsActive); err != nil {
		s.logger.Error("toggle factory persist failed", zap.String("factory_id", id), zap.Error(err))
		return FactoryResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("toggle factory commit failed", zap.String("factory_id", id), zap.Error(err))
		return FactoryResponse{}, err
	}

	s.options.invalidate(ctx, f.TenantID.String())
	s.guard.Record(ctx, &actor, f.TenantID.String(), access.OpToggle, id, map[string]any{"is_active": f.IsActive})
	s.logger.Info("toggle factory success", zap.String("factory_id", id), zap.Bool("is_active", f.IsActive))
	return mapToResponse(*f), nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete factory begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	actor, f, err := s.lock(ctx, qtx, actorID, id)
	if err != nil {
		return err
	}
	if err := s.guard.AuthorizeMutation(actor, access.OpDelete, f); err != nil {
		return err
	}

	users, err := qtx.CountActiveUsers(ctx, id)
	if err != nil {
		s.logger.Error("count factory users failed", zap.String("factory_id", id), zap.Error(err))
		return err
	}
	if users > 0 {
		s.logger.Warn("delete factory rejected: active users",
			zap.String("factory_id", id),
			zap.Int64("users", users),
		)
		return factoryerrors.ErrFactoryHasActiveUsers.WithDetail("active_users", users)
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete factory persist failed", zap.String("factory_id", id), zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.options.invalidate(ctx, f.TenantID.String())
	s.guard.Record(ctx, &actor, f.TenantID.String(), access.OpDelete, id, map[string]any{"code": f.Code})
	s.logger.Info("delete factory success", zap.String("factory_id", id))
	return nil
}

func (s *service) GetOptions(ctx context.Context, actorID, tenantID string) ([]OptionResponse, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, access.OpRead); err != nil {
		return nil, err
	}

	target, err := s.targetTenant(ctx, actor, tenantID)
	if err != nil {
		return nil, err
	}

	opts, err := s.options.get(ctx, target, func(ctx context.Context) ([]OptionResponse, error) {
		factories, err := s.repo.FindOptions(ctx, target)
		if err != nil {
			s.logger.Error("load factory options failed", zap.String("tenant_id", target), zap.Error(err))
			return nil, err
		}
		return lo.Map(factories, func(f Factory, _ int) OptionResponse {
			return mapToOption(f)
		}), nil
	})
	if err != nil {
		return nil, err
	}

	// The cache is per tenant; pinned actors see only their own factory.
	if pinned, ok := actor.PinnedFactory(); ok {
		opts = lo.Filter(opts, func(o OptionResponse, _ int) bool { return o.ID == pinned })
	}
	return opts, nil
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
		s.logger.Error("factory stats failed", zap.Error(err))
		return StatsResponse{}, err
	}
	return mapToStatsResponse(st), nil
}
