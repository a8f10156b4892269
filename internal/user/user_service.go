package user

import (
	"context"
	"strings"
	"time"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/contextutil"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"
	usererrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/user/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateUserRequest) (UserResponse, error)
	GetAll(ctx context.Context, actorID string, q ListUserQuery) (pagination.Result[UserResponse], error)
	GetByID(ctx context.Context, actorID, id string) (UserResponse, error)
	ToggleStatus(ctx context.Context, actorID, id string, isActive bool) (UserResponse, error)
	ChangePassword(ctx context.Context, actorID, currentPassword, newPassword string) error
}

type service struct {
	repo       Repository
	guard      *access.Guard[*User]
	bcryptCost int
	logger     *zap.Logger
}

func NewService(repo Repository, guard *access.Guard[*User], logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{
		repo:       repo,
		guard:      guard,
		bcryptCost: bcrypt.DefaultCost,
		logger:     l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateUserRequest) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("create user requested", zap.String("actor_id", actorID), zap.String("role", req.Role))

	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return UserResponse{}, err
	}
	if err := s.guard.Authorize(actor, access.OpCreate); err != nil {
		return UserResponse{}, err
	}

	role := access.Role(req.Role)
	if !role.Valid() {
		return UserResponse{}, apperror.Validation("role", "oneof")
	}
	if role == access.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return UserResponse{}, usererrors.ErrSuperAdminGrant
	}

	tenantID, err := s.targetTenant(ctx, actor, req.TenantID)
	if err != nil {
		return UserResponse{}, err
	}

	factoryID := lo.FromPtr(req.FactoryID)
	if role.FactoryScoped() && factoryID == "" {
		return UserResponse{}, usererrors.ErrFactoryRequired
	}
	if factoryID != "" {
		ok, err := s.repo.FactoryInTenant(ctx, tenantID, factoryID)
		if err != nil {
			return UserResponse{}, err
		}
		if !ok {
			return UserResponse{}, usererrors.ErrInvalidFactoryID
		}
	}
	if err := s.guard.AuthorizeCreate(actor, access.Target{TenantID: tenantID, FactoryID: factoryID}); err != nil {
		return UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := s.repo.ExistsEmail(ctx, email)
	if err != nil {
		return UserResponse{}, err
	}
	if taken {
		return UserResponse{}, usererrors.ErrUserAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		l.Error("hash password failed", zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		ID:       uuid.New(),
		TenantID: uuid.MustParse(tenantID),
		Name:     req.Name,
		Role:     role.String(),
		Email:    email,
		Password: string(hashed),
		IsActive: true,
	}
	if factoryID != "" {
		f := uuid.MustParse(factoryID)
		u.FactoryID = &f
	}

	if err := s.repo.Create(ctx, u); err != nil {
		mapped := mapRepositoryError(err)
		if mapped == err {
			l.Error("create user persist failed", zap.Error(err))
		}
		return UserResponse{}, mapped
	}

	s.guard.Record(ctx, &actor, tenantID, access.OpCreate, u.ID.String(), map[string]any{"role": u.Role})
	l.Info("create user success", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	return mapToResponse(*u), nil
}

func (s *service) targetTenant(ctx context.Context, actor access.Actor, requested string) (string, error) {
	if !actor.IsSuperAdmin() {
		if requested != "" && requested != actor.TenantID {
			return "", usererrors.ErrInvalidTenantID
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
		return "", usererrors.ErrInvalidTenantID
	}
	return requested, nil
}

func (s *service) GetAll(ctx context.Context, actorID string, q ListUserQuery) (pagination.Result[UserResponse], error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return pagination.Result[UserResponse]{}, err
	}
	scope, err := s.guard.ListScope(actor, access.OpRead, q.FactoryID)
	if err != nil {
		return pagination.Result[UserResponse]{}, err
	}

	page := pagination.Normalize(q.Page, q.Limit)
	users, total, err := s.repo.FindAll(ctx, scope, ListFilter{Role: q.Role, Search: q.Search}, page)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return pagination.Result[UserResponse]{}, err
	}

	return pagination.NewResult(lo.Map(users, func(u User, _ int) UserResponse {
		return mapToResponse(u)
	}), total, page), nil
}

func (s *service) load(ctx context.Context, actor access.Actor, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usererrors.ErrUserNotFound
	}
	u, err := s.repo.FindByID(ctx, s.guard.LookupScope(actor), id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return u, nil
}

func (s *service) GetByID(ctx context.Context, actorID, id string) (UserResponse, error) {
	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return UserResponse{}, err
	}
	u, err := s.load(ctx, actor, id)
	if err != nil {
		return UserResponse{}, err
	}
	if err := s.guard.AuthorizeRead(actor, u); err != nil {
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) ToggleStatus(ctx context.Context, actorID, id string, isActive bool) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return UserResponse{}, err
	}
	if err := s.guard.Authorize(actor, access.OpToggle); err != nil {
		return UserResponse{}, err
	}
	u, err := s.load(ctx, actor, id)
	if err != nil {
		return UserResponse{}, err
	}
	if err := s.guard.AuthorizeMutation(actor, access.OpToggle, u); err != nil {
		return UserResponse{}, err
	}
	if u.ID.String() == actor.ID && !isActive {
		return UserResponse{}, apperror.Validation("is_active", "self")
	}

	u.IsActive = isActive
	if err := s.repo.Update(ctx, u); err != nil {
		l.Error("update user status failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	s.guard.Record(ctx, &actor, u.TenantID.String(), access.OpToggle, id, map[string]any{"is_active": isActive})
	l.Info("update user status success", zap.String("user_id", id), zap.Bool("is_active", isActive))
	return mapToResponse(*u), nil
}

func (s *service) ChangePassword(ctx context.Context, actorID, currentPassword, newPassword string) error {
	l := contextutil.GetLogger(ctx, s.logger)

	actor, err := s.guard.Actor(ctx, actorID)
	if err != nil {
		return err
	}
	u, err := s.repo.FindByID(ctx, s.guard.LookupScope(actor), actor.ID)
	if err != nil {
		return mapRepositoryError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(currentPassword)); err != nil {
		return usererrors.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		l.Error("hash new password failed", zap.Error(err))
		return err
	}

	u.Password = string(hashed)
	if err := s.repo.Update(ctx, u); err != nil {
		l.Error("change password failed", zap.String("user_id", actor.ID), zap.Error(err))
		return err
	}
	return nil
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:        u.ID.String(),
		TenantID:  u.TenantID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
	if u.FactoryID != nil {
		f := u.FactoryID.String()
		resp.FactoryID = &f
	}
	return resp
}

