package user

import (
	"context"
	"errors"
	"strings"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/tenant"

	"gorm.io/gorm"
)

type ListFilter struct {
	Role   string
	Search string
}

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	// FindPrincipal returns nil, nil when no user has the id.
	FindPrincipal(ctx context.Context, id string) (*access.Principal, error)
	Create(ctx context.Context, u *User) error
	FindAll(ctx context.Context, scope access.Scope, filter ListFilter, page pagination.Params) ([]User, int64, error)
	FindByID(ctx context.Context, scope access.Scope, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	ExistsEmail(ctx context.Context, email string) (bool, error)
	FactoryInTenant(ctx context.Context, tenantID, factoryID string) (bool, error)
	TenantExists(ctx context.Context, tenantID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindPrincipal(ctx context.Context, id string) (*access.Principal, error) {
	var u User
	err := r.db.WithContext(ctx).
		Select("id", "tenant_id", "factory_id", "role", "is_active").
		First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toPrincipal(u), nil
}

func toPrincipal(u User) *access.Principal {
	p := &access.Principal{
		ID:       u.ID.String(),
		Role:     u.Role,
		TenantID: u.TenantID.String(),
		IsActive: u.IsActive,
	}
	if u.FactoryID != nil {
		f := u.FactoryID.String()
		p.FactoryID = &f
	}
	return p
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindAll(ctx context.Context, scope access.Scope, filter ListFilter, page pagination.Params) ([]User, int64, error) {
	db := r.db.WithContext(ctx).Model(&User{}).Scopes(tenant.Scope(scope, scopeColumns))
	if filter.Role != "" {
		db = db.Where("users.role = ?", filter.Role)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("(users.name ILIKE ? OR users.email ILIKE ?)", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	err := db.
		Order("users.email ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&users).Error
	return users, total, err
}

func (r *repository) FindByID(ctx context.Context, scope access.Scope, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(scope, scopeColumns)).
		First(&u, "users.id = ?", id).Error
	return &u, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "email = ?", strings.ToLower(email)).Error
	return &u, err
}

func (r *repository) Update(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *repository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("email = ?", strings.ToLower(email)).Count(&n).Error
	return n > 0, err
}

func (r *repository) FactoryInTenant(ctx context.Context, tenantID, factoryID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("factories").
		Where("id = ?", factoryID).
		Where("tenant_id = ?", tenantID).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Count(&n).Error
	return n > 0, err
}

func (r *repository) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&tenant.Tenant{}).
		Where("id = ?", tenantID).
		Where("is_active = ?", true).
		Count(&n).Error
	return n > 0, err
}
