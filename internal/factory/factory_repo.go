package factory

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/dbtx"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	Search   string
	IsActive *bool
}

type Stats struct {
	Total          int64
	Active         int64
	TotalEmployees int64
	ByCountry      map[string]int64
}

//go:generate mockgen -source=factory_repo.go -destination=mock/factory_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, f *Factory) error
	FindAll(ctx context.Context, scope access.Scope, filter ListFilter, page pagination.Params) ([]Factory, int64, error)
	FindByID(ctx context.Context, scope access.Scope, id string) (*Factory, error)
	FindByIDForUpdate(ctx context.Context, scope access.Scope, id string) (*Factory, error)
	Update(ctx context.Context, f *Factory) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	// ExistsActiveName is case-insensitive; excludeID skips the row being edited.
	ExistsActiveName(ctx context.Context, tenantID, name, excludeID string) (bool, error)
	ExistsCode(ctx context.Context, tenantID, code, excludeID string) (bool, error)
	TenantExists(ctx context.Context, tenantID string) (bool, error)
	CountActiveUsers(ctx context.Context, factoryID string) (int64, error)
	FindOptions(ctx context.Context, tenantID string) ([]Factory, error)
	Stats(ctx context.Context, scope access.Scope) (Stats, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) scoped(ctx context.Context, scope access.Scope) *gorm.DB {
	return r.conn(ctx).Model(&Factory{}).Scopes(tenant.Scope(scope, scopeColumns))
}

func (r *repository) Create(ctx context.Context, f *Factory) error {
	return r.conn(ctx).Create(f).Error
}

func (r *repository) FindAll(ctx context.Context, scope access.Scope, filter ListFilter, page pagination.Params) ([]Factory, int64, error) {
	db := r.scoped(ctx, scope)
	if filter.IsActive != nil {
		db = db.Where("factories.is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("(factories.name ILIKE ? OR factories.code ILIKE ?)", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var factories []Factory
	err := db.
		Order("factories.name ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&factories).Error
	return factories, total, err
}

func (r *repository) FindByID(ctx context.Context, scope access.Scope, id string) (*Factory, error) {
	var f Factory
	err := r.scoped(ctx, scope).First(&f, "factories.id = ?", id).Error
	return &f, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, scope access.Scope, id string) (*Factory, error) {
	var f Factory
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(scope, scopeColumns)).
		First(&f, "factories.id = ?", id).Error
	return &f, err
}

func (r *repository) Update(ctx context.Context, f *Factory) error {
	return r.conn(ctx).Save(f).Error
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) error {
	return r.conn(ctx).
		Model(&Factory{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&Factory{}, "id = ?", id).Error
}

func (r *repository) ExistsActiveName(ctx context.Context, tenantID, name, excludeID string) (bool, error) {
	db := r.conn(ctx).
		Model(&Factory{}).
		Where("tenant_id = ?", tenantID).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Where("is_active = ?", true)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	var n int64
	err := db.Count(&n).Error
	return n > 0, err
}

func (r *repository) ExistsCode(ctx context.Context, tenantID, code, excludeID string) (bool, error) {
	db := r.conn(ctx).
		Model(&Factory{}).
		Where("tenant_id = ?", tenantID).
		Where("code = ?", code)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	var n int64
	err := db.Count(&n).Error
	return n > 0, err
}

func (r *repository) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	var n int64
	err := r.conn(ctx).
		Model(&tenant.Tenant{}).
		Where("id = ?", tenantID).
		Where("is_active = ?", true).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) CountActiveUsers(ctx context.Context, factoryID string) (int64, error) {
	var n int64
	err := r.conn(ctx).
		Table("users").
		Where("factory_id = ?", factoryID).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Count(&n).Error
	return n, err
}

func (r *repository) FindOptions(ctx context.Context, tenantID string) ([]Factory, error) {
	var factories []Factory
	err := r.conn(ctx).
		Select("id", "tenant_id", "name", "code").
		Where("tenant_id = ?", tenantID).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&factories).Error
	return factories, err
}

func (r *repository) Stats(ctx context.Context, scope access.Scope) (Stats, error) {
	var agg struct {
		Total          int64
		Active         int64
		TotalEmployees int64
	}
	err := r.scoped(ctx, scope).Select(`
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE factories.is_active) AS active,
		COALESCE(SUM(factories.employee_count), 0) AS total_employees
	`).Scan(&agg).Error
	if err != nil {
		return Stats{}, err
	}

	var byCountry []struct {
		Key   string
		Count int64
	}
	if err := r.scoped(ctx, scope).Select("factories.country AS key, COUNT(*) AS count").Group("factories.country").Scan(&byCountry).Error; err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Total:          agg.Total,
		Active:         agg.Active,
		TotalEmployees: agg.TotalEmployees,
		ByCountry:      map[string]int64{},
	}
	for _, g := range byCountry {
		stats.ByCountry[g.Key] = g.Count
	}
	return stats, nil
}
