package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/dbtx"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	Status string
	Type   string
	Search string
}

// Stats is the raw aggregation; ratios are derived in the service.
type Stats struct {
	Total        int64
	ByStatus     map[string]int64
	ByType       map[string]int64
	Completed    int64
	Passed       int64
	AverageScore float64
	Overdue      int64
}

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Audit) error
	FindAll(ctx context.Context, scope access.Scope, filter ListFilter, page pagination.Params) ([]Audit, int64, error)
	FindByID(ctx context.Context, scope access.Scope, id string) (*Audit, error)
	FindByIDForUpdate(ctx context.Context, scope access.Scope, id string) (*Audit, error)
	Update(ctx context.Context, a *Audit) error
	// TransitionStatus applies updates only while the row is still in
	// fromStatus and returns the number of rows changed.
	TransitionStatus(ctx context.Context, id, fromStatus string, updates map[string]any) (int64, error)
	Delete(ctx context.Context, id string) error
	FindFactoryTenant(ctx context.Context, factoryID string) (string, error)
	CountActiveAuditors(ctx context.Context, tenantID string, ids []string) (int64, error)
	CountActiveTenantUsers(ctx context.Context, tenantID string, ids []string) (int64, error)
	Stats(ctx context.Context, scope access.Scope, passThreshold float64, now time.Time) (Stats, error)
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

func (r *repository) Create(ctx context.Context, a *Audit) error {
	return r.conn(ctx).Create(a).Error
}

func (r *repository) FindAll(ctx context.Context, scope access.Scope, filter ListFilter, page pagination.Params) ([]Audit, int64, error) {
	db := r.conn(ctx).
		Model(&Audit{}).
		Scopes(tenant.Scope(scope, scopeColumns))

	if filter.Status != "" {
		db = db.Where("audits.status = ?", filter.Status)
	}
	if filter.Type != "" {
		db = db.Where("audits.type = ?", filter.Type)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("(audits.title ILIKE ? OR audits.reference ILIKE ?)", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var audits []Audit
	err := db.
		Order("audits.scheduled_date DESC").
		Order("audits.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&audits).Error
	return audits, total, err
}

func (r *repository) FindByID(ctx context.Context, scope access.Scope, id string) (*Audit, error) {
	var a Audit
	err := r.conn(ctx).
		Scopes(tenant.Scope(scope, scopeColumns)).
		First(&a, "audits.id = ?", id).Error
	return &a, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, scope access.Scope, id string) (*Audit, error) {
	var a Audit
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(scope, scopeColumns)).
		First(&a, "audits.id = ?", id).Error
	return &a, err
}

func (r *repository) Update(ctx context.Context, a *Audit) error {
	return r.conn(ctx).Save(a).Error
}

func (r *repository) TransitionStatus(ctx context.Context, id, fromStatus string, updates map[string]any) (int64, error) {
	res := r.conn(ctx).
		Model(&Audit{}).
		Where("id = ?", id).
		Where("status = ?", fromStatus).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&Audit{}, "id = ?", id).Error
}

func (r *repository) FindFactoryTenant(ctx context.Context, factoryID string) (string, error) {
	var row struct{ TenantID string }
	err := r.conn(ctx).
		Table("factories").
		Select("tenant_id::text AS tenant_id").
		Where("id = ?", factoryID).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Take(&row).Error
	return row.TenantID, err
}

func (r *repository) CountActiveAuditors(ctx context.Context, tenantID string, ids []string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Table("users").
		Where("id IN ?", ids).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Where("(role = ? OR (role = ? AND tenant_id = ?))", string(access.RoleSuperAdmin), string(access.RoleAuditor), tenantID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountActiveTenantUsers(ctx context.Context, tenantID string, ids []string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Table("users").
		Where("id IN ?", ids).
		Where("tenant_id = ?", tenantID).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

type groupCount struct {
	Key   string
	Count int64
}

func (r *repository) Stats(ctx context.Context, scope access.Scope, passThreshold float64, now time.Time) (Stats, error) {
	base := func() *gorm.DB {
		return r.conn(ctx).Model(&Audit{}).Scopes(tenant.Scope(scope, scopeColumns))
	}

	stats := Stats{ByStatus: map[string]int64{}, ByType: map[string]int64{}}

	var byStatus []groupCount
	if err := base().Select("audits.status AS key, COUNT(*) AS count").Group("audits.status").Scan(&byStatus).Error; err != nil {
		return Stats{}, err
	}
	for _, g := range byStatus {
		stats.ByStatus[g.Key] = g.Count
		stats.Total += g.Count
	}

	var byType []groupCount
	if err := base().Select("audits.type AS key, COUNT(*) AS count").Group("audits.type").Scan(&byType).Error; err != nil {
		return Stats{}, err
	}
	for _, g := range byType {
		stats.ByType[g.Key] = g.Count
	}

	var agg struct {
		Completed    int64
		Passed       int64
		AverageScore float64
		Overdue      int64
	}
	err := base().Select(`
		COUNT(*) FILTER (WHERE audits.status = ?) AS completed,
		COUNT(*) FILTER (WHERE audits.status = ? AND audits.score >= ?) AS passed,
		COALESCE(AVG(audits.score) FILTER (WHERE audits.status = ?), 0) AS average_score,
		COUNT(*) FILTER (WHERE audits.status = ? AND audits.scheduled_date < ?) AS overdue
	`, StatusCompleted, StatusCompleted, passThreshold, StatusCompleted, StatusPlanned, now).
		Scan(&agg).Error
	if err != nil {
		return Stats{}, err
	}
	stats.Completed = agg.Completed
	stats.Passed = agg.Passed
	stats.AverageScore = agg.AverageScore
	stats.Overdue = agg.Overdue

	return stats, nil
}
