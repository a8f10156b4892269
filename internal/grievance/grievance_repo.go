package grievance

import (
	"context"
	"database/sql"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/dbtx"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/pagination"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/tenant"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	Status     string
	Category   string
	Severity   string
	AssignedTo string
}

type Stats struct {
	Total      int64
	ByStatus   map[string]int64
	ByCategory map[string]int64
	BySeverity map[string]int64
	Anonymous  int64
}

//go:generate mockgen -source=grievance_repo.go -destination=mock/grievance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, g *Grievance) error
	FindAll(ctx context.Context, scope access.Scope, filter ListFilter, page pagination.Params) ([]Grievance, int64, error)
	FindByID(ctx context.Context, scope access.Scope, id string) (*Grievance, error)
	FindByIDForUpdate(ctx context.Context, scope access.Scope, id string) (*Grievance, error)
	TransitionStatus(ctx context.Context, id, fromStatus string, updates map[string]any) (int64, error)
	Delete(ctx context.Context, id string) error
	FindFactoryTenant(ctx context.Context, factoryID string) (string, error)
	// CountEligibleAssignees counts active committee or admin users of the
	// tenant who are unpinned or pinned to factoryID.
	CountEligibleAssignees(ctx context.Context, tenantID, factoryID, userID string) (int64, error)
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
	return r.conn(ctx).Model(&Grievance{}).Scopes(tenant.Scope(scope, scopeColumns))
}

func (r *repository) Create(ctx context.Context, g *Grievance) error {
	return r.conn(ctx).Create(g).Error
}

func (r *repository) FindAll(ctx context.Context, scope access.Scope, filter ListFilter, page pagination.Params) ([]Grievance, int64, error) {
	db := r.scoped(ctx, scope)
	if filter.Status != "" {
		db = db.Where("grievances.status = ?", filter.Status)
	}
	if filter.Category != "" {
		db = db.Where("grievances.category = ?", filter.Category)
	}
	if filter.Severity != "" {
		db = db.Where("grievances.severity = ?", filter.Severity)
	}
	if filter.AssignedTo != "" {
		db = db.Where("grievances.assigned_to = ?", filter.AssignedTo)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Grievance
	err := db.
		Order("grievances.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) FindByID(ctx context.Context, scope access.Scope, id string) (*Grievance, error) {
	var g Grievance
	err := r.conn(ctx).
		Scopes(tenant.Scope(scope, scopeColumns)).
		First(&g, "grievances.id = ?", id).Error
	return &g, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, scope access.Scope, id string) (*Grievance, error) {
	var g Grievance
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(scope, scopeColumns)).
		First(&g, "grievances.id = ?", id).Error
	return &g, err
}

func (r *repository) TransitionStatus(ctx context.Context, id, fromStatus string, updates map[string]any) (int64, error) {
	res := r.conn(ctx).
		Model(&Grievance{}).
		Where("id = ?", id).
		Where("status = ?", fromStatus).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&Grievance{}, "id = ?", id).Error
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

func (r *repository) CountEligibleAssignees(ctx context.Context, tenantID, factoryID, userID string) (int64, error) {
	roles := lo.Map(AssigneeRoles, func(role access.Role, _ int) string { return string(role) })

	var count int64
	err := r.conn(ctx).
		Table("users").
		Where("id = ?", userID).
		Where("tenant_id = ?", tenantID).
		Where("role IN ?", roles).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Where("(factory_id IS NULL OR factory_id = ?)", factoryID).
		Count(&count).Error
	return count, err
}

type groupCount struct {
	Key   string
	Count int64
}

func (r *repository) groupBy(ctx context.Context, scope access.Scope, column string) (map[string]int64, error) {
	var rows []groupCount
	err := r.scoped(ctx, scope).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, g := range rows {
		out[g.Key] = g.Count
	}
	return out, nil
}

func (r *repository) Stats(ctx context.Context, scope access.Scope) (Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.ByStatus, err = r.groupBy(ctx, scope, "grievances.status"); err != nil {
		return Stats{}, err
	}
	if stats.ByCategory, err = r.groupBy(ctx, scope, "grievances.category"); err != nil {
		return Stats{}, err
	}
	if stats.BySeverity, err = r.groupBy(ctx, scope, "grievances.severity"); err != nil {
		return Stats{}, err
	}
	for _, n := range stats.ByStatus {
		stats.Total += n
	}
	if err := r.scoped(ctx, scope).Where("grievances.is_anonymous = ?", true).Count(&stats.Anonymous).Error; err != nil {
		return Stats{}, err
	}
	return stats, nil
}
