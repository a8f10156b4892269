package document

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
	Status   string
	Category string
	Search   string
}

type Stats struct {
	Total        int64
	ByStatus     map[string]int64
	ByCategory   map[string]int64
	ExpiringSoon int64
	Expired      int64
}

//go:generate mockgen -source=document_repo.go -destination=mock/document_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, d *Document) error
	// FindAll and FindByID only return active (not soft-deleted) rows.
	FindAll(ctx context.Context, scope access.Scope, filter ListFilter, page pagination.Params) ([]Document, int64, error)
	FindByID(ctx context.Context, scope access.Scope, id string) (*Document, error)
	// FindByIDForUpdate locks the row whether or not it is active.
	FindByIDForUpdate(ctx context.Context, scope access.Scope, id string) (*Document, error)
	Update(ctx context.Context, d *Document) error
	TransitionStatus(ctx context.Context, id, fromStatus string, updates map[string]any) (int64, error)
	Deactivate(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
	FindFactoryTenant(ctx context.Context, factoryID string) (string, error)
	Stats(ctx context.Context, scope access.Scope, now time.Time) (Stats, error)
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

func (r *repository) active(ctx context.Context, scope access.Scope) *gorm.DB {
	return r.conn(ctx).
		Model(&Document{}).
		Scopes(tenant.Scope(scope, scopeColumns)).
		Where("documents.is_active = ?", true)
}

func (r *repository) Create(ctx context.Context, d *Document) error {
	return r.conn(ctx).Create(d).Error
}

func (r *repository) FindAll(ctx context.Context, scope access.Scope, filter ListFilter, page pagination.Params) ([]Document, int64, error) {
	db := r.active(ctx, scope)
	if filter.Status != "" {
		db = db.Where("documents.status = ?", filter.Status)
	}
	if filter.Category != "" {
		db = db.Where("documents.category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("(documents.title ILIKE ? OR documents.reference ILIKE ?)", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []Document
	err := db.
		Order("documents.updated_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&docs).Error
	return docs, total, err
}

func (r *repository) FindByID(ctx context.Context, scope access.Scope, id string) (*Document, error) {
	var d Document
	err := r.active(ctx, scope).First(&d, "documents.id = ?", id).Error
	return &d, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, scope access.Scope, id string) (*Document, error) {
	var d Document
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(scope, scopeColumns)).
		First(&d, "documents.id = ?", id).Error
	return &d, err
}

func (r *repository) Update(ctx context.Context, d *Document) error {
	return r.conn(ctx).Save(d).Error
}

func (r *repository) TransitionStatus(ctx context.Context, id, fromStatus string, updates map[string]any) (int64, error) {
	res := r.conn(ctx).
		Model(&Document{}).
		Where("id = ?", id).
		Where("status = ?", fromStatus).
		Where("is_active = ?", true).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	return r.conn(ctx).
		Model(&Document{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) Purge(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&Document{}, "id = ?", id).Error
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

type groupCount struct {
	Key   string
	Count int64
}

// expiringWindow is how far ahead ExpiringSoon looks.
const expiringWindow = 30 * 24 * time.Hour

func (r *repository) Stats(ctx context.Context, scope access.Scope, now time.Time) (Stats, error) {
	stats := Stats{ByStatus: map[string]int64{}, ByCategory: map[string]int64{}}

	var byStatus []groupCount
	if err := r.active(ctx, scope).Select("documents.status AS key, COUNT(*) AS count").Group("documents.status").Scan(&byStatus).Error; err != nil {
		return Stats{}, err
	}
	for _, g := range byStatus {
		stats.ByStatus[g.Key] = g.Count
		stats.Total += g.Count
	}

	var byCategory []groupCount
	if err := r.active(ctx, scope).Select("documents.category AS key, COUNT(*) AS count").Group("documents.category").Scan(&byCategory).Error; err != nil {
		return Stats{}, err
	}
	for _, g := range byCategory {
		stats.ByCategory[g.Key] = g.Count
	}

	var agg struct {
		ExpiringSoon int64
		Expired      int64
	}
	err := r.active(ctx, scope).Select(`
		COUNT(*) FILTER (WHERE documents.expires_at >= ? AND documents.expires_at < ?) AS expiring_soon,
		COUNT(*) FILTER (WHERE documents.expires_at < ?) AS expired
	`, now, now.Add(expiringWindow), now).
		Scan(&agg).Error
	if err != nil {
		return Stats{}, err
	}
	stats.ExpiringSoon = agg.ExpiringSoon
	stats.Expired = agg.Expired
	return stats, nil
}
