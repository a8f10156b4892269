package notification

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	// CreateIgnoreDuplicates inserts rows, skipping any (event, role) pair
	// already stored, and returns how many were new.
	CreateIgnoreDuplicates(ctx context.Context, rows []Notification) (int64, error)
	FindByTenantAndRole(ctx context.Context, tenantID, role string, limit int) ([]Notification, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateIgnoreDuplicates(ctx context.Context, rows []Notification) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "recipient_role"}},
			DoNothing: true,
		}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

func (r *repository) FindByTenantAndRole(ctx context.Context, tenantID, role string, limit int) ([]Notification, error) {
	var rows []Notification
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("recipient_role = ?", role).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
