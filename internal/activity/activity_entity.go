package activity

import (
	"time"

	"github.com/google/uuid"
)

type ActivityLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   *uuid.UUID `gorm:"type:uuid;index:idx_activity_logs_tenant_resource"`
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	Resource   string     `gorm:"type:varchar(30);not null;index:idx_activity_logs_tenant_resource"`
	ResourceID string     `gorm:"type:varchar(64);not null;index:idx_activity_logs_tenant_resource"`
	Action     string     `gorm:"type:varchar(30);not null"`
	Metadata   []byte     `gorm:"type:jsonb"`
	CreatedAt  time.Time
}
