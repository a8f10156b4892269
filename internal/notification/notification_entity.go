package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one inbox row per event and recipient role.
type Notification struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_notifications_event_role"`
	RecipientRole string     `gorm:"type:varchar(30);not null;uniqueIndex:uq_notifications_event_role"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_tenant_role"`
	FactoryID     *uuid.UUID `gorm:"type:uuid"`
	Resource      string     `gorm:"type:varchar(30);not null"`
	ResourceID    uuid.UUID  `gorm:"type:uuid;not null"`
	EventType     string     `gorm:"type:varchar(50);not null"`
	CreatedAt     time.Time
}
