package factory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory is both a scoped entity and the second isolation tier, so its
// factory scope column is its own id.
type Factory struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index:idx_factories_tenant"`

	Name          string  `gorm:"type:varchar(255);not null"`
	Code          string  `gorm:"type:varchar(50);not null"`
	Address       *string `gorm:"type:text"`
	Country       string  `gorm:"type:varchar(100);not null"`
	Industry      *string `gorm:"type:varchar(100)"`
	EmployeeCount int     `gorm:"not null;default:0"`
	IsActive      bool    `gorm:"not null;default:true"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_factories_deleted_at"`
}

func (f *Factory) EntityID() string       { return f.ID.String() }
func (f *Factory) ScopeTenantID() string  { return f.TenantID.String() }
func (f *Factory) ScopeFactoryID() string { return f.ID.String() }
