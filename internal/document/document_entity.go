package document

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index:idx_documents_tenant_factory_status"`
	FactoryID uuid.UUID `gorm:"type:uuid;not null;index:idx_documents_tenant_factory_status"`
	Reference string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_documents_tenant_reference"`

	Title       string  `gorm:"type:varchar(255);not null"`
	Description *string `gorm:"type:text"`
	Category    string  `gorm:"type:varchar(20);not null"`
	Status      string  `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_documents_tenant_factory_status"`
	Version     int     `gorm:"not null;default:1"`
	FileURL     *string `gorm:"type:text"`

	PublishedAt *time.Time
	ArchivedAt  *time.Time
	ExpiresAt   *time.Time `gorm:"type:date"`

	IsActive bool      `gorm:"not null;default:true"`
	OwnerID  uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Document) EntityID() string       { return d.ID.String() }
func (d *Document) ScopeTenantID() string  { return d.TenantID.String() }
func (d *Document) ScopeFactoryID() string { return d.FactoryID.String() }
