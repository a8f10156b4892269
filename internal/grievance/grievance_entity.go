package grievance

import (
	"time"

	"github.com/google/uuid"
)

type Grievance struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index:idx_grievances_tenant_factory_status"`
	FactoryID uuid.UUID `gorm:"type:uuid;not null;index:idx_grievances_tenant_factory_status"`
	Reference string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_grievances_tenant_reference"`

	Title       string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text;not null"`
	Category    string `gorm:"type:varchar(20);not null"`
	Severity    string `gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	Status      string `gorm:"type:varchar(20);not null;default:'SUBMITTED';index:idx_grievances_tenant_factory_status"`

	IsAnonymous bool       `gorm:"not null;default:false"`
	ReportedBy  *uuid.UUID `gorm:"type:uuid"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid"`

	Resolution *string `gorm:"type:text"`
	AssignedAt *time.Time
	ResolvedAt *time.Time
	ClosedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g *Grievance) EntityID() string       { return g.ID.String() }
func (g *Grievance) ScopeTenantID() string  { return g.TenantID.String() }
func (g *Grievance) ScopeFactoryID() string { return g.FactoryID.String() }
