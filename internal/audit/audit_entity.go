package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Audit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index:idx_audits_tenant_factory_status"`
	FactoryID uuid.UUID `gorm:"type:uuid;not null;index:idx_audits_tenant_factory_status"`
	Reference string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_audits_tenant_reference"`

	Title         string    `gorm:"type:varchar(255);not null"`
	Type          string    `gorm:"type:varchar(20);not null;default:'INTERNAL'"`
	Status        string    `gorm:"type:varchar(20);not null;default:'PLANNED';index:idx_audits_tenant_factory_status"`
	ScheduledDate time.Time `gorm:"type:date;not null"`

	ActualStartDate *time.Time
	ActualEndDate   *time.Time
	Score           *float64 `gorm:"type:numeric(5,2)"`
	Summary         *string  `gorm:"type:text"`
	Recommendations *string  `gorm:"type:text"`

	LeadAuditorID *uuid.UUID     `gorm:"type:uuid"`
	AuditorIDs    pq.StringArray `gorm:"type:uuid[];not null;default:'{}'"`
	WitnessIDs    pq.StringArray `gorm:"type:uuid[];not null;default:'{}'"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_audits_deleted_at"`
}

func (a *Audit) EntityID() string       { return a.ID.String() }
func (a *Audit) ScopeTenantID() string  { return a.TenantID.String() }
func (a *Audit) ScopeFactoryID() string { return a.FactoryID.String() }

// ParticipantIDs is everyone an Auditor can see the audit through: the
// creator, the lead and assigned auditors, and witnesses.
func (a *Audit) ParticipantIDs() []string {
	ids := make([]string, 0, 2+len(a.AuditorIDs)+len(a.WitnessIDs))
	ids = append(ids, a.CreatedBy.String())
	if a.LeadAuditorID != nil {
		ids = append(ids, a.LeadAuditorID.String())
	}
	ids = append(ids, a.AuditorIDs...)
	ids = append(ids, a.WitnessIDs...)
	return ids
}
