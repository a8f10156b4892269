package tenant

import (
	"database/sql"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"

	"gorm.io/gorm"
)

// Columns names the columns an access.Scope is translated onto.
// Participation is an OR'd SQL fragment that may reference @actor.
type Columns struct {
	Tenant        string
	Factory       string
	Participation string
}

var Default = Columns{Tenant: "tenant_id", Factory: "factory_id"}

// Scope applies the access predicate s as WHERE clauses.
func Scope(s access.Scope, cols Columns) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !s.Global {
			db = db.Where(cols.Tenant+" = ?", s.TenantID)
		}
		if s.FactoryID != "" && cols.Factory != "" {
			db = db.Where(cols.Factory+" = ?", s.FactoryID)
		}
		if s.ParticipantID != "" && cols.Participation != "" {
			db = db.Where("("+cols.Participation+")", sql.Named("actor", s.ParticipantID))
		}
		return db
	}
}
