package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the stored principal. Role, tenant and factory are re-read on
// every request; nothing here is trusted from a token.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index"`
	FactoryID *uuid.UUID     `gorm:"column:factory_id;type:uuid;index"`
	Name      string         `gorm:"column:name;type:varchar(255);not null"`
	Role      string         `gorm:"column:role;type:varchar(50);not null"`
	Email     string         `gorm:"column:email;type:text;not null;uniqueIndex:uq_users_email"`
	Password  string         `gorm:"column:password;type:text;not null"`
	IsActive  bool           `gorm:"column:is_active;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (u *User) EntityID() string      { return u.ID.String() }
func (u *User) ScopeTenantID() string { return u.TenantID.String() }
func (u *User) ScopeFactoryID() string {
	if u.FactoryID == nil {
		return ""
	}
	return u.FactoryID.String()
}
