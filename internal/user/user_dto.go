package user

type CreateUserRequest struct {
	// TenantID is honoured for SuperAdmin only.
	TenantID  string  `json:"tenant_id" binding:"omitempty,uuid"`
	FactoryID *string `json:"factory_id" binding:"omitempty,uuid"`
	Name      string  `json:"name" binding:"required,max=255"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	Role      string  `json:"role" binding:"required,oneof=SUPER_ADMIN TENANT_ADMIN FACTORY_ADMIN HR_STAFF GRIEVANCE_COMMITTEE AUDITOR ANALYTICS_USER WORKER"`
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type ListUserQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Role      string `form:"role"`
	FactoryID string `form:"factory_id" binding:"omitempty,uuid"`
	Search    string `form:"search"`
}

type UserResponse struct {
	ID        string  `json:"id"`
	TenantID  string  `json:"tenant_id"`
	FactoryID *string `json:"factory_id,omitempty"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
}
