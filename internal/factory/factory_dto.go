package factory

type CreateFactoryRequest struct {
	// TenantID is honoured for SuperAdmin only; everyone else creates in
	// their own tenant.
	TenantID      string  `json:"tenant_id" binding:"omitempty,uuid"`
	Name          string  `json:"name" binding:"required,max=255"`
	Code          string  `json:"code" binding:"required,max=50"`
	Address       *string `json:"address"`
	Country       string  `json:"country" binding:"required,max=100"`
	Industry      *string `json:"industry" binding:"omitempty,max=100"`
	EmployeeCount int     `json:"employee_count" binding:"gte=0"`
}

type UpdateFactoryRequest struct {
	Name          *string `json:"name" binding:"omitempty,max=255"`
	Code          *string `json:"code" binding:"omitempty,max=50"`
	Address       *string `json:"address"`
	Country       *string `json:"country" binding:"omitempty,max=100"`
	Industry      *string `json:"industry" binding:"omitempty,max=100"`
	EmployeeCount *int    `json:"employee_count" binding:"omitempty,gte=0"`
}

type ListFactoryQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
}

type FactoryResponse struct {
	ID            string  `json:"id"`
	TenantID      string  `json:"tenant_id"`
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	Address       *string `json:"address,omitempty"`
	Country       string  `json:"country"`
	Industry      *string `json:"industry,omitempty"`
	EmployeeCount int     `json:"employee_count"`
	IsActive      bool    `json:"is_active"`
	CreatedBy     string  `json:"created_by"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type OptionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type StatsResponse struct {
	Total          int64            `json:"total"`
	Active         int64            `json:"active"`
	Inactive       int64            `json:"inactive"`
	TotalEmployees int64            `json:"total_employees"`
	ByCountry      map[string]int64 `json:"by_country"`
}
