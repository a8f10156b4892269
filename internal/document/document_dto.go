package document

type CreateDocumentRequest struct {
	FactoryID   string  `json:"factory_id" binding:"required,uuid"`
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description"`
	Category    string  `json:"category" binding:"required,oneof=POLICY PROCEDURE CERTIFICATE RECORD REPORT"`
	FileURL     *string `json:"file_url" binding:"omitempty,url"`
	ExpiresAt   *string `json:"expires_at"`
}

type UpdateDocumentRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Category    *string `json:"category" binding:"omitempty,oneof=POLICY PROCEDURE CERTIFICATE RECORD REPORT"`
	FileURL     *string `json:"file_url" binding:"omitempty,url"`
	ExpiresAt   *string `json:"expires_at"`
}

type ListDocumentQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	FactoryID string `form:"factory_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
	Category  string `form:"category" binding:"omitempty,oneof=POLICY PROCEDURE CERTIFICATE RECORD REPORT"`
	Search    string `form:"search"`
}

type DocumentResponse struct {
	ID          string  `json:"id"`
	TenantID    string  `json:"tenant_id"`
	FactoryID   string  `json:"factory_id"`
	Reference   string  `json:"reference"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Version     int     `json:"version"`
	FileURL     *string `json:"file_url,omitempty"`
	PublishedAt *string `json:"published_at,omitempty"`
	ArchivedAt  *string `json:"archived_at,omitempty"`
	ExpiresAt   *string `json:"expires_at,omitempty"`
	IsActive    bool    `json:"is_active"`
	OwnerID     string  `json:"owner_id"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type StatsResponse struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
	ByCategory   map[string]int64 `json:"by_category"`
	ExpiringSoon int64            `json:"expiring_soon"`
	Expired      int64            `json:"expired"`
}
