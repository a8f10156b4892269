package audit

type CreateAuditRequest struct {
	FactoryID     string   `json:"factory_id" binding:"required,uuid"`
	Title         string   `json:"title" binding:"required,max=255"`
	Type          string   `json:"type" binding:"required,oneof=INTERNAL EXTERNAL CERTIFICATION FOLLOW_UP"`
	ScheduledDate string   `json:"scheduled_date" binding:"required"`
	LeadAuditorID *string  `json:"lead_auditor_id" binding:"omitempty,uuid"`
	AuditorIDs    []string `json:"auditor_ids" binding:"omitempty,dive,uuid"`
	WitnessIDs    []string `json:"witness_ids" binding:"omitempty,dive,uuid"`
}

type UpdateAuditRequest struct {
	Title         *string  `json:"title" binding:"omitempty,max=255"`
	Type          *string  `json:"type" binding:"omitempty,oneof=INTERNAL EXTERNAL CERTIFICATION FOLLOW_UP"`
	ScheduledDate *string  `json:"scheduled_date"`
	LeadAuditorID *string  `json:"lead_auditor_id" binding:"omitempty,uuid"`
	AuditorIDs    []string `json:"auditor_ids" binding:"omitempty,dive,uuid"`
	WitnessIDs    []string `json:"witness_ids" binding:"omitempty,dive,uuid"`
}

// CompleteAuditRequest fields are checked in the service, after the
// lifecycle check, so binding only enforces the shape.
type CompleteAuditRequest struct {
	Score           *float64 `json:"score"`
	Summary         string   `json:"summary"`
	Recommendations string   `json:"recommendations"`
}

type ListAuditQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	FactoryID string `form:"factory_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=PLANNED IN_PROGRESS COMPLETED"`
	Type      string `form:"type" binding:"omitempty,oneof=INTERNAL EXTERNAL CERTIFICATION FOLLOW_UP"`
	Search    string `form:"search"`
}

type AuditResponse struct {
	ID              string   `json:"id"`
	TenantID        string   `json:"tenant_id"`
	FactoryID       string   `json:"factory_id"`
	Reference       string   `json:"reference"`
	Title           string   `json:"title"`
	Type            string   `json:"type"`
	Status          string   `json:"status"`
	ScheduledDate   string   `json:"scheduled_date"`
	ActualStartDate *string  `json:"actual_start_date,omitempty"`
	ActualEndDate   *string  `json:"actual_end_date,omitempty"`
	Score           *float64 `json:"score,omitempty"`
	Summary         *string  `json:"summary,omitempty"`
	Recommendations *string  `json:"recommendations,omitempty"`
	LeadAuditorID   *string  `json:"lead_auditor_id,omitempty"`
	AuditorIDs      []string `json:"auditor_ids"`
	WitnessIDs      []string `json:"witness_ids"`
	CreatedBy       string   `json:"created_by"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type StatsResponse struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
	ByType       map[string]int64 `json:"by_type"`
	Completed    int64            `json:"completed"`
	Passed       int64            `json:"passed"`
	PassRate     float64          `json:"pass_rate"`
	AverageScore float64          `json:"average_score"`
	Overdue      int64            `json:"overdue"`
}
