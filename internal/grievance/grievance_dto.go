package grievance

type CreateGrievanceRequest struct {
	FactoryID   string `json:"factory_id" binding:"required,uuid"`
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required,oneof=WAGES SAFETY HARASSMENT DISCRIMINATION WORKING_HOURS OTHER"`
	Severity    string `json:"severity" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	IsAnonymous bool   `json:"is_anonymous"`
}

type AssignGrievanceRequest struct {
	AssignedTo string `json:"assigned_to" binding:"required,uuid"`
}

// ResolveGrievanceRequest.Resolution is checked in the service, after the
// lifecycle check.
type ResolveGrievanceRequest struct {
	Resolution string `json:"resolution"`
}

type ListGrievanceQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	FactoryID  string `form:"factory_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=SUBMITTED ASSIGNED RESOLVED CLOSED"`
	Category   string `form:"category" binding:"omitempty,oneof=WAGES SAFETY HARASSMENT DISCRIMINATION WORKING_HOURS OTHER"`
	Severity   string `form:"severity" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	AssignedTo string `form:"assigned_to" binding:"omitempty,uuid"`
}

type GrievanceResponse struct {
	ID          string  `json:"id"`
	TenantID    string  `json:"tenant_id"`
	FactoryID   string  `json:"factory_id"`
	Reference   string  `json:"reference"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Severity    string  `json:"severity"`
	Status      string  `json:"status"`
	IsAnonymous bool    `json:"is_anonymous"`
	ReportedBy  *string `json:"reported_by"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
	Resolution  *string `json:"resolution,omitempty"`
	AssignedAt  *string `json:"assigned_at,omitempty"`
	ResolvedAt  *string `json:"resolved_at,omitempty"`
	ClosedAt    *string `json:"closed_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// SubmissionResponse is what an anonymous reporter gets back: enough to
// quote the case, nothing about who handles it.
type SubmissionResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type StatsResponse struct {
	Total      int64            `json:"total"`
	Open       int64            `json:"open"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByCategory map[string]int64 `json:"by_category"`
	BySeverity map[string]int64 `json:"by_severity"`
	Anonymous  int64            `json:"anonymous"`
}
