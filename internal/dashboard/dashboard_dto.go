package dashboard

import (
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/audit"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/document"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/factory"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/grievance"
)

type StatsResponse struct {
	ComplianceScore float64                 `json:"compliance_score"`
	Audits          audit.StatsResponse     `json:"audits"`
	Documents       document.StatsResponse  `json:"documents"`
	Grievances      grievance.StatsResponse `json:"grievances"`
	Factories       factory.StatsResponse   `json:"factories"`
}
