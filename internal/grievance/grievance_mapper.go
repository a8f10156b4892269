package grievance

import (
	"time"

	"github.com/google/uuid"
)

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

func formatUUID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}

func mapToResponse(g Grievance) GrievanceResponse {
	return GrievanceResponse{
		ID:          g.ID.String(),
		TenantID:    g.TenantID.String(),
		FactoryID:   g.FactoryID.String(),
		Reference:   g.Reference,
		Title:       g.Title,
		Description: g.Description,
		Category:    g.Category,
		Severity:    g.Severity,
		Status:      g.Status,
		IsAnonymous: g.IsAnonymous,
		ReportedBy:  formatUUID(g.ReportedBy),
		AssignedTo:  formatUUID(g.AssignedTo),
		Resolution:  g.Resolution,
		AssignedAt:  formatTime(g.AssignedAt),
		ResolvedAt:  formatTime(g.ResolvedAt),
		ClosedAt:    formatTime(g.ClosedAt),
		CreatedAt:   g.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   g.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func zeroFilled(keys []string, counts map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		out[k] = counts[k]
	}
	return out
}

func mapToStatsResponse(st Stats) StatsResponse {
	resp := StatsResponse{
		Total:      st.Total,
		ByStatus:   zeroFilled(Statuses, st.ByStatus),
		ByCategory: zeroFilled(Categories, st.ByCategory),
		BySeverity: zeroFilled(Severities, st.BySeverity),
		Anonymous:  st.Anonymous,
	}
	for _, status := range OpenStatuses {
		resp.Open += resp.ByStatus[status]
	}
	return resp
}
