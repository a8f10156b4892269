package audit

import (
	"math"
	"time"

	auditerrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/audit/errors"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, auditerrors.ErrInvalidScheduledDate
	}
	return t.UTC(), nil
}

func parseOptionalUUID(v *string) *uuid.UUID {
	if v == nil || *v == "" {
		return nil
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		return nil
	}
	return &id
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

func mapToResponse(a Audit) AuditResponse {
	resp := AuditResponse{
		ID:              a.ID.String(),
		TenantID:        a.TenantID.String(),
		FactoryID:       a.FactoryID.String(),
		Reference:       a.Reference,
		Title:           a.Title,
		Type:            a.Type,
		Status:          a.Status,
		ScheduledDate:   a.ScheduledDate.Format(dateLayout),
		ActualStartDate: formatTime(a.ActualStartDate),
		ActualEndDate:   formatTime(a.ActualEndDate),
		Score:           a.Score,
		Summary:         a.Summary,
		Recommendations: a.Recommendations,
		AuditorIDs:      []string(a.AuditorIDs),
		WitnessIDs:      []string(a.WitnessIDs),
		CreatedBy:       a.CreatedBy.String(),
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       a.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if resp.AuditorIDs == nil {
		resp.AuditorIDs = []string{}
	}
	if resp.WitnessIDs == nil {
		resp.WitnessIDs = []string{}
	}
	if a.LeadAuditorID != nil {
		v := a.LeadAuditorID.String()
		resp.LeadAuditorID = &v
	}
	return resp
}

func mapToStatsResponse(st Stats) StatsResponse {
	resp := StatsResponse{
		Total:        st.Total,
		ByStatus:     map[string]int64{},
		ByType:       map[string]int64{},
		Completed:    st.Completed,
		Passed:       st.Passed,
		AverageScore: round2(st.AverageScore),
		Overdue:      st.Overdue,
	}
	for _, status := range Statuses {
		resp.ByStatus[status] = st.ByStatus[status]
	}
	for _, t := range Types {
		resp.ByType[t] = st.ByType[t]
	}
	if st.Completed > 0 {
		resp.PassRate = round2(float64(st.Passed) / float64(st.Completed) * 100)
	}
	return resp
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
