package document

import (
	"time"

	documenterrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/document/errors"
)

const dateLayout = "2006-01-02"

func parseOptionalDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *v)
	if err != nil {
		return nil, documenterrors.ErrInvalidExpiresAt
	}
	t = t.UTC()
	return &t, nil
}

func formatTime(t *time.Time, layout string) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(layout)
	return &v
}

func mapToResponse(d Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID.String(),
		TenantID:    d.TenantID.String(),
		FactoryID:   d.FactoryID.String(),
		Reference:   d.Reference,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Status:      d.Status,
		Version:     d.Version,
		FileURL:     d.FileURL,
		PublishedAt: formatTime(d.PublishedAt, time.RFC3339),
		ArchivedAt:  formatTime(d.ArchivedAt, time.RFC3339),
		ExpiresAt:   formatTime(d.ExpiresAt, dateLayout),
		IsActive:    d.IsActive,
		OwnerID:     d.OwnerID.String(),
		CreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToStatsResponse(st Stats) StatsResponse {
	resp := StatsResponse{
		Total:        st.Total,
		ByStatus:     make(map[string]int64, len(Statuses)),
		ByCategory:   make(map[string]int64, len(Categories)),
		ExpiringSoon: st.ExpiringSoon,
		Expired:      st.Expired,
	}
	for _, status := range Statuses {
		resp.ByStatus[status] = st.ByStatus[status]
	}
	for _, c := range Categories {
		resp.ByCategory[c] = st.ByCategory[c]
	}
	return resp
}

