package factory

import "time"

func mapToResponse(f Factory) FactoryResponse {
	return FactoryResponse{
		ID:            f.ID.String(),
		TenantID:      f.TenantID.String(),
		Name:          f.Name,
		Code:          f.Code,
		Address:       f.Address,
		Country:       f.Country,
		Industry:      f.Industry,
		EmployeeCount: f.EmployeeCount,
		IsActive:      f.IsActive,
		CreatedBy:     f.CreatedBy.String(),
		CreatedAt:     f.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     f.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToOption(f Factory) OptionResponse {
	return OptionResponse{ID: f.ID.String(), Name: f.Name, Code: f.Code}
}

func mapToStatsResponse(st Stats) StatsResponse {
	byCountry := st.ByCountry
	if byCountry == nil {
		byCountry = map[string]int64{}
	}
	return StatsResponse{
		Total:          st.Total,
		Active:         st.Active,
		Inactive:       st.Total - st.Active,
		TotalEmployees: st.TotalEmployees,
		ByCountry:      byCountry,
	}
}
