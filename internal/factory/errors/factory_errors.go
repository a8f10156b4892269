package factoryerrors

import "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"

var (
	ErrFactoryNotFound       = apperror.NotFound("factory")
	ErrInvalidTenantID       = apperror.InvalidReference("tenant_id")
	ErrFactoryNameExists     = apperror.Conflict("name", "a factory with this name already exists")
	ErrFactoryCodeExists     = apperror.Conflict("code", "a factory with this code already exists")
	ErrFactoryHasActiveUsers = apperror.Conflict("users", "factory still has active users")
)
