package usererrors

import "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"

var (
	ErrUserNotFound      = apperror.NotFound("user")
	ErrUserAlreadyExists = apperror.Conflict("email", "a user with this email already exists")
	ErrInvalidTenantID   = apperror.InvalidReference("tenant_id")
	ErrInvalidFactoryID  = apperror.InvalidReference("factory_id")
	ErrFactoryRequired   = apperror.RequiredField("factory_id")
	ErrWrongPassword     = apperror.Validation("current_password", "mismatch")
	// ErrSuperAdminGrant is returned when anyone but a SuperAdmin tries to
	// create another SuperAdmin.
	ErrSuperAdminGrant = apperror.Forbidden("role")
)
