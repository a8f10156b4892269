package grievanceerrors

import "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"

var (
	ErrGrievanceNotFound  = apperror.NotFound("grievance")
	ErrInvalidFactoryID   = apperror.InvalidReference("factory_id")
	ErrInvalidAssignee    = apperror.InvalidReference("assigned_to")
	ErrAlreadyAssigned    = apperror.InvalidState([]string{"SUBMITTED"}, "ASSIGNED", "already assigned")
	ErrResolutionRequired = apperror.RequiredField("resolution")
	ErrAnonymousRequired  = apperror.Validation("is_anonymous", "must be true")
)
