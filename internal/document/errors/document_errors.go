package documenterrors

import "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"

var (
	ErrDocumentNotFound = apperror.NotFound("document")
	ErrInvalidFactoryID = apperror.InvalidReference("factory_id")
	ErrInvalidExpiresAt = apperror.Validation("expires_at", "date")
	ErrDocumentArchived = apperror.InvalidState([]string{"DRAFT", "ACTIVE"}, "ARCHIVED", "archived documents cannot be edited")
)
