package autherrors

import "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"

var (
	ErrInvalidCredentials    = apperror.Unauthorized("invalid email or password")
	ErrInvalidToken          = apperror.Unauthorized("invalid token")
	ErrTokenExpired          = apperror.Unauthorized("token expired")
	ErrTokenMissing          = apperror.Unauthorized("token not found")
	ErrInvalidRefreshToken   = apperror.Unauthorized("invalid refresh token")
	ErrUserInactive          = apperror.Unauthorized("user is inactive")
	ErrTokenGenerationFailed = apperror.New(apperror.CodeInternalError, "failed to issue token")
)
