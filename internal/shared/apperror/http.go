package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the transport view of an error; only handlers and
// middleware use it.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

var statusByCode = map[string]int{
	CodeInvalidInput:       http.StatusBadRequest,
	CodeInvalidReference:   http.StatusBadRequest,
	CodeInvalidState:       http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeTooManyRequests:    http.StatusTooManyRequests,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
	CodeInternalError:      http.StatusInternalServerError,
}

// StatusOf maps an error code to its HTTP status.
func StatusOf(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return HTTPError{
			Status:  http.StatusInternalServerError,
			Code:    ErrInternal.Code,
			Message: ErrInternal.Message,
		}
	}

	out := HTTPError{
		Status:  StatusOf(appErr.Code),
		Code:    appErr.Code,
		Message: appErr.Message,
	}
	if len(appErr.Details) > 0 {
		out.Details = appErr.Details
	}
	return out
}
