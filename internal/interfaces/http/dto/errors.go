package dto

import "net/http"

// Error codes produced by the HTTP layer itself. Domain errors carry their
// own codes and are mapped through ErrorCodeHTTPStatus.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Domain error
// codes not listed here are business rule violations and map to 422.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeInternal:     http.StatusInternalServerError,

	"VALIDATION_ERROR": http.StatusBadRequest,
	"INVALID_TOKEN":    http.StatusUnauthorized,
	"TOKEN_EXPIRED":    http.StatusUnauthorized,

	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"DUPLICATE_REQUEST":    http.StatusConflict,

	"EMAIL_DISABLED": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted codes come from domain rule violations and return 422.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
