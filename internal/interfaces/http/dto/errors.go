package dto

import "net/http"

// Transport-level error codes
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeValidation is the base code for request validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// ErrorCodeHTTPStatus maps transport error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeNotFound:    http.StatusNotFound,
	ErrCodeConflict:    http.StatusConflict,
}

// DomainErrorHTTPStatus maps domain error codes to HTTP status codes.
// Domain codes are returned to clients unchanged so that integrations can
// branch on them; only the HTTP status is derived here.
var DomainErrorHTTPStatus = map[string]int{
	// Resource errors
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Input errors -> 400 Bad Request
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_QUANTITY":       http.StatusBadRequest,
	"INVALID_PRICE":          http.StatusBadRequest,
	"INVALID_DISCOUNT":       http.StatusBadRequest,
	"INVALID_ITEM":           http.StatusBadRequest,
	"INVALID_LINE":           http.StatusBadRequest,
	"INVALID_PARTY":          http.StatusBadRequest,
	"INVALID_WAREHOUSE":      http.StatusBadRequest,
	"INVALID_INVOICE_TYPE":   http.StatusBadRequest,
	"INVALID_REASON":         http.StatusBadRequest,
	"INVALID_BATCH_NUMBER":   http.StatusBadRequest,
	"INVALID_BATCH_DATES":    http.StatusBadRequest,
	"INVALID_UNIT_COST":      http.StatusBadRequest,
	"MISSING_BATCH_METADATA": http.StatusBadRequest,
	"NO_LINES":               http.StatusBadRequest,
	"LINE_NOT_FOUND":         http.StatusBadRequest,

	// Business rule errors -> 422 Unprocessable Entity
	"INVALID_STATE":              http.StatusUnprocessableEntity,
	"INVALID_INVOICE_STATUS":     http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":         http.StatusUnprocessableEntity,
	"CREDIT_LIMIT_EXCEEDED":      http.StatusUnprocessableEntity,
	"CANNOT_CANCEL_PAID_INVOICE": http.StatusUnprocessableEntity,
	"RETURN_EXCEEDS_ORIGINAL":    http.StatusUnprocessableEntity,
	"SCHEME_EXCEEDS_QUANTITY":    http.StatusUnprocessableEntity,
	"TAX_CONFIG_NOT_FOUND":       http.StatusUnprocessableEntity,
	"CLAIM_ACCOUNT_REQUIRED":     http.StatusUnprocessableEntity,
	"CLAIM_ACCOUNT_NOT_FOUND":    http.StatusUnprocessableEntity,
	"CLAIM_ACCOUNT_INACTIVE":     http.StatusUnprocessableEntity,
	"BATCH_EXPIRED":              http.StatusUnprocessableEntity,

	// Posting invariant violations indicate a server-side defect
	"UNBALANCED_POSTING": http.StatusInternalServerError,
	"EMPTY_POSTING":      http.StatusInternalServerError,
	"INTERNAL_ERROR":     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Transport codes take precedence, then domain codes.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if status, ok := DomainErrorHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
