package dto

import "net/http"

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Request error codes
const (
	// ErrCodeValidation is used when request input fails validation
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Auth error codes
const (
	// ErrCodeUnauthorized is used when identification is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller may not perform the operation
	ErrCodeForbidden = "FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when creating a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "CONFLICT"
)

// Business error codes surfaced by the detection and quota pipeline
const (
	// ErrCodeQuotaExceeded is used when a usage or SKU quota denies the
	// operation. Maps to 429 so clients can back off until the window
	// resets.
	ErrCodeQuotaExceeded = "QUOTA_EXCEEDED"
	// ErrCodeProvider is used when the external detection service fails
	ErrCodeProvider = "PROVIDER_ERROR"
	// ErrCodeStore is used when persistence fails mid-pipeline
	ErrCodeStore = "STORE_ERROR"
	// ErrCodeTenantInactive is used when the tenant is frozen
	ErrCodeTenantInactive = "TENANT_INACTIVE"
	// ErrCodeInvalidState is used when an operation is invalid for the
	// current state, such as a disallowed training transition
	ErrCodeInvalidState = "INVALID_STATE"
	// ErrCodeRateLimited is used when the request rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeQuotaExceeded:  http.StatusTooManyRequests,
	ErrCodeProvider:       http.StatusBadGateway,
	ErrCodeStore:          http.StatusInternalServerError,
	ErrCodeTenantInactive: http.StatusForbidden,
	ErrCodeInvalidState:   http.StatusUnprocessableEntity,
	ErrCodeRateLimited:    http.StatusTooManyRequests,

	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"TENANT_CODE_TAKEN":    http.StatusConflict,
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_TRANSITION":   http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Domain validation codes all start with INVALID_ and map to 400;
// anything unrecognized is a 500 so bugs surface as server errors
// rather than silently blaming the client.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if len(code) > 8 && code[:8] == "INVALID_" {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
