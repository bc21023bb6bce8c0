package dto

import (
	"net/http"

	"github.com/ryznreal/offers/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Request error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeForbidden       = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
)

// Inventory error codes
const (
	// ErrCodeMalformedKey is used when a unit key cannot be parsed
	ErrCodeMalformedKey = "ERR_MALFORMED_KEY"
	// ErrCodeUnitOutOfRange is used when a unit key lies outside the structure
	ErrCodeUnitOutOfRange = "ERR_UNIT_OUT_OF_RANGE"
	// ErrCodeModelNotFound is used when a model ID is not in the project catalog
	ErrCodeModelNotFound = "ERR_MODEL_NOT_FOUND"
	// ErrCodeNotAssigned is used when a unit without a model gets a status or booking
	ErrCodeNotAssigned = "ERR_NOT_ASSIGNED"
	// ErrCodeInvariantViolation is used when a mutation would break a project invariant
	ErrCodeInvariantViolation = "ERR_INVARIANT_VIOLATION"
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeMalformedKey:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeForbidden:       http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	// the project exists but the request does not fit it
	ErrCodeUnitOutOfRange:     http.StatusUnprocessableEntity,
	ErrCodeModelNotFound:      http.StatusUnprocessableEntity,
	ErrCodeNotAssigned:        http.StatusUnprocessableEntity,
	ErrCodeInvariantViolation: http.StatusUnprocessableEntity,
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	shared.CodeNotFound:           ErrCodeNotFound,
	shared.CodeAlreadyExists:      ErrCodeAlreadyExists,
	shared.CodeInvalidInput:       ErrCodeInvalidInput,
	shared.CodeInvalidState:       ErrCodeInvalidState,
	shared.CodeMalformedKey:       ErrCodeMalformedKey,
	shared.CodeUnitOutOfRange:     ErrCodeUnitOutOfRange,
	shared.CodeModelNotFound:      ErrCodeModelNotFound,
	shared.CodeNotAssigned:        ErrCodeNotAssigned,
	shared.CodeInvariantViolation: ErrCodeInvariantViolation,
}

// NormalizeErrorCode converts a domain error code to its API form.
// Codes already in API form, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
