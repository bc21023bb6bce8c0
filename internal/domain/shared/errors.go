package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same error code, so errors.Is works
// against the sentinel values below even when the message was customized.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Error codes
const (
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidState       = "INVALID_STATE"
	CodeMalformedKey       = "MALFORMED_KEY"
	CodeUnitOutOfRange     = "UNIT_OUT_OF_RANGE"
	CodeModelNotFound      = "MODEL_NOT_FOUND"
	CodeNotAssigned        = "NOT_ASSIGNED"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
)

// Common domain errors
var (
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists      = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput       = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState       = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrMalformedKey       = NewDomainError(CodeMalformedKey, "Unit key is malformed")
	ErrUnitOutOfRange     = NewDomainError(CodeUnitOutOfRange, "Unit key is outside the building structure")
	ErrModelNotFound      = NewDomainError(CodeModelNotFound, "Model not found in project catalog")
	ErrNotAssigned        = NewDomainError(CodeNotAssigned, "Unit has no model assigned")
	ErrInvariantViolation = NewDomainError(CodeInvariantViolation, "Operation would violate a project invariant")
)
