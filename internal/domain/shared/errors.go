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

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound         = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists    = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput     = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrForbidden        = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrNotAuthenticated = NewDomainError("AUTHENTICATION_REQUIRED", "Authentication is required")
	ErrInvalidState     = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrUpstream         = NewDomainError("UPSTREAM_ERROR", "An upstream service failed")
)

// NewConcurrentModificationError builds the conflict error for a contract
// whose stored version no longer matches the caller's expectation. The
// contract id is embedded in the message because the HTTP layer surfaces
// it to the user verbatim.
func NewConcurrentModificationError(contractID int64) *DomainError {
	return &DomainError{
		Code:    "CONCURRENT_MODIFICATION",
		Message: fmt.Sprintf("Contract #%d was modified by someone else. Please reload the page.", contractID),
	}
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == code
}
