package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeExternal     ErrorType = "external"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is. Errors match on type, and on message when the
// target carries one.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && (t.Message == "" || e.Message == t.Message)
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// WithCause returns a copy of sentinel wrapping err. Sentinels are shared and
// must not be mutated.
func WithCause(sentinel *DomainError, err error) *DomainError {
	return &DomainError{
		Type:    sentinel.Type,
		Message: sentinel.Message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrUserNotFound        = NewDomainError(ErrorTypeNotFound, "user not found", nil)
	ErrRoleNotFound        = NewDomainError(ErrorTypeNotFound, "role not found", nil)
	ErrBuildingNotFound    = NewDomainError(ErrorTypeNotFound, "building not found", nil)
	ErrApartmentNotFound   = NewDomainError(ErrorTypeNotFound, "apartment not found", nil)
	ErrReadingNotFound     = NewDomainError(ErrorTypeNotFound, "water reading not found", nil)
	ErrPaymentListNotFound = NewDomainError(ErrorTypeNotFound, "payment list not found", nil)

	// Validation Errors
	ErrInvalidInput             = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidPeriod            = NewDomainError(ErrorTypeValidation, "invalid billing period", nil)
	ErrMissingVerificationToken = NewDomainError(ErrorTypeValidation, "missing verification token", nil)
	ErrInvalidVerificationToken = NewDomainError(ErrorTypeValidation, "invalid verification token", nil)
	ErrVerificationTokenExpired = NewDomainError(ErrorTypeValidation, "verification token has expired", nil)
	ErrReadingBelowPrevious     = NewDomainError(ErrorTypeValidation, "reading is below the last approved index", nil)
	ErrReadingAboveNext         = NewDomainError(ErrorTypeValidation, "reading is above the next approved index", nil)
	ErrFloorOutOfRange          = NewDomainError(ErrorTypeValidation, "floor is outside the building layout", nil)
	ErrUnknownTemplate          = NewDomainError(ErrorTypeValidation, "unknown email template", nil)

	// Authorization Errors
	ErrUnauthorized       = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "invalid email or password", nil)
	ErrAccountInactive    = NewDomainError(ErrorTypeUnauthorized, "account is not active", nil)

	// Permission Errors
	ErrForbidden = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)

	// Conflict Errors
	ErrDuplicateEmail       = NewDomainError(ErrorTypeConflict, "email already registered", nil)
	ErrDuplicateApartment   = NewDomainError(ErrorTypeConflict, "apartment number already exists in building", nil)
	ErrDuplicatePaymentList = NewDomainError(ErrorTypeConflict, "payment list already exists for period", nil)
	ErrReadingNotPending    = NewDomainError(ErrorTypeConflict, "water reading has already been reviewed", nil)
	ErrPaymentListNotDraft  = NewDomainError(ErrorTypeConflict, "payment list is not a draft", nil)
	ErrBuildingNotEmpty     = NewDomainError(ErrorTypeConflict, "building still has apartments", nil)

	// Internal Errors
	ErrInternal      = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabaseError = NewDomainError(ErrorTypeInternal, "database error", nil)

	// External Errors
	ErrEmailDelivery = NewDomainError(ErrorTypeExternal, "email delivery failed", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeUnauthorized
	}
	return false
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeForbidden
	}
	return false
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeConflict
	}
	return false
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeInternal
	}
	return false
}

// IsExternalError checks if an error is an external service error
func IsExternalError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeExternal
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapExternal wraps an error as an external service error
func WrapExternal(message string, err error) error {
	return NewDomainError(ErrorTypeExternal, message, err)
}
