package errors

import (
	"errors"
	"fmt"
)

// Error types for different domains
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypePrecondition ErrorType = "precondition"
	ErrorTypeBusiness     ErrorType = "business"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeStore        ErrorType = "store"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

// NewPreconditionFailedError reports a state-tuple mismatch on a conditional
// transition. Actual and expected state travel in Details so the caller can
// refetch and decide; the engine itself never retries.
func NewPreconditionFailedError(op string, expected, actual fmt.Stringer) *AppError {
	return &AppError{
		Type:       ErrorTypePrecondition,
		Code:       "PRECONDITION_FAILED",
		Message:    fmt.Sprintf("%s: listing state changed since read", op),
		Retryable:  false,
		StatusCode: 409,
		Details: map[string]interface{}{
			"operation": op,
			"expected":  expected.String(),
			"actual":    actual.String(),
		},
	}
}

func NewBusinessError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeBusiness,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 422,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		Retryable:  false,
		StatusCode: 404,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       "CONFLICT",
		Message:    message,
		Retryable:  false,
		StatusCode: 409,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

// NewStoreError wraps a persistence failure. Store errors are always
// surfaced as retryable, never swallowed.
func NewStoreError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeStore,
		Code:       "STORE_UNAVAILABLE",
		Message:    message,
		Cause:      cause,
		Retryable:  true,
		StatusCode: 503,
	}
}

// Predefined common errors
var (
	ErrListingNotFound    = NewNotFoundError("listing")
	ErrBidNotFound        = NewNotFoundError("bid")
	ErrListingNotBiddable = NewBusinessError("LISTING_NOT_BIDDABLE", "listing is not open for bidding")
	ErrNoAcceptedBid      = NewBusinessError("NO_ACCEPTED_BID", "listing has no accepted bid")
	ErrInvalidBidAmount   = NewValidationError("INVALID_BID_AMOUNT", "bid amount must be a positive integer")

	// ErrStaleListing is returned by conditional listing updates whose WHERE
	// tuple no longer matches the stored row. Repositories must return this
	// exact value so callers can test it with errors.Is.
	ErrStaleListing = NewConflictError("listing state changed concurrently")
)

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsPreconditionFailed reports whether err is a state-tuple mismatch.
func IsPreconditionFailed(err error) bool {
	return IsType(err, ErrorTypePrecondition)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
