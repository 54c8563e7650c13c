package errors

import (
	"net/http"
	"strings"

	"safeguard/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

func (e *BaseError) Message() string {
	return e.message
}

func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy of the error carrying details
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Is matches on the business code so copies made by WithDetails still match the sentinel.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// Predefined error types
var (
	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Unauthorized",
		"",
	)

	ErrInvalidRequestBody = NewBaseError(
		http.StatusBadRequest,
		"INVALID_INPUT",
		"Invalid request body",
		"",
	)

	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Validation failed",
		"",
	)

	ErrLiveLocationNotFound = NewBaseError(
		http.StatusNotFound,
		"LIVE_LOCATION_NOT_FOUND",
		"Live location not found",
		"",
	)

	ErrLocationNotFound = NewBaseError(
		http.StatusNotFound,
		"LOCATION_NOT_FOUND",
		"Location not found or unauthorized",
		"",
	)

	ErrContactNotFound = NewBaseError(
		http.StatusNotFound,
		"CONTACT_NOT_FOUND",
		"Contact not found or unauthorized",
		"",
	)

	ErrGeocodeFailed = NewBaseError(
		http.StatusBadRequest,
		"GEOCODE_FAILED",
		"Could not geocode address. Please provide a more specific address or lat/lng coordinates.",
		"",
	)

	ErrUpstreamUnavailable = NewBaseError(
		http.StatusBadGateway,
		"UPSTREAM_UNAVAILABLE",
		"Upstream service unavailable",
		"",
	)

	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"Database transaction failed",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)
)

// ValidationError carries every failed field check of a single request.
type ValidationError struct {
	Errors []string
}

// NewValidationError creates a validation error from itemized messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) HTTPCode() int {
	return http.StatusBadRequest
}

func (e *ValidationError) ErrorCode() string {
	return "VALIDATION_FAILED"
}

func (e *ValidationError) Message() string {
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}

	return "Validation failed"
}

func (e *ValidationError) Details() string {
	return strings.Join(e.Errors, "; ")
}

// Add appends a message
func (e *ValidationError) Add(message string) {
	e.Errors = append(e.Errors, message)
}

// OrNil returns nil when nothing was recorded, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}

	return e
}

// DatabaseExecuteError represents a storage failure. The message never exposes the cause.
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

func (e *DatabaseExecuteError) Message() string {
	return "Database operation failed"
}

func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// UpstreamError is returned when a third-party service fails and no fallback applies.
type UpstreamError struct {
	service string
	err     error
}

// NewUpstreamError wraps a failure of the named upstream service
func NewUpstreamError(service string, err error) AppError {
	return &UpstreamError{service: service, err: err}
}

func (e *UpstreamError) Error() string {
	return errors.Wrapf(e.err, "%s request failed", e.service).Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.err
}

func (e *UpstreamError) HTTPCode() int {
	return http.StatusBadGateway
}

func (e *UpstreamError) ErrorCode() string {
	return "UPSTREAM_UNAVAILABLE"
}

func (e *UpstreamError) Message() string {
	return "Failed to fetch data from " + e.service
}

func (e *UpstreamError) Details() string {
	return e.service
}
