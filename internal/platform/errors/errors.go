// Package errors provides structured error handling with an error taxonomy
// and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the taxonomy tag of a failure. It drives the HTTP status,
// the log level and the http_errors_total metric label.
type ErrorType string

const (
	// TypeMalformedRequest indicates a missing or invalid input field (HTTP 400)
	TypeMalformedRequest ErrorType = "malformed_request"
	// TypeNotFound indicates a referenced entity does not exist (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeUnauthorized indicates missing or invalid credentials (HTTP 401)
	TypeUnauthorized ErrorType = "unauthorized"
	// TypeForbidden indicates the caller does not own the resource (HTTP 403)
	TypeForbidden ErrorType = "forbidden"
	// TypeRateLimited indicates an anonymous quota was exhausted (HTTP 401)
	TypeRateLimited ErrorType = "rate_limited"
	// TypeStorageConflict indicates a failed write that was rolled back (HTTP 500)
	TypeStorageConflict ErrorType = "storage_conflict"
	// TypeConflict indicates a uniqueness clash such as a taken username (HTTP 409)
	TypeConflict ErrorType = "conflict"
	// TypeInternal indicates an unexpected server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
	// TypeExternal indicates an upstream service failure (HTTP 502)
	TypeExternal ErrorType = "external"
)

// Error represents a structured error with type, message, and context.
// Message is safe to show to clients; Cause never is.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeMalformedRequest:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeUnauthorized, TypeRateLimited:
		return http.StatusUnauthorized
	case TypeForbidden:
		return http.StatusForbidden
	case TypeConflict:
		return http.StatusConflict
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    t,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// MalformedRequest creates a new malformed-request error (HTTP 400).
func MalformedRequest(message string) *Error {
	return newError(TypeMalformedRequest, message, nil)
}

// NotFound creates a new not-found error (HTTP 404).
func NotFound(message string) *Error {
	return newError(TypeNotFound, message, nil)
}

// Unauthorized creates a new unauthorized error (HTTP 401).
func Unauthorized(message string) *Error {
	return newError(TypeUnauthorized, message, nil)
}

// Forbidden creates a new forbidden error (HTTP 403).
func Forbidden(message string) *Error {
	return newError(TypeForbidden, message, nil)
}

// RateLimited creates a new rate-limited error (HTTP 401).
func RateLimited(message string) *Error {
	return newError(TypeRateLimited, message, nil)
}

// StorageConflict creates a new storage error (HTTP 500).
func StorageConflict(message string, cause error) *Error {
	return newError(TypeStorageConflict, message, cause)
}

// Conflict creates a new conflict error (HTTP 409).
func Conflict(message string) *Error {
	return newError(TypeConflict, message, nil)
}

// Internal creates a new internal error (HTTP 500).
func Internal(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

// External creates a new external service error (HTTP 502).
func External(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

// WithField adds a context field that is logged but never sent to clients.
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse is the JSON body sent to clients.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

// Is reports whether err carries a structured error of type t.
func Is(err error, t ErrorType) bool {
	var structuredErr *Error
	return errors.As(err, &structuredErr) && structuredErr.Type == t
}

// AsStructuredError converts any error into a structured Error.
// Unstructured errors become internal errors with a generic message.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return Internal("internal server error", err)
}
