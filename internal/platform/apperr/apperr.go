// Copyright (c) 2026 Cartridge Collection. All rights reserved.

/*
Package apperr defines the centralized error handling framework for the catalog.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: One constructor per failure kind of the hierarchy (uniqueness, dependents,
    dangling attachments, cross-caliber moves, invalid parent state).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeValidation          = "VALIDATION_ERROR"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUnprocessable       = "UNPROCESSABLE"
	CodeInternal            = "INTERNAL_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeDanglingReference   = "DANGLING_REFERENCE"
	CodeDependentRecords    = "DEPENDENT_RECORDS_EXIST"
	CodeUniquenessViolation = "UNIQUENESS_VIOLATION"
	CodeCrossPartitionMove  = "CROSS_PARTITION_MOVE"
	CodeInvalidParentState  = "INVALID_PARENT_STATE"
	CodeBrokenChain         = "BROKEN_CHAIN"
)

// AppError is the canonical error type for the catalog API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors, or per-relation blockers for
	// DEPENDENT_RECORDS_EXIST responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name (or relation name) that failed.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
	// Count is set for dependent-record blockers.
	Count int `json:"count,omitempty"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Headstamp") // Returns "Headstamp not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for generic state conflicts.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       CodeUnprocessable,
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Hierarchy Errors

// UniquenessViolation creates a 409 [AppError] naming the conflicting value.
//
// Example:
//
//	apperr.UniquenessViolation("code", "WIN") // "code \"WIN\" already exists"
func UniquenessViolation(field, value string) *AppError {
	return &AppError{
		Code:       CodeUniquenessViolation,
		Message:    fmt.Sprintf("%s %q already exists", field, value),
		HTTPStatus: http.StatusConflict,
		Details:    []FieldError{{Field: field, Message: "Already in use"}},
	}
}

// DependentRecordsExist creates a 409 [AppError] listing every relation that
// blocks a delete. Each blocker carries its relation name and row count.
func DependentRecordsExist(resource string, blockers ...FieldError) *AppError {
	return &AppError{
		Code:       CodeDependentRecords,
		Message:    resource + " cannot be deleted while dependent records exist",
		HTTPStatus: http.StatusConflict,
		Details:    blockers,
	}
}

// DanglingReference creates a 409 [AppError] for an attachment whose target
// row no longer exists.
func DanglingReference(msg string) *AppError {
	return &AppError{
		Code:       CodeDanglingReference,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// CrossPartitionMove creates a 422 [AppError] for a move across calibers.
func CrossPartitionMove(fromCaliber, toCaliber string) *AppError {
	return &AppError{
		Code:       CodeCrossPartitionMove,
		Message:    fmt.Sprintf("Cannot move from caliber %q to caliber %q", fromCaliber, toCaliber),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// InvalidParentState creates a 422 [AppError] for a record whose parent
// references are inconsistent (e.g. a Variation with both or neither parent).
func InvalidParentState(msg string) *AppError {
	return &AppError{
		Code:       CodeInvalidParentState,
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// BrokenChain creates a 500 [AppError] for a parent walk that could not reach
// a caliber. It signals corrupted hierarchy data rather than a missing request target.
func BrokenChain(msg string) *AppError {
	return &AppError{
		Code:       CodeBrokenChain,
		Message:    msg,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       CodeServiceUnavailable,
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
