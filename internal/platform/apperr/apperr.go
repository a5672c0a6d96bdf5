// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Yomira.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
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

// Kind classifies an error along the pipeline's retry/recovery taxonomy.
// It is orthogonal to HTTPStatus (used only by the ops surface) and is the
// field the worker boundary switches on to decide retry-vs-terminal-fail.
type Kind string

const (
	// KindTransientNetwork covers HTTP timeouts and 5xx responses: fail the
	// job, next attempt retries with backoff.
	KindTransientNetwork Kind = "transient_network"
	// KindRateLimited covers 429 responses from a third party: sleep and
	// return "no result yet", not a job failure.
	KindRateLimited Kind = "rate_limited"
	// KindPermanentNetwork covers DNS nxdomain, 404, 410: fail the job and
	// mark it non-retriable once attempt_count reaches the configured max.
	KindPermanentNetwork Kind = "permanent_network"
	// KindParseError covers feed XML, HTML, image decode, and subtitle
	// format failures: log and skip the item, continue the batch.
	KindParseError Kind = "parse_error"
	// KindDuplicateConstraint covers unique-index violations: swallow
	// silently, this is the idempotency guarantee working as intended.
	KindDuplicateConstraint Kind = "duplicate_constraint"
	// KindStorageError covers object-store put failures: fail the job, the
	// caller retries.
	KindStorageError Kind = "storage_error"
	// KindProgrammerError covers invariant breaks: propagate, the worker
	// catches it at the boundary and fails the job.
	KindProgrammerError Kind = "programmer_error"
)

// AppError is the canonical error type for the archival pipeline.
//
// It carries an HTTP status code (consulted only by the ops surface), a
// machine-readable code, a client-safe message, a taxonomy [Kind] the
// worker pool uses to decide retry policy, and an optional slice of
// field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to
// clients to avoid leaking internal implementation details (e.g., SQL
// queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Kind is the retry-policy taxonomy classification for this error.
	Kind Kind `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
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
//	apperr.NotFound("Comic") // Returns "Comic not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError] with [KindRateLimited].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
		Kind:       KindRateLimited,
	}
}

// # Pipeline Error Taxonomy (§7)

// TransientNetwork wraps a transient HTTP timeout/5xx failure.
// Policy: fail the job; the next attempt retries with backoff.
func TransientNetwork(cause error) *AppError {
	return &AppError{
		Code:       "TRANSIENT_NETWORK",
		Message:    "A transient network error occurred",
		HTTPStatus: http.StatusBadGateway,
		Kind:       KindTransientNetwork,
		Cause:      cause,
	}
}

// PermanentNetwork wraps a non-retriable network failure (DNS nxdomain,
// 404, 410). Policy: fail the job; becomes non-retriable once
// attempt_count reaches the configured max.
func PermanentNetwork(cause error) *AppError {
	return &AppError{
		Code:       "PERMANENT_NETWORK",
		Message:    "The remote resource is permanently unreachable",
		HTTPStatus: http.StatusNotFound,
		Kind:       KindPermanentNetwork,
		Cause:      cause,
	}
}

// ParseErr wraps a feed/HTML/image/subtitle parse failure.
// Policy: log; skip the item but continue the batch.
func ParseErr(cause error) *AppError {
	return &AppError{
		Code:       "PARSE_ERROR",
		Message:    "Failed to parse input",
		HTTPStatus: http.StatusUnprocessableEntity,
		Kind:       KindParseError,
		Cause:      cause,
	}
}

// DuplicateConstraintErr wraps a unique-index violation.
// Policy: swallow silently; this is the idempotency guarantee.
func DuplicateConstraintErr(cause error) *AppError {
	return &AppError{
		Code:       "DUPLICATE_CONSTRAINT",
		Message:    "Resource already exists",
		HTTPStatus: http.StatusConflict,
		Kind:       KindDuplicateConstraint,
		Cause:      cause,
	}
}

// StorageErr wraps an object-store put failure.
// Policy: fail the job; the caller retries.
func StorageErr(cause error) *AppError {
	return &AppError{
		Code:       "STORAGE_ERROR",
		Message:    "Failed to persist artifact",
		HTTPStatus: http.StatusInternalServerError,
		Kind:       KindStorageError,
		Cause:      cause,
	}
}

// ProgrammerErr wraps a broken invariant.
// Policy: propagate; the worker boundary catches it and fails the job.
func ProgrammerErr(cause error) *AppError {
	return &AppError{
		Code:       "PROGRAMMER_ERROR",
		Message:    "An internal invariant was violated",
		HTTPStatus: http.StatusInternalServerError,
		Kind:       KindProgrammerError,
		Cause:      cause,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       "UNPROCESSABLE",
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
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
