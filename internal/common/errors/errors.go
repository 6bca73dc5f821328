// internal/common/errors/errors.go

// Package errors provides standardized error handling for the search and
// posting paths.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Codec misuse. Programming errors: request construction only ever uses
	// enumerated labels, so these are unreachable from user input.
	ErrCodeUnknownLabel ErrorCode = "UNKNOWN_LABEL"
	ErrCodeUnknownRank  ErrorCode = "UNKNOWN_RANK"

	// Pagination and store errors.
	ErrCodeInvalidCursor    ErrorCode = "INVALID_CURSOR"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// Normal user-visible outcomes and request problems.
	ErrCodeNoResults           ErrorCode = "NO_RESULTS"
	ErrCodeInvalidFilterFormat ErrorCode = "INVALID_FILTER_FORMAT"
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeFetchInFlight       ErrorCode = "FETCH_IN_FLIGHT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewUnknownLabelError creates a non-retryable codec error.
func NewUnknownLabelError(label string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownLabel,
		Message:   "Label is not part of the enumeration",
		Details:   fmt.Sprintf("label: %q", label),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownRankError creates a non-retryable codec error.
func NewUnknownRankError(rank int) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownRank,
		Message:   "No label maps to this rank",
		Details:   fmt.Sprintf("rank: %d", rank),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCursorError creates a non-retryable pagination error. The current
// session is dead; the caller needs a fresh search.
func NewInvalidCursorError(cursor string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCursor,
		Message:   "Pagination token is stale or malformed",
		Details:   fmt.Sprintf("startAfter: %s", cursor),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable store error. Page fetches are
// read-only, so retrying the same cursor is safe.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Document store is unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoResultsError creates the first-page-empty outcome. Not a fault.
func NewNoResultsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoResults,
		Message:   "No postings match the requested filters",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFetchInFlightError is returned when a page fetch is requested while the
// previous one for the same session has not settled.
func NewFetchInFlightError() *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchInFlight,
		Message:   "A page fetch is already in flight for this session",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFilterFormatError creates a non-retryable request error.
func NewInvalidFilterFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Message:   "Invalid filter format",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable submission error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Submission failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatus maps an error code to the status the API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNoResults, ErrCodeInvalidCursor:
		return http.StatusNotFound
	case ErrCodeInvalidFilterFormat, ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeFetchInFlight:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AsStandard extracts a StandardError from an error chain, or wraps err as an
// internal one.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected internal error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether the error is safe to retry with the same input.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}
