// internal/common/errors/errors.go

// Package errors provides the standardized error taxonomy for the analytics service.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Load errors. All terminal: the input file is local and static per
	// session, so there is nothing transient to retry against.
	ErrCodeFileMissing    ErrorCode = "FILE_MISSING"
	ErrCodeFileUnreadable ErrorCode = "FILE_UNREADABLE"
	ErrCodeSchemaMismatch ErrorCode = "SCHEMA_MISMATCH"

	ErrCodeInvalidFilterFormat ErrorCode = "INVALID_FILTER_FORMAT"

	// Infrastructure errors around the core pipeline.
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeAuditWriteFailed ErrorCode = "AUDIT_WRITE_FAILED"
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

// NewFileMissingError creates a non-retryable load error for an absent source file.
func NewFileMissingError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFileMissing,
		Message:   "Source file not found",
		Details:   fmt.Sprintf("path: %s", path),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFileUnreadableError creates a non-retryable load error for a file that
// exists but cannot be parsed.
func NewFileUnreadableError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFileUnreadable,
		Message:   "Source file could not be read",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaMismatchError creates a non-retryable load error naming the missing column.
func NewSchemaMismatchError(column string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaMismatch,
		Message:   "Required column missing from source file",
		Details:   fmt.Sprintf("column: %s", column),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFilterFormatError creates a non-retryable filter format error.
func NewInvalidFilterFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Message:   "Invalid filter format",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. Callers degrade to
// recomputing the snapshot rather than failing the request.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Snapshot cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a retryable audit store error. Audit writes
// are best-effort and never fail the triggering operation.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Audit record write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the ErrorCode from err, or empty when err carries none.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsLoadError reports whether err belongs to the terminal load-error family.
func IsLoadError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeFileMissing, ErrCodeFileUnreadable, ErrCodeSchemaMismatch:
		return true
	}
	return false
}
