package statement

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the expected failure modes of the ingestion pipeline.
// These are frequent, branch-on-able conditions, not panics: callers decide
// whether to prompt for a password, reject the upload, or retry.
type ErrorCode string

const (
	ErrUnsupportedFormat    ErrorCode = "UNSUPPORTED_FORMAT"
	ErrInvalidFileFormat    ErrorCode = "INVALID_FILE_FORMAT"
	ErrPDFPasswordRequired  ErrorCode = "PDF_PASSWORD_REQUIRED"
	ErrPDFPasswordIncorrect ErrorCode = "PDF_PASSWORD_INCORRECT"
	ErrColumnDetection      ErrorCode = "COLUMN_DETECTION_FAILED"
	ErrSessionExpired       ErrorCode = "SESSION_EXPIRED"
	ErrDateRangeInvalid     ErrorCode = "DATE_RANGE_INVALID"
)

// Error is a structured error for statement ingestion failures.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds a statement error with a formatted message.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a statement error that preserves the underlying cause.
func WrapError(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsCode reports whether err is a statement error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
