// Package errors provides structured error types for mandel.
//
// Every failure a render can hit carries a machine-readable [Code] so that the
// CLI and the HTTP server can report it consistently:
//   - INVALID_*: the requested render is rejected before any pixel is computed
//   - *_FAILED: encoding or persisting a finished grid went wrong
//   - INTERNAL_ERROR: anything unexpected
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDensity, "density must be positive, got %g", d)
//	if errors.Is(err, errors.ErrCodeInvalidDensity) {
//	    // reject the request
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeWriteFailed, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidRegion     Code = "INVALID_REGION"
	ErrCodeInvalidDensity    Code = "INVALID_DENSITY"
	ErrCodeInvalidIterations Code = "INVALID_ITERATIONS"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeImageTooLarge     Code = "IMAGE_TOO_LARGE"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodePresetNotFound Code = "PRESET_NOT_FOUND"

	// Output errors
	ErrCodeEncodeFailed Code = "ENCODE_FAILED"
	ErrCodeWriteFailed  Code = "WRITE_FAILED"

	// Internal errors
	ErrCodeCanceled Code = "CANCELED"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsValidation reports whether err rejects the request itself, as opposed to a
// failure while producing the image.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidRegion, ErrCodeInvalidDensity,
		ErrCodeInvalidIterations, ErrCodeInvalidFormat, ErrCodeInvalidPath,
		ErrCodeInvalidConfig:
		return true
	}
	return false
}

// HTTPStatus maps an error to the status code the server responds with.
func HTTPStatus(err error) int {
	if IsValidation(err) {
		return http.StatusBadRequest
	}
	switch GetCode(err) {
	case ErrCodeImageTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeNotFound, ErrCodePresetNotFound:
		return http.StatusNotFound
	case ErrCodeCanceled:
		return 499 // client closed request
	}
	return http.StatusInternalServerError
}
