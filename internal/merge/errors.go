package merge

import (
	"errors"
	"fmt"
)

// RunError is a failure that stops a merge run before or while it starts.
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the root or file the error is about, if any.
	Path string

	// Err is the underlying cause, if any.
	Err error
}

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// ErrCodeInvalidMode indicates the run was started without a usable mode.
	ErrCodeInvalidMode RunErrorCode = "INVALID_MODE"

	// ErrCodeRootNotFound indicates the source or destination does not exist.
	ErrCodeRootNotFound RunErrorCode = "ROOT_NOT_FOUND"

	// ErrCodeOutputOpenFailed indicates the plan file could not be created.
	ErrCodeOutputOpenFailed RunErrorCode = "OUTPUT_OPEN_FAILED"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error { return e.Err }

func hasCode(err error, code RunErrorCode) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsInvalidMode reports whether err is an invalid mode error.
// Uses errors.As to handle wrapped errors.
func IsInvalidMode(err error) bool { return hasCode(err, ErrCodeInvalidMode) }

// IsRootNotFound reports whether err is a missing root error.
func IsRootNotFound(err error) bool { return hasCode(err, ErrCodeRootNotFound) }

// IsOutputOpenFailed reports whether err is a plan file open error.
func IsOutputOpenFailed(err error) bool { return hasCode(err, ErrCodeOutputOpenFailed) }

// NewInvalidModeError creates a RunError for an unusable mode.
func NewInvalidModeError(m Mode) *RunError {
	return &RunError{
		Code:    ErrCodeInvalidMode,
		Message: fmt.Sprintf("mode %q is not one of copy, move, analyze", m.String()),
	}
}

// NewRootNotFoundError creates a RunError for a missing root.
func NewRootNotFoundError(role, path string, err error) *RunError {
	return &RunError{
		Code:    ErrCodeRootNotFound,
		Message: role + " does not exist",
		Path:    path,
		Err:     err,
	}
}

// NewOutputOpenError creates a RunError for a plan file that cannot be opened.
func NewOutputOpenError(path string, err error) *RunError {
	return &RunError{
		Code:    ErrCodeOutputOpenFailed,
		Message: "could not open plan file",
		Path:    path,
		Err:     err,
	}
}
