package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// UsageError indicates the command line had the wrong number of arguments
	UsageError ErrorCode = "USAGE_ERROR"
	// NotFound indicates the target path is missing or not a regular file
	NotFound ErrorCode = "NOT_FOUND"
	// ParseError indicates the catalog content could not be parsed or decoded
	ParseError ErrorCode = "PARSE_ERROR"
	// WriteError indicates the sorted catalog could not be written back
	WriteError ErrorCode = "WRITE_ERROR"
	// ConfigError indicates an unreadable or invalid configuration file
	ConfigError ErrorCode = "CONFIG_ERROR"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// PosortError represents a posort error with code, message and the path involved
type PosortError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
	cause   error     // Underlying error (not exported to JSON)
}

// New creates a new PosortError
func New(code ErrorCode, message string, cause error) *PosortError {
	return &PosortError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *PosortError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PosortError) Unwrap() error {
	return e.cause
}

// WithPath records the file the error refers to
func (e *PosortError) WithPath(path string) *PosortError {
	e.Path = path
	return e
}

// CodeOf returns the code of the first PosortError in err's chain,
// or InternalError if there is none.
func CodeOf(err error) ErrorCode {
	var pe *PosortError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return InternalError
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// ErrorHints maps error codes to a short remediation hint
var ErrorHints = map[ErrorCode]string{
	UsageError:  "pass exactly one catalog path, e.g. posort po/messages.pot",
	NotFound:    "check the path points at an existing .po or .pot file",
	ParseError:  "fix the reported line; run msgfmt --check for a second opinion",
	ConfigError: "config files may be json, yaml or toml",
}

// GetHint returns the remediation hint for an error code
func GetHint(code ErrorCode) string {
	return ErrorHints[code]
}
