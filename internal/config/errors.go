package config

import (
	"errors"
	"fmt"
)

// Error is a configuration problem with a suggested fix.
type Error struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // What the user should change
}

func (e *Error) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes.
const (
	ErrCodeEnvFileMissing = "ENV_FILE_MISSING"
	ErrCodeInvalidValue   = "INVALID_VALUE"
	ErrCodeOutOfRange     = "OUT_OF_RANGE"
	ErrCodeMissingConfig  = "MISSING_CONFIG"
)

// ErrEnvFileMissing reports an explicitly requested env file that does not exist.
func ErrEnvFileMissing(path string) *Error {
	return &Error{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Create the file or omit --env-file to use the process environment",
	}
}

// ErrInvalidValue reports a variable that cannot be parsed.
func ErrInvalidValue(name, value, want string) *Error {
	return &Error{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("Invalid %s '%s'", name, value),
		Action:  fmt.Sprintf("Set %s to %s", name, want),
	}
}

// ErrOutOfRange reports a parsed value outside its allowed range.
func ErrOutOfRange(name string, value any, want string) *Error {
	return &Error{
		Code:    ErrCodeOutOfRange,
		Message: fmt.Sprintf("%s is out of range: %v", name, value),
		Action:  fmt.Sprintf("Set %s to %s", name, want),
	}
}

// ErrMissingConfig reports a required setting left empty.
func ErrMissingConfig(name string) *Error {
	return &Error{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", name),
		Action:  fmt.Sprintf("Set %s in the environment or pass the matching flag", name),
	}
}

// ErrorCode returns the code of a wrapped *Error, or "".
func ErrorCode(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
