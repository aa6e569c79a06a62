package stylize

import (
	"errors"
	"fmt"
)

// Pipeline errors. Callers match them with errors.Is.
var (
	ErrInvalidParameter  = errors.New("stylize: invalid parameter")
	ErrUnsupportedFormat = errors.New("stylize: unsupported image format")
	ErrAllocation        = errors.New("stylize: buffer allocation failed")
)

// ParamError describes a rejected style parameter.
type ParamError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%v: %s=%v: %s", ErrInvalidParameter, e.Field, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}
