package producer

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField     = errors.New("missing field")
	ErrInvalidByteValue = errors.New("invalid byte value")
)

type MissingFieldError struct {
	Field string
	Line  int
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("line %d: %s %s", e.Line, ErrMissingField.Error(), e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

type InvalidByteValueError struct {
	Field string
	Value string
	Line  int
	Err   error
}

func (e *InvalidByteValueError) Error() string {
	return fmt.Sprintf("line %d: %s for %s %q: %s", e.Line, ErrInvalidByteValue.Error(), e.Field, e.Value, e.Err.Error())
}

func (e *InvalidByteValueError) Unwrap() []error {
	return []error{ErrInvalidByteValue, e.Err}
}
