// Package debug turns panics raised while handling a line into errors.
package debug

import (
	"errors"
	"fmt"
)

var (
	ErrPanic = errors.New("panic")
)

// PanicErrorMessage carries the line or record that caused a panic.
type PanicErrorMessage struct {
	Line       int
	Msg        interface{}
	Inner      string
	Stacktrace []byte
}

func (e *PanicErrorMessage) Error() string {
	return fmt.Sprintf("line %d: panic: %s", e.Line, e.Inner)
}

func (e *PanicErrorMessage) Unwrap() []error {
	return []error{ErrPanic}
}

func newPanicError(lineNo int, msg, pErr interface{}, stack []byte) *PanicErrorMessage {
	return &PanicErrorMessage{
		Line:       lineNo,
		Msg:        msg,
		Inner:      fmt.Sprint(pErr),
		Stacktrace: stack,
	}
}
