package form

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a submission is already in flight on the same form.
var ErrBusy = errors.New("a submission is already in progress for this form")

// ValidationError names the first field that failed. No I/O happened.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// WriteError wraps a document store failure. A blob uploaded before the failed
// write stays in the bucket under Key.
type WriteError struct {
	Key string // empty when nothing was uploaded
	Err error
}

func (e *WriteError) Error() string {
	return "write record: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error { return e.Err }
