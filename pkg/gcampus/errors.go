package gcampus

import (
	"errors"
	"fmt"
)

// ErrAlreadyInitialized indicates a second Init on a ready widget.
var ErrAlreadyInitialized = errors.New("widget already initialized")

// NotInitializedError indicates an evaluation for a key without a compiled
// formula.
type NotInitializedError struct {
	Key string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("parameter %s has not been initialized yet", e.Key)
}

// WidgetError wraps a failure of a widget operation.
type WidgetError struct {
	Key string
	Op  string // "init", "convert", "measure"
	Err error
}

func (e *WidgetError) Error() string {
	return fmt.Sprintf("calibration %q (%s): %v", e.Key, e.Op, e.Err)
}

func (e *WidgetError) Unwrap() error {
	return e.Err
}

func newWidgetError(key, op string, err error) *WidgetError {
	return &WidgetError{Key: key, Op: op, Err: err}
}
