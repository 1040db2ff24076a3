package catalog

import (
	"errors"
	"fmt"
)

// ErrDuplicateID indicates two calibrations sharing an id.
var ErrDuplicateID = errors.New("duplicate calibration id")

// ValidationError reports the first invalid calibration of a catalog.
type ValidationError struct {
	Index int
	ID    string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("calibration %d (%q): %v", e.Index, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
