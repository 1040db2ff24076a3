package formula

import (
	"errors"
	"fmt"
)

// ErrEmptyFormula indicates a formula without any tokens.
var ErrEmptyFormula = errors.New("empty formula")

// MalformedFormulaError reports a formula that failed to compile.
type MalformedFormulaError struct {
	Expression string
	Pos        int // byte offset into Expression, -1 if unknown
	Reason     string
	Err        error
}

func (e *MalformedFormulaError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("malformed formula %q: %s", e.Expression, e.Reason)
	}
	return fmt.Sprintf("malformed formula %q at offset %d: %s", e.Expression, e.Pos, e.Reason)
}

func (e *MalformedFormulaError) Unwrap() error {
	return e.Err
}

func malformed(expr string, pos int, format string, args ...interface{}) *MalformedFormulaError {
	return &MalformedFormulaError{
		Expression: expr,
		Pos:        pos,
		Reason:     fmt.Sprintf(format, args...),
	}
}
