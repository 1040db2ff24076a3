// Package formula compiles calibration formulas into evaluable functions.
//
// Formulas are parsed by a small recursive-descent parser into an expression
// tree and evaluated by interpretation; no code is generated or executed. The
// grammar covers arithmetic, exponentiation, a fixed set of math functions and
// constants, and exactly one free variable.
package formula

import (
	"fmt"

	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

// Formula is a compiled formula of one variable. It is immutable and safe
// for concurrent use.
type Formula struct {
	source   string
	variable string
	root     node
}

// Compile parses expr with variable as its only free variable. An empty
// variable defaults to "od". Any syntax error, unknown identifier or wrong
// function arity is reported as a *MalformedFormulaError.
func Compile(expr, variable string) (*Formula, error) {
	if variable == "" {
		variable = models.DefaultVariable
	}
	if !validVariable(variable) {
		return nil, &MalformedFormulaError{
			Expression: expr,
			Pos:        -1,
			Reason:     fmt.Sprintf("invalid variable name %q", variable),
		}
	}
	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{src: expr, variable: variable, tokens: tokens}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return &Formula{source: expr, variable: variable, root: root}, nil
}

// CompileSpec compiles the expression of a FormulaSpec.
func CompileSpec(spec models.FormulaSpec) (*Formula, error) {
	return Compile(spec.Expression, spec.VariableName())
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr, variable string) *Formula {
	f, err := Compile(expr, variable)
	if err != nil {
		panic(err)
	}
	return f
}

// Eval evaluates the formula at x. NaN and infinities propagate.
func (f *Formula) Eval(x float64) float64 {
	return f.root.eval(x)
}

// Source returns the formula text as given to Compile.
func (f *Formula) Source() string {
	return f.source
}

// Variable returns the bound variable name.
func (f *Formula) Variable() string {
	return f.variable
}

// String returns a fully parenthesised rendering of the parsed formula.
func (f *Formula) String() string {
	return f.root.String()
}
