// Package models defines data structures shared by the gcampus widgets.
package models

// DefaultVariable is the free variable used by calibration formulas when none
// is given. Calibrations convert an optical density into a concentration.
const DefaultVariable = "od"

// FormulaSpec pairs a parameter key with a textual formula.
type FormulaSpec struct {
	// Key identifies the parameter the formula belongs to.
	Key string `json:"key" yaml:"key"`
	// Expression is the formula text in one free variable.
	Expression string `json:"expression" yaml:"expression"`
	// Variable is the name of the free variable (default "od").
	Variable string `json:"variable,omitempty" yaml:"variable,omitempty"`
}

// VariableName returns the bound variable, falling back to DefaultVariable.
func (s FormulaSpec) VariableName() string {
	if s.Variable == "" {
		return DefaultVariable
	}
	return s.Variable
}

// Measurement is a single observed pair supplied at runtime.
type Measurement struct {
	// Input is the measured value fed into the formula (e.g. optical density).
	Input float64 `json:"input"`
	// Output is the converted value (e.g. concentration).
	Output float64 `json:"output"`
}
