package models

// Calibration describes how a measurement kit converts a reading into a
// parameter value.
type Calibration struct {
	// ID is the calibration key used for registration.
	ID string `json:"id" yaml:"id" validate:"required"`
	// Name is the display name.
	Name string `json:"name" yaml:"name" validate:"required,max=280"`
	// Parameter is the parameter type (e.g. "Phosphate").
	Parameter string `json:"parameter" yaml:"parameter" validate:"required"`
	// Unit is the unit of the converted value.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`
	// Formula is the calibration formula in the variable "od".
	Formula string `json:"formula" yaml:"formula" validate:"required,max=100"`
	// XMin is the minimal parameter value or AutoBound.
	XMin float64 `json:"x_min" yaml:"x_min"`
	// XMax is the maximal parameter value or AutoBound.
	XMax float64 `json:"x_max" yaml:"x_max"`
	// Kit is the measurement kit name.
	Kit string `json:"kit,omitempty" yaml:"kit,omitempty"`
}

// Bounds returns the calibration's axis bounds.
func (c Calibration) Bounds() AxisBounds {
	return AxisBounds{Min: c.XMin, Max: c.XMax}
}

// Spec returns the formula spec registered for this calibration.
func (c Calibration) Spec() FormulaSpec {
	return c.SpecFor(DefaultVariable)
}

// SpecFor returns the formula spec with the formula read in variable.
func (c Calibration) SpecFor(variable string) FormulaSpec {
	if variable == "" {
		variable = DefaultVariable
	}
	return FormulaSpec{Key: c.ID, Expression: c.Formula, Variable: variable}
}

// XLabel returns the converted value axis label.
func (c Calibration) XLabel() string {
	if c.Unit == "" {
		return c.Parameter
	}
	return c.Parameter + " (" + c.Unit + ")"
}
