package models

// Point is one sample of a calibration curve.
type Point struct {
	// Input is the sampled domain value.
	Input float64 `json:"input"`
	// Output is the formula evaluated at Input, rounded for display.
	Output float64 `json:"output"`
}

// SampleSeries is an ordered, immutable list of curve samples.
type SampleSeries struct {
	// Key is the parameter key the series was produced for.
	Key string `json:"key"`
	// Points holds the samples in domain order.
	Points []Point `json:"points"`
}

// Len returns the number of samples.
func (s SampleSeries) Len() int {
	return len(s.Points)
}

// Inputs returns the domain values of the series.
func (s SampleSeries) Inputs() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Input
	}
	return out
}

// Outputs returns the range values of the series.
func (s SampleSeries) Outputs() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Output
	}
	return out
}
