// Package curve samples calibration formulas into plottable series and maps
// measurements onto them.
package curve

import (
	"math"

	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

// Precision is the number of decimal digits sampled outputs are rounded to.
const Precision = 2

// Evaluator is a numeric function of one variable.
type Evaluator interface {
	Eval(x float64) float64
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(x float64) float64

// Eval calls fn(x).
func (fn EvaluatorFunc) Eval(x float64) float64 {
	return fn(x)
}

// Linspace returns n evenly spaced values from start to end inclusive.
func Linspace(start, end float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, &InvalidSampleCountError{N: n}
	}
	step := (end - start) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}

// Sample evaluates f at n evenly spaced points of [start, end]. Outputs are
// rounded to Precision digits; NaN results are kept.
func Sample(key string, f Evaluator, start, end float64, n int) (models.SampleSeries, error) {
	inputs, err := Linspace(start, end, n)
	if err != nil {
		return models.SampleSeries{}, err
	}
	points := make([]models.Point, n)
	for i, x := range inputs {
		points[i] = models.Point{Input: x, Output: Round(f.Eval(x), Precision)}
	}
	return models.SampleSeries{Key: key, Points: points}, nil
}

// Round rounds v to the given number of decimal digits, half away from zero.
// NaN and infinities are returned unchanged.
func Round(v float64, digits int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, float64(digits))
	r := math.Round(v*scale) / scale
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return v
	}
	return r
}
