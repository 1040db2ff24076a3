// Package gcampus provides the calibration-curve widget: formulas are
// compiled into a registry, sampled into a curve, drawn through a renderer
// and measurements are marked on the chart.
package gcampus

import (
	"go.uber.org/zap"

	"github.com/desklab/gcampus-go/pkg/gcampus/curve"
	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

// Options configures sampling and display of a calibration widget.
type Options struct {
	// Variable is the free variable of the formula (default "od").
	Variable string
	// DomainStart is the first sampled input value.
	DomainStart float64
	// DomainEnd is the last sampled input value; it is also the upper bound
	// of the vertical axis.
	DomainEnd float64
	// SampleCount is the number of samples drawn from the formula.
	SampleCount int
	// Annotation names the measurement marker on the chart.
	Annotation string
	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns the sampling used by the measurement pages:
// 17 optical density values between 0 and 1.6.
func DefaultOptions() Options {
	return Options{
		Variable:    models.DefaultVariable,
		DomainStart: 0,
		DomainEnd:   1.6,
		SampleCount: 17,
		Annotation:  curve.DefaultAnnotation,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Variable == "" {
		o.Variable = d.Variable
	}
	if o.SampleCount == 0 {
		o.SampleCount = d.SampleCount
	}
	if o.DomainStart == 0 && o.DomainEnd == 0 {
		o.DomainStart, o.DomainEnd = d.DomainStart, d.DomainEnd
	}
	if o.Annotation == "" {
		o.Annotation = d.Annotation
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
