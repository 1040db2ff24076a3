// Package render draws calibration curves. The widget only talks to the
// Renderer and Handle interfaces; concrete renderers produce images
// (go-chart) or workbook charts (excelize).
package render

import (
	"math"

	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

// Handle is a rendered chart owned by the calling view.
type Handle interface {
	// SetAnnotation stores the annotation under its name.
	SetAnnotation(a models.Annotation) error
	// Update requests a redraw. Callers must not assume the redraw has
	// completed when Update returns.
	Update() error
}

// Renderer constructs charts from a sampled series.
type Renderer interface {
	NewChart(series models.SampleSeries, axes models.AxisConfig) (Handle, error)
}

// finitePoints drops samples that cannot be plotted.
func finitePoints(s models.SampleSeries) (xs, ys []float64) {
	for _, p := range s.Points {
		if !finite(p.Output) || !finite(p.Input) {
			continue
		}
		xs = append(xs, p.Output)
		ys = append(ys, p.Input)
	}
	return xs, ys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// axisRange widens a zero-width range so it can be drawn.
func axisRange(lo, hi float64) (float64, float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo - 1, hi + 1
	}
	return lo, hi
}
