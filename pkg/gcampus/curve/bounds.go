package curve

import (
	"math"

	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

// ResolveBounds resolves the horizontal axis of the chart, which shows the
// converted value. AutoBound entries of requested become the minimum or
// maximum output of the series, not its sampled inputs. NaN outputs are
// ignored; a series without finite outputs leaves auto bounds at zero.
func ResolveBounds(requested models.AxisBounds, s models.SampleSeries) models.AxisBounds {
	resolved := requested
	if !models.IsAuto(requested.Min) && !models.IsAuto(requested.Max) {
		return resolved
	}
	lo, hi, ok := extent(s.Outputs())
	if !ok {
		lo, hi = 0, 0
	}
	if models.IsAuto(requested.Min) {
		resolved.Min = lo
	}
	if models.IsAuto(requested.Max) {
		resolved.Max = hi
	}
	return resolved
}

// extent returns the minimum and maximum of the finite values.
func extent(values []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	return lo, hi, ok
}
