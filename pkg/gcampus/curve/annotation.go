package curve

import "github.com/desklab/gcampus-go/pkg/gcampus/models"

// DefaultAnnotation is the name of the measurement marker on a chart.
const DefaultAnnotation = "point1"

// FractionalIndex converts a domain value into a fractional sample position
// using the first and last inputs present in the series.
func FractionalIndex(value float64, s models.SampleSeries) (float64, error) {
	n := s.Len()
	if n < 2 {
		return 0, &InvalidSampleCountError{N: n}
	}
	first, last := s.Points[0].Input, s.Points[n-1].Input
	if first == last {
		return 0, nil
	}
	return (value - first) / (last - first) * float64(n-1), nil
}

// MapAnnotation computes the chart position of a measurement. The result is
// a pure function of its arguments and is always visible.
func MapAnnotation(name string, m models.Measurement, s models.SampleSeries) (models.Annotation, error) {
	idx, err := FractionalIndex(m.Input, s)
	if err != nil {
		return models.Annotation{}, err
	}
	if name == "" {
		name = DefaultAnnotation
	}
	return models.Annotation{
		Name:    name,
		X:       m.Output,
		Y:       m.Input,
		Index:   idx,
		Visible: true,
	}, nil
}
