package models

// AutoBound marks an axis bound that is derived from the sampled series.
// Calibrations store it as their default minimum and maximum.
const AutoBound = -9999.0

// AxisBounds holds the requested minimum and maximum of an axis.
type AxisBounds struct {
	// Min is the lower bound or AutoBound.
	Min float64 `json:"min" yaml:"min"`
	// Max is the upper bound or AutoBound.
	Max float64 `json:"max" yaml:"max"`
}

// AutoBounds returns bounds that are fully derived from the series.
func AutoBounds() AxisBounds {
	return AxisBounds{Min: AutoBound, Max: AutoBound}
}

// IsAuto reports whether v is the AutoBound sentinel.
func IsAuto(v float64) bool {
	return v == AutoBound
}

// AxisConfig describes how a calibration chart is laid out.
type AxisConfig struct {
	// Title is the chart title.
	Title string `json:"title,omitempty"`
	// XLabel labels the horizontal (converted value) axis.
	XLabel string `json:"x_label,omitempty"`
	// YLabel labels the vertical (measured value) axis.
	YLabel string `json:"y_label,omitempty"`
	// X holds the resolved horizontal bounds.
	X AxisBounds `json:"x"`
	// YMax is the upper bound of the vertical axis.
	YMax float64 `json:"y_max"`
}

// Annotation is a highlighted point overlaid on a chart.
type Annotation struct {
	// Name identifies the annotation on its chart.
	Name string `json:"name"`
	// X is the converted value (horizontal position).
	X float64 `json:"x"`
	// Y is the measured value (vertical position).
	Y float64 `json:"y"`
	// Index is the fractional sample position of the measurement.
	Index float64 `json:"index"`
	// Visible toggles display of the annotation.
	Visible bool `json:"visible"`
}

// ChartAxis represents axis metadata read back from a workbook chart.
type ChartAxis struct {
	// Title is the axis title.
	Title string `json:"title,omitempty"`
	// Range is [min, max] when both are set explicitly.
	Range []float64 `json:"range,omitempty"`
}

// ChartSeries represents series references of a workbook chart.
type ChartSeries struct {
	// Name is the series display name.
	Name string `json:"name,omitempty"`
	// NameRange is the range reference for the series name.
	NameRange string `json:"name_range,omitempty"`
	// XRange is the range reference for X values.
	XRange string `json:"x_range,omitempty"`
	// YRange is the range reference for Y values.
	YRange string `json:"y_range,omitempty"`
}

// ChartInfo represents a chart found in a workbook.
type ChartInfo struct {
	// Sheet is the sheet the chart is anchored on.
	Sheet string `json:"sheet"`
	// Name is the drawing object name.
	Name string `json:"name,omitempty"`
	// ChartType is the chart type (e.g. XYScatter, Line).
	ChartType string `json:"chart_type"`
	// Title is the chart title.
	Title string `json:"title,omitempty"`
	// Axes lists value axes in document order.
	Axes []ChartAxis `json:"axes,omitempty"`
	// Series lists the chart series.
	Series []ChartSeries `json:"series"`
	// Anchor is the top-left cell the chart is anchored to (e.g. "D2").
	Anchor string `json:"anchor,omitempty"`
}
