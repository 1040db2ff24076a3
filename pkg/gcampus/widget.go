package gcampus

import (
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/desklab/gcampus-go/pkg/gcampus/curve"
	"github.com/desklab/gcampus-go/pkg/gcampus/models"
	"github.com/desklab/gcampus-go/pkg/gcampus/render"
)

// State is the lifecycle state of a Widget.
type State int

const (
	// Unconfigured widgets have no compiled formula.
	Unconfigured State = iota
	// Ready widgets have a compiled formula, a sampled series and a chart.
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "unconfigured"
}

// DefaultYLabel labels the measured value axis when a calibration does not
// name it.
const DefaultYLabel = "Optical density"

// ChartSpec is what the embedding page supplies to initialise a widget.
type ChartSpec struct {
	Formula string
	Title   string
	XLabel  string
	YLabel  string
	Bounds  models.AxisBounds
}

// ChartSpecFor builds the chart spec of a stored calibration.
func ChartSpecFor(c models.Calibration) ChartSpec {
	return ChartSpec{
		Formula: c.Formula,
		Title:   c.Name,
		XLabel:  c.XLabel(),
		YLabel:  DefaultYLabel,
		Bounds:  c.Bounds(),
	}
}

// Result is the outcome of a measurement conversion.
type Result struct {
	// Value is the converted value rounded to two decimals.
	Value float64 `json:"value"`
	// Formatted is Value with exactly two decimals, as shown in the form.
	Formatted string `json:"formatted"`
	// Annotation is the marker placed on the chart.
	Annotation models.Annotation `json:"annotation"`
}

// Widget is a calibration-curve widget bound to one parameter key.
type Widget struct {
	key      string
	registry *Registry
	renderer render.Renderer
	opts     Options
	logger   *zap.Logger

	mu     sync.Mutex
	state  State
	series models.SampleSeries
	axes   models.AxisConfig
	chart  render.Handle
}

// NewWidget creates an unconfigured widget. A nil registry gives the widget
// a private one.
func NewWidget(key string, registry *Registry, renderer render.Renderer, opts Options) *Widget {
	if registry == nil {
		registry = NewRegistry()
	}
	opts = opts.withDefaults()
	return &Widget{
		key:      key,
		registry: registry,
		renderer: renderer,
		opts:     opts,
		logger:   opts.Logger.With(zap.String("key", key)),
	}
}

// Init compiles the formula, samples the curve, resolves the axis bounds and
// constructs the chart. It moves the widget from Unconfigured to Ready and
// may only succeed once.
func (w *Widget) Init(spec ChartSpec) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == Ready {
		return newWidgetError(w.key, "init", ErrAlreadyInitialized)
	}
	f, err := w.registry.Register(models.FormulaSpec{
		Key:        w.key,
		Expression: spec.Formula,
		Variable:   w.opts.Variable,
	})
	if err != nil {
		return newWidgetError(w.key, "init", err)
	}
	series, err := curve.Sample(w.key, f, w.opts.DomainStart, w.opts.DomainEnd, w.opts.SampleCount)
	if err != nil {
		return newWidgetError(w.key, "init", err)
	}
	axes := models.AxisConfig{
		Title:  spec.Title,
		XLabel: spec.XLabel,
		YLabel: spec.YLabel,
		X:      curve.ResolveBounds(spec.Bounds, series),
		YMax:   w.opts.DomainEnd,
	}
	chart, err := w.renderer.NewChart(series, axes)
	if err != nil {
		return newWidgetError(w.key, "init", err)
	}
	if err := chart.SetAnnotation(models.Annotation{Name: w.opts.Annotation}); err != nil {
		return newWidgetError(w.key, "init", err)
	}

	w.series, w.axes, w.chart = series, axes, chart
	w.state = Ready
	w.logger.Debug("calibration widget ready",
		zap.String("formula", f.String()),
		zap.Int("samples", series.Len()),
		zap.Float64("x_min", axes.X.Min),
		zap.Float64("x_max", axes.X.Max))
	return nil
}

// Convert evaluates the widget's formula at value, rounded to two decimals.
func (w *Widget) Convert(value float64) (float64, error) {
	w.mu.Lock()
	ready := w.state == Ready
	w.mu.Unlock()
	if !ready {
		return 0, &NotInitializedError{Key: w.key}
	}
	return w.registry.Evaluate(w.key, value)
}

// Measure converts value, marks the measurement on the chart and requests a
// redraw. Repeating a measurement yields the same annotation.
func (w *Widget) Measure(value float64) (Result, error) {
	converted, err := w.Convert(value)
	if err != nil {
		return Result{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	a, err := curve.MapAnnotation(w.opts.Annotation, models.Measurement{Input: value, Output: converted}, w.series)
	if err != nil {
		return Result{}, newWidgetError(w.key, "measure", err)
	}
	if err := w.chart.SetAnnotation(a); err != nil {
		return Result{}, newWidgetError(w.key, "measure", err)
	}
	if err := w.chart.Update(); err != nil {
		return Result{}, newWidgetError(w.key, "measure", err)
	}
	w.logger.Debug("measurement annotated",
		zap.Float64("input", value),
		zap.Float64("output", converted),
		zap.Float64("index", a.Index))
	return Result{Value: converted, Formatted: FormatValue(converted), Annotation: a}, nil
}

// Key returns the parameter key.
func (w *Widget) Key() string {
	return w.key
}

// State returns the lifecycle state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Series returns the sampled curve. It is empty until Init succeeds.
func (w *Widget) Series() models.SampleSeries {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.series
}

// Axes returns the resolved chart layout.
func (w *Widget) Axes() models.AxisConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.axes
}

// Chart returns the chart handle, nil until Init succeeds.
func (w *Widget) Chart() render.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chart
}

// FormatValue renders a converted value with two decimals.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', curve.Precision, 64)
}

// ParseBound parses an axis bound as supplied by a page. Empty strings and
// "auto" map to models.AutoBound.
func ParseBound(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		return models.AutoBound, nil
	}
	return strconv.ParseFloat(s, 64)
}
