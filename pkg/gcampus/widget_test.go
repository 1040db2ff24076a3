package gcampus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/desklab/gcampus-go/pkg/gcampus/curve"
	"github.com/desklab/gcampus-go/pkg/gcampus/models"
	"github.com/desklab/gcampus-go/pkg/gcampus/render"
)

type fakeHandle struct {
	annotations []models.Annotation
	updates     int
}

func (h *fakeHandle) SetAnnotation(a models.Annotation) error {
	h.annotations = append(h.annotations, a)
	return nil
}

func (h *fakeHandle) Update() error {
	h.updates++
	return nil
}

type fakeRenderer struct {
	handle *fakeHandle
	series models.SampleSeries
	axes   models.AxisConfig
	err    error
}

func (r *fakeRenderer) NewChart(series models.SampleSeries, axes models.AxisConfig) (render.Handle, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.series, r.axes = series, axes
	r.handle = &fakeHandle{}
	return r.handle, nil
}

func newTestWidget(t *testing.T, key string, r render.Renderer) *Widget {
	opts := DefaultOptions()
	opts.Logger = zaptest.NewLogger(t)
	return NewWidget(key, nil, r, opts)
}

func TestWidgetInit(t *testing.T) {
	r := &fakeRenderer{}
	w := newTestWidget(t, "p1", r)
	assert.Equal(t, Unconfigured, w.State())

	err := w.Init(ChartSpec{
		Formula: "od*2",
		Title:   "Phosphate",
		XLabel:  "Phosphate (mg/l)",
		YLabel:  DefaultYLabel,
		Bounds:  models.AutoBounds(),
	})
	require.NoError(t, err)
	assert.Equal(t, Ready, w.State())

	assert.Equal(t, 17, r.series.Len())
	assert.Equal(t, models.AxisBounds{Min: 0, Max: 3.2}, r.axes.X)
	assert.Equal(t, 1.6, r.axes.YMax)
	assert.Equal(t, "Phosphate", r.axes.Title)

	require.Len(t, r.handle.annotations, 1)
	assert.Equal(t, curve.DefaultAnnotation, r.handle.annotations[0].Name)
	assert.False(t, r.handle.annotations[0].Visible)
	assert.Zero(t, r.handle.updates)
}

func TestWidgetExplicitBounds(t *testing.T) {
	r := &fakeRenderer{}
	w := newTestWidget(t, "p1", r)
	require.NoError(t, w.Init(ChartSpec{Formula: "od*2", Bounds: models.AxisBounds{Min: 0, Max: 5}}))
	assert.Equal(t, models.AxisBounds{Min: 0, Max: 5}, w.Axes().X)
}

func TestWidgetMeasure(t *testing.T) {
	r := &fakeRenderer{}
	w := newTestWidget(t, "p1", r)
	require.NoError(t, w.Init(ChartSpec{Formula: "od*2", Bounds: models.AutoBounds()}))

	res, err := w.Measure(0.8)
	require.NoError(t, err)
	assert.Equal(t, 1.6, res.Value)
	assert.Equal(t, "1.60", res.Formatted)
	assert.Equal(t, 1.6, res.Annotation.X)
	assert.Equal(t, 0.8, res.Annotation.Y)
	assert.InDelta(t, 8.0, res.Annotation.Index, 1e-9)
	assert.True(t, res.Annotation.Visible)

	assert.Equal(t, res.Annotation, r.handle.annotations[len(r.handle.annotations)-1])
	assert.Equal(t, 1, r.handle.updates)

	again, err := w.Measure(0.8)
	require.NoError(t, err)
	assert.Equal(t, res, again)
	assert.Equal(t, 2, r.handle.updates)
}

func TestWidgetBeforeInit(t *testing.T) {
	w := newTestWidget(t, "p2", &fakeRenderer{})

	_, err := w.Convert(1)
	var nie *NotInitializedError
	require.True(t, errors.As(err, &nie))
	assert.Equal(t, "p2", nie.Key)

	_, err = w.Measure(1)
	assert.ErrorAs(t, err, &nie)
	assert.Nil(t, w.Chart())
	assert.Zero(t, w.Series().Len())
}

func TestWidgetInitTwice(t *testing.T) {
	w := newTestWidget(t, "p1", &fakeRenderer{})
	require.NoError(t, w.Init(ChartSpec{Formula: "od"}))
	err := w.Init(ChartSpec{Formula: "od*3"})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	v, err := w.Convert(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestWidgetInitFailures(t *testing.T) {
	w := newTestWidget(t, "p1", &fakeRenderer{})
	err := w.Init(ChartSpec{Formula: "od +"})
	var we *WidgetError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "init", we.Op)
	assert.Equal(t, Unconfigured, w.State())

	boom := errors.New("boom")
	w = newTestWidget(t, "p1", &fakeRenderer{err: boom})
	assert.ErrorIs(t, w.Init(ChartSpec{Formula: "od"}), boom)
	assert.Equal(t, Unconfigured, w.State())

	opts := DefaultOptions()
	opts.SampleCount = 1
	w = NewWidget("p1", nil, &fakeRenderer{}, opts)
	var isc *curve.InvalidSampleCountError
	assert.ErrorAs(t, w.Init(ChartSpec{Formula: "od"}), &isc)
}

func TestWidgetSharedRegistry(t *testing.T) {
	reg := NewRegistry()
	a := NewWidget("a", reg, &fakeRenderer{}, DefaultOptions())
	b := NewWidget("b", reg, &fakeRenderer{}, DefaultOptions())
	require.NoError(t, a.Init(ChartSpec{Formula: "od*10"}))
	require.NoError(t, b.Init(ChartSpec{Formula: "Math.sqrt(od)"}))

	va, err := a.Convert(0.25)
	require.NoError(t, err)
	vb, err := b.Convert(0.25)
	require.NoError(t, err)
	assert.Equal(t, 2.5, va)
	assert.Equal(t, 0.5, vb)
	assert.Equal(t, []string{"a", "b"}, reg.Keys())
}

func TestWidgetWithImageRenderer(t *testing.T) {
	w := newTestWidget(t, "p1", render.NewImageRenderer(320, 200, render.FormatPNG))
	require.NoError(t, w.Init(ChartSpecFor(models.Calibration{
		ID: "p1", Name: "Phosphate", Parameter: "Phosphate", Unit: "mg/l",
		Formula: "od*2", XMin: models.AutoBound, XMax: models.AutoBound,
	})))
	_, err := w.Measure(0.4)
	require.NoError(t, err)

	chart := w.Chart().(*render.ImageChart)
	a, ok := chart.Annotation(curve.DefaultAnnotation)
	require.True(t, ok)
	assert.Equal(t, 0.8, a.X)
	assert.True(t, chart.Dirty())
}

func TestParseBound(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
	}{
		{"", models.AutoBound},
		{" auto ", models.AutoBound},
		{"-9999", models.AutoBound},
		{"2.5", 2.5},
	}
	for _, tt := range tests {
		got, err := ParseBound(tt.in)
		if err != nil {
			t.Errorf("ParseBound(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseBound(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
	if _, err := ParseBound("abc"); err == nil {
		t.Error("ParseBound(\"abc\") expected error")
	}
}
