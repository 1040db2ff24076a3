package render

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

// Format selects the image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ErrNothingToDraw indicates a series without any finite sample.
var ErrNothingToDraw = errors.New("series has no finite samples")

var (
	curveColor      = drawing.ColorFromHex("052c65")
	annotationColor = drawing.ColorFromHex("0d6efd")
)

// ImageRenderer renders calibration charts to PNG or SVG.
type ImageRenderer struct {
	Width  int
	Height int
	Format Format
}

// NewImageRenderer returns a renderer with the given size and format.
func NewImageRenderer(width, height int, format Format) *ImageRenderer {
	return &ImageRenderer{Width: width, Height: height, Format: format}
}

// NewChart implements Renderer.
func (r *ImageRenderer) NewChart(series models.SampleSeries, axes models.AxisConfig) (Handle, error) {
	return r.NewImageChart(series, axes)
}

// NewImageChart is NewChart returning the concrete handle.
func (r *ImageRenderer) NewImageChart(series models.SampleSeries, axes models.AxisConfig) (*ImageChart, error) {
	cfg := *r
	switch cfg.Format {
	case FormatPNG, FormatSVG:
	case "":
		cfg.Format = FormatPNG
	default:
		return nil, fmt.Errorf("unsupported image format %q", r.Format)
	}
	xs, _ := finitePoints(series)
	if len(xs) == 0 {
		return nil, ErrNothingToDraw
	}
	return &ImageChart{
		renderer:    cfg,
		series:      series,
		axes:        axes,
		annotations: make(map[string]models.Annotation),
	}, nil
}

// ImageChart is a Handle that draws lazily: Update marks the chart dirty and
// the next WriteTo produces the image.
type ImageChart struct {
	mu          sync.Mutex
	renderer    ImageRenderer
	series      models.SampleSeries
	axes        models.AxisConfig
	annotations map[string]models.Annotation
	revision    int
	drawn       int
}

// SetAnnotation implements Handle.
func (c *ImageChart) SetAnnotation(a models.Annotation) error {
	if a.Name == "" {
		return errors.New("annotation without name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.annotations[a.Name] = a
	return nil
}

// Annotation returns the stored annotation by name.
func (c *ImageChart) Annotation(name string) (models.Annotation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.annotations[name]
	return a, ok
}

// Update implements Handle.
func (c *ImageChart) Update() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revision++
	return nil
}

// Dirty reports whether an update was requested since the last draw.
func (c *ImageChart) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision != c.drawn
}

// WriteTo draws the chart in its current state.
func (c *ImageChart) WriteTo(w io.Writer) (int64, error) {
	c.mu.Lock()
	graph := c.graph()
	rev := c.revision
	c.mu.Unlock()

	provider := chart.PNG
	if c.renderer.Format == FormatSVG {
		provider = chart.SVG
	}
	cw := &countingWriter{w: w}
	if err := graph.Render(provider, cw); err != nil {
		return cw.n, fmt.Errorf("render chart %q: %w", c.series.Key, err)
	}

	c.mu.Lock()
	c.drawn = rev
	c.mu.Unlock()
	return cw.n, nil
}

func (c *ImageChart) graph() chart.Chart {
	xs, ys := finitePoints(c.series)
	xMin, xMax := axisRange(c.axes.X.Min, c.axes.X.Max)
	yMin, yMax := axisRange(0, c.axes.YMax)

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    c.series.Key,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: curveColor,
				StrokeWidth: 2,
				DotWidth:    1,
				DotColor:    curveColor,
			},
		},
	}
	names := make([]string, 0, len(c.annotations))
	for name := range c.annotations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a := c.annotations[name]
		if !a.Visible || !finite(a.X) || !finite(a.Y) {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    a.Name,
			XValues: []float64{a.X},
			YValues: []float64{a.Y},
			Style: chart.Style{
				StrokeWidth: 0,
				DotWidth:    6,
				DotColor:    annotationColor.WithAlpha(96),
				StrokeColor: annotationColor,
			},
		})
	}

	return chart.Chart{
		Title:  c.axes.Title,
		Width:  c.renderer.Width,
		Height: c.renderer.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  c.axes.XLabel,
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  c.axes.YLabel,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: series,
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
