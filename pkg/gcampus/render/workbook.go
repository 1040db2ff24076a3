package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

// Cell layout of a curve sheet. The curve table starts at A1, the annotation
// occupies D1:E2 and the chart is anchored at G2.
const (
	curveHeaderRow  = 1
	annotationXCell = "D2"
	annotationYCell = "E2"
	chartAnchor     = "G2"
	maxSheetName    = 31
)

// WorkbookRenderer writes each calibration curve to its own worksheet with a
// scatter chart. It is safe for concurrent use.
type WorkbookRenderer struct {
	mu   sync.Mutex
	file *excelize.File
	keys map[string]string
}

// NewWorkbookRenderer renders into f. A nil f creates a new workbook.
func NewWorkbookRenderer(f *excelize.File) *WorkbookRenderer {
	if f == nil {
		f = excelize.NewFile()
	}
	return &WorkbookRenderer{file: f, keys: make(map[string]string)}
}

// File returns the underlying workbook.
func (r *WorkbookRenderer) File() *excelize.File {
	return r.file
}

// SaveAs writes the workbook to path. The default empty sheet is dropped
// when at least one curve was added.
func (r *WorkbookRenderer) SaveAs(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sheets := r.file.GetSheetList()
	if len(sheets) > 1 && sheets[0] == "Sheet1" {
		if err := r.file.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	return r.file.SaveAs(path)
}

// Close releases the workbook.
func (r *WorkbookRenderer) Close() error {
	return r.file.Close()
}

// NewChart implements Renderer.
func (r *WorkbookRenderer) NewChart(series models.SampleSeries, axes models.AxisConfig) (Handle, error) {
	return r.NewSheetChart(series, axes)
}

// NewSheetChart is NewChart returning the concrete handle.
func (r *WorkbookRenderer) NewSheetChart(series models.SampleSeries, axes models.AxisConfig) (*SheetChart, error) {
	if series.Len() == 0 {
		return nil, ErrNothingToDraw
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if sheet, ok := r.keys[series.Key]; ok {
		return nil, fmt.Errorf("curve %q already has sheet %q", series.Key, sheet)
	}
	sheet := r.freeSheetName(series.Key)
	if _, err := r.file.NewSheet(sheet); err != nil {
		return nil, err
	}
	if err := writeCurveTable(r.file, sheet, series, axes); err != nil {
		return nil, err
	}
	if err := r.file.AddChart(sheet, chartAnchor, curveChart(sheet, series.Len(), axes)); err != nil {
		return nil, fmt.Errorf("add chart to %q: %w", sheet, err)
	}
	r.keys[series.Key] = sheet
	return &SheetChart{
		renderer:    r,
		sheet:       sheet,
		annotations: make(map[string]models.Annotation),
	}, nil
}

// freeSheetName returns SheetName(key), or the name with a "~N" suffix when
// another key already truncated to the same sheet.
func (r *WorkbookRenderer) freeSheetName(key string) string {
	name := SheetName(key)
	for n := 2; r.sheetExists(name); n++ {
		suffix := fmt.Sprintf("~%d", n)
		name = truncateRunes(SheetName(key), maxSheetName-len(suffix)) + suffix
	}
	return name
}

func (r *WorkbookRenderer) sheetExists(name string) bool {
	idx, _ := r.file.GetSheetIndex(name)
	return idx != -1
}

func writeCurveTable(f *excelize.File, sheet string, series models.SampleSeries, axes models.AxisConfig) error {
	yLabel, xLabel := labelOr(axes.YLabel, "Input"), labelOr(axes.XLabel, "Output")
	header := []interface{}{yLabel, xLabel, nil, "Annotation " + xLabel, "Annotation " + yLabel}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, p := range series.Points {
		cell, err := excelize.CoordinatesToCellName(1, curveHeaderRow+1+i)
		if err != nil {
			return err
		}
		row := []interface{}{cellValue(p.Input), cellValue(p.Output)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func curveChart(sheet string, n int, axes models.AxisConfig) *excelize.Chart {
	ref := func(col string, from, to int) string {
		if from == to {
			return fmt.Sprintf("'%s'!$%s$%d", sheet, col, from)
		}
		return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", sheet, col, from, col, to)
	}
	first, last := curveHeaderRow+1, curveHeaderRow+n
	xMin, xMax := axisRange(axes.X.Min, axes.X.Max)
	yMin, yMax := axisRange(0, axes.YMax)

	return &excelize.Chart{
		Type: excelize.Scatter,
		Series: []excelize.ChartSeries{
			{
				Name:       ref("B", curveHeaderRow, curveHeaderRow),
				Categories: ref("B", first, last),
				Values:     ref("A", first, last),
				Marker:     excelize.ChartMarker{Symbol: "none"},
				Line:       excelize.ChartLine{Width: 1.5},
			},
			{
				Name:       ref("D", curveHeaderRow, curveHeaderRow),
				Categories: ref("D", 2, 2),
				Values:     ref("E", 2, 2),
				Marker:     excelize.ChartMarker{Symbol: "circle", Size: 8},
				Line:       excelize.ChartLine{Type: excelize.ChartLineNone},
			},
		},
		Title: []excelize.RichTextRun{{Text: axes.Title}},
		XAxis: excelize.ChartAxis{
			Minimum: &xMin,
			Maximum: &xMax,
			Title:   []excelize.RichTextRun{{Text: axes.XLabel}},
		},
		YAxis: excelize.ChartAxis{
			Minimum: &yMin,
			Maximum: &yMax,
			Title:   []excelize.RichTextRun{{Text: axes.YLabel}},
		},
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{Width: 480, Height: 320},
	}
}

// SheetChart is a Handle backed by a worksheet. The chart references the
// annotation cells, so an update only rewrites those cells.
type SheetChart struct {
	renderer    *WorkbookRenderer
	sheet       string
	annotations map[string]models.Annotation
	current     string
}

// Sheet returns the worksheet name.
func (c *SheetChart) Sheet() string {
	return c.sheet
}

// SetAnnotation implements Handle. The workbook shows the most recently set
// annotation.
func (c *SheetChart) SetAnnotation(a models.Annotation) error {
	c.renderer.mu.Lock()
	defer c.renderer.mu.Unlock()
	c.annotations[a.Name] = a
	c.current = a.Name
	return nil
}

// Update implements Handle.
func (c *SheetChart) Update() error {
	c.renderer.mu.Lock()
	defer c.renderer.mu.Unlock()
	a, ok := c.annotations[c.current]
	if !ok || !a.Visible {
		if err := c.renderer.file.SetCellValue(c.sheet, annotationXCell, nil); err != nil {
			return err
		}
		return c.renderer.file.SetCellValue(c.sheet, annotationYCell, nil)
	}
	if err := c.renderer.file.SetCellValue(c.sheet, annotationXCell, cellValue(a.X)); err != nil {
		return err
	}
	return c.renderer.file.SetCellValue(c.sheet, annotationYCell, cellValue(a.Y))
}

// SheetName derives a valid worksheet name from a parameter key. Distinct
// long keys may share a name; the renderer suffixes clashes.
func SheetName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']', '\'':
			return '_'
		}
		return r
	}, "Curve "+key)
	return truncateRunes(name, maxSheetName)
}

func truncateRunes(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

// cellValue maps values a cell cannot hold to an empty cell.
func cellValue(v float64) interface{} {
	if !finite(v) {
		return nil
	}
	return v
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
