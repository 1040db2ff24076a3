package render

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

func testSeries(key string) models.SampleSeries {
	s := models.SampleSeries{Key: key}
	for i := 0; i < 17; i++ {
		x := float64(i) * 0.1
		s.Points = append(s.Points, models.Point{Input: x, Output: math.Round(x*200) / 100})
	}
	return s
}

func testAxes() models.AxisConfig {
	return models.AxisConfig{
		Title:  "Phosphate",
		XLabel: "Concentration (mg/l)",
		YLabel: "Optical density",
		X:      models.AxisBounds{Min: 0, Max: 3.2},
		YMax:   1.6,
	}
}

func TestImageChartPNG(t *testing.T) {
	h, err := NewImageRenderer(640, 400, FormatPNG).NewImageChart(testSeries("p1"), testAxes())
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "expected PNG signature")
}

func TestImageChartSVGWithAnnotation(t *testing.T) {
	h, err := NewImageRenderer(640, 400, FormatSVG).NewImageChart(testSeries("p1"), testAxes())
	require.NoError(t, err)

	a := models.Annotation{Name: "point1", X: 1.6, Y: 0.8, Index: 8, Visible: true}
	require.NoError(t, h.SetAnnotation(a))
	got, ok := h.Annotation("point1")
	require.True(t, ok)
	assert.Equal(t, a, got)

	assert.False(t, h.Dirty())
	require.NoError(t, h.Update())
	assert.True(t, h.Dirty())

	var buf bytes.Buffer
	_, err = h.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
	assert.False(t, h.Dirty())
}

func TestImageChartRejects(t *testing.T) {
	_, err := NewImageRenderer(10, 10, "gif").NewChart(testSeries("p1"), testAxes())
	assert.Error(t, err)

	nan := models.SampleSeries{Key: "k", Points: []models.Point{{Input: 0, Output: math.NaN()}}}
	_, err = NewImageRenderer(10, 10, FormatPNG).NewChart(nan, testAxes())
	assert.ErrorIs(t, err, ErrNothingToDraw)

	h, err := NewImageRenderer(10, 10, FormatPNG).NewImageChart(testSeries("p1"), testAxes())
	require.NoError(t, err)
	assert.Error(t, h.SetAnnotation(models.Annotation{}))
}

func TestWorkbookChartRoundTrip(t *testing.T) {
	r := NewWorkbookRenderer(nil)
	defer r.Close()

	h, err := r.NewSheetChart(testSeries("p1"), testAxes())
	require.NoError(t, err)
	assert.Equal(t, "Curve p1", h.Sheet())

	require.NoError(t, h.SetAnnotation(models.Annotation{Name: "point1", X: 1.6, Y: 0.8, Visible: true}))
	require.NoError(t, h.Update())

	path := filepath.Join(t.TempDir(), "curves.xlsx")
	require.NoError(t, r.SaveAs(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Curve p1"}, f.GetSheetList())
	x, err := f.GetCellValue("Curve p1", "D2")
	require.NoError(t, err)
	assert.Equal(t, "1.6", x)
	y, err := f.GetCellValue("Curve p1", "E2")
	require.NoError(t, err)
	assert.Equal(t, "0.8", y)
	last, err := f.GetCellValue("Curve p1", "B18")
	require.NoError(t, err)
	assert.Equal(t, "3.2", last)

	charts, err := Inspect(path)
	require.NoError(t, err)
	require.Len(t, charts, 1)
	c := charts[0]
	assert.Equal(t, "Curve p1", c.Sheet)
	assert.Equal(t, "XYScatter", c.ChartType)
	assert.Equal(t, "Phosphate", c.Title)
	assert.Equal(t, "G2", c.Anchor)
	require.Len(t, c.Series, 2)
	assert.Equal(t, "'Curve p1'!$B$2:$B$18", c.Series[0].XRange)
	assert.Equal(t, "'Curve p1'!$A$2:$A$18", c.Series[0].YRange)
	assert.Equal(t, "'Curve p1'!$D$2", c.Series[1].XRange)

	var ranges [][]float64
	for _, a := range c.Axes {
		if a.Range != nil {
			ranges = append(ranges, a.Range)
		}
	}
	assert.ElementsMatch(t, [][]float64{{0, 3.2}, {0, 1.6}}, ranges)
}

func TestWorkbookChartHiddenAnnotation(t *testing.T) {
	r := NewWorkbookRenderer(nil)
	defer r.Close()

	h, err := r.NewSheetChart(testSeries("p2"), testAxes())
	require.NoError(t, err)
	require.NoError(t, h.SetAnnotation(models.Annotation{Name: "point1", X: 1, Y: 1, Visible: true}))
	require.NoError(t, h.Update())
	require.NoError(t, h.SetAnnotation(models.Annotation{Name: "point1", Visible: false}))
	require.NoError(t, h.Update())

	v, err := r.File().GetCellValue(h.Sheet(), "D2")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestWorkbookDuplicateSheet(t *testing.T) {
	r := NewWorkbookRenderer(nil)
	defer r.Close()
	_, err := r.NewChart(testSeries("p1"), testAxes())
	require.NoError(t, err)
	_, err = r.NewChart(testSeries("p1"), testAxes())
	assert.Error(t, err)
}

func TestWorkbookTruncatedKeysGetDistinctSheets(t *testing.T) {
	r := NewWorkbookRenderer(nil)
	defer r.Close()

	keys := []string{
		"phosphate-low-range-kit-2021",
		"phosphate-low-range-kit-2022",
		"phosphate-low-range-kit-2023",
	}
	var sheets []string
	for _, key := range keys {
		h, err := r.NewSheetChart(testSeries(key), testAxes())
		require.NoError(t, err, key)
		assert.LessOrEqual(t, len([]rune(h.Sheet())), 31)
		sheets = append(sheets, h.Sheet())
	}
	assert.Equal(t, []string{
		"Curve phosphate-low-range-kit-2",
		"Curve phosphate-low-range-kit~2",
		"Curve phosphate-low-range-kit~3",
	}, sheets)

	_, err := r.NewSheetChart(testSeries(keys[1]), testAxes())
	assert.Error(t, err)
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"p1", "Curve p1"},
		{"a/b:c", "Curve a_b_c"},
		{"it's", "Curve it_s"},
		{strings.Repeat("x", 40), "Curve " + strings.Repeat("x", 25)},
	}
	for _, tt := range tests {
		if got := SheetName(tt.key); got != tt.expected {
			t.Errorf("SheetName(%q) = %q, expected %q", tt.key, got, tt.expected)
		}
	}
}

func TestResolveRelativePath(t *testing.T) {
	tests := []struct {
		target, base, expected string
	}{
		{"../drawings/drawing1.xml", "xl/drawings", "xl/drawings/drawing1.xml"},
		{"worksheets/sheet1.xml", "xl", "xl/worksheets/sheet1.xml"},
		{"/xl/worksheets/sheet2.xml", "xl", "xl/worksheets/sheet2.xml"},
	}
	for _, tt := range tests {
		if got := resolveRelativePath(tt.target, tt.base); got != tt.expected {
			t.Errorf("resolveRelativePath(%q, %q) = %q, expected %q", tt.target, tt.base, got, tt.expected)
		}
	}
	assert.Equal(t, "xl/worksheets/_rels/sheet1.xml.rels", relsPathFor("xl/worksheets/sheet1.xml"))
}

func TestParseChartXML(t *testing.T) {
	data := []byte(`<c:chartSpace xmlns:c="c" xmlns:a="a"><c:chart>
<c:title><c:tx><c:rich><a:p><a:r><a:t>Nitrate</a:t></a:r></a:p></c:rich></c:tx></c:title>
<c:plotArea><c:lineChart><c:ser><c:tx><c:strRef><c:f>S!$B$1</c:f></c:strRef></c:tx>
<c:cat><c:numRef><c:f>S!$A$2:$A$5</c:f></c:numRef></c:cat>
<c:val><c:numRef><c:f>S!$B$2:$B$5</c:f></c:numRef></c:val></c:ser></c:lineChart>
<c:valAx><c:scaling><c:max val="5"/><c:min val="1"/></c:scaling>
<c:title><c:tx><c:rich><a:p><a:r><a:t>mg/l</a:t></a:r></a:p></c:rich></c:tx></c:title></c:valAx>
</c:plotArea></c:chart></c:chartSpace>`)

	info := parseChartXML(data)
	assert.Equal(t, "Line", info.ChartType)
	assert.Equal(t, "Nitrate", info.Title)
	require.Len(t, info.Series, 1)
	assert.Equal(t, "S!$B$1", info.Series[0].NameRange)
	assert.Equal(t, "S!$A$2:$A$5", info.Series[0].XRange)
	assert.Equal(t, "S!$B$2:$B$5", info.Series[0].YRange)
	require.Len(t, info.Axes, 1)
	assert.Equal(t, "mg/l", info.Axes[0].Title)
	assert.Equal(t, []float64{1, 5}, info.Axes[0].Range)
}
