package gcampus

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/desklab/gcampus-go/pkg/gcampus/catalog"
	"github.com/desklab/gcampus-go/pkg/gcampus/models"
	"github.com/desklab/gcampus-go/pkg/gcampus/render"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{Calibrations: []models.Calibration{
		{ID: "phosphate", Name: "Phosphate", Parameter: "Phosphate", Unit: "mg/l", Formula: "od*2", XMin: models.AutoBound, XMax: models.AutoBound},
		{ID: "nitrate", Name: "Nitrate", Parameter: "Nitrate", Unit: "mg/l", Formula: "od*od*10", XMin: 0, XMax: 30},
	}}
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibrations.xlsx")
	require.NoError(t, Export(testCatalog(), path, map[string]float64{"phosphate": 0.8}, DefaultOptions()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Curve phosphate", "Curve nitrate", CatalogSheet}, f.GetSheetList())

	x, err := f.GetCellValue("Curve phosphate", "D2")
	require.NoError(t, err)
	assert.Equal(t, "1.6", x)
	x, err = f.GetCellValue("Curve nitrate", "D2")
	require.NoError(t, err)
	assert.Empty(t, x)

	loaded, err := catalog.LoadWorkbook(f, CatalogSheet)
	require.NoError(t, err)
	assert.Equal(t, testCatalog(), loaded)

	charts, err := render.Inspect(path)
	require.NoError(t, err)
	assert.Len(t, charts, 2)
}

func TestExportLongIDs(t *testing.T) {
	cat := &catalog.Catalog{Calibrations: []models.Calibration{
		{ID: "phosphate-low-range-kit-2021", Name: "2021", Parameter: "Phosphate", Formula: "od*2", XMin: models.AutoBound, XMax: models.AutoBound},
		{ID: "phosphate-low-range-kit-2022", Name: "2022", Parameter: "Phosphate", Formula: "od*3", XMin: models.AutoBound, XMax: models.AutoBound},
	}}
	path := filepath.Join(t.TempDir(), "long.xlsx")
	require.NoError(t, Export(cat, path, map[string]float64{"phosphate-low-range-kit-2022": 0.8}, DefaultOptions()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Curve phosphate-low-range-kit-2", "Curve phosphate-low-range-kit~2", CatalogSheet}, f.GetSheetList())
	x, err := f.GetCellValue("Curve phosphate-low-range-kit~2", "D2")
	require.NoError(t, err)
	assert.Equal(t, "2.4", x)
}

func TestExportInvalidFormula(t *testing.T) {
	cat := &catalog.Catalog{Calibrations: []models.Calibration{{ID: "x", Formula: "od +"}}}
	err := Export(cat, filepath.Join(t.TempDir(), "x.xlsx"), nil, DefaultOptions())
	var we *WidgetError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "x", we.Key)
}

func TestRenderImages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "png")
	paths, err := RenderImages(context.Background(), testCatalog(), ImageJob{Dir: dir, Width: 320, Height: 200, Concurrency: 2}, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "phosphate.png"), filepath.Join(dir, "nitrate.png")}, paths)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "%s is not a PNG", p)
	}
}

func TestRenderImagesFailure(t *testing.T) {
	cat := testCatalog()
	cat.Calibrations[1].Formula = "sqrt(-1 - od)"
	_, err := RenderImages(context.Background(), cat, ImageJob{Dir: t.TempDir(), Format: render.FormatSVG}, DefaultOptions())
	assert.ErrorIs(t, err, render.ErrNothingToDraw)
}

func TestRenderImagesCollidingNames(t *testing.T) {
	cat := testCatalog()
	cat.Calibrations[0].ID = "p 1"
	cat.Calibrations[1].ID = "p_1"
	dir := t.TempDir()
	paths, err := RenderImages(context.Background(), cat, ImageJob{Dir: dir, Width: 320, Height: 200}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "p_1.png"), filepath.Join(dir, "p_1-2.png")}, paths)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a_b_c", fileName("a/b c"))

	cals := []models.Calibration{{ID: "a b"}, {ID: "a_b"}, {ID: "A_B"}, {ID: "a_b-2"}, {ID: "c"}}
	tests := []string{"a_b", "a_b-2", "A_B-3", "a_b-2-2", "c"}
	for i, got := range fileNames(cals) {
		if got != tests[i] {
			t.Errorf("fileNames()[%d] = %q, expected %q", i, got, tests[i])
		}
	}
}
