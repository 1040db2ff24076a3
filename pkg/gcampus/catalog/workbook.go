package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

// Columns are the header names of a catalog sheet, in export order.
var Columns = []string{"id", "name", "parameter", "unit", "formula", "x_min", "x_max", "kit"}

// LoadWorkbookFile opens path and reads the catalog from sheet. An empty
// sheet name selects the first sheet.
func LoadWorkbookFile(path, sheet string, opts ...LoadOption) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadWorkbook(f, sheet, opts...)
}

// LoadWorkbook reads a catalog from a sheet whose first non-empty row holds
// the column names. Empty rows are skipped; empty bounds are automatic.
func LoadWorkbook(f *excelize.File, sheet string, opts ...LoadOption) (*Catalog, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	var header map[string]int
	c := newCatalog(opts)
	for rowIdx, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		if header == nil {
			header = headerIndex(row)
			if _, ok := header["id"]; !ok {
				return nil, fmt.Errorf("sheet %q: missing id column", sheet)
			}
			continue
		}
		cell := func(name string) string {
			if i, ok := header[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		xMin, err := parseBound(cell("x_min"))
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: x_min: %w", sheet, rowIdx+1, err)
		}
		xMax, err := parseBound(cell("x_max"))
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: x_max: %w", sheet, rowIdx+1, err)
		}
		id := cell("id")
		if numericCell(f, sheet, header["id"], rowIdx) {
			id = parseID(id)
		}
		c.Calibrations = append(c.Calibrations, models.Calibration{
			ID:        id,
			Name:      cell("name"),
			Parameter: cell("parameter"),
			Unit:      cell("unit"),
			Formula:   cell("formula"),
			XMin:      xMin,
			XMax:      xMax,
			Kit:       cell("kit"),
		})
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// WriteSheet writes the catalog to sheet, creating it if needed. Automatic
// bounds are left empty.
func (c *Catalog) WriteSheet(f *excelize.File, sheet string) error {
	if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	header := make([]interface{}, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, cal := range c.Calibrations {
		row := []interface{}{
			cal.ID, cal.Name, cal.Parameter, cal.Unit, cal.Formula,
			boundCell(cal.XMin), boundCell(cal.XMax), cal.Kit,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func headerIndex(row []string) map[string]int {
	idx := make(map[string]int, len(row))
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			idx[name] = i
		}
	}
	return idx
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseValue attempts to parse a cell as a number. Returns int64 for
// integers, float64 for decimals, or the original string.
func parseValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// numericCell reports whether the cell at the zero-based column and row
// holds a number rather than text.
func numericCell(f *excelize.File, sheet string, col, row int) bool {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return false
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return false
	}
	return typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber
}

// parseID keeps ids like "7" instead of "7.0" when a sheet stores them as
// numbers. Text ids are never passed here.
func parseID(s string) string {
	switch v := parseValue(s).(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return s
}

func parseBound(s string) (float64, error) {
	if s == "" {
		return models.AutoBound, nil
	}
	switch v := parseValue(s).(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("not a number: %q", s)
	}
}

func boundCell(v float64) interface{} {
	if v == models.AutoBound {
		return nil
	}
	return v
}
