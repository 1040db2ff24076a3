package render

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

// ChartTypeMap maps OOXML chart element tags to chart type names.
var ChartTypeMap = map[string]string{
	"lineChart":    "Line",
	"barChart":     "Bar",
	"areaChart":    "Area",
	"pieChart":     "Pie",
	"scatterChart": "XYScatter",
	"bubbleChart":  "Bubble",
	"radarChart":   "Radar",
}

// Inspect lists the charts of an xlsx package, ordered by sheet. Sheets and
// charts that cannot be read are skipped.
func Inspect(xlsxPath string) ([]models.ChartInfo, error) {
	r, err := zip.OpenReader(xlsxPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return inspectPackage(&r.Reader)
}

func inspectPackage(r *zip.Reader) ([]models.ChartInfo, error) {
	workbookXML, err := readZipFile(r, "xl/workbook.xml")
	if err != nil || workbookXML == nil {
		return nil, err
	}
	relsXML, err := readZipFile(r, "xl/_rels/workbook.xml.rels")
	if err != nil || relsXML == nil {
		return nil, err
	}
	order, sheetFiles := workbookSheets(workbookXML, relsXML)

	var result []models.ChartInfo
	for _, sheetName := range order {
		sheetPath := sheetFiles[sheetName]
		sheetRels, err := readZipFile(r, relsPathFor(sheetPath))
		if err != nil || sheetRels == nil {
			continue
		}
		for _, target := range relationshipTargets(sheetRels, "drawing") {
			drawingPath := resolveRelativePath(target, "xl/drawings")
			result = append(result, chartsInDrawing(r, sheetName, drawingPath)...)
		}
	}
	return result, nil
}

// anchorInfo is a chart reference found in a drawing part.
type anchorInfo struct {
	rID    string
	name   string
	anchor string
}

func chartsInDrawing(r *zip.Reader, sheetName, drawingPath string) []models.ChartInfo {
	drawingXML, err := readZipFile(r, drawingPath)
	if err != nil || drawingXML == nil {
		return nil
	}
	relsXML, err := readZipFile(r, relsPathFor(drawingPath))
	if err != nil || relsXML == nil {
		return nil
	}
	targets := relationshipIDs(relsXML, "chart")

	var result []models.ChartInfo
	for _, a := range parseDrawingAnchors(drawingXML) {
		target, ok := targets[a.rID]
		if !ok {
			continue
		}
		chartXML, err := readZipFile(r, resolveRelativePath(target, "xl/charts"))
		if err != nil || chartXML == nil {
			continue
		}
		info := parseChartXML(chartXML)
		info.Sheet = sheetName
		info.Name = a.name
		info.Anchor = a.anchor
		result = append(result, info)
	}
	return result
}

// parseDrawingAnchors finds graphic frames referencing charts.
func parseDrawingAnchors(data []byte) []anchorInfo {
	var result []anchorInfo
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var cur *anchorInfo
	var inFrom bool
	var col, row int
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "twoCellAnchor", "oneCellAnchor", "absoluteAnchor":
				cur = &anchorInfo{}
				col, row = 0, 0
			case "from":
				inFrom = true
			case "col", "row":
				if inFrom {
					txt, err := readElementText(decoder)
					if err != nil {
						continue
					}
					v, _ := strconv.Atoi(strings.TrimSpace(txt))
					if t.Name.Local == "col" {
						col = v
					} else {
						row = v
					}
				}
			case "cNvPr":
				if cur != nil {
					cur.name = attr(t, "name")
				}
			case "chart":
				if cur != nil {
					cur.rID = attr(t, "id")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "from":
				inFrom = false
				if cur != nil {
					cur.anchor, _ = excelize.CoordinatesToCellName(col+1, row+1)
				}
			case "twoCellAnchor", "oneCellAnchor", "absoluteAnchor":
				if cur != nil && cur.rID != "" {
					result = append(result, *cur)
				}
				cur = nil
			}
		}
	}
	return result
}

// parseChartXML reads chart type, title, axes and series from a chart part.
func parseChartXML(data []byte) models.ChartInfo {
	info := models.ChartInfo{ChartType: "unknown"}
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case se.Name.Local == "title" && info.Title == "" && len(info.Axes) == 0 && len(info.Series) == 0:
			info.Title = parseTitle(decoder)
		case ChartTypeMap[se.Name.Local] != "":
			info.ChartType = ChartTypeMap[se.Name.Local]
		case se.Name.Local == "ser":
			info.Series = append(info.Series, parseSeries(decoder))
		case se.Name.Local == "valAx" || se.Name.Local == "catAx":
			info.Axes = append(info.Axes, parseAxis(decoder))
		}
	}
	return info
}

func parseTitle(decoder *xml.Decoder) string {
	var parts []string
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "t" {
				if txt, err := readElementText(decoder); err == nil {
					parts = append(parts, txt)
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

func parseSeries(decoder *xml.Decoder) models.ChartSeries {
	var s models.ChartSeries
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "tx":
				s.Name, s.NameRange = parseSeriesName(decoder)
				depth--
			case "cat", "xVal":
				s.XRange = parseReference(decoder)
				depth--
			case "val", "yVal":
				s.YRange = parseReference(decoder)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return s
}

func parseSeriesName(decoder *xml.Decoder) (name, nameRange string) {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "f":
				if txt, err := readElementText(decoder); err == nil {
					nameRange = strings.TrimSpace(txt)
				}
				depth--
			case "v":
				if txt, err := readElementText(decoder); err == nil {
					name = strings.TrimSpace(txt)
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return name, nameRange
}

// parseReference returns the first formula reference inside the element.
func parseReference(decoder *xml.Decoder) string {
	var ref string
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "f" && ref == "" {
				if txt, err := readElementText(decoder); err == nil {
					ref = strings.TrimSpace(txt)
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return ref
}

func parseAxis(decoder *xml.Decoder) models.ChartAxis {
	var axis models.ChartAxis
	var lo, hi *float64
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "title":
				axis.Title = parseTitle(decoder)
				depth--
			case "min", "max":
				v, err := strconv.ParseFloat(attr(t, "val"), 64)
				if err != nil {
					continue
				}
				if t.Name.Local == "min" {
					lo = &v
				} else {
					hi = &v
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	if lo != nil && hi != nil {
		axis.Range = []float64{*lo, *hi}
	}
	return axis
}

// workbookSheets returns sheet names in workbook order and their part paths.
func workbookSheets(workbookXML, relsXML []byte) ([]string, map[string]string) {
	type sheetRef struct{ name, rID string }
	var sheets []sheetRef
	decoder := xml.NewDecoder(strings.NewReader(string(workbookXML)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			if name, rID := attr(se, "name"), attr(se, "id"); name != "" && rID != "" {
				sheets = append(sheets, sheetRef{name, rID})
			}
		}
	}

	targets := relationshipIDs(relsXML, "worksheet")
	order := make([]string, 0, len(sheets))
	paths := make(map[string]string, len(sheets))
	for _, s := range sheets {
		if target, ok := targets[s.rID]; ok {
			order = append(order, s.name)
			paths[s.name] = resolveRelativePath(target, "xl")
		}
	}
	return order, paths
}

// relationshipIDs maps relationship ids to targets whose type contains kind.
func relationshipIDs(data []byte, kind string) map[string]string {
	result := make(map[string]string)
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			relType := strings.ToLower(attr(se, "Type"))
			if strings.HasSuffix(relType, "/"+kind) {
				result[attr(se, "Id")] = attr(se, "Target")
			}
		}
	}
	return result
}

// relationshipTargets lists targets of the given kind in a stable order.
func relationshipTargets(data []byte, kind string) []string {
	ids := relationshipIDs(data, kind)
	keys := make([]string, 0, len(ids))
	for k := range ids {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	targets := make([]string, len(keys))
	for i, k := range keys {
		targets[i] = ids[k]
	}
	return targets
}

func relsPathFor(part string) string {
	idx := strings.LastIndex(part, "/")
	return part[:idx] + "/_rels/" + part[idx+1:] + ".rels"
}

func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	if strings.HasPrefix(target, "../") {
		clean := target
		for strings.HasPrefix(clean, "../") {
			clean = strings.TrimPrefix(clean, "../")
		}
		return "xl/" + clean
	}
	return baseDir + "/" + target
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
