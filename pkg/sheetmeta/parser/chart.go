package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/opc"
)

// ChartTypeMap maps OOXML chart family element tags to chart type names.
var ChartTypeMap = map[string]string{
	"lineChart":      "Line",
	"line3DChart":    "3DLine",
	"barChart":       "Bar",
	"bar3DChart":     "3DBar",
	"areaChart":      "Area",
	"area3DChart":    "3DArea",
	"pieChart":       "Pie",
	"pie3DChart":     "3DPie",
	"doughnutChart":  "Doughnut",
	"scatterChart":   "XYScatter",
	"bubbleChart":    "Bubble",
	"radarChart":     "Radar",
	"surfaceChart":   "Surface",
	"surface3DChart": "3DSurface",
	"stockChart":     "Stock",
	"ofPieChart":     "PieOfPie",
}

// RangeResolver resolves a range reference (e.g. "Sheet1!$B$2:$B$6") to
// the flattened cell values it covers. A nil resolver is allowed; ranges
// then stay unresolved and only cached literals are used.
type RangeResolver interface {
	ResolveRange(ref string) ([]string, error)
}

// dataRef is one c:cat or c:val data reference: the range formula plus
// any cached literal points.
type dataRef struct {
	formula string
	points  []string
}

// ExtractChart parses one chart part into ChartData. The chart type is
// taken from the first recognized chart-family element; unrecognized
// families are preserved as "Other" with their series intact. Category
// labels are paired positionally with series values; a length mismatch
// is returned as partial data with a warning, never a failure.
func ExtractChart(pkg *opc.Package, chartPart string, grid RangeResolver) (*models.ChartData, []models.Warning, error) {
	data, err := pkg.ReadPart(chartPart)
	if err != nil {
		return nil, nil, err
	}

	chart := &models.ChartData{SourcePartPath: chartPart}
	var warnings []models.Warning

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "chart" || se.Name.Space != nsC {
			continue
		}
		warnings = parseChartElement(decoder, chart, grid, chartPart)
		break
	}

	if chart.ChartType == "" {
		chart.ChartType = "Other"
	}
	if len(chart.Series) > 0 {
		for _, p := range chart.Series[0].Points {
			if p.Category != "" {
				chart.Categories = append(chart.Categories, p.Category)
			}
		}
	}
	return chart, warnings, nil
}

func parseChartElement(decoder *xml.Decoder, chart *models.ChartData, grid RangeResolver, chartPart string) []models.Warning {
	var warnings []models.Warning
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
				if chart.Title == "" {
					chart.Title = parseChartTitle(decoder)
				} else {
					_ = skipElement(decoder)
				}
				depth--
			case "plotArea":
				warnings = parsePlotArea(decoder, chart, grid, chartPart)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return warnings
}

// parsePlotArea walks the plot area: the first chart-family element sets
// the type and contributes series; axis elements contribute titles.
func parsePlotArea(decoder *xml.Decoder, chart *models.ChartData, grid RangeResolver, chartPart string) []models.Warning {
	var warnings []models.Warning
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch {
			case strings.HasSuffix(t.Name.Local, "Chart"):
				family := "Other"
				if mapped, ok := ChartTypeMap[t.Name.Local]; ok {
					family = mapped
				}
				if chart.ChartType == "" {
					chart.ChartType = family
					series, w := parseChartSeries(decoder, grid, chartPart)
					chart.Series = series
					warnings = append(warnings, w...)
				} else {
					_ = skipElement(decoder)
				}
				depth--
			case t.Name.Local == "catAx":
				title, _ := parseAxis(decoder)
				chart.XAxisTitle = title
				depth--
			case t.Name.Local == "valAx":
				title, axisRange := parseAxis(decoder)
				chart.YAxisTitle = title
				chart.YAxisRange = axisRange
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return warnings
}

// parseChartTitle concatenates all text runs of a title element, so a
// title split across formatting runs comes back whole.
func parseChartTitle(decoder *xml.Decoder) string {
	var title strings.Builder
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
					title.WriteString(txt)
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return strings.TrimSpace(title.String())
}

func parseAxis(decoder *xml.Decoder) (title string, axisRange []float64) {
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
				title = parseChartTitle(decoder)
				depth--
			case "scaling":
				axisRange = parseAxisScaling(decoder)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return
}

func parseAxisScaling(decoder *xml.Decoder) []float64 {
	var min, max *float64
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
			case "min":
				if v, err := strconv.ParseFloat(attr(t, "val"), 64); err == nil {
					min = &v
				}
			case "max":
				if v, err := strconv.ParseFloat(attr(t, "val"), 64); err == nil {
					max = &v
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	if min != nil && max != nil {
		return []float64{*min, *max}
	}
	return nil
}

func parseChartSeries(decoder *xml.Decoder, grid RangeResolver, chartPart string) ([]models.Series, []models.Warning) {
	var series []models.Series
	var warnings []models.Warning
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "ser" {
				s, w := parseSingleSeries(decoder, grid, chartPart)
				series = append(series, s)
				warnings = append(warnings, w...)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return series, warnings
}

// parseSingleSeries reads one c:ser element and pairs its category
// labels with its values by index.
func parseSingleSeries(decoder *xml.Decoder, grid RangeResolver, chartPart string) (models.Series, []models.Warning) {
	var s models.Series
	var cat, val dataRef
	var warnings []models.Warning

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
			case "cat":
				cat = parseDataRef(decoder)
				depth--
			case "val":
				val = parseDataRef(decoder)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	s.CategoryRange = cat.formula
	s.ValueRange = val.formula

	cats := resolvePoints(cat, grid)
	vals := resolvePoints(val, grid)

	if len(cats) > 0 && len(vals) > 0 && len(cats) != len(vals) {
		warnings = append(warnings, models.Warning{
			Part: chartPart,
			Code: models.WarnPartialData,
			Message: fmt.Sprintf("series %q: %d categories vs %d values, pairing to the shorter",
				s.Name, len(cats), len(vals)),
		})
	}

	n := len(vals)
	if len(cats) > 0 && len(cats) < n {
		n = len(cats)
	}
	for i := 0; i < n; i++ {
		point := models.SeriesPoint{}
		if i < len(cats) {
			point.Category = cats[i]
		}
		if f, err := strconv.ParseFloat(vals[i], 64); err == nil {
			v := f
			point.Value = &v
		}
		s.Points = append(s.Points, point)
	}
	return s, warnings
}

// resolvePoints prefers cached literal points and falls back to
// resolving the range formula against the cell grid.
func resolvePoints(ref dataRef, grid RangeResolver) []string {
	if len(ref.points) > 0 {
		return ref.points
	}
	if ref.formula != "" && grid != nil {
		if vals, err := grid.ResolveRange(ref.formula); err == nil {
			return vals
		}
	}
	return nil
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
	return
}

// parseDataRef reads a c:cat or c:val element: the f range plus numCache
// or strCache points, honoring idx ordering.
func parseDataRef(decoder *xml.Decoder) dataRef {
	var ref dataRef
	indexed := make(map[int]string)
	maxIdx := -1

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
					ref.formula = strings.TrimSpace(txt)
				}
				depth--
			case "pt":
				idx := -1
				if v, err := strconv.Atoi(attr(t, "idx")); err == nil {
					idx = v
				}
				if txt, err := readElementText(decoder); err == nil {
					value := strings.TrimSpace(txt)
					if idx >= 0 {
						indexed[idx] = value
						if idx > maxIdx {
							maxIdx = idx
						}
					} else {
						ref.points = append(ref.points, value)
					}
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	if len(indexed) > 0 {
		idxs := make([]int, 0, len(indexed))
		for i := range indexed {
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)
		for _, i := range idxs {
			ref.points = append(ref.points, indexed[i])
		}
	}
	return ref
}
