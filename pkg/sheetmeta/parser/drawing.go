package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/opc"
)

// PresetGeomMap maps OOXML preset geometry names to human-readable type labels.
var PresetGeomMap = map[string]string{
	"flowChartProcess":           "AutoShape-FlowchartProcess",
	"flowChartDecision":          "AutoShape-FlowchartDecision",
	"flowChartTerminator":        "AutoShape-FlowchartTerminator",
	"flowChartData":              "AutoShape-FlowchartData",
	"flowChartDocument":          "AutoShape-FlowchartDocument",
	"flowChartMultidocument":     "AutoShape-FlowchartMultidocument",
	"flowChartPredefinedProcess": "AutoShape-FlowchartPredefinedProcess",
	"flowChartInternalStorage":   "AutoShape-FlowchartInternalStorage",
	"flowChartPreparation":       "AutoShape-FlowchartPreparation",
	"flowChartManualInput":       "AutoShape-FlowchartManualInput",
	"flowChartManualOperation":   "AutoShape-FlowchartManualOperation",
	"flowChartConnector":         "AutoShape-FlowchartConnector",
	"flowChartOffpageConnector":  "AutoShape-FlowchartOffpageConnector",
	"rect":                       "AutoShape-Rectangle",
	"roundRect":                  "AutoShape-RoundedRectangle",
	"ellipse":                    "AutoShape-Oval",
	"diamond":                    "AutoShape-Diamond",
	"triangle":                   "AutoShape-IsoscelesTriangle",
	"straightConnector1":         "Line",
	"bentConnector2":             "AutoShape-Connector",
	"bentConnector3":             "AutoShape-Connector",
	"bentConnector4":             "AutoShape-Connector",
	"bentConnector5":             "AutoShape-Connector",
	"curvedConnector2":           "AutoShape-Connector",
	"curvedConnector3":           "AutoShape-Connector",
	"curvedConnector4":           "AutoShape-Connector",
	"curvedConnector5":           "AutoShape-Connector",
	"line":                       "Line",
	"textBox":                    "TextBox",
}

// ArrowHeadMap maps OOXML arrow head types to Excel COM style numbers.
var ArrowHeadMap = map[string]int{
	"none":     1,
	"triangle": 2,
	"stealth":  3,
	"diamond":  4,
	"oval":     5,
	"arrow":    2,
}

// ExtractAnchors parses a drawing part into one DrawingAnchor per anchor
// element, in document order. Relationship ids found inside anchors are
// resolved against the owning drawing part only. A malformed anchor is
// skipped with a warning; it never aborts the remaining anchors.
func ExtractAnchors(pkg *opc.Package, drawingPart string) ([]models.DrawingAnchor, []models.Warning, error) {
	data, err := pkg.ReadPart(drawingPart)
	if err != nil {
		return nil, nil, err
	}

	var anchors []models.DrawingAnchor
	var warnings []models.Warning

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			warnings = append(warnings, models.Warning{
				Part:    drawingPart,
				Code:    models.WarnMalformedXML,
				Message: "drawing part: " + err.Error(),
			})
			break
		}

		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		var kind models.AnchorKind
		switch se.Name.Local {
		case "twoCellAnchor":
			kind = models.AnchorTwoCell
		case "oneCellAnchor":
			kind = models.AnchorOneCell
		case "absoluteAnchor":
			kind = models.AnchorAbsolute
		default:
			continue
		}

		anchor, warn := parseAnchor(decoder, pkg, drawingPart, kind)
		if warn != nil {
			warn.Part = drawingPart
			warnings = append(warnings, *warn)
			continue
		}
		anchors = append(anchors, *anchor)
	}

	return anchors, warnings, nil
}

// parseAnchor consumes one anchor element and builds its DrawingAnchor.
// An anchor carries exactly one content object; anchors with no
// recognized content yield a malformed-anchor warning instead.
func parseAnchor(decoder *xml.Decoder, pkg *opc.Package, drawingPart string, kind models.AnchorKind) (*models.DrawingAnchor, *models.Warning) {
	anchor := models.DrawingAnchor{Kind: kind}
	var ref *models.ShapeRef
	var name string
	var refErr *models.Warning

	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return nil, &models.Warning{Code: models.WarnMalformedAnchor, Message: err.Error()}
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "from":
				anchor.From = parseAnchorCell(decoder)
				depth--
			case "to":
				to := parseAnchorCell(decoder)
				anchor.To = &to
				depth--
			case "ext":
				// Anchor-level extent (one-cell and absolute anchors).
				if cx, err := strconv.ParseInt(attr(t, "cx"), 10, 64); err == nil {
					anchor.Width = EMUToPixels(cx)
				}
				if cy, err := strconv.ParseInt(attr(t, "cy"), 10, 64); err == nil {
					anchor.Height = EMUToPixels(cy)
				}
			case "pic":
				ref, name, refErr = parsePicture(decoder, pkg, drawingPart)
				depth--
			case "sp", "cxnSp":
				var info *models.ShapeInfo
				var w, h int
				info, name, w, h = parseShape(decoder, t.Name.Local == "cxnSp")
				ref = &models.ShapeRef{Kind: models.RefShape, Shape: info}
				if w > 0 {
					anchor.Width = w
				}
				if h > 0 {
					anchor.Height = h
				}
				depth--
			case "grpSp":
				ref, name = parseGroup(decoder)
				depth--
			case "graphicFrame":
				var desc string
				var w, h int
				ref, name, desc, w, h, refErr = parseGraphicFrame(decoder, pkg, drawingPart)
				anchor.Description = desc
				if w > 0 {
					anchor.Width = w
				}
				if h > 0 {
					anchor.Height = h
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	if refErr != nil {
		return nil, refErr
	}
	if ref == nil {
		return nil, &models.Warning{
			Code:    models.WarnMalformedAnchor,
			Message: "anchor has no recognized content element",
		}
	}

	anchor.Name = name
	anchor.Ref = *ref
	return &anchor, nil
}

// parseAnchorCell parses an xdr:from or xdr:to marker.
func parseAnchorCell(decoder *xml.Decoder) models.CellRef {
	var cell models.CellRef
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
			case "col":
				if v, err := readElementText(decoder); err == nil {
					cell.Col, _ = strconv.Atoi(strings.TrimSpace(v))
				}
				depth--
			case "row":
				if v, err := readElementText(decoder); err == nil {
					cell.Row, _ = strconv.Atoi(strings.TrimSpace(v))
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return cell
}

// parsePicture handles xdr:pic content: the blip's embed relationship is
// resolved to the image part within the owning drawing part's scope.
func parsePicture(decoder *xml.Decoder, pkg *opc.Package, drawingPart string) (*models.ShapeRef, string, *models.Warning) {
	var name, embedID string
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
			case "cNvPr":
				name = attr(t, "name")
			case "blip":
				for _, a := range t.Attr {
					if a.Name.Local == "embed" {
						embedID = a.Value
					}
				}
			}
		case xml.EndElement:
			depth--
		}
	}

	if embedID == "" {
		return nil, name, &models.Warning{
			Code:    models.WarnMalformedAnchor,
			Message: "picture without embed relationship",
		}
	}
	target, err := pkg.Resolve(drawingPart, embedID)
	if err != nil {
		return nil, name, &models.Warning{
			Code:    models.WarnUnresolvedRelationship,
			Message: err.Error(),
		}
	}
	return &models.ShapeRef{Kind: models.RefImage, Image: &models.ImageRef{PartPath: target}}, name, nil
}

// parseShape handles xdr:sp and xdr:cxnSp content.
func parseShape(decoder *xml.Decoder, isConnector bool) (*models.ShapeInfo, string, int, int) {
	var text, name, prst string
	var width, height int
	var rotation *float64
	var beginArrow, endArrow *int

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
			case "cNvPr":
				name = attr(t, "name")
			case "xfrm":
				_, _, w, h, rot := parseXfrm(decoder, t)
				width, height = w, h
				rotation = rot
				depth--
			case "prstGeom":
				prst = attr(t, "prst")
			case "t":
				if txt, err := readElementText(decoder); err == nil {
					text += txt
				}
				depth--
			case "ln":
				beginArrow, endArrow = parseLineArrows(decoder)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	text = strings.TrimSpace(text)

	typeLabel := "Unknown"
	if prst != "" {
		if label, ok := PresetGeomMap[prst]; ok {
			typeLabel = label
		} else {
			typeLabel = "AutoShape-" + prst
		}
	} else if name != "" {
		typeLabel = name
	}

	info := &models.ShapeInfo{
		Type:     typeLabel,
		Text:     text,
		Rotation: rotation,
	}
	if isConnector || isConnectorShape(prst, typeLabel) {
		if dir := computeDirection(width, height); dir != "" {
			info.Direction = dir
		}
		info.BeginArrowStyle = beginArrow
		info.EndArrowStyle = endArrow
	}
	return info, name, width, height
}

// parseGroup flattens a group shape into a single shape ref carrying the
// concatenated text of its members.
func parseGroup(decoder *xml.Decoder) (*models.ShapeRef, string) {
	var name string
	var texts []string
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
			case "cNvPr":
				if name == "" {
					name = attr(t, "name")
				}
			case "t":
				if txt, err := readElementText(decoder); err == nil {
					if s := strings.TrimSpace(txt); s != "" {
						texts = append(texts, s)
					}
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	info := &models.ShapeInfo{Type: "Group", Text: strings.Join(texts, "\n")}
	return &models.ShapeRef{Kind: models.RefShape, Shape: info}, name
}

// parseGraphicFrame handles xdr:graphicFrame content: a chart reference
// (c:chart with an r:id) or a diagram reference (dgm:relIds with an
// r:dm). Both are resolved within the owning drawing part's scope.
func parseGraphicFrame(decoder *xml.Decoder, pkg *opc.Package, drawingPart string) (*models.ShapeRef, string, string, int, int, *models.Warning) {
	var name, desc, chartID, diagramID string
	var width, height int

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
			case "cNvPr":
				name = attr(t, "name")
				desc = attr(t, "descr")
			case "xfrm":
				_, _, w, h, _ := parseXfrm(decoder, t)
				width, height = w, h
				depth--
			case "chart":
				for _, a := range t.Attr {
					if a.Name.Local == "id" {
						chartID = a.Value
					}
				}
			case "relIds":
				for _, a := range t.Attr {
					if a.Name.Local == "dm" {
						diagramID = a.Value
					}
				}
			}
		case xml.EndElement:
			depth--
		}
	}

	switch {
	case chartID != "":
		target, err := pkg.Resolve(drawingPart, chartID)
		if err != nil {
			return nil, name, desc, width, height, &models.Warning{
				Code:    models.WarnUnresolvedRelationship,
				Message: err.Error(),
			}
		}
		ref := &models.ShapeRef{Kind: models.RefChart, Chart: &models.ChartRef{RelID: chartID, PartPath: target}}
		return ref, name, desc, width, height, nil
	case diagramID != "":
		target, err := pkg.Resolve(drawingPart, diagramID)
		if err != nil {
			return nil, name, desc, width, height, &models.Warning{
				Code:    models.WarnUnresolvedRelationship,
				Message: err.Error(),
			}
		}
		ref := &models.ShapeRef{Kind: models.RefDiagram, Diagram: &models.DiagramRef{RelID: diagramID, PartPath: target}}
		return ref, name, desc, width, height, nil
	default:
		return nil, name, desc, width, height, &models.Warning{
			Code:    models.WarnMalformedAnchor,
			Message: "graphic frame carries neither chart nor diagram reference",
		}
	}
}

// parseXfrm parses an xfrm element for position, size, and rotation.
func parseXfrm(decoder *xml.Decoder, start xml.StartElement) (left, top, width, height int, rotation *float64) {
	if rot := attr(start, "rot"); rot != "" {
		if rotEmu, err := strconv.ParseInt(rot, 10, 64); err == nil {
			rotDeg := float64(rotEmu) / 60000.0
			if math.Abs(rotDeg) >= 1e-6 {
				rotation = &rotDeg
			}
		}
	}

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
			case "off":
				if x, err := strconv.ParseInt(attr(t, "x"), 10, 64); err == nil {
					left = EMUToPixels(x)
				}
				if y, err := strconv.ParseInt(attr(t, "y"), 10, 64); err == nil {
					top = EMUToPixels(y)
				}
			case "ext":
				if cx, err := strconv.ParseInt(attr(t, "cx"), 10, 64); err == nil {
					width = EMUToPixels(cx)
				}
				if cy, err := strconv.ParseInt(attr(t, "cy"), 10, 64); err == nil {
					height = EMUToPixels(cy)
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	return
}

// parseLineArrows parses an a:ln element for arrow head styles.
func parseLineArrows(decoder *xml.Decoder) (beginStyle, endStyle *int) {
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
			case "headEnd":
				if style, ok := ArrowHeadMap[attr(t, "type")]; ok {
					beginStyle = &style
				}
			case "tailEnd":
				if style, ok := ArrowHeadMap[attr(t, "type")]; ok {
					endStyle = &style
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	return
}

// computeDirection computes a compass direction from connector dimensions.
func computeDirection(width, height int) string {
	if width == 0 && height == 0 {
		return ""
	}

	angle := math.Atan2(float64(-height), float64(width)) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}

	switch {
	case angle >= 337.5 || angle < 22.5:
		return "E"
	case angle >= 22.5 && angle < 67.5:
		return "NE"
	case angle >= 67.5 && angle < 112.5:
		return "N"
	case angle >= 112.5 && angle < 157.5:
		return "NW"
	case angle >= 157.5 && angle < 202.5:
		return "W"
	case angle >= 202.5 && angle < 247.5:
		return "SW"
	case angle >= 247.5 && angle < 292.5:
		return "S"
	default:
		return "SE"
	}
}

// isConnectorShape checks if a shape is a connector or line.
func isConnectorShape(prst, typeLabel string) bool {
	lower := strings.ToLower(prst)
	if strings.Contains(lower, "connector") || strings.Contains(lower, "line") {
		return true
	}
	return strings.Contains(typeLabel, "Line") || strings.Contains(typeLabel, "Connector")
}
