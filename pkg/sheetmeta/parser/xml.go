// Package parser turns OOXML parts and cell grids into the metadata
// model: drawing anchors, charts, diagrams, regions, form controls.
package parser

import (
	"encoding/xml"
)

// XML namespaces used in DrawingML parts.
const (
	nsXDR = "http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsC   = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	nsDGM = "http://schemas.openxmlformats.org/drawingml/2006/diagram"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// attr returns the value of the named attribute, ignoring namespace.
func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// skipElement consumes tokens until the element opened by the current
// start tag is closed.
func skipElement(decoder *xml.Decoder) error {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		switch token.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// readElementText concatenates all character data inside the current
// element, descending into children.
func readElementText(decoder *xml.Decoder) (string, error) {
	var text string
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text, err
		}
		switch t := token.(type) {
		case xml.CharData:
			text += string(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text, nil
}
