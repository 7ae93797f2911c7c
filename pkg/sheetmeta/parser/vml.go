package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/opc"
)

// vmlObjectTypes maps VML client-data object types to control types.
var vmlObjectTypes = map[string]string{
	"Checkbox": "checkbox",
	"Radio":    "radio",
	"Button":   "button",
}

// ExtractFormControls parses a legacy VML drawing part into form
// controls. Shapes without form-control client data are ignored.
func ExtractFormControls(pkg *opc.Package, vmlPart string) ([]models.FormControl, error) {
	data, err := pkg.ReadPart(vmlPart)
	if err != nil {
		return nil, err
	}

	var controls []models.FormControl
	decoder := xml.NewDecoder(bytes.NewReader(data))
	// VML parts often carry undeclared namespace prefixes.
	decoder.Strict = false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "shape" {
			continue
		}
		if control := parseVMLShape(decoder); control != nil {
			controls = append(controls, *control)
		}
	}
	return controls, nil
}

// parseVMLShape reads one v:shape element and returns a control when the
// shape carries form-control client data.
func parseVMLShape(decoder *xml.Decoder) *models.FormControl {
	var control models.FormControl
	var hasClientData bool

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
			case "textbox":
				if txt, err := readElementText(decoder); err == nil {
					control.Text = strings.TrimSpace(txt)
				}
				depth--
			case "ClientData":
				if kind, ok := vmlObjectTypes[attr(t, "ObjectType")]; ok {
					control.Type = kind
					hasClientData = true
				}
				parseVMLClientData(decoder, &control)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	if !hasClientData {
		return nil
	}
	return &control
}

func parseVMLClientData(decoder *xml.Decoder, control *models.FormControl) {
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
			case "Anchor":
				if txt, err := readElementText(decoder); err == nil {
					control.AnchorCell = anchorCellFromVML(txt)
				}
				depth--
			case "Checked":
				if txt, err := readElementText(decoder); err == nil {
					control.Checked = strings.TrimSpace(txt) == "1"
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
}

// anchorCellFromVML converts a VML anchor list
// ("col, colOff, row, rowOff, ...") to the top-left cell in A1 notation.
func anchorCellFromVML(anchor string) string {
	parts := strings.Split(anchor, ",")
	if len(parts) < 3 {
		return ""
	}
	col, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	row, err2 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil {
		return ""
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return ""
	}
	return cell
}
