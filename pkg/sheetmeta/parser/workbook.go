package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/opc"
)

const workbookPart = "xl/workbook.xml"

// SheetPart couples a sheet name with its worksheet part path.
type SheetPart struct {
	Name     string
	PartPath string
}

// WorkbookSheets lists the workbook's sheets in workbook order, each
// resolved to its worksheet part through the workbook's own rels table.
func WorkbookSheets(pkg *opc.Package) ([]SheetPart, []models.Warning, error) {
	data, err := pkg.ReadPart(workbookPart)
	if err != nil {
		return nil, nil, err
	}

	type sheetEntry struct {
		name  string
		relID string
	}
	var entries []sheetEntry

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, pkgerrors.Wrapf(opc.ErrMalformedXML, "%s: %v", workbookPart, err)
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var e sheetEntry
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				e.name = a.Value
			case "id":
				if a.Name.Space == nsR || e.relID == "" {
					e.relID = a.Value
				}
			}
		}
		if e.name != "" && e.relID != "" {
			entries = append(entries, e)
		}
	}

	var sheets []SheetPart
	var warnings []models.Warning
	for _, e := range entries {
		target, err := pkg.Resolve(workbookPart, e.relID)
		if err != nil {
			warnings = append(warnings, models.Warning{
				Sheet:   e.name,
				Part:    workbookPart,
				Code:    models.WarnUnresolvedRelationship,
				Message: err.Error(),
			})
			continue
		}
		sheets = append(sheets, SheetPart{Name: e.name, PartPath: target})
	}
	return sheets, warnings, nil
}

// DrawingPart returns the drawing part of a worksheet, or "" when the
// sheet has none. Resolution goes through the worksheet's own rels
// table.
func DrawingPart(pkg *opc.Package, sheetPart string) (string, error) {
	return relTargetByType(pkg, sheetPart, "/drawing")
}

// VMLPart returns the legacy VML drawing part of a worksheet, or ""
// when the sheet has none.
func VMLPart(pkg *opc.Package, sheetPart string) (string, error) {
	return relTargetByType(pkg, sheetPart, "vmldrawing")
}

func relTargetByType(pkg *opc.Package, sheetPart, typeFragment string) (string, error) {
	rels, err := pkg.Rels(sheetPart)
	if err != nil {
		return "", err
	}
	for _, rel := range rels {
		if rel.External {
			continue
		}
		if strings.Contains(strings.ToLower(rel.Type), typeFragment) && pkg.HasPart(rel.Target) {
			return rel.Target, nil
		}
	}
	return "", nil
}
