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

// ExtractDiagram resolves exactly one diagram data-model part for the
// given relationship id, scoped to the owning drawing part, and parses
// it into a fresh DiagramData. It is always invoked per anchor and per
// relationship id — never with "the first diagram part found in the
// package" — so two diagrams on one sheet can never alias each other.
// Every call allocates an independent result; callers must not reuse a
// returned DiagramData for a different anchor.
func ExtractDiagram(pkg *opc.Package, drawingPart, relID string) (*models.DiagramData, error) {
	dataPart, err := pkg.Resolve(drawingPart, relID)
	if err != nil {
		return nil, err
	}

	data, err := pkg.ReadPart(dataPart)
	if err != nil {
		return nil, err
	}

	diagram := &models.DiagramData{SourcePartPath: dataPart}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrapf(opc.ErrMalformedXML, "%s: %v", dataPart, err)
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "pt":
			node, layout := parseDiagramPoint(decoder, se)
			diagram.Nodes = append(diagram.Nodes, node)
			if layout != "" && diagram.DiagramType == "" {
				diagram.DiagramType = layout
			}
		}
	}

	return diagram, nil
}

// parseDiagramPoint reads one dgm:pt element: the node id, the layout
// type id when the point carries one, and all descendant text runs in
// document order. Empty runs are omitted.
func parseDiagramPoint(decoder *xml.Decoder, start xml.StartElement) (models.DiagramNode, string) {
	node := models.DiagramNode{NodeID: attr(start, "modelId")}
	var layout string

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
			case t.Name.Local == "prSet":
				if lo := attr(t, "loTypeId"); lo != "" {
					layout = layoutTail(lo)
				}
			case t.Name.Local == "t" && t.Name.Space == nsA:
				// a:t text run; dgm:t is the surrounding text body and
				// shares the local name.
				if txt, err := readElementText(decoder); err == nil {
					if s := strings.TrimSpace(txt); s != "" {
						node.TextFragments = append(node.TextFragments, s)
					}
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return node, layout
}

// layoutTail reduces a layout type URN to its final path segment, e.g.
// "urn:microsoft.com/office/officeart/2005/8/layout/process1" to
// "process1".
func layoutTail(loTypeID string) string {
	if i := strings.LastIndex(loTypeID, "/"); i >= 0 && i+1 < len(loTypeID) {
		return loTypeID[i+1:]
	}
	return loTypeID
}
