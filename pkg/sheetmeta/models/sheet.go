package models

// SheetMetadata aggregates everything extracted from one sheet.
type SheetMetadata struct {
	// Name is the sheet name.
	Name string `json:"name"`
	// Rows contains extracted non-empty rows with cell values and links.
	Rows []CellRow `json:"rows,omitempty"`
	// Anchors contains drawing anchors in document order.
	Anchors []DrawingAnchor `json:"anchors,omitempty"`
	// Charts contains chart data for chart anchors, in anchor order.
	Charts []ChartData `json:"charts,omitempty"`
	// Diagrams contains diagram data for diagram anchors, in anchor order.
	Diagrams []DiagramData `json:"diagrams,omitempty"`
	// Regions contains inferred logical cell regions.
	Regions []Region `json:"regions,omitempty"`
	// Controls contains legacy VML form controls.
	Controls []FormControl `json:"controls,omitempty"`
	// PrintAreas contains user-defined print areas.
	PrintAreas []PrintArea `json:"print_areas,omitempty"`
	// Annotation is an optional downstream natural-language summary.
	Annotation string `json:"annotation,omitempty"`
}
