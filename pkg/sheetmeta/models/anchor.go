package models

// AnchorKind identifies how a drawing anchor is positioned on the sheet.
type AnchorKind string

const (
	AnchorOneCell  AnchorKind = "one_cell"
	AnchorTwoCell  AnchorKind = "two_cell"
	AnchorAbsolute AnchorKind = "absolute"
)

// RefKind discriminates the content variants a drawing anchor can carry.
type RefKind string

const (
	RefImage   RefKind = "image"
	RefShape   RefKind = "shape"
	RefChart   RefKind = "chart"
	RefDiagram RefKind = "diagram"
)

// CellRef is a zero-based (column, row) cell position.
type CellRef struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// ImageRef points at an image part inside the package.
type ImageRef struct {
	// PartPath is the resolved package path of the image part.
	PartPath string `json:"part_path"`
}

// ChartRef points at a chart part through a drawing-scoped relationship.
type ChartRef struct {
	// RelID is the relationship id within the owning drawing part.
	RelID string `json:"rel_id"`
	// PartPath is the resolved package path of the chart part.
	PartPath string `json:"part_path"`
}

// DiagramRef points at a diagram data-model part through a drawing-scoped
// relationship.
type DiagramRef struct {
	// RelID is the relationship id within the owning drawing part.
	RelID string `json:"rel_id"`
	// PartPath is the resolved package path of the diagram data part.
	PartPath string `json:"part_path"`
}

// ShapeInfo describes an inline shape or connector.
type ShapeInfo struct {
	// Type is the shape type label derived from the preset geometry.
	Type string `json:"type,omitempty"`
	// Text is the visible text content of the shape.
	Text string `json:"text,omitempty"`
	// Rotation is the rotation angle in degrees.
	Rotation *float64 `json:"rotation,omitempty"`
	// Direction is the connector compass heading (N, NE, E, ...).
	Direction string `json:"direction,omitempty"`
	// BeginArrowStyle is the arrow style enum at the start of a connector.
	BeginArrowStyle *int `json:"begin_arrow_style,omitempty"`
	// EndArrowStyle is the arrow style enum at the end of a connector.
	EndArrowStyle *int `json:"end_arrow_style,omitempty"`
}

// ShapeRef is a tagged union over the four anchor content kinds. Exactly
// one of the pointer fields matching Kind is set.
type ShapeRef struct {
	Kind    RefKind     `json:"kind"`
	Image   *ImageRef   `json:"image,omitempty"`
	Shape   *ShapeInfo  `json:"shape,omitempty"`
	Chart   *ChartRef   `json:"chart,omitempty"`
	Diagram *DiagramRef `json:"diagram,omitempty"`
}

// DrawingAnchor is one placement record from a drawing part. An anchor
// owns exactly one ShapeRef.
type DrawingAnchor struct {
	// Kind is the anchor positioning kind.
	Kind AnchorKind `json:"kind"`
	// Name is the name attribute of the anchored object.
	Name string `json:"name,omitempty"`
	// Description is the descr attribute of the anchored object.
	Description string `json:"description,omitempty"`
	// From is the top-left cell of the anchor.
	From CellRef `json:"from"`
	// To is the bottom-right cell (two-cell anchors only).
	To *CellRef `json:"to,omitempty"`
	// Width is the anchored object width in pixels.
	Width int `json:"width"`
	// Height is the anchored object height in pixels.
	Height int `json:"height"`
	// Ref is the typed content reference.
	Ref ShapeRef `json:"ref"`
}
