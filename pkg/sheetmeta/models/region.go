package models

// RegionKind classifies an inferred cell region.
type RegionKind string

const (
	RegionTable     RegionKind = "table"
	RegionTextBlock RegionKind = "text_block"
)

// MergedCell records one merged range inside a region.
type MergedCell struct {
	// Range is the merged range in A1 notation (e.g. "B2:D2").
	Range string `json:"range"`
	// Value is the value of the merge's top-left cell.
	Value string `json:"value,omitempty"`
}

// Region is one inferred rectangular cell area. Coordinates are 1-based
// and inclusive.
type Region struct {
	// SheetName is the owning sheet.
	SheetName string `json:"sheet_name"`
	// R1, C1 are the top-left row and column.
	R1 int `json:"r1"`
	C1 int `json:"c1"`
	// R2, C2 are the bottom-right row and column.
	R2 int `json:"r2"`
	C2 int `json:"c2"`
	// Kind is the inferred region kind.
	Kind RegionKind `json:"kind"`
	// Confidence is the non-empty cell density of the rectangle (0..1].
	Confidence float64 `json:"confidence"`
	// MergedCells contains merged ranges fully inside the rectangle.
	MergedCells []MergedCell `json:"merged_cells,omitempty"`
	// Annotation is an optional downstream natural-language summary.
	Annotation string `json:"annotation,omitempty"`
}

// Contains reports whether the cell (row, col) lies inside the region.
func (r Region) Contains(row, col int) bool {
	return row >= r.R1 && row <= r.R2 && col >= r.C1 && col <= r.C2
}

// Overlaps reports whether two regions share at least one cell.
func (r Region) Overlaps(o Region) bool {
	return r.R1 <= o.R2 && o.R1 <= r.R2 && r.C1 <= o.C2 && o.C1 <= r.C2
}
