package models

// DiagramNode is one point element of a diagram data model.
type DiagramNode struct {
	// NodeID is the model id of the point.
	NodeID string `json:"node_id"`
	// TextFragments contains the node's non-empty text runs in document
	// order.
	TextFragments []string `json:"text_fragments,omitempty"`
}

// DiagramData is the parsed data model of one SmartArt diagram. Each
// instance is owned by the single anchor whose relationship id resolved
// to it and is never shared across anchors.
type DiagramData struct {
	// DiagramType is the layout type identifier tail (e.g. "process1").
	DiagramType string `json:"diagram_type,omitempty"`
	// Name is the diagram name from the owning anchor.
	Name string `json:"name,omitempty"`
	// Description is the diagram description from the owning anchor.
	Description string `json:"description,omitempty"`
	// SourcePartPath is the package path of the diagram data part.
	SourcePartPath string `json:"source_part_path"`
	// Nodes contains the diagram nodes in document order.
	Nodes []DiagramNode `json:"nodes"`
}
