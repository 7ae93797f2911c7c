package models

// Warning codes emitted during extraction.
const (
	WarnUnresolvedRelationship = "unresolved_relationship"
	WarnPartNotFound           = "part_not_found"
	WarnMalformedXML           = "malformed_xml"
	WarnMalformedAnchor        = "malformed_anchor"
	WarnPartialData            = "partial_data"
	WarnAnnotationFailed       = "annotation_failed"
)

// Warning is one non-fatal problem recorded during extraction. The run
// continues past the smallest skippable unit that produced it.
type Warning struct {
	// Sheet is the sheet the problem belongs to, if any.
	Sheet string `json:"sheet,omitempty"`
	// Part is the package part involved, if any.
	Part string `json:"part,omitempty"`
	// Code is one of the Warn* constants.
	Code string `json:"code"`
	// Message is a human-readable description.
	Message string `json:"message"`
}
