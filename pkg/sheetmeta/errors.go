package sheetmeta

import (
	"fmt"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/opc"
)

// Error taxonomy of an extraction run. ErrCorruptPackage is the only
// fatal error; the others are resolved at the smallest skippable unit
// and surface as warnings on the result tree.
var (
	ErrCorruptPackage         = opc.ErrCorruptPackage
	ErrPartNotFound           = opc.ErrPartNotFound
	ErrUnresolvedRelationship = opc.ErrUnresolvedRelationship
	ErrMalformedXML           = opc.ErrMalformedXML
)

// ExtractionError represents an error during extraction of one
// component of one sheet.
type ExtractionError struct {
	SheetName string
	Component string // "cells", "anchors", "charts", "diagrams", "regions", "controls"
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error in sheet %q (%s): %v", e.SheetName, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(sheetName, component string, err error) *ExtractionError {
	return &ExtractionError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}
