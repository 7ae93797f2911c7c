// Package models defines the metadata tree produced by an extraction run.
package models

// DocProperties holds package-level document properties.
type DocProperties struct {
	// Creator is the document author.
	Creator string `json:"creator,omitempty"`
	// LastModifiedBy is the last user that saved the document.
	LastModifiedBy string `json:"last_modified_by,omitempty"`
	// Title is the document title.
	Title string `json:"title,omitempty"`
	// Created is the creation timestamp (ISO 8601).
	Created string `json:"created,omitempty"`
	// Modified is the last-modified timestamp (ISO 8601).
	Modified string `json:"modified,omitempty"`
}

// WorkbookMetadata is the workbook-level result tree of one extraction run.
type WorkbookMetadata struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Properties holds package-level document properties.
	Properties DocProperties `json:"properties"`
	// Sheets contains per-sheet metadata in workbook order.
	Sheets []SheetMetadata `json:"sheets"`
	// Warnings contains all non-fatal problems encountered during the run.
	Warnings []Warning `json:"warnings,omitempty"`
	// Annotation is an optional downstream natural-language summary.
	Annotation string `json:"annotation,omitempty"`
}

// Sheet returns the sheet with the given name, or nil.
func (w *WorkbookMetadata) Sheet(name string) *SheetMetadata {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i]
		}
	}
	return nil
}
