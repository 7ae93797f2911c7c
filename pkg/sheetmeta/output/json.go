// Package output serializes extraction results. Field names are stable
// across runs for the same input so downstream consumers can rely on
// them.
package output

import (
	"encoding/json"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
)

// ToJSON serializes a workbook metadata tree.
func ToJSON(wb *models.WorkbookMetadata, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(wb, "", "  ")
	}
	return json.Marshal(wb)
}

// SheetToJSON serializes a single sheet's metadata.
func SheetToJSON(sheet *models.SheetMetadata, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(sheet, "", "  ")
	}
	return json.Marshal(sheet)
}
