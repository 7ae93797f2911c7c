package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionContains(t *testing.T) {
	region := Region{R1: 2, C1: 3, R2: 5, C2: 6}

	tests := []struct {
		row, col int
		expected bool
	}{
		{2, 3, true},
		{5, 6, true},
		{3, 4, true},
		{1, 3, false},
		{6, 3, false},
		{2, 2, false},
		{2, 7, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, region.Contains(tt.row, tt.col),
			"Contains(%d, %d)", tt.row, tt.col)
	}
}

func TestRegionOverlaps(t *testing.T) {
	base := Region{R1: 2, C1: 2, R2: 5, C2: 5}

	tests := []struct {
		other    Region
		expected bool
	}{
		{Region{R1: 2, C1: 2, R2: 5, C2: 5}, true},
		{Region{R1: 5, C1: 5, R2: 8, C2: 8}, true},
		{Region{R1: 1, C1: 1, R2: 2, C2: 2}, true},
		{Region{R1: 6, C1: 2, R2: 8, C2: 5}, false},
		{Region{R1: 2, C1: 6, R2: 5, C2: 8}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, base.Overlaps(tt.other), "Overlaps(%+v)", tt.other)
		assert.Equal(t, tt.expected, tt.other.Overlaps(base), "Overlaps is symmetric")
	}
}

func TestWorkbookSheetLookup(t *testing.T) {
	wb := WorkbookMetadata{Sheets: []SheetMetadata{
		{Name: "Summary"},
		{Name: "Data"},
	}}

	sheet := wb.Sheet("Data")
	assert.NotNil(t, sheet)
	assert.Equal(t, "Data", sheet.Name)
	assert.Nil(t, wb.Sheet("Missing"))
}
