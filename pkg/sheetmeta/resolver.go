package sheetmeta

import (
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// gridResolver resolves chart range references against the workbook's
// cell grids. It implements parser.RangeResolver.
type gridResolver struct {
	f *excelize.File
}

// ResolveRange flattens the cells of a reference like
// "'Sheet 1'!$B$2:$D$5" row-major. Cells outside the sheet's used range
// read as empty strings.
func (g gridResolver) ResolveRange(ref string) ([]string, error) {
	idx := strings.LastIndex(ref, "!")
	if idx < 0 {
		return nil, pkgerrors.Errorf("range %q has no sheet qualifier", ref)
	}
	sheetName := strings.Trim(ref[:idx], "'")
	rangeStr := strings.ReplaceAll(ref[idx+1:], "$", "")

	first := rangeStr
	last := rangeStr
	if i := strings.Index(rangeStr, ":"); i >= 0 {
		first, last = rangeStr[:i], rangeStr[i+1:]
	}

	c1, r1, err := excelize.CellNameToCoordinates(first)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "range %q", ref)
	}
	c2, r2, err := excelize.CellNameToCoordinates(last)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "range %q", ref)
	}

	rows, err := g.f.GetRows(sheetName)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "sheet %q", sheetName)
	}

	var values []string
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			var v string
			if r-1 < len(rows) && c-1 < len(rows[r-1]) {
				v = rows[r-1][c-1]
			}
			values = append(values, v)
		}
	}
	return values, nil
}
