package parser

import (
	"strings"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
)

// RegionParams tunes the boundary-scan heuristic.
type RegionParams struct {
	// EmptyRunLength is the number of consecutive empty rows (or
	// columns) that terminates a scan.
	EmptyRunLength int
	// SampleWidth is how many columns right of the seed the downward
	// scan samples when judging a row empty.
	SampleWidth int
	// RowClip bounds how many rows the rightward scan samples.
	RowClip int
	// MaxScanRows caps the downward scan past the seed row.
	MaxScanRows int
	// MaxScanCols caps the rightward scan past the seed column.
	MaxScanCols int
}

// DefaultRegionParams returns the default heuristic parameters. The
// empty-run length of 1 means a single blank row or column terminates a
// region.
func DefaultRegionParams() RegionParams {
	return RegionParams{
		EmptyRunLength: 1,
		SampleWidth:    20,
		RowClip:        50,
		MaxScanRows:    1000,
		MaxScanCols:    50,
	}
}

func (p RegionParams) normalized() RegionParams {
	d := DefaultRegionParams()
	if p.EmptyRunLength <= 0 {
		p.EmptyRunLength = d.EmptyRunLength
	}
	if p.SampleWidth <= 0 {
		p.SampleWidth = d.SampleWidth
	}
	if p.RowClip <= 0 {
		p.RowClip = d.RowClip
	}
	if p.MaxScanRows <= 0 {
		p.MaxScanRows = d.MaxScanRows
	}
	if p.MaxScanCols <= 0 {
		p.MaxScanCols = d.MaxScanCols
	}
	return p
}

// cellAt returns the grid value at (row, col), zero-based; out-of-range
// cells read as empty.
func cellAt(grid [][]string, row, col int) string {
	if row < 0 || row >= len(grid) {
		return ""
	}
	if col < 0 || col >= len(grid[row]) {
		return ""
	}
	return grid[row][col]
}

// DetectRegion expands a region from a seed cell outward and returns its
// rectangle. The scan is deterministic: re-running from the same seed on
// the same grid produces an identical rectangle.
func DetectRegion(grid [][]string, startRow, startCol int, params RegionParams) models.Region {
	p := params.normalized()
	maxRow, maxCol := findRegionBounds(grid, startRow, startCol, nil, p)
	return buildRegion(grid, startRow, startCol, maxRow, maxCol)
}

// findRegionBounds performs the downward then rightward boundary scans.
// Cells for which claimed reports true are treated as empty, so a sweep
// never grows a region into an already-claimed one. Bounds never regress
// below the seed.
func findRegionBounds(grid [][]string, startRow, startCol int, claimed func(r, c int) bool, p RegionParams) (int, int) {
	empty := func(r, c int) bool {
		if claimed != nil && claimed(r, c) {
			return true
		}
		return cellAt(grid, r, c) == ""
	}

	// Downward scan: a row is empty when every sampled column is.
	maxRow := startRow
	emptyRun := 0
	for r := startRow; r <= startRow+p.MaxScanRows && r < len(grid); r++ {
		rowEmpty := true
		for c := startCol; c <= startCol+p.SampleWidth; c++ {
			if !empty(r, c) {
				rowEmpty = false
				break
			}
		}
		if rowEmpty {
			emptyRun++
			if emptyRun >= p.EmptyRunLength {
				break
			}
		} else {
			emptyRun = 0
			maxRow = r
		}
	}

	// Rightward scan over the rows the downward scan confirmed.
	rowEnd := maxRow
	if rowEnd > startRow+p.RowClip-1 {
		rowEnd = startRow + p.RowClip - 1
	}
	maxCol := startCol
	emptyRun = 0
	for c := startCol; c <= startCol+p.MaxScanCols; c++ {
		colEmpty := true
		for r := startRow; r <= rowEnd; r++ {
			if !empty(r, c) {
				colEmpty = false
				break
			}
		}
		if colEmpty {
			emptyRun++
			if emptyRun >= p.EmptyRunLength {
				break
			}
		} else {
			emptyRun = 0
			maxCol = c
		}
	}

	return maxRow, maxCol
}

// buildRegion classifies the rectangle and computes its confidence as
// the non-empty cell density.
func buildRegion(grid [][]string, startRow, startCol, maxRow, maxCol int) models.Region {
	nonEmpty := 0
	for r := startRow; r <= maxRow; r++ {
		for c := startCol; c <= maxCol; c++ {
			if cellAt(grid, r, c) != "" {
				nonEmpty++
			}
		}
	}
	total := (maxRow - startRow + 1) * (maxCol - startCol + 1)

	kind := models.RegionTextBlock
	if maxRow > startRow && maxCol > startCol {
		kind = models.RegionTable
	}

	return models.Region{
		R1:         startRow + 1,
		C1:         startCol + 1,
		R2:         maxRow + 1,
		C2:         maxCol + 1,
		Kind:       kind,
		Confidence: float64(nonEmpty) / float64(total),
	}
}

// isSeparatorCell reports whether a cell holds only a divider character
// and should not seed a region.
func isSeparatorCell(v string) bool {
	s := strings.TrimSpace(v)
	return len(s) == 1 && strings.ContainsAny(s, "-_=")
}

// claimSet tracks cells already covered by a region.
type claimSet map[[2]int]bool

func (s claimSet) claim(r1, c1, r2, c2 int) {
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			s[[2]int{r, c}] = true
		}
	}
}

func (s claimSet) has(r, c int) bool {
	return s[[2]int{r, c}]
}

// SweepRegions runs region detection over the whole grid, seeding in
// row-major order on not-yet-claimed non-empty cells. The produced
// rectangles never overlap: claimed cells read as empty during scans and
// each rectangle is clipped before the first claimed cell it would
// otherwise swallow. Cells covered by the exclude rectangles (1-based,
// e.g. drawing anchor spans) are claimed up front and never seed or join
// a region. Single-cell rectangles are claimed but not reported.
func SweepRegions(sheetName string, grid [][]string, params RegionParams, exclude ...models.Region) []models.Region {
	p := params.normalized()
	claimed := make(claimSet)
	for _, ex := range exclude {
		claimed.claim(ex.R1-1, ex.C1-1, ex.R2-1, ex.C2-1)
	}
	var regions []models.Region

	for r := 0; r < len(grid); r++ {
		for c := 0; c < len(grid[r]); c++ {
			if grid[r][c] == "" || claimed.has(r, c) || isSeparatorCell(grid[r][c]) {
				continue
			}

			maxRow, maxCol := findRegionBounds(grid, r, c, claimed.has, p)
			maxRow, maxCol = clipToUnclaimed(claimed, r, c, maxRow, maxCol)
			claimed.claim(r, c, maxRow, maxCol)

			if maxRow == r && maxCol == c {
				continue
			}
			region := buildRegion(grid, r, c, maxRow, maxCol)
			region.SheetName = sheetName
			regions = append(regions, region)
		}
	}
	return regions
}

// clipToUnclaimed shrinks the rectangle until it contains no claimed
// cell. The seed itself is unclaimed, so the loop terminates with bounds
// never below the seed.
func clipToUnclaimed(claimed claimSet, startRow, startCol, maxRow, maxCol int) (int, int) {
	for {
		found := false
	scan:
		for r := startRow; r <= maxRow; r++ {
			for c := startCol; c <= maxCol; c++ {
				if claimed.has(r, c) {
					if r > startRow {
						maxRow = r - 1
					} else {
						maxCol = c - 1
					}
					found = true
					break scan
				}
			}
		}
		if !found {
			return maxRow, maxCol
		}
	}
}
