package sheetmeta

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/opc"
	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/parser"
)

// ExtractFile extracts metadata from an xlsx file on disk.
func ExtractFile(ctx context.Context, path string, opts Options) (*models.WorkbookMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if opts.BookName == "" {
		opts.BookName = filepath.Base(path)
	}
	return Extract(ctx, data, opts)
}

// Extract extracts structured metadata from an OOXML spreadsheet
// package given as bytes. The package handle is held for the run and
// released before returning, on success, error, or cancellation. Only
// ErrCorruptPackage aborts the run; every smaller failure is recorded
// as a warning on the result tree and the affected anchor, chart,
// diagram, or region is skipped.
func Extract(ctx context.Context, data []byte, opts Options) (*models.WorkbookMetadata, error) {
	log := opts.logger().WithField("run_id", uuid.NewString())

	pkg, err := opc.Open(data)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.Wrap(ErrCorruptPackage, err.Error())
	}
	defer f.Close()

	wb := &models.WorkbookMetadata{BookName: opts.BookName}
	fillDocProps(f, wb)

	sheets, warns, err := parser.WorkbookSheets(pkg)
	if err != nil {
		return nil, pkgerrors.Wrap(ErrCorruptPackage, err.Error())
	}
	wb.Warnings = append(wb.Warnings, warns...)

	var printAreas map[string][]models.PrintArea
	if opts.ShouldIncludePrintAreas() {
		if pa, err := parser.ExtractPrintAreas(f); err == nil {
			printAreas = pa
		}
	}

	for _, sp := range sheets {
		if err := ctx.Err(); err != nil {
			// Abandon remaining sheets; the deferred Close releases the
			// package handle.
			return nil, err
		}
		sheet, sheetWarns := extractSheet(pkg, f, sp, opts, log)
		sheet.PrintAreas = printAreas[sp.Name]
		wb.Warnings = append(wb.Warnings, sheetWarns...)
		wb.Sheets = append(wb.Sheets, sheet)
	}

	if opts.Annotator != nil {
		if err := opts.Annotator.AnnotateWorkbook(ctx, wb); err != nil {
			log.WithError(err).Warn("annotation failed")
			wb.Warnings = append(wb.Warnings, models.Warning{
				Code:    models.WarnAnnotationFailed,
				Message: err.Error(),
			})
		}
	}

	log.WithFields(logrus.Fields{
		"sheets":   len(wb.Sheets),
		"warnings": len(wb.Warnings),
	}).Info("extraction finished")
	return wb, nil
}

// warnList collects per-sheet warnings during assembly.
type warnList []models.Warning

func (w *warnList) add(sheetName, part, code, message string) {
	*w = append(*w, models.Warning{Sheet: sheetName, Part: part, Code: code, Message: message})
}

// extractSheet assembles the metadata of one sheet. Failures inside are
// isolated per component, per anchor, and per region; they surface as
// warnings, never as an abort of sibling work.
func extractSheet(pkg *opc.Package, f *excelize.File, sp parser.SheetPart, opts Options, log *logrus.Entry) (models.SheetMetadata, []models.Warning) {
	sheet := models.SheetMetadata{Name: sp.Name}
	var warns warnList
	slog := log.WithField("sheet", sp.Name)

	rows, err := parser.ExtractCells(f, sp.Name, opts.ShouldIncludeLinks())
	if err != nil {
		slog.WithError(err).Warn("cell extraction failed")
		warns.add(sp.Name, "", models.WarnMalformedXML, err.Error())
	} else {
		sheet.Rows = rows
	}

	if opts.Mode != ModeLight {
		extractDrawings(pkg, f, sp, &sheet, &warns, slog)
		extractControls(pkg, sp, &sheet, &warns, slog)
	}

	extractRegions(f, sp.Name, &sheet, opts.Regions)
	return sheet, warns
}

func extractDrawings(pkg *opc.Package, f *excelize.File, sp parser.SheetPart, sheet *models.SheetMetadata, warns *warnList, slog *logrus.Entry) {
	drawingPart, err := parser.DrawingPart(pkg, sp.PartPath)
	if err != nil {
		warns.add(sp.Name, sp.PartPath, models.WarnMalformedXML, err.Error())
		return
	}
	if drawingPart == "" {
		return
	}

	anchors, anchorWarns, err := parser.ExtractAnchors(pkg, drawingPart)
	if err != nil {
		warns.add(sp.Name, drawingPart, models.WarnPartNotFound, err.Error())
		return
	}
	for i := range anchorWarns {
		anchorWarns[i].Sheet = sp.Name
	}
	*warns = append(*warns, anchorWarns...)
	sheet.Anchors = anchors

	grid := gridResolver{f: f}
	for _, anchor := range anchors {
		switch anchor.Ref.Kind {
		case models.RefChart:
			chart, chartWarns, err := parser.ExtractChart(pkg, anchor.Ref.Chart.PartPath, grid)
			if err != nil {
				slog.WithError(err).Warn("chart extraction failed")
				warns.add(sp.Name, anchor.Ref.Chart.PartPath, warningCode(err), err.Error())
				continue
			}
			for i := range chartWarns {
				chartWarns[i].Sheet = sp.Name
			}
			*warns = append(*warns, chartWarns...)
			chart.Name = anchor.Name
			sheet.Charts = append(sheet.Charts, *chart)
		case models.RefDiagram:
			// One fresh DiagramData per anchor, resolved strictly by
			// this anchor's relationship id within its drawing part.
			diagram, err := parser.ExtractDiagram(pkg, drawingPart, anchor.Ref.Diagram.RelID)
			if err != nil {
				slog.WithError(err).Warn("diagram extraction failed")
				warns.add(sp.Name, drawingPart, warningCode(err), err.Error())
				continue
			}
			diagram.Name = anchor.Name
			diagram.Description = anchor.Description
			sheet.Diagrams = append(sheet.Diagrams, *diagram)
		}
	}
}

func extractControls(pkg *opc.Package, sp parser.SheetPart, sheet *models.SheetMetadata, warns *warnList, slog *logrus.Entry) {
	vmlPart, err := parser.VMLPart(pkg, sp.PartPath)
	if err != nil || vmlPart == "" {
		return
	}
	controls, err := parser.ExtractFormControls(pkg, vmlPart)
	if err != nil {
		slog.WithError(err).Warn("form control extraction failed")
		warns.add(sp.Name, vmlPart, models.WarnMalformedXML, err.Error())
		return
	}
	sheet.Controls = controls
}

// extractRegions sweeps the cell grid, excluding cells spanned by
// drawing anchors, and attaches merged-cell info to each region.
func extractRegions(f *excelize.File, sheetName string, sheet *models.SheetMetadata, params parser.RegionParams) {
	grid, err := f.GetRows(sheetName)
	if err != nil {
		return
	}

	var exclude []models.Region
	for _, anchor := range sheet.Anchors {
		exclude = append(exclude, anchorSpan(anchor))
	}

	regions := parser.SweepRegions(sheetName, grid, params, exclude...)
	attachMergedCells(f, sheetName, regions)
	sheet.Regions = regions
}

// Default cell dimensions in pixels at 96 DPI, used to estimate the
// cell span of anchors that carry only a pixel extent.
const (
	defaultColWidthPx  = 64
	defaultRowHeightPx = 20
)

// anchorSpan returns the 1-based cell rectangle an anchor covers. Two-
// cell anchors span from/to; anchors with only a pixel extent span an
// estimated number of default-sized cells from their top-left cell.
func anchorSpan(anchor models.DrawingAnchor) models.Region {
	span := models.Region{
		R1: anchor.From.Row + 1, C1: anchor.From.Col + 1,
		R2: anchor.From.Row + 1, C2: anchor.From.Col + 1,
	}
	if anchor.To != nil {
		span.R2 = anchor.To.Row + 1
		span.C2 = anchor.To.Col + 1
		return span
	}
	if anchor.Height > 0 {
		span.R2 += anchor.Height / defaultRowHeightPx
	}
	if anchor.Width > 0 {
		span.C2 += anchor.Width / defaultColWidthPx
	}
	return span
}

func attachMergedCells(f *excelize.File, sheetName string, regions []models.Region) {
	merges, err := f.GetMergeCells(sheetName)
	if err != nil {
		return
	}
	for _, m := range merges {
		c1, r1, err1 := excelize.CellNameToCoordinates(m.GetStartAxis())
		c2, r2, err2 := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err1 != nil || err2 != nil {
			continue
		}
		for i := range regions {
			reg := &regions[i]
			if reg.Contains(r1, c1) && reg.Contains(r2, c2) {
				reg.MergedCells = append(reg.MergedCells, models.MergedCell{
					Range: m.GetStartAxis() + ":" + m.GetEndAxis(),
					Value: m.GetCellValue(),
				})
				break
			}
		}
	}
}

func fillDocProps(f *excelize.File, wb *models.WorkbookMetadata) {
	props, err := f.GetDocProps()
	if err != nil || props == nil {
		return
	}
	wb.Properties = models.DocProperties{
		Creator:        props.Creator,
		LastModifiedBy: props.LastModifiedBy,
		Title:          props.Title,
		Created:        props.Created,
		Modified:       props.Modified,
	}
}

// warningCode classifies a recoverable error into its warning code.
func warningCode(err error) string {
	switch {
	case pkgerrors.Is(err, ErrUnresolvedRelationship):
		return models.WarnUnresolvedRelationship
	case pkgerrors.Is(err, ErrPartNotFound):
		return models.WarnPartNotFound
	default:
		return models.WarnMalformedXML
	}
}
