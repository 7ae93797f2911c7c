package sheetmeta

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
)

const testDrawingXML = `<?xml version="1.0"?>
<xdr:wsDr xmlns:xdr="http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
 xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart"
 xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram"
 xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
 <xdr:twoCellAnchor>
  <xdr:from><xdr:col>0</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>10</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:from>
  <xdr:to><xdr:col>3</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>13</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:to>
  <xdr:sp>
   <xdr:nvSpPr><xdr:cNvPr id="1" name="Note 1"/></xdr:nvSpPr>
   <xdr:spPr><a:prstGeom prst="roundRect"/></xdr:spPr>
   <xdr:txBody><a:p><a:r><a:t>Review me</a:t></a:r></a:p></xdr:txBody>
  </xdr:sp>
  <xdr:clientData/>
 </xdr:twoCellAnchor>
 <xdr:twoCellAnchor>
  <xdr:from><xdr:col>5</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>10</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:from>
  <xdr:to><xdr:col>12</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>24</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:to>
  <xdr:graphicFrame>
   <xdr:nvGraphicFramePr><xdr:cNvPr id="2" name="Chart 1"/></xdr:nvGraphicFramePr>
   <a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/chart">
    <c:chart r:id="rId1"/>
   </a:graphicData></a:graphic>
  </xdr:graphicFrame>
  <xdr:clientData/>
 </xdr:twoCellAnchor>
 <xdr:twoCellAnchor>
  <xdr:from><xdr:col>0</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>26</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:from>
  <xdr:to><xdr:col>6</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>38</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:to>
  <xdr:graphicFrame>
   <xdr:nvGraphicFramePr><xdr:cNvPr id="3" name="Diagram 1" descr="Org chart of the team"/></xdr:nvGraphicFramePr>
   <a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/diagram">
    <dgm:relIds r:dm="rId2" r:lo="rId3" r:qs="rId4" r:cs="rId5"/>
   </a:graphicData></a:graphic>
  </xdr:graphicFrame>
  <xdr:clientData/>
 </xdr:twoCellAnchor>
 <xdr:twoCellAnchor>
  <xdr:from><xdr:col>8</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>26</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:from>
  <xdr:to><xdr:col>14</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>38</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:to>
  <xdr:graphicFrame>
   <xdr:nvGraphicFramePr><xdr:cNvPr id="4" name="Diagram 2"/></xdr:nvGraphicFramePr>
   <a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/diagram">
    <dgm:relIds r:dm="rId6" r:lo="rId7" r:qs="rId8" r:cs="rId9"/>
   </a:graphicData></a:graphic>
  </xdr:graphicFrame>
  <xdr:clientData/>
 </xdr:twoCellAnchor>
</xdr:wsDr>`

const testDrawingRels = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
 <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart" Target="../charts/chart1.xml"/>
 <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramData" Target="../diagrams/data1.xml"/>
 <Relationship Id="rId6" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramData" Target="../diagrams/data2.xml"/>
</Relationships>`

const testSheetRels = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
 <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/drawing" Target="../drawings/drawing1.xml"/>
</Relationships>`

const testChartXML = `<?xml version="1.0"?>
<c:chartSpace xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
 <c:chart>
  <c:title><c:tx><c:rich><a:p><a:r><a:t>Totals</a:t></a:r></a:p></c:rich></c:tx></c:title>
  <c:plotArea>
   <c:barChart>
    <c:ser>
     <c:tx><c:strRef><c:f>Sheet1!$B$1</c:f><c:strCache><c:pt idx="0"><c:v>Val</c:v></c:pt></c:strCache></c:strRef></c:tx>
     <c:cat><c:strRef><c:f>Sheet1!$A$2:$A$3</c:f><c:strCache>
      <c:pt idx="0"><c:v>a</c:v></c:pt>
      <c:pt idx="1"><c:v>b</c:v></c:pt>
     </c:strCache></c:strRef></c:cat>
     <c:val><c:numRef><c:f>Sheet1!$B$2:$B$3</c:f><c:numCache>
      <c:pt idx="0"><c:v>1</c:v></c:pt>
      <c:pt idx="1"><c:v>2</c:v></c:pt>
     </c:numCache></c:numRef></c:val>
    </c:ser>
   </c:barChart>
  </c:plotArea>
 </c:chart>
</c:chartSpace>`

func testDiagramXML(layout, text string) string {
	return `<?xml version="1.0"?>
<dgm:dataModel xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
 <dgm:ptLst>
  <dgm:pt modelId="{0}" type="doc">
   <dgm:prSet loTypeId="urn:microsoft.com/office/officeart/2005/8/layout/` + layout + `"/>
  </dgm:pt>
  <dgm:pt modelId="{1}">
   <dgm:t><a:bodyPr/><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></dgm:t>
  </dgm:pt>
 </dgm:ptLst>
</dgm:dataModel>`
}

// buildWorkbook produces an xlsx with cell data plus hand-written
// drawing, chart, and diagram parts spliced into the archive.
func buildWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Val"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "a"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 1))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "b"))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", 2))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return spliceParts(t, buf.Bytes(), map[string]string{
		"xl/worksheets/_rels/sheet1.xml.rels": testSheetRels,
		"xl/drawings/drawing1.xml":            testDrawingXML,
		"xl/drawings/_rels/drawing1.xml.rels": testDrawingRels,
		"xl/charts/chart1.xml":                testChartXML,
		"xl/diagrams/data1.xml":               testDiagramXML("process1", "Intake"),
		"xl/diagrams/data2.xml":               testDiagramXML("cycle2", "Review"),
	})
}

// spliceParts rewrites a zip archive with extra or replaced entries.
func spliceParts(t *testing.T, data []byte, extra map[string]string) []byte {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	parts := make(map[string][]byte)
	var order []string
	for _, zf := range zr.File {
		rc, err := zf.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		parts[zf.Name] = content
		order = append(order, zf.Name)
	}
	for name, content := range extra {
		if _, ok := parts[name]; !ok {
			order = append(order, name)
		}
		parts[name] = []byte(content)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(parts[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	data := buildWorkbook(t)

	wb, err := Extract(context.Background(), data, Options{
		Mode:     ModeStandard,
		BookName: "report.xlsx",
	})
	require.NoError(t, err)

	assert.Equal(t, "report.xlsx", wb.BookName)
	require.Len(t, wb.Sheets, 1)
	sheet := wb.Sheets[0]
	assert.Equal(t, "Sheet1", sheet.Name)

	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Name", sheet.Rows[0].C["1"])
	assert.Equal(t, int64(1), sheet.Rows[1].C["2"])

	require.Len(t, sheet.Anchors, 4)
	assert.Equal(t, models.RefShape, sheet.Anchors[0].Ref.Kind)
	assert.Equal(t, models.RefChart, sheet.Anchors[1].Ref.Kind)
	assert.Equal(t, models.RefDiagram, sheet.Anchors[2].Ref.Kind)
	assert.Equal(t, models.RefDiagram, sheet.Anchors[3].Ref.Kind)

	require.Len(t, sheet.Charts, 1)
	chart := sheet.Charts[0]
	assert.Equal(t, "Chart 1", chart.Name)
	assert.Equal(t, "Bar", chart.ChartType)
	assert.Equal(t, "Totals", chart.Title)
	require.Len(t, chart.Series, 1)
	require.Len(t, chart.Series[0].Points, 2)

	// One region covering the cell block; anchors sit far below it.
	require.NotEmpty(t, sheet.Regions)
	region := sheet.Regions[0]
	assert.Equal(t, 1, region.R1)
	assert.Equal(t, 1, region.C1)
	assert.Equal(t, 3, region.R2)
	assert.Equal(t, 2, region.C2)
	assert.Equal(t, models.RegionTable, region.Kind)

	assert.Empty(t, wb.Warnings)
}

// Two SmartArt anchors on one sheet must produce two independent
// diagrams, each from its own data part.
func TestExtractDistinctDiagrams(t *testing.T) {
	data := buildWorkbook(t)

	wb, err := Extract(context.Background(), data, Options{Mode: ModeStandard})
	require.NoError(t, err)

	require.Len(t, wb.Sheets, 1)
	diagrams := wb.Sheets[0].Diagrams
	require.Len(t, diagrams, 2)

	assert.Equal(t, "Diagram 1", diagrams[0].Name)
	assert.Equal(t, "Org chart of the team", diagrams[0].Description)
	assert.Equal(t, "Diagram 2", diagrams[1].Name)
	assert.Empty(t, diagrams[1].Description)
	assert.NotEqual(t, diagrams[0].SourcePartPath, diagrams[1].SourcePartPath)
	assert.Equal(t, "process1", diagrams[0].DiagramType)
	assert.Equal(t, "cycle2", diagrams[1].DiagramType)
	require.Len(t, diagrams[0].Nodes, 2)
	require.Len(t, diagrams[1].Nodes, 2)
	assert.Equal(t, []string{"Intake"}, diagrams[0].Nodes[1].TextFragments)
	assert.Equal(t, []string{"Review"}, diagrams[1].Nodes[1].TextFragments)
}

func TestExtractLightMode(t *testing.T) {
	data := buildWorkbook(t)

	wb, err := Extract(context.Background(), data, Options{Mode: ModeLight})
	require.NoError(t, err)

	require.Len(t, wb.Sheets, 1)
	sheet := wb.Sheets[0]
	assert.NotEmpty(t, sheet.Rows)
	assert.Empty(t, sheet.Anchors)
	assert.Empty(t, sheet.Charts)
	assert.Empty(t, sheet.Diagrams)
}

func TestExtractCorruptInput(t *testing.T) {
	_, err := Extract(context.Background(), []byte("not a spreadsheet"), Options{})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, ErrCorruptPackage))
}

func TestExtractCancelledContext(t *testing.T) {
	data := buildWorkbook(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, data, Options{})
	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}

func TestAnchorSpan(t *testing.T) {
	tests := []struct {
		name     string
		anchor   models.DrawingAnchor
		expected models.Region
	}{
		{
			name: "two cell uses to",
			anchor: models.DrawingAnchor{
				From: models.CellRef{Col: 0, Row: 0},
				To:   &models.CellRef{Col: 4, Row: 9},
			},
			expected: models.Region{R1: 1, C1: 1, R2: 10, C2: 5},
		},
		{
			name: "one cell extent spans estimated cells",
			anchor: models.DrawingAnchor{
				From:   models.CellRef{Col: 2, Row: 3},
				Width:  200,
				Height: 60,
			},
			expected: models.Region{R1: 4, C1: 3, R2: 7, C2: 6},
		},
		{
			name: "no extent stays on the from cell",
			anchor: models.DrawingAnchor{
				From: models.CellRef{Col: 1, Row: 1},
			},
			expected: models.Region{R1: 2, C1: 2, R2: 2, C2: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, anchorSpan(tt.anchor))
		})
	}
}

func TestWarningCode(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{pkgerrors.Wrap(ErrUnresolvedRelationship, "x"), models.WarnUnresolvedRelationship},
		{pkgerrors.Wrap(ErrPartNotFound, "x"), models.WarnPartNotFound},
		{pkgerrors.New("anything else"), models.WarnMalformedXML},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, warningCode(tt.err))
	}
}
