package opc

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relsXML(entries string) string {
	return `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		entries + `</Relationships>`
}

func TestRelsPartFor(t *testing.T) {
	tests := []struct {
		sourcePart string
		expected   string
	}{
		{"", "_rels/.rels"},
		{"xl/workbook.xml", "xl/_rels/workbook.xml.rels"},
		{"xl/drawings/drawing1.xml", "xl/drawings/_rels/drawing1.xml.rels"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/_rels/sheet1.xml.rels"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, relsPartFor(tt.sourcePart))
	}
}

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		sourcePart string
		target     string
		expected   string
		wantErr    bool
	}{
		{"xl/drawings/drawing1.xml", "../charts/chart1.xml", "xl/charts/chart1.xml", false},
		{"xl/drawings/drawing1.xml", "../media/image1.png", "xl/media/image1.png", false},
		{"xl/workbook.xml", "worksheets/sheet1.xml", "xl/worksheets/sheet1.xml", false},
		{"xl/workbook.xml", "/xl/styles.xml", "xl/styles.xml", false},
		{"", "xl/workbook.xml", "xl/workbook.xml", false},
		{"xl/workbook.xml", "../../escape.xml", "", true},
	}

	for _, tt := range tests {
		got, err := normalizeTarget(tt.sourcePart, tt.target)
		if tt.wantErr {
			require.Error(t, err, "target %q", tt.target)
			assert.True(t, pkgerrors.Is(err, ErrUnresolvedRelationship))
			continue
		}
		require.NoError(t, err, "target %q", tt.target)
		assert.Equal(t, tt.expected, got)
	}
}

// The same relationship id must resolve independently per source part.
// Two drawing parts both using rId1 point at different targets.
func TestResolveScopedPerPart(t *testing.T) {
	data := buildZip(t, map[string]string{
		"[Content_Types].xml":      minimalContentTypes,
		"xl/drawings/drawing1.xml": "<drawing/>",
		"xl/drawings/drawing2.xml": "<drawing/>",
		"xl/drawings/_rels/drawing1.xml.rels": relsXML(
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramData" Target="../diagrams/data1.xml"/>`),
		"xl/drawings/_rels/drawing2.xml.rels": relsXML(
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramData" Target="../diagrams/data2.xml"/>`),
		"xl/diagrams/data1.xml": "<dataModel/>",
		"xl/diagrams/data2.xml": "<dataModel/>",
	})
	pkg, err := Open(data)
	require.NoError(t, err)
	defer pkg.Close()

	target1, err := pkg.Resolve("xl/drawings/drawing1.xml", "rId1")
	require.NoError(t, err)
	target2, err := pkg.Resolve("xl/drawings/drawing2.xml", "rId1")
	require.NoError(t, err)

	assert.Equal(t, "xl/diagrams/data1.xml", target1)
	assert.Equal(t, "xl/diagrams/data2.xml", target2)
	assert.NotEqual(t, target1, target2)
}

func TestResolveUnknownID(t *testing.T) {
	data := buildZip(t, map[string]string{
		"[Content_Types].xml": minimalContentTypes,
		"xl/workbook.xml":     "<workbook/>",
		"xl/_rels/workbook.xml.rels": relsXML(
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>`),
		"xl/worksheets/sheet1.xml": "<worksheet/>",
	})
	pkg, err := Open(data)
	require.NoError(t, err)
	defer pkg.Close()

	_, err = pkg.Resolve("xl/workbook.xml", "rId99")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, ErrUnresolvedRelationship))
}

func TestResolveExternalTarget(t *testing.T) {
	data := buildZip(t, map[string]string{
		"[Content_Types].xml":      minimalContentTypes,
		"xl/worksheets/sheet1.xml": "<worksheet/>",
		"xl/worksheets/_rels/sheet1.xml.rels": relsXML(
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/" TargetMode="External"/>`),
	})
	pkg, err := Open(data)
	require.NoError(t, err)
	defer pkg.Close()

	rels, err := pkg.Rels("xl/worksheets/sheet1.xml")
	require.NoError(t, err)
	require.Contains(t, rels, "rId1")
	assert.True(t, rels["rId1"].External)
	assert.Equal(t, "https://example.com/", rels["rId1"].Target)

	_, err = pkg.Resolve("xl/worksheets/sheet1.xml", "rId1")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, ErrUnresolvedRelationship))
}

func TestResolveTargetMissing(t *testing.T) {
	data := buildZip(t, map[string]string{
		"[Content_Types].xml":      minimalContentTypes,
		"xl/drawings/drawing1.xml": "<drawing/>",
		"xl/drawings/_rels/drawing1.xml.rels": relsXML(
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart" Target="../charts/chart1.xml"/>`),
	})
	pkg, err := Open(data)
	require.NoError(t, err)
	defer pkg.Close()

	_, err = pkg.Resolve("xl/drawings/drawing1.xml", "rId1")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, ErrPartNotFound))
}

func TestRelsMissingPartIsEmpty(t *testing.T) {
	data := buildZip(t, map[string]string{
		"[Content_Types].xml":      minimalContentTypes,
		"xl/worksheets/sheet1.xml": "<worksheet/>",
	})
	pkg, err := Open(data)
	require.NoError(t, err)
	defer pkg.Close()

	rels, err := pkg.Rels("xl/worksheets/sheet1.xml")
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestRelsSkipsRootEscape(t *testing.T) {
	data := buildZip(t, map[string]string{
		"[Content_Types].xml": minimalContentTypes,
		"xl/workbook.xml":     "<workbook/>",
		"xl/_rels/workbook.xml.rels": relsXML(
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="../../outside.xml"/>` +
				`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>`),
		"xl/worksheets/sheet1.xml": "<worksheet/>",
	})
	pkg, err := Open(data)
	require.NoError(t, err)
	defer pkg.Close()

	rels, err := pkg.Rels("xl/workbook.xml")
	require.NoError(t, err)
	assert.NotContains(t, rels, "rId1")
	assert.Contains(t, rels, "rId2")

	_, err = pkg.Resolve("xl/workbook.xml", "rId1")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, ErrUnresolvedRelationship))
}
