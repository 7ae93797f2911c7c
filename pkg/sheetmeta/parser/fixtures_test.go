package parser

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/opc"
)

const testContentTypes = `<?xml version="1.0"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`

// buildTestPackage assembles an in-memory package from part name to
// content. The content-types part is added automatically.
func buildTestPackage(t *testing.T, parts map[string]string) *opc.Package {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if _, ok := parts["[Content_Types].xml"]; !ok {
		w, err := zw.Create("[Content_Types].xml")
		require.NoError(t, err)
		_, err = w.Write([]byte(testContentTypes))
		require.NoError(t, err)
	}
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	pkg, err := opc.Open(buf.Bytes())
	require.NoError(t, err)
	t.Cleanup(func() { pkg.Close() })
	return pkg
}

func testRelsXML(entries string) string {
	return `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		entries + `</Relationships>`
}
