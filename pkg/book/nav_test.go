package book

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkleaf/pageflow/pkg/ezip"
)

func openZIP(t *testing.T, files map[string]string) *ezip.Reader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, werr := zw.Create(name)
		require.NoError(t, werr)
		_, werr = w.Write([]byte(content))
		require.NoError(t, werr)
	}
	require.NoError(t, zw.Close())

	r, err := ezip.Open(path)
	require.NoError(t, err)
	return r
}

func TestParseTOC_PrefersNavDocumentOverNCX(t *testing.T) {
	zr := openZIP(t, map[string]string{
		"OEBPS/nav.xhtml": `<html xmlns:epub="http://www.idpf.org/2007/ops">
<body><nav epub:type="toc"><ol>
  <li><a href="c1.xhtml">One</a></li>
  <li><a href="c2.xhtml">Two</a>
  <ol><li><a href="c2.xhtml#s1">Two A</a></li></ol>
  </li>
</ol></nav></body></html>`,
		"OEBPS/toc.ncx": `<ncx><navMap>
  <navPoint><navLabel><text>NCX One</text></navLabel><content src="c1.xhtml"/></navPoint>
</navMap></ncx>`,
	})
	defer zr.Close()

	pkg := opfPackage{}
	pkg.Manifest.Item = append(pkg.Manifest.Item, struct {
		ID         string `xml:"id,attr"`
		Href       string `xml:"href,attr"`
		MediaType  string `xml:"media-type,attr"`
		Properties string `xml:"properties,attr"`
	}{ID: "nav", Href: "nav.xhtml", Properties: "nav"})

	items, err := parseTOC(zr, pkg, "OEBPS/")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "One", items[0].Title)
	assert.Equal(t, "OEBPS/c1.xhtml", items[0].Href)
	assert.Equal(t, "Two", items[1].Title)
	require.Len(t, items[1].Children, 1)
	assert.Equal(t, "Two A", items[1].Children[0].Title)
	assert.Equal(t, "OEBPS/c2.xhtml", items[1].Children[0].Href)
	assert.Equal(t, "s1", items[1].Children[0].Anchor)
}

func TestParseTOC_FallsBackToNCXWhenNoNavDocument(t *testing.T) {
	zr := openZIP(t, map[string]string{
		"OEBPS/toc.ncx": `<ncx><navMap>
  <navPoint><navLabel><text>Chapter One</text></navLabel><content src="c1.xhtml"/>
  <navPoint><navLabel><text>Section 1.1</text></navLabel><content src="c1.xhtml#sec1"/></navPoint>
  </navPoint>
</navMap></ncx>`,
	})
	defer zr.Close()

	pkg := opfPackage{}
	pkg.Manifest.Item = append(pkg.Manifest.Item, struct {
		ID         string `xml:"id,attr"`
		Href       string `xml:"href,attr"`
		MediaType  string `xml:"media-type,attr"`
		Properties string `xml:"properties,attr"`
	}{ID: "ncx", Href: "toc.ncx"})
	pkg.Spine.Toc = "ncx"

	items, err := parseTOC(zr, pkg, "OEBPS/")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Chapter One", items[0].Title)
	require.Len(t, items[0].Children, 1)
	assert.Equal(t, "Section 1.1", items[0].Children[0].Title)
	assert.Equal(t, "sec1", items[0].Children[0].Anchor)
}

func TestParseTOC_NoTOCSourceReturnsEmpty(t *testing.T) {
	zr := openZIP(t, map[string]string{"OEBPS/content.opf": "<package/>"})
	defer zr.Close()

	items, err := parseTOC(zr, opfPackage{}, "OEBPS/")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSplitHrefAnchor(t *testing.T) {
	href, anchor := splitHrefAnchor("chapter3.xhtml#section1")
	assert.Equal(t, "chapter3.xhtml", href)
	assert.Equal(t, "section1", anchor)

	href, anchor = splitHrefAnchor("chapter3.xhtml")
	assert.Equal(t, "chapter3.xhtml", href)
	assert.Empty(t, anchor)
}
