package book

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkleaf/pageflow/pkg/ezip"
	"github.com/inkleaf/pageflow/pkg/identifiers"
)

func openZIPWithOPF(t *testing.T, opf string) (*ezip.Reader, *opfResult) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("OEBPS/content.opf")
	require.NoError(t, err)
	_, err = w.Write([]byte(opf))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	zr, err := ezip.Open(path)
	require.NoError(t, err)

	pr, err := parseOPF(zr, "OEBPS/content.opf")
	require.NoError(t, err)
	return zr, pr
}

func TestParseOPF_MetadataAndCalibreExtensions(t *testing.T) {
	zr, pr := openZIPWithOPF(t, `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title id="title-main">Series Book Three</dc:title>
  <dc:creator id="author1">Jane Author</dc:creator>
  <dc:creator id="translator1">John Translator</dc:creator>
  <dc:description>&lt;p&gt;A &lt;b&gt;great&lt;/b&gt; read.&lt;/p&gt;</dc:description>
  <dc:subject>Fantasy</dc:subject>
  <dc:subject>Adventure</dc:subject>
  <dc:publisher>Acme Press</dc:publisher>
  <dc:date>2021-05-04</dc:date>
  <dc:identifier id="bookid" opf:scheme="ISBN">978-0-306-40615-7</dc:identifier>
  <dc:language>en-US</dc:language>
  <meta refines="#author1" property="role">aut</meta>
  <meta refines="#translator1" property="role">trl</meta>
  <meta name="calibre:series" content="The Great Saga"/>
  <meta name="calibre:series_index" content="3"/>
  <meta name="calibre:tags" content="epic, multi-book"/>
  <meta name="cover" content="cover-img"/>
  </metadata>
  <manifest>
  <item id="cover-img" href="images/cover.jpg" media-type="image/jpeg"/>
  <item id="c1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
  <itemref idref="c1"/>
  </spine>
</package>`)
	defer zr.Close()

	assert.Equal(t, "Series Book Three", pr.metadata.Title)
	assert.Equal(t, []string{"Jane Author"}, pr.metadata.Authors)
	assert.Equal(t, "A great read.", pr.metadata.Description)
	assert.Equal(t, []string{"Fantasy", "Adventure"}, pr.metadata.Genres)
	assert.Equal(t, "Acme Press", pr.metadata.Publisher)
	assert.Equal(t, "The Great Saga", pr.metadata.Series)
	require.NotNil(t, pr.metadata.SeriesNumber)
	assert.Equal(t, 3.0, *pr.metadata.SeriesNumber)
	assert.Equal(t, []string{"epic", "multi-book"}, pr.metadata.Tags)
	assert.Equal(t, "OEBPS/images/cover.jpg", pr.metadata.CoverFilepath)
	assert.Equal(t, "image/jpeg", pr.metadata.CoverMimeType)
	require.NotNil(t, pr.metadata.ReleaseDate)
	assert.Equal(t, 2021, pr.metadata.ReleaseDate.Year())
	assert.Equal(t, "en-US", pr.metadata.Language)

	require.Len(t, pr.metadata.Identifiers, 1)
	assert.Equal(t, identifiers.TypeISBN13, pr.metadata.Identifiers[0].Type)
}

func TestParseOPF_SingleCreatorUsedRegardlessOfRole(t *testing.T) {
	_, pr := openZIPWithOPF(t, `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>Solo Book</dc:title>
  <dc:creator>Only Author</dc:creator>
  </metadata>
  <manifest></manifest>
  <spine></spine>
</package>`)

	assert.Equal(t, []string{"Only Author"}, pr.metadata.Authors)
}

func TestParseOPF_SkipsSpineItemsWithoutManifestEntry(t *testing.T) {
	_, pr := openZIPWithOPF(t, `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>T</dc:title></metadata>
  <manifest>
  <item id="c1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
  <itemref idref="c1"/>
  <itemref idref="missing"/>
  </spine>
</package>`)

	require.Len(t, pr.spineHrefs, 1)
	assert.Equal(t, "c1", pr.spineHrefs[0].idref)
}

func TestIsDocumentMediaType(t *testing.T) {
	assert.True(t, isDocumentMediaType("application/xhtml+xml"))
	assert.True(t, isDocumentMediaType("text/html"))
	assert.False(t, isDocumentMediaType("text/css"))
	assert.False(t, isDocumentMediaType("image/jpeg"))
}
