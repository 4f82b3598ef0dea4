// Package book implements the orchestration layer: opening an EPUB,
// populating a versioned on-disk extraction cache of converted chapters,
// and handing back a wordprovider.Provider ready for layout.
//
// Container/OPF/NCX parsing and metadata shape are folded into this one
// package rather than split across separate epub/mediafile packages.
package book

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"golang.org/x/text/language"

	"github.com/inkleaf/pageflow/pkg/errs"
	"github.com/inkleaf/pageflow/pkg/ezip"
	"github.com/inkleaf/pageflow/pkg/hyphenate"
	"github.com/inkleaf/pageflow/pkg/identifiers"
	"github.com/inkleaf/pageflow/pkg/wordprovider"
)

// Identifier is one dc:identifier entry, classified for cache-key ranking.
type Identifier struct {
	Type  identifiers.Type
	Value string
}

// SpineItem is one chapter in reading order, sized by its *converted*
// stream (the word provider reads converted text, not raw XHTML).
type SpineItem struct {
	Idref            string
	Href             string
	UncompressedSize int64
	CumulativeOffset int64
}

// TocItem is one table-of-contents entry, built from either the EPUB3
// nav document or a fallback NCX.
type TocItem struct {
	Title    string
	Href     string
	Anchor   string
	Children []TocItem
}

// Metadata is the descriptive subset of a book's catalog fields a host
// library view would want.
type Metadata struct {
	Title         string
	Subtitle      string
	Authors       []string
	Series        string
	SeriesNumber  *float64
	Genres        []string
	Tags          []string
	Description   string
	Publisher     string
	Imprint       string
	URL           string
	ReleaseDate   *time.Time
	CoverFilepath string
	CoverMimeType string
	Identifiers   []Identifier
	Language      string
}

// Book is an opened EPUB: its metadata, spine/TOC, and extraction-cache
// location. ContentPkgPath is the OPF's archive-relative path.
type Book struct {
	SourcePath     string
	ContentPkgPath string
	Metadata       Metadata
	Spine          []SpineItem
	TOC            []TocItem
	CSSPaths       []string
	Language       hyphenate.Language
	TotalBookSize  int64
	CacheDir       string
}

// CacheMetaFilename is the one-line version marker file kept inside
// every extraction cache directory.
const CacheMetaFilename = "epub_meta.txt"

// Open loads the EPUB at path, ensures its extraction cache under
// cacheRootDir is present and at cacheVersion (wiping and rebuilding it
// otherwise), and returns the parsed Book. A nil log is replaced with a
// fresh logger.New() so callers that don't care about cache-rebuild
// diagnostics can pass nil.
func Open(path, cacheRootDir string, cacheVersion int, xmlWindowSize int, log logger.Logger) (*Book, error) {
	if log == nil {
		log = logger.New()
	}

	zr, err := ezip.Open(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	rootfile, err := readContainerRootfile(zr)
	if err != nil {
		return nil, err
	}

	pr, err := parseOPF(zr, rootfile)
	if err != nil {
		return nil, err
	}

	cacheKey := chooseCacheKey(pr.metadata.Identifiers, pr.metadata.Title)
	cacheDir := filepath.Join(cacheRootDir, "epub_"+cacheKey)

	if err := ensureCache(zr, pr, cacheDir, cacheVersion, xmlWindowSize, log); err != nil {
		return nil, err
	}

	b := &Book{
		SourcePath:     path,
		ContentPkgPath: rootfile,
		Metadata:       pr.metadata,
		TOC:            pr.toc,
		CSSPaths:       pr.cssPaths,
		Language:       resolveLanguage(pr.metadata.Language),
		CacheDir:       cacheDir,
	}

	spine, total, err := measureConvertedSpine(pr, cacheDir)
	if err != nil {
		return nil, err
	}
	b.Spine = spine
	b.TotalBookSize = total

	return b, nil
}

// WordProvider builds a wordprovider.Provider over this book's cached,
// converted chapter streams, in spine order: one ChapterSource per spine
// item, each opening its converted file through a windowed reader.
func (b *Book) WordProvider(windowSize int) (*wordprovider.Provider, error) {
	chapters := make([]wordprovider.ChapterSource, 0, len(b.Spine))
	for _, item := range b.Spine {
		src, err := wordprovider.OpenFile(convertedPath(b.CacheDir, item.Href))
		if err != nil {
			return nil, errs.NotFound(item.Href)
		}
		chapters = append(chapters, wordprovider.ChapterSource{
			Name: item.Idref,
			Src: src,
			Size: item.UncompressedSize,
			CumulativeOffset: item.CumulativeOffset,
		})
	}
	return wordprovider.NewProvider(chapters, windowSize), nil
}

// resolveLanguage maps an OPF dc:language BCP-47 tag to one of
// pkg/hyphenate's four languages: "de*" maps to German, "en*" to English,
// everything else to Basic.
func resolveLanguage(tag string) hyphenate.Language {
	if tag == "" {
		return hyphenate.LanguageBasic
	}
	base, _ := language.Parse(tag)
	baseLang, _ := base.Base()
	switch baseLang.String() {
	case "de":
		return hyphenate.LanguageGerman
	case "en":
		return hyphenate.LanguageEnglish
	default:
		return hyphenate.LanguageBasic
	}
}

// measureConvertedSpine stats each chapter's already-converted .txt cache
// file to build spine cumulative offsets: spine[i].CumulativeOffset ==
// Σ spine[j].UncompressedSize for j<i.
func measureConvertedSpine(pr *opfResult, cacheDir string) ([]SpineItem, int64, error) {
	spine := make([]SpineItem, 0, len(pr.spineHrefs))
	var offset int64
	for _, s := range pr.spineHrefs {
		info, err := os.Stat(convertedPath(cacheDir, s.href))
		if err != nil {
			return nil, 0, pkgerrors.WithStack(err)
		}
		size := info.Size()
		spine = append(spine, SpineItem{
			Idref:            s.idref,
			Href:             s.href,
			UncompressedSize: size,
			CumulativeOffset: offset,
		})
		offset += size
	}
	return spine, offset, nil
}

func convertedPath(cacheDir, href string) string {
	return filepath.Join(cacheDir, href) + ".txt"
}

// readContainerRootfile parses META-INF/container.xml and returns the
// first rootfile's full-path attribute.
func readContainerRootfile(zr *ezip.Reader) (string, error) {
	idx, err := zr.Locate("META-INF/container.xml")
	if err != nil {
		return "", errs.Corrupt("META-INF/container.xml", "container.xml not found")
	}

	var data []byte
	err = zr.ExtractStreaming(idx, 0, func(chunk []byte) (bool, error) {
		data = append(data, chunk...)
		return false, nil
	})
	if err != nil {
		return "", err
	}

	var container struct {
		Rootfiles struct {
			Rootfile []struct {
				FullPath string `xml:"full-path,attr"`
			} `xml:"rootfile"`
		} `xml:"rootfiles"`
	}
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", errs.Corrupt("META-INF/container.xml", err.Error())
	}
	if len(container.Rootfiles.Rootfile) == 0 {
		return "", errs.Corrupt("META-INF/container.xml", "no rootfile element")
	}
	return container.Rootfiles.Rootfile[0].FullPath, nil
}

// LoadPosition reads a book's sibling .pos file: either "<position>"
// (legacy) or "<chapter>,<position>". A missing or empty file means
// chapter 0, position 0.
func LoadPosition(path string) (chapter int, position int64, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return 0, 0, nil
		}
		return 0, 0, pkgerrors.WithStack(readErr)
	}
	s := string(data)
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	if s == "" {
		return 0, 0, nil
	}

	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			ch, perr := strconv.Atoi(s[:i])
			if perr != nil {
				return 0, 0, errs.Corrupt(path, "malformed chapter field")
			}
			pos, perr := strconv.ParseInt(s[i+1:], 10, 64)
			if perr != nil {
				return 0, 0, errs.Corrupt(path, "malformed position field")
			}
			return ch, pos, nil
		}
	}

	pos, perr := strconv.ParseInt(s, 10, 64)
	if perr != nil {
		return 0, 0, errs.Corrupt(path, "malformed legacy position")
	}
	return 0, pos, nil
}

// SavePosition writes the "<chapter>,<position>" form LoadPosition reads.
func SavePosition(path string, chapter int, position int64) error {
	line := strconv.Itoa(chapter) + "," + strconv.FormatInt(position, 10) + "\n"
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return pkgerrors.WithStack(err)
	}
	return nil
}
