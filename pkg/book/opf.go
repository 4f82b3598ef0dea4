package book

import (
	"encoding/xml"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inkleaf/pageflow/pkg/errs"
	"github.com/inkleaf/pageflow/pkg/ezip"
	"github.com/inkleaf/pageflow/pkg/htmlutil"
	"github.com/inkleaf/pageflow/pkg/identifiers"
)

// opfPackage mirrors the subset of the OPF <package> element this module
// cares about: metadata, manifest, and spine.
type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Title []struct {
			Text string `xml:",chardata"`
			ID   string `xml:"id,attr"`
		} `xml:"title"`
		Creator []struct {
			Text string `xml:",chardata"`
			ID   string `xml:"id,attr"`
			Role string `xml:"role,attr"`
		} `xml:"creator"`
		Description string   `xml:"description"`
		Subject     []string `xml:"subject"`
		Publisher   string   `xml:"publisher"`
		Identifier  []struct {
			Text   string `xml:",chardata"`
			ID     string `xml:"id,attr"`
			Scheme string `xml:"scheme,attr"`
		} `xml:"identifier"`
		Date     string   `xml:"date"`
		Relation []string `xml:"relation"`
		Source   []string `xml:"source"`
		Language string   `xml:"language"`
		Meta     []struct {
			Text     string `xml:",chardata"`
			Name     string `xml:"name,attr"`
			Content  string `xml:"content,attr"`
			Refines  string `xml:"refines,attr"`
			Property string `xml:"property,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Manifest struct {
		Item []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Toc     string `xml:"toc,attr"`
		Itemref []struct {
			Idref string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type spineHref struct {
	idref string
	href  string
}

type manifestItem struct {
	id        string
	href      string
	mediaType string
}

// opfResult is everything Open needs out of the OPF plus whichever TOC
// source (nav or NCX) was found, so that extraction and spine sizing can
// proceed without re-parsing the package.
type opfResult struct {
	metadata      Metadata
	toc           []TocItem
	cssPaths      []string
	spineHrefs    []spineHref
	manifestItems []manifestItem
	basePath      string
}

// isDocumentMediaType reports whether mediaType names an (X)HTML
// document that pkg/convert should process, rather than an asset to copy
// verbatim.
func isDocumentMediaType(mediaType string) bool {
	return strings.Contains(mediaType, "xhtml") || strings.Contains(mediaType, "html")
}

func parseOPF(zr *ezip.Reader, rootfile string) (*opfResult, error) {
	idx, err := zr.Locate(rootfile)
	if err != nil {
		return nil, errs.Corrupt(rootfile, "package document not found")
	}
	data, err := extractAll(zr, idx)
	if err != nil {
		return nil, err
	}

	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, errs.Corrupt(rootfile, err.Error())
	}

	basePath := filepath.Dir(rootfile)
	if basePath == "." {
		basePath = ""
	} else {
		basePath += "/"
	}

	manifestItems := make([]manifestItem, 0, len(pkg.Manifest.Item))
	manifestByID := make(map[string]manifestItem, len(pkg.Manifest.Item))
	var cssPaths []string
	for _, item := range pkg.Manifest.Item {
		mi := manifestItem{id: item.ID, href: basePath + item.Href, mediaType: item.MediaType}
		manifestItems = append(manifestItems, mi)
		manifestByID[item.ID] = mi
		if strings.Contains(item.MediaType, "css") {
			cssPaths = append(cssPaths, mi.href)
		}
	}

	spineHrefs := make([]spineHref, 0, len(pkg.Spine.Itemref))
	for _, ref := range pkg.Spine.Itemref {
		mi, ok := manifestByID[ref.Idref]
		if !ok {
			continue
		}
		spineHrefs = append(spineHrefs, spineHref{idref: ref.Idref, href: mi.href})
	}

	metaProperties := map[string]map[string]string{}
	metaContent := map[string]string{}
	for _, m := range pkg.Metadata.Meta {
		if m.Refines != "" {
			key := strings.ReplaceAll(m.Refines, "#", "")
			if metaProperties[key] == nil {
				metaProperties[key] = map[string]string{}
			}
			metaProperties[key][m.Property] = m.Text
		} else if m.Content != "" {
			metaContent[m.Name] = m.Content
		}
	}

	title, subtitle := parseTitles(pkg.Metadata.Title, metaProperties)
	authors := parseAuthors(pkg.Metadata.Creator, metaProperties)

	coverFilepath, coverMimeType := "", ""
	if metaContent["cover"] != "" {
		if mi, ok := manifestByID[metaContent["cover"]]; ok {
			coverFilepath, coverMimeType = mi.href, mi.mediaType
		}
	}

	series := metaContent["calibre:series"]
	var seriesNumber *float64
	if idxStr := metaContent["calibre:series_index"]; idxStr != "" {
		if num, perr := strconv.ParseFloat(idxStr, 64); perr == nil {
			seriesNumber = &num
		}
	}

	var genres []string
	for _, subject := range pkg.Metadata.Subject {
		if s := strings.TrimSpace(subject); s != "" {
			genres = append(genres, s)
		}
	}

	var tags []string
	if calibreTags := metaContent["calibre:tags"]; calibreTags != "" {
		for _, tag := range strings.Split(calibreTags, ",") {
			if t := strings.TrimSpace(tag); t != "" {
				tags = append(tags, t)
			}
		}
	}

	var releaseDate *time.Time
	if pkg.Metadata.Date != "" {
		formats := []string{"2006-01-02", "2006-01-02T15:04:05Z", "2006-01-02T15:04:05-07:00", "2006"}
		for _, format := range formats {
			if t, perr := time.Parse(format, pkg.Metadata.Date); perr == nil {
				releaseDate = &t
				break
			}
		}
	}

	var imprint string
	for _, m := range pkg.Metadata.Meta {
		if m.Property == "ibooks:imprint" || m.Name == "imprint" {
			imprint = m.Text
			if imprint == "" {
				imprint = m.Content
			}
			break
		}
	}

	url := firstURL(pkg.Metadata.Relation)
	if url == "" {
		url = firstURL(pkg.Metadata.Source)
	}

	var bookIdentifiers []Identifier
	for _, identifier := range pkg.Metadata.Identifier {
		value := strings.TrimSpace(identifier.Text)
		if value == "" {
			continue
		}
		idType := identifiers.DetectType(value, identifier.Scheme)
		if idType == identifiers.TypeUnknown {
			continue
		}
		bookIdentifiers = append(bookIdentifiers, Identifier{Type: idType, Value: value})
	}

	toc, err := parseTOC(zr, pkg, basePath)
	if err != nil {
		return nil, err
	}

	return &opfResult{
		metadata: Metadata{
			Title:         title,
			Subtitle:      subtitle,
			Authors:       authors,
			Series:        series,
			SeriesNumber:  seriesNumber,
			Genres:        genres,
			Tags:          tags,
			Description:   htmlutil.StripTags(pkg.Metadata.Description),
			Publisher:     pkg.Metadata.Publisher,
			Imprint:       imprint,
			URL:           url,
			ReleaseDate:   releaseDate,
			CoverFilepath: coverFilepath,
			CoverMimeType: coverMimeType,
			Identifiers:   bookIdentifiers,
			Language:      pkg.Metadata.Language,
		},
		toc:           toc,
		cssPaths:      cssPaths,
		spineHrefs:    spineHrefs,
		manifestItems: manifestItems,
		basePath:      basePath,
	}, nil
}

func parseTitles(titles []struct {
	Text string `xml:",chardata"`
	ID   string `xml:"id,attr"`
}, metaProperties map[string]map[string]string) (title, subtitle string) {
	if len(titles) == 1 {
		return titles[0].Text, ""
	}
	if len(titles) == 0 {
		return "", ""
	}
	for _, t := range titles {
		titleType := ""
		if t.ID != "" && metaProperties[t.ID] != nil {
			titleType = metaProperties[t.ID]["title-type"]
		}
		if titleType == "main" || t.ID == "title-main" {
			title = t.Text
		}
		if titleType == "subtitle" || t.ID == "subtitle" {
			subtitle = t.Text
		}
	}
	if title == "" {
		title = titles[0].Text
	}
	return title, subtitle
}

func parseAuthors(creators []struct {
	Text string `xml:",chardata"`
	ID   string `xml:"id,attr"`
	Role string `xml:"role,attr"`
}, metaProperties map[string]map[string]string) []string {
	var authors []string
	for _, creator := range creators {
		role := creator.Role
		if role == "" && creator.ID != "" && metaProperties[creator.ID] != nil {
			role = metaProperties[creator.ID]["role"]
		}
		if role == "aut" || len(creators) == 1 {
			authors = append(authors, creator.Text)
		}
	}
	return authors
}

func firstURL(candidates []string) string {
	for _, c := range candidates {
		if strings.HasPrefix(c, "http://") || strings.HasPrefix(c, "https://") {
			return c
		}
	}
	return ""
}

// extractAll decompresses an entire entry into memory; used only for the
// small container/package/nav/NCX documents, never for chapter content
// (which streams straight to the cache via ezip.ExtractToFile).
func extractAll(zr *ezip.Reader, index int) ([]byte, error) {
	var data []byte
	err := zr.ExtractStreaming(index, 0, func(chunk []byte) (bool, error) {
		data = append(data, chunk...)
		return false, nil
	})
	return data, err
}
