package book

import (
	"encoding/xml"
	"path/filepath"
	"strings"

	"github.com/inkleaf/pageflow/pkg/ezip"
)

// navHTML represents the EPUB 3 navigation document structure: the
// <nav epub:type="toc"> tree.
type navHTML struct {
	XMLName xml.Name `xml:"html"`
	Body    struct {
		Nav []struct {
			Type string `xml:"type,attr"`
			OL   *navOL `xml:"ol"`
		} `xml:"nav"`
	} `xml:"body"`
}

type navOL struct {
	Items []navLI `xml:"li"`
}

type navLI struct {
	A        *navLink `xml:"a"`
	Span     *navSpan `xml:"span"`
	Children *navOL   `xml:"ol"`
}

type navLink struct {
	Href string `xml:"href,attr"`
	Text string `xml:",chardata"`
}

type navSpan struct {
	Text string `xml:",chardata"`
}

// ncx represents the EPUB 2 NCX fallback TOC structure.
type ncx struct {
	XMLName xml.Name `xml:"ncx"`
	NavMap  struct {
		NavPoints []ncxNavPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type ncxNavPoint struct {
	NavLabel struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

// parseTOC prefers the EPUB3 nav document and falls back to NCX. TocItem
// hrefs inside the nav or NCX document are relative to that document's
// own location, which is not always basePath, so they are re-rooted to
// be archive-relative (matching spine hrefs) before returning.
func parseTOC(zr *ezip.Reader, pkg opfPackage, basePath string) ([]TocItem, error) {
	if href := findNavDocumentHref(pkg, basePath); href != "" {
		if idx, err := zr.Locate(href); err == nil {
			data, err := extractAll(zr, idx)
			if err == nil {
				items, perr := parseNavDocumentXML(data)
				if perr == nil && len(items) > 0 {
					rerootTOCHrefs(items, filepath.Dir(href))
					return items, nil
				}
			}
		}
	}

	if href := findNCXHref(pkg, basePath); href != "" {
		if idx, err := zr.Locate(href); err == nil {
			data, err := extractAll(zr, idx)
			if err == nil {
				items, perr := parseNCXXML(data)
				if perr == nil {
					rerootTOCHrefs(items, filepath.Dir(href))
					return items, nil
				}
			}
		}
	}

	return nil, nil
}

// rerootTOCHrefs joins each item's href (and its descendants') with dir,
// the directory of the document the href was parsed from, so every
// TocItem.Href is archive-relative like SpineItem.Href.
func rerootTOCHrefs(items []TocItem, dir string) {
	for i := range items {
		if items[i].Href != "" {
			items[i].Href = joinHref(dir, items[i].Href)
		}
		if len(items[i].Children) > 0 {
			rerootTOCHrefs(items[i].Children, dir)
		}
	}
}

func joinHref(dir, href string) string {
	if dir == "" || dir == "." {
		return href
	}
	return dir + "/" + href
}

func parseNavDocumentXML(data []byte) ([]TocItem, error) {
	var nav navHTML
	if err := xml.Unmarshal(data, &nav); err != nil {
		return nil, err
	}
	for _, n := range nav.Body.Nav {
		if n.Type == "toc" && n.OL != nil {
			return parseNavOL(n.OL), nil
		}
	}
	return nil, nil
}

func parseNavOL(ol *navOL) []TocItem {
	if ol == nil {
		return nil
	}
	items := make([]TocItem, 0, len(ol.Items))
	for _, li := range ol.Items {
		item := TocItem{}
		switch {
		case li.A != nil:
			item.Title = strings.TrimSpace(li.A.Text)
			item.Href, item.Anchor = splitHrefAnchor(li.A.Href)
		case li.Span != nil:
			item.Title = strings.TrimSpace(li.Span.Text)
		}
		if item.Title == "" {
			continue
		}
		if li.Children != nil {
			item.Children = parseNavOL(li.Children)
		}
		items = append(items, item)
	}
	return items
}

func parseNCXXML(data []byte) ([]TocItem, error) {
	var n ncx
	if err := xml.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return parseNCXNavPoints(n.NavMap.NavPoints), nil
}

func parseNCXNavPoints(navPoints []ncxNavPoint) []TocItem {
	items := make([]TocItem, 0, len(navPoints))
	for _, np := range navPoints {
		title := strings.TrimSpace(np.NavLabel.Text)
		if title == "" {
			continue
		}
		item := TocItem{Title: title}
		item.Href, item.Anchor = splitHrefAnchor(np.Content.Src)
		if len(np.Children) > 0 {
			item.Children = parseNCXNavPoints(np.Children)
		}
		items = append(items, item)
	}
	return items
}

// splitHrefAnchor splits "chapter3.xhtml#section1" into its href and
// optional fragment, for TocItem's Href and Anchor fields.
func splitHrefAnchor(href string) (string, string) {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		return href[:i], href[i+1:]
	}
	return href, ""
}

func findNavDocumentHref(pkg opfPackage, basePath string) string {
	for _, item := range pkg.Manifest.Item {
		if strings.Contains(item.Properties, "nav") {
			return basePath + item.Href
		}
	}
	return ""
}

func findNCXHref(pkg opfPackage, basePath string) string {
	ncxID := pkg.Spine.Toc
	if ncxID == "" {
		return ""
	}
	for _, item := range pkg.Manifest.Item {
		if item.ID == ncxID {
			return basePath + item.Href
		}
	}
	return ""
}
