package book

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/inkleaf/pageflow/pkg/convert"
	"github.com/inkleaf/pageflow/pkg/cssrules"
	"github.com/inkleaf/pageflow/pkg/ezip"
	"github.com/inkleaf/pageflow/pkg/xmlpull"
)

// ensureCache makes sure cacheDir holds every manifest member of the
// archive plus a converted .txt sibling for every (X)HTML document, and
// that epub_meta.txt names cacheVersion.
// Any version mismatch wipes the directory and rebuilds it from scratch.
func ensureCache(zr *ezip.Reader, pr *opfResult, cacheDir string, cacheVersion int, xmlWindowSize int, log logger.Logger) error {
	if cacheVersionMatches(cacheDir, cacheVersion) {
		return nil
	}

	log.Info("rebuilding extraction cache", logger.Data{"cache_dir": cacheDir, "cache_version": cacheVersion})

	if err := os.RemoveAll(cacheDir); err != nil {
		return pkgerrors.WithStack(err)
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return pkgerrors.WithStack(err)
	}

	for _, item := range pr.manifestItems {
		destPath := filepath.Join(cacheDir, item.href)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return pkgerrors.WithStack(err)
		}
		idx, err := zr.Locate(item.href)
		if err != nil {
			// A manifest entry that isn't actually packed in the zip is
			// tolerated the same way a malformed chapter is: skip it and
			// keep going rather than aborting the whole book.
			log.Warn("manifest item missing from archive", logger.Data{"href": item.href})
			continue
		}
		if err := zr.ExtractToFile(idx, destPath); err != nil {
			return err
		}
	}

	css := cssrules.NewStore()
	for _, cssPath := range pr.cssPaths {
		data, err := os.ReadFile(filepath.Join(cacheDir, cssPath))
		if err != nil {
			continue
		}
		css.Parse(string(data))
	}

	for _, item := range pr.manifestItems {
		if !isDocumentMediaType(item.mediaType) {
			continue
		}
		if err := convertChapter(css, filepath.Join(cacheDir, item.href), xmlWindowSize); err != nil {
			return err
		}
	}

	metaPath := filepath.Join(cacheDir, CacheMetaFilename)
	line := fmt.Sprintf("version=%d\n", cacheVersion)
	if err := os.WriteFile(metaPath, []byte(line), 0o644); err != nil {
		return pkgerrors.WithStack(err)
	}
	return nil
}

func cacheVersionMatches(cacheDir string, cacheVersion int) bool {
	data, err := os.ReadFile(filepath.Join(cacheDir, CacheMetaFilename))
	if err != nil {
		return false
	}
	line := strings.TrimSpace(string(data))
	const prefix = "version="
	if !strings.HasPrefix(line, prefix) {
		return false
	}
	v, err := strconv.Atoi(strings.TrimPrefix(line, prefix))
	return err == nil && v == cacheVersion
}

// convertChapter runs an extracted XHTML document through pkg/xmlpull and
// pkg/convert, writing its ".txt" sibling. A malformed chapter still
// produces whatever prefix converted cleanly: Convert stops early without
// reporting an error, so the chapter does not abort the whole book and
// nothing is logged for it. Errors opening the XHTML or creating the
// ".txt" file are returned. An existing non-empty converted file is
// reused rather than rebuilt.
func convertChapter(css *cssrules.Store, xhtmlPath string, xmlWindowSize int) error {
	if info, err := os.Stat(xhtmlPath + ".txt"); err == nil && info.Size() > 0 {
		return nil
	}

	src, closer, err := xmlpull.OpenFile(xhtmlPath)
	if err != nil {
		return pkgerrors.WithStack(err)
	}
	defer closer.Close()

	out, err := os.Create(xhtmlPath + ".txt")
	if err != nil {
		return pkgerrors.WithStack(err)
	}
	defer out.Close()

	parser := xmlpull.OpenWithWindow(src, xmlWindowSize)
	c := convert.New(css, out)
	// Convert never returns a fatal error itself (a malformed chapter
	// just yields a shorter converted file); nothing further to
	// propagate here.
	return c.Convert(parser)
}
