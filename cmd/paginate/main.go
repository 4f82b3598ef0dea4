package main

import (
	"fmt"
	"os"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"

	"github.com/inkleaf/pageflow/pkg/book"
	"github.com/inkleaf/pageflow/pkg/config"
	"github.com/inkleaf/pageflow/pkg/layout"
	"github.com/inkleaf/pageflow/pkg/measure"
	"github.com/inkleaf/pageflow/pkg/version"
)

func main() {
	log := logger.New()
	log.Info("starting paginate", logger.Data{"version": version.Version})

	var opts struct {
		CacheDir string `short:"c" long:"cache-dir" description:"Extraction cache root" default:"/tmp/pageflow-cache"`
		Page     int    `short:"p" long:"page" description:"Page number to dump, starting at 0" default:"0"`
		JSON     bool   `long:"json" description:"Dump the computed PageLayout as JSON instead of plain text"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}
	if len(args) != 1 {
		fmt.Println("go run ./cmd/paginate <path/to/file.epub>")
		os.Exit(1)
	}

	cfg := config.NewForTest()
	cfg.CacheRootDir = opts.CacheDir

	b, err := book.Open(args[0], cfg.CacheRootDir, cfg.CacheVersion, cfg.XMLWindowSize, log)
	if err != nil {
		log.Err(err).Fatal("book open error")
	}

	wp, err := b.WordProvider(cfg.WordWindowSize)
	if err != nil {
		log.Err(err).Fatal("word provider error")
	}

	m := measure.NewRuneWidthMeasurer(10)
	lc := layout.LayoutConfig{
		MarginTop: cfg.MarginTop,
		MarginBottom: cfg.MarginBottom,
		MarginLeft: cfg.MarginLeft,
		MarginRight: cfg.MarginRight,
		LineHeight: cfg.LineHeight,
		MinSpaceWidth: cfg.MinSpaceWidth,
		PageWidth: cfg.PageWidth,
		PageHeight: cfg.PageHeight,
		DefaultAlignment: 0,
		Language: b.Language,
	}
	engine := layout.New(wp.Cursor(), m, lc)

	var pg *layout.PageLayout
	pos := int64(0)
	for i := 0; i <= opts.Page; i++ {
		pg = engine.ComputePage(pos)
		if pg == nil {
			fmt.Printf("page %d is past the end of the book\n", i)
			os.Exit(1)
		}
		pos = pg.EndPosition
	}

	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", " ")
		if err := enc.Encode(pg); err != nil {
			log.Err(err).Fatal("json encode error")
		}
		return
	}

	fmt.Printf("Title: %s\nAuthor(s): %v\nChapters: %d\n\n", b.Metadata.Title, b.Metadata.Authors, wp.GetChapterCount())
	fmt.Printf("Page %d: start=%d end=%d lines=%d\n\n", opts.Page, pg.StartPosition, pg.EndPosition, len(pg.Lines))
	for _, line := range pg.Lines {
		words := make([]string, 0, len(line.Words))
		for _, w := range line.Words {
			words = append(words, w.Text)
		}
		fmt.Println(strings.Join(words, " "))
	}
}
