package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/urfave/cli/v2"

	"github.com/inkleaf/pageflow/pkg/book"
	"github.com/inkleaf/pageflow/pkg/config"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	app := &cli.App{
		Name: "cachectl",
		Usage: "CLI to inspect and manage the EPUB extraction cache",
		Description: "CLI to inspect and manage the EPUB extraction cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name: "cache-dir",
				Usage: "extraction cache root",
				Value: cfg.CacheRootDir,
				Destination: &cfg.CacheRootDir,
			},
		},
		Commands: []*cli.Command{
			{
				Name: "list",
				Usage: "list every cached book directory and its size",
				Action: func(c *cli.Context) error {
					entries, err := os.ReadDir(cfg.CacheRootDir)
					if err != nil {
						return err
					}
					for _, entry := range entries {
						if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "epub_") {
							continue
						}
						dir := filepath.Join(cfg.CacheRootDir, entry.Name())
						size, err := dirSize(dir)
						if err != nil {
							return err
						}
						version := "unknown"
						if data, rerr := os.ReadFile(filepath.Join(dir, book.CacheMetaFilename)); rerr == nil {
							version = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(data)), "version="))
						}
						fmt.Printf("%-40s %10s version=%s\n", entry.Name(), humanize.Bytes(size), version)
					}
					return nil
				},
			},
			{
				Name: "inspect",
				Usage: "print the cache key, version, and member files of one cached book",
				ArgsUsage: "<cache-key>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("cachectl inspect <cache-key>", 1)
					}
					dir := filepath.Join(cfg.CacheRootDir, "epub_"+c.Args().First())
					if _, err := os.Stat(dir); err != nil {
						return cli.Exit(fmt.Sprintf("no cache directory for key %q", c.Args().First()), 1)
					}
					return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
						if err != nil {
							return err
						}
						if d.IsDir() {
							return nil
						}
						rel, _ := filepath.Rel(dir, path)
						info, err := d.Info()
						if err != nil {
							return err
						}
						fmt.Printf("%-50s %10s\n", rel, humanize.Bytes(uint64(info.Size())))
						return nil
					})
				},
			},
			{
				Name: "wipe",
				Usage: "delete one cached book directory, or every cached directory with --all",
				ArgsUsage: "<cache-key>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "wipe every cached book directory"},
				},
				Action: func(c *cli.Context) error {
					if c.Bool("all") {
						entries, err := os.ReadDir(cfg.CacheRootDir)
						if err != nil {
							return err
						}
						graceful := signals.Setup()
						wiped := 0
						for _, entry := range entries {
							select {
							case <-graceful:
								log.Info("shutdown signal received, stopping wipe --all early", logger.Data{"wiped": wiped, "total": len(entries)})
								fmt.Printf("stopped early: wiped %d of %d directories\n", wiped, len(entries))
								return nil
							default:
							}
							if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "epub_") {
								continue
							}
							if err := os.RemoveAll(filepath.Join(cfg.CacheRootDir, entry.Name())); err != nil {
								return err
							}
							wiped++
						}
						fmt.Println("wiped every cached book directory")
						return nil
					}
					if c.NArg() != 1 {
						return cli.Exit("cachectl wipe <cache-key> (or --all)", 1)
					}
					dir := filepath.Join(cfg.CacheRootDir, "epub_"+c.Args().First())
					if err := os.RemoveAll(dir); err != nil {
						return err
					}
					fmt.Printf("wiped %s\n", dir)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

// dirSize sums the size of every regular file under dir.
func dirSize(dir string) (uint64, error) {
	var total uint64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += uint64(info.Size())
		return nil
	})
	return total, err
}
