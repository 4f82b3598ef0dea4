// Package ezip is the ZIP/DEFLATE reader of the pagination pipeline. It
// locates named entries in a ZIP archive and streams decompressed bytes
// to a caller-supplied sink with a bounded chunk size, grounded on
// archive/zip and compress/flate — the corpus has no third-party
// ZIP/DEFLATE library, so the stdlib pair is the idiomatic choice (see
// DESIGN.md).
package ezip

import (
	"archive/zip"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	pkgerrors "github.com/pkg/errors"

	"github.com/inkleaf/pageflow/pkg/errs"
)

// Method mirrors the two compression methods a Reader supports.
type Method uint16

const (
	MethodStored  Method = 0
	MethodDeflate Method = 8
)

// Entry is an immutable central-directory record.
type Entry struct {
	Name              string
	CompressedSize    uint64
	UncompressedSize  uint64
	LocalHeaderOffset uint64
	Method            Method
}

// Reader owns an open ZIP file for its lifetime: uniquely owned, no
// back-references to a parent.
type Reader struct {
	path    string
	f       *os.File
	zr      *zip.Reader
	entries []Entry
	byName  map[string]int
}

// Open scans the archive's central directory and returns a Reader holding
// every entry. It returns errs.NotAnArchive if the file does not look like
// a ZIP container and errs.Corrupt if the central directory cannot be
// parsed.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NotFound(path)
		}
		return nil, pkgerrors.WithStack(err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, pkgerrors.WithStack(err)
	}

	mtype, err := mimetype.DetectFile(path)
	if err == nil && mtype != nil && !isZipLike(mtype) {
		f.Close()
		return nil, errs.NotAnArchive(path)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		if err == zip.ErrFormat {
			return nil, errs.NotAnArchive(path)
		}
		return nil, errs.Corrupt(path, err.Error())
	}

	r := &Reader{
		path:   path,
		f:      f,
		zr:     zr,
		byName: make(map[string]int, len(zr.File)),
	}
	for i, file := range zr.File {
		method := Method(file.Method)
		if method != MethodStored && method != MethodDeflate {
			f.Close()
			return nil, errs.Unsupported(path, "zip compression method")
		}
		r.entries = append(r.entries, Entry{
			Name:              file.Name,
			CompressedSize:    file.CompressedSize64,
			UncompressedSize:  file.UncompressedSize64,
			LocalHeaderOffset: file.Offset,
			Method:            method,
		})
		r.byName[file.Name] = i
	}
	return r, nil
}

// isZipLike reports whether the sniffed mimetype is a ZIP-family format
// (EPUB containers are sniffed as application/epub+zip or application/zip
// depending on mimetype version/heuristics).
func isZipLike(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		switch m.String() {
		case "application/zip", "application/epub+zip":
			return true
		}
	}
	return false
}

// Close releases the underlying file handle. The Reader is unusable after
// Close.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Count returns the number of entries in the archive.
func (r *Reader) Count() int { return len(r.entries) }

// Info returns the entry at index, or errs.InvalidParam if out of range.
func (r *Reader) Info(index int) (Entry, error) {
	if index < 0 || index >= len(r.entries) {
		return Entry{}, errs.InvalidParam("index", "out of range")
	}
	return r.entries[index], nil
}

// Locate returns the index of the entry with an exact name match, or
// errs.NotFound.
func (r *Reader) Locate(name string) (int, error) {
	idx, ok := r.byName[name]
	if !ok {
		return -1, errs.NotFound(name)
	}
	return idx, nil
}

// Sink receives decompressed bytes during streaming extraction. Returning
// stop=true aborts the stream early without being treated as a failure.
type Sink func(chunk []byte) (stop bool, err error)

// ExtractStreaming decompresses entry index in chunkSize pieces, invoking
// sink for each piece. DEFLATE errors return errs.ExtractionFailed; the
// reader itself remains usable for other entries afterward.
func (r *Reader) ExtractStreaming(index int, chunkSize int, sink Sink) error {
	if index < 0 || index >= len(r.entries) {
		return errs.InvalidParam("index", "out of range")
	}
	if chunkSize <= 0 {
		chunkSize = 2 * 1024
	}

	rc, err := r.zr.File[index].Open()
	if err != nil {
		return errs.ExtractionFailed(r.entries[index].Name, err.Error())
	}
	defer rc.Close()

	buf := make([]byte, chunkSize)
	for {
		n, rerr := rc.Read(buf)
		if n > 0 {
			stop, serr := sink(buf[:n])
			if serr != nil {
				return serr
			}
			if stop {
				return nil
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return errs.ExtractionFailed(r.entries[index].Name, rerr.Error())
		}
	}
}

// StreamCtx is a handle returned by PullOpen for incremental, pull-style
// reads.
type StreamCtx struct {
	rc   io.ReadCloser
	name string
}

// PullOpen begins a pull-style stream over entry index.
func (r *Reader) PullOpen(index int) (*StreamCtx, error) {
	if index < 0 || index >= len(r.entries) {
		return nil, errs.InvalidParam("index", "out of range")
	}
	rc, err := r.zr.File[index].Open()
	if err != nil {
		return nil, errs.ExtractionFailed(r.entries[index].Name, err.Error())
	}
	return &StreamCtx{rc: rc, name: r.entries[index].Name}, nil
}

// PullRead fills dst and returns the number of bytes read; 0 with a nil
// error means EOF, matching pull_read(ctx, dst, max) contract.
func (ctx *StreamCtx) PullRead(dst []byte) (int, error) {
	n, err := ctx.rc.Read(dst)
	if err == io.EOF {
		return n, nil
	}
	if err != nil {
		return n, errs.ExtractionFailed(ctx.name, err.Error())
	}
	return n, nil
}

// PullClose releases the stream's resources.
func (ctx *StreamCtx) PullClose() error {
	return ctx.rc.Close()
}

// ExtractToFile is a convenience wrapper used by pkg/book to populate the
// extraction cache: it streams entry index straight to a file on disk,
// deleting the partial output if extraction fails.
func (r *Reader) ExtractToFile(index int, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return pkgerrors.WithStack(err)
	}

	extractErr := r.ExtractStreaming(index, 0, func(chunk []byte) (bool, error) {
		if _, werr := out.Write(chunk); werr != nil {
			return false, errs.ExtractionFailed(destPath, werr.Error())
		}
		return false, nil
	})

	closeErr := out.Close()
	if extractErr != nil {
		os.Remove(destPath)
		return extractErr
	}
	if closeErr != nil {
		os.Remove(destPath)
		return pkgerrors.WithStack(closeErr)
	}
	return nil
}
