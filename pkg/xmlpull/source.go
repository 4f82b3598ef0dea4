package xmlpull

import (
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"
)

// Source is the byte-addressable backing store the parser's sliding window
// reads from: a file handle or a caller-supplied pull callback. Both a
// file and an in-memory buffer satisfy it; pkg/ezip.StreamCtx-backed
// sources are a thin adapter a host can add without touching the parser.
type Source interface {
	// ReadAt fills p starting at byte offset off, returning how many bytes
	// were actually available (may be less than len(p) near EOF).
	ReadAt(p []byte, off int64) (int, error)
	// Size returns the total byte length of the source.
	Size() int64
}

// fileSource wraps an *os.File opened for the parser's exclusive use; the
// caller closes the handle through the io.Closer OpenFile returns.
type fileSource struct {
	f    *os.File
	size int64
}

// OpenFile opens path and returns a Source backed by it.
func OpenFile(path string) (Source, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, pkgerrors.WithStack(err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, pkgerrors.WithStack(err)
	}
	return &fileSource{f: f, size: info.Size()}, f, nil
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	n, err := s.f.ReadAt(p, off)
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

func (s *fileSource) Size() int64 { return s.size }

// memSource backs the parser directly onto an in-memory byte slice; the
// tests use it.
type memSource struct {
	b []byte
}

// NewMemSource wraps b as a Source.
func NewMemSource(b []byte) Source {
	return &memSource{b: b}
}

func (s *memSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(s.b)) {
		return 0, nil
	}
	n := copy(p, s.b[off:])
	return n, nil
}

func (s *memSource) Size() int64 { return int64(len(s.b)) }
