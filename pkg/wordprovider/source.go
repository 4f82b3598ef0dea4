package wordprovider

import "os"

// Source is the byte-addressable backing store a Cursor reads through,
// mirroring pkg/xmlpull's Source shape but kept independent: every
// component is either uniquely owned by its parent or borrowed through an
// explicit interface, never back-referenced.
type Source interface {
	ReadAt(p []byte, off int64) (int, error)
	Size() int64
}

type fileSource struct {
	f    *os.File
	size int64
}

// OpenFile opens path for random-access reads without loading it into
// memory.
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileSource{f: f, size: fi.Size()}, nil
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) { return s.f.ReadAt(p, off) }
func (s *fileSource) Size() int64 { return s.size }

// Close releases the underlying file handle, if any.
func Close(s Source) error {
	if fs, ok := s.(*fileSource); ok {
		return fs.f.Close()
	}
	return nil
}

type memSource struct{ b []byte }

// NewMemSource wraps an in-memory byte slice as a Source, for tests and
// small fixtures.
func NewMemSource(b []byte) Source { return &memSource{b: b} }

func (s *memSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(s.b)) {
		return 0, nil
	}
	n := copy(p, s.b[off:])
	return n, nil
}

func (s *memSource) Size() int64 { return int64(len(s.b)) }
