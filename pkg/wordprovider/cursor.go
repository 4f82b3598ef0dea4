// Package wordprovider implements a bidirectional, seekable word cursor
// over a converted chapter stream with a fixed-size sliding window,
// grounded on the windowed get_byte_at idiom pkg/xmlpull already
// establishes for XML parsing and on
// _examples/original_source/src/content/providers/EpubWordProvider.h's
// next/prev/peek/unget contract.
package wordprovider

const defaultWindowSize = 4 * 1024

// TokenKind enumerates the word-provider token grammar.
type TokenKind int

const (
	TokenSpace TokenKind = iota
	TokenNewline
	TokenTab
	TokenWord
)

// Token is one unit returned by GetNextWord/GetPrevWord.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int64
	End   int64
}

// Cursor is the word-provider cursor: a single converted stream with
// window-backed byte access and byte-offset position state.
type Cursor struct {
	src  Source
	size int64

	window      []byte
	windowStart int64

	index     int64
	prevIndex int64
}

// Open constructs a Cursor over src with the default window size.
func Open(src Source) *Cursor {
	return OpenWithWindow(src, defaultWindowSize)
}

// OpenWithWindow lets callers size the window explicitly (pkg/config
// wires this to WordWindowSize).
func OpenWithWindow(src Source, windowSize int) *Cursor {
	if windowSize <= 0 {
		windowSize = defaultWindowSize
	}
	return &Cursor{src: src, size: src.Size(), window: make([]byte, 0, windowSize)}
}

func (c *Cursor) byteAt(pos int64) (byte, bool) {
	if pos < 0 || pos >= c.size {
		return 0, false
	}
	if pos < c.windowStart || pos >= c.windowStart+int64(len(c.window)) {
		c.fillWindow(pos)
	}
	idx := pos - c.windowStart
	if idx < 0 || idx >= int64(len(c.window)) {
		return 0, false
	}
	return c.window[idx], true
}

func (c *Cursor) fillWindow(pos int64) {
	capacity := cap(c.window)
	if capacity == 0 {
		capacity = defaultWindowSize
	}
	half := int64(capacity / 2)
	start := pos - half
	if start < 0 {
		start = 0
	}
	if start+int64(capacity) > c.size {
		start = c.size - int64(capacity)
		if start < 0 {
			start = 0
		}
	}
	buf := make([]byte, capacity)
	n, _ := c.src.ReadAt(buf, start)
	c.window = buf[:n]
	c.windowStart = start
}

// SetPosition clamps i to [0, file_size] and records prev_index = i.
func (c *Cursor) SetPosition(i int64) {
	if i < 0 {
		i = 0
	}
	if i > c.size {
		i = c.size
	}
	c.index = i
	c.prevIndex = i
}

// GetCurrentIndex returns the cursor's current byte offset.
func (c *Cursor) GetCurrentIndex() int64 { return c.index }

// FileSize returns the size of the underlying stream.
func (c *Cursor) FileSize() int64 { return c.size }

// PeekChar returns the byte at index+offset, or 0 if out of range.
func (c *Cursor) PeekChar(offset int) byte {
	b, ok := c.byteAt(c.index + int64(offset))
	if !ok {
		return 0
	}
	return b
}

// ConsumeChars advances n non-'\r' characters; the word-split contract
// uses this to commit a mid-word hyphen split.
func (c *Cursor) ConsumeChars(n int) {
	for n > 0 && c.index < c.size {
		b, ok := c.byteAt(c.index)
		if !ok {
			break
		}
		c.index++
		if b != '\r' {
			n--
		}
	}
}

func isWordByte(b byte) bool {
	return b != ' ' && b != '\n' && b != '\t' && b != '\r' && b >= 0x20
}

// IsInsideWord reports whether both byte[index-1] and byte[index] are
// word characters.
func (c *Cursor) IsInsideWord() bool {
	prev, ok1 := c.byteAt(c.index - 1)
	cur, ok2 := c.byteAt(c.index)
	return ok1 && ok2 && isWordByte(prev) && isWordByte(cur)
}

// UngetWord restores index = prev_index.
func (c *Cursor) UngetWord() { c.index = c.prevIndex }

// Reset sets index to 0.
func (c *Cursor) Reset() { c.index, c.prevIndex = 0, 0 }

// HasNextWord reports whether any bytes remain forward of index: this
// index>=size check is preferred over a percentage-based end-of-chapter
// test, since a percentage can round to 100% before every byte is
// consumed.
func (c *Cursor) HasNextWord() bool {
	pos := c.index
	for pos < c.size {
		b, ok := c.byteAt(pos)
		if !ok {
			return false
		}
		if b != '\r' {
			return true
		}
		pos++
	}
	return false
}

// HasPrevWord reports whether any bytes remain before index.
func (c *Cursor) HasPrevWord() bool {
	pos := c.index - 1
	for pos >= 0 {
		b, ok := c.byteAt(pos)
		if !ok {
			return false
		}
		if b != '\r' {
			return true
		}
		pos--
	}
	return false
}

// GetNextWord reads the token starting at (or after, skipping '\r')
// index, advances index past it, and returns it. ok is false at EOF.
func (c *Cursor) GetNextWord() (Token, bool) {
	c.prevIndex = c.index
	pos := c.index
	for {
		b, ok := c.byteAt(pos)
		if !ok {
			c.index = pos
			return Token{}, false
		}
		if b == '\r' {
			pos++
			continue
		}
		break
	}
	start := pos
	first, _ := c.byteAt(pos)

	switch {
	case first == '\n':
		pos++
	case first == '\t':
		pos++
	case first == ' ':
		for {
			b, ok := c.byteAt(pos)
			if !ok || b != ' ' {
				break
			}
			pos++
		}
	default:
		for {
			b, ok := c.byteAt(pos)
			if !ok || isStopByte(b) {
				break
			}
			pos++
		}
	}

	text := c.sliceBetween(start, pos)
	c.index = pos
	return Token{Kind: kindOf(first), Text: text, Start: start, End: pos}, true
}

// GetPrevWord reads the token ending at (or before, skipping trailing
// '\r') index, in reverse, and moves index to its start.
func (c *Cursor) GetPrevWord() (Token, bool) {
	c.prevIndex = c.index
	pos := c.index
	for {
		if pos <= 0 {
			c.index = pos
			return Token{}, false
		}
		b, ok := c.byteAt(pos - 1)
		if !ok {
			c.index = pos
			return Token{}, false
		}
		if b == '\r' {
			pos--
			continue
		}
		break
	}
	end := pos
	last, _ := c.byteAt(pos - 1)

	var start int64
	switch {
	case last == '\n', last == '\t':
		start = pos - 1
	case last == ' ':
		start = pos - 1
		for start > 0 {
			b, ok := c.byteAt(start - 1)
			if !ok || b != ' ' {
				break
			}
			start--
		}
	default:
		start = pos - 1
		for start > 0 {
			b, ok := c.byteAt(start - 1)
			if !ok || isStopByte(b) {
				break
			}
			start--
		}
	}

	text := c.sliceBetween(start, end)
	c.index = start
	return Token{Kind: kindOf(last), Text: text, Start: start, End: end}, true
}

func isStopByte(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

func kindOf(b byte) TokenKind {
	switch b {
	case '\n':
		return TokenNewline
	case '\t':
		return TokenTab
	case ' ':
		return TokenSpace
	default:
		return TokenWord
	}
}

func (c *Cursor) sliceBetween(start, end int64) string {
	buf := make([]byte, 0, end-start)
	for i := start; i < end; i++ {
		b, ok := c.byteAt(i)
		if !ok || b == '\r' {
			continue
		}
		buf = append(buf, b)
	}
	return string(buf)
}
