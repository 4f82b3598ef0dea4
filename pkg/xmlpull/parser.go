// Package xmlpull implements the bidirectional XML pull parser of spec
// component B: forward/backward/seek traversal over a byte-addressable
// source through a bounded sliding window, grounded on the original's
// SimpleXmlParser (get_byte_at + 8 KiB window) since neither encoding/xml
// (forward-only, whole-document) nor golang.org/x/net/html (DOM-based) can
// satisfy the bidirectional, windowed, seekable contract
// requires (see DESIGN.md).
package xmlpull

import (
	"strings"
)

// NodeType enumerates the node kinds names.
type NodeType int

const (
	None NodeType = iota
	Element
	EndElement
	Text
	Comment
	CDATA
	ProcessingInstruction
	EndOfFile
)

const defaultWindowSize = 8 * 1024

// Parser is a single-owner cursor over a Source: uniquely owned, no
// back-references. It is not safe for concurrent use.
type Parser struct {
	src Source

	window      []byte
	windowStart int64

	// Current node state.
	nodeType  NodeType
	name      string
	empty     bool
	attrs     map[string]string
	start     int64 // position of '<' (or text run start)
	end       int64 // position just past the node (next read position)
	textStart int64 // for Text nodes, start of the raw text run
	textEnd   int64 // for Text nodes, end (exclusive) of the raw text run

	// Text-node character cursor, byte offset within [textStart, textEnd).
	textCursor int64

	pos int64 // next position a forward read() will consume from
}

// Open creates a Parser over src with the default ~8 KiB window.
func Open(src Source) *Parser {
	return &Parser{src: src, window: make([]byte, 0, defaultWindowSize)}
}

// OpenWithWindow lets callers size the window explicitly (pkg/config wires
// this to XMLWindowSize).
func OpenWithWindow(src Source, windowSize int) *Parser {
	if windowSize <= 0 {
		windowSize = defaultWindowSize
	}
	return &Parser{src: src, window: make([]byte, 0, windowSize)}
}

// getByteAt returns the byte at pos, refilling the window centered on pos
// on a miss, and ok=false past EOF.
func (p *Parser) getByteAt(pos int64) (byte, bool) {
	if pos < 0 || pos >= p.src.Size() {
		return 0, false
	}
	if pos < p.windowStart || pos >= p.windowStart+int64(len(p.window)) {
		p.fillWindow(pos)
	}
	idx := pos - p.windowStart
	if idx < 0 || idx >= int64(len(p.window)) {
		return 0, false
	}
	return p.window[idx], true
}

func (p *Parser) fillWindow(pos int64) {
	capacity := cap(p.window)
	if capacity == 0 {
		capacity = defaultWindowSize
	}
	half := int64(capacity / 2)
	start := pos - half
	if start < 0 {
		start = 0
	}
	if start+int64(capacity) > p.src.Size() {
		start = p.src.Size() - int64(capacity)
		if start < 0 {
			start = 0
		}
	}
	buf := make([]byte, capacity)
	n, _ := p.src.ReadAt(buf, start)
	p.window = buf[:n]
	p.windowStart = start
}

// FilePosition returns a seekable position: for the current text node it
// is the intra-text cursor; for element-like nodes it is the '<' position
//.
func (p *Parser) FilePosition() int64 {
	if p.nodeType == Text {
		return p.textCursor
	}
	return p.start
}

// SeekToFilePosition sets the read position to pos, clamped to the
// source. A following Read parses forward from pos and a following
// ReadBackward parses backward from it; when pos is a node boundary (a
// '<', or the byte after a '>'), that reproduces the adjacent node. A pos
// inside a node is not moved to that node's start or end.
func (p *Parser) SeekToFilePosition(pos int64) {
	if pos < 0 {
		pos = 0
	}
	if pos > p.src.Size() {
		pos = p.src.Size()
	}
	p.pos = pos
	p.nodeType = None
}

func (p *Parser) NodeType() NodeType { return p.nodeType }
func (p *Parser) Name() string { return p.name }
func (p *Parser) IsEmptyElement() bool { return p.empty }

// Attribute looks up name case-insensitively.
func (p *Parser) Attribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for k, v := range p.attrs {
		if strings.ToLower(k) == name {
			return v, true
		}
	}
	return "", false
}

// voidTags never have end tags and are reported as empty elements even
// without a trailing "/>" — XHTML serializers sometimes omit it for br/hr.
var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "meta": true, "link": true,
	"input": true, "area": true, "base": true, "col": true, "embed": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Read advances to the next node, returning false at EOF. Whitespace-only
// Text nodes are skipped automatically.
func (p *Parser) Read() bool {
	for {
		if p.pos >= p.src.Size() {
			p.nodeType = EndOfFile
			return false
		}
		b, ok := p.getByteAt(p.pos)
		if !ok {
			p.nodeType = EndOfFile
			return false
		}
		if b == '<' {
			if p.readTagForward() {
				return true
			}
			continue
		}
		if p.readTextForward() {
			return true
		}
		// whitespace-only text node: loop skips it automatically
	}
}

// readTagForward parses the tag starting at p.pos (which is '<'). It
// returns true if it produced a reportable node (Element/EndElement/
// Comment/CDATA/ProcessingInstruction), false if the tag was malformed and
// should be skipped (spec: "malformed tags skip to the next '>'").
func (p *Parser) readTagForward() bool {
	start := p.pos
	gt := p.findForward('>', start+1)
	if gt < 0 {
		// Unterminated tag: consume to EOF without crashing.
		p.pos = p.src.Size()
		p.nodeType = EndOfFile
		return false
	}
	raw := p.sliceBetween(start, gt+1)

	switch {
	case strings.HasPrefix(raw, "<!--"):
		end := strings.Index(raw, "-->")
		for end < 0 && p.findForward('>', gt+1) >= 0 {
			// A '>' inside the comment body does not close it.
			gt = p.findForward('>', gt+1)
			raw = p.sliceBetween(start, gt+1)
			end = strings.Index(raw, "-->")
		}
		if end < 0 {
			// Unterminated comment: read to EOF.
			gt2 := p.src.Size() - 1
			raw = p.sliceBetween(start, p.src.Size())
			p.pos = p.src.Size()
			p.nodeType = Comment
			p.name = ""
			p.start, p.end = start, gt2+1
			return true
		}
		gtReal := start + int64(len(raw[:end+3]))
		p.pos = gtReal
		p.nodeType = Comment
		p.start, p.end = start, gtReal
		return true
	case strings.HasPrefix(raw, "<![CDATA["):
		end := strings.Index(raw, "]]>")
		for end < 0 && p.findForward('>', gt+1) >= 0 {
			// A '>' inside the CDATA body does not close it.
			gt = p.findForward('>', gt+1)
			raw = p.sliceBetween(start, gt+1)
			end = strings.Index(raw, "]]>")
		}
		if end < 0 {
			p.pos = p.src.Size()
			p.nodeType = CDATA
			p.start, p.end = start, p.src.Size()
			return true
		}
		gtReal := start + int64(end) + 3
		p.pos = gtReal
		p.nodeType = CDATA
		p.start, p.end = start, gtReal
		return true
	case strings.HasPrefix(raw, "<?"):
		p.pos = gt + 1
		p.nodeType = ProcessingInstruction
		p.start, p.end = start, gt+1
		return true
	case strings.HasPrefix(raw, "<!"):
		// DTD or other declaration: unsupported, skip silently.
		p.pos = gt + 1
		return false
	case strings.HasPrefix(raw, "</"):
		name := strings.TrimSpace(raw[2 : len(raw)-1])
		p.pos = gt + 1
		p.nodeType = EndElement
		p.name = name
		p.empty = false
		p.attrs = nil
		p.start, p.end = start, gt+1
		return true
	default:
		inner := raw[1 : len(raw)-1]
		empty := strings.HasSuffix(strings.TrimSpace(inner), "/")
		if empty {
			inner = strings.TrimSuffix(strings.TrimSpace(inner), "/")
		}
		name, attrs, malformed := parseTagContents(inner)
		if name == "" {
			p.pos = gt + 1
			return false
		}
		if voidTags[strings.ToLower(name)] {
			empty = true
		}
		p.pos = gt + 1
		p.nodeType = Element
		p.name = name
		p.empty = empty
		p.attrs = attrs
		p.start, p.end = start, gt+1
		_ = malformed
		return true
	}
}

// readTextForward reads the run of bytes up to the next '<' (or EOF) as a
// Text node, positioning the text cursor at its start. Returns false if the
// run is whitespace-only (caller skips it per ).
func (p *Parser) readTextForward() bool {
	start := p.pos
	lt := p.findForward('<', start)
	end := lt
	if lt < 0 {
		end = p.src.Size()
	}
	p.pos = end
	if isWhitespaceOnlyRange(p, start, end) {
		return false
	}
	p.nodeType = Text
	p.name = ""
	p.textStart, p.textEnd = start, end
	p.textCursor = start
	p.start, p.end = start, end
	return true
}

// ReadBackward is the symmetric backward move.
func (p *Parser) ReadBackward() bool {
	for {
		if p.pos <= 0 {
			p.nodeType = None
			return false
		}
		prevByte, ok := p.getByteAt(p.pos - 1)
		if !ok {
			p.nodeType = None
			return false
		}
		if prevByte == '>' {
			if p.readTagBackward() {
				return true
			}
			continue
		}
		if p.readTextBackward() {
			return true
		}
	}
}

func (p *Parser) readTagBackward() bool {
	end := p.pos // position just past '>'
	lt := p.findBackward('<', end-2)
	if lt < 0 {
		// No opening '<' found before this '>': treat as stray byte, skip it.
		p.pos = end - 1
		return false
	}
	raw := p.sliceBetween(lt, end)
	switch {
	case strings.HasPrefix(raw, "<!--"):
		p.pos = lt
		p.nodeType = Comment
		p.start, p.end = lt, end
		return true
	case strings.HasPrefix(raw, "<![CDATA["):
		p.pos = lt
		p.nodeType = CDATA
		p.start, p.end = lt, end
		return true
	case strings.HasPrefix(raw, "<?"):
		p.pos = lt
		p.nodeType = ProcessingInstruction
		p.start, p.end = lt, end
		return true
	case strings.HasPrefix(raw, "<!"):
		p.pos = lt
		return false
	case strings.HasPrefix(raw, "</"):
		name := strings.TrimSpace(raw[2 : len(raw)-1])
		p.pos = lt
		p.nodeType = EndElement
		p.name = name
		p.empty = false
		p.attrs = nil
		p.start, p.end = lt, end
		return true
	default:
		inner := raw[1 : len(raw)-1]
		empty := strings.HasSuffix(strings.TrimSpace(inner), "/")
		if empty {
			inner = strings.TrimSuffix(strings.TrimSpace(inner), "/")
		}
		name, attrs, _ := parseTagContents(inner)
		if name == "" {
			p.pos = lt
			return false
		}
		if voidTags[strings.ToLower(name)] {
			empty = true
		}
		p.pos = lt
		p.nodeType = Element
		p.name = name
		p.empty = empty
		p.attrs = attrs
		p.start, p.end = lt, end
		return true
	}
}

func (p *Parser) readTextBackward() bool {
	end := p.pos
	gt := p.findBackward('>', end-1)
	start := gt + 1
	if gt < 0 {
		start = 0
	}
	p.pos = start
	if isWhitespaceOnlyRange(p, start, end) {
		return false
	}
	p.nodeType = Text
	p.name = ""
	p.textStart, p.textEnd = start, end
	p.textCursor = end
	p.start, p.end = start, end
	return true
}

func isWhitespaceOnlyRange(p *Parser, start, end int64) bool {
	for i := start; i < end; i++ {
		b, ok := p.getByteAt(i)
		if !ok {
			return true
		}
		if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
			return false
		}
	}
	return true
}

// findForward returns the position of the first occurrence of target at
// or after from, or -1.
func (p *Parser) findForward(target byte, from int64) int64 {
	size := p.src.Size()
	for i := from; i < size; i++ {
		b, ok := p.getByteAt(i)
		if !ok {
			return -1
		}
		if b == target {
			return i
		}
	}
	return -1
}

// findBackward returns the position of the last occurrence of target at or
// before from, or -1.
func (p *Parser) findBackward(target byte, from int64) int64 {
	for i := from; i >= 0; i-- {
		b, ok := p.getByteAt(i)
		if !ok {
			return -1
		}
		if b == target {
			return i
		}
	}
	return -1
}

func (p *Parser) sliceBetween(start, end int64) string {
	buf := make([]byte, end-start)
	for i := start; i < end; i++ {
		b, _ := p.getByteAt(i)
		buf[i-start] = b
	}
	return string(buf)
}

// parseTagContents splits `tagname attr1="v1" attr2='v2'` into a name and
// an attribute map. Parsing stops at the first malformed attribute but
// does not invalidate the tag overall.
func parseTagContents(inner string) (name string, attrs map[string]string, malformed bool) {
	inner = strings.TrimSpace(inner)
	i := 0
	for i < len(inner) && !isSpaceByte(inner[i]) {
		i++
	}
	name = inner[:i]
	if name == "" {
		return "", nil, true
	}
	attrs = map[string]string{}
	rest := inner[i:]
	for {
		rest = strings.TrimLeft(rest, " \t\r\n")
		if rest == "" {
			break
		}
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			break
		}
		attrName := strings.TrimSpace(rest[:eq])
		if attrName == "" || strings.ContainsAny(attrName, "\"'<>") {
			malformed = true
			break
		}
		rest = rest[eq+1:]
		rest = strings.TrimLeft(rest, " \t\r\n")
		if rest == "" {
			malformed = true
			break
		}
		quote := rest[0]
		if quote != '"' && quote != '\'' {
			malformed = true
			break
		}
		end := strings.IndexByte(rest[1:], quote)
		if end < 0 {
			malformed = true
			break
		}
		value := rest[1 : 1+end]
		attrs[attrName] = value
		rest = rest[1+end+1:]
	}
	return name, attrs, malformed
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// --- Text-node character cursor ---

// HasMoreTextChars reports whether forward text-char reads remain.
func (p *Parser) HasMoreTextChars() bool {
	return p.nodeType == Text && p.textCursor < p.textEnd
}

// HasMoreTextCharsBackward reports whether backward text-char reads remain.
func (p *Parser) HasMoreTextCharsBackward() bool {
	return p.nodeType == Text && p.textCursor > p.textStart
}

// PeekTextChar returns the next forward byte without consuming it.
func (p *Parser) PeekTextChar() (byte, bool) {
	if !p.HasMoreTextChars() {
		return 0, false
	}
	return p.getByteAt(p.textCursor)
}

// PeekTextCharPrev returns the next backward byte without consuming it.
func (p *Parser) PeekTextCharPrev() (byte, bool) {
	if !p.HasMoreTextCharsBackward() {
		return 0, false
	}
	return p.getByteAt(p.textCursor - 1)
}

// ReadTextCharForward consumes and returns the next forward byte.
func (p *Parser) ReadTextCharForward() (byte, bool) {
	b, ok := p.PeekTextChar()
	if ok {
		p.textCursor++
	}
	return b, ok
}

// ReadTextCharBackward consumes and returns the next backward byte.
func (p *Parser) ReadTextCharBackward() (byte, bool) {
	b, ok := p.PeekTextCharPrev()
	if ok {
		p.textCursor--
	}
	return b, ok
}

// TextRange returns the [start, end) byte range of the current Text node.
func (p *Parser) TextRange() (int64, int64) {
	return p.textStart, p.textEnd
}

// TextContent reads the entire current Text node as a string, independent
// of the character cursor.
func (p *Parser) TextContent() string {
	if p.nodeType != Text {
		return ""
	}
	return p.sliceBetween(p.textStart, p.textEnd)
}
