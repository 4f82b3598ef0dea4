package wordprovider

// ChapterSource names one chapter's converted stream plus its name
// (pkg/book uses the spine item's idref) and
// its contribution to the whole book's byte accounting, mirroring
// book.SpineItem's CumulativeOffset, re-derived here for percentage
// display.
type ChapterSource struct {
	Name             string
	Src              Source
	Size             int64
	CumulativeOffset int64
}

// Provider wraps multiple per-chapter Cursors behind the single-stream
// cursor contract, switching the active Cursor on SetChapter.
type Provider struct {
	chapters      []ChapterSource
	windowSize    int
	current       int
	cur           *Cursor
	totalBookSize int64
}

// NewProvider builds a chapter-aware Provider starting at chapter 0,
// position 0.
func NewProvider(chapters []ChapterSource, windowSize int) *Provider {
	p := &Provider{chapters: chapters, windowSize: windowSize}
	if len(chapters) > 0 {
		p.totalBookSize = chapters[len(chapters)-1].CumulativeOffset + chapters[len(chapters)-1].Size
		p.cur = OpenWithWindow(chapters[0].Src, windowSize)
	}
	return p
}

func (p *Provider) GetChapterCount() int { return len(p.chapters) }
func (p *Provider) GetCurrentChapter() int { return p.current }
func (p *Provider) GetChapterName() string { return p.chapters[p.current].Name }
func (p *Provider) TotalBookSize() int64 { return p.totalBookSize }

// SetChapter swaps the underlying stream and resets position to 0.
func (p *Provider) SetChapter(i int) {
	if i < 0 || i >= len(p.chapters) {
		return
	}
	p.current = i
	p.cur = OpenWithWindow(p.chapters[i].Src, p.windowSize)
}

// Cursor exposes the active chapter's Cursor for direct token/position
// operations; Provider itself only adds chapter switching and
// percentages.
func (p *Provider) Cursor() *Cursor { return p.cur }

// GetPercentage returns the whole-book read fraction for byte offset i
// within the current chapter. When chapter metadata isn't
// available, it falls back to i / file_size.
func (p *Provider) GetPercentage(i int64) float64 {
	if len(p.chapters) == 0 || p.totalBookSize == 0 {
		if p.cur == nil || p.cur.FileSize() == 0 {
			return 0
		}
		return float64(i) / float64(p.cur.FileSize())
	}
	ch := p.chapters[p.current]
	if p.current == len(p.chapters)-1 && i >= ch.Size {
		return 1.0
	}
	return float64(ch.CumulativeOffset+i) / float64(p.totalBookSize)
}

// GetChapterPercentage returns i / current_chapter_size. End-of-chapter
// logic should prefer AtChapterEnd/index>=chapter_size over this value,
// which is kept for display only.
func (p *Provider) GetChapterPercentage(i int64) float64 {
	ch := p.chapters[p.current]
	if ch.Size == 0 {
		return 1.0
	}
	return float64(i) / float64(ch.Size)
}

// AtChapterEnd prefers an exact byte-position comparison over the
// brittle percentage check, since a chapter ending in whitespace can
// round its percentage to 100% before every byte is consumed.
func (p *Provider) AtChapterEnd() bool {
	return p.cur == nil || p.cur.GetCurrentIndex() >= p.cur.FileSize()
}
