// Package layout implements forward pagination, a PageLayout builder,
// and backward pagination via the 1.25x overshoot algorithm, grounded on
// _examples/original_source/src/content/layout/LayoutStrategy.cpp.
package layout

import (
	"strings"

	"github.com/inkleaf/pageflow/pkg/cssrules"
	"github.com/inkleaf/pageflow/pkg/hyphenate"
	"github.com/inkleaf/pageflow/pkg/linebreak"
	"github.com/inkleaf/pageflow/pkg/measure"
	"github.com/inkleaf/pageflow/pkg/wordprovider"
)

const esc = 0x1B

// overshootFactor is the 1.25x over-read the backward pagination
// algorithm applies so the subsequent forward replay lands on the
// correct page boundary regardless of paragraph length.
const overshootFactor = 1.25

// LayoutConfig mirrors the page geometry and rendering defaults an
// Engine needs; pkg/config.Config supplies these from the ambient
// configuration layer.
type LayoutConfig struct {
	MarginTop, MarginBottom, MarginLeft, MarginRight int
	LineHeight                                       int
	MinSpaceWidth                                    int
	PageWidth, PageHeight                            int
	DefaultAlignment                                 cssrules.Align
	Language                                         hyphenate.Language
}

func (c LayoutConfig) maxWidth() int { return c.PageWidth - c.MarginLeft - c.MarginRight }

func (c LayoutConfig) maxLines() int {
	avail := c.PageHeight - c.MarginTop - c.MarginBottom
	if c.LineHeight <= 0 {
		return 0
	}
	n := avail / c.LineHeight
	if avail%c.LineHeight != 0 {
		n++
	}
	return n
}

// WordBox is one rendered word within a Line.
type WordBox struct {
	Text     string
	Width    int
	XOffset  int
	WasSplit bool
}

// Line is one rendered line within a PageLayout.
type Line struct {
	Words      []WordBox
	Alignment  cssrules.Align
	JustifyGap int
}

// PageLayout is one computed page: its rendered lines, the stream
// positions it spans, and each line's start position for backward
// pagination.
type PageLayout struct {
	Lines              []Line
	StartPosition      int64
	EndPosition        int64
	LineStartPositions []int64
}

// Engine fills pages from a word provider cursor, borrowing (never
// owning) the cursor and the measurement function for the lifetime of
// the Engine.
type Engine struct {
	cursor  *wordprovider.Cursor
	measure measure.Measurer
	cfg     LayoutConfig
}

// New returns an Engine over cursor, measure, and cfg.
func New(cursor *wordprovider.Cursor, m measure.Measurer, cfg LayoutConfig) *Engine {
	return &Engine{cursor: cursor, measure: m, cfg: cfg}
}

func (e *Engine) spaceWidth() int {
	w := e.measure.Measure(" ")
	if w < e.cfg.MinSpaceWidth {
		return e.cfg.MinSpaceWidth
	}
	return w
}

// rawWord is one token pulled from the provider with any embedded style
// tokens stripped out and recorded separately; the word-provider grammar
// does not special-case ESC bytes, so the layout engine is where style
// tokens are interpreted.
type rawWord struct {
	text       string
	start, end int64
	isNewline  bool
	isSpace    bool
	align      cssrules.Align
	alignSet   bool
}

func stripStyleTokens(raw string) (text string, align cssrules.Align, alignSet bool) {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == esc && i+1 < len(raw) {
			switch raw[i+1] {
			case 'L':
				align, alignSet = cssrules.AlignLeft, true
			case 'R':
				align, alignSet = cssrules.AlignRight, true
			case 'C':
				align, alignSet = cssrules.AlignCenter, true
			case 'J':
				align, alignSet = cssrules.AlignJustify, true
			}
			i++ // skip the command byte; B/I/X/l/r/c/j/h/H are rendering-only
			continue
		}
		b.WriteByte(raw[i])
	}
	return b.String(), align, alignSet
}

func (e *Engine) nextRawWord() (rawWord, bool) {
	for {
		tok, ok := e.cursor.GetNextWord()
		if !ok {
			return rawWord{}, false
		}
		switch tok.Kind {
		case wordprovider.TokenNewline:
			return rawWord{isNewline: true, start: tok.Start, end: tok.End}, true
		case wordprovider.TokenSpace, wordprovider.TokenTab:
			return rawWord{isSpace: true, start: tok.Start, end: tok.End}, true
		default:
			text, align, alignSet := stripStyleTokens(tok.Text)
			if text == "" {
				continue // pure style-token run, e.g. a lone bold-open token
			}
			return rawWord{text: text, start: tok.Start, end: tok.End, align: align, alignSet: alignSet}, true
		}
	}
}

// paraWord is one word (or hyphenation fragment) within a collected
// paragraph, carrying the absolute stream position its source bytes
// occupy so a page can be re-anchored exactly at any line boundary.
type paraWord struct {
	linebreak.Word
	start, end int64
	wasSplit   bool
}

type paragraph struct {
	words        []paraWord
	align        cssrules.Align
	alignSet     bool
	endOfChapter bool
}

// collectParagraph pulls raw tokens up to the next newline (or provider
// end), pre-splitting any word wider than maxWidth via hyphenation so
// every item handed to linebreak.Compute already fits on some line.
func (e *Engine) collectParagraph(maxWidth int) paragraph {
	var para paragraph
	for {
		w, ok := e.nextRawWord()
		if !ok {
			para.endOfChapter = true
			return para
		}
		if w.isNewline {
			return para
		}
		if w.isSpace {
			continue
		}
		if w.alignSet && !para.alignSet {
			para.align, para.alignSet = w.align, true
		}

		width := e.measure.Measure(w.text)
		if width <= maxWidth {
			para.words = append(para.words, paraWord{linebreak.Word{Text: w.text, Width: width}, w.start, w.end, false})
			continue
		}
		para.words = append(para.words, e.splitOversizedWord(w.text, w.start, w.end, maxWidth)...)
	}
}

// splitOversizedWord repeatedly applies the word-split contract to a
// word wider than maxWidth, producing a sequence of fragments that each
// fit (the final fragment may still be oversized if no legal hyphen
// position exists).
func (e *Engine) splitOversizedWord(text string, start, end int64, maxWidth int) []paraWord {
	var out []paraWord
	remaining := text
	pos := start

	for e.measure.Measure(remaining) > maxWidth {
		_, consumed, fragment, ok := e.bestSplit(remaining, maxWidth)
		if !ok {
			break
		}
		fragEnd := pos + int64(consumed)
		out = append(out, paraWord{linebreak.Word{Text: fragment, Width: e.measure.Measure(fragment)}, pos, fragEnd, true})
		remaining = remaining[consumed:]
		pos = fragEnd
	}
	out = append(out, paraWord{linebreak.Word{Text: remaining, Width: e.measure.Measure(remaining)}, pos, end, false})
	return out
}

// bestSplit picks the rightmost legal hyphen position in word whose left
// fragment fits within maxWidth. Positive hyphenate positions are
// existing '-' bytes (kept in the fragment); negative positions are
// algorithmic (a '-' is synthesized for display).
func (e *Engine) bestSplit(word string, maxWidth int) (bytePos int, consumed int, fragment string, ok bool) {
	positions := hyphenate.FindPositions(word, e.cfg.Language, 0, 0)
	best := -1
	for _, p := range positions {
		var bp, cons int
		var frag string
		if p >= 0 {
			bp = p
			if bp <= 0 || bp >= len(word) {
				continue
			}
			frag = word[:bp+1]
			cons = bp + 1
		} else {
			bp = -(p + 1)
			if bp <= 0 || bp >= len(word) {
				continue
			}
			frag = word[:bp] + "-"
			cons = bp
		}
		if e.measure.Measure(frag) <= maxWidth && bp > best {
			best, bytePos, consumed, fragment, ok = bp, bp, cons, frag, true
		}
	}
	return bytePos, consumed, fragment, ok
}

// ComputePage runs forward pagination starting at startPos: it collects
// whole paragraphs, breaks each with linebreak.Compute, and renders
// lines until max_lines is reached or the provider is exhausted.
func (e *Engine) ComputePage(startPos int64) *PageLayout {
	e.cursor.SetPosition(startPos)
	maxWidth := e.cfg.maxWidth()
	maxLines := e.cfg.maxLines()
	space := e.spaceWidth()

	page := &PageLayout{StartPosition: startPos, EndPosition: startPos}
	rendered := 0

	for rendered < maxLines {
		beforeParaPos := e.cursor.GetCurrentIndex()
		para := e.collectParagraph(maxWidth)
		if len(para.words) == 0 {
			if para.endOfChapter {
				break
			}
			// blank paragraph (just a newline): counts as an empty line.
			page.Lines = append(page.Lines, Line{Alignment: e.effectiveAlign(para)})
			page.LineStartPositions = append(page.LineStartPositions, beforeParaPos)
			page.EndPosition = e.cursor.GetCurrentIndex()
			rendered++
			continue
		}

		lbWords := make([]linebreak.Word, len(para.words))
		for i, pw := range para.words {
			lbWords[i] = pw.Word
		}
		breaks := linebreak.Compute(lbWords, maxWidth, space)

		for bi, brk := range breaks {
			if rendered >= maxLines {
				page.EndPosition = para.words[brk.Start].start
				e.cursor.SetPosition(page.EndPosition)
				return page
			}
			isLast := bi == len(breaks)-1
			line := e.renderLine(para, brk, maxWidth, space, isLast)
			page.Lines = append(page.Lines, line)
			page.LineStartPositions = append(page.LineStartPositions, para.words[brk.Start].start)
			page.EndPosition = para.words[brk.End-1].end
			rendered++
		}

		if para.endOfChapter {
			break
		}
	}

	return page
}

func (e *Engine) effectiveAlign(para paragraph) cssrules.Align {
	if para.alignSet {
		return para.align
	}
	if e.cfg.DefaultAlignment != cssrules.AlignNone {
		return e.cfg.DefaultAlignment
	}
	return cssrules.AlignLeft
}

// renderLine implements rendering policy: the last line of a paragraph
// or a single-word line is aligned per config (justify treated as
// left); other lines under justify distribute extra width across gaps
// via linebreak.GapWidths.
func (e *Engine) renderLine(para paragraph, brk linebreak.Break, maxWidth, spaceWidth int, isLastLine bool) Line {
	words := para.words[brk.Start:brk.End]
	align := e.effectiveAlign(para)

	treatAsLeft := isLastLine || len(words) == 1
	if treatAsLeft && align == cssrules.AlignJustify {
		align = cssrules.AlignLeft
	}

	wordsWidth := 0
	for _, w := range words {
		wordsWidth += w.Width
	}
	wordsWidth += (len(words) - 1) * spaceWidth

	var gaps []int
	if align == cssrules.AlignJustify && len(words) > 1 {
		gaps = linebreak.GapWidths(maxWidth, wordsWidth, spaceWidth, len(words)-1)
	}

	line := Line{Alignment: align}
	x := 0
	switch align {
	case cssrules.AlignRight:
		x = maxWidth - wordsWidth
	case cssrules.AlignCenter:
		x = (maxWidth - wordsWidth) / 2
	}
	if x < 0 {
		x = 0
	}

	for i, w := range words {
		line.Words = append(line.Words, WordBox{Text: w.Text, Width: w.Width, XOffset: x, WasSplit: w.wasSplit})
		x += w.Width
		if i < len(words)-1 {
			if gaps != nil {
				x += gaps[i]
				line.JustifyGap = gaps[i]
			} else {
				x += spaceWidth
			}
		}
	}
	return line
}

// GetPreviousPageStart implements backward pagination: walk backward
// past at least 1.25*max_lines paragraph breaks (or to the stream
// start), then replay forward from that anchor recording line starts
// until the cumulative end reaches currentStart, returning the start
// exactly max_lines lines before the line that starts at currentStart
// (the earliest recorded start when fewer lines precede it).
func (e *Engine) GetPreviousPageStart(currentStart int64) int64 {
	maxLines := e.cfg.maxLines()
	anchor := e.walkBackwardPastOvershoot(currentStart, maxLines)

	starts := e.replayForwardLineStarts(anchor, currentStart)
	if len(starts) == 0 {
		return anchor
	}
	k := len(starts)
	for i, s := range starts {
		if s >= currentStart {
			k = i
			break
		}
	}
	idx := k - maxLines
	if idx < 0 {
		idx = 0
	}
	return starts[idx]
}

// walkBackwardPastOvershoot walks backward from currentStart one word at
// a time, counting paragraph breaks ('\n' tokens), and returns the
// position of the break at which that count reaches 1.25*maxLines, or 0
// when the stream start comes first. Rendered lines are not counted;
// every paragraph occupies at least one line, so the anchor lies at
// least that many lines back.
func (e *Engine) walkBackwardPastOvershoot(currentStart int64, maxLines int) int64 {
	threshold := int(float64(maxLines) * overshootFactor)
	if threshold < 1 {
		threshold = 1
	}

	e.cursor.SetPosition(currentStart)
	lines := 0
	sawParagraphBreak := false

	for {
		pos := e.cursor.GetCurrentIndex()
		if pos <= 0 {
			return 0
		}
		tok, ok := e.cursor.GetPrevWord()
		if !ok {
			return 0
		}
		if tok.Kind == wordprovider.TokenNewline {
			lines++
			if lines >= threshold {
				sawParagraphBreak = true
			}
		}
		if sawParagraphBreak && lines >= threshold {
			return e.cursor.GetCurrentIndex()
		}
	}
}

// replayForwardLineStarts runs ComputePage-style forward line collection
// from anchor, recording each line's start position, until the
// cumulative end position reaches or passes currentStart.
func (e *Engine) replayForwardLineStarts(anchor, currentStart int64) []int64 {
	e.cursor.SetPosition(anchor)
	maxWidth := e.cfg.maxWidth()
	space := e.spaceWidth()

	var starts []int64
	for e.cursor.GetCurrentIndex() < currentStart {
		beforeParaPos := e.cursor.GetCurrentIndex()
		para := e.collectParagraph(maxWidth)
		if len(para.words) == 0 {
			if para.endOfChapter {
				break
			}
			starts = append(starts, beforeParaPos)
			if e.cursor.GetCurrentIndex() >= currentStart {
				break
			}
			continue
		}

		lbWords := make([]linebreak.Word, len(para.words))
		for i, pw := range para.words {
			lbWords[i] = pw.Word
		}
		breaks := linebreak.Compute(lbWords, maxWidth, space)
		for _, brk := range breaks {
			starts = append(starts, para.words[brk.Start].start)
			if para.words[brk.End-1].end >= currentStart {
				return starts
			}
		}
		if para.endOfChapter {
			break
		}
	}
	return starts
}
