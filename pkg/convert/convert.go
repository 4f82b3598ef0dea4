// Package convert implements the XHTML-to-styled-text converter. It
// drives pkg/xmlpull over a chapter, consults pkg/cssrules for style, and
// emits a converted byte stream of UTF-8 text plus ESC-prefixed style
// tokens, grounded on the deferred inline-style state machine documented
// in
// _examples/original_source/src/content/providers/EpubWordProvider.h
// (currentInlineCombined_ / writtenInlineCombined_ /
// ensureInlineStyleEmitted) and on pkg/htmlutil's entity-decoding idiom.
package convert

import (
	"io"
	"strings"

	"github.com/inkleaf/pageflow/pkg/cssrules"
	"github.com/inkleaf/pageflow/pkg/htmlutil"
	"github.com/inkleaf/pageflow/pkg/xmlpull"
)

const esc = 0x1B

// Style command bytes.
const (
	cmdAlignLeftOpen     = 'L'
	cmdAlignLeftClose    = 'l'
	cmdAlignRightOpen    = 'R'
	cmdAlignRightClose   = 'r'
	cmdAlignCenterOpen   = 'C'
	cmdAlignCenterClose  = 'c'
	cmdAlignJustifyOpen  = 'J'
	cmdAlignJustifyClose = 'j'
	cmdBoldOpen          = 'B'
	cmdBoldClose         = 'b'
	cmdItalicOpen        = 'I'
	cmdItalicClose       = 'i'
	cmdCombinedOpen      = 'X'
	cmdCombinedClose     = 'x'
	cmdIndentOpen        = 'H'
	cmdIndentClose       = 'h'
)

var blockElements = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "blockquote": true, "li": true, "section": true,
	"article": true, "header": true, "footer": true, "nav": true,
}

var headerElements = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var skippedElements = map[string]bool{
	"head": true, "title": true, "style": true, "script": true,
}

var inlineBoldElements = map[string]bool{"b": true, "strong": true}
var inlineItalicElements = map[string]bool{"i": true, "em": true}

var selfClosingBreaks = map[string]bool{"br": true, "hr": true}

// combined mirrors the deferred effective-combined char from the original
// ('\0','B','I','X').
type combined byte

const (
	combinedNone   combined = 0
	combinedBold   combined = 'B'
	combinedItalic combined = 'I'
	combinedBoth   combined = 'X'
)

func combinedFrom(bold, italic bool) combined {
	switch {
	case bold && italic:
		return combinedBoth
	case bold:
		return combinedBold
	case italic:
		return combinedItalic
	default:
		return combinedNone
	}
}

// inlineFrame is one entry of the inline element stack; bold/italic are
// this element's own contribution (OR'd with everything below it to
// compute the effective combined state).
type inlineFrame struct {
	bold, italic bool
}

// blockFrame tracks what a block element pushed onto the paragraph
// close-stack, so EndElement can pop exactly that much.
type blockFrame struct {
	tag            string
	closeTokens    []byte // LIFO close tokens for this block (align, header bold)
	marginBottom   int
	baseBold       bool
	baseItalic     bool
	prevBaseBold   bool
	prevBaseItalic bool
}

// Converter drives the conversion of a single chapter's XHTML into the
// converted stream format.
type Converter struct {
	css *cssrules.Store
	w   io.Writer

	elemStack   []string // raw tag-name stack, for skip-depth and unknown tags
	skipDepth   int
	blockStack  []blockFrame
	inlineStack []inlineFrame

	baseBold, baseItalic bool // current paragraph's CSS-derived base

	effective combined
	written   combined

	lineHasContent bool
}

// New returns a Converter that writes the converted stream to w.
func New(css *cssrules.Store, w io.Writer) *Converter {
	return &Converter{css: css, w: w}
}

// Convert drives p to EOF, writing the full converted stream. A malformed
// chapter simply stops the loop early; the caller gets whatever was
// written so far rather than an error.
func (c *Converter) Convert(p *xmlpull.Parser) error {
	for p.Read() {
		switch p.NodeType() {
		case xmlpull.Element:
			c.handleElementOpen(p)
		case xmlpull.EndElement:
			c.handleElementClose(p)
		case xmlpull.Text:
			c.handleText(p.TextContent())
		}
	}
	c.finish()
	return nil
}

func (c *Converter) finish() {
	// Close any still-open blocks (malformed/truncated chapter).
	for len(c.blockStack) > 0 {
		c.closeTopBlock()
	}
	c.flushInlineClose()
}

func (c *Converter) handleElementOpen(p *xmlpull.Parser) {
	tag := strings.ToLower(p.Name())
	c.elemStack = append(c.elemStack, tag)

	if c.skipDepth > 0 {
		if skippedElements[tag] {
			c.skipDepth++
		}
		return
	}
	if skippedElements[tag] {
		c.skipDepth++
		return
	}

	class, _ := p.Attribute("class")
	inlineStyleAttr, _ := p.Attribute("style")

	switch {
	case blockElements[tag]:
		c.openBlock(tag, class, inlineStyleAttr, p.IsEmptyElement())
	case selfClosingBreaks[tag]:
		c.emitBreak()
	case inlineBoldElements[tag] || inlineItalicElements[tag] || tag == "span":
		c.openInline(tag, class, inlineStyleAttr)
	}

	if p.IsEmptyElement() {
		// Synthesize a matching close for self-closing non-block, non-break
		// elements (e.g. <span/>) so the stacks stay balanced. Block
		// elements already closed themselves inside openBlock.
		if !blockElements[tag] && !selfClosingBreaks[tag] &&
			(inlineBoldElements[tag] || inlineItalicElements[tag] || tag == "span") {
			c.popInline()
		}
		c.elemStack = c.elemStack[:len(c.elemStack)-1]
	}
}

func (c *Converter) handleElementClose(p *xmlpull.Parser) {
	tag := strings.ToLower(p.Name())
	if len(c.elemStack) > 0 {
		c.elemStack = c.elemStack[:len(c.elemStack)-1]
	}

	if c.skipDepth > 0 {
		if skippedElements[tag] {
			c.skipDepth--
		}
		return
	}

	switch {
	case blockElements[tag]:
		c.closeTopBlock()
	case inlineBoldElements[tag] || inlineItalicElements[tag] || tag == "span":
		c.popInline()
	}
}

// openBlock resolves the block's merged style, pushes its close-stack
// frame, and emits any leading margin and alignment/indent tokens.
func (c *Converter) openBlock(tag, class, inlineStyleAttr string, empty bool) {
	if c.lineHasContent {
		c.writeByte('\n')
		c.lineHasContent = false
	}

	style := c.css.ForClassList(tag, class).Merge(cssrules.ParseInlineStyle(inlineStyleAttr))

	frame := blockFrame{tag: tag, prevBaseBold: c.baseBold, prevBaseItalic: c.baseItalic}

	if style.MarginTopSet {
		for i := 0; i < style.MarginTopLines; i++ {
			c.writeByte('\n')
		}
	}
	if style.MarginBotSet {
		frame.marginBottom = style.MarginBotLines
	}

	if style.AlignSet {
		open, close := alignTokens(style.Align)
		c.writeToken(open)
		frame.closeTokens = append(frame.closeTokens, close)
	}

	if headerElements[tag] {
		c.writeToken(cmdBoldOpen)
		frame.closeTokens = append(frame.closeTokens, cmdBoldClose)
	}

	if style.TextIndentSet && style.TextIndentPx > 0 {
		n := int(style.TextIndentPx/4 + 0.5)
		if n < 0 {
			n = 0
		}
		if n > 12 {
			n = 12
		}
		c.writeToken(cmdIndentOpen)
		for i := 0; i < n; i++ {
			c.writeByte('-')
		}
		c.writeToken(cmdIndentClose)
	}

	frame.baseBold = style.FontWeightSet && style.FontWeight == cssrules.FontWeightBold
	frame.baseItalic = style.FontStyleSet && style.FontStyle == cssrules.FontStyleItalic
	c.baseBold, c.baseItalic = frame.baseBold, frame.baseItalic
	c.updateEffective()

	c.blockStack = append(c.blockStack, frame)

	if empty {
		c.closeTopBlock()
	}
}

func (c *Converter) closeTopBlock() {
	if len(c.blockStack) == 0 {
		if c.lineHasContent {
			c.writeByte('\n')
			c.lineHasContent = false
		}
		return
	}
	frame := c.blockStack[len(c.blockStack)-1]
	c.blockStack = c.blockStack[:len(c.blockStack)-1]

	for i := len(frame.closeTokens) - 1; i >= 0; i-- {
		c.writeToken(frame.closeTokens[i])
	}
	c.flushInlineClose()

	c.writeByte('\n')
	c.lineHasContent = false

	for i := 0; i < frame.marginBottom; i++ {
		c.writeByte('\n')
	}

	c.baseBold, c.baseItalic = frame.prevBaseBold, frame.prevBaseItalic
	c.updateEffective()
}

// emitBreak implements the br/hr contract: close then reopen paragraph
// and inline styles around a conditional newline.
func (c *Converter) emitBreak() {
	if !c.lineHasContent {
		return
	}

	c.flushInlineClose()
	if len(c.blockStack) > 0 {
		frame := &c.blockStack[len(c.blockStack)-1]
		for i := len(frame.closeTokens) - 1; i >= 0; i-- {
			c.writeToken(frame.closeTokens[i])
		}
	}

	c.writeByte('\n')
	c.lineHasContent = false

	if len(c.blockStack) > 0 {
		frame := &c.blockStack[len(c.blockStack)-1]
		for _, tok := range frame.closeTokens {
			c.writeToken(reopenToken(tok))
		}
	}
}

func reopenToken(closeTok byte) byte {
	switch closeTok {
	case cmdAlignLeftClose:
		return cmdAlignLeftOpen
	case cmdAlignRightClose:
		return cmdAlignRightOpen
	case cmdAlignCenterClose:
		return cmdAlignCenterOpen
	case cmdAlignJustifyClose:
		return cmdAlignJustifyOpen
	case cmdBoldClose:
		return cmdBoldOpen
	}
	return closeTok
}

func alignTokens(a cssrules.Align) (open, close byte) {
	switch a {
	case cssrules.AlignLeft:
		return cmdAlignLeftOpen, cmdAlignLeftClose
	case cssrules.AlignRight:
		return cmdAlignRightOpen, cmdAlignRightClose
	case cssrules.AlignCenter:
		return cmdAlignCenterOpen, cmdAlignCenterClose
	default:
		return cmdAlignJustifyOpen, cmdAlignJustifyClose
	}
}

func (c *Converter) openInline(tag, class, inlineStyleAttr string) {
	var f inlineFrame
	switch {
	case inlineBoldElements[tag]:
		f.bold = true
	case inlineItalicElements[tag]:
		f.italic = true
	case tag == "span":
		style := c.css.ForClassList(tag, class).Merge(cssrules.ParseInlineStyle(inlineStyleAttr))
		f.bold = style.FontWeightSet && style.FontWeight == cssrules.FontWeightBold
		f.italic = style.FontStyleSet && style.FontStyle == cssrules.FontStyleItalic
	}
	c.inlineStack = append(c.inlineStack, f)
	c.updateEffective()
}

func (c *Converter) popInline() {
	if len(c.inlineStack) == 0 {
		return
	}
	c.inlineStack = c.inlineStack[:len(c.inlineStack)-1]
	c.updateEffective()
}

func (c *Converter) updateEffective() {
	bold, italic := c.baseBold, c.baseItalic
	for _, f := range c.inlineStack {
		bold = bold || f.bold
		italic = italic || f.italic
	}
	c.effective = combinedFrom(bold, italic)
}

// ensureInlineStyleEmitted is the deferred-emission flush called
// immediately before any text byte.
func (c *Converter) ensureInlineStyleEmitted() {
	if c.effective == c.written {
		return
	}
	if c.written != combinedNone {
		c.writeToken(closeFor(c.written))
	}
	if c.effective != combinedNone {
		c.writeToken(openFor(c.effective))
	}
	c.written = c.effective
}

func (c *Converter) flushInlineClose() {
	if c.written != combinedNone {
		c.writeToken(closeFor(c.written))
		c.written = combinedNone
	}
}

func openFor(cb combined) byte {
	switch cb {
	case combinedBold:
		return cmdBoldOpen
	case combinedItalic:
		return cmdItalicOpen
	case combinedBoth:
		return cmdCombinedOpen
	}
	return 0
}

func closeFor(cb combined) byte {
	switch cb {
	case combinedBold:
		return cmdBoldClose
	case combinedItalic:
		return cmdItalicClose
	case combinedBoth:
		return cmdCombinedClose
	}
	return 0
}

func (c *Converter) handleText(raw string) {
	if c.skipDepth > 0 {
		return
	}
	text := decodeEntities(raw)
	text = normalizeWhitespace(text, !c.lineHasContent)
	if text == "" {
		return
	}
	for i := 0; i < len(text); i++ {
		c.ensureInlineStyleEmitted()
		c.writeByte(text[i])
		if text[i] != ' ' {
			c.lineHasContent = true
		} else if c.lineHasContent {
			// an internal space still counts as content already present
		}
	}
}

// normalizeWhitespace collapses ASCII whitespace/NBSP runs to a single
// space, drops carriage returns, converts tabs to spaces, and trims a
// leading space if the line has no content yet.
func normalizeWhitespace(s string, trimLeading bool) string {
	var b strings.Builder
	prevSpace := trimLeading
	for _, r := range s {
		switch r {
		case '\r':
			continue
		case '\t', ' ', ' ':
			if prevSpace {
				continue
			}
			b.WriteByte(' ')
			prevSpace = true
		default:
			b.WriteRune(r)
			prevSpace = false
		}
	}
	return b.String()
}

// decodeEntities decodes the closed set of named entities
// htmlutil.DecodeBasicEntity recognizes; everything else passes through
// unchanged.
func decodeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 || end > 10 {
			b.WriteByte(s[i])
			i++
			continue
		}
		name := s[i : i+end+1]
		if repl, ok := htmlutil.DecodeBasicEntity(name); ok {
			b.WriteString(repl)
			i += len(name)
			continue
		}
		b.WriteString(name)
		i += len(name)
	}
	return b.String()
}

func (c *Converter) writeByte(b byte) {
	c.w.Write([]byte{b})
}

func (c *Converter) writeToken(cmd byte) {
	if cmd == 0 {
		return
	}
	c.w.Write([]byte{esc, cmd})
}
