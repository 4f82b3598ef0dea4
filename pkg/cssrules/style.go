// Package cssrules implements the CSS rule store: a single-pass scanner
// over a restricted CSS subset that produces a closed set of style
// properties per class name, plus inline style="" parsing. Grounded on
// the single-pass, regex-light parsing style pkg/htmlutil/strip.go uses;
// no third-party CSS parser is wired elsewhere in this module, so a
// hand-rolled scanner is the grounded choice (see DESIGN.md).
package cssrules

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Align mirrors the text-align domain.
type Align int

const (
	AlignNone Align = iota
	AlignLeft
	AlignRight
	AlignCenter
	AlignJustify
)

// FontStyle mirrors the font-style domain.
type FontStyle int

const (
	FontStyleUnset FontStyle = iota
	FontStyleNormal
	FontStyleItalic
)

// FontWeight mirrors the font-weight domain.
type FontWeight int

const (
	FontWeightUnset FontWeight = iota
	FontWeightNormal
	FontWeightBold
)

// Style is a merged style record: every field is paired with a
// present/absent flag so merge semantics ("later overrides earlier only
// for present fields") can be implemented precisely.
type Style struct {
	Align          Align
	AlignSet       bool
	FontStyle      FontStyle
	FontStyleSet   bool
	FontWeight     FontWeight
	FontWeightSet  bool
	TextIndentPx   float64
	TextIndentSet  bool
	MarginTopLines int
	MarginTopSet   bool
	MarginBotLines int
	MarginBotSet   bool
}

// Merge returns a new Style where fields set on other override the
// corresponding field of s; fields other leaves unset are taken from s.
func (s Style) Merge(other Style) Style {
	out := s
	if other.AlignSet {
		out.Align, out.AlignSet = other.Align, true
	}
	if other.FontStyleSet {
		out.FontStyle, out.FontStyleSet = other.FontStyle, true
	}
	if other.FontWeightSet {
		out.FontWeight, out.FontWeightSet = other.FontWeight, true
	}
	if other.TextIndentSet {
		out.TextIndentPx, out.TextIndentSet = other.TextIndentPx, true
	}
	if other.MarginTopSet {
		out.MarginTopLines, out.MarginTopSet = other.MarginTopLines, true
	}
	if other.MarginBotSet {
		out.MarginBotLines, out.MarginBotSet = other.MarginBotLines, true
	}
	return out
}

var lowerCaser = cases.Lower(language.Und)

func lc(s string) string { return lowerCaser.String(s) }

// ParseDeclarations parses a `prop: value; prop2: value2` declaration body
// (the inside of a rule block, or an inline style="" attribute) into a
// Style, recognizing exactly the closed property set above and silently
// ignoring everything else.
func ParseDeclarations(body string) Style {
	var s Style
	for _, decl := range splitDeclarations(body) {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		colon := strings.IndexByte(decl, ':')
		if colon < 0 {
			continue
		}
		prop := lc(strings.TrimSpace(decl[:colon]))
		val := lc(strings.TrimSpace(decl[colon+1:]))
		applyProperty(&s, prop, val)
	}
	return s
}

// splitDeclarations splits on ';' while respecting quoted strings, so a
// value like content: ";" doesn't terminate early.
func splitDeclarations(body string) []string {
	var out []string
	var cur strings.Builder
	var quote byte
	for i := 0; i < len(body); i++ {
		c := body[i]
		if quote != 0 {
			cur.WriteByte(c)
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
			cur.WriteByte(c)
		case ';':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func applyProperty(s *Style, prop, val string) {
	switch prop {
	case "text-align":
		switch val {
		case "left", "start":
			s.Align, s.AlignSet = AlignLeft, true
		case "right", "end":
			s.Align, s.AlignSet = AlignRight, true
		case "center":
			s.Align, s.AlignSet = AlignCenter, true
		case "justify":
			s.Align, s.AlignSet = AlignJustify, true
		}
	case "font-style":
		if val == "italic" || val == "oblique" {
			s.FontStyle, s.FontStyleSet = FontStyleItalic, true
		} else {
			s.FontStyle, s.FontStyleSet = FontStyleNormal, true
		}
	case "font-weight":
		switch val {
		case "bold", "bolder", "700", "800", "900":
			s.FontWeight, s.FontWeightSet = FontWeightBold, true
		default:
			s.FontWeight, s.FontWeightSet = FontWeightNormal, true
		}
	case "text-indent":
		if px, ok := parseLength(val); ok {
			s.TextIndentPx, s.TextIndentSet = px, true
		}
	case "margin-top":
		if n, ok := parseSmallInt(val); ok {
			s.MarginTopLines, s.MarginTopSet = n, true
		}
	case "margin-bottom":
		if n, ok := parseSmallInt(val); ok {
			s.MarginBotLines, s.MarginBotSet = n, true
		}
	}
}

// parseLength parses `<num>`, `<num>px`, or `<num>em` (em*16 -> px).
func parseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	switch {
	case strings.HasSuffix(val, "px"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(val, "px"), 64)
		return n, err == nil
	case strings.HasSuffix(val, "em"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(val, "em"), 64)
		if err != nil {
			return 0, false
		}
		return n * 16, true
	default:
		n, err := strconv.ParseFloat(val, 64)
		return n, err == nil
	}
}

func parseSmallInt(val string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, false
	}
	return n, true
}
