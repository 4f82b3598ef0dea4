package cssrules

import "strings"

// Store maps a class name (without the leading '.') to its merged Style,
// and a bare tag name to its merged Style. Zero value is a usable empty
// store.
type Store struct {
	byClass map[string]Style
	byTag   map[string]Style
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{byClass: map[string]Style{}, byTag: map[string]Style{}}
}

// Parse scans css (the full contents of one stylesheet) and merges every
// rule it finds into the store. Multiple rules targeting the same
// selector are merged in document order using Style.Merge.
func (st *Store) Parse(css string) {
	if st.byClass == nil {
		st.byClass = map[string]Style{}
	}
	if st.byTag == nil {
		st.byTag = map[string]Style{}
	}
	css = lc(css)
	i := 0
	n := len(css)
	for i < n {
		c := css[i]
		switch {
		case c == '@':
			i = skipAtRule(css, i)
		case c == '{':
			// Stray brace with no selector collected; skip its block.
			i = skipBlock(css, i)
		case c == '/' && i+1 < n && css[i+1] == '*':
			i = skipComment(css, i)
		default:
			selStart := i
			braceIdx := findRuleBrace(css, i)
			if braceIdx < 0 {
				i = n
				break
			}
			selectors := css[selStart:braceIdx]
			bodyEnd := findBlockEnd(css, braceIdx)
			if bodyEnd < 0 {
				bodyEnd = n
			}
			body := css[braceIdx+1 : bodyEnd]
			style := ParseDeclarations(body)
			st.applySelectors(selectors, style)
			i = bodyEnd + 1
		}
	}
}

// applySelectors merges style into every comma-separated selector that is
// a class selector (".name" or "tag.name") or a bare tag selector.
func (st *Store) applySelectors(selectors string, style Style) {
	for _, raw := range strings.Split(selectors, ",") {
		sel := strings.TrimSpace(raw)
		if sel == "" {
			continue
		}
		// Take the last compound (ignore descendant combinators); a
		// compound may be "tag.class" or ".class" or "tag".
		fields := strings.Fields(sel)
		if len(fields) == 0 {
			continue
		}
		compound := fields[len(fields)-1]
		dot := strings.IndexByte(compound, '.')
		if dot < 0 {
			tag := compound
			st.byTag[tag] = st.byTag[tag].Merge(style)
			continue
		}
		class := compound[dot+1:]
		if class == "" {
			continue
		}
		st.byClass[class] = st.byClass[class].Merge(style)
	}
}

// findRuleBrace returns the index of the '{' that opens the rule starting
// at i, honoring quoted strings so a literal '{' inside a selector
// attribute value doesn't terminate the scan early.
func findRuleBrace(css string, i int) int {
	var quote byte
	for ; i < len(css); i++ {
		c := css[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			return i
		case '}':
			return -1
		}
	}
	return -1
}

// findBlockEnd returns the index of the '}' matching the '{' at
// braceIdx, honoring quoted strings.
func findBlockEnd(css string, braceIdx int) int {
	depth := 0
	var quote byte
	for i := braceIdx; i < len(css); i++ {
		c := css[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// skipAtRule skips an at-rule: either a statement ending in ';' (e.g.
// @import "x.css";) or a block with balanced braces (e.g. @media {...}),
// honoring quoted strings in both cases.
func skipAtRule(css string, i int) int {
	var quote byte
	for ; i < len(css); i++ {
		c := css[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case ';':
			return i + 1
		case '{':
			end := skipBlock(css, i)
			return end
		}
	}
	return len(css)
}

func skipBlock(css string, braceIdx int) int {
	end := findBlockEnd(css, braceIdx)
	if end < 0 {
		return len(css)
	}
	return end + 1
}

func skipComment(css string, i int) int {
	end := strings.Index(css[i+2:], "*/")
	if end < 0 {
		return len(css)
	}
	return i + 2 + end + 2
}

// ForClassList merges the styles of a whitespace-separated class list, in
// the order given, plus (if tag != "") the tag's own style underneath them
// (CSS specificity is not modeled; later-declared wins, tag loses to
// class).
func (st *Store) ForClassList(tag, classList string) Style {
	var out Style
	if tag != "" {
		out = out.Merge(st.byTag[lc(tag)])
	}
	for _, class := range strings.Fields(classList) {
		out = out.Merge(st.byClass[lc(class)])
	}
	return out
}

// ParseInlineStyle parses the value of an inline style="" attribute.
func ParseInlineStyle(value string) Style {
	return ParseDeclarations(lc(value))
}
