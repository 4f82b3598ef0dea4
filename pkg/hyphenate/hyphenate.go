// Package hyphenate implements hyphenation: legal hyphenation
// positions for a word, per language. The English and German algorithms
// are vowel/consonant-cluster heuristics ported line-for-line from
// _examples/original_source/src/text/hyphenation/EnglishHyphenation.cpp
// and .../textview/hyphenation/GermanHyphenation.cpp (see DESIGN.md) —
// they are deliberately not Liang patterns, matching the original's
// heuristic approach rather than a dictionary-pattern algorithm.
package hyphenate

import (
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/graphemes"
)

// Language is the closed set of languages FindPositions knows how to
// hyphenate.
type Language int

const (
	LanguageNone Language = iota
	LanguageBasic
	LanguageEnglish
	LanguageGerman
)

const (
	defaultMinWordLen     = 6
	defaultMinFragmentLen = 3
)

// FindPositions returns hyphenation positions for word using lang's
// algorithm. Positive values are byte offsets of existing '-' characters;
// negative values are -(pos+1) algorithmic insertion points.
// Existing hyphens always take precedence: if any are found, the
// language-specific algorithm is not consulted at all, mirroring
// HyphenationStrategy::findHyphenPositions in the original.
func FindPositions(word string, lang Language, minWordLen, minFragmentLen int) []int {
	if minWordLen <= 0 {
		minWordLen = defaultMinWordLen
	}
	if minFragmentLen <= 0 {
		minFragmentLen = defaultMinFragmentLen
	}

	if existing := existingHyphens(word); len(existing) > 0 {
		return existing
	}

	if lang == LanguageNone || lang == LanguageBasic {
		return nil
	}
	if len(word) < minWordLen {
		return nil
	}

	var raw []int
	switch lang {
	case LanguageEnglish:
		raw = englishBreakPoints(word)
	case LanguageGerman:
		raw = germanBreakPoints(word)
	default:
		return nil
	}

	var out []int
	for _, pos := range raw {
		if pos < minFragmentLen || pos > len(word)-minFragmentLen {
			continue
		}
		if !isSafeBoundary(word, pos) {
			continue
		}
		out = append(out, -(pos + 1))
	}
	return out
}

// existingHyphens returns the byte positions of literal '-' characters in
// word, as positive indices.
func existingHyphens(word string) []int {
	var positions []int
	for i := 0; i < len(word); i++ {
		if word[i] == '-' {
			positions = append(positions, i)
		}
	}
	return positions
}

// isSafeBoundary reports whether pos does not fall inside a UTF-8
// continuation byte or, more strongly, inside a grapheme cluster, using
// uax29 as the second safety net over the raw utf8.RuneStart check.
func isSafeBoundary(word string, pos int) bool {
	if pos <= 0 || pos >= len(word) {
		return false
	}
	if !utf8.RuneStart(word[pos]) {
		return false
	}
	seg := graphemes.FromString(word)
	start := 0
	for seg.Next() {
		end := start + len(seg.Value())
		if start < pos && end > pos {
			return false
		}
		start = end
	}
	return true
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
