package hyphenate

import "unicode"

// englishOnsets is the allowed-syllable-onset table ported from
// EnglishHyphenation.cpp's isAllowedOnset, including the 1/2/3-consonant
// clusters.
var englishOnsets = map[string]bool{
	"b": true, "c": true, "d": true, "f": true, "g": true, "h": true,
	"j": true, "k": true, "l": true, "m": true, "n": true, "p": true,
	"q": true, "r": true, "s": true, "t": true, "v": true, "w": true,
	"x": true, "y": true, "z": true,
	"bl": true, "br": true, "ch": true, "cl": true, "cr": true, "dr": true,
	"dw": true, "fl": true, "fr": true, "gh": true, "gl": true, "gn": true,
	"gr": true, "kn": true, "ph": true, "pl": true, "pr": true, "qu": true,
	"sc": true, "sh": true, "sk": true, "sl": true, "sm": true, "sn": true,
	"sp": true, "sq": true, "st": true, "sw": true, "th": true, "tr": true,
	"tw": true, "wh": true, "wr": true,
	"chr": true, "sch": true, "scr": true, "shr": true, "sph": true,
	"spl": true, "spr": true, "squ": true, "str": true, "thr": true,
}

// englishInseparablePairs are digraphs that never split (fa-ther, gra-phic).
var englishInseparablePairs = map[string]bool{
	"ch": true, "ck": true, "gh": true, "gn": true, "kn": true,
	"ph": true, "sh": true, "th": true, "wh": true, "wr": true,
}

// englishBreakPoints ports EnglishHyphenation::hyphenate, returning
// rune-index boundaries converted to byte offsets within word.
func englishBreakPoints(word string) []int {
	runes := []rune(word)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	isVowelRune := func(r rune) bool {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			return true
		}
		return false
	}
	isLetterRune := func(r rune) bool {
		return unicode.IsLetter(r)
	}
	isVowelInContext := func(i int) bool {
		r := lower[i]
		if isVowelRune(r) {
			return true
		}
		if r == 'y' && i > 0 {
			prev := lower[i-1]
			if isLetterRune(prev) && !isVowelRune(prev) {
				return true
			}
		}
		return false
	}
	isConsonant := func(r rune) bool {
		return isLetterRune(r) && !isVowelRune(r)
	}

	var vowelIdx []int
	for i := range lower {
		if isVowelInContext(i) {
			vowelIdx = append(vowelIdx, i)
		}
	}
	if len(vowelIdx) < 2 {
		return nil
	}

	isDoubleConsonant := func(cluster []rune) bool {
		return len(cluster) == 2 && cluster[0] == cluster[1] && isConsonant(cluster[0])
	}

	var charPositions []int
	for i := 0; i+1 < len(vowelIdx); i++ {
		leftVowel, rightVowel := vowelIdx[i], vowelIdx[i+1]
		if rightVowel <= leftVowel+1 {
			continue
		}
		consonantCount := rightVowel - leftVowel - 1
		clusterStart := leftVowel + 1
		clusterEnd := rightVowel
		cluster := string(lower[clusterStart:clusterEnd])
		boundary := 0

		if boundary == 0 && consonantCount == 2 {
			if isDoubleConsonant([]rune(cluster)) {
				boundary = clusterStart + 1
			}
		}
		if boundary == 0 && consonantCount == 2 {
			if englishInseparablePairs[cluster] {
				boundary = clusterStart
			}
		}
		if boundary == 0 && englishOnsets[cluster] {
			boundary = clusterStart
		}
		if boundary == 0 && consonantCount >= 2 {
			cr := []rune(cluster)
			for split := 1; split < len(cr); split++ {
				onset := string(cr[split:])
				if englishOnsets[onset] {
					coda := cr[:split]
					if len(coda) <= 2 {
						boundary = clusterStart + split
						break
					}
				}
			}
		}
		if boundary == 0 {
			switch {
			case consonantCount == 1:
				boundary = clusterStart
			case consonantCount == 2:
				if englishInseparablePairs[cluster] {
					boundary = clusterStart
				} else {
					boundary = clusterStart + 1
				}
			default:
				lastTwo := string(lower[clusterEnd-2 : clusterEnd])
				if englishInseparablePairs[lastTwo] || englishOnsets[lastTwo] {
					boundary = clusterEnd - 2
				} else {
					boundary = clusterEnd - 1
				}
			}
		}

		if boundary > 0 && boundary < len(runes) {
			charPositions = append(charPositions, boundary)
		}
	}

	return runePositionsToByteOffsets(word, charPositions)
}

// runePositionsToByteOffsets converts rune-index positions into byte
// offsets within the UTF-8 encoding of word.
func runePositionsToByteOffsets(word string, charPositions []int) []int {
	if len(charPositions) == 0 {
		return nil
	}
	offsets := make([]int, 0, len(word))
	for i := range word {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(word)) // sentinel for charPos == rune count

	out := make([]int, 0, len(charPositions))
	for _, cp := range charPositions {
		if cp < 0 || cp >= len(offsets) {
			continue
		}
		out = append(out, offsets[cp])
	}
	return out
}
