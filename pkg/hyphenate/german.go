package hyphenate

import "unicode"

// germanOnsets ports GermanHyphenation.cpp's isAllowedOnset table.
var germanOnsets = map[string]bool{
	"b": true, "c": true, "d": true, "f": true, "g": true, "h": true,
	"j": true, "k": true, "l": true, "m": true, "n": true, "p": true,
	"q": true, "r": true, "s": true, "t": true, "v": true, "w": true,
	"z": true, "ch": true, "pf": true, "ph": true, "qu": true, "sch": true,
	"sp": true, "st": true, "sk": true, "kl": true, "kn": true, "kr": true,
	"pl": true, "pr": true, "tr": true, "dr": true, "gr": true, "gl": true,
	"br": true, "bl": true, "fr": true, "fl": true, "schl": true,
	"schm": true, "schn": true, "schr": true, "schw": true, "spr": true,
	"spl": true, "str": true, "th": true,
}

// germanInseparablePairs ports the isInseparablePair lambda.
var germanInseparablePairs = map[string]bool{
	"ch": true, "ck": true, "ph": true, "qu": true, "tz": true,
}

func toLowerGerman(r rune) rune {
	switch r {
	case 'Ä':
		return 'ä'
	case 'Ö':
		return 'ö'
	case 'Ü':
		return 'ü'
	case 'ẞ':
		return 'ß'
	default:
		return unicode.ToLower(r)
	}
}

func isGermanVowel(r rune) bool {
	switch toLowerGerman(r) {
	case 'a', 'e', 'i', 'o', 'u', 'ä', 'ö', 'ü', 'y':
		return true
	}
	return false
}

// germanBreakPoints ports GermanHyphenation::hyphenate.
func germanBreakPoints(word string) []int {
	runes := []rune(word)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = toLowerGerman(r)
	}

	var vowelIdx []int
	for i, r := range lower {
		if isGermanVowel(r) {
			vowelIdx = append(vowelIdx, i)
		}
	}
	if len(vowelIdx) < 2 {
		return nil
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

		if len(cluster) >= 3 && len(string(lower[clusterStart:clusterStart+3])) >= 3 &&
			string(lower[clusterStart:minInt(clusterStart+3, clusterEnd)]) == "sch" {
			boundary = clusterStart
		}
		if boundary == 0 && consonantCount == 2 {
			if germanInseparablePairs[cluster] {
				boundary = clusterEnd
			}
		}
		if boundary == 0 && germanOnsets[cluster] {
			boundary = clusterStart
		}
		if boundary == 0 && consonantCount >= 2 {
			cr := []rune(cluster)
			for split := 1; split < len(cr); split++ {
				onset := string(cr[split:])
				if germanOnsets[onset] {
					boundary = clusterStart + split
					break
				}
			}
		}
		if boundary == 0 {
			switch {
			case consonantCount == 1:
				boundary = clusterStart
			case consonantCount == 2:
				if germanInseparablePairs[cluster] {
					boundary = clusterEnd
				} else {
					boundary = clusterStart + 1
				}
			default:
				lastTwo := string(lower[clusterEnd-2 : clusterEnd])
				if germanInseparablePairs[lastTwo] {
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

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
