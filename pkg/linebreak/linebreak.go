// Package linebreak implements Knuth-Plass optimal line breaking over a
// measured word sequence, grounded on
// _examples/original_source/src/content/layout/KnuthPlassLayoutStrategy.cpp's
// minDemerits dynamic program.
package linebreak

import "math"

// HyphenPenalty and FitnessDemerits are reserved cost constants: the base
// cost function does not currently consult them (tests must not assume
// they affect break choice), kept here only so a future extension has a
// documented home.
const (
	HyphenPenalty   = 50
	FitnessDemerits = 100
)

// Word is one measured token to be laid out.
type Word struct {
	Text  string
	Width int
}

// Break is one computed line: the half-open range [Start, End) of Words
// it contains.
type Break struct {
	Start, End int
}

// Compute runs the minDemerits dynamic program over words and returns
// the optimal line breaks, one [Start, End) range per line in order,
// reconstructed by backtracking from n to 0; the last range ends at n.
func Compute(words []Word, maxWidth, spaceWidth int) []Break {
	n := len(words)
	if n == 0 {
		return nil
	}

	const inf = math.MaxFloat64
	minDemerits := make([]float64, n+1)
	predecessor := make([]int, n+1)
	for i := 1; i <= n; i++ {
		minDemerits[i] = inf
		predecessor[i] = -1
	}

	for i := 0; i < n; i++ {
		if minDemerits[i] == inf {
			continue
		}
		lineWidth := 0
		for j := i; j < n; j++ {
			lineWidth += words[j].Width
			if j > i {
				lineWidth += spaceWidth
			}
			if lineWidth > maxWidth && j > i {
				break
			}
			isLastLine := j == n-1
			b := badness(lineWidth, maxWidth)
			d := demerits(b, isLastLine)
			total := minDemerits[i] + d
			if total < minDemerits[j+1] {
				minDemerits[j+1] = total
				predecessor[j+1] = i
			}
			if lineWidth > maxWidth {
				// A single word wider than maxWidth still must occupy its
				// own line; having recorded that forced transition, don't
				// try to extend the line any further.
				break
			}
		}
	}

	var breaks []Break
	pos := n
	for pos > 0 {
		start := predecessor[pos]
		if start < 0 {
			start = pos - 1
		}
		breaks = append([]Break{{Start: start, End: pos}}, breaks...)
		pos = start
	}
	return breaks
}

// badness returns 0 if the line exactly fills or exceeds maxWidth, else
// 100*ratio^3 where ratio = (target-actual)/target.
func badness(actual, target int) float64 {
	if actual >= target {
		return 0
	}
	ratio := float64(target-actual) / float64(target)
	return 100 * ratio * ratio * ratio
}

// demerits converts badness into the dynamic program's line cost: a
// loose last line of a paragraph costs nothing; every other line costs
// (1+badness)^2.
func demerits(b float64, isLastLine bool) float64 {
	if isLastLine {
		return 0
	}
	return (1 + b) * (1 + b)
}

// GapWidths distributes extra width evenly across the gapCount gaps
// between words on a line, a justify rendering policy executed by
// pkg/layout. When the even split would exceed 16*spaceWidth per gap,
// it shrinks to max(perGap*0.25, spaceWidth), capped at 16*spaceWidth,
// and drops the remainder, so no gap is wider than 16*spaceWidth.
func GapWidths(lineWidth, wordsWidth, spaceWidth, gapCount int) []int {
	if gapCount <= 0 {
		return nil
	}
	extra := lineWidth - wordsWidth
	perGap := extra / gapCount
	remainder := extra % gapCount

	if perGap > 16*spaceWidth {
		shrunk := int(float64(perGap) * 0.25)
		if shrunk < spaceWidth {
			shrunk = spaceWidth
		}
		if shrunk > 16*spaceWidth {
			shrunk = 16 * spaceWidth
		}
		perGap = shrunk
		remainder = 0
	}

	gaps := make([]int, gapCount)
	for i := range gaps {
		gaps[i] = perGap
	}
	for i := 0; i < remainder && i < gapCount; i++ {
		gaps[i]++
	}
	return gaps
}
