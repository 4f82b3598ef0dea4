package linebreak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(texts ...string) []Word {
	out := make([]Word, len(texts))
	for i, t := range texts {
		out[i] = Word{Text: t, Width: len(t) * 10}
	}
	return out
}

func TestCompute_EmptyInput(t *testing.T) {
	assert.Empty(t, Compute(nil, 100, 5))
}

func TestCompute_SingleLineFits(t *testing.T) {
	breaks := Compute(words("one", "two"), 200, 5)
	require.Len(t, breaks, 1)
	assert.Equal(t, Break{Start: 0, End: 2}, breaks[0])
}

func TestCompute_WrapsAcrossMultipleLines(t *testing.T) {
	// Five words of width 40 each with a 5px space: max_width tight enough
	// that only two words fit per line (40+5+40=85 <= 90, +5+40=130 > 90).
	breaks := Compute(words("aaaa", "bbbb", "cccc", "dddd", "eeee"), 90, 5)
	require.NotEmpty(t, breaks)
	total := 0
	for _, b := range breaks {
		total += b.End - b.Start
	}
	assert.Equal(t, 5, total)
	assert.True(t, len(breaks) >= 2)
}

func TestCompute_OversizedWordGetsOwnLine(t *testing.T) {
	breaks := Compute(words("supercalifragilisticexpialidocious", "ok"), 50, 5)
	require.Len(t, breaks, 2)
	assert.Equal(t, Break{Start: 0, End: 1}, breaks[0])
	assert.Equal(t, Break{Start: 1, End: 2}, breaks[1])
}

func TestBadness_ExactFitIsZero(t *testing.T) {
	assert.Equal(t, 0.0, badness(100, 100))
}

func TestBadness_LooseLineIsPositive(t *testing.T) {
	b := badness(50, 100)
	assert.Greater(t, b, 0.0)
}

func TestDemerits_LastLineIsFree(t *testing.T) {
	assert.Equal(t, 0.0, demerits(42, true))
}

func TestGapWidths_DistributesRemainderToEarlyGaps(t *testing.T) {
	gaps := GapWidths(110, 100, 5, 3) // 10 extra across 3 gaps -> 4,3,3
	require.Len(t, gaps, 3)
	sum := 0
	for _, g := range gaps {
		sum += g
	}
	assert.Equal(t, 10, sum)
}

func TestGapWidths_ClampsToSixteenSpaceWidths(t *testing.T) {
	gaps := GapWidths(1000, 100, 5, 1)
	require.Len(t, gaps, 1)
	assert.LessOrEqual(t, gaps[0], 16*5)
}
