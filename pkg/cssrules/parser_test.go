package cssrules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ClassSelector(t *testing.T) {
	st := NewStore()
	st.Parse(`.c { text-align: center; font-weight: bold; }`)

	s := st.ForClassList("", "c")
	require.True(t, s.AlignSet)
	assert.Equal(t, AlignCenter, s.Align)
	require.True(t, s.FontWeightSet)
	assert.Equal(t, FontWeightBold, s.FontWeight)
}

func TestParse_TagDotClassSelector(t *testing.T) {
	st := NewStore()
	st.Parse(`p.note { text-indent: 2em; }`)

	s := st.ForClassList("p", "note")
	require.True(t, s.TextIndentSet)
	assert.Equal(t, float64(32), s.TextIndentPx)
}

func TestParse_MultipleRulesMerge(t *testing.T) {
	st := NewStore()
	st.Parse(`
		.c { text-align: center; }
		.c { font-style: italic; }
	`)
	s := st.ForClassList("", "c")
	assert.Equal(t, AlignCenter, s.Align)
	assert.Equal(t, FontStyleItalic, s.FontStyle)
}

func TestParse_IgnoresAtRuleAndMedia(t *testing.T) {
	st := NewStore()
	st.Parse(`
		@import url("foo.css");
		@media screen { .c { text-align: left; } }
		.d { text-align: right; }
	`)
	// @media block content must not leak into the top-level store.
	s := st.ForClassList("", "c")
	assert.False(t, s.AlignSet)

	d := st.ForClassList("", "d")
	require.True(t, d.AlignSet)
	assert.Equal(t, AlignRight, d.Align)
}

func TestParse_UnknownPropertyIgnored(t *testing.T) {
	st := NewStore()
	st.Parse(`.c { color: red; text-align: justify; }`)
	s := st.ForClassList("", "c")
	assert.True(t, s.AlignSet)
	assert.Equal(t, AlignJustify, s.Align)
}

func TestParse_CommaSeparatedSelectors(t *testing.T) {
	st := NewStore()
	st.Parse(`.a, .b { font-weight: bold; }`)
	assert.True(t, st.ForClassList("", "a").FontWeightSet)
	assert.True(t, st.ForClassList("", "b").FontWeightSet)
}

func TestParseInlineStyle(t *testing.T) {
	s := ParseInlineStyle("text-align: center; font-weight: bold")
	assert.Equal(t, AlignCenter, s.Align)
	assert.Equal(t, FontWeightBold, s.FontWeight)
}

func TestStyle_MergeOverridesOnlyPresent(t *testing.T) {
	base := Style{Align: AlignLeft, AlignSet: true}
	override := Style{FontWeight: FontWeightBold, FontWeightSet: true}
	merged := base.Merge(override)
	assert.Equal(t, AlignLeft, merged.Align)
	assert.Equal(t, FontWeightBold, merged.FontWeight)
}

func TestParseLength_PxAndEm(t *testing.T) {
	px, ok := parseLength("10px")
	require.True(t, ok)
	assert.Equal(t, float64(10), px)

	em, ok := parseLength("1.5em")
	require.True(t, ok)
	assert.Equal(t, float64(24), em)
}
