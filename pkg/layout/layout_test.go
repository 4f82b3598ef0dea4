package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkleaf/pageflow/pkg/cssrules"
	"github.com/inkleaf/pageflow/pkg/hyphenate"
	"github.com/inkleaf/pageflow/pkg/measure"
	"github.com/inkleaf/pageflow/pkg/wordprovider"
)

func newEngine(t *testing.T, text string, cfg LayoutConfig) (*Engine, *wordprovider.Cursor) {
	t.Helper()
	cursor := wordprovider.Open(wordprovider.NewMemSource([]byte(text)))
	m := measure.Func(func(s string) int { return len(s) * 10 })
	return New(cursor, m, cfg), cursor
}

func baseConfig() LayoutConfig {
	return LayoutConfig{
		MarginTop: 0, MarginBottom: 0, MarginLeft: 0, MarginRight: 0,
		LineHeight: 30, MinSpaceWidth: 1,
		PageWidth: 200, PageHeight: 300,
		DefaultAlignment: cssrules.AlignLeft,
		Language: hyphenate.LanguageEnglish,
	}
}

func TestComputePage_SingleLineFits(t *testing.T) {
	e, _ := newEngine(t, "hello world", baseConfig())
	page := e.ComputePage(0)
	require.Len(t, page.Lines, 1)
	require.Len(t, page.Lines[0].Words, 2)
	assert.Equal(t, "hello", page.Lines[0].Words[0].Text)
	assert.Equal(t, "world", page.Lines[0].Words[1].Text)
}

func TestComputePage_StopsAtMaxLines(t *testing.T) {
	cfg := baseConfig()
	cfg.PageHeight = 30 // 1 line of height 30
	text := strings.Repeat("word ", 30) + "\nmore text here"
	e, _ := newEngine(t, text, cfg)
	page := e.ComputePage(0)
	assert.Len(t, page.Lines, 1)
	assert.Less(t, page.EndPosition, int64(len(text)))
}

func TestComputePage_OversizedWordSplitsViaHyphenation(t *testing.T) {
	cfg := baseConfig()
	cfg.PageWidth = 150 // max_width 150px = 15 chars at 10px/char
	text := "extraordinarily long word supercalifragilisticexpialidocious follows"
	e, _ := newEngine(t, text, cfg)
	page := e.ComputePage(0)
	require.NotEmpty(t, page.Lines)

	var sawSplit bool
	for _, line := range page.Lines {
		for _, w := range line.Words {
			if w.WasSplit {
				sawSplit = true
				assert.True(t, strings.HasSuffix(w.Text, "-"))
			}
		}
	}
	assert.True(t, sawSplit, "expected at least one word to be split across lines")
}

func TestPaginationRoundTrip_PreviousPageStartMatches(t *testing.T) {
	cfg := baseConfig()
	cfg.PageWidth = 100
	cfg.PageHeight = 60 // 2 lines per page
	words := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		words = append(words, "word")
	}
	text := strings.Join(words, " ")
	e, _ := newEngine(t, text, cfg)

	page1 := e.ComputePage(0)
	require.NotZero(t, page1.EndPosition)
	page2 := e.ComputePage(page1.EndPosition)
	require.NotZero(t, page2.EndPosition)

	prevStart := e.GetPreviousPageStart(page2.StartPosition)
	assert.Equal(t, page1.StartPosition, prevStart)
}

func TestRenderLine_JustifyLastLineTreatedAsLeft(t *testing.T) {
	cfg := baseConfig()
	cfg.DefaultAlignment = cssrules.AlignJustify
	e, _ := newEngine(t, "aa bb cc dd", cfg)
	page := e.ComputePage(0)
	require.Len(t, page.Lines, 1)
	// Single logical line that is also the paragraph's last line: justify
	// must be treated as left.
	assert.Equal(t, cssrules.AlignLeft, page.Lines[0].Alignment)
}

func TestRenderLine_RightAlignOffsetsFromMargin(t *testing.T) {
	cfg := baseConfig()
	cfg.DefaultAlignment = cssrules.AlignRight
	cfg.PageWidth = 200
	e, _ := newEngine(t, "hi", cfg)
	page := e.ComputePage(0)
	require.Len(t, page.Lines, 1)
	require.Len(t, page.Lines[0].Words, 1)
	assert.Equal(t, 180, page.Lines[0].Words[0].XOffset) // 200 - len("hi")*10
}
