package wordprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNextWord_Sequence(t *testing.T) {
	c := Open(NewMemSource([]byte("The quick\nbrown fox")))
	var got []string
	for {
		tok, ok := c.GetNextWord()
		if !ok {
			break
		}
		got = append(got, tok.Text)
	}
	assert.Equal(t, []string{"The", " ", "quick", "\n", "brown", " ", "fox"}, got)
}

func TestGetPrevWord_PrependsToOriginal(t *testing.T) {
	stream := "The quick\nbrown fox"
	c := Open(NewMemSource([]byte(stream)))
	c.SetPosition(int64(len(stream)))
	var rebuilt string
	for {
		tok, ok := c.GetPrevWord()
		if !ok {
			break
		}
		rebuilt = tok.Text + rebuilt
	}
	assert.Equal(t, stream, rebuilt)
}

func TestTokenRoundTrip_SeekForwardThenBack(t *testing.T) {
	stream := "hello world\nagain"
	c := Open(NewMemSource([]byte(stream)))

	c.SetPosition(0)
	tok, ok := c.GetNextWord()
	require.True(t, ok)
	assert.Equal(t, "hello", tok.Text)
	pEnd := c.GetCurrentIndex()

	c.SetPosition(pEnd)
	prevTok, ok := c.GetPrevWord()
	require.True(t, ok)
	assert.Equal(t, tok.Text, prevTok.Text)
}

func TestConsumeChars_SkipsCarriageReturn(t *testing.T) {
	c := Open(NewMemSource([]byte("ab\rcd")))
	c.ConsumeChars(3)
	assert.Equal(t, int64(4), c.GetCurrentIndex()) // consumes a,b,c but skips the \r byte itself
}

func TestIsInsideWord(t *testing.T) {
	c := Open(NewMemSource([]byte("foo bar")))
	c.SetPosition(2)
	assert.True(t, c.IsInsideWord())
	c.SetPosition(3)
	assert.False(t, c.IsInsideWord())
}

func TestUngetWord_RestoresPreviousIndex(t *testing.T) {
	c := Open(NewMemSource([]byte("foo bar")))
	start := c.GetCurrentIndex()
	c.GetNextWord()
	c.UngetWord()
	assert.Equal(t, start, c.GetCurrentIndex())
}

func TestPeekChar_OutOfRangeReturnsZero(t *testing.T) {
	c := Open(NewMemSource([]byte("ab")))
	assert.Equal(t, byte('a'), c.PeekChar(0))
	assert.Equal(t, byte(0), c.PeekChar(10))
}

func TestHasNextWord_FalseAtEOF(t *testing.T) {
	c := Open(NewMemSource([]byte("x")))
	c.GetNextWord()
	assert.False(t, c.HasNextWord())
}

func TestProvider_ChapterSwitchResetsPosition(t *testing.T) {
	chapters := []ChapterSource{
		{Name: "ch0", Src: NewMemSource([]byte("aaaa")), Size: 4, CumulativeOffset: 0},
		{Name: "ch1", Src: NewMemSource([]byte("bbbbbb")), Size: 6, CumulativeOffset: 4},
	}
	p := NewProvider(chapters, 0)
	p.Cursor().SetPosition(3)
	p.SetChapter(1)
	assert.Equal(t, int64(0), p.Cursor().GetCurrentIndex())
	assert.Equal(t, "ch1", p.GetChapterName())
}

func TestProvider_GetPercentage_LastChapterEndIsOne(t *testing.T) {
	chapters := []ChapterSource{
		{Name: "ch0", Src: NewMemSource([]byte("aaaa")), Size: 4, CumulativeOffset: 0},
		{Name: "ch1", Src: NewMemSource([]byte("bbbbbb")), Size: 6, CumulativeOffset: 4},
	}
	p := NewProvider(chapters, 0)
	p.SetChapter(1)
	assert.Equal(t, 1.0, p.GetPercentage(6))
}

func TestProvider_AtChapterEnd(t *testing.T) {
	chapters := []ChapterSource{{Name: "ch0", Src: NewMemSource([]byte("ab")), Size: 2, CumulativeOffset: 0}}
	p := NewProvider(chapters, 0)
	assert.False(t, p.AtChapterEnd())
	p.Cursor().SetPosition(2)
	assert.True(t, p.AtChapterEnd())
}
