package xmlpull

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_ForwardSequence(t *testing.T) {
	doc := `<p class="c">Hello <b>bold</b> world</p>`
	p := Open(NewMemSource([]byte(doc)))

	var types []NodeType
	var names []string
	for p.Read() {
		types = append(types, p.NodeType())
		names = append(names, p.Name())
	}

	assert.Equal(t, []NodeType{Element, Text, Element, Text, EndElement, Text, EndElement}, types)
	assert.Equal(t, []string{"p", "", "b", "", "b", "", "p"}, names)
}

func TestRead_Attribute(t *testing.T) {
	doc := `<p class="c" data-x='1'>hi</p>`
	p := Open(NewMemSource([]byte(doc)))
	require.True(t, p.Read())
	assert.Equal(t, Element, p.NodeType())
	v, ok := p.Attribute("CLASS")
	require.True(t, ok)
	assert.Equal(t, "c", v)
	v, ok = p.Attribute("data-x")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestRead_SelfClosingAndVoid(t *testing.T) {
	doc := `<p>a<br>b<hr/>c</p>`
	p := Open(NewMemSource([]byte(doc)))

	var empties []bool
	var names []string
	for p.Read() {
		if p.NodeType() == Element {
			empties = append(empties, p.IsEmptyElement())
			names = append(names, p.Name())
		}
	}
	assert.Equal(t, []string{"p", "br", "hr"}, names)
	assert.Equal(t, []bool{false, true, true}, empties)
}

func TestRead_WhitespaceOnlyTextSkipped(t *testing.T) {
	doc := "<p> \n\t </p>"
	p := Open(NewMemSource([]byte(doc)))

	var types []NodeType
	for p.Read() {
		types = append(types, p.NodeType())
	}
	assert.Equal(t, []NodeType{Element, EndElement}, types)
}

func TestReadBackward_MirrorsForward(t *testing.T) {
	doc := `<p>Hello <b>world</b></p>`
	src := NewMemSource([]byte(doc))

	forward := Open(src)
	var fwdTypes []NodeType
	var fwdNames []string
	for forward.Read() {
		fwdTypes = append(fwdTypes, forward.NodeType())
		fwdNames = append(fwdNames, forward.Name())
	}

	backward := Open(src)
	backward.SeekToFilePosition(int64(len(doc)))
	var bwdTypes []NodeType
	var bwdNames []string
	for backward.ReadBackward() {
		bwdTypes = append(bwdTypes, backward.NodeType())
		bwdNames = append(bwdNames, backward.Name())
	}
	// Reverse the backward-collected slices for comparison.
	for i, j := 0, len(bwdTypes)-1; i < j; i, j = i+1, j-1 {
		bwdTypes[i], bwdTypes[j] = bwdTypes[j], bwdTypes[i]
		bwdNames[i], bwdNames[j] = bwdNames[j], bwdNames[i]
	}

	assert.Equal(t, fwdTypes, bwdTypes)
	assert.Equal(t, fwdNames, bwdNames)
}

func TestTextCharCursor_Forward(t *testing.T) {
	doc := `<p>abc</p>`
	p := Open(NewMemSource([]byte(doc)))
	require.True(t, p.Read()) // <p>
	require.True(t, p.Read()) // text "abc"
	assert.Equal(t, Text, p.NodeType())

	var out []byte
	for p.HasMoreTextChars() {
		b, ok := p.ReadTextCharForward()
		require.True(t, ok)
		out = append(out, b)
	}
	assert.Equal(t, "abc", string(out))
}

func TestSeekToFilePosition_Element(t *testing.T) {
	doc := `<p>Hello <b>world</b></p>`
	p := Open(NewMemSource([]byte(doc)))

	bPos := int64(len("<p>Hello "))
	p.SeekToFilePosition(bPos)
	require.True(t, p.Read())
	assert.Equal(t, Element, p.NodeType())
	assert.Equal(t, "b", p.Name())
}

func TestComment_SkippedContentButNavigable(t *testing.T) {
	doc := `<p>a<!-- note -->b</p>`
	p := Open(NewMemSource([]byte(doc)))

	var types []NodeType
	for p.Read() {
		types = append(types, p.NodeType())
	}
	assert.Contains(t, types, Comment)
}
