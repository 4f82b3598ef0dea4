package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuneWidthMeasurer_ScalesWithLength(t *testing.T) {
	m := NewRuneWidthMeasurer(10)
	assert.Equal(t, 0, m.Measure(""))
	assert.Equal(t, 50, m.Measure("hello"))
}

func TestFunc_Adapter(t *testing.T) {
	var m Measurer = Func(func(text string) int { return len(text) * 2 })
	assert.Equal(t, 8, m.Measure("word"))
}
