// Package measure defines the measurement-function abstraction a host
// renderer implements to expose measure(text) -> width_px, and ships a
// concrete, non-production implementation based on
// github.com/mattn/go-runewidth for CLI tools and tests, since the
// pixel-level font rasterizer is out of scope for this module.
package measure

import "github.com/mattn/go-runewidth"

// Measurer is the capability the layout engine borrows, never owns; a
// layout.Engine holds one for the Engine's lifetime.
type Measurer interface {
	// Measure returns the rendered horizontal advance of text in pixels.
	Measure(text string) int
}

// RuneWidthMeasurer approximates glyph advances using terminal cell widths
// scaled by PixelsPerCell, standing in for a real glyph rasterizer in
// tests and debug tooling.
type RuneWidthMeasurer struct {
	PixelsPerCell int
}

// NewRuneWidthMeasurer returns a RuneWidthMeasurer that scales cell
// widths by pixelsPerCell, or by 10 when pixelsPerCell is not positive.
func NewRuneWidthMeasurer(pixelsPerCell int) *RuneWidthMeasurer {
	if pixelsPerCell <= 0 {
		pixelsPerCell = 10
	}
	return &RuneWidthMeasurer{PixelsPerCell: pixelsPerCell}
}

func (m *RuneWidthMeasurer) Measure(text string) int {
	return runewidth.StringWidth(text) * m.PixelsPerCell
}

// Func adapts a plain function to the Measurer interface.
type Func func(text string) int

func (f Func) Measure(text string) int { return f(text) }
