package scene

import (
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"

	"github.com/matzehuels/stargraph/pkg/fonts"
)

// Measurer returns the bounding box of a label's text.
type Measurer interface {
	Measure(text string) (w, h float64)
}

// FontMeasurer measures text with a real font face.
type FontMeasurer struct {
	mu   sync.Mutex
	face font.Face
}

// NewFontMeasurer loads the label font at the given size.
func NewFontMeasurer(size float64) (*FontMeasurer, error) {
	face, err := fonts.Face(size)
	if err != nil {
		return nil, err
	}
	return &FontMeasurer{face: face}, nil
}

// Measure implements Measurer.
func (m *FontMeasurer) Measure(text string) (float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fonts.Measure(m.face, text)
}

// Close releases the font face.
func (m *FontMeasurer) Close() error {
	return m.face.Close()
}

// FixedMeasurer assumes every rune has the same advance. Terminal hosts and
// tests use it where exact metrics do not matter.
type FixedMeasurer struct {
	CharWidth  float64
	LineHeight float64
}

// Measure implements Measurer.
func (m FixedMeasurer) Measure(text string) (float64, float64) {
	return float64(utf8.RuneCountInString(text)) * m.CharWidth, m.LineHeight
}
