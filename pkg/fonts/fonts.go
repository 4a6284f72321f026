// Package fonts provides the font used to measure and draw node labels.
//
// The Go Regular typeface ships inside golang.org/x/image, so measurement
// works without any system fonts installed.
package fonts

import (
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontFamily is the CSS font-family name used in SVG output.
const FontFamily = "Go"

// FallbackFontFamily lists fallbacks for viewers without the embedded font.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

// DefaultSize is the label font size in user units.
const DefaultSize = 16.0

// RegularTTF returns the TrueType font data.
func RegularTTF() []byte {
	return goregular.TTF
}

var (
	ttfBase64     string
	ttfBase64Once sync.Once

	parsed    *opentype.Font
	parseErr  error
	parseOnce sync.Once
)

// RegularTTFBase64 returns the TrueType data as a base64 string for
// embedding in @font-face rules. The result is cached after first use.
func RegularTTFBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}

// Face returns a new face of the regular font at the given size (72 DPI,
// so one point is one user unit). Faces are not safe for concurrent use.
func Face(size float64) (font.Face, error) {
	parseOnce.Do(func() {
		parsed, parseErr = opentype.Parse(goregular.TTF)
	})
	if parseErr != nil {
		return nil, fmt.Errorf("parse font: %w", parseErr)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return face, nil
}

// Measure returns the advance width and line height of text set in face.
func Measure(face font.Face, text string) (w, h float64) {
	m := face.Metrics()
	return toFloat(font.MeasureString(face, text)), toFloat(m.Ascent + m.Descent)
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
