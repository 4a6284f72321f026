package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/stargraph/pkg/fonts"
	"github.com/matzehuels/stargraph/pkg/scene"
	"github.com/matzehuels/stargraph/pkg/viewport"
)

const labelCSS = `
    #names g[data-clickable="true"] rect { transition: opacity 0.2s ease; }
    #names g[data-clickable="true"]:hover rect { opacity: 0.8; }`

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	fit        bool
	margin     float64
	maxZoom    float64
	embedFont  bool
	background string
}

// WithFitContent replaces the surface's camera with one that frames every
// visible primitive, leaving margin units on each side.
func WithFitContent(margin float64) SVGOption {
	return func(r *svgRenderer) { r.fit, r.margin = true, margin }
}

// WithMaxZoom caps the scale chosen by WithFitContent.
func WithMaxZoom(k float64) SVGOption { return func(r *svgRenderer) { r.maxZoom = k } }

// WithEmbeddedFont inlines the label font as an @font-face rule.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// WithBackground fills the canvas with a solid colour.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// RenderSVG writes the surface as a standalone SVG document. Each layer
// becomes a <g> carrying the shared transform; hidden layers are emitted
// with display="none" so the document can toggle them.
func RenderSVG(s *scene.Surface, opts ...SVGOption) []byte {
	r := svgRenderer{maxZoom: 2}
	for _, opt := range opts {
		opt(&r)
	}

	t := s.Transform
	if r.fit {
		t = s.FitTransform(r.margin, r.maxZoom)
	}
	st := s.Style()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" id="%s" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		EscapeXML(s.ID), s.Width, s.Height, s.Width, s.Height)
	renderDefs(&buf, r)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", EscapeXML(r.background))
	}

	for _, l := range s.Layers() {
		openGroup(&buf, l, t)
		switch l.Kind {
		case scene.LayerLines:
			for _, ln := range l.Lines {
				fmt.Fprintf(&buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%g" stroke-width="%g"/>`+"\n",
					ln.X1, ln.Y1, ln.X2, ln.Y2, EscapeXML(st.LineStroke), st.LineOpacity, st.LineWidth)
			}
		case scene.LayerNames:
			for _, lb := range l.Labels {
				renderLabel(&buf, lb, st)
			}
		case scene.LayerSkeletons:
			for _, sk := range l.Skeletons {
				fmt.Fprintf(&buf, `    <circle data-id="%s" cx="%.2f" cy="%.2f" r="%g" fill="%s"/>`+"\n",
					EscapeXML(sk.NodeID), sk.CX, sk.CY, sk.R, EscapeXML(sk.Fill))
			}
		case scene.LayerAvatars:
			for _, av := range l.Avatars {
				fmt.Fprintf(&buf, `    <image data-id="%s" href="%s" x="%.2f" y="%.2f" width="%g" height="%g" clip-path="url(#avatar-clip)"/>`+"\n",
					EscapeXML(av.NodeID), EscapeXML(av.Href), av.X, av.Y, av.Size, av.Size)
			}
		}
		buf.WriteString("  </g>\n")
	}

	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", labelCSS)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, r svgRenderer) {
	buf.WriteString("  <defs>\n")
	if r.embedFont {
		fmt.Fprintf(buf, "    <style>@font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }</style>\n",
			fonts.FontFamily, fonts.RegularTTFBase64())
	}
	buf.WriteString(`    <clipPath id="avatar-clip" clipPathUnits="objectBoundingBox"><circle cx="0.5" cy="0.5" r="0.5"/></clipPath>` + "\n")
	buf.WriteString("  </defs>\n")
}

func openGroup(buf *bytes.Buffer, l *scene.Layer, t viewport.Transform) {
	display := ""
	if !l.Visible {
		display = ` display="none"`
	}
	fmt.Fprintf(buf, `  <g id="%s" transform="%s"%s>`+"\n", l.Kind, t, display)
}

func renderLabel(buf *bytes.Buffer, lb *scene.Label, st scene.Style) {
	fmt.Fprintf(buf, `    <g data-id="%s" data-clickable="%t" style="cursor: %s">`+"\n",
		EscapeXML(lb.NodeID), lb.Clickable, EscapeXML(lb.Cursor))
	fmt.Fprintf(buf, `      <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" ry="%.2f" fill="%s"/>`+"\n",
		lb.X, lb.Y, lb.W, lb.H, lb.RX, lb.RX, EscapeXML(lb.Fill))
	fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" fill="%s" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%g">%s</text>`+"\n",
		lb.TextX, lb.TextY, EscapeXML(lb.TextFill), fonts.FallbackFontFamily, st.FontSize, EscapeXML(lb.Text))
	buf.WriteString("    </g>\n")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes s for use in XML text and attribute values.
func EscapeXML(s string) string { return xmlEscaper.Replace(s) }
