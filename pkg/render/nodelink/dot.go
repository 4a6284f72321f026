package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stargraph/pkg/graph"
	"github.com/matzehuels/stargraph/pkg/scene"
)

// pointsPerUnit scales simulation units to Graphviz points for pinned
// layouts. Graphviz reads pos in points when the graph has no scale.
const pointsPerUnit = 0.5

// Options configures node-link diagram rendering.
type Options struct {
	// Pinned fixes nodes at their simulated positions and renders with
	// neato. When false, dot computes the layout.
	Pinned bool

	// Detailed includes ids and owners in node labels.
	Detailed bool

	// Style supplies the fills. The zero value means scene.DefaultStyle().
	Style scene.Style
}

func (o Options) style() scene.Style {
	if o.Style.UserFill == "" {
		return scene.DefaultStyle()
	}
	return o.Style
}

// ToDOT converts the store to Graphviz DOT. Links are undirected stars, so
// the graph is a "graph" with "--" edges.
func ToDOT(s *graph.Store, opts Options) string {
	st := opts.style()

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Pinned {
		buf.WriteString("  overlap=true;\n  splines=true;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n  ranksep=1.0;\n  nodesep=0.4;\n")
	}
	fmt.Fprintf(&buf, "  node [style=\"rounded,filled\", fontcolor=%q, fontname=\"Helvetica\", fontsize=14];\n", st.TextFill)
	fmt.Fprintf(&buf, "  edge [color=%q];\n\n", st.LineStroke)

	for _, n := range s.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts, st), ", "))
	}

	buf.WriteString("\n")
	for _, l := range s.Links() {
		fmt.Fprintf(&buf, "  %q -- %q;\n", l.Source, l.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *graph.Node, opts Options, st scene.Style) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
		fmt.Sprintf("fillcolor=%q", st.FillFor(n.Role())),
	}
	if n.HasLogin() {
		attrs = append(attrs, "shape=ellipse")
	} else {
		attrs = append(attrs, "shape=box")
	}
	if opts.Pinned {
		// Graphviz's y axis points up.
		attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.Body.X*pointsPerUnit, -n.Body.Y*pointsPerUnit))
	}
	if name := n.Name(); n.HasLogin() && name != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", name))
	}
	return attrs
}

func fmtLabel(n *graph.Node, detailed bool) string {
	label := n.Label()
	if !detailed {
		return label
	}
	parts := []string{label, "id: " + n.ID}
	if owner, ok := n.Owner(); ok {
		parts = append(parts, "owner: "+owner.Login)
	}
	return strings.Join(parts, "\n")
}

func layoutFor(opts Options) graphviz.Layout {
	if opts.Pinned {
		return graphviz.NEATO
	}
	return graphviz.DOT
}

func render(ctx context.Context, dot string, opts Options, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(layoutFor(opts))

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderSVG renders DOT source to SVG with a normalized viewBox.
func RenderSVG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	svg, err := render(ctx, dot, opts, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	return render(ctx, dot, opts, graphviz.PNG)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's root tag, which sizes the image in
// points, with one sized in user units.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
