// Package nodelink renders a social graph as a Graphviz node-link diagram.
//
// # Usage
//
//	dot := nodelink.ToDOT(store, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Options{})
//	png, err := nodelink.RenderPNG(ctx, dot, nodelink.Options{})
//
// # Options
//
//   - Pinned: node positions are taken from the settled simulation and
//     fixed (pos="x,y!"), and the neato engine only routes edges. Otherwise
//     Graphviz lays the graph out with dot.
//   - Detailed: labels include the node id and owner.
//
// Users are drawn as ellipses and repositories as rounded boxes, with the
// fills of the live scene (purple users, blue organization repositories,
// dark personal repositories).
//
// # Dependencies
//
// Rendering runs Graphviz in process through [github.com/goccy/go-graphviz];
// no external binary is needed for SVG or PNG.
package nodelink
