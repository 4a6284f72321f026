// Package render exports a social graph to formats outside the live scene.
//
// The live scene (four layers under a camera) is drawn by package scene and
// its sinks. The [nodelink] subpackage instead writes the graph as a
// Graphviz node-link diagram, either laid out by Graphviz or pinned to the
// positions the force simulation settled on:
//
//	dot := nodelink.ToDOT(store, nodelink.Options{Pinned: true})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Options{Pinned: true})
//
// [nodelink]: github.com/matzehuels/stargraph/pkg/render/nodelink
package render
