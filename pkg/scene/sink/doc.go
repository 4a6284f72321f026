// Package sink serializes a scene.Surface into output formats.
//
// # Formats
//
//   - [RenderSVG]: standalone SVG; one <g> per layer with the shared camera
//     transform, avatars clipped to circles
//   - [RenderJSON]: a [DisplayList] for remote clients
//   - [RenderTerminal]: a coloured character grid for the terminal host
//
// Every sink honours layer visibility, so an exported frame shows label
// pills or skeletons exactly as the viewport state dictates.
//
// # SVG Options
//
//	svg := sink.RenderSVG(surface,
//	    sink.WithFitContent(40),   // frame all content instead of the camera
//	    sink.WithEmbeddedFont(),   // inline Go Regular for portable output
//	    sink.WithBackground("#fff"),
//	)
package sink
