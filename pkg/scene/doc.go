// Package scene maps graph state to drawable primitives.
//
// # Overview
//
// A [Surface] is a retained-mode scene with four layers, back to front:
//
//   - [LayerLines]: one [Line] per link
//   - [LayerNames]: one [Label] pill per node
//   - [LayerSkeletons]: one [Skeleton] circle per node without a login
//   - [LayerAvatars]: one [Avatar] image per node with a login
//
// A node therefore always has either an avatar or a skeleton, never both.
// Which of names and skeletons is shown is decided by the viewport state;
// the surface only stores the visibility flags.
//
// # Rebuild and Reposition
//
// The engine talks to the surface through the [Renderer] interface.
// RebuildLayer clears a layer and recreates its primitives from
// [LayerData] after the node or link set changed. RepositionLayer re-reads
// node positions into the existing primitives on every simulation tick
// without allocating.
//
// Label pills are sized from measured text: a [Measurer] returns the text
// box, the box is written back to the node, and the pill adds fixed
// padding. [FontMeasurer] uses the Go Regular font; [FixedMeasurer] is a
// monospace approximation.
//
// # Hosting
//
// A [Document] holds [Mount] containers addressable by selector ("#id",
// ".class"). A mount creates or reuses its surface (id "network") and
// notifies observers when resized.
//
//	doc := scene.NewDocument()
//	doc.AddMount("root", 1280, 720)
//	m, ok := doc.Query("#root")
//	s := m.Surface(scene.WithMeasurer(measurer))
//
// # Hit Testing
//
// [Surface.HitTest] maps a screen point through the inverse camera
// transform and returns the topmost label pill under it. Labels are only
// hit while the names layer is visible; organization-owned repositories are
// inert and report Clickable false.
//
// Output formats (SVG, JSON display list, terminal) live in the sink
// subpackage.
package scene
