package scene

import (
	"math"

	"github.com/matzehuels/stargraph/pkg/viewport"
)

// SurfaceID is the element id of the root drawing surface inside a mount.
const SurfaceID = "network"

// Surface is the retained-mode scene: four layers that share one camera
// transform. It implements Renderer.
type Surface struct {
	ID        string
	Width     float64
	Height    float64
	Transform viewport.Transform

	style    Style
	measurer Measurer
	layers   [len(LayerOrder)]*Layer
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithStyle sets the visual constants.
func WithStyle(st Style) SurfaceOption { return func(s *Surface) { s.style = st } }

// WithMeasurer sets the text measurer used for label pills.
func WithMeasurer(m Measurer) SurfaceOption { return func(s *Surface) { s.measurer = m } }

// NewSurface creates an empty surface of the given size. All layers start
// visible except skeletons, matching the Expanded view state.
func NewSurface(w, h float64, opts ...SurfaceOption) *Surface {
	s := &Surface{
		ID:        SurfaceID,
		Width:     w,
		Height:    h,
		Transform: viewport.Identity,
		style:     DefaultStyle(),
	}
	for i, k := range LayerOrder {
		s.layers[i] = &Layer{Kind: k, Visible: k != LayerSkeletons}
	}
	s.apply(opts...)
	return s
}

func (s *Surface) apply(opts ...SurfaceOption) {
	for _, opt := range opts {
		opt(s)
	}
	if s.measurer == nil {
		// Roughly the advance of a 16px sans-serif.
		s.measurer = FixedMeasurer{CharWidth: s.style.FontSize * 0.55, LineHeight: s.style.FontSize * 1.2}
	}
}

// Style returns the surface's visual constants.
func (s *Surface) Style() Style { return s.style }

// Layer returns the layer of the given kind.
func (s *Surface) Layer(kind LayerKind) *Layer {
	if kind < 0 || int(kind) >= len(s.layers) {
		return nil
	}
	return s.layers[kind]
}

// Layers returns all layers back to front.
func (s *Surface) Layers() []*Layer { return s.layers[:] }

// SetSize updates the surface dimensions.
func (s *Surface) SetSize(w, h float64) { s.Width, s.Height = w, h }

// SetTransform implements Renderer. Every layer draws with the same
// transform.
func (s *Surface) SetTransform(t viewport.Transform) { s.Transform = t }

// SetLayerVisible implements Renderer.
func (s *Surface) SetLayerVisible(kind LayerKind, visible bool) {
	if l := s.Layer(kind); l != nil {
		l.Visible = visible
	}
}

// Clear removes every primitive.
func (s *Surface) Clear() {
	for _, l := range s.layers {
		l.clear()
	}
}

// RebuildLayer implements Renderer. The layer is cleared and refilled from
// data, then positioned.
func (s *Surface) RebuildLayer(kind LayerKind, data LayerData) {
	l := s.Layer(kind)
	if l == nil {
		return
	}
	l.clear()
	st := s.style

	switch kind {
	case LayerLines:
		l.Lines = make([]*Line, 0, len(data.Links))
		for _, rl := range data.Links {
			l.Lines = append(l.Lines, &Line{
				SourceID: rl.Source.ID,
				TargetID: rl.Target.ID,
				source:   rl.Source,
				target:   rl.Target,
			})
		}

	case LayerNames:
		l.Labels = make([]*Label, 0, len(data.Nodes))
		for _, n := range data.Nodes {
			text := n.Label()
			w, h := s.measurer.Measure(text)
			n.Box.W, n.Box.H = w, h

			lb := &Label{
				NodeID:    n.ID,
				Text:      text,
				Role:      n.Role(),
				Fill:      st.FillFor(n.Role()),
				TextFill:  st.TextFill,
				Clickable: !n.OrgOwned(),
				Cursor:    "pointer",
				W:         w + st.PadX,
				H:         h + st.PadY,
				RX:        h / 2,
				node:      n,
			}
			if !lb.Clickable {
				lb.Cursor = "default"
			}
			if n.HasLogin() {
				lb.OffsetY = st.UserLabelOffset
			}
			l.Labels = append(l.Labels, lb)
		}

	case LayerSkeletons:
		for _, n := range data.Nodes {
			if n.HasLogin() {
				continue
			}
			l.Skeletons = append(l.Skeletons, &Skeleton{
				NodeID: n.ID,
				R:      st.SkeletonRadius,
				Fill:   st.SkeletonFill,
				node:   n,
			})
		}

	case LayerAvatars:
		for _, n := range data.Nodes {
			if !n.HasLogin() {
				continue
			}
			l.Avatars = append(l.Avatars, &Avatar{
				NodeID: n.ID,
				Href:   n.AvatarURL(),
				Size:   st.AvatarSize,
				node:   n,
			})
		}
	}
	s.RepositionLayer(kind)
}

// RepositionLayer implements Renderer. Positions are read from the nodes
// the primitives were built from.
func (s *Surface) RepositionLayer(kind LayerKind) {
	l := s.Layer(kind)
	if l == nil {
		return
	}
	switch kind {
	case LayerLines:
		for _, ln := range l.Lines {
			ln.X1, ln.Y1 = ln.source.X, ln.source.Y
			ln.X2, ln.Y2 = ln.target.X, ln.target.Y
		}
	case LayerNames:
		for _, lb := range l.Labels {
			x, y := lb.node.X, lb.node.Y+lb.OffsetY
			lb.TextX, lb.TextY = x, y
			lb.X = x - lb.W/2
			lb.Y = y - lb.H/2
		}
	case LayerSkeletons:
		for _, sk := range l.Skeletons {
			sk.CX, sk.CY = sk.node.X, sk.node.Y
		}
	case LayerAvatars:
		for _, av := range l.Avatars {
			av.X = av.node.X - av.Size/2
			av.Y = av.node.Y - av.Size/2
		}
	}
}

// HitTest returns the topmost label under the screen point (sx, sy). Labels
// only receive pointer events while the names layer is visible. The label
// may be inert; callers check Clickable.
func (s *Surface) HitTest(sx, sy float64) (*Label, bool) {
	names := s.Layer(LayerNames)
	if !names.Visible || s.Transform.K == 0 {
		return nil, false
	}
	x, y := s.Transform.Invert(sx, sy)
	for i := len(names.Labels) - 1; i >= 0; i-- {
		if lb := names.Labels[i]; lb.Contains(x, y) {
			return lb, true
		}
	}
	return nil, false
}

// FindLabel returns the label of the node with the given id.
func (s *Surface) FindLabel(id string) (*Label, bool) {
	for _, lb := range s.Layer(LayerNames).Labels {
		if lb.NodeID == id {
			return lb, true
		}
	}
	return nil, false
}

// Bounds returns the world-space extent of every visible primitive. ok is
// false for an empty scene.
func (s *Surface) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	grow := func(x0, y0, x1, y1 float64) {
		minX, minY = math.Min(minX, x0), math.Min(minY, y0)
		maxX, maxY = math.Max(maxX, x1), math.Max(maxY, y1)
		ok = true
	}
	for _, l := range s.layers {
		if !l.Visible {
			continue
		}
		for _, ln := range l.Lines {
			grow(math.Min(ln.X1, ln.X2), math.Min(ln.Y1, ln.Y2), math.Max(ln.X1, ln.X2), math.Max(ln.Y1, ln.Y2))
		}
		for _, lb := range l.Labels {
			grow(lb.X, lb.Y, lb.X+lb.W, lb.Y+lb.H)
		}
		for _, sk := range l.Skeletons {
			grow(sk.CX-sk.R, sk.CY-sk.R, sk.CX+sk.R, sk.CY+sk.R)
		}
		for _, av := range l.Avatars {
			grow(av.X, av.Y, av.X+av.Size, av.Y+av.Size)
		}
	}
	return minX, minY, maxX, maxY, ok
}

// FitTransform returns a transform that fits the visible content into the
// surface with the given margin, never zooming in past maxK.
func (s *Surface) FitTransform(margin, maxK float64) viewport.Transform {
	x0, y0, x1, y1, ok := s.Bounds()
	if !ok {
		return viewport.Identity
	}
	w, h := math.Max(x1-x0, 1), math.Max(y1-y0, 1)
	k := math.Min((s.Width-2*margin)/w, (s.Height-2*margin)/h)
	if maxK > 0 {
		k = math.Min(k, maxK)
	}
	if k <= 0 {
		k = 1
	}
	return viewport.Transform{
		X: s.Width/2 - (x0+w/2)*k,
		Y: s.Height/2 - (y0+h/2)*k,
		K: k,
	}
}
