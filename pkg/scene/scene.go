package scene

import (
	"fmt"

	"github.com/matzehuels/stargraph/pkg/graph"
	"github.com/matzehuels/stargraph/pkg/viewport"
)

// LayerKind identifies one of the four scene layers.
type LayerKind int

const (
	// LayerLines holds one line per link.
	LayerLines LayerKind = iota
	// LayerNames holds the label pills.
	LayerNames
	// LayerSkeletons holds the dots drawn in place of labels when zoomed out.
	LayerSkeletons
	// LayerAvatars holds user avatar images.
	LayerAvatars
)

// LayerOrder lists the layers back to front.
var LayerOrder = [...]LayerKind{LayerLines, LayerNames, LayerSkeletons, LayerAvatars}

func (k LayerKind) String() string {
	switch k {
	case LayerLines:
		return "lines"
	case LayerNames:
		return "names"
	case LayerSkeletons:
		return "skeletons"
	case LayerAvatars:
		return "avatars"
	default:
		return fmt.Sprintf("layer(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k LayerKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Renderer is the drawing backend the engine talks to. Rebuild replaces a
// layer's primitives after a structural change; Reposition re-reads node
// positions without allocating.
type Renderer interface {
	RebuildLayer(kind LayerKind, data LayerData)
	RepositionLayer(kind LayerKind)
	SetLayerVisible(kind LayerKind, visible bool)
	SetTransform(t viewport.Transform)
}

// ResolvedLink is a link whose endpoints have been looked up.
type ResolvedLink struct {
	Source, Target *graph.Node
}

// LayerData is the graph state a layer is rebuilt from.
type LayerData struct {
	Nodes []*graph.Node
	Links []ResolvedLink
}

// DataFromStore resolves the store's links against its nodes. Links whose
// endpoints are missing are dropped.
func DataFromStore(s *graph.Store) LayerData {
	d := LayerData{Nodes: s.Nodes()}
	for _, l := range s.Links() {
		src, ok1 := s.Node(l.Source)
		dst, ok2 := s.Node(l.Target)
		if ok1 && ok2 {
			d.Links = append(d.Links, ResolvedLink{Source: src, Target: dst})
		}
	}
	return d
}

// Line connects the centres of two nodes.
type Line struct {
	SourceID string  `json:"source"`
	TargetID string  `json:"target"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`

	source, target *graph.Node
}

// Label is a text pill: a rounded rectangle sized to the measured text plus
// padding, with the text centred inside it.
type Label struct {
	NodeID    string     `json:"id"`
	Text      string     `json:"text"`
	Role      graph.Role `json:"-"`
	Fill      string     `json:"fill"`
	TextFill  string     `json:"textFill"`
	Clickable bool       `json:"clickable"`
	Cursor    string     `json:"cursor"`
	// OffsetY shifts the pill below the node centre (user labels sit under
	// the avatar).
	OffsetY float64 `json:"offsetY"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	W       float64 `json:"w"`
	H       float64 `json:"h"`
	RX      float64 `json:"rx"`
	TextX   float64 `json:"textX"`
	TextY   float64 `json:"textY"`

	node *graph.Node
}

// Contains reports whether the world point (x, y) lies inside the pill.
func (l *Label) Contains(x, y float64) bool {
	return x >= l.X && x <= l.X+l.W && y >= l.Y && y <= l.Y+l.H
}

// Node returns the node the label belongs to.
func (l *Label) Node() *graph.Node { return l.node }

// Skeleton is the collapsed placeholder of a node without a login.
type Skeleton struct {
	NodeID string  `json:"id"`
	CX     float64 `json:"cx"`
	CY     float64 `json:"cy"`
	R      float64 `json:"r"`
	Fill   string  `json:"fill"`

	node *graph.Node
}

// Avatar is a circular image centred on a user node. X and Y are the
// top-left corner of its square.
type Avatar struct {
	NodeID string  `json:"id"`
	Href   string  `json:"href"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size"`

	node *graph.Node
}

// Layer is one group of the scene. Only the slice matching Kind is used.
type Layer struct {
	Kind      LayerKind   `json:"kind"`
	Visible   bool        `json:"visible"`
	Lines     []*Line     `json:"lines,omitempty"`
	Labels    []*Label    `json:"labels,omitempty"`
	Skeletons []*Skeleton `json:"skeletons,omitempty"`
	Avatars   []*Avatar   `json:"avatars,omitempty"`
}

// Len returns the number of primitives in the layer.
func (l *Layer) Len() int {
	return len(l.Lines) + len(l.Labels) + len(l.Skeletons) + len(l.Avatars)
}

func (l *Layer) clear() {
	l.Lines, l.Labels, l.Skeletons, l.Avatars = nil, nil, nil, nil
}
