package viewport

import (
	"fmt"
	"math"
	"strconv"
)

// Transform is a uniform scale K followed by a translation (X, Y):
// screen = world*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the transform that leaves coordinates unchanged.
var Identity = Transform{K: 1}

// Apply maps a world point to screen coordinates.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert maps a screen point back to world coordinates.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return (x - t.X) / t.K, (y - t.Y) / t.K
}

// String formats the transform as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%s,%s) scale(%s)", num(t.X), num(t.Y), num(t.K))
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// State is the level-of-detail mode of the view.
type State int

const (
	// Expanded shows label pills and hides skeletons.
	Expanded State = iota
	// Collapsed shows skeletons and hides label pills.
	Collapsed
)

func (s State) String() string {
	if s == Collapsed {
		return "collapsed"
	}
	return "expanded"
}

// Config holds the zoom limits and the initial camera.
type Config struct {
	MinZoom     float64 `toml:"min_zoom" json:"minZoom" validate:"gt=0"`
	MaxZoom     float64 `toml:"max_zoom" json:"maxZoom" validate:"gtfield=MinZoom"`
	Threshold   float64 `toml:"threshold" json:"threshold" validate:"gt=0"`
	InitialZoom float64 `toml:"initial_zoom" json:"initialZoom" validate:"gt=0"`
	// Anchor places the initial camera at (w*Anchor, h*Anchor).
	Anchor float64 `toml:"anchor" json:"anchor" validate:"gt=0,lt=1"`
}

// AnchorCenter and AnchorThird are the two supported initial framings.
const (
	AnchorCenter = 0.5
	AnchorThird  = 1.0 / 3
)

// DefaultConfig returns the reference limits: zoom in [0.1, 2], threshold
// 0.5, initial zoom 0.3 centred in the viewport.
func DefaultConfig() Config {
	return Config{
		MinZoom:     0.1,
		MaxZoom:     2,
		Threshold:   0.5,
		InitialZoom: 0.3,
		Anchor:      AnchorCenter,
	}
}

// Change is the outcome of applying a transform.
type Change struct {
	Transform Transform
	// Toggled is set when the state flipped and layer visibility must change.
	Toggled bool
	State   State
}

// Controller tracks the camera and the Expanded/Collapsed state.
//
// The state only flips when the scale crosses the threshold in the
// direction that leaves the current band: below it while Expanded, above it
// while Collapsed. Repeated events inside one band never re-toggle.
type Controller struct {
	cfg   Config
	t     Transform
	state State
	w, h  float64
}

// New creates a controller for a viewport of size w×h. The camera starts
// at the identity transform in the Expanded state.
func New(cfg Config, w, h float64) *Controller {
	return &Controller{cfg: cfg, t: Identity, state: Expanded, w: w, h: h}
}

// Config returns the controller's configuration.
func (c *Controller) Config() Config { return c.cfg }

// Transform returns the last applied transform.
func (c *Controller) Transform() Transform { return c.t }

// State returns the current mode.
func (c *Controller) State() State { return c.state }

// LabelsVisible reports whether label pills are shown.
func (c *Controller) LabelsVisible() bool { return c.state == Expanded }

// SkeletonsVisible reports whether skeleton circles are shown.
func (c *Controller) SkeletonsVisible() bool { return c.state == Collapsed }

// Size returns the cached viewport dimensions.
func (c *Controller) Size() (w, h float64) { return c.w, c.h }

// Center returns the midpoint of the viewport.
func (c *Controller) Center() (x, y float64) { return c.w / 2, c.h / 2 }

// Apply clamps the scale into [MinZoom, MaxZoom], stores the transform and
// updates the state.
func (c *Controller) Apply(t Transform) Change {
	if math.IsNaN(t.K) || t.K <= 0 {
		t.K = c.t.K
	}
	t.K = clamp(t.K, c.cfg.MinZoom, c.cfg.MaxZoom)
	c.t = t

	toggled := false
	switch {
	case t.K < c.cfg.Threshold && c.state == Expanded:
		c.state, toggled = Collapsed, true
	case t.K > c.cfg.Threshold && c.state == Collapsed:
		c.state, toggled = Expanded, true
	}
	return Change{Transform: t, Toggled: toggled, State: c.state}
}

// Pan translates the view by (dx, dy) screen units.
func (c *Controller) Pan(dx, dy float64) Change {
	t := c.t
	t.X += dx
	t.Y += dy
	return c.Apply(t)
}

// ZoomAt scales the view by factor while keeping the screen point (px, py)
// over the same world point.
func (c *Controller) ZoomAt(factor, px, py float64) Change {
	k := clamp(c.t.K*factor, c.cfg.MinZoom, c.cfg.MaxZoom)
	wx, wy := c.t.Invert(px, py)
	return c.Apply(Transform{X: px - wx*k, Y: py - wy*k, K: k})
}

// ZoomTo sets the scale, keeping the viewport centre fixed.
func (c *Controller) ZoomTo(k float64) Change {
	if c.t.K == 0 {
		return c.Apply(Transform{K: k})
	}
	cx, cy := c.Center()
	return c.ZoomAt(k/c.t.K, cx, cy)
}

// Initial returns the default framing: the configured zoom translated to
// the anchor point of the viewport.
func (c *Controller) Initial() Transform {
	return Transform{X: c.w * c.cfg.Anchor, Y: c.h * c.cfg.Anchor, K: c.cfg.InitialZoom}
}

// Reset applies the default framing. It runs through Apply, so an initial
// zoom below the threshold collapses the view.
func (c *Controller) Reset() Change { return c.Apply(c.Initial()) }

// Resize updates the cached dimensions. The camera is left alone.
func (c *Controller) Resize(w, h float64) {
	c.w, c.h = w, h
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
