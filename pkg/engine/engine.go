package engine

import (
	"fmt"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/stargraph/pkg/errors"
	"github.com/matzehuels/stargraph/pkg/force"
	"github.com/matzehuels/stargraph/pkg/graph"
	"github.com/matzehuels/stargraph/pkg/observability"
	"github.com/matzehuels/stargraph/pkg/scene"
	"github.com/matzehuels/stargraph/pkg/social"
	"github.com/matzehuels/stargraph/pkg/viewport"
)

var (
	// ErrMountNotFound is returned by New when the selector matches no
	// mount point.
	ErrMountNotFound = errs.New(errs.ErrCodeMountNotFound, "mount point not found")

	// ErrClosed is returned for work submitted after Close.
	ErrClosed = errs.New(errs.ErrCodeEngineClosed, "engine closed")
)

// Force names installed by the engine.
const (
	ForceCharge  = "charge"
	ForceCenter  = "center"
	ForceLink    = "link"
	ForceCollide = "collide"
)

// Engine renders one social graph into a mount point. It is not safe for
// concurrent use; drive it from one goroutine or through a Loop.
type Engine struct {
	cfg   Config
	log   *log.Logger
	hooks observability.EngineHooks

	mount        *scene.Mount
	surface      *scene.Surface
	measurer     scene.Measurer
	ownsMeasurer bool
	unobserve    func()
	onResize     func(w, h float64)

	store  *graph.Store
	sim    *force.Simulation
	center *force.Center
	view   *viewport.Controller
	ticks  int

	onRepo []func(ClickRepo)
	onUser []func(ClickUser)

	closed bool
}

// New mounts an engine into the first container of doc matching selector.
// The mount's drawing surface is created or reused and sized to the
// container.
func New(doc *scene.Document, selector string, opts ...Option) (*Engine, error) {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	var mount *scene.Mount
	if doc != nil {
		mount, _ = doc.Query(selector)
	}
	if mount == nil {
		return nil, fmt.Errorf("%w: %q", ErrMountNotFound, selector)
	}

	policy, err := graph.ParseIngestPolicy(o.cfg.IngestPolicy)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "engine config")
	}
	if o.policy != nil {
		policy = *o.policy
	}

	e := &Engine{
		cfg:   o.cfg,
		log:   o.logger,
		hooks: o.hooks,
		mount: mount,
		store: graph.New(policy),
		sim:   force.New(),
	}
	if e.log == nil {
		e.log = log.Default()
	}
	if e.hooks == nil {
		e.hooks = observability.Engine()
	}

	e.measurer = o.measurer
	if e.measurer == nil {
		fm, err := scene.NewFontMeasurer(o.cfg.Style.FontSize)
		if err != nil {
			e.log.Warn("font unavailable, using fixed metrics", "err", err)
		} else {
			e.measurer, e.ownsMeasurer = fm, true
		}
	}
	surfaceOpts := []scene.SurfaceOption{scene.WithStyle(o.cfg.Style)}
	if e.measurer != nil {
		surfaceOpts = append(surfaceOpts, scene.WithMeasurer(e.measurer))
	}
	e.surface = mount.Surface(surfaceOpts...)

	w, h := mount.Size()
	e.view = viewport.New(o.cfg.Viewport, w, h)
	e.applyChange(e.view.Apply(e.view.Transform()))

	e.sim.SetAlphaDecay(o.cfg.AlphaDecay)
	e.sim.SetAlphaMin(o.cfg.AlphaMin)
	e.sim.SetVelocityDecay(o.cfg.VelocityDecay)
	e.sim.SetSeed(o.cfg.Seed)
	e.sim.OnTick(e.reposition)
	e.sim.OnEnd(func() {
		e.log.Debug("layout settled", "ticks", e.ticks)
		e.hooks.OnSettle(e.ticks)
	})

	e.onResize = e.Resize
	e.unobserve = mount.Observe(func(w, h float64) { e.onResize(w, h) })

	e.log.Debug("engine mounted", "selector", selector, "width", w, "height", h)
	return e, nil
}

// Ingest merges one query result and re-renders: forces are recomputed,
// all four layers rebuilt, the camera reset and the simulation re-heated.
// Nil or id-less payloads and payloads that change nothing are ignored.
func (e *Engine) Ingest(u *social.UserWithRepos) {
	if e.closed || !u.Valid() {
		return
	}
	res := e.store.Ingest(u)
	e.hooks.OnIngest(res.NodesAdded, res.LinksAdded, res.Skipped)
	if res.Skipped || !res.Changed() {
		e.log.Debug("ingest unchanged", "id", u.ID, "login", u.Login, "skipped", res.Skipped)
		return
	}
	e.log.Info("ingested",
		"login", u.Login,
		"nodes", res.NodesAdded,
		"links", res.LinksAdded,
		"total_nodes", e.store.NodeCount())

	if err := e.rebuildForces(); err != nil {
		e.log.Error("update forces", "err", err)
		return
	}
	data := scene.DataFromStore(e.store)
	for _, k := range scene.LayerOrder {
		e.surface.RebuildLayer(k, data)
	}
	e.applyChange(e.view.Reset())

	e.ticks = 0
	e.sim.SetAlpha(e.cfg.Alpha)
	e.sim.Restart()
}

func (e *Engine) rebuildForces() error {
	if err := e.sim.SetNodes(e.store.Bodies()); err != nil {
		return err
	}
	cx, cy := e.view.Center()
	e.center = force.NewCenter(cx, cy)

	forces := []struct {
		name string
		f    force.Force
	}{
		{ForceCharge, force.NewManyBody(e.cfg.ChargeStrength)},
		{ForceCenter, e.center},
		{ForceLink, force.NewLink(e.store.Edges(), e.cfg.LinkDistance)},
		{ForceCollide, force.NewCollide(e.cfg.CollideRadius)},
	}
	for _, f := range forces {
		if err := e.sim.SetForce(f.name, f.f); err != nil {
			return err
		}
	}
	return nil
}

// Tick runs one simulation step and repositions every layer. It returns
// false once the simulation has cooled.
func (e *Engine) Tick() bool {
	if e.closed {
		return false
	}
	return e.sim.Step()
}

// Settle steps the simulation until it cools or MaxSettleSteps is reached
// and returns the number of steps taken.
func (e *Engine) Settle() int {
	if e.closed {
		return 0
	}
	return e.sim.Settle(e.cfg.MaxSettleSteps)
}

// Alive reports whether the simulation still has energy.
func (e *Engine) Alive() bool { return !e.closed && e.sim.Alive() }

func (e *Engine) reposition() {
	e.ticks++
	for _, k := range scene.LayerOrder {
		e.surface.RepositionLayer(k)
	}
}

// =============================================================================
// Viewport
// =============================================================================

// Apply sets the camera transform. Crossing the zoom threshold swaps the
// names and skeletons layers.
func (e *Engine) Apply(t viewport.Transform) viewport.Change {
	if e.closed {
		return e.current()
	}
	return e.applyChange(e.view.Apply(t))
}

// Pan moves the camera by (dx, dy) screen units.
func (e *Engine) Pan(dx, dy float64) viewport.Change {
	if e.closed {
		return e.current()
	}
	return e.applyChange(e.view.Pan(dx, dy))
}

// ZoomAt scales the camera by factor around the screen point (px, py).
func (e *Engine) ZoomAt(factor, px, py float64) viewport.Change {
	if e.closed {
		return e.current()
	}
	return e.applyChange(e.view.ZoomAt(factor, px, py))
}

// ZoomTo sets the camera scale around the viewport centre.
func (e *Engine) ZoomTo(k float64) viewport.Change {
	if e.closed {
		return e.current()
	}
	return e.applyChange(e.view.ZoomTo(k))
}

// ResetCamera restores the initial framing.
func (e *Engine) ResetCamera() viewport.Change {
	if e.closed {
		return e.current()
	}
	return e.applyChange(e.view.Reset())
}

func (e *Engine) current() viewport.Change {
	return viewport.Change{Transform: e.view.Transform(), State: e.view.State()}
}

func (e *Engine) applyChange(c viewport.Change) viewport.Change {
	e.surface.SetTransform(c.Transform)
	e.surface.SetLayerVisible(scene.LayerNames, e.view.LabelsVisible())
	e.surface.SetLayerVisible(scene.LayerSkeletons, e.view.SkeletonsVisible())
	if c.Toggled {
		e.log.Debug("view toggled", "state", c.State, "k", c.Transform.K)
		e.hooks.OnViewToggle(c.State.String())
	}
	return c
}

// Resize updates the viewport size and moves the centering force to the
// new midpoint. The layout is not re-heated.
func (e *Engine) Resize(w, h float64) {
	if e.closed {
		return
	}
	e.view.Resize(w, h)
	e.surface.SetSize(w, h)
	if e.center != nil {
		e.center.SetCenter(e.view.Center())
	}
}

// =============================================================================
// Clicks
// =============================================================================

// Click handles a pointer click at screen coordinates. It reports whether
// a notification was emitted.
func (e *Engine) Click(sx, sy float64) bool {
	if e.closed {
		return false
	}
	lb, ok := e.surface.HitTest(sx, sy)
	if !ok || !lb.Clickable {
		return false
	}
	return e.click(lb.Node())
}

// ClickNode handles a click on the label of the node with the given id.
func (e *Engine) ClickNode(id string) bool {
	if e.closed {
		return false
	}
	n, ok := e.store.Node(id)
	if !ok {
		return false
	}
	return e.click(n)
}

func (e *Engine) click(n *graph.Node) bool {
	if n.HasLogin() {
		e.emitUser(ClickUser{Username: n.Login(), Node: n})
		return true
	}
	owner, ok := n.Owner()
	if !ok || owner.IsInOrganization || owner.Login == "" {
		return false
	}
	if e.cfg.ReuseResolvedOwners {
		if known, ok := e.store.Node(owner.ID); ok && known.Kind == social.KindUser {
			e.emitUser(ClickUser{Username: owner.Login, Node: known})
			return true
		}
	}
	e.emitRepo(ClickRepo{Username: owner.Login})
	return true
}

// =============================================================================
// Accessors
// =============================================================================

// Store returns the engine's graph. Callers must not mutate it.
func (e *Engine) Store() *graph.Store { return e.store }

// Surface returns the scene the engine draws into.
func (e *Engine) Surface() *scene.Surface { return e.surface }

// Viewport returns the camera controller.
func (e *Engine) Viewport() *viewport.Controller { return e.view }

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Snapshot is a read-only summary of the engine state.
type Snapshot struct {
	Nodes     int                `json:"nodes"`
	Links     int                `json:"links"`
	Alpha     float64            `json:"alpha"`
	Alive     bool               `json:"alive"`
	State     string             `json:"state"`
	Transform viewport.Transform `json:"transform"`
	Closed    bool               `json:"closed"`
}

// Snapshot returns the current counters.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Nodes:     e.store.NodeCount(),
		Links:     e.store.LinkCount(),
		Alpha:     e.sim.Alpha(),
		Alive:     e.Alive(),
		State:     e.view.State().String(),
		Transform: e.view.Transform(),
		Closed:    e.closed,
	}
}

// Closed reports whether Close has been called.
func (e *Engine) Closed() bool { return e.closed }

// Close stops the simulation, detaches from the mount, clears the surface
// and drops the graph. Later calls are no-ops.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.sim.Stop()
	if e.unobserve != nil {
		e.unobserve()
	}
	e.mount.Clear()
	e.store.Reset()
	e.onRepo, e.onUser = nil, nil
	e.log.Debug("engine closed")
	if c, ok := e.measurer.(interface{ Close() error }); ok && e.ownsMeasurer {
		return c.Close()
	}
	return nil
}
