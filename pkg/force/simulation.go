package force

import (
	"errors"
	"fmt"
	"math"
)

const (
	initialRadius = 10.0
	// golden angle: π(3-√5)
	initialAngle = math.Pi * (3 - 2.23606797749979)

	// DefaultAlphaMin is the energy below which a simulation stops stepping.
	DefaultAlphaMin = 0.001
	// DefaultVelocityDecay is the fraction of velocity lost per tick.
	DefaultVelocityDecay = 0.4
)

// ErrNodeNotFound is returned when a link references an id that is not
// among the simulation's bodies.
var ErrNodeNotFound = errors.New("node not found")

// Body is the physical state of one simulated node. Graph nodes embed it so
// that the position the simulator writes is the position the renderer reads.
type Body struct {
	ID     string   `json:"id"`
	Index  int      `json:"-"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	VX     float64  `json:"-"`
	VY     float64  `json:"-"`
	FX, FY *float64 `json:"-"` // fixed coordinates, nil when free

	placed bool
}

// SetPosition places the body explicitly. Placed bodies keep their
// coordinates when a simulation (re)initializes its nodes.
func (b *Body) SetPosition(x, y float64) {
	b.X, b.Y = x, y
	b.placed = true
}

// Placed reports whether the body has a position.
func (b *Body) Placed() bool { return b.placed }

// Fix pins the body at (x, y) until Unfix is called.
func (b *Body) Fix(x, y float64) {
	b.FX, b.FY = &x, &y
	b.SetPosition(x, y)
}

// Unfix releases a pinned body.
func (b *Body) Unfix() { b.FX, b.FY = nil, nil }

// Force is one term of the simulation. Initialize is called whenever the
// body set changes or the force is (re)installed; Apply adds to body
// velocities for the current alpha.
type Force interface {
	Initialize(bodies []*Body, rnd *LCG) error
	Apply(alpha float64)
}

// Simulation advances bodies through discrete ticks. It is not safe for
// concurrent use; the engine drives it from a single goroutine.
type Simulation struct {
	bodies        []*Body
	forces        map[string]Force
	order         []string
	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
	rnd           *LCG
	running       bool

	onTick []func()
	onEnd  []func()
}

// New creates a stopped simulation with the standard decay schedule
// (alpha cools from 1 to alphaMin in about 300 ticks).
func New() *Simulation {
	return &Simulation{
		forces:        make(map[string]Force),
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    1 - math.Pow(DefaultAlphaMin, 1.0/300),
		velocityDecay: 1 - DefaultVelocityDecay,
		rnd:           NewLCG(1),
	}
}

// SetNodes replaces the body set. Bodies that are already placed keep their
// positions and velocities; new ones are laid out on a phyllotaxis spiral.
// Every installed force is re-initialized.
func (s *Simulation) SetNodes(bodies []*Body) error {
	s.bodies = bodies
	s.initializeBodies()
	for _, name := range s.order {
		if err := s.forces[name].Initialize(s.bodies, s.rnd); err != nil {
			return fmt.Errorf("force %s: %w", name, err)
		}
	}
	return nil
}

// Nodes returns the simulated bodies in index order.
func (s *Simulation) Nodes() []*Body { return s.bodies }

// SetForce installs f under name, replacing any previous force with that
// name. Forces apply in installation order.
func (s *Simulation) SetForce(name string, f Force) error {
	if f == nil {
		s.RemoveForce(name)
		return nil
	}
	if err := f.Initialize(s.bodies, s.rnd); err != nil {
		return fmt.Errorf("force %s: %w", name, err)
	}
	if _, exists := s.forces[name]; !exists {
		s.order = append(s.order, name)
	}
	s.forces[name] = f
	return nil
}

// Force returns the force installed under name.
func (s *Simulation) Force(name string) (Force, bool) {
	f, ok := s.forces[name]
	return f, ok
}

// RemoveForce uninstalls the named force.
func (s *Simulation) RemoveForce(name string) {
	if _, ok := s.forces[name]; !ok {
		return
	}
	delete(s.forces, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Alpha returns the current energy.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets the current energy.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// SetAlphaMin sets the stop threshold.
func (s *Simulation) SetAlphaMin(a float64) { s.alphaMin = a }

// SetAlphaDecay sets the per-tick interpolation rate toward the target.
func (s *Simulation) SetAlphaDecay(d float64) { s.alphaDecay = d }

// SetAlphaTarget sets the energy alpha decays toward.
func (s *Simulation) SetAlphaTarget(t float64) { s.alphaTarget = t }

// SetVelocityDecay sets the fraction of velocity lost each tick.
func (s *Simulation) SetVelocityDecay(d float64) { s.velocityDecay = 1 - d }

// SetSeed restarts the jiggle generator from seed.
func (s *Simulation) SetSeed(seed uint32) { s.rnd = NewLCG(seed) }

// Restart marks the simulation as running. Positions are untouched.
func (s *Simulation) Restart() { s.running = true }

// Stop halts stepping until the next Restart.
func (s *Simulation) Stop() { s.running = false }

// Alive reports whether Step will advance the simulation.
func (s *Simulation) Alive() bool { return s.running }

// OnTick registers fn to run after every Step.
func (s *Simulation) OnTick(fn func()) { s.onTick = append(s.onTick, fn) }

// OnEnd registers fn to run when the simulation cools below alphaMin.
func (s *Simulation) OnEnd(fn func()) { s.onEnd = append(s.onEnd, fn) }

// Step performs one scheduled tick, notifies tick listeners and stops the
// simulation once alpha drops below alphaMin. It returns whether the
// simulation is still running.
func (s *Simulation) Step() bool {
	if !s.running {
		return false
	}
	s.tick()
	for _, fn := range s.onTick {
		fn()
	}
	if s.alpha < s.alphaMin {
		s.running = false
		for _, fn := range s.onEnd {
			fn()
		}
	}
	return s.running
}

// Tick advances n ticks without scheduling checks or listeners.
func (s *Simulation) Tick(n int) {
	for range n {
		s.tick()
	}
}

// Settle steps until the simulation cools or maxSteps is reached and
// returns the number of steps taken.
func (s *Simulation) Settle(maxSteps int) int {
	steps := 0
	for steps < maxSteps && s.Step() {
		steps++
	}
	return steps
}

func (s *Simulation) tick() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, name := range s.order {
		s.forces[name].Apply(s.alpha)
	}

	for _, b := range s.bodies {
		if b.FX == nil {
			b.VX *= s.velocityDecay
			b.X += b.VX
		} else {
			b.X, b.VX = *b.FX, 0
		}
		if b.FY == nil {
			b.VY *= s.velocityDecay
			b.Y += b.VY
		} else {
			b.Y, b.VY = *b.FY, 0
		}
	}
}

func (s *Simulation) initializeBodies() {
	for i, b := range s.bodies {
		b.Index = i
		if b.FX != nil {
			b.X = *b.FX
		}
		if b.FY != nil {
			b.Y = *b.FY
		}
		if !b.placed || math.IsNaN(b.X) || math.IsNaN(b.Y) {
			radius := initialRadius * math.Sqrt(0.5+float64(i))
			angle := float64(i) * initialAngle
			b.X = radius * math.Cos(angle)
			b.Y = radius * math.Sin(angle)
			b.placed = true
		}
		if math.IsNaN(b.VX) || math.IsNaN(b.VY) {
			b.VX, b.VY = 0, 0
		}
	}
}

// LCG is the deterministic generator behind jiggle. Using a fixed seed keeps
// layouts reproducible across runs.
type LCG struct{ s uint32 }

// NewLCG creates a generator with the given seed.
func NewLCG(seed uint32) *LCG { return &LCG{s: seed} }

// Float64 returns the next value in [0, 1).
func (r *LCG) Float64() float64 {
	r.s = 1664525*r.s + 1013904223
	return float64(r.s) / 4294967296
}

// jiggle returns a tiny non-zero offset used to separate coincident points.
func jiggle(r *LCG) float64 {
	return (r.Float64() - 0.5) * 1e-6
}
