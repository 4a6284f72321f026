package force

import (
	"fmt"
	"math"
)

// Edge names the two bodies a spring connects.
type Edge struct {
	Source, Target string
}

type spring struct {
	source, target *Body
	strength       float64
	bias           float64
}

// Link pulls connected bodies toward a rest distance. Springs attached to
// high-degree bodies are weaker, and the correction is split so the
// lower-degree end moves more.
type Link struct {
	Distance   float64
	Iterations int

	edges   []Edge
	springs []spring
	rnd     *LCG
}

// NewLink creates a spring force over edges with the given rest distance.
func NewLink(edges []Edge, distance float64) *Link {
	return &Link{Distance: distance, Iterations: 1, edges: edges}
}

// Edges returns the springs' endpoints.
func (l *Link) Edges() []Edge { return l.edges }

// Initialize implements Force. Every edge endpoint must be one of bodies.
func (l *Link) Initialize(bodies []*Body, rnd *LCG) error {
	l.rnd = rnd
	byID := make(map[string]*Body, len(bodies))
	for _, b := range bodies {
		byID[b.ID] = b
	}

	count := make(map[*Body]int, len(bodies))
	springs := make([]spring, 0, len(l.edges))
	for _, e := range l.edges {
		s, ok := byID[e.Source]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, e.Source)
		}
		t, ok := byID[e.Target]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, e.Target)
		}
		count[s]++
		count[t]++
		springs = append(springs, spring{source: s, target: t})
	}
	for i := range springs {
		sp := &springs[i]
		cs, ct := float64(count[sp.source]), float64(count[sp.target])
		sp.bias = cs / (cs + ct)
		sp.strength = 1 / math.Min(cs, ct)
	}
	l.springs = springs
	return nil
}

// Apply implements Force.
func (l *Link) Apply(alpha float64) {
	for range l.Iterations {
		for _, sp := range l.springs {
			s, t := sp.source, sp.target
			x := t.X + t.VX - s.X - s.VX
			if x == 0 {
				x = jiggle(l.rnd)
			}
			y := t.Y + t.VY - s.Y - s.VY
			if y == 0 {
				y = jiggle(l.rnd)
			}
			d := math.Sqrt(x*x + y*y)
			d = (d - l.Distance) / d * alpha * sp.strength
			x *= d
			y *= d
			t.VX -= x * sp.bias
			t.VY -= y * sp.bias
			s.VX += x * (1 - sp.bias)
			s.VY += y * (1 - sp.bias)
		}
	}
}
