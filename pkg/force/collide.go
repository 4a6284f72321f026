package force

import "math"

// Collide keeps bodies at least 2*Radius apart, treating each as a circle at
// its predicted next position.
type Collide struct {
	Radius     float64
	Strength   float64
	Iterations int

	bodies []*Body
	rnd    *LCG
}

// NewCollide creates a collision force for circles of the given radius.
func NewCollide(radius float64) *Collide {
	return &Collide{Radius: radius, Strength: 1, Iterations: 1}
}

// Initialize implements Force.
func (c *Collide) Initialize(bodies []*Body, rnd *LCG) error {
	c.bodies, c.rnd = bodies, rnd
	return nil
}

// Apply implements Force.
func (c *Collide) Apply(float64) {
	ri := c.Radius
	ri2 := ri * ri
	for range c.Iterations {
		tree := buildQuadtree(c.bodies, func(b *Body) (float64, float64) {
			return b.X + b.VX, b.Y + b.VY
		})
		if tree == nil {
			return
		}
		tree.visitAfter(func(q *quad) { q.r = c.Radius })

		for _, node := range c.bodies {
			xi, yi := node.X+node.VX, node.Y+node.VY
			tree.visit(func(q *quad) bool {
				if q.leaf() {
					for _, it := range q.items {
						other := it.body
						if other.Index <= node.Index {
							continue
						}
						rj := c.Radius
						r := ri + rj
						x := xi - other.X - other.VX
						y := yi - other.Y - other.VY
						l := x*x + y*y
						if l >= r*r {
							continue
						}
						if x == 0 {
							x = jiggle(c.rnd)
							l += x * x
						}
						if y == 0 {
							y = jiggle(c.rnd)
							l += y * y
						}
						l = math.Sqrt(l)
						l = (r - l) / l * c.Strength
						x *= l
						y *= l
						ratio := rj * rj / (ri2 + rj*rj)
						node.VX += x * ratio
						node.VY += y * ratio
						ratio = 1 - ratio
						other.VX -= x * ratio
						other.VY -= y * ratio
					}
					return true
				}
				r := ri + q.r
				return q.x0 > xi+r || q.x1 < xi-r || q.y0 > yi+r || q.y1 < yi-r
			})
		}
	}
}
