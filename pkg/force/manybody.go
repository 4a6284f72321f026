package force

import "math"

// ManyBody applies a constant charge between every pair of bodies,
// approximated with a Barnes–Hut quadtree. Negative strength repels.
type ManyBody struct {
	Strength    float64
	Theta       float64
	DistanceMin float64
	DistanceMax float64

	bodies []*Body
	rnd    *LCG
}

// NewManyBody creates a charge force with the given strength and the usual
// approximation parameters (theta 0.9, minimum distance 1, unbounded range).
func NewManyBody(strength float64) *ManyBody {
	return &ManyBody{
		Strength:    strength,
		Theta:       0.9,
		DistanceMin: 1,
		DistanceMax: math.Inf(1),
	}
}

// Initialize implements Force.
func (m *ManyBody) Initialize(bodies []*Body, rnd *LCG) error {
	m.bodies, m.rnd = bodies, rnd
	return nil
}

// Apply implements Force.
func (m *ManyBody) Apply(alpha float64) {
	tree := buildQuadtree(m.bodies, func(b *Body) (float64, float64) { return b.X, b.Y })
	if tree == nil {
		return
	}
	tree.visitAfter(m.accumulate)

	theta2 := m.Theta * m.Theta
	dmin2 := m.DistanceMin * m.DistanceMin
	dmax2 := m.DistanceMax * m.DistanceMax

	for _, b := range m.bodies {
		tree.visit(func(q *quad) bool {
			if q.value == 0 {
				return true
			}
			x, y := q.cx-b.X, q.cy-b.Y
			w := q.x1 - q.x0
			l := x*x + y*y

			// Far enough away to treat the quad as a single charge.
			if w*w/theta2 < l {
				if l < dmax2 {
					if x == 0 {
						x = jiggle(m.rnd)
						l += x * x
					}
					if y == 0 {
						y = jiggle(m.rnd)
						l += y * y
					}
					if l < dmin2 {
						l = math.Sqrt(dmin2 * l)
					}
					b.VX += x * q.value * alpha / l
					b.VY += y * q.value * alpha / l
				}
				return true
			}
			if !q.leaf() || l >= dmax2 {
				return false
			}

			for _, it := range q.items {
				if it.body == b {
					continue
				}
				x, y := it.x-b.X, it.y-b.Y
				l := x*x + y*y
				if x == 0 {
					x = jiggle(m.rnd)
					l += x * x
				}
				if y == 0 {
					y = jiggle(m.rnd)
					l += y * y
				}
				if l < dmin2 {
					l = math.Sqrt(dmin2 * l)
				}
				w := m.Strength * alpha / l
				b.VX += x * w
				b.VY += y * w
			}
			return true
		})
	}
}

func (m *ManyBody) accumulate(q *quad) {
	var strength, weight, x, y float64
	if q.leaf() {
		for _, it := range q.items {
			strength += m.Strength
			weight++
			x += it.x
			y += it.y
		}
	} else {
		for _, c := range q.children {
			if c == nil {
				continue
			}
			s := math.Abs(c.value)
			strength += c.value
			weight += s
			x += s * c.cx
			y += s * c.cy
		}
	}
	q.value = strength
	if weight > 0 {
		q.cx, q.cy = x/weight, y/weight
	}
}
