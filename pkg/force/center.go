package force

// Center translates all bodies so their mean position moves toward (X, Y).
// It does not depend on alpha.
type Center struct {
	X, Y     float64
	Strength float64

	bodies []*Body
}

// NewCenter creates a centering force at (x, y) with full strength.
func NewCenter(x, y float64) *Center {
	return &Center{X: x, Y: y, Strength: 1}
}

// Initialize implements Force.
func (c *Center) Initialize(bodies []*Body, _ *LCG) error {
	c.bodies = bodies
	return nil
}

// Apply implements Force.
func (c *Center) Apply(float64) {
	n := len(c.bodies)
	if n == 0 {
		return
	}
	var sx, sy float64
	for _, b := range c.bodies {
		sx += b.X
		sy += b.Y
	}
	sx = (sx/float64(n) - c.X) * c.Strength
	sy = (sy/float64(n) - c.Y) * c.Strength
	for _, b := range c.bodies {
		b.X -= sx
		b.Y -= sy
	}
}

// SetCenter moves the target point. Positions are not touched until the
// next Apply.
func (c *Center) SetCenter(x, y float64) { c.X, c.Y = x, y }
