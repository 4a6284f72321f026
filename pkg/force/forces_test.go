package force

import (
	"math"
	"testing"
)

func place(bs []*Body, xy ...float64) []*Body {
	for i, b := range bs {
		b.SetPosition(xy[2*i], xy[2*i+1])
	}
	return bs
}

func TestManyBodyRepels(t *testing.T) {
	bs := place(bodies("a", "b"), -10, 0, 10, 0)
	m := NewManyBody(-30)
	_ = m.Initialize(bs, NewLCG(1))
	m.Apply(1)

	if bs[0].VX >= 0 || bs[1].VX <= 0 {
		t.Errorf("velocities (%v, %v) should point apart", bs[0].VX, bs[1].VX)
	}
	if math.Abs(bs[0].VX+bs[1].VX) > 1e-12 {
		t.Errorf("forces should be symmetric: %v vs %v", bs[0].VX, bs[1].VX)
	}
}

func TestManyBodyMatchesExact(t *testing.T) {
	rnd := NewLCG(42)
	const n = 40
	approx := make([]*Body, n)
	exact := make([]*Body, n)
	for i := range n {
		x, y := rnd.Float64()*1000, rnd.Float64()*1000
		approx[i] = &Body{ID: "a"}
		approx[i].SetPosition(x, y)
		exact[i] = &Body{ID: "e"}
		exact[i].SetPosition(x, y)
	}

	// theta 0 disables approximation, so the tree walk must agree with the
	// brute-force pairwise sum.
	m := NewManyBody(-100)
	m.Theta = 0
	_ = m.Initialize(approx, NewLCG(1))
	m.Apply(0.5)

	for _, b := range exact {
		for _, o := range exact {
			if b == o {
				continue
			}
			x, y := o.X-b.X, o.Y-b.Y
			l := x*x + y*y
			if l < 1 {
				l = math.Sqrt(l)
			}
			b.VX += x * -100 * 0.5 / l
			b.VY += y * -100 * 0.5 / l
		}
	}
	for i := range n {
		if math.Abs(approx[i].VX-exact[i].VX) > 1e-9 || math.Abs(approx[i].VY-exact[i].VY) > 1e-9 {
			t.Fatalf("body %d: tree (%v, %v) vs exact (%v, %v)",
				i, approx[i].VX, approx[i].VY, exact[i].VX, exact[i].VY)
		}
	}
}

func TestManyBodyCoincident(t *testing.T) {
	bs := place(bodies("a", "b"), 0, 0, 0, 0)
	m := NewManyBody(-30)
	_ = m.Initialize(bs, NewLCG(1))
	m.Apply(1)
	for _, b := range bs {
		if math.IsNaN(b.VX) || math.IsNaN(b.VY) {
			t.Fatalf("%s velocity is NaN", b.ID)
		}
	}
	if bs[0].VX == 0 && bs[0].VY == 0 {
		t.Error("coincident bodies should be pushed apart")
	}
}

func TestCenter(t *testing.T) {
	bs := place(bodies("a", "b", "c"), 0, 0, 10, 0, 20, 30)
	c := NewCenter(100, 100)
	_ = c.Initialize(bs, nil)
	c.Apply(0)

	var mx, my float64
	for _, b := range bs {
		mx += b.X
		my += b.Y
	}
	mx /= 3
	my /= 3
	if math.Abs(mx-100) > 1e-9 || math.Abs(my-100) > 1e-9 {
		t.Errorf("mean = (%v, %v), want (100, 100)", mx, my)
	}
	if bs[1].X-bs[0].X != 10 {
		t.Error("centering must translate, not scale")
	}
}

func TestLinkStrengthAndBias(t *testing.T) {
	bs := place(bodies("hub", "a", "b"), 0, 0, 10, 0, 0, 10)
	l := NewLink([]Edge{{"hub", "a"}, {"hub", "b"}}, 500)
	if err := l.Initialize(bs, NewLCG(1)); err != nil {
		t.Fatal(err)
	}
	for _, sp := range l.springs {
		// hub has degree 2, leaves degree 1
		if sp.strength != 1 {
			t.Errorf("strength = %v, want 1", sp.strength)
		}
		if math.Abs(sp.bias-2.0/3) > 1e-12 {
			t.Errorf("bias = %v, want 2/3", sp.bias)
		}
	}

	l.Apply(1)
	// Too close for the rest distance: leaves are pushed outward.
	if bs[1].VX <= 0 {
		t.Errorf("a.VX = %v, want > 0", bs[1].VX)
	}
	if bs[2].VY <= 0 {
		t.Errorf("b.VY = %v, want > 0", bs[2].VY)
	}
}

func TestLinkUnknownNode(t *testing.T) {
	l := NewLink([]Edge{{"a", "missing"}}, 10)
	if err := l.Initialize(bodies("a"), NewLCG(1)); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestCollideSeparates(t *testing.T) {
	bs := place(bodies("a", "b"), 0, 0, 20, 0)
	c := NewCollide(50)
	_ = c.Initialize(bs, NewLCG(1))
	c.Apply(1)
	if bs[0].VX >= 0 || bs[1].VX <= 0 {
		t.Errorf("velocities (%v, %v) should point apart", bs[0].VX, bs[1].VX)
	}

	// Radii add up: centres 80 apart still overlap circles of radius 50.
	near := place(bodies("e", "f"), 0, 0, 80, 0)
	_ = c.Initialize(near, NewLCG(1))
	c.Apply(1)
	if near[0].VX >= 0 || near[1].VX <= 0 {
		t.Errorf("bodies inside 2*Radius: velocities (%v, %v) should point apart", near[0].VX, near[1].VX)
	}

	far := place(bodies("c", "d"), 0, 0, 500, 0)
	_ = c.Initialize(far, NewLCG(1))
	c.Apply(1)
	if far[0].VX != 0 || far[1].VX != 0 {
		t.Error("distant bodies should not collide")
	}
}

func TestSimulationSettlesStar(t *testing.T) {
	ids := []string{"u", "r1", "r2", "r3", "r4", "r5"}
	bs := bodies(ids...)
	var edges []Edge
	for _, id := range ids[1:] {
		edges = append(edges, Edge{Source: "u", Target: id})
	}

	sim := New()
	sim.SetAlphaDecay(0.05)
	_ = sim.SetNodes(bs)
	_ = sim.SetForce("charge", NewManyBody(-3000))
	_ = sim.SetForce("center", NewCenter(400, 300))
	_ = sim.SetForce("link", NewLink(edges, 500))
	_ = sim.SetForce("collide", NewCollide(50))
	sim.SetAlpha(0.5)
	sim.Restart()
	sim.Settle(1000)

	for _, b := range bs {
		if math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsInf(b.X, 0) || math.IsInf(b.Y, 0) {
			t.Fatalf("%s position not finite: (%v, %v)", b.ID, b.X, b.Y)
		}
	}
	for i := range bs {
		for j := i + 1; j < len(bs); j++ {
			if d := math.Hypot(bs[i].X-bs[j].X, bs[i].Y-bs[j].Y); d < 50 {
				t.Errorf("%s and %s overlap at distance %v", bs[i].ID, bs[j].ID, d)
			}
		}
	}
}
