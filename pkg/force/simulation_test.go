package force

import (
	"errors"
	"math"
	"testing"
)

func bodies(ids ...string) []*Body {
	out := make([]*Body, len(ids))
	for i, id := range ids {
		out[i] = &Body{ID: id, Index: i}
	}
	return out
}

func TestSetNodesPlacement(t *testing.T) {
	sim := New()
	bs := bodies("a", "b", "c")
	bs[1].SetPosition(100, 200)
	if err := sim.SetNodes(bs); err != nil {
		t.Fatalf("SetNodes: %v", err)
	}

	for i, b := range bs {
		if b.Index != i {
			t.Errorf("%s.Index = %d, want %d", b.ID, b.Index, i)
		}
		if !b.Placed() {
			t.Errorf("%s not placed", b.ID)
		}
	}
	if bs[1].X != 100 || bs[1].Y != 200 {
		t.Errorf("placed body moved to (%v, %v)", bs[1].X, bs[1].Y)
	}

	wantR := initialRadius * math.Sqrt(0.5)
	if got := math.Hypot(bs[0].X, bs[0].Y); math.Abs(got-wantR) > 1e-9 {
		t.Errorf("first body radius = %v, want %v", got, wantR)
	}
	if bs[0].X == bs[2].X && bs[0].Y == bs[2].Y {
		t.Error("new bodies should not coincide")
	}
}

func TestSetNodesFixed(t *testing.T) {
	sim := New()
	bs := bodies("a")
	bs[0].Fix(5, 7)
	_ = sim.SetNodes(bs)
	_ = sim.SetForce("charge", NewManyBody(-30))
	sim.Restart()
	sim.Step()
	if bs[0].X != 5 || bs[0].Y != 7 {
		t.Errorf("fixed body at (%v, %v), want (5, 7)", bs[0].X, bs[0].Y)
	}
	bs[0].Unfix()
	if bs[0].FX != nil || bs[0].FY != nil {
		t.Error("Unfix should clear fixed coordinates")
	}
}

func TestStepCoolsAndStops(t *testing.T) {
	sim := New()
	sim.SetAlphaDecay(0.05)
	_ = sim.SetNodes(bodies("a", "b"))
	sim.SetAlpha(0.5)

	if sim.Step() {
		t.Fatal("Step before Restart should not run")
	}

	ended := 0
	ticks := 0
	sim.OnTick(func() { ticks++ })
	sim.OnEnd(func() { ended++ })
	sim.Restart()

	steps := sim.Settle(10_000)
	if sim.Alive() {
		t.Fatal("simulation still running after Settle")
	}
	if ended != 1 {
		t.Errorf("end fired %d times, want 1", ended)
	}
	if sim.Alpha() >= DefaultAlphaMin {
		t.Errorf("alpha = %v, want < %v", sim.Alpha(), DefaultAlphaMin)
	}
	// 0.5 * 0.95^n < 0.001 first holds at n = 122.
	if ticks != 122 {
		t.Errorf("ticks = %d, want 122", ticks)
	}
	if steps != ticks-1 {
		t.Errorf("Settle returned %d, want %d", steps, ticks-1)
	}
}

func TestSettleBounded(t *testing.T) {
	sim := New()
	_ = sim.SetNodes(bodies("a"))
	sim.SetAlphaTarget(1)
	sim.Restart()
	if got := sim.Settle(10); got != 10 {
		t.Errorf("Settle(10) = %d", got)
	}
	if !sim.Alive() {
		t.Error("hot simulation should still be alive")
	}
	sim.Stop()
	if sim.Alive() {
		t.Error("Stop should halt the simulation")
	}
}

func TestForceOrderAndRemoval(t *testing.T) {
	sim := New()
	_ = sim.SetNodes(bodies("a"))
	_ = sim.SetForce("x", NewCenter(0, 0))
	_ = sim.SetForce("y", NewCenter(0, 0))
	_ = sim.SetForce("x", NewCenter(1, 1))
	if len(sim.order) != 2 || sim.order[0] != "x" {
		t.Errorf("order = %v, want [x y]", sim.order)
	}
	sim.RemoveForce("x")
	if _, ok := sim.Force("x"); ok {
		t.Error("x should be removed")
	}
	if err := sim.SetForce("y", nil); err != nil {
		t.Fatal(err)
	}
	if len(sim.order) != 0 {
		t.Errorf("order = %v, want empty", sim.order)
	}
}

func TestSetNodesReinitializesLinks(t *testing.T) {
	sim := New()
	_ = sim.SetNodes(bodies("a", "b"))
	if err := sim.SetForce("link", NewLink([]Edge{{"a", "b"}}, 10)); err != nil {
		t.Fatalf("SetForce: %v", err)
	}
	err := sim.SetNodes(bodies("a"))
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v, want ErrNodeNotFound", err)
	}
}

func TestLCGDeterministic(t *testing.T) {
	a, b := NewLCG(1), NewLCG(1)
	for range 100 {
		x, y := a.Float64(), b.Float64()
		if x != y {
			t.Fatal("same seed should give the same sequence")
		}
		if x < 0 || x >= 1 {
			t.Fatalf("Float64() = %v out of range", x)
		}
	}
	if j := jiggle(NewLCG(7)); j == 0 || math.Abs(j) > 5e-7 {
		t.Errorf("jiggle = %v", j)
	}
}
