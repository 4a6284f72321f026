// Package force implements an iterative force-directed layout.
//
// # Overview
//
// A [Simulation] moves a set of [Body] values through discrete ticks. Each
// tick cools the energy alpha toward a target, lets every installed [Force]
// add to body velocities, then integrates: velocity is damped and added to
// position. Bodies with fixed coordinates (FX/FY) are pinned.
//
// The model is the velocity-Verlet scheme popularised by d3-force, so
// layouts tuned there carry over directly.
//
// # Forces
//
//   - [ManyBody]: pairwise charge, approximated with a Barnes–Hut quadtree
//   - [Center]: translates the whole system so its mean sits at a point
//   - [Link]: springs toward a rest distance, weakened on high-degree bodies
//   - [Collide]: keeps circles of a fixed radius from overlapping
//
// # Usage
//
//	sim := force.New()
//	sim.SetAlphaDecay(0.05)
//	_ = sim.SetNodes(bodies)
//	_ = sim.SetForce("charge", force.NewManyBody(-3000))
//	_ = sim.SetForce("center", force.NewCenter(w/2, h/2))
//	_ = sim.SetForce("link", force.NewLink(edges, 500))
//	_ = sim.SetForce("collide", force.NewCollide(50))
//	sim.SetAlpha(0.5)
//	sim.Restart()
//	for sim.Step() {
//	    // redraw
//	}
//
// # Placement
//
// Bodies that were never placed get a deterministic phyllotaxis position
// when they join a simulation; placed bodies keep theirs. Coincident points
// are separated by a tiny jiggle drawn from a fixed-seed [LCG], so repeated
// runs over the same input produce the same layout.
//
// # Concurrency
//
// A Simulation is not safe for concurrent use. Owners drive it from one
// goroutine and read body positions between steps.
package force
