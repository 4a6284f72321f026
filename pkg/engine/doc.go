// Package engine is the social graph engine: it composes the graph store,
// the force simulation, the scene and the viewport behind one object that a
// host mounts, feeds and listens to.
//
// # Lifecycle
//
//	doc := scene.NewDocument()
//	doc.AddMount("root", 800, 600)
//
//	e, err := engine.New(doc, "#root")
//	if errors.Is(err, engine.ErrMountNotFound) { ... }
//	defer e.Close()
//
//	e.OnClickRepo(func(ev engine.ClickRepo) { go fetchAndIngest(ev.Username) })
//	e.OnClickUser(func(ev engine.ClickUser) { showProfile(ev.Node) })
//
//	e.Ingest(payload)
//	for e.Tick() {
//	    draw(e.Surface())
//	}
//
// [Engine.Ingest] merges a query result, recomputes the four forces
// (charge, center, link, collide), rebuilds every layer, resets the camera
// and re-heats the simulation. Payloads that change nothing are ignored.
//
// # Clicks
//
// Clicking a label raises at most one notification:
//
//   - a user: [ClickUser] with the node, so the host can switch focus
//   - a repository owned by a person: [ClickRepo] with the owner's login,
//     or [ClickUser] with the owner's node if it is already in the graph
//     and [Config.ReuseResolvedOwners] is set
//   - a repository owned by an organization: nothing
//
// # Threading
//
// An Engine is single-threaded. [StartLoop] gives it a goroutine of its own
// that runs submitted work and frame ticks one at a time:
//
//	l := engine.StartLoop(ctx, e)
//	defer l.Close()
//	_ = l.Ingest(ctx, payload)
//
// Notifications are delivered on the loop goroutine; hosts fetch on their
// own goroutine and submit the result back.
package engine
