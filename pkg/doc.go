// Package pkg provides the libraries behind Stargraph, a force-directed
// view of who starred what on GitHub.
//
// # Overview
//
// A user and the repositories they starred form a bipartite graph: user
// nodes link to the repositories they starred, and each repository carries
// its owner so a host can fetch that owner and grow the graph on demand.
// The pkg directory is organized into four areas:
//
//  1. Domain logic: [social], [graph], [force], [viewport], [scene], [engine]
//  2. Infrastructure: [cache], [session], [httputil], [observability]
//  3. External APIs: [integrations] and its GitHub client
//  4. Orchestration and hosting: [pipeline], [server], [render]
//
// # Architecture
//
// The typical data flow:
//
//	GitHub GraphQL (or a JSON payload)
//	         ↓
//	    [social] UserWithRepos
//	         ↓
//	    [graph] Store (deduplicating ingest)
//	         ↓
//	    [force] Simulation (ticks until alpha cools)
//	         ↓
//	    [scene] Surface (links, nodes, skeletons, labels under a camera)
//	         ↓
//	    SVG / display list / terminal grid / Graphviz
//
// [engine] ties the store, simulation, camera and surface together and
// emits click-repo and click-user notifications. A host drives one engine
// from a single goroutine through engine.Loop.
//
// # Quick Start
//
//	doc := scene.NewDocument()
//	doc.AddMount("graph", 1200, 800)
//	e, err := engine.New(doc, "#graph")
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	e.OnClickRepo(func(ev engine.ClickRepo) {
//	    // fetch ev.Username and ingest it
//	})
//	e.Ingest(payload)
//	e.Settle()
//	svg := sink.RenderSVG(e.Surface())
//
// # Main Packages
//
// [engine] - The graph engine: ingest, layout ticks, camera, clicks and the
// single-goroutine Loop hosts use.
//
// [graph] - Node and link store. Ingest deduplicates nodes by id and links
// by endpoint pair, and reports whether anything changed.
//
// [force] - Force simulation with link, charge, centring and collision
// forces and an alpha that cools to rest.
//
// [viewport] - Pan and zoom camera with the Expanded/Collapsed threshold.
//
// [scene] - The four drawing layers and the mounts they draw into. The sink
// subpackage turns a surface into SVG, JSON or a terminal grid.
//
// [pipeline] - Fetch, expand, settle and render in one call, with a
// render cache. Used by the CLI and the server.
//
// [server] - HTTP session host with server-sent click events.
//
// [cache] - File, SQLite, Redis and MongoDB caches behind one interface.
//
// [integrations] - Rate-limited HTTP client with retries; the github
// subpackage adds the GraphQL query and the OAuth device flow.
//
// [errors] - Coded errors shared by every layer.
//
// [observability] - Hooks for metrics and tracing, with a Prometheus
// collector in the prom subpackage.
//
// [engine]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/engine
// [graph]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/graph
// [force]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/force
// [viewport]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/viewport
// [scene]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/scene
// [social]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/social
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/server
// [render]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/session
// [httputil]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/httputil
// [integrations]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/integrations
// [errors]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stargraph/pkg/observability
package pkg
