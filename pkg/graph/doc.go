// Package graph holds the deduplicated social graph of one session.
//
// # Overview
//
// A [Store] owns every [Node] and [Link]. Nodes are either users or starred
// repositories, discriminated by an explicit [social.Kind]. Nodes keep the
// order in which they were first seen and are never removed; the graph only
// grows until its owner drops it.
//
// # Ingestion
//
// [Store.Ingest] merges one query result:
//
//	s := graph.New(graph.SkipKnownSubject)
//	res := s.Ingest(payload)   // user node, repo nodes, user–repo links
//	fmt.Println(res.NodesAdded, res.LinksAdded)
//
// Identity is global across both variants: a node id is inserted at most
// once, and a link is added at most once per unordered pair. Repository
// owners travel embedded on the repository node and only become user nodes
// when the host fetches and ingests them.
//
// Re-ingesting a subject that is already present is governed by the
// [IngestPolicy]:
//
//   - [SkipKnownSubject] (default): strict no-op
//   - [MergeKnownSubject]: add repositories starred since the last ingest
//
// Nil payloads and payloads without an id are ignored.
//
// # Simulation View
//
// Each Node embeds a [force.Body]. [Store.Bodies] and [Store.Edges] hand the
// simulator pointers into the store, so positions are written in place and
// the store remains the single source of truth.
//
// # Serialization
//
// Graphs use a node-link JSON format:
//
//	{
//	  "nodes": [
//	    {"id": "U1", "kind": "user", "login": "alice", "x": 12.5, "y": -3},
//	    {"id": "R1", "kind": "repo", "name": "proj",
//	     "owner": {"id": "U2", "login": "bob", "isInOrganization": false}}
//	  ],
//	  "links": [{"source": "U1", "target": "R1"}]
//	}
//
// Common operations:
//
//	data, _ := graph.MarshalGraph(store)          // Store → []byte
//	graph.WriteGraphFile(store, "graph.json")     // Store → File
//	s, _ := graph.ReadGraphFile("graph.json")     // File → Store
//
// Exports exist for re-rendering a finished layout; they are not a session
// persistence mechanism.
//
// # Concurrency
//
// A Store is not safe for concurrent use. The engine owns it from a single
// goroutine.
package graph
