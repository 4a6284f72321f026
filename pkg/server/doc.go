// Package server hosts graph engines over HTTP.
//
// Each browser tab (or any other remote client) creates a session, which
// owns one engine mounted into its own offscreen document and driven by an
// [engine.Loop]. Clients submit payloads, gestures and clicks as JSON and
// read back the display list, the graph, and a server-sent event stream of
// click-repo and click-user notifications.
//
// # Routes
//
//	POST   /api/sessions                      create a session
//	GET    /api/sessions/{id}                 engine snapshot
//	DELETE /api/sessions/{id}                 close a session
//	POST   /api/sessions/{id}/ingest          ingest a payload body
//	POST   /api/sessions/{id}/users/{login}   fetch a user, then ingest
//	POST   /api/sessions/{id}/click           {x,y} or {nodeId}
//	POST   /api/sessions/{id}/viewport        {x,y,k}
//	POST   /api/sessions/{id}/resize          {w,h}
//	GET    /api/sessions/{id}/scene           JSON display list
//	GET    /api/sessions/{id}/scene.svg       SVG snapshot
//	GET    /api/sessions/{id}/graph           node-link graph
//	GET    /api/sessions/{id}/events          SSE notifications
//	GET    /health
//	GET    /metrics                           Prometheus, when enabled
//
// Errors are JSON objects carrying the machine-readable code of
// [errors.Error] and the matching HTTP status.
//
// With [Config.AutoExpand] set the server acts as the host itself: a
// click-repo notification makes it fetch the owner and ingest the result,
// so thin clients only need to forward clicks.
package server
