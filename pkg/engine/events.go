package engine

import (
	"encoding/json"

	"github.com/matzehuels/stargraph/pkg/graph"
)

// Event names as seen by hosts and metrics.
const (
	EventClickRepo = "click-repo"
	EventClickUser = "click-user"
)

// ClickRepo asks the host to fetch the owner of a clicked repository and
// ingest the result.
type ClickRepo struct {
	Username string `json:"username"`
}

// ClickUser tells the host that an already-known user was selected. Node
// carries the full data, so no fetch is needed.
type ClickUser struct {
	Username string
	Node     *graph.Node
}

// MarshalJSON encodes the node in its wire form.
func (c ClickUser) MarshalJSON() ([]byte, error) {
	out := struct {
		Username string          `json:"username"`
		Node     *graph.NodeData `json:"node,omitempty"`
	}{Username: c.Username}
	if c.Node != nil {
		d := graph.NodeDataOf(c.Node)
		out.Node = &d
	}
	return json.Marshal(out)
}

// OnClickRepo registers fn for click-repo notifications. Callbacks run
// synchronously, in registration order, on the engine's goroutine.
func (e *Engine) OnClickRepo(fn func(ClickRepo)) {
	if fn != nil {
		e.onRepo = append(e.onRepo, fn)
	}
}

// OnClickUser registers fn for click-user notifications.
func (e *Engine) OnClickUser(fn func(ClickUser)) {
	if fn != nil {
		e.onUser = append(e.onUser, fn)
	}
}

func (e *Engine) emitRepo(ev ClickRepo) {
	e.log.Debug("click", "event", EventClickRepo, "username", ev.Username)
	e.hooks.OnClick(EventClickRepo)
	for _, fn := range e.onRepo {
		fn(ev)
	}
}

func (e *Engine) emitUser(ev ClickUser) {
	e.log.Debug("click", "event", EventClickUser, "username", ev.Username)
	e.hooks.OnClick(EventClickUser)
	for _, fn := range e.onUser {
		fn(ev)
	}
}
