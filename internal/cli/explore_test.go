package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stargraph/pkg/engine"
	"github.com/matzehuels/stargraph/pkg/integrations"
	"github.com/matzehuels/stargraph/pkg/social"
)

func aliceWithRepos() *social.UserWithRepos {
	return &social.UserWithRepos{
		User: social.User{ID: "U1", Login: "alice", Name: "Alice"},
		StarredRepositories: &social.Starred{Nodes: []*social.Repo{
			{ID: "R1", Name: "proj", Owner: social.Owner{ID: "U2", Login: "bob"}},
			{ID: "R2", Name: "kit", Owner: social.Owner{ID: "O1", Login: "acme", IsInOrganization: true}},
		}},
	}
}

type mapFetcher map[string]*social.UserWithRepos

func (f mapFetcher) FetchUser(_ context.Context, login string, _ int, _ bool) (*social.UserWithRepos, error) {
	if u, ok := f[login]; ok {
		return u, nil
	}
	return nil, integrations.ErrNotFound
}

// msgQueue collects what the loop sends to the program without ever
// blocking the loop goroutine.
type msgQueue struct {
	mu    sync.Mutex
	items []tea.Msg
	ready chan struct{}
}

func newMsgQueue() *msgQueue { return &msgQueue{ready: make(chan struct{}, 1)} }

func (q *msgQueue) push(m tea.Msg) {
	q.mu.Lock()
	q.items = append(q.items, m)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *msgQueue) pop() (tea.Msg, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	m := q.items[0]
	q.items = q.items[1:]
	return m, true
}

// exploreHarness wires a model to a running loop and plays the part of the
// bubbletea runtime.
type exploreHarness struct {
	model exploreModel
	loop  *engine.Loop
	msgs  *msgQueue
}

func newExploreHarness(t *testing.T) *exploreHarness {
	t.Helper()
	ctx := context.Background()
	loop, mount, view, err := startExploreLoop(ctx, engine.DefaultConfig(), log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { loop.Close() })

	msgs := newMsgQueue()
	view.setSender(msgs.push)

	f := mapFetcher{"bob": {
		User: social.User{ID: "U2", Login: "bob", Name: "Bob"},
		StarredRepositories: &social.Starred{Nodes: []*social.Repo{
			{ID: "R3", Name: "tool", Owner: social.Owner{ID: "U3", Login: "carol"}},
		}},
	}}
	h := &exploreHarness{
		model: newExploreModel(ctx, loop, mount, f, 30, aliceWithRepos(), view),
		loop:  loop,
		msgs:  msgs,
	}
	h.update(tea.WindowSizeMsg{Width: 100, Height: 40})
	h.run(h.model.Init())
	return h
}

// update applies msg, runs the command it returns and feeds the results
// back in. It returns the first message the command produced.
func (h *exploreHarness) update(msg tea.Msg) tea.Msg {
	next, cmd := h.model.Update(msg)
	h.model = next.(exploreModel)
	return h.run(cmd)
}

func (h *exploreHarness) run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	out := cmd()
	switch msg := out.(type) {
	case nil, tea.QuitMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	default:
		h.update(msg)
	}
	return out
}

// waitFor applies loop messages to the model, without running their
// commands, until match returns true.
func (h *exploreHarness) waitFor(t *testing.T, match func(tea.Msg) bool) tea.Msg {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		for {
			msg, ok := h.msgs.pop()
			if !ok {
				break
			}
			next, _ := h.model.Update(msg)
			h.model = next.(exploreModel)
			if match(msg) {
				return msg
			}
		}
		select {
		case <-h.msgs.ready:
		case <-deadline:
			t.Fatal("timed out waiting for the loop")
			return nil
		}
	}
}

func frameWithOrder(msg tea.Msg) bool {
	f, ok := msg.(frameMsg)
	return ok && f.order != nil
}

func TestExploreFramesCarryNodeOrder(t *testing.T) {
	h := newExploreHarness(t)
	f := h.waitFor(t, frameWithOrder).(frameMsg)

	if strings.Join(f.order, ",") != "U1,R1,R2" {
		t.Errorf("order = %v, want users before repositories", f.order)
	}
	if f.grid == "" {
		t.Error("frame should carry a rendered grid")
	}
	if f.snap.Nodes != 3 || f.snap.Links != 2 {
		t.Errorf("snapshot = %+v", f.snap)
	}
}

func TestExploreTabCyclesSelection(t *testing.T) {
	h := newExploreHarness(t)
	h.waitFor(t, frameWithOrder)

	want := []string{"U1", "R1", "R2", "U1"}
	for i, id := range want {
		h.update(tea.KeyMsg{Type: tea.KeyTab})
		if h.model.selected != id {
			t.Fatalf("tab %d selected %q, want %q", i+1, h.model.selected, id)
		}
	}
	h.update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if h.model.selected != "R2" {
		t.Errorf("shift+tab selected %q, want R2", h.model.selected)
	}
}

func TestExploreEnterOnRepoFetchesOwner(t *testing.T) {
	h := newExploreHarness(t)
	h.waitFor(t, frameWithOrder)
	h.update(tea.KeyMsg{Type: tea.KeyTab})
	h.update(tea.KeyMsg{Type: tea.KeyTab}) // R1, owned by bob

	out := h.update(tea.KeyMsg{Type: tea.KeyEnter})
	if c, ok := out.(clickedMsg); !ok || !c.emitted || c.id != "R1" {
		t.Fatalf("enter = %#v, want an emitted click on R1", out)
	}
	repo := h.waitFor(t, func(m tea.Msg) bool { _, ok := m.(clickRepoMsg); return ok }).(clickRepoMsg)
	if repo.login != "bob" {
		t.Errorf("click-repo login = %q", repo.login)
	}

	// waitFor applied the message, which started the fetch; a repeat click
	// while it is in flight does nothing.
	if _, cmd := h.model.Update(clickRepoMsg{login: "Bob"}); cmd != nil {
		t.Error("a pending owner should not be fetched twice")
	}

	h.run(h.model.fetch("bob"))
	if h.model.profile.Login != "bob" || h.model.starred != 1 {
		t.Errorf("profile = %+v (%d starred)", h.model.profile, h.model.starred)
	}
	if len(h.model.pending) != 0 || !h.model.fetched["bob"] {
		t.Errorf("pending = %v, fetched = %v", h.model.pending, h.model.fetched)
	}

	f := h.waitFor(t, func(m tea.Msg) bool {
		f, ok := m.(frameMsg)
		return ok && f.snap.Nodes == 5
	}).(frameMsg)
	if f.snap.Links != 3 {
		t.Errorf("links = %d, want 3", f.snap.Links)
	}
}

func TestExploreEnterOnOrgRepoIsInert(t *testing.T) {
	h := newExploreHarness(t)
	h.waitFor(t, frameWithOrder)
	h.update(tea.KeyMsg{Type: tea.KeyShiftTab}) // R2, owned by acme

	out := h.update(tea.KeyMsg{Type: tea.KeyEnter})
	if c, ok := out.(clickedMsg); !ok || c.emitted {
		t.Fatalf("enter = %#v, want no event", out)
	}
	if !strings.Contains(h.model.status, "Nothing to expand") {
		t.Errorf("status = %q", h.model.status)
	}
}

func TestExploreEnterOnUserShowsProfile(t *testing.T) {
	h := newExploreHarness(t)
	h.waitFor(t, frameWithOrder)
	h.update(tea.KeyMsg{Type: tea.KeyTab}) // U1
	h.update(tea.KeyMsg{Type: tea.KeyEnter})

	u := h.waitFor(t, func(m tea.Msg) bool { _, ok := m.(clickUserMsg); return ok }).(clickUserMsg)
	if u.user.Login != "alice" || u.starred != 2 {
		t.Errorf("click-user = %+v", u)
	}
}

func TestExploreFetchFailureIsShown(t *testing.T) {
	h := newExploreHarness(t)
	h.update(clickRepoMsg{login: "nobody"})
	if h.model.err == nil || !errors.Is(h.model.err, integrations.ErrNotFound) {
		t.Errorf("err = %v, want not found", h.model.err)
	}
	if len(h.model.pending) != 0 {
		t.Errorf("pending = %v", h.model.pending)
	}
	if !strings.Contains(h.model.View(), "failed") {
		t.Error("the view should report the failure")
	}
}

func TestExploreCameraKeys(t *testing.T) {
	h := newExploreHarness(t)
	h.waitFor(t, frameWithOrder)

	snap := func() engine.Snapshot {
		s, err := h.loop.Snapshot(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	before := snap().Transform

	h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	zoomed := snap().Transform
	if zoomed.K <= before.K {
		t.Errorf("zoom in: k = %v, was %v", zoomed.K, before.K)
	}
	h.update(tea.KeyMsg{Type: tea.KeyLeft})
	if x := snap().Transform.X; x != zoomed.X+panStep {
		t.Errorf("pan left: x = %v, want %v", x, zoomed.X+panStep)
	}
	h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if k := snap().Transform.K; k != before.K {
		t.Errorf("reset: k = %v, want %v", k, before.K)
	}
}

func TestExploreViewAndQuit(t *testing.T) {
	h := newExploreHarness(t)
	h.waitFor(t, frameWithOrder)

	view := h.model.View()
	for _, want := range []string{"@alice", "3 nodes", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
	if out := h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}); out != (tea.QuitMsg{}) {
		t.Errorf("q = %#v, want quit", out)
	}
}
