package graph

import (
	"errors"
	"testing"

	"github.com/matzehuels/stargraph/pkg/social"
)

func alice() *social.UserWithRepos {
	return &social.UserWithRepos{
		User: social.User{ID: "U1", Login: "alice"},
		StarredRepositories: &social.Starred{Nodes: []*social.Repo{
			{ID: "R1", Name: "proj", Owner: social.Owner{ID: "U2", Login: "bob"}},
		}},
	}
}

func TestIngestScenario(t *testing.T) {
	s := New(SkipKnownSubject)
	res := s.Ingest(alice())

	if res.Skipped || res.NodesAdded != 2 || res.LinksAdded != 1 {
		t.Errorf("result = %+v, want 2 nodes and 1 link added", res)
	}
	if s.NodeCount() != 2 || s.LinkCount() != 1 {
		t.Fatalf("graph has %d nodes, %d links; want 2, 1", s.NodeCount(), s.LinkCount())
	}
	nodes := s.Nodes()
	if nodes[0].ID != "U1" || nodes[1].ID != "R1" {
		t.Errorf("order = [%s %s], want [U1 R1]", nodes[0].ID, nodes[1].ID)
	}
	if l := s.Links()[0]; l.Source != "U1" || l.Target != "R1" {
		t.Errorf("link = %+v, want U1-R1", l)
	}
	if s.Has("U2") {
		t.Error("repository owner must not be inserted as a node")
	}
	r1, _ := s.Node("R1")
	if o, ok := r1.Owner(); !ok || o.Login != "bob" {
		t.Errorf("owner = %+v, want embedded bob", o)
	}
}

func TestIngestIdempotent(t *testing.T) {
	for _, policy := range []IngestPolicy{SkipKnownSubject, MergeKnownSubject} {
		t.Run(policy.String(), func(t *testing.T) {
			s := New(policy)
			s.Ingest(alice())
			res := s.Ingest(alice())
			if res.Changed() {
				t.Errorf("second ingest changed the graph: %+v", res)
			}
			if s.NodeCount() != 2 || s.LinkCount() != 1 {
				t.Errorf("graph has %d nodes, %d links; want 2, 1", s.NodeCount(), s.LinkCount())
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestIngestKnownSubjectPolicy(t *testing.T) {
	grown := alice()
	grown.StarredRepositories.Nodes = append(grown.StarredRepositories.Nodes,
		&social.Repo{ID: "R2", Name: "lib", Owner: social.Owner{ID: "O1", Login: "acme", IsInOrganization: true}})

	tests := []struct {
		policy    IngestPolicy
		wantNodes int
		wantLinks int
		wantSkip  bool
	}{
		{SkipKnownSubject, 2, 1, true},
		{MergeKnownSubject, 3, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			s := New(tt.policy)
			s.Ingest(alice())
			res := s.Ingest(grown)
			if res.Skipped != tt.wantSkip {
				t.Errorf("Skipped = %v, want %v", res.Skipped, tt.wantSkip)
			}
			if s.NodeCount() != tt.wantNodes || s.LinkCount() != tt.wantLinks {
				t.Errorf("graph has %d nodes, %d links; want %d, %d",
					s.NodeCount(), s.LinkCount(), tt.wantNodes, tt.wantLinks)
			}
		})
	}
}

func TestIngestInvalid(t *testing.T) {
	tests := []struct {
		name    string
		payload *social.UserWithRepos
	}{
		{"nil", nil},
		{"no id", &social.UserWithRepos{User: social.User{Login: "ghost"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(SkipKnownSubject)
			if res := s.Ingest(tt.payload); !res.Skipped {
				t.Errorf("result = %+v, want skipped", res)
			}
			if s.NodeCount() != 0 {
				t.Errorf("NodeCount = %d, want 0", s.NodeCount())
			}
		})
	}
}

func TestIngestSharedRepos(t *testing.T) {
	// bob also starred proj and owns it; proj stays a single node and the
	// second user gets its own link.
	bob := &social.UserWithRepos{
		User: social.User{ID: "U2", Login: "bob"},
		StarredRepositories: &social.Starred{Nodes: []*social.Repo{
			{ID: "R1", Name: "proj", Owner: social.Owner{ID: "U2", Login: "bob"}},
			nil,
			{ID: "R1", Name: "proj"},
		}},
	}
	s := New(SkipKnownSubject)
	s.Ingest(alice())
	res := s.Ingest(bob)

	if res.NodesAdded != 1 || res.LinksAdded != 1 {
		t.Errorf("result = %+v, want 1 node and 1 link", res)
	}
	if s.NodeCount() != 3 || s.LinkCount() != 2 {
		t.Errorf("graph has %d nodes, %d links; want 3, 2", s.NodeCount(), s.LinkCount())
	}

	ids := map[string]int{}
	for _, n := range s.Nodes() {
		ids[n.ID]++
	}
	for id, c := range ids {
		if c > 1 {
			t.Errorf("node %s appears %d times", id, c)
		}
	}
}

func TestIngestSkipsSelfStar(t *testing.T) {
	// A repository payload whose id collides with the subject's own id
	// must not create a link from the user to itself.
	odd := &social.UserWithRepos{
		User: social.User{ID: "X1", Login: "alice"},
		StarredRepositories: &social.Starred{Nodes: []*social.Repo{
			{ID: "X1", Name: "mirror"},
			{ID: "R1", Name: "proj"},
		}},
	}
	s := New(SkipKnownSubject)
	res := s.Ingest(odd)
	if res.NodesAdded != 2 || res.LinksAdded != 1 {
		t.Errorf("result = %+v, want 2 nodes and 1 link", res)
	}
	if n, _ := s.Node("X1"); n.Role() != RoleUser {
		t.Error("X1 should stay the user node")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestAddNodeAndLink(t *testing.T) {
	s := New(SkipKnownSubject)
	if err := s.AddNode(&Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty id: err = %v", err)
	}
	if err := s.AddNode(NewUserNode(social.User{ID: "U1", Login: "alice"})); err != nil {
		t.Fatal(err)
	}
	if err := s.AddNode(NewRepoNode(social.Repo{ID: "U1"})); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate across variants: err = %v", err)
	}
	_ = s.AddNode(NewRepoNode(social.Repo{ID: "R1", Name: "proj"}))

	if _, err := s.AddLink("U1", "missing"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown target: err = %v", err)
	}
	if _, err := s.AddLink("U1", "U1"); !errors.Is(err, ErrSelfLink) {
		t.Errorf("self link: err = %v", err)
	}
	if added, _ := s.AddLink("U1", "R1"); !added {
		t.Error("first link should be added")
	}
	if added, _ := s.AddLink("R1", "U1"); added {
		t.Error("reversed pair should be deduplicated")
	}
	if s.LinkCount() != 1 {
		t.Errorf("LinkCount = %d, want 1", s.LinkCount())
	}
}

func TestValidateDangling(t *testing.T) {
	s := New(SkipKnownSubject)
	s.Ingest(alice())
	s.links = append(s.links, Link{Source: "U1", Target: "R9"})
	if err := s.Validate(); !errors.Is(err, ErrDanglingLink) {
		t.Errorf("err = %v, want ErrDanglingLink", err)
	}

	s.links = []Link{{Source: "U1", Target: "U1"}}
	if err := s.Validate(); !errors.Is(err, ErrSelfLink) {
		t.Errorf("err = %v, want ErrSelfLink", err)
	}
}

func TestFindUserByLogin(t *testing.T) {
	s := New(SkipKnownSubject)
	s.Ingest(alice())
	if n, ok := s.FindUserByLogin("ALICE"); !ok || n.ID != "U1" {
		t.Errorf("FindUserByLogin(ALICE) = %v, %v", n, ok)
	}
	if _, ok := s.FindUserByLogin("proj"); ok {
		t.Error("repositories must not match a login")
	}
}

func TestBodiesShareStorage(t *testing.T) {
	s := New(SkipKnownSubject)
	s.Ingest(alice())
	bodies := s.Bodies()
	bodies[1].X = 42
	n, _ := s.Node("R1")
	if n.X != 42 {
		t.Error("Bodies must point into the store's nodes")
	}
	if e := s.Edges(); len(e) != 1 || e[0].Source != "U1" || e[0].Target != "R1" {
		t.Errorf("Edges = %+v", e)
	}
}

func TestNodeAccessors(t *testing.T) {
	tests := []struct {
		name      string
		node      *Node
		wantLabel string
		wantLogin bool
		wantRole  Role
	}{
		{
			name:      "user",
			node:      NewUserNode(social.User{ID: "U1", Login: "alice", Name: "Alice"}),
			wantLabel: "alice",
			wantLogin: true,
			wantRole:  RoleUser,
		},
		{
			name:      "user without login",
			node:      NewUserNode(social.User{ID: "U3", Name: "Anonymous"}),
			wantLabel: "Anonymous",
			wantRole:  RoleUser,
		},
		{
			name:      "personal repo",
			node:      NewRepoNode(social.Repo{ID: "R1", Name: "proj", Owner: social.Owner{Login: "bob"}}),
			wantLabel: "proj",
			wantRole:  RolePersonalRepo,
		},
		{
			name:      "org repo",
			node:      NewRepoNode(social.Repo{ID: "R2", Name: "lib", Owner: social.Owner{Login: "acme", IsInOrganization: true}}),
			wantLabel: "lib",
			wantRole:  RoleOrgRepo,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.Label(); got != tt.wantLabel {
				t.Errorf("Label() = %q, want %q", got, tt.wantLabel)
			}
			if got := tt.node.HasLogin(); got != tt.wantLogin {
				t.Errorf("HasLogin() = %v, want %v", got, tt.wantLogin)
			}
			if got := tt.node.Role(); got != tt.wantRole {
				t.Errorf("Role() = %v, want %v", got, tt.wantRole)
			}
		})
	}
}

func TestParseIngestPolicy(t *testing.T) {
	for in, want := range map[string]IngestPolicy{"": SkipKnownSubject, "skip": SkipKnownSubject, "Merge": MergeKnownSubject} {
		got, err := ParseIngestPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseIngestPolicy(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseIngestPolicy("replace"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
