package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/stargraph/pkg/force"
	"github.com/matzehuels/stargraph/pkg/social"
)

var (
	// ErrInvalidNodeID is returned when a node has an empty identifier.
	ErrInvalidNodeID = errors.New("node ID must not be empty")
	// ErrDuplicateNodeID is returned by AddNode for an identifier already in
	// the store.
	ErrDuplicateNodeID = errors.New("duplicate node ID")
	// ErrUnknownNode is returned by AddLink when an endpoint is missing.
	ErrUnknownNode = errors.New("unknown node")
	// ErrDanglingLink is returned by Validate when a link endpoint does not
	// resolve to a node.
	ErrDanglingLink = errors.New("dangling link")
	// ErrSelfLink is returned when both endpoints of a link are the same node.
	ErrSelfLink = errors.New("self link")
)

// IngestPolicy decides what Ingest does with a subject that is already in
// the store.
type IngestPolicy int

const (
	// SkipKnownSubject makes re-ingesting a known user a strict no-op.
	SkipKnownSubject IngestPolicy = iota
	// MergeKnownSubject re-processes a known user so that newly starred
	// repositories are added. Existing nodes and links are never duplicated.
	MergeKnownSubject
)

// String returns "skip" or "merge".
func (p IngestPolicy) String() string {
	if p == MergeKnownSubject {
		return "merge"
	}
	return "skip"
}

// ParseIngestPolicy parses "skip" or "merge". The empty string selects the
// default, SkipKnownSubject.
func ParseIngestPolicy(s string) (IngestPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return SkipKnownSubject, nil
	case "merge":
		return MergeKnownSubject, nil
	default:
		return 0, fmt.Errorf("unknown ingest policy %q (want skip or merge)", s)
	}
}

// Link is an undirected "starred" edge between a user and a repository.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type pair struct{ a, b string }

func pairOf(x, y string) pair {
	if x > y {
		x, y = y, x
	}
	return pair{x, y}
}

// IngestResult reports what a single Ingest call changed.
type IngestResult struct {
	Skipped    bool
	NodesAdded int
	LinksAdded int
}

// Changed reports whether the graph structure changed.
func (r IngestResult) Changed() bool { return r.NodesAdded > 0 || r.LinksAdded > 0 }

// Store owns the nodes and links of one session's graph. Nodes keep
// first-seen order and are never removed.
//
// A Store is not safe for concurrent use.
type Store struct {
	policy IngestPolicy
	nodes  []*Node
	index  map[string]*Node
	links  []Link
	linked map[pair]struct{}
}

// New creates an empty store.
func New(policy IngestPolicy) *Store {
	return &Store{
		policy: policy,
		index:  make(map[string]*Node),
		linked: make(map[pair]struct{}),
	}
}

// Policy returns the store's ingest policy.
func (s *Store) Policy() IngestPolicy { return s.policy }

// Ingest merges a user and their starred repositories into the store.
// Nil payloads and payloads without an id are ignored. Repository owners
// are not inserted as nodes; they stay embedded on the repository.
func (s *Store) Ingest(u *social.UserWithRepos) IngestResult {
	if !u.Valid() {
		return IngestResult{Skipped: true}
	}
	if s.Has(u.ID) && s.policy == SkipKnownSubject {
		return IngestResult{Skipped: true}
	}

	var res IngestResult
	if !s.Has(u.ID) {
		s.insert(NewUserNode(u.User))
		res.NodesAdded++
	}
	for _, r := range u.Repos() {
		if r.ID == "" || r.ID == u.ID {
			continue
		}
		if !s.Has(r.ID) {
			s.insert(NewRepoNode(*r))
			res.NodesAdded++
		}
		if s.link(u.ID, r.ID) {
			res.LinksAdded++
		}
	}
	return res
}

// AddNode inserts n. The identifier must be non-empty and unique.
func (s *Store) AddNode(n *Node) error {
	if n == nil || n.ID == "" {
		return ErrInvalidNodeID
	}
	if s.Has(n.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	s.insert(n)
	return nil
}

// AddLink connects two existing nodes. It reports whether a new link was
// added; linking an already linked pair in either direction is a no-op.
func (s *Store) AddLink(source, target string) (bool, error) {
	if !s.Has(source) {
		return false, fmt.Errorf("%w: source %s", ErrUnknownNode, source)
	}
	if !s.Has(target) {
		return false, fmt.Errorf("%w: target %s", ErrUnknownNode, target)
	}
	if source == target {
		return false, fmt.Errorf("%w: %s", ErrSelfLink, source)
	}
	return s.link(source, target), nil
}

func (s *Store) insert(n *Node) {
	s.nodes = append(s.nodes, n)
	s.index[n.ID] = n
}

func (s *Store) link(source, target string) bool {
	k := pairOf(source, target)
	if _, ok := s.linked[k]; ok {
		return false
	}
	s.linked[k] = struct{}{}
	s.links = append(s.links, Link{Source: source, Target: target})
	return true
}

// Node returns the node with the given id.
func (s *Store) Node(id string) (*Node, bool) {
	n, ok := s.index[id]
	return n, ok
}

// Has reports whether a node with the given id exists.
func (s *Store) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Nodes returns the nodes in first-seen order.
func (s *Store) Nodes() []*Node { return slices.Clone(s.nodes) }

// Links returns the links in insertion order.
func (s *Store) Links() []Link { return slices.Clone(s.links) }

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// LinkCount returns the number of links.
func (s *Store) LinkCount() int { return len(s.links) }

// Bodies returns the simulated part of every node, in node order.
func (s *Store) Bodies() []*force.Body {
	out := make([]*force.Body, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = &n.Body
	}
	return out
}

// Edges returns the links as simulator edges.
func (s *Store) Edges() []force.Edge {
	out := make([]force.Edge, len(s.links))
	for i, l := range s.links {
		out[i] = force.Edge{Source: l.Source, Target: l.Target}
	}
	return out
}

// FindUserByLogin returns the user node with the given login, compared
// case-insensitively as GitHub does.
func (s *Store) FindUserByLogin(login string) (*Node, bool) {
	for _, n := range s.nodes {
		if n.Kind == social.KindUser && strings.EqualFold(n.Login(), login) {
			return n, true
		}
	}
	return nil, false
}

// Validate checks that every identifier is unique and every link endpoint
// resolves to a node.
func (s *Store) Validate() error {
	seen := make(map[string]struct{}, len(s.nodes))
	for _, n := range s.nodes {
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	for _, l := range s.links {
		if l.Source == l.Target {
			return fmt.Errorf("%w: %s", ErrSelfLink, l.Source)
		}
		if !s.Has(l.Source) {
			return fmt.Errorf("%w: %s-%s (missing %s)", ErrDanglingLink, l.Source, l.Target, l.Source)
		}
		if !s.Has(l.Target) {
			return fmt.Errorf("%w: %s-%s (missing %s)", ErrDanglingLink, l.Source, l.Target, l.Target)
		}
	}
	return nil
}

// Reset drops every node and link.
func (s *Store) Reset() {
	s.nodes = nil
	s.links = nil
	clear(s.index)
	clear(s.linked)
}
