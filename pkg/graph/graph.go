package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stargraph/pkg/social"
)

// =============================================================================
// Wire Types
// =============================================================================

// Graph is the node-link JSON form of a Store.
type Graph struct {
	Nodes []NodeData `json:"nodes"`
	Links []Link     `json:"links"`
}

// NodeData is the serialized form of a Node. Positions are included so an
// exported layout can be re-rendered without re-running the simulation.
type NodeData struct {
	ID               string        `json:"id"`
	Kind             social.Kind   `json:"kind"`
	Login            string        `json:"login,omitempty"`
	Name             string        `json:"name,omitempty"`
	AvatarURL        string        `json:"avatarUrl,omitempty"`
	Bio              string        `json:"bio,omitempty"`
	IsInOrganization bool          `json:"isInOrganization,omitempty"`
	Owner            *social.Owner `json:"owner,omitempty"`
	X                *float64      `json:"x,omitempty"`
	Y                *float64      `json:"y,omitempty"`
}

// FromStore converts a store to its wire form, preserving first-seen order.
func FromStore(s *Store) Graph {
	out := Graph{
		Nodes: make([]NodeData, 0, s.NodeCount()),
		Links: s.Links(),
	}
	if out.Links == nil {
		out.Links = []Link{}
	}
	for _, n := range s.nodes {
		out.Nodes = append(out.Nodes, NodeDataOf(n))
	}
	return out
}

// NodeDataOf converts one node to its wire form.
func NodeDataOf(n *Node) NodeData {
	d := NodeData{ID: n.ID, Kind: n.Kind}
	switch n.Kind {
	case social.KindUser:
		d.Login = n.User.Login
		d.Name = n.User.Name
		d.AvatarURL = n.User.AvatarURL
		d.Bio = n.User.Bio
		d.IsInOrganization = n.User.IsInOrganization
	case social.KindRepo:
		d.Name = n.Repo.Name
		owner := n.Repo.Owner
		d.Owner = &owner
	}
	if n.Placed() {
		x, y := n.X, n.Y
		d.X, d.Y = &x, &y
	}
	return d
}

// ToStore rebuilds a store from its wire form. Links must reference nodes
// declared in the same document.
func ToStore(g Graph, policy IngestPolicy) (*Store, error) {
	s := New(policy)
	for _, d := range g.Nodes {
		var n *Node
		switch d.Kind {
		case social.KindUser:
			n = NewUserNode(social.User{
				ID:               d.ID,
				Login:            d.Login,
				Name:             d.Name,
				AvatarURL:        d.AvatarURL,
				Bio:              d.Bio,
				IsInOrganization: d.IsInOrganization,
			})
		case social.KindRepo:
			r := social.Repo{ID: d.ID, Name: d.Name}
			if d.Owner != nil {
				r.Owner = *d.Owner
			}
			n = NewRepoNode(r)
		default:
			return nil, fmt.Errorf("node %s: unknown kind %v", d.ID, d.Kind)
		}
		if d.X != nil && d.Y != nil {
			n.SetPosition(*d.X, *d.Y)
		}
		if err := s.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, l := range g.Links {
		if _, err := s.AddLink(l.Source, l.Target); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalGraph converts a store to JSON bytes.
func MarshalGraph(s *Store) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a store to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(s *Store, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(s, f)
}

// WriteGraph writes a store as JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(s *Store, w io.Writer) error {
	return writeGraphTo(s, w)
}

// ReadGraphFile reads a JSON file and returns the decoded store.
func ReadGraphFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader into a store using the
// default ingest policy.
func ReadGraph(r io.Reader) (*Store, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(s *Store, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromStore(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*Store, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToStore(data, SkipKnownSubject)
}
