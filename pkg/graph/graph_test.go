package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/stargraph/pkg/social"
)

func TestMarshalGraph(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *Store
		wantNodes int
		wantLinks int
		check     func(t *testing.T, g Graph)
	}{
		{
			name:      "Empty",
			build:     func() *Store { return New(SkipKnownSubject) },
			wantNodes: 0,
			wantLinks: 0,
			check: func(t *testing.T, g Graph) {
				if g.Links == nil {
					t.Error("links should serialize as [] rather than null")
				}
			},
		},
		{
			name: "Scenario",
			build: func() *Store {
				s := New(SkipKnownSubject)
				s.Ingest(alice())
				return s
			},
			wantNodes: 2,
			wantLinks: 1,
			check: func(t *testing.T, g Graph) {
				if g.Nodes[0].Kind != social.KindUser || g.Nodes[0].Login != "alice" {
					t.Errorf("first node = %+v", g.Nodes[0])
				}
				if g.Nodes[1].Owner == nil || g.Nodes[1].Owner.Login != "bob" {
					t.Errorf("repo owner = %+v", g.Nodes[1].Owner)
				}
				if g.Nodes[0].X != nil {
					t.Error("unplaced nodes should omit positions")
				}
			},
		},
		{
			name: "PreservesPositions",
			build: func() *Store {
				s := New(SkipKnownSubject)
				s.Ingest(alice())
				n, _ := s.Node("U1")
				n.SetPosition(10, -5)
				return s
			},
			wantNodes: 2,
			wantLinks: 1,
			check: func(t *testing.T, g Graph) {
				if g.Nodes[0].X == nil || *g.Nodes[0].X != 10 || *g.Nodes[0].Y != -5 {
					t.Errorf("position = %v, %v", g.Nodes[0].X, g.Nodes[0].Y)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalGraph(tt.build())
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}

			var result Graph
			if err := json.Unmarshal(data, &result); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := len(result.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(result.Links); got != tt.wantLinks {
				t.Errorf("links = %d, want %d", got, tt.wantLinks)
			}
			if tt.check != nil {
				tt.check(t, result)
			}
		})
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantLinks int
		wantErr   bool
		check     func(t *testing.T, s *Store)
	}{
		{
			name: "Valid",
			input: `{
				"nodes": [
					{"id": "U1", "kind": "user", "login": "alice", "x": 1, "y": 2},
					{"id": "R1", "kind": "repo", "name": "proj", "owner": {"id": "O1", "login": "acme", "isInOrganization": true}}
				],
				"links": [{"source": "U1", "target": "R1"}]
			}`,
			wantNodes: 2,
			wantLinks: 1,
			check: func(t *testing.T, s *Store) {
				u, _ := s.Node("U1")
				if !u.Placed() || u.X != 1 || u.Y != 2 {
					t.Errorf("U1 at (%v, %v), placed=%v", u.X, u.Y, u.Placed())
				}
				r, _ := s.Node("R1")
				if !r.OrgOwned() {
					t.Error("R1 should be org owned")
				}
			},
		},
		{
			name:      "Empty",
			input:     `{"nodes": [], "links": []}`,
			wantNodes: 0,
			wantLinks: 0,
		},
		{
			name:    "Invalid",
			input:   `{invalid json}`,
			wantErr: true,
		},
		{
			name:    "UnknownKind",
			input:   `{"nodes": [{"id": "X", "kind": "org"}]}`,
			wantErr: true,
		},
		{
			name:    "DanglingLink",
			input:   `{"nodes": [{"id": "U1", "kind": "user"}], "links": [{"source": "U1", "target": "R1"}]}`,
			wantErr: true,
		},
		{
			name:    "DuplicateNode",
			input:   `{"nodes": [{"id": "U1", "kind": "user"}, {"id": "U1", "kind": "repo"}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ReadGraph(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadGraph: %v", err)
			}
			if got := s.NodeCount(); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := s.LinkCount(); got != tt.wantLinks {
				t.Errorf("links = %d, want %d", got, tt.wantLinks)
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	s := New(SkipKnownSubject)
	s.Ingest(alice())

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(s, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if got.NodeCount() != 2 || got.LinkCount() != 1 {
		t.Errorf("graph has %d nodes, %d links; want 2, 1", got.NodeCount(), got.LinkCount())
	}
	if n, ok := got.FindUserByLogin("alice"); !ok || n.ID != "U1" {
		t.Error("alice should survive the round trip")
	}
}

func TestReadGraphFileNotFound(t *testing.T) {
	_, err := ReadGraphFile(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestWriteGraph(t *testing.T) {
	s := New(SkipKnownSubject)
	s.Ingest(alice())

	var buf bytes.Buffer
	if err := WriteGraph(s, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"kind": "user"`, `"kind": "repo"`, `"source": "U1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}
