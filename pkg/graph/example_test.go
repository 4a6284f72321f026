package graph_test

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/stargraph/pkg/graph"
	"github.com/matzehuels/stargraph/pkg/social"
)

func ExampleStore_Ingest() {
	payload := &social.UserWithRepos{
		User: social.User{ID: "U1", Login: "alice"},
		StarredRepositories: &social.Starred{Nodes: []*social.Repo{
			{ID: "R1", Name: "proj", Owner: social.Owner{ID: "U2", Login: "bob"}},
		}},
	}

	s := graph.New(graph.SkipKnownSubject)
	first := s.Ingest(payload)
	second := s.Ingest(payload)

	fmt.Println("first:", first.NodesAdded, "nodes,", first.LinksAdded, "links")
	fmt.Println("second skipped:", second.Skipped)
	fmt.Println("total:", s.NodeCount(), "nodes,", s.LinkCount(), "links")
	// Output:
	// first: 2 nodes, 1 links
	// second skipped: true
	// total: 2 nodes, 1 links
}

func ExampleWriteGraph() {
	s := graph.New(graph.SkipKnownSubject)
	s.Ingest(&social.UserWithRepos{
		User: social.User{ID: "U1", Login: "alice"},
		StarredRepositories: &social.Starred{Nodes: []*social.Repo{
			{ID: "R1", Name: "proj", Owner: social.Owner{ID: "U2", Login: "bob"}},
		}},
	})

	var buf bytes.Buffer
	if err := graph.WriteGraph(s, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "U1",
	//       "kind": "user",
	//       "login": "alice"
	//     },
	//     {
	//       "id": "R1",
	//       "kind": "repo",
	//       "name": "proj",
	//       "owner": {
	//         "id": "U2",
	//         "login": "bob",
	//         "isInOrganization": false
	//       }
	//     }
	//   ],
	//   "links": [
	//     {
	//       "source": "U1",
	//       "target": "R1"
	//     }
	//   ]
	// }
}
