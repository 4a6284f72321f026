package graph

import (
	"github.com/matzehuels/stargraph/pkg/force"
	"github.com/matzehuels/stargraph/pkg/social"
)

// Box is the measured size of a node's label, written back by the renderer
// after the node is first drawn.
type Box struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Node is one vertex of the social graph. Exactly one of User or Repo is
// set, as indicated by Kind.
//
// The embedded [force.Body] is the node's position and velocity; the
// simulator writes it and the renderer reads it.
type Node struct {
	force.Body
	Kind social.Kind
	User *social.User
	Repo *social.Repo
	Box  Box
}

// NewUserNode creates a user node from a profile.
func NewUserNode(u social.User) *Node {
	return &Node{Body: force.Body{ID: u.ID}, Kind: social.KindUser, User: &u}
}

// NewRepoNode creates a repository node. The owner stays embedded.
func NewRepoNode(r social.Repo) *Node {
	return &Node{Body: force.Body{ID: r.ID}, Kind: social.KindRepo, Repo: &r}
}

// Login returns the user's login handle, or "" for repositories.
func (n *Node) Login() string {
	if n.Kind == social.KindUser && n.User != nil {
		return n.User.Login
	}
	return ""
}

// HasLogin reports whether the node renders as a resolved user.
func (n *Node) HasLogin() bool { return n.Login() != "" }

// Name returns the display name: the user's name or the repository's name.
func (n *Node) Name() string {
	switch {
	case n.Kind == social.KindUser && n.User != nil:
		return n.User.Name
	case n.Kind == social.KindRepo && n.Repo != nil:
		return n.Repo.Name
	}
	return ""
}

// Label returns the text drawn in the node's pill: the login if present,
// otherwise the display name.
func (n *Node) Label() string {
	if l := n.Login(); l != "" {
		return l
	}
	return n.Name()
}

// AvatarURL returns the user's avatar reference, or "".
func (n *Node) AvatarURL() string {
	if n.Kind == social.KindUser && n.User != nil {
		return n.User.AvatarURL
	}
	return ""
}

// Owner returns the embedded owner of a repository node.
func (n *Node) Owner() (social.Owner, bool) {
	if n.Kind == social.KindRepo && n.Repo != nil {
		return n.Repo.Owner, true
	}
	return social.Owner{}, false
}

// OrgOwned reports whether the node is a repository owned by an
// organization.
func (n *Node) OrgOwned() bool {
	o, ok := n.Owner()
	return ok && o.IsInOrganization
}

// Role selects the node's label styling.
type Role int

const (
	RoleUser Role = iota
	RoleOrgRepo
	RolePersonalRepo
)

// String returns the role's name.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleOrgRepo:
		return "org-repo"
	case RolePersonalRepo:
		return "personal-repo"
	default:
		return "unknown"
	}
}

// Role classifies the node into one of the three label styles.
func (n *Node) Role() Role {
	switch {
	case n.Kind == social.KindUser:
		return RoleUser
	case n.OrgOwned():
		return RoleOrgRepo
	default:
		return RolePersonalRepo
	}
}
