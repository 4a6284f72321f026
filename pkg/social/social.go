package social

import (
	"encoding/json"
	"fmt"
	"io"
)

// Kind discriminates the two node variants.
type Kind int

const (
	// KindUser marks a GitHub user (the subject of a query or a resolved owner).
	KindUser Kind = iota
	// KindRepo marks a starred repository.
	KindRepo
)

// String returns "user" or "repo".
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindRepo:
		return "repo"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes "user" or "repo".
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "user":
		*k = KindUser
	case "repo":
		*k = KindRepo
	default:
		return fmt.Errorf("unknown node kind %q", b)
	}
	return nil
}

// User is the profile part of a query result.
type User struct {
	ID               string `json:"id"`
	Login            string `json:"login"`
	Name             string `json:"name,omitempty"`
	AvatarURL        string `json:"avatarUrl,omitempty"`
	Bio              string `json:"bio,omitempty"`
	IsInOrganization bool   `json:"isInOrganization,omitempty"`
}

// Owner references the account that owns a repository.
type Owner struct {
	ID               string `json:"id"`
	Login            string `json:"login"`
	IsInOrganization bool   `json:"isInOrganization"`
}

// Repo is a starred repository. The owner travels embedded and is only
// resolved to a user node when the host fetches it.
type Repo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner Owner  `json:"owner"`
}

// Starred holds the repository connection of a query result.
type Starred struct {
	Nodes []*Repo `json:"nodes"`
}

// UserWithRepos is the ingestion payload: a user bundled with the
// repositories they starred.
type UserWithRepos struct {
	User
	StarredRepositories *Starred `json:"starredRepositories,omitempty"`
}

// Repos returns the non-nil starred repositories in order.
func (u *UserWithRepos) Repos() []*Repo {
	if u == nil || u.StarredRepositories == nil {
		return nil
	}
	out := make([]*Repo, 0, len(u.StarredRepositories.Nodes))
	for _, r := range u.StarredRepositories.Nodes {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Valid reports whether the payload identifies a user. Invalid payloads
// are ignored by ingestion.
func (u *UserWithRepos) Valid() bool {
	return u != nil && u.ID != ""
}

// DecodeUserWithRepos reads one payload from r. A JSON null yields a nil
// payload and no error.
func DecodeUserWithRepos(r io.Reader) (*UserWithRepos, error) {
	var u *UserWithRepos
	if err := json.NewDecoder(r).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return u, nil
}
