package github

import "github.com/matzehuels/stargraph/pkg/social"

// Viewer is the authenticated account, as returned by the REST /user
// endpoint.
type Viewer struct {
	ID        int64  `json:"id"`
	NodeID    string `json:"node_id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// OAuthConfig holds OAuth configuration.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// OAuthToken represents an OAuth access token response.
type OAuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// graphQLRequest is the body of a POST to the GraphQL endpoint.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type userReposResponse struct {
	Data struct {
		User *apiUser `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type apiUser struct {
	ID                  string `json:"id"`
	Login               string `json:"login"`
	Name                string `json:"name"`
	AvatarURL           string `json:"avatarUrl"`
	Bio                 string `json:"bio"`
	StarredRepositories struct {
		TotalCount int        `json:"totalCount"`
		Nodes      []*apiRepo `json:"nodes"`
	} `json:"starredRepositories"`
}

type apiRepo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner struct {
		Typename string `json:"__typename"`
		ID       string `json:"id"`
		Login    string `json:"login"`
	} `json:"owner"`
}

// toPayload converts the GraphQL shape into the ingestion payload. An
// owner is organization-owned when its GraphQL type is Organization.
func (u *apiUser) toPayload() *social.UserWithRepos {
	out := &social.UserWithRepos{
		User: social.User{
			ID:        u.ID,
			Login:     u.Login,
			Name:      u.Name,
			AvatarURL: u.AvatarURL,
			Bio:       u.Bio,
		},
		StarredRepositories: &social.Starred{},
	}
	for _, r := range u.StarredRepositories.Nodes {
		if r == nil {
			continue
		}
		out.StarredRepositories.Nodes = append(out.StarredRepositories.Nodes, &social.Repo{
			ID:   r.ID,
			Name: r.Name,
			Owner: social.Owner{
				ID:               r.Owner.ID,
				Login:            r.Owner.Login,
				IsInOrganization: r.Owner.Typename == "Organization",
			},
		})
	}
	return out
}
