package github

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/stargraph/pkg/buildinfo"
	"github.com/matzehuels/stargraph/pkg/cache"
	errs "github.com/matzehuels/stargraph/pkg/errors"
	"github.com/matzehuels/stargraph/pkg/integrations"
	"github.com/matzehuels/stargraph/pkg/social"
)

// Default endpoints and limits.
const (
	DefaultBaseURL = "https://api.github.com"

	// DefaultFirst is how many starred repositories a query requests.
	DefaultFirst = 30

	// MaxFirst is GitHub's page size limit for connections.
	MaxFirst = 100
)

const userReposQuery = `query UserRepos($login: String!, $first: Int!) {
  user(login: $login) {
    id
    login
    name
    avatarUrl
    bio
    starredRepositories(first: $first, orderBy: {field: STARRED_AT, direction: DESC}) {
      totalCount
      nodes {
        id
        name
        owner { __typename id login }
      }
    }
  }
}`

// Client queries the GitHub GraphQL API. It handles caching, retries and
// bearer-token authentication through the embedded integrations client.
type Client struct {
	*integrations.Client
	baseURL string
	keyer   cache.Keyer
}

type options struct {
	baseURL string
	keyer   cache.Keyer
	shared  []integrations.ClientOption
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise instance or a test server.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithKeyer sets the cache keyer, typically a scoped one.
func WithKeyer(k cache.Keyer) Option {
	return func(o *options) { o.keyer = k }
}

// WithClientOptions passes options to the underlying integrations client.
func WithClientOptions(opts ...integrations.ClientOption) Option {
	return func(o *options) { o.shared = append(o.shared, opts...) }
}

// NewClient creates a GitHub client. The GraphQL API requires a token;
// requests without one fail with integrations.ErrUnauthorized. A nil cache
// disables caching.
func NewClient(token string, c cache.Cache, ttl time.Duration, opts ...Option) *Client {
	o := options{baseURL: DefaultBaseURL, keyer: cache.NewDefaultKeyer()}
	for _, opt := range opts {
		opt(&o)
	}
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": buildinfo.UserAgent(),
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(c, "", ttl, headers, o.shared...),
		baseURL: o.baseURL,
		keyer:   o.keyer,
	}
}

// FetchUser returns login's profile with the first repositories they
// starred, most recent first. If refresh is true, cached data is bypassed.
func (c *Client) FetchUser(ctx context.Context, login string, first int, refresh bool) (*social.UserWithRepos, error) {
	if err := errs.ValidateLogin(login); err != nil {
		return nil, err
	}
	first = clampFirst(first)
	key := c.keyer.PayloadKey(login, cache.PayloadKeyOpts{First: first})

	var u social.UserWithRepos
	err := c.Cached(ctx, key, refresh, &u, func() error {
		p, err := c.query(ctx, login, first)
		if err != nil {
			return err
		}
		u = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) query(ctx context.Context, login string, first int) (*social.UserWithRepos, error) {
	req := graphQLRequest{
		Query:     userReposQuery,
		Variables: map[string]any{"login": login, "first": first},
	}
	var resp userReposResponse
	if err := c.Post(ctx, c.baseURL+"/graphql", req, &resp); err != nil {
		return nil, err
	}
	for _, e := range resp.Errors {
		if e.Type == "NOT_FOUND" {
			return nil, errs.Wrap(errs.ErrCodeUserNotFound, integrations.ErrNotFound, "github user %q", login)
		}
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: graphql: %s", integrations.ErrNetwork, resp.Errors[0].Message)
	}
	if resp.Data.User == nil {
		return nil, errs.Wrap(errs.ErrCodeUserNotFound, integrations.ErrNotFound, "github user %q", login)
	}
	return resp.Data.User.toPayload(), nil
}

// Viewer returns the account the token belongs to.
func (c *Client) Viewer(ctx context.Context) (*Viewer, error) {
	var v Viewer
	if err := c.Get(ctx, c.baseURL+"/user", &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func clampFirst(n int) int {
	switch {
	case n <= 0:
		return DefaultFirst
	case n > MaxFirst:
		return MaxFirst
	default:
		return n
	}
}
