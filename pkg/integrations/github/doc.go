// Package github fetches users and their starred repositories from the
// GitHub GraphQL API (https://api.github.com/graphql).
//
// # Usage
//
//	client := github.NewClient(token, c, 24*time.Hour)
//	u, err := client.FetchUser(ctx, "octocat", github.DefaultFirst, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	eng.Ingest(u)
//
// [Client.FetchUser] returns a [social.UserWithRepos], the payload the graph
// engine ingests. Repository owners whose GraphQL type is Organization are
// marked IsInOrganization.
//
// # Authentication
//
// The GraphQL API requires a token. The CLI reads GITHUB_TOKEN or a token
// stored by "stargraph github login", which runs the device flow in
// [OAuthClient].
//
// # Caching
//
// Payloads are cached under [cache.Keyer.PayloadKey], so the same login and
// page size is fetched once per TTL. Pass refresh=true to bypass the cache.
//
// # Errors
//
// An unknown login yields an error with code USER_NOT_FOUND that also
// matches integrations.ErrNotFound.
package github
