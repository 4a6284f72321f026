// Package integrations provides HTTP clients for upstream APIs.
//
// # Overview
//
// [Client] is the shared transport for the API clients in the subpackages:
//
//   - [github]: the GitHub GraphQL API (users and their starred repositories)
//
// # Client Pattern
//
// Clients embed [Client] and follow one pattern:
//
//	client := github.NewClient(token, cache, 24*time.Hour)
//	u, err := client.FetchUser(ctx, "alice", false) // false = use cache
//
// [Client] handles:
//   - Response caching through a [cache.Cache] with a key prefix and TTL
//   - Retry with exponential backoff for network errors, 5xx and 429
//   - Client-side rate limiting (golang.org/x/time/rate)
//   - A circuit breaker that fails fast while the upstream is down
//     (github.com/sony/gobreaker)
//
// Errors wrap the sentinels [ErrNotFound], [ErrNetwork] and
// [ErrUnauthorized], which carry codes from package errors.
package integrations
