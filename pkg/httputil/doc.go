// Package httputil provides HTTP plumbing shared by the upstream clients.
//
// # Retry
//
// [Retry] re-runs an operation that failed with a [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// The delay doubles after each attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetch(ctx)
//	})
//
// Other errors are returned at once.
//
// # Instrumentation
//
// [Transport] is an http.RoundTripper that reports every request to the
// registered observability HTTP hooks, so a Prometheus collector sees
// upstream traffic without the clients importing it.
//
// Response caching lives in package cache.
package httputil
