package integrations

import (
	"net/http"
	"time"

	errs "github.com/matzehuels/stargraph/pkg/errors"
	"github.com/matzehuels/stargraph/pkg/httputil"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when the upstream resource doesn't exist.
	ErrNotFound = errs.New(errs.ErrCodeNotFound, "resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errs.New(errs.ErrCodeNetwork, "network error")

	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errs.New(errs.ErrCodeUnauthorized, "unauthorized")
)

// NewHTTPClient creates an HTTP client with a standard timeout whose
// requests are reported to the observability HTTP hooks.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   httpTimeout,
		Transport: httputil.NewTransport(nil),
	}
}
