package prom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEngineHooks(t *testing.T) {
	c := New()
	c.OnIngest(2, 1, false)
	c.OnIngest(0, 0, true)
	c.OnClick("click-repo")
	c.OnClick("click-repo")
	c.OnViewToggle("collapsed")

	if got := testutil.ToFloat64(c.NodesAdded); got != 2 {
		t.Errorf("nodes added = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Ingests.WithLabelValues("skipped")); got != 1 {
		t.Errorf("skipped ingests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Clicks.WithLabelValues("click-repo")); got != 2 {
		t.Errorf("click-repo = %v, want 2", got)
	}
}

func TestCacheAndHTTPHooks(t *testing.T) {
	ctx := context.Background()
	c := New()
	c.OnCacheHit(ctx, "http")
	c.OnCacheMiss(ctx, "http")
	c.OnCacheSet(ctx, "http", 512)
	c.OnResponse(ctx, "POST", "api.github.com", "/graphql", 200, time.Millisecond)
	c.OnError(ctx, "POST", "api.github.com", "/graphql", errors.New("boom"))
	c.OnFetchComplete(ctx, "alice", 3, time.Second, nil)

	if got := testutil.ToFloat64(c.CacheBytes.WithLabelValues("http")); got != 512 {
		t.Errorf("cache bytes = %v, want 512", got)
	}
	if got := testutil.ToFloat64(c.Requests.WithLabelValues("POST", "api.github.com", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Fetches.WithLabelValues("ok")); got != 1 {
		t.Errorf("fetches = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	c := New()
	c.ObserveServerRequest("GET", "/health", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `stargraph_http_requests_total{method="GET",route="/health",status="200"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", rec.Body.String())
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.OnClick("click-user")
	if got := testutil.ToFloat64(b.Clicks.WithLabelValues("click-user")); got != 0 {
		t.Errorf("second collector saw %v clicks", got)
	}
}
