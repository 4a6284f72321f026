package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/stargraph/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// backends returns the backends that need no external service.
func backends(t *testing.T) map[string]Cache {
	t.Helper()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	sc, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	t.Cleanup(func() {
		fc.Close()
		sc.Close()
	})
	return map[string]Cache{"file": fc, "sqlite": sc}
}

func TestBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, hit, err := c.Get(ctx, "http:github:alice"); err != nil || hit {
				t.Fatalf("Get on empty cache = %v, %v", hit, err)
			}
			want := []byte(`{"login":"alice"}`)
			if err := c.Set(ctx, "http:github:alice", want, time.Hour); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, hit, err := c.Get(ctx, "http:github:alice")
			if err != nil || !hit {
				t.Fatalf("Get = %v, %v", hit, err)
			}
			if !bytes.Equal(got, want) {
				t.Errorf("Get = %s, want %s", got, want)
			}

			// Overwrite
			if err := c.Set(ctx, "http:github:alice", []byte("v2"), 0); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if got, _, _ := c.Get(ctx, "http:github:alice"); string(got) != "v2" {
				t.Errorf("after overwrite Get = %s", got)
			}

			if err := c.Delete(ctx, "http:github:alice"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, hit, _ := c.Get(ctx, "http:github:alice"); hit {
				t.Error("entry still present after Delete")
			}
			if err := c.Delete(ctx, "missing"); err != nil {
				t.Errorf("Delete missing key: %v", err)
			}
		})
	}
}

func TestBackendExpiry(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := c.Set(ctx, "payload:x", []byte("x"), time.Nanosecond); err != nil {
				t.Fatal(err)
			}
			time.Sleep(5 * time.Millisecond)
			if _, hit, err := c.Get(ctx, "payload:x"); err != nil || hit {
				t.Errorf("expired entry: hit=%v err=%v", hit, err)
			}
		})
	}
}

func TestBackendClear(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"a", "b", "c"} {
				if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
					t.Fatal(err)
				}
			}
			if err := Clear(ctx, c); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			for _, k := range []string{"a", "b", "c"} {
				if _, hit, _ := c.Get(ctx, k); hit {
					t.Errorf("%s survived Clear", k)
				}
			}
		})
	}
}

func TestClearUnsupported(t *testing.T) {
	// Only the Cache methods are promoted, so Clear is hidden.
	c := struct{ Cache }{NewNullCache()}
	if err := Clear(context.Background(), c); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Clear = %v, want ErrUnsupported", err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheConcurrentSet(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "shared", []byte("value"), time.Hour)
		}()
	}
	wg.Wait()
	if got, hit, err := c.Get(ctx, "shared"); err != nil || !hit || string(got) != "value" {
		t.Errorf("Get = %q, %v, %v", got, hit, err)
	}
}

func TestSQLiteCachePrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	_ = c.Set(ctx, "old", []byte("x"), time.Nanosecond)
	_ = c.Set(ctx, "fresh", []byte("y"), time.Hour)
	_ = c.Set(ctx, "forever", []byte("z"), 0)
	time.Sleep(5 * time.Millisecond)

	n, err := c.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl was pruned")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tests := []struct {
		cfg     Config
		want    string
		wantErr bool
	}{
		{Config{Dir: dir}, "*cache.FileCache", false},
		{Config{Backend: BackendFile, Dir: dir}, "*cache.FileCache", false},
		{Config{Backend: BackendSQLite, Dir: dir}, "*cache.SQLiteCache", false},
		{Config{Backend: BackendNone}, "*cache.NullCache", false},
		{Config{Backend: BackendRedis, URL: "not a url"}, "", true},
		{Config{Backend: "memcached"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Backend, func(t *testing.T) {
			c, err := Open(ctx, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if c != nil {
					t.Errorf("got cache %T with error", c)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer c.Close()
			if got := typeName(c); got != tt.want {
				t.Errorf("Open = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(c Cache) string {
	switch c.(type) {
	case *FileCache:
		return "*cache.FileCache"
	case *SQLiteCache:
		return "*cache.SQLiteCache"
	case *NullCache:
		return "*cache.NullCache"
	}
	return "unknown"
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("github", "alice"); got != "http:github:alice" {
		t.Errorf("HTTPKey = %s", got)
	}

	p1 := k.PayloadKey("alice", PayloadKeyOpts{First: 30})
	p2 := k.PayloadKey("alice", PayloadKeyOpts{First: 100})
	if p1 == p2 {
		t.Error("different PayloadKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(p1, "payload:") {
		t.Errorf("PayloadKey = %s", p1)
	}

	a1 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "png"})
	if a1 == a2 {
		t.Error("different formats should produce different keys")
	}

	for _, key := range []string{k.HTTPKey("github", "x"), p1, a1} {
		if KeyType(key) == "other" {
			t.Errorf("KeyType(%s) = other", key)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	k := NewScopedKeyer(inner, "token:abc:")

	if got := k.HTTPKey("github", "alice"); got != "token:abc:http:github:alice" {
		t.Errorf("HTTPKey = %s", got)
	}
	opts := PayloadKeyOpts{First: 30}
	if got := k.PayloadKey("alice", opts); got != "token:abc:"+inner.PayloadKey("alice", opts) {
		t.Errorf("PayloadKey = %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	k := NewScopedKeyer(nil, "p:")
	if got := k.HTTPKey("github", "x"); got != "p:http:github:x" {
		t.Errorf("HTTPKey = %s", got)
	}
}

func TestKeyType(t *testing.T) {
	tests := map[string]string{
		"http:github:alice": "http",
		"payload:abc":       "payload",
		"plain":             "other",
		":leading":          "other",
	}
	for key, want := range tests {
		if got := KeyType(key); got != want {
			t.Errorf("KeyType(%q) = %q, want %q", key, got, want)
		}
	}
}

type recordingHooks struct {
	observability.NoopCacheHooks
	mu                sync.Mutex
	hits, misses, set []string
}

func (r *recordingHooks) OnCacheHit(_ context.Context, kt string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits = append(r.hits, kt)
}

func (r *recordingHooks) OnCacheMiss(_ context.Context, kt string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses = append(r.misses, kt)
}

func (r *recordingHooks) OnCacheSet(_ context.Context, kt string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set = append(r.set, kt)
}

func TestObserved(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetCacheHooks(rec)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Observed(fc)

	_, _, _ = c.Get(ctx, "payload:1")
	_ = c.Set(ctx, "payload:1", []byte("x"), time.Hour)
	_, _, _ = c.Get(ctx, "payload:1")

	if len(rec.misses) != 1 || len(rec.hits) != 1 || len(rec.set) != 1 {
		t.Fatalf("hits=%v misses=%v set=%v", rec.hits, rec.misses, rec.set)
	}
	if rec.hits[0] != "payload" {
		t.Errorf("key type = %q", rec.hits[0])
	}
	if err := Clear(ctx, c); err != nil {
		t.Errorf("Clear through Observed: %v", err)
	}
}
