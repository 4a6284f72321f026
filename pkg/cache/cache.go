// Package cache stores fetched GitHub responses between runs.
//
// # Overview
//
// [Cache] is a byte-oriented key-value store with a per-entry TTL. Graph
// state is never cached; only upstream responses and rendered artifacts
// are, keyed by a [Keyer].
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [SQLiteCache]: a single SQLite database file
//   - [RedisCache]: a shared Redis instance, for several servers
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled
//
// [Open] selects a backend from a [Config]; [Observed] wraps any backend
// with the registered observability hooks.
package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/stargraph/pkg/observability"
)

// DefaultTTL is how long fetched responses stay fresh.
const DefaultTTL = 24 * time.Hour

// Cache is a key-value store for serialized data. Implementations are safe
// for concurrent use.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear removes every entry from c, if the backend supports it.
func Clear(ctx context.Context, c Cache) error {
	if cl, ok := c.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return ErrUnsupported
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config selects and addresses a backend.
type Config struct {
	Backend string `toml:"backend" validate:"omitempty,oneof=file sqlite redis mongo none"`
	// Dir is the directory of the file backend, or of the database file of
	// the sqlite backend.
	Dir string `toml:"dir"`
	// URL addresses redis ("redis://host:6379/0") or mongo
	// ("mongodb://host:27017").
	URL        string        `toml:"url" validate:"required_if=Backend redis,required_if=Backend mongo"`
	Database   string        `toml:"database"`
	Collection string        `toml:"collection"`
	TTL        time.Duration `toml:"ttl"`
}

// Open creates the backend named by cfg.Backend. An empty backend selects
// the file cache.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case "", BackendFile:
		c, err = orNil(NewFileCache(cfg.Dir))
	case BackendSQLite:
		dir := cfg.Dir
		if dir == "" {
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		c, err = orNil(NewSQLiteCache(filepath.Join(dir, "cache.db")))
	case BackendRedis:
		c, err = orNil(NewRedisCache(ctx, cfg.URL))
	case BackendMongo:
		c, err = orNil(NewMongoCache(ctx, cfg.URL, cfg.Database, cfg.Collection))
	case BackendNone:
		c = NewNullCache()
	default:
		err = fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Backend, err)
	}
	return c, nil
}

// orNil keeps a typed nil pointer out of the Cache interface.
func orNil[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

// KeyType returns the namespace of a key: the text before its first colon.
func KeyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}

// Observed reports hits, misses and writes of c to the registered cache
// hooks.
func Observed(c Cache) Cache { return &observed{Cache: c} }

type observed struct{ Cache }

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, ok, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}

func (o *observed) Clear(ctx context.Context) error { return Clear(ctx, o.Cache) }
