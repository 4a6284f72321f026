package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stargraph/pkg/cache"
	"github.com/matzehuels/stargraph/pkg/engine"
	"github.com/matzehuels/stargraph/pkg/graph"
	"github.com/matzehuels/stargraph/pkg/observability"
	"github.com/matzehuels/stargraph/pkg/scene"
	"github.com/matzehuels/stargraph/pkg/social"
)

// MountID is the id of the offscreen container the pipeline renders into.
const MountID = "stargraph"

// Fetcher loads one user and their starred repositories.
// *github.Client satisfies it.
type Fetcher interface {
	FetchUser(ctx context.Context, login string, first int, refresh bool) (*social.UserWithRepos, error)
}

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for its collaborators: every Execute call
// builds its own engine, so multiple goroutines can share a Runner.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Fetcher Fetcher
	Hooks   observability.PipelineHooks
}

// NewRunner creates a runner with the given cache, keyer and fetcher.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, f Fetcher) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Fetcher: f,
	}
}

func (r *Runner) hooks() observability.PipelineHooks {
	if r.Hooks != nil {
		return r.Hooks
	}
	return observability.Pipeline()
}

// Execute runs the complete fetch → expand → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if r.Fetcher == nil {
		return nil, fmt.Errorf("pipeline: no fetcher configured")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	doc := scene.NewDocument()
	doc.AddMount(MountID, opts.Width, opts.Height)
	e, err := engine.New(doc, "#"+MountID,
		engine.WithConfig(opts.Engine),
		engine.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	defer e.Close()

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Fetch
	fetchStart := time.Now()
	root, err := r.fetch(ctx, opts, opts.Login)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Root = root
	result.Stats.Fetches = 1
	e.Ingest(root)

	// Stage 2: Expand
	if opts.ExpandOwners > 0 {
		n, err := r.expand(ctx, e, opts)
		if err != nil {
			return nil, fmt.Errorf("expand: %w", err)
		}
		result.Stats.Fetches += n
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.NodeCount = e.Store().NodeCount()
	result.Stats.LinkCount = e.Store().LinkCount()

	r.Logger.Info("fetched graph",
		"login", opts.Login,
		"users", result.Stats.Fetches,
		"nodes", result.Stats.NodeCount,
		"links", result.Stats.LinkCount,
		"duration", result.Stats.FetchTime)

	// Stage 3: Layout
	layoutStart := time.Now()
	result.Stats.Ticks = r.settle(ctx, e)
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("settled layout",
		"ticks", result.Stats.Ticks,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	renderStart := time.Now()
	artifacts, hash, renderHit, err := r.RenderWithCacheInfo(ctx, e, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.GraphHash = hash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	// The engine drops its graph on Close, so hand the caller a copy.
	g, err := graph.ToStore(graph.FromStore(e.Store()), e.Store().Policy())
	if err != nil {
		return nil, fmt.Errorf("copy graph: %w", err)
	}
	result.Graph = g
	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
