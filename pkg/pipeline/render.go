package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/stargraph/pkg/cache"
	"github.com/matzehuels/stargraph/pkg/engine"
	"github.com/matzehuels/stargraph/pkg/graph"
	"github.com/matzehuels/stargraph/pkg/render/nodelink"
	"github.com/matzehuels/stargraph/pkg/scene/sink"
)

// RenderWithCacheInfo exports the engine's current scene and graph in every
// requested format. Artifacts are cached under the hash of the settled
// graph, so an unchanged layout is never rendered twice. It returns the
// artifacts, the graph hash and whether every artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, e *engine.Engine, opts Options) (map[string][]byte, string, bool, error) {
	r.applyLogger(&opts)
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, "", false, err
	}

	graphData, err := graph.MarshalGraph(e.Store())
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	hash := cache.Hash(graphData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, hash, true, nil
	}

	h := r.hooks()
	h.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, e, graphData, opts)
	h.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
			r.Logger.Debug("cache artifact", "format", format, "err", err)
		}
	}
	return rendered, hash, false, nil
}

// Render exports the engine state without consulting the cache. graphData
// is the graph's JSON form, reused for the graph format.
func Render(ctx context.Context, e *engine.Engine, graphData []byte, opts Options) (map[string][]byte, error) {
	frame(e, opts.Expanded)

	nl := nodelink.Options{
		Pinned:   opts.Pinned,
		Detailed: opts.Detailed,
		Style:    e.Config().Style,
	}
	var dot string
	dotSource := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(e.Store(), nl)
		}
		return dot
	}

	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			data = sink.RenderSVG(e.Surface(),
				sink.WithFitContent(DefaultMargin),
				sink.WithEmbeddedFont())
		case FormatJSON:
			data, err = sink.RenderJSON(e.Surface())
		case FormatGraph:
			data = graphData
		case FormatDOT:
			data = []byte(dotSource())
		case FormatGraphvizSVG:
			data, err = nodelink.RenderSVG(ctx, dotSource(), nl)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dotSource(), nl)
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

// frame points the camera at the settled layout. The fitted zoom decides
// the level of detail unless expanded forces the labelled view, in which
// case the surface is framed without consulting the controller.
func frame(e *engine.Engine, expanded bool) {
	maxK := e.Config().Viewport.MaxZoom
	if !expanded {
		e.Apply(e.Surface().FitTransform(DefaultMargin, maxK))
		return
	}
	e.ZoomTo(maxK)
	e.Surface().SetTransform(e.Surface().FitTransform(DefaultMargin, maxK))
}
