// Package pipeline renders a social graph without a host: it fetches a
// user's starred repositories, optionally expands repository owners the way
// an interactive host reacts to click-repo notifications, settles the force
// layout and exports the scene.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Fetch: Query the root user and their starred repositories
//  2. Expand: Click repository labels and fetch the owners they ask for
//  3. Layout: Step the force simulation until it cools
//  4. Render: Export the scene (SVG, JSON display list) and the graph
//     (DOT, Graphviz SVG and PNG, graph JSON)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger, github.NewClient(token, cache, ttl))
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Login:        "octocat",
//	    ExpandOwners: 5,
//	    Formats:      []string{"svg", "dot"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stargraph/pkg/cache"
	"github.com/matzehuels/stargraph/pkg/engine"
	errs "github.com/matzehuels/stargraph/pkg/errors"
	"github.com/matzehuels/stargraph/pkg/graph"
	"github.com/matzehuels/stargraph/pkg/integrations/github"
	"github.com/matzehuels/stargraph/pkg/social"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultFirst is how many starred repositories are requested per user.
	DefaultFirst = github.DefaultFirst

	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 900.0

	// DefaultMargin is the space left around fitted content.
	DefaultMargin = 40.0

	// MaxExpandOwners bounds how many owners a single run may fetch.
	MaxExpandOwners = 50
)

// Format constants for output formats.
const (
	FormatSVG         = "svg"
	FormatJSON        = "json"
	FormatGraph       = "graph"
	FormatDOT         = "dot"
	FormatGraphvizSVG = "graphviz-svg"
	FormatPNG         = "png"
)

// AllFormats lists the supported output formats in render order.
var AllFormats = []string{FormatSVG, FormatJSON, FormatGraph, FormatDOT, FormatGraphvizSVG, FormatPNG}

// FormatExt maps an output format to its file extension.
var FormatExt = map[string]string{
	FormatSVG:         ".svg",
	FormatJSON:        ".scene.json",
	FormatGraph:       ".graph.json",
	FormatDOT:         ".dot",
	FormatGraphvizSVG: ".graphviz.svg",
	FormatPNG:         ".png",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run. It supports JSON
// serialization for API requests.
type Options struct {
	// Fetch options
	Login        string `json:"login"`
	First        int    `json:"first,omitempty"`
	ExpandOwners int    `json:"expand_owners,omitempty"`
	Refresh      bool   `json:"refresh,omitempty"`

	// Layout options
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Seed   uint32  `json:"seed,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Expanded bool     `json:"expanded,omitempty"` // force the labelled view regardless of fitted zoom
	Pinned   bool     `json:"pinned,omitempty"`   // graphviz keeps the force layout positions
	Detailed bool     `json:"detailed,omitempty"` // graphviz labels carry ids

	// Runtime options (not serialized)
	Logger *log.Logger   `json:"-"`
	Engine engine.Config `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Root is the payload fetched for Options.Login.
	Root *social.UserWithRepos

	// Graph is the merged graph after expansion and layout.
	Graph *graph.Store

	// GraphHash is the content hash of the settled graph.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Fetches    int
	Ticks      int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errs.ValidateFormat(format, AllFormats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errs.ValidateLogin(o.Login); err != nil {
		return err
	}
	if o.ExpandOwners < 0 || o.ExpandOwners > MaxExpandOwners {
		return errs.New(errs.ErrCodeInvalidInput, "expand_owners must be between 0 and %d", MaxExpandOwners)
	}
	if o.First == 0 {
		o.First = DefaultFirst
	}
	if o.First < 0 || o.First > github.MaxFirst {
		return errs.New(errs.ErrCodeInvalidInput, "first must be between 1 and %d", github.MaxFirst)
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Engine.MaxSettleSteps == 0 {
		o.Engine = engine.DefaultConfig()
	}
	if o.Seed == 0 {
		o.Seed = o.Engine.Seed
	}
	o.Engine.Seed = o.Seed
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	f := format
	switch {
	case o.Expanded && (format == FormatSVG || format == FormatJSON):
		f += "+expanded"
	case o.Pinned && (format == FormatDOT || format == FormatGraphvizSVG || format == FormatPNG):
		f += "+pinned"
	}
	if o.Detailed && (format == FormatDOT || format == FormatGraphvizSVG || format == FormatPNG) {
		f += "+detailed"
	}
	return cache.ArtifactKeyOpts{
		Format: f,
		Width:  o.Width,
		Height: o.Height,
		Seed:   o.Seed,
	}
}

func (o *Options) String() string {
	return fmt.Sprintf("%s (first=%d, expand=%d, formats=%v)", o.Login, o.First, o.ExpandOwners, o.Formats)
}
