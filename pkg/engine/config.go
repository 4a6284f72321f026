package engine

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stargraph/pkg/graph"
	"github.com/matzehuels/stargraph/pkg/observability"
	"github.com/matzehuels/stargraph/pkg/scene"
	"github.com/matzehuels/stargraph/pkg/viewport"
)

// FrameInterval is the tick period of a Loop while the simulation is alive.
const FrameInterval = 16 * time.Millisecond

// Config holds every tunable constant of an engine.
type Config struct {
	// Viewport limits and initial framing.
	Viewport viewport.Config `toml:"viewport" json:"viewport"`

	// Style is the visual look of the scene.
	Style scene.Style `toml:"style" json:"style"`

	// ChargeStrength is the many-body strength; negative repels.
	ChargeStrength float64 `toml:"charge_strength" json:"chargeStrength" validate:"lt=0"`
	// LinkDistance is the rest length of user–repository links.
	LinkDistance float64 `toml:"link_distance" json:"linkDistance" validate:"gt=0"`
	// CollideRadius is the collision radius of each node, so centres are
	// kept at least 2*CollideRadius apart.
	CollideRadius float64 `toml:"collide_radius" json:"collideRadius" validate:"gte=0"`

	// Alpha is the energy re-injected on every structural update.
	Alpha         float64 `toml:"alpha" json:"alpha" validate:"gt=0,lte=1"`
	AlphaDecay    float64 `toml:"alpha_decay" json:"alphaDecay" validate:"gt=0,lt=1"`
	AlphaMin      float64 `toml:"alpha_min" json:"alphaMin" validate:"gt=0,lt=1"`
	VelocityDecay float64 `toml:"velocity_decay" json:"velocityDecay" validate:"gte=0,lte=1"`
	// Seed drives the jiggle generator so layouts are reproducible.
	Seed uint32 `toml:"seed" json:"seed"`
	// MaxSettleSteps bounds Settle.
	MaxSettleSteps int `toml:"max_settle_steps" json:"maxSettleSteps" validate:"gt=0"`

	// FrameInterval is the Loop's tick period.
	FrameInterval time.Duration `toml:"frame_interval" json:"frameInterval" validate:"gt=0"`

	// IngestPolicy decides what re-ingesting a known user does: "skip" or
	// "merge".
	IngestPolicy string `toml:"ingest_policy" json:"ingestPolicy" validate:"omitempty,oneof=skip merge"`

	// ReuseResolvedOwners turns a repository click into a click-user event
	// when the owner is already in the graph, so the host does not fetch it
	// again.
	ReuseResolvedOwners bool `toml:"reuse_resolved_owners" json:"reuseResolvedOwners"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Viewport:            viewport.DefaultConfig(),
		Style:               scene.DefaultStyle(),
		ChargeStrength:      -3000,
		LinkDistance:        500,
		CollideRadius:       50,
		Alpha:               0.5,
		AlphaDecay:          0.05,
		AlphaMin:            0.001,
		VelocityDecay:       0.4,
		Seed:                1,
		MaxSettleSteps:      1000,
		FrameInterval:       FrameInterval,
		IngestPolicy:        graph.SkipKnownSubject.String(),
		ReuseResolvedOwners: true,
	}
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	cfg      Config
	logger   *log.Logger
	policy   *graph.IngestPolicy
	measurer scene.Measurer
	hooks    observability.EngineHooks
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets the engine's logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIngestPolicy overrides the configured ingest policy.
func WithIngestPolicy(p graph.IngestPolicy) Option {
	return func(o *options) { o.policy = &p }
}

// WithMeasurer sets the text measurer used to size label pills.
func WithMeasurer(m scene.Measurer) Option {
	return func(o *options) { o.measurer = m }
}

// WithHooks sets the engine's hooks. Without it the globally registered
// hooks are used.
func WithHooks(h observability.EngineHooks) Option {
	return func(o *options) { o.hooks = h }
}
