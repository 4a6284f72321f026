package server

import (
	"time"

	"github.com/matzehuels/stargraph/pkg/engine"
	"github.com/matzehuels/stargraph/pkg/integrations/github"
)

const (
	// DefaultAddr is the listen address of `stargraph serve`.
	DefaultAddr = ":8080"

	// DefaultSessionTTL is how long an idle session survives.
	DefaultSessionTTL = 30 * time.Minute

	// DefaultMaxSessions bounds concurrently open sessions.
	DefaultMaxSessions = 256

	// DefaultWidth and DefaultHeight size a session's mount when the client
	// does not say.
	DefaultWidth  = 1200.0
	DefaultHeight = 900.0

	// keepAlive is the interval of SSE comment frames.
	keepAlive = 30 * time.Second
)

// Config configures the HTTP host.
type Config struct {
	Addr           string        `toml:"addr" validate:"required"`
	AllowedOrigins []string      `toml:"allowed_origins"`
	SessionTTL     time.Duration `toml:"session_ttl" validate:"gte=0"`
	MaxSessions    int           `toml:"max_sessions" validate:"gte=0"`
	// First is how many starred repositories a fetch requests.
	First int `toml:"first" validate:"gte=0,lte=100"`
	// AutoExpand makes the server fetch and ingest repository owners on
	// click-repo instead of leaving it to the client.
	AutoExpand bool `toml:"auto_expand"`

	Engine engine.Config `toml:"-"`
}

// DefaultConfig returns the configuration used by `stargraph serve`.
func DefaultConfig() Config {
	return Config{
		Addr:           DefaultAddr,
		AllowedOrigins: []string{"*"},
		SessionTTL:     DefaultSessionTTL,
		MaxSessions:    DefaultMaxSessions,
		First:          github.DefaultFirst,
		Engine:         engine.DefaultConfig(),
	}
}

func (c *Config) setDefaults() {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = d.AllowedOrigins
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = d.SessionTTL
	}
	if c.MaxSessions == 0 {
		c.MaxSessions = d.MaxSessions
	}
	if c.First == 0 {
		c.First = d.First
	}
	if c.Engine.MaxSettleSteps == 0 {
		c.Engine = d.Engine
	}
}
