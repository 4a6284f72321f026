package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/matzehuels/stargraph/pkg/cache"
	"github.com/matzehuels/stargraph/pkg/engine"
	errs "github.com/matzehuels/stargraph/pkg/errors"
	"github.com/matzehuels/stargraph/pkg/integrations/github"
	"github.com/matzehuels/stargraph/pkg/server"
)

// configFile is the name of the config file inside configDir.
const configFile = "config.toml"

// envFile is read from the working directory when present. Variables
// already set in the process environment win.
const envFile = ".env"

// Environment variables that override the config file.
const (
	envGitHubToken    = "GITHUB_TOKEN"
	envGitHubClientID = "GITHUB_CLIENT_ID"
	envCacheBackend   = "STARGRAPH_CACHE"
	envCacheURL       = "STARGRAPH_CACHE_URL"
	envServerAddr     = "STARGRAPH_ADDR"
)

// Config is the contents of config.toml.
//
//	[github]
//	token = "ghp_..."
//	first = 50
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
//	ttl = "12h"
//
//	[server]
//	addr = ":9000"
//	auto_expand = true
//
//	[engine]
//	charge_strength = -2000
type Config struct {
	GitHub GitHubConfig  `toml:"github"`
	Cache  cache.Config  `toml:"cache"`
	Server server.Config `toml:"server"`
	Engine engine.Config `toml:"engine"`
}

// GitHubConfig configures the API client.
type GitHubConfig struct {
	Token    string `toml:"token"`
	ClientID string `toml:"client_id"`
	// BaseURL points at a GitHub Enterprise API root.
	BaseURL string `toml:"base_url" validate:"omitempty,url"`
	// First is how many starred repositories a fetch requests.
	First int `toml:"first" validate:"gte=0,lte=100"`
	// RateLimit caps requests per second; 0 keeps the client default.
	RateLimit float64 `toml:"rate_limit" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		GitHub: GitHubConfig{First: github.DefaultFirst},
		Cache:  cache.Config{Backend: cache.BackendFile, TTL: cache.DefaultTTL},
		Server: server.DefaultConfig(),
		Engine: engine.DefaultConfig(),
	}
}

// LoadConfig reads path, or the default config file when path is empty,
// applies environment overrides and validates the result. A missing
// default file is not an error; a missing explicit one is.
func LoadConfig(path string) (*Config, error) {
	return loadConfig(path, envFile, os.LookupEnv)
}

func loadConfig(path, dotenv string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		if dir, err := configDir(); err == nil {
			path = filepath.Join(dir, configFile)
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
			}
		}
	}

	fileEnv, err := godotenv.Read(dotenv)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", dotenv)
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok && v != ""
	}
	cfg.applyEnv(env)

	if cfg.Engine.MaxSettleSteps == 0 {
		cfg.Engine = engine.DefaultConfig()
	}
	cfg.Server.Engine = cfg.Engine
	if cfg.Server.First == 0 {
		cfg.Server.First = cfg.GitHub.First
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) {
	if v, ok := env(envGitHubToken); ok {
		c.GitHub.Token = v
	}
	if v, ok := env(envGitHubClientID); ok {
		c.GitHub.ClientID = v
	}
	if v, ok := env(envCacheBackend); ok {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v, ok := env(envCacheURL); ok {
		c.Cache.URL = v
	}
	if v, ok := env(envServerAddr); ok {
		c.Server.Addr = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errs.New(errs.ErrCodeInvalidConfig,
				"config: %s fails %q", configField(fe.Namespace()), fe.Tag())
		}
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "config")
	}
	return nil
}

// configField turns "Config.Engine.AlphaDecay" into "Engine.AlphaDecay".
func configField(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
