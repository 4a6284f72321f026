package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/matzehuels/stargraph/pkg/buildinfo"
	"github.com/matzehuels/stargraph/pkg/cache"
	"github.com/matzehuels/stargraph/pkg/integrations"
	"github.com/matzehuels/stargraph/pkg/integrations/github"
	"github.com/matzehuels/stargraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stargraph"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded by the root command before any subcommand runs.
	Config *Config

	configPath string
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	cfg := DefaultConfig()
	return &CLI{
		Logger: newLogger(w, level),
		Config: &cfg,
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stargraph draws who starred what on GitHub",
		Long: `Stargraph fetches a GitHub user and the repositories they starred, lays
the result out as a force-directed graph and renders it as SVG, a JSON
display list, Graphviz output or an interactive terminal view.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stargraph/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.githubCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller closes it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	client := c.newGitHubClient(ctx, ch)
	return pipeline.NewRunner(ch, nil, c.Logger, client), nil
}

// newCache opens the configured backend, falling back to no caching when
// the default file cache has no usable directory.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config.Cache
	if cfg.Backend == "" || cfg.Backend == cache.BackendFile || cfg.Backend == cache.BackendSQLite {
		if cfg.Dir == "" {
			dir, err := cacheDir()
			if err != nil {
				c.Logger.Warn("no cache directory, caching disabled", "err", err)
				return cache.NewNullCache(), nil
			}
			cfg.Dir = dir
		}
	}
	ch, err := cache.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return cache.Observed(ch), nil
}

// newGitHubClient builds a client authenticated with the configured token
// or the stored login.
func (c *CLI) newGitHubClient(ctx context.Context, ch cache.Cache) *github.Client {
	var opts []github.Option
	if c.Config.GitHub.BaseURL != "" {
		opts = append(opts, github.WithBaseURL(c.Config.GitHub.BaseURL))
	}
	if c.Config.GitHub.RateLimit > 0 {
		opts = append(opts, github.WithClientOptions(
			integrations.WithRateLimit(rate.Limit(c.Config.GitHub.RateLimit), 1)))
	}
	token := c.token(ctx)
	if token != "" {
		// Starred lists can include private repositories, so accounts
		// sharing a cache directory never see each other's entries.
		opts = append(opts, github.WithKeyer(tokenKeyer(token)))
	}
	return github.NewClient(token, ch, c.cacheTTL(), opts...)
}

// tokenKeyer scopes cache keys to a token without storing it.
func tokenKeyer(token string) cache.Keyer {
	return cache.NewScopedKeyer(nil, "token:"+cache.Hash([]byte(token))[:12]+":")
}

func (c *CLI) cacheTTL() time.Duration {
	if c.Config.Cache.TTL > 0 {
		return c.Config.Cache.TTL
	}
	return cache.DefaultTTL
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stargraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/stargraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults applies the loaded configuration to pipeline options the
// user did not set on the command line.
func (c *CLI) setCLIDefaults(opts *pipeline.Options) {
	if opts.First == 0 {
		opts.First = c.Config.GitHub.First
	}
	if opts.Engine.MaxSettleSteps == 0 {
		opts.Engine = c.Config.Engine
	}
	if opts.Logger == nil {
		opts.Logger = c.Logger
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{pipeline.FormatSVG}, nil
	}
	formats := strings.Split(s, ",")
	for i := range formats {
		formats[i] = strings.TrimSpace(formats[i])
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return nil, fmt.Errorf("--format: %w", err)
	}
	return formats, nil
}
