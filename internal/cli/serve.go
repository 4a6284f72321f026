package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stargraph/pkg/observability"
	"github.com/matzehuels/stargraph/pkg/observability/prom"
	"github.com/matzehuels/stargraph/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		autoExpand bool
		noMetrics  bool
		noCache    bool
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP session host",
		Long: `Serve engines over HTTP. Each session owns one engine; clients ingest
payloads or ask the server to fetch users, send clicks and camera changes,
read the scene as a display list or SVG and follow click events over SSE.

Routes:
  POST   /api/sessions                 create a session
  DELETE /api/sessions/{id}            close it
  POST   /api/sessions/{id}/ingest     ingest a payload
  POST   /api/sessions/{id}/users/{login}  fetch from GitHub and ingest
  POST   /api/sessions/{id}/click      {x,y} or {nodeId}
  POST   /api/sessions/{id}/viewport   {x,y,k}
  POST   /api/sessions/{id}/resize     {w,h}
  GET    /api/sessions/{id}/scene      display list (scene.svg for SVG)
  GET    /api/sessions/{id}/graph      nodes and links
  GET    /api/sessions/{id}/events     click-repo / click-user stream
  GET    /health, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("auto-expand") {
				cfg.AutoExpand = autoExpand
			}
			if cmd.Flags().Changed("session-ttl") {
				cfg.SessionTTL = ttl
			}
			return c.runServe(cmd.Context(), cfg, noMetrics, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&autoExpand, "auto-expand", false, "fetch repository owners on click-repo")
	cmd.Flags().DurationVar(&ttl, "session-ttl", server.DefaultSessionTTL, "close sessions idle for this long")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve /metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching of GitHub responses")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg server.Config, noMetrics, noCache bool) error {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer ch.Close()

	opts := []server.Option{
		server.WithLogger(c.Logger),
		server.WithFetcher(c.newGitHubClient(ctx, ch)),
	}
	if !noMetrics {
		collector := prom.New()
		observability.SetEngineHooks(collector)
		observability.SetPipelineHooks(collector)
		observability.SetCacheHooks(collector)
		observability.SetHTTPHooks(collector)
		defer observability.Reset()
		opts = append(opts, server.WithMetrics(collector))
	}

	srv := server.New(cfg, opts...)
	printInfo("Listening on %s", StyleLink.Render(listenURL(cfg.Addr)))
	if cfg.AutoExpand {
		printDetail("Repository clicks fetch and ingest their owners")
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	printSuccess("Server stopped")
	return nil
}

// listenURL turns ":8080" into "http://localhost:8080".
func listenURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
