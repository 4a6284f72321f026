package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stargraph/pkg/observability"
	"github.com/matzehuels/stargraph/pkg/pipeline"
)

// renderFlags holds the flags of the render command.
type renderFlags struct {
	output   string
	formats  string
	noCache  bool
	refresh  bool
	width    float64
	height   float64
	seed     uint32
	first    int
	expand   int
	expanded bool
	pinned   bool
	detailed bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render <login>",
		Short: "Render a user's star graph to files",
		Long: `Fetch a GitHub user and the repositories they starred, optionally expand
the owners of those repositories, settle the force layout and write the
result in one or more formats.

Formats:
  svg           the scene as drawn by the engine
  json          the scene's display list
  graph         the node/link graph with positions
  dot           Graphviz source
  graphviz-svg  the graph laid out by Graphviz
  png           the graph laid out by Graphviz, as PNG`,
		Example: `  # SVG of alice's stars
  stargraph render alice

  # Expand up to five repository owners, write SVG and DOT next to ./out/alice
  stargraph render alice --expand-owners 5 --format svg,dot -o out/alice

  # Display list to stdout
  stargraph render alice --format json -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file, or base path with several formats (- for stdout)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "comma-separated formats: "+strings.Join(pipeline.AllFormats, ","))
	cmd.Flags().IntVar(&flags.expand, "expand-owners", 0, fmt.Sprintf("fetch and add up to N repository owners (max %d)", pipeline.MaxExpandOwners))
	cmd.Flags().IntVar(&flags.first, "first", 0, "starred repositories per user (default from config)")
	cmd.Flags().Float64Var(&flags.width, "width", pipeline.DefaultWidth, "viewport width")
	cmd.Flags().Float64Var(&flags.height, "height", pipeline.DefaultHeight, "viewport height")
	cmd.Flags().Uint32Var(&flags.seed, "seed", 0, "layout seed (default from config)")
	cmd.Flags().BoolVar(&flags.expanded, "expanded", false, "draw labels instead of skeletons in svg and json")
	cmd.Flags().BoolVar(&flags.pinned, "pinned", false, "keep engine positions in Graphviz output")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "add names and owners to Graphviz labels")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "bypass cached GitHub responses")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, login string, flags renderFlags) error {
	formats, err := parseFormats(flags.formats)
	if err != nil {
		return err
	}
	if flags.output == "-" && len(formats) > 1 {
		return fmt.Errorf("-o - needs exactly one format, got %d", len(formats))
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := pipeline.Options{
		Login:        login,
		First:        flags.first,
		ExpandOwners: flags.expand,
		Refresh:      flags.refresh,
		Width:        flags.width,
		Height:       flags.height,
		Seed:         flags.seed,
		Formats:      formats,
		Expanded:     flags.expanded,
		Pinned:       flags.pinned,
		Detailed:     flags.detailed,
	}
	c.setCLIDefaults(&opts)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching @%s...", login))
	runner.Hooks = &spinnerHooks{spinner: spinner, next: observability.Pipeline()}
	spinner.Start()
	prog := newProgress(loggerFromContext(ctx))

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Render @%s failed", login))
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered @%s", login))

	paths, err := writeArtifacts(result.Artifacts, formats, flags.output, login, c.out)
	if err != nil {
		return err
	}

	if flags.output == "-" {
		return nil
	}
	printSuccess("Rendered @%s", login)
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.Stats.Fetches, result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	printNewline()
	printNextStep("Explore interactively", "stargraph explore "+login)
	return nil
}

// artifactPaths maps each format to its output path. A single format is
// written to output verbatim; several formats share output as a base name
// with the extension replaced.
func artifactPaths(formats []string, output, login string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = login
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, f := range formats {
		paths[f] = base + pipeline.FormatExt[f]
	}
	return paths
}

// writeArtifacts writes every artifact and returns the paths written, in
// format order. The path "-" means stdout.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, login string, stdout io.Writer) ([]string, error) {
	paths := artifactPaths(formats, output, login)
	written := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, f := range formats {
		if seen[f] {
			continue
		}
		seen[f] = true
		data, ok := artifacts[f]
		if !ok {
			return written, fmt.Errorf("no %s artifact produced", f)
		}
		path := paths[f]
		if err := writeOutput(path, data, stdout); err != nil {
			return written, fmt.Errorf("write %s: %w", f, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	w, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// openOutput opens path for writing, creating parent directories. "-"
// selects stdout, which is not closed.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// spinnerHooks shows pipeline progress on a spinner and forwards every
// event to the globally registered hooks.
type spinnerHooks struct {
	spinner *Spinner
	next    observability.PipelineHooks
}

func (h *spinnerHooks) OnFetchStart(ctx context.Context, login string) {
	h.spinner.Update(fmt.Sprintf("Fetching @%s...", login))
	h.next.OnFetchStart(ctx, login)
}

func (h *spinnerHooks) OnFetchComplete(ctx context.Context, login string, repos int, d time.Duration, err error) {
	h.next.OnFetchComplete(ctx, login, repos, d, err)
}

func (h *spinnerHooks) OnLayoutStart(ctx context.Context, nodes int) {
	h.spinner.Update(fmt.Sprintf("Settling %d nodes...", nodes))
	h.next.OnLayoutStart(ctx, nodes)
}

func (h *spinnerHooks) OnLayoutComplete(ctx context.Context, ticks int, d time.Duration) {
	h.next.OnLayoutComplete(ctx, ticks, d)
}

func (h *spinnerHooks) OnRenderStart(ctx context.Context, formats []string) {
	h.spinner.Update(fmt.Sprintf("Rendering %s...", strings.Join(formats, ", ")))
	h.next.OnRenderStart(ctx, formats)
}

func (h *spinnerHooks) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	h.next.OnRenderComplete(ctx, formats, d, err)
}
