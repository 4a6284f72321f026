package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/stargraph/pkg/errors"
)

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		output  string
		first   int
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <login>",
		Short: "Fetch a user and their starred repositories as JSON",
		Long: `Query GitHub for a user and the repositories they starred and write the
result in the form the engine ingests. The file can be replayed with
POST /api/sessions/{id}/ingest.`,
		Example: `  stargraph fetch alice
  stargraph fetch alice --first 100 -o alice.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), args[0], output, first, refresh, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	cmd.Flags().IntVar(&first, "first", 0, "starred repositories to request (default from config)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached GitHub responses")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, login, output string, first int, refresh, noCache bool) error {
	if err := errs.ValidateLogin(login); err != nil {
		return err
	}
	if first == 0 {
		first = c.Config.GitHub.First
	}

	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer ch.Close()
	client := c.newGitHubClient(ctx, ch)

	prog := newProgress(loggerFromContext(ctx))
	u, err := client.FetchUser(ctx, login, first, refresh)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", login, err)
	}
	prog.done(fmt.Sprintf("Fetched @%s", u.Login))

	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := writeOutput(output, data, c.out); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	if output != "-" {
		fmt.Println(profileCard(u.User, len(u.Repos())))
		printFile(output)
	}
	return nil
}
