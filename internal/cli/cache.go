package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stargraph/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached GitHub response and rendered artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := c.Config.Cache.Backend
			if isLocalBackend(backend) {
				dir, err := c.cachePath()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
					printInfo("Cache is empty")
					return nil
				}
			}

			ch, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer ch.Close()

			if err := cache.Clear(cmd.Context(), ch); err != nil {
				return fmt.Errorf("clear %s cache: %w", backendName(backend), err)
			}

			printSuccess("Cleared %s cache", backendName(backend))
			if isLocalBackend(backend) {
				dir, _ := c.cachePath()
				printDetail("Directory: %s", dir)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isLocalBackend(c.Config.Cache.Backend) {
				fmt.Fprintln(c.out, c.Config.Cache.URL)
				return nil
			}
			dir, err := c.cachePath()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if c.Config.Cache.Backend == cache.BackendSQLite {
				dir = filepath.Join(dir, "cache.db")
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}

// cachePath returns the configured cache directory or the XDG default.
func (c *CLI) cachePath() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func isLocalBackend(backend string) bool {
	return backend == "" || backend == cache.BackendFile || backend == cache.BackendSQLite
}

func backendName(backend string) string {
	if backend == "" {
		return cache.BackendFile
	}
	return backend
}
