package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/stargraph/pkg/errors"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"render", "fetch", "explore", "serve", "cache", "github", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestCompletionSkipsConfig(t *testing.T) {
	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "completion", "bash"})

	if err := root.Execute(); err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out.String(), "bash completion") {
		t.Errorf("output does not look like a bash completion script:\n%.200s", out.String())
	}
}

func TestCachePathFromConfig(t *testing.T) {
	t.Setenv(envCacheBackend, "file")
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", "[cache]\ndir = \""+filepath.Join(dir, "store")+"\"\n")

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.out = &out
	root := c.RootCommand()
	root.SetArgs([]string{"--config", path, "cache", "path"})

	if err := root.Execute(); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != filepath.Join(dir, "store") {
		t.Errorf("cache path = %q", got)
	}
}

func TestMissingConfigFails(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "cache", "path"})

	err := root.Execute()
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want an invalid config error", err)
	}
}
