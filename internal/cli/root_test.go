package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/matzehuels/mandelzoom/pkg/buildinfo"
)

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"serve", "still", "zoom", "plan", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	cacheCmd, _, _ := root.Find([]string{"cache"})
	for _, name := range []string{"path", "stats", "clear", "prune"} {
		cmd, _, err := cacheCmd.Find([]string{name})
		if err != nil || cmd == cacheCmd {
			t.Errorf("cache subcommand %q not registered", name)
		}
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	if root.Version != buildinfo.Version {
		t.Errorf("Version = %q, want %q", root.Version, buildinfo.Version)
	}

	var out strings.Builder
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(out.String(), "mandelzoom version "+buildinfo.Version) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestChangedFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("renderer", "", "")
	fs.Int("max-processes", 0, "")
	fs.Bool("coalesce", true, "")

	if err := fs.Parse([]string{"--renderer", "/opt/mandelbrot", "--coalesce=false"}); err != nil {
		t.Fatal(err)
	}
	got := changedFlags(fs)
	if !got["renderer"] || !got["coalesce"] {
		t.Errorf("changedFlags() = %v, want renderer and coalesce", got)
	}
	if got["max-processes"] {
		t.Error("changedFlags() reports an unset flag")
	}
}
