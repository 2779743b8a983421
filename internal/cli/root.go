package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/mandelzoom/internal/config"
	"github.com/matzehuels/mandelzoom/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Settings resolve in the order defaults, config file, MANDELZOOM_*
// environment, flags; the last one set wins. The logger is attached to the
// command context and reachable from every subcommand via loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mandelzoom",
		Short: "Mandelzoom renders and caches Mandelbrot stills and zoom animations",
		Long: `Mandelzoom fronts an external Mandelbrot renderer with a content-addressed
file cache. Stills are rendered once per view; zoom animations are planned,
rendered frame by frame and encoded into a GIF or MP4 that loops back and forth.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Resolve(&c.cfg, c.configPath, changedFlags(cmd.Flags())); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mandelzoom/config.toml)")
	pf.StringVar(&c.cfg.CacheDir, config.FlagCacheDir, "", "cache directory (default $XDG_CACHE_HOME/mandelzoom)")
	pf.StringVar(&c.cfg.Namespace, config.FlagNamespace, "", "cache subdirectory for keys, e.g. per renderer build")
	pf.StringVar(&c.cfg.Renderer, config.FlagRenderer, c.cfg.Renderer, "renderer executable")
	pf.StringVar(&c.cfg.GIFEncoder, config.FlagGIFEncoder, c.cfg.GIFEncoder, "GIF encoder executable")
	pf.StringVar(&c.cfg.VideoEncoder, config.FlagVideoEncoder, c.cfg.VideoEncoder, "video encoder executable")
	pf.BoolVar(&c.cfg.Coalesce, config.FlagCoalesce, c.cfg.Coalesce, "share one render between identical concurrent requests")
	pf.IntVar(&c.cfg.MaxProcesses, config.FlagMaxProcesses, c.cfg.MaxProcesses, "max concurrent external processes (0 = unlimited)")
	pf.DurationVar(&c.cfg.ProcessTimeout, config.FlagProcessTimeout, c.cfg.ProcessTimeout, "kill external processes after this long (0 = never)")
	pf.IntVar(&c.cfg.MaxIterations, config.FlagMaxIterations, c.cfg.MaxIterations, "upper bound for the iteration count (0 = unbounded)")
	pf.StringVar(&c.cfg.MetricsExporter, config.FlagMetricsExporter, c.cfg.MetricsExporter, "metrics exporter: none, stdout, otlp, prometheus")
	pf.StringVar(&c.cfg.TracingExporter, config.FlagTracingExporter, c.cfg.TracingExporter, "tracing exporter: none, stdout, otlp")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.stillCommand())
	root.AddCommand(c.zoomCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// changedFlags returns the names of the flags set on the command line.
func changedFlags(fs *pflag.FlagSet) map[string]bool {
	changed := make(map[string]bool)
	fs.Visit(func(f *pflag.Flag) {
		changed[f.Name] = true
	})
	return changed
}
