package cli

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelzoom/internal/config"
	"github.com/matzehuels/mandelzoom/pkg/server"
)

// serveCommand creates the "serve" command running the HTTP surface.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders over HTTP",
		Long: `Serve stills and zoom animations over HTTP. Every endpoint takes the view as
query parameters x, y, w and i and redirects to the cached artifact:

  GET /image?x=-0.5&y=0&w=3&i=1000  ->  302 /artifacts/mandelbrot_-0.5_0_3_1000_1920x1080.png

Endpoints can be replaced with [[endpoint]] tables in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.newApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			srv, err := server.New(server.Options{
				Runner:    a.runner,
				Endpoints: c.cfg.Endpoints,
				Logger:    c.Logger,
				Metrics:   a.telemetry.MetricsHandler(),
				Tools:     c.cfg.Tools(),
			})
			if err != nil {
				return err
			}

			for _, tool := range c.cfg.Tools() {
				if _, err := exec.LookPath(tool); err != nil {
					printWarning("%s not found; requests needing it will fail", tool)
				}
			}
			printInfo("Listening on %s", StyleLink.Render("http://"+c.cfg.Listen))
			for _, ep := range srv.Endpoints() {
				printDetail("%s", ep.String())
			}
			printDetail("Cache: %s", a.store.Root())

			if err := srv.ListenAndServe(ctx, c.cfg.Listen); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			printSuccess("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&c.cfg.Listen, config.FlagListen, c.cfg.Listen, "address to listen on")
	return cmd
}
