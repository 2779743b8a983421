package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelzoom/pkg/fractal"
	"github.com/matzehuels/mandelzoom/pkg/pipeline"
)

// stillCommand creates the "still" command rendering one image.
func (c *CLI) stillCommand() *cobra.Command {
	var (
		view  viewOpts
		force bool
	)

	cmd := &cobra.Command{
		Use:   "still",
		Short: "Render a still image into the cache",
		Long: `Render a still image of the selected view into the cache and print its path.
An image that is already cached is returned without running the renderer.`,
		Example: `  mandelzoom still
  mandelzoom still --view -0.5671_-0.56698_0.2_10000 --res 3840x2160
  mandelzoom still --click 960,200 --mag 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := view.request()
			if err != nil {
				return err
			}
			a, err := c.newApp(cmd.Context(), force)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			spinner := newSpinnerWithContext(cmd.Context(), "Rendering "+req.Hash())
			spinner.Start()
			res, err := a.runner.Execute(cmd.Context(), pipeline.Job{Request: req, Variant: fractal.VariantStill})
			spinner.Stop()
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}

	view.register(cmd.Flags(), fractal.Resolution1080)
	cmd.Flags().BoolVar(&force, "force", false, "render again even if cached")
	completeResolutions(cmd)
	return cmd
}
