package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelzoom/internal/config"
	"github.com/matzehuels/mandelzoom/pkg/composite"
	"github.com/matzehuels/mandelzoom/pkg/fractal"
	"github.com/matzehuels/mandelzoom/pkg/pipeline"
	"github.com/matzehuels/mandelzoom/pkg/zoom"
)

// defaultResolution picks the resolution of an animation when --res is not
// given, matching the stock endpoints.
func defaultResolution(codec composite.Codec) fractal.Resolution {
	if codec == composite.Video {
		return fractal.Resolution720
	}
	return fractal.ResolutionGIF
}

// zoomCommand creates the "zoom" command producing an animation.
func (c *CLI) zoomCommand() *cobra.Command {
	var (
		view               viewOpts
		speedStr, codecStr string
		force, tui         bool
	)

	cmd := &cobra.Command{
		Use:   "zoom",
		Short: "Render a zoom animation into the cache",
		Long: `Render an animation that zooms from the full view into the selected view and
back out again. Frames are cached individually and shared between animations
of the same resolution, so re-encoding as another codec renders nothing.`,
		Example: `  mandelzoom zoom --view -0.743643_0.131825_0.0001_2000
  mandelzoom zoom --speed slow --codec video -w 0.01 --tui`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			speed, err := zoom.ParseSpeed(speedStr)
			if err != nil {
				return err
			}
			codec, err := composite.ParseCodec(codecStr)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("res") {
				view.resolution = defaultResolution(codec).String()
			}
			req, err := view.request()
			if err != nil {
				return err
			}

			a, err := c.newApp(cmd.Context(), force)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			job := pipeline.Job{
				Request: req,
				Variant: fractal.Variant(speed),
				Codec:   codec,
				Target:  c.cfg.TargetWidth,
			}

			var res *pipeline.Result
			if tui {
				res, err = runZoomTUI(cmd.Context(), a.runner, c.Logger, job)
			} else {
				spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Zooming %s (%s)", req.Hash(), speed))
				job.Progress = func(p pipeline.Progress) {
					spinner.SetMessage(fmt.Sprintf("Rendering frame %d/%d", p.Done, p.Total))
				}
				spinner.Start()
				res, err = a.runner.Execute(cmd.Context(), job)
				spinner.Stop()
			}
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}

	view.register(cmd.Flags(), fractal.ResolutionGIF)
	f := cmd.Flags()
	f.StringVar(&speedStr, "speed", string(zoom.Fast), "zoom speed: fast, slow")
	f.StringVar(&codecStr, "codec", string(composite.GIF), "output codec: gif, video")
	f.BoolVar(&force, "force", false, "render frames and encode again even if cached")
	f.BoolVar(&tui, "tui", false, "show an interactive progress view")
	f.Float64Var(&c.cfg.TargetWidth, config.FlagTarget, c.cfg.TargetWidth, "view width the animation starts from")
	f.IntVar(&c.cfg.GIFDelay, config.FlagGIFDelay, c.cfg.GIFDelay, "GIF frame delay in hundredths of a second")
	f.IntVar(&c.cfg.GIFColors, config.FlagGIFColors, c.cfg.GIFColors, "GIF palette size")
	f.IntVar(&c.cfg.VideoFPS, config.FlagVideoFPS, c.cfg.VideoFPS, "video frame rate")
	f.StringVar(&c.cfg.VideoPreset, config.FlagVideoPreset, c.cfg.VideoPreset, "libx264 preset")
	f.IntVar(&c.cfg.VideoCRF, config.FlagVideoCRF, c.cfg.VideoCRF, "libx264 constant rate factor")
	completeResolutions(cmd)
	completeSpeeds(cmd)
	completeCodecs(cmd)
	return cmd
}
