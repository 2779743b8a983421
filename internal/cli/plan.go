package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelzoom/internal/config"
	"github.com/matzehuels/mandelzoom/pkg/cache"
	"github.com/matzehuels/mandelzoom/pkg/fractal"
	"github.com/matzehuels/mandelzoom/pkg/zoom"
)

// planCommand creates the "plan" command listing the frames of a zoom
// without rendering anything.
func (c *CLI) planCommand() *cobra.Command {
	var (
		view      viewOpts
		speedStr  string
		boomerang bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List the frames a zoom animation would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			speed, err := zoom.ParseSpeed(speedStr)
			if err != nil {
				return err
			}
			req, err := view.request()
			if err != nil {
				return err
			}
			seq, err := zoom.Plan(req.Width, c.cfg.TargetWidth, speed)
			if err != nil {
				return err
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}
			keyer, err := c.keyer()
			if err != nil {
				return err
			}
			frames := seq
			if boomerang {
				frames = seq.Boomerang()
			}
			rows, cached := planRows(cmd, store, keyer, req, frames)

			printKeyValue("View", req.Hash())
			printKeyValue("Speed", string(speed))
			printKeyValue("Resolution", req.Resolution.String())
			printKeyValue("Frames", fmt.Sprintf("%d unique, %d played", len(seq), 2*len(seq)))
			printKeyValue("Cached", fmt.Sprintf("%d/%d", cached, len(frames)))
			printNewline()
			fmt.Println(renderPlanTable(rows))
			return nil
		},
	}

	view.register(cmd.Flags(), fractal.ResolutionGIF)
	cmd.Flags().StringVar(&speedStr, "speed", string(zoom.Fast), "zoom speed: fast, slow")
	cmd.Flags().BoolVar(&boomerang, "boomerang", false, "list the full back-and-forth playback order")
	cmd.Flags().Float64Var(&c.cfg.TargetWidth, config.FlagTarget, c.cfg.TargetWidth, "view width the animation starts from")
	completeResolutions(cmd)
	completeSpeeds(cmd)
	return cmd
}

// planRows builds one table row per frame and counts cached frames.
func planRows(cmd *cobra.Command, store cache.Store, keyer cache.Keyer, base fractal.Request, frames zoom.Sequence) ([][]string, int) {
	rows := make([][]string, 0, len(frames))
	cached := 0
	for _, f := range frames {
		key := keyer.FrameKey(base.WithWidth(f.Width))
		status := iconFresh
		if ok, _ := store.Exists(cmd.Context(), key); ok {
			status = iconCached
			cached++
		}
		rows = append(rows, []string{
			strconv.Itoa(f.Index),
			fractal.FormatFloat(f.Width),
			fmt.Sprintf("%.2f", base.WithWidth(f.Width).Zoom()),
			status,
			key,
		})
	}
	return rows, cached
}

func renderPlanTable(rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Width", "Zoom", "Status", "Key").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3 && rows[row][3] == iconCached:
				return styleCached
			case col == 3:
				return styleComputed
			case col == 4:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
