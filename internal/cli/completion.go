package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelzoom/pkg/composite"
	"github.com/matzehuels/mandelzoom/pkg/fractal"
	"github.com/matzehuels/mandelzoom/pkg/zoom"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for the given shell, for example:

  $ source <(mandelzoom completion bash)
  $ mandelzoom completion fish > ~/.config/fish/completions/mandelzoom.fish

Besides subcommands and flags, the scripts complete --speed, --codec and
--res with the values mandelzoom accepts.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeResolutions suggests the stock resolutions for --res. Any WxH is
// accepted, so free text stays possible.
func completeResolutions(cmd *cobra.Command) {
	res := []string{
		fractal.ResolutionGIF.String(),
		fractal.Resolution720.String(),
		fractal.Resolution1080.String(),
		fractal.Resolution4K.String(),
	}
	_ = cmd.RegisterFlagCompletionFunc("res", cobra.FixedCompletions(res, cobra.ShellCompDirectiveNoFileComp))
}

func completeSpeeds(cmd *cobra.Command) {
	speeds := []string{string(zoom.Fast), string(zoom.Slow)}
	_ = cmd.RegisterFlagCompletionFunc("speed", cobra.FixedCompletions(speeds, cobra.ShellCompDirectiveNoFileComp))
}

func completeCodecs(cmd *cobra.Command) {
	codecs := []string{string(composite.GIF), string(composite.Video)}
	_ = cmd.RegisterFlagCompletionFunc("codec", cobra.FixedCompletions(codecs, cobra.ShellCompDirectiveNoFileComp))
}
