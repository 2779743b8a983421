package cli

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelzoom/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clean the artifact cache",
	}

	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePruneCommand())

	return cmd
}

func (c *CLI) openStore() (*cache.FileStore, error) {
	store, err := cache.NewFileStore(c.cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return store, nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.cfg.CacheDir)
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize cached artifacts by type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			st, err := store.Stats()
			if err != nil {
				return err
			}
			if st.Entries == 0 && st.Temp == 0 {
				printInfo("Cache is empty")
				printDetail("Directory: %s", st.Root)
				return nil
			}

			printKeyValue("Directory", st.Root)
			printKeyValue("Entries", strconv.Itoa(st.Entries))
			printKeyValue("Size", formatBytes(st.Bytes))
			if !st.Oldest.IsZero() {
				printKeyValue("Oldest", st.Oldest.Format(time.DateTime))
				printKeyValue("Newest", st.Newest.Format(time.DateTime))
			}
			if st.Temp > 0 {
				printWarning("%d leftover temporary files (remove with 'mandelzoom cache prune')", st.Temp)
			}
			printNewline()
			fmt.Println(renderStatsTable(st))
			return nil
		},
	}
}

func renderStatsTable(st cache.Stats) string {
	types := make([]string, 0, len(st.ByType))
	for t := range st.ByType {
		types = append(types, t)
	}
	sort.Strings(types)

	rows := make([][]string, 0, len(types))
	for _, t := range types {
		ts := st.ByType[t]
		rows = append(rows, []string{t, strconv.Itoa(ts.Count), formatBytes(ts.Bytes)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Count", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return StyleHighlight
			}
			return StyleNumber
		}).
		Render()
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			st, err := store.Stats()
			if err != nil {
				return err
			}
			prog := newProgress(loggerFromContext(cmd.Context()))
			if err := store.Clear(); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Cleared %s", st.Root))

			printSuccess("Cleared %d cached entries (%s)", st.Entries, formatBytes(st.Bytes))
			printDetail("Directory: %s", st.Root)
			return nil
		},
	}
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove artifacts not modified recently",
		Long: `Remove cached artifacts, and temporary files left by interrupted renders,
whose modification time is older than --older-than.`,
		Example: `  mandelzoom cache prune --older-than 168h`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan < 0 {
				return fmt.Errorf("--older-than must not be negative")
			}
			store, err := c.openStore()
			if err != nil {
				return err
			}
			res, err := store.Prune(time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			if res.Removed == 0 {
				printInfo("Nothing to prune")
				return nil
			}
			printSuccess("Pruned %d entries (%s)", res.Removed, formatBytes(res.Bytes))
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "remove entries last modified before this long ago")
	return cmd
}

// formatBytes renders n with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
