package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jedisherpa/sphereai/internal/archive"
	"github.com/jedisherpa/sphereai/internal/config"
)

var flagPruneOlderThan time.Duration

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old articles from the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		arc, err := archive.Open(config.ArchivePath())
		if err != nil {
			return err
		}
		defer arc.Close()

		removed, err := arc.Prune(flagPruneOlderThan)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Pruned %d articles older than %s", removed, formatDuration(flagPruneOlderThan))))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ArchivePath()
		arc, err := archive.Open(path)
		if err != nil {
			return err
		}
		defer arc.Close()

		count, size, err := arc.Stats(path)
		if err != nil {
			return err
		}
		fmt.Println(headerStyle.Render("Archive"))
		fmt.Printf("  Articles: %d\n", count)
		fmt.Printf("  Size:     %s\n", formatBytes(size))
		fmt.Println(dimStyle.Render("  Path:     " + path))
		return nil
	},
}

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
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	}
	return d.String()
}

func init() {
	pruneCmd.Flags().DurationVar(&flagPruneOlderThan, "older-than", 90*24*time.Hour, "retention window (e.g., 720h for 30 days)")

	rootCmd.AddCommand(pruneCmd, statsCmd)
}
