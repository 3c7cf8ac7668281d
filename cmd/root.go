package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfigDir string
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "sphere",
	Short: "Multi-agent analysis for your RSS feeds",
	Long: `sphere aggregates your RSS feeds, clusters articles by topic, and runs
a sequence of role-specialized AI agents over the result to produce one
synthesized analysis report.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "path to the sphere config directory")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sphere %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersionInfo injects build metadata from main.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// parseSince turns a user-supplied time expression into a cutoff. It accepts
// relative forms ("24h", "7d", "1w", "1m"), dates, and "today"/"yesterday".
func parseSince(value string) (time.Time, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	now := time.Now().UTC()

	switch value {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	case "yesterday":
		y := now.AddDate(0, 0, -1)
		return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	if len(value) > 1 {
		unit := value[len(value)-1]
		if n, err := strconv.Atoi(value[:len(value)-1]); err == nil && n > 0 {
			switch unit {
			case 'h':
				return now.Add(-time.Duration(n) * time.Hour), nil
			case 'd':
				return now.AddDate(0, 0, -n), nil
			case 'w':
				return now.AddDate(0, 0, -7*n), nil
			case 'm':
				return now.AddDate(0, 0, -30*n), nil
			}
		}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid time expression %q (try 24h, 7d, today, or 2026-01-15)", value)
}
