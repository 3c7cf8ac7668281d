package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jedisherpa/sphereai/internal/config"
	"github.com/jedisherpa/sphereai/internal/feed"
)

var (
	flagFeedName string
	flagFeedTags []string
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Manage RSS/Atom feed sources",
}

var feedAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a feed source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.AddFeed(flagConfigDir, args[0], flagFeedName, flagFeedTags)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Added feed %q (%s)", f.Name, f.ID)))
		return nil
	},
}

var feedRemoveCmd = &cobra.Command{
	Use:     "remove <id|name|url>",
	Aliases: []string{"rm"},
	Short:   "Remove a feed source",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.RemoveFeed(flagConfigDir, args[0]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Removed " + args[0]))
		return nil
	},
}

var feedListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List configured feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfigDir)
		if err != nil {
			return err
		}
		if len(cfg.Feeds) == 0 {
			fmt.Println(dimStyle.Render("No feeds configured. Add one with: sphere feed add <url>"))
			return nil
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("Feeds (%d)", len(cfg.Feeds))))
		for _, f := range cfg.Feeds {
			line := fmt.Sprintf("  %s  %-24s %s", f.ID, f.Name, f.URL)
			if len(f.Tags) > 0 {
				line += dimStyle.Render("  [" + strings.Join(f.Tags, ", ") + "]")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var feedFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch all feeds once and show what came back",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfigDir)
		if err != nil {
			return err
		}
		if len(cfg.Feeds) == 0 {
			return fmt.Errorf("no feeds configured. Add feeds with 'sphere feed add <url>'")
		}

		var opts feed.Options
		if flagSince != "" {
			since, err := parseSince(flagSince)
			if err != nil {
				return err
			}
			opts.Since = since
		}
		opts.Tags = flagFeedTags

		start := time.Now()
		fetcher := feed.NewRSSFetcher(cfg.FetchTimeout)
		result := feed.FetchAll(cmd.Context(), fetcher, cfg.Feeds, opts)

		fmt.Print(renderFetchResult(result, time.Since(start)))
		return nil
	},
}

func renderFetchResult(result feed.Result, elapsed time.Duration) string {
	var sb strings.Builder
	for _, srcErr := range result.Errors {
		sb.WriteString(warnStyle.Render(fmt.Sprintf("  %s: %v", srcErr.Feed, srcErr.Err)))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Fetched %d articles from %d/%d feeds in %.1fs\n",
		result.Stats.ArticlesTotal,
		result.Stats.FeedsSuccess,
		result.Stats.FeedsTotal,
		elapsed.Seconds())
	return sb.String()
}

func init() {
	feedAddCmd.Flags().StringVarP(&flagFeedName, "name", "n", "", "friendly name for the feed")
	feedAddCmd.Flags().StringSliceVarP(&flagFeedTags, "tags", "t", nil, "tags for filtering (e.g., tech,ai)")
	feedFetchCmd.Flags().StringSliceVarP(&flagFeedTags, "tags", "t", nil, "only fetch feeds with these tags")
	feedFetchCmd.Flags().StringVarP(&flagSince, "since", "s", "", "only keep articles since (e.g., 24h, 7d, today)")

	feedCmd.AddCommand(feedAddCmd, feedRemoveCmd, feedListCmd, feedFetchCmd)
	rootCmd.AddCommand(feedCmd)
}
