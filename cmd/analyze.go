package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jedisherpa/sphereai/internal/analyzer"
	"github.com/jedisherpa/sphereai/internal/archive"
	"github.com/jedisherpa/sphereai/internal/cache"
	"github.com/jedisherpa/sphereai/internal/cluster"
	"github.com/jedisherpa/sphereai/internal/config"
	"github.com/jedisherpa/sphereai/internal/feed"
	"github.com/jedisherpa/sphereai/internal/llm"
	"github.com/jedisherpa/sphereai/internal/logging"
	"github.com/jedisherpa/sphereai/internal/persona"
	"github.com/jedisherpa/sphereai/internal/report"
)

var (
	flagQuery       string
	flagSince       string
	flagTags        []string
	flagPreset      string
	flagNoCache     bool
	flagMaxAge      time.Duration
	flagMaxClusters int
	flagMaxAgents   int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fetch feeds, cluster articles, and run a multi-agent analysis",
	Long: `Fetch your configured feeds (or reuse a fresh cache snapshot), cluster
the articles by topic, and run the active persona's agents over the result.

Examples:
  sphere analyze --query "What trends should founders watch?"
  sphere analyze --since 24h --tags tech
  sphere analyze --preset morning`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "the analysis question to ask about the news")
	analyzeCmd.Flags().StringVarP(&flagSince, "since", "s", "", "only analyze articles since (e.g., 24h, 7d, today)")
	analyzeCmd.Flags().StringSliceVarP(&flagTags, "tags", "t", nil, "only analyze feeds with these tags")
	analyzeCmd.Flags().StringVarP(&flagPreset, "preset", "p", "", "use a saved preset configuration")
	analyzeCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "force a fresh fetch, ignoring cached articles")
	analyzeCmd.Flags().DurationVar(&flagMaxAge, "max-cache-age", time.Hour, "reuse cached articles younger than this")
	analyzeCmd.Flags().IntVar(&flagMaxClusters, "max-clusters", 0, "cap on topic clusters (default 10)")
	analyzeCmd.Flags().IntVar(&flagMaxAgents, "agents", 0, "limit the number of agents to run")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := logging.New(flagLogLevel)

	cfg, err := config.Load(flagConfigDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	provider, err := llm.New(cfg.LLM)
	if err != nil {
		return err
	}

	var since time.Time
	if flagSince != "" {
		since, err = parseSince(flagSince)
		if err != nil {
			return err
		}
	}

	// The archive is best-effort; analysis proceeds without it.
	var arc *archive.Archive
	if a, err := archive.Open(config.ArchivePath()); err != nil {
		logger.Warn("opening archive failed", "error", err)
	} else {
		arc = a
		defer arc.Close()
	}

	a := analyzer.New(analyzer.Deps{
		Config:   cfg,
		Fetcher:  feed.NewRSSFetcher(cfg.FetchTimeout),
		Cache:    cache.NewStore(config.CacheDir()),
		Personas: persona.NewStore(cfg.Dir),
		Provider: provider,
		Archive:  arc,
		Logger:   logger,
		Cluster:  cluster.Options{MaxClusters: flagMaxClusters},
	})

	result, err := a.Analyze(cmd.Context(), analyzer.Request{
		Query:       flagQuery,
		Since:       since,
		Tags:        flagTags,
		Preset:      flagPreset,
		UseCache:    !flagNoCache,
		MaxCacheAge: flagMaxAge,
		MaxAgents:   flagMaxAgents,
	})
	if err != nil {
		return err
	}

	path, err := writeReport(result.Report)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Analysis complete."))
	fmt.Printf("  Articles analyzed: %d\n", result.ArticleCount)
	fmt.Printf("  Topic clusters:    %d\n", result.ClusterCount)
	fmt.Println(successStyle.Render("  Report saved to:   " + path))
	return nil
}

func writeReport(doc string) (string, error) {
	dir := config.ReportsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports dir: %w", err)
	}
	path := filepath.Join(dir, report.Filename(time.Now()))
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
