// Package analyzer orchestrates one analysis run: cached or fresh feed
// aggregation, topic clustering, the sequential multi-agent pipeline, and
// the final report. A run owns all of its state; nothing is shared across
// concurrent runs except the snapshot cache, whose writes are full
// replacements.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jedisherpa/sphereai/internal/archive"
	"github.com/jedisherpa/sphereai/internal/cache"
	"github.com/jedisherpa/sphereai/internal/cluster"
	"github.com/jedisherpa/sphereai/internal/config"
	"github.com/jedisherpa/sphereai/internal/feed"
	"github.com/jedisherpa/sphereai/internal/llm"
	"github.com/jedisherpa/sphereai/internal/persona"
	"github.com/jedisherpa/sphereai/internal/pipeline"
	"github.com/jedisherpa/sphereai/internal/report"
)

// Deps wires the collaborators into an Analyzer. Archive is optional and
// best-effort; everything else is required.
type Deps struct {
	Config   *config.Config
	Fetcher  feed.Fetcher
	Cache    *cache.Store
	Personas *persona.Store
	Provider llm.Provider
	Archive  *archive.Archive
	Logger   *slog.Logger
	Cluster  cluster.Options
}

// Analyzer runs the fetch→cache→cluster→pipeline→report workflow.
type Analyzer struct {
	cfg      *config.Config
	fetcher  feed.Fetcher
	cache    *cache.Store
	personas *persona.Store
	provider llm.Provider
	archive  *archive.Archive
	logger   *slog.Logger
	cluster  cluster.Options
	now      func() time.Time
}

// New constructs an analyzer from explicit dependencies.
func New(deps Deps) *Analyzer {
	return &Analyzer{
		cfg:      deps.Config,
		fetcher:  deps.Fetcher,
		cache:    deps.Cache,
		personas: deps.Personas,
		provider: deps.Provider,
		archive:  deps.Archive,
		logger:   deps.Logger,
		cluster:  deps.Cluster,
		now:      time.Now,
	}
}

// Request describes one analysis run.
type Request struct {
	Query       string
	Since       time.Time
	Tags        []string
	Preset      string
	UseCache    bool
	MaxCacheAge time.Duration
	MaxAgents   int
}

// Result is everything a run produced.
type Result struct {
	Report       string
	Synthesis    string
	Clusters     []cluster.Cluster
	ArticleCount int
	ClusterCount int
	Trail        *pipeline.Trail
}

// Analyze executes one full run. The only fatal conditions are an
// unconfigured gateway, an empty article pool, and a pipeline in which no
// agent succeeded; every partial failure is recorded and tolerated.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	start := a.now()
	trail := pipeline.NewTrail()

	query, tags, err := a.resolvePreset(req)
	if err != nil {
		return nil, err
	}
	trail.Recordf(pipeline.EventAnalysisStarted, "Query: '%s'", truncate(query, 100))

	if a.provider == nil {
		trail.Record(pipeline.EventError, llm.ErrNotConfigured.Error())
		return nil, llm.ErrNotConfigured
	}
	trail.Recordf(pipeline.EventProvider, "%s (%s)", a.provider.Name(), a.provider.Model())

	articles, err := a.gatherArticles(ctx, req, tags)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("no articles found. Add feeds with 'sphere feed add <url>'")
	}
	a.logger.Info("analyzing articles", "count", len(articles))

	clusters := cluster.Group(articles, a.cluster)
	a.logger.Info("clustered articles", "clusters", len(clusters))

	input := report.AnalysisInput(query, clusters, a.now())

	active := a.personas.Active()
	agents := active.Agents
	if req.MaxAgents > 0 && len(agents) > req.MaxAgents {
		agents = agents[:req.MaxAgents]
	}
	trail.Recordf(pipeline.EventPersonaLoaded, "'%s' with %d agents", active.Name, len(agents))

	pl := pipeline.New(a.provider, a.logger)
	results, err := pl.Run(ctx, input, "", agents, trail)
	if err != nil {
		return nil, err
	}

	synthesis := pl.Synthesize(ctx, input, active.Name, results, trail)
	trail.Recordf(pipeline.EventAnalysisComplete, "%.1fs elapsed", a.now().Sub(start).Seconds())

	doc := report.Build(report.Params{
		Query:       query,
		Clusters:    clusters,
		Synthesis:   synthesis,
		AuditTrail:  trail.String(),
		Articles:    articles,
		GeneratedAt: a.now(),
	})

	return &Result{
		Report:       doc,
		Synthesis:    synthesis,
		Clusters:     clusters,
		ArticleCount: len(articles),
		ClusterCount: len(clusters),
		Trail:        trail,
	}, nil
}

// resolvePreset fills blanks in the request from a saved preset, then from
// the configured default query.
func (a *Analyzer) resolvePreset(req Request) (query string, tags []string, err error) {
	query, tags = req.Query, req.Tags

	if req.Preset != "" {
		p, err := config.LoadPreset(a.cfg.Dir, req.Preset)
		if err != nil {
			return "", nil, err
		}
		if p == nil {
			return "", nil, fmt.Errorf("preset not found: %s", req.Preset)
		}
		if query == "" && p.Query != "" {
			query = p.Query
		}
		if len(p.Feeds) > 0 {
			tags = p.Feeds
		}
	}

	if query == "" {
		query = a.cfg.DefaultQuery
	}
	return query, tags, nil
}

// gatherArticles serves the run from the snapshot cache when it is fresh
// enough, refetching and overwriting otherwise. Per-source errors never
// abort the aggregate.
func (a *Analyzer) gatherArticles(ctx context.Context, req Request, tags []string) ([]feed.Article, error) {
	fingerprint := cache.Fingerprint(tags)

	maxAge := req.MaxCacheAge
	if maxAge <= 0 {
		maxAge = time.Hour
	}

	if req.UseCache {
		if age, ok := a.cache.Age(fingerprint); ok && age < maxAge {
			snap, err := a.cache.Load(fingerprint)
			if err == nil && snap != nil {
				a.logger.Info("using cached articles", "age", age.Round(time.Second), "count", snap.ArticleCount)
				return snap.Articles, nil
			}
		}
	}

	result := feed.FetchAll(ctx, a.fetcher, a.cfg.Feeds, feed.Options{Since: req.Since, Tags: tags})
	for _, srcErr := range result.Errors {
		a.logger.Warn("feed error", "feed", srcErr.Feed, "error", srcErr.Err)
	}
	a.logger.Info("fetched feeds",
		"attempted", result.Stats.FeedsTotal,
		"succeeded", result.Stats.FeedsSuccess,
		"articles", result.Stats.ArticlesTotal)

	if req.UseCache {
		if path, err := a.cache.Save(fingerprint, result.Articles); err != nil {
			a.logger.Warn("caching articles failed", "error", err)
		} else {
			a.logger.Info("cached articles", "path", path, "count", len(result.Articles))
		}
	}

	if a.archive != nil {
		if err := a.archive.Upsert(result.Articles); err != nil {
			a.logger.Warn("archiving articles failed", "error", err)
		}
	}

	return result.Articles, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
