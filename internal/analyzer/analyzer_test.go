package analyzer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jedisherpa/sphereai/internal/cache"
	"github.com/jedisherpa/sphereai/internal/config"
	"github.com/jedisherpa/sphereai/internal/feed"
	"github.com/jedisherpa/sphereai/internal/llm"
	"github.com/jedisherpa/sphereai/internal/logging"
	"github.com/jedisherpa/sphereai/internal/persona"
	"github.com/jedisherpa/sphereai/internal/pipeline"
)

type stubFetcher struct {
	articles []feed.Article
	calls    int
}

func (s *stubFetcher) Fetch(ctx context.Context, src config.Feed) ([]feed.Article, error) {
	s.calls++
	return s.articles, nil
}

type stubProvider struct {
	calls int
}

func (s *stubProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.calls++
	return "stub insight", nil
}

func (s *stubProvider) Name() string  { return "Stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func testDeps(t *testing.T, fetcher feed.Fetcher, provider llm.Provider) Deps {
	t.Helper()
	dir := t.TempDir()
	return Deps{
		Config: &config.Config{
			Dir:          dir,
			Feeds:        []config.Feed{{ID: "f1", Name: "test feed", URL: "https://example.com/rss"}},
			DefaultQuery: "default question",
			FetchTimeout: time.Second,
		},
		Fetcher:  fetcher,
		Cache:    cache.NewStore(t.TempDir()),
		Personas: persona.NewStore(dir),
		Provider: provider,
		Logger:   logging.NewWithWriter(io.Discard, "error"),
	}
}

func sampleArticles() []feed.Article {
	return []feed.Article{
		{ID: "a1", Title: "quantum computing hardware launch", Link: "https://x/1", Published: "2024-03-01T10:00:00Z", FeedName: "test feed"},
		{ID: "a2", Title: "quantum computing software stack", Link: "https://x/2", Published: "2024-03-01T09:00:00Z", FeedName: "test feed"},
		{ID: "a3", Title: "marathon training nutrition guide", Link: "https://x/3", Published: "2024-03-01T08:00:00Z", FeedName: "test feed"},
	}
}

func TestAnalyzeNotConfigured(t *testing.T) {
	deps := testDeps(t, &stubFetcher{}, nil)
	deps.Provider = nil

	_, err := New(deps).Analyze(context.Background(), Request{Query: "q"})
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestAnalyzeNoArticles(t *testing.T) {
	deps := testDeps(t, &stubFetcher{}, &stubProvider{})

	_, err := New(deps).Analyze(context.Background(), Request{Query: "q"})
	if err == nil || !strings.Contains(err.Error(), "no articles found") {
		t.Fatalf("err = %v, want a no-articles error", err)
	}
}

func TestAnalyzePresetNotFound(t *testing.T) {
	deps := testDeps(t, &stubFetcher{articles: sampleArticles()}, &stubProvider{})

	_, err := New(deps).Analyze(context.Background(), Request{Preset: "ghost"})
	if err == nil || !strings.Contains(err.Error(), "preset not found: ghost") {
		t.Fatalf("err = %v, want a preset-not-found error", err)
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	provider := &stubProvider{}
	deps := testDeps(t, fetcher, provider)

	result, err := New(deps).Analyze(context.Background(), Request{
		Query:     "what matters?",
		MaxAgents: 2,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.ArticleCount != 3 {
		t.Errorf("ArticleCount = %d, want 3", result.ArticleCount)
	}
	if result.ClusterCount == 0 {
		t.Error("expected at least one cluster")
	}
	if result.Synthesis != "stub insight" {
		t.Errorf("Synthesis = %q", result.Synthesis)
	}
	// Two agents plus one synthesis call.
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3", provider.calls)
	}

	for _, want := range []string{
		"# Feed Analysis Report",
		"- **Query:** what matters?",
		"stub insight",
		"## Audit Trail",
	} {
		if !strings.Contains(result.Report, want) {
			t.Errorf("report missing %q", want)
		}
	}

	for _, event := range []string{
		pipeline.EventAnalysisStarted,
		pipeline.EventProvider,
		pipeline.EventPersonaLoaded,
		pipeline.EventAgentStart,
		pipeline.EventAgentComplete,
		pipeline.EventSynthesisComplete,
		pipeline.EventAnalysisComplete,
	} {
		if !result.Trail.Contains(event) {
			t.Errorf("trail missing %s:\n%s", event, result.Trail.String())
		}
	}
}

func TestAnalyzeServesFreshCache(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	deps := testDeps(t, fetcher, &stubProvider{})

	// A snapshot saved just now is fresher than any sane max age.
	if _, err := deps.Cache.Save(cache.Fingerprint(nil), sampleArticles()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	result, err := New(deps).Analyze(context.Background(), Request{
		Query:     "q",
		UseCache:  true,
		MaxAgents: 1,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher calls = %d, want 0 (served from cache)", fetcher.calls)
	}
	if result.ArticleCount != 3 {
		t.Errorf("ArticleCount = %d, want 3", result.ArticleCount)
	}
}

func TestAnalyzeRefetchesStaleCache(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	deps := testDeps(t, fetcher, &stubProvider{})

	if _, err := deps.Cache.Save(cache.Fingerprint(nil), sampleArticles()[:1]); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Any wall-clock age exceeds a nanosecond budget, so the snapshot is
	// stale and the run must refetch.
	result, err := New(deps).Analyze(context.Background(), Request{
		Query:       "q",
		UseCache:    true,
		MaxCacheAge: time.Nanosecond,
		MaxAgents:   1,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if fetcher.calls == 0 {
		t.Error("stale snapshot should trigger a refetch")
	}
	if result.ArticleCount != 3 {
		t.Errorf("ArticleCount = %d, want the refetched 3", result.ArticleCount)
	}
}

func TestAnalyzeBypassesCacheWhenDisabled(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	deps := testDeps(t, fetcher, &stubProvider{})

	if _, err := deps.Cache.Save(cache.Fingerprint(nil), sampleArticles()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err := New(deps).Analyze(context.Background(), Request{
		Query:     "q",
		UseCache:  false,
		MaxAgents: 1,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if fetcher.calls == 0 {
		t.Error("no-cache run should hit the fetcher")
	}
}

func TestAnalyzePresetFillsQueryAndTags(t *testing.T) {
	fetcher := &stubFetcher{articles: sampleArticles()}
	deps := testDeps(t, fetcher, &stubProvider{})
	deps.Config.Feeds[0].Tags = []string{"tech"}

	err := config.SavePreset(deps.Config.Dir, config.Preset{
		Name:  "morning",
		Feeds: []string{"tech"},
		Query: "what happened overnight?",
	})
	if err != nil {
		t.Fatalf("SavePreset: %v", err)
	}

	result, err := New(deps).Analyze(context.Background(), Request{
		Preset:    "morning",
		MaxAgents: 1,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.Contains(result.Report, "- **Query:** what happened overnight?") {
		t.Error("preset query should drive the run")
	}
	if !result.Trail.Contains("what happened overnight?") {
		t.Errorf("trail should log the resolved query:\n%s", result.Trail.String())
	}
}

func TestAnalyzeDefaultQuery(t *testing.T) {
	deps := testDeps(t, &stubFetcher{articles: sampleArticles()}, &stubProvider{})

	result, err := New(deps).Analyze(context.Background(), Request{MaxAgents: 1})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.Contains(result.Report, "- **Query:** default question") {
		t.Error("empty request should fall back to the configured default query")
	}
}
