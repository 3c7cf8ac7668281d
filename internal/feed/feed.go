package feed

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/jedisherpa/sphereai/internal/config"
)

// Fetcher retrieves and normalizes a single feed.
type Fetcher interface {
	Fetch(ctx context.Context, src config.Feed) ([]Article, error)
}

// RSSFetcher parses RSS and Atom feeds over HTTP.
type RSSFetcher struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

// NewRSSFetcher returns a fetcher with a per-request timeout bound.
func NewRSSFetcher(timeout time.Duration) *RSSFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	p := gofeed.NewParser()
	p.UserAgent = "SphereAI/1.0 (Local RSS Reader)"
	return &RSSFetcher{parser: p, timeout: timeout}
}

// Fetch downloads one feed and normalizes its entries into Articles.
func (f *RSSFetcher) Fetch(ctx context.Context, src config.Feed) ([]Article, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	parsed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.Name, err)
	}

	articles := make([]Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		articles = append(articles, normalizeItem(item, src))
	}
	return articles, nil
}

func normalizeItem(item *gofeed.Item, src config.Feed) Article {
	a := Article{
		ID:        articleID(item.Link, item.GUID),
		Title:     item.Title,
		Link:      item.Link,
		Published: normalizeDate(item),
		Summary:   CleanHTML(item.Description),
		Author:    itemAuthor(item),
		Tags:      item.Categories,
		FeedName:  src.Name,
		FeedID:    src.ID,
	}
	if a.Title == "" {
		a.Title = "Untitled"
	}
	if item.Content != "" {
		a.Content = CleanHTML(item.Content)
	} else {
		a.Content = a.Summary
	}
	return a
}

func itemAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0].Name != "" {
		return item.Authors[0].Name
	}
	return ""
}

// dateLayouts are tried in order after the feed parser's own date handling.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeDate produces a sortable RFC3339 UTC string on a best-effort
// basis. An unparseable date string passes through unchanged rather than
// being dropped.
func normalizeDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC().Format(time.RFC3339)
	}

	raw := item.Published
	if raw == "" {
		raw = item.Updated
	}
	return ParseDate(raw)
}

// ParseDate normalizes a raw date string to RFC3339 UTC, returning the
// original string when no layout matches.
func ParseDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return raw
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// CleanHTML strips markup and decodes entities, collapsing whitespace.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
	}
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(doc.Text(), " "))
}

// SourceError records a single feed failure without aborting the aggregate.
type SourceError struct {
	Feed string
	Err  error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Feed, e.Err)
}

// Stats summarizes an aggregate fetch.
type Stats struct {
	FeedsTotal    int
	FeedsSuccess  int
	ArticlesTotal int
}

// Result is the outcome of fetching every configured source.
type Result struct {
	Articles []Article
	Errors   []SourceError
	Stats    Stats
}

// Options narrows an aggregate fetch.
type Options struct {
	// Since drops articles whose date parses and precedes the cutoff.
	// Articles with missing or unparseable dates are always kept.
	Since time.Time
	// Tags restricts fetching to feeds whose tag set intersects it.
	Tags []string
}

// FetchAll fetches each configured source in sequence. A source failure is
// recorded and the remaining sources still contribute. The merged list is
// sorted by the published string descending: empty dates sort earliest,
// while raw passthrough strings sort lexicographically among the rest.
func FetchAll(ctx context.Context, fetcher Fetcher, feeds []config.Feed, opts Options) Result {
	if len(opts.Tags) > 0 {
		selected := make([]config.Feed, 0, len(feeds))
		for _, f := range feeds {
			if f.HasAnyTag(opts.Tags) {
				selected = append(selected, f)
			}
		}
		feeds = selected
	}

	result := Result{Stats: Stats{FeedsTotal: len(feeds)}}

	for _, src := range feeds {
		articles, err := fetcher.Fetch(ctx, src)
		if err != nil {
			result.Errors = append(result.Errors, SourceError{Feed: src.Name, Err: err})
			continue
		}
		result.Stats.FeedsSuccess++

		for _, a := range articles {
			if !opts.Since.IsZero() && publishedBefore(a.Published, opts.Since) {
				continue
			}
			result.Articles = append(result.Articles, a)
		}
	}

	sort.SliceStable(result.Articles, func(i, j int) bool {
		return result.Articles[i].Published > result.Articles[j].Published
	})
	result.Stats.ArticlesTotal = len(result.Articles)
	return result
}

// publishedBefore reports whether the date string parses and falls strictly
// before the cutoff. Unparseable dates never filter an article out.
func publishedBefore(published string, cutoff time.Time) bool {
	if published == "" {
		return false
	}
	t, err := time.Parse(time.RFC3339, published)
	if err != nil {
		return false
	}
	return t.Before(cutoff)
}
