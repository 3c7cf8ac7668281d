// Package cluster groups articles into topic clusters using keyword overlap.
// The algorithm is a single-pass greedy partition: it is deliberately
// order-dependent and needs no external model.
package cluster

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jedisherpa/sphereai/internal/feed"
)

// Cluster is one topic group. Every input article lands in exactly one
// cluster before truncation.
type Cluster struct {
	Topic    string
	Keywords []string
	Articles []feed.Article
}

// Count returns the number of member articles.
func (c Cluster) Count() int { return len(c.Articles) }

// Options carries the clustering thresholds. The defaults reproduce the
// long-standing behavior; they are tunable, not load-bearing truths.
type Options struct {
	// MaxClusters truncates the sorted cluster list; excess low-population
	// clusters are dropped, not merged.
	MaxClusters int
	// TopKeywords bounds the per-article keyword set.
	TopKeywords int
	// LabelKeywords is how many aggregate keywords form the topic label.
	LabelKeywords int
	// MinOverlap is the shared-keyword threshold for absorbing an article.
	MinOverlap int
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{MaxClusters: 10, TopKeywords: 10, LabelKeywords: 3, MinOverlap: 2}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxClusters <= 0 {
		o.MaxClusters = d.MaxClusters
	}
	if o.TopKeywords <= 0 {
		o.TopKeywords = d.TopKeywords
	}
	if o.LabelKeywords <= 0 {
		o.LabelKeywords = d.LabelKeywords
	}
	if o.MinOverlap <= 0 {
		o.MinOverlap = d.MinOverlap
	}
	return o
}

var wordRE = regexp.MustCompile(`[a-zA-Z]{3,}`)

var stopWords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "with": true,
	"from": true, "was": true, "are": true, "were": true, "been": true,
	"have": true, "has": true, "had": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "must": true, "shall": true, "can": true, "need": true,
	"dare": true, "ought": true, "used": true, "its": true, "this": true,
	"that": true, "these": true, "those": true, "you": true, "she": true,
	"they": true, "what": true, "which": true, "who": true, "whom": true,
	"whose": true, "where": true, "when": true, "why": true, "how": true,
	"all": true, "each": true, "every": true, "both": true, "few": true,
	"more": true, "most": true, "other": true, "some": true, "such": true,
	"nor": true, "not": true, "only": true, "own": true, "same": true,
	"than": true, "too": true, "very": true, "just": true, "also": true,
	"now": true, "new": true, "one": true, "two": true, "first": true,
	"last": true, "long": true, "great": true, "little": true, "old": true,
	"right": true, "big": true, "high": true, "different": true,
	"small": true, "large": true, "next": true, "early": true,
	"young": true, "important": true, "public": true, "bad": true,
	"able": true,
}

// ExtractKeywords returns the topN most frequent non-stop-word tokens of at
// least three letters, lowercased. Ties break by first appearance so the
// result is deterministic for a given text.
func ExtractKeywords(text string, topN int) []string {
	counts := make(map[string]int)
	var order []string

	for _, w := range wordRE.FindAllString(strings.ToLower(text), -1) {
		if stopWords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topN {
		order = order[:topN]
	}
	return order
}

// Group partitions articles into topic clusters.
//
// Articles are visited in input order. Each unassigned article seeds a new
// cluster; every remaining unassigned article whose keyword set shares at
// least MinOverlap keywords with the cluster's accumulated keyword set is
// absorbed, and its keywords widen the matching set for later candidates in
// the same pass. The result is order-dependent by design.
func Group(articles []feed.Article, opts Options) []Cluster {
	opts = opts.withDefaults()
	if len(articles) == 0 {
		return nil
	}

	keywordSets := make([]map[string]bool, len(articles))
	for i, a := range articles {
		set := make(map[string]bool)
		for _, kw := range ExtractKeywords(a.Text(), opts.TopKeywords) {
			set[kw] = true
		}
		keywordSets[i] = set
	}

	var clusters []Cluster
	used := make([]bool, len(articles))

	for i := range articles {
		if used[i] {
			continue
		}
		used[i] = true

		members := []feed.Article{articles[i]}
		accumulated := make(map[string]bool, len(keywordSets[i]))
		for kw := range keywordSets[i] {
			accumulated[kw] = true
		}

		for j := i + 1; j < len(articles); j++ {
			if used[j] {
				continue
			}
			if overlap(accumulated, keywordSets[j]) >= opts.MinOverlap {
				members = append(members, articles[j])
				for kw := range keywordSets[j] {
					accumulated[kw] = true
				}
				used[j] = true
			}
		}

		clusters = append(clusters, Cluster{
			Topic:    label(members, opts.LabelKeywords),
			Keywords: capSorted(accumulated, opts.TopKeywords),
			Articles: members,
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Count() > clusters[j].Count()
	})
	if len(clusters) > opts.MaxClusters {
		clusters = clusters[:opts.MaxClusters]
	}
	return clusters
}

func overlap(a, b map[string]bool) int {
	n := 0
	for kw := range b {
		if a[kw] {
			n++
		}
	}
	return n
}

// label derives the topic string from the cluster's combined title+summary
// text: top keywords, title-cased, joined with " / ".
func label(members []feed.Article, topN int) string {
	var sb strings.Builder
	for _, a := range members {
		sb.WriteString(a.Title)
		sb.WriteString(" ")
		sb.WriteString(a.Summary)
		sb.WriteString(" ")
	}

	keywords := ExtractKeywords(sb.String(), topN)
	if len(keywords) == 0 {
		return "General News"
	}
	for i, kw := range keywords {
		keywords[i] = titleCase(kw)
	}
	return strings.Join(keywords, " / ")
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func capSorted(set map[string]bool, limit int) []string {
	keywords := make([]string, 0, len(set))
	for kw := range set {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}
