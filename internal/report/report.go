// Package report renders the analysis-input text and the final markdown
// report. Everything here is a pure function over already-fetched data: no
// I/O, no retries.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jedisherpa/sphereai/internal/cluster"
	"github.com/jedisherpa/sphereai/internal/feed"
)

const (
	articlesPerClusterSummary = 5
	articlesPerClusterReport  = 3
	clusterContentLimit       = 500
)

// SummarizeCluster renders one cluster for the multi-agent analysis input.
func SummarizeCluster(c cluster.Cluster) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Topic: %s\n\n", c.Topic)
	fmt.Fprintf(&sb, "*%d articles in this cluster*\n", c.Count())

	shown := c.Articles
	if len(shown) > articlesPerClusterSummary {
		shown = shown[:articlesPerClusterSummary]
	}

	for i, a := range shown {
		fmt.Fprintf(&sb, "\n### Article %d: %s\n", i+1, a.Title)
		source := a.FeedName
		if source == "" {
			source = "Unknown"
		}
		fmt.Fprintf(&sb, "*Source: %s*\n", source)
		if len(a.Published) >= 10 {
			fmt.Fprintf(&sb, "*Published: %s*\n", a.Published[:10])
		}

		content := a.Summary
		if content == "" {
			content = a.Content
		}
		if runes := []rune(content); len(runes) > clusterContentLimit {
			content = string(runes[:clusterContentLimit]) + "..."
		}
		fmt.Fprintf(&sb, "\n%s\n", content)
	}

	if c.Count() > articlesPerClusterSummary {
		fmt.Fprintf(&sb, "\n*...and %d more articles on this topic*\n", c.Count()-articlesPerClusterSummary)
	}
	return sb.String()
}

// AnalysisInput builds the text handed to the agent pipeline: query header,
// every cluster summary, and a closing analysis request.
func AnalysisInput(query string, clusters []cluster.Cluster, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("# Feed Analysis Request\n\n")
	fmt.Fprintf(&sb, "**Query:** %s\n", query)
	fmt.Fprintf(&sb, "**Date:** %s\n", now.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&sb, "**Topics:** %d clusters identified\n", len(clusters))
	sb.WriteString("\n---\n\n# News Summary by Topic\n")

	for _, c := range clusters {
		sb.WriteString("\n")
		sb.WriteString(SummarizeCluster(c))
		sb.WriteString("\n---\n")
	}

	sb.WriteString("\n# Analysis Request\n\n")
	fmt.Fprintf(&sb, "Based on the above news summary, please analyze: **%s**\n", query)
	return sb.String()
}

// Params collects everything the final report renders.
type Params struct {
	Query       string
	Clusters    []cluster.Cluster
	Synthesis   string
	AuditTrail  string
	Articles    []feed.Article
	GeneratedAt time.Time
}

// Build assembles the final markdown report: header metadata, synthesis
// body, per-cluster breakdown, deduplicated source list, and the verbatim
// audit trail.
func Build(p Params) string {
	var sb strings.Builder
	sb.WriteString("# Feed Analysis Report\n\n")
	fmt.Fprintf(&sb, "- **Generated:** %s\n", p.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "- **Query:** %s\n", p.Query)
	fmt.Fprintf(&sb, "- **Articles Analyzed:** %d\n", len(p.Articles))
	fmt.Fprintf(&sb, "- **Topic Clusters:** %d\n", len(p.Clusters))

	sb.WriteString("\n---\n\n## Executive Summary\n\n")
	sb.WriteString(p.Synthesis)
	sb.WriteString("\n\n---\n\n## Topics Covered\n")

	for i, c := range p.Clusters {
		fmt.Fprintf(&sb, "\n### %d. %s\n", i+1, c.Topic)
		fmt.Fprintf(&sb, "*%d articles*\n\n", c.Count())

		shown := c.Articles
		if len(shown) > articlesPerClusterReport {
			shown = shown[:articlesPerClusterReport]
		}
		for _, a := range shown {
			link := a.Link
			if link == "" {
				link = "#"
			}
			fmt.Fprintf(&sb, "- [%s](%s)\n", a.Title, link)
		}
		if c.Count() > articlesPerClusterReport {
			fmt.Fprintf(&sb, "- *...and %d more*\n", c.Count()-articlesPerClusterReport)
		}
	}

	sb.WriteString("\n---\n\n## Sources\n\n")
	for _, source := range distinctSources(p.Articles) {
		fmt.Fprintf(&sb, "- %s\n", source)
	}

	sb.WriteString("\n---\n\n## Audit Trail\n\n")
	fmt.Fprintf(&sb, "```\n%s\n```\n", p.AuditTrail)
	return sb.String()
}

func distinctSources(articles []feed.Article) []string {
	seen := make(map[string]bool)
	for _, a := range articles {
		name := a.FeedName
		if name == "" {
			name = "Unknown"
		}
		seen[name] = true
	}
	sources := make([]string, 0, len(seen))
	for name := range seen {
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return sources
}

// Filename returns the report artifact name for a run, embedding a UTC
// timestamp for uniqueness.
func Filename(now time.Time) string {
	return "feed_report_" + now.UTC().Format("20060102_150405") + ".md"
}
