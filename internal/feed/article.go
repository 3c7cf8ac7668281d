package feed

import (
	"crypto/sha256"
	"fmt"
)

// Article is a single normalized feed entry. It is immutable once fetched;
// the pipeline run that fetched it is its only owner.
type Article struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Link      string   `json:"link"`
	Published string   `json:"published,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Content   string   `json:"content,omitempty"`
	Author    string   `json:"author,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	FeedName  string   `json:"feed_name,omitempty"`
	FeedID    string   `json:"feed_id,omitempty"`
}

// articleID derives a stable identity from the canonical link, falling back
// to the feed-provided GUID when the entry has no link.
func articleID(link, guid string) string {
	key := link
	if key == "" {
		key = guid
	}
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h[:6])
}

// Text returns the concatenated searchable text of an article.
func (a Article) Text() string {
	return a.Title + " " + a.Summary + " " + a.Content
}
