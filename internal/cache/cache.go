// Package cache persists timestamped snapshots of fetched articles, one JSON
// file per filter fingerprint. Staleness policy belongs to the caller: the
// store only answers how old a snapshot is.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jedisherpa/sphereai/internal/feed"
)

// Snapshot is the on-disk record for one fingerprint.
type Snapshot struct {
	CachedAt     string         `json:"cached_at"`
	ArticleCount int            `json:"article_count"`
	Articles     []feed.Article `json:"articles"`
}

// Store reads and writes snapshot files under a single directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns a snapshot store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Fingerprint maps an active tag filter to a cache slot. It is order
// independent: identical tag sets always hit the same slot. An empty filter
// maps to the "all" sentinel.
func Fingerprint(tags []string) string {
	key := "all"
	if len(tags) > 0 {
		sorted := make([]string, len(tags))
		for i, t := range tags {
			sorted[i] = strings.ToLower(t)
		}
		sort.Strings(sorted)
		key = strings.Join(sorted, ",")
	}
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("feed_analysis_%x", h[:8])
}

func (s *Store) path(fingerprint string) string {
	return filepath.Join(s.dir, fingerprint+".json")
}

// Save writes a full replacement snapshot for the fingerprint and returns
// the file location. Concurrent writers to the same fingerprint race with
// last-write-wins semantics.
func (s *Store) Save(fingerprint string, articles []feed.Article) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}

	snap := Snapshot{
		CachedAt:     s.now().UTC().Format(time.RFC3339),
		ArticleCount: len(articles),
		Articles:     articles,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	path := s.path(fingerprint)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}

// Load reads the snapshot for a fingerprint, returning nil when absent.
func (s *Store) Load(fingerprint string) (*Snapshot, error) {
	data, err := os.ReadFile(s.path(fingerprint))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", fingerprint, err)
	}
	return &snap, nil
}

// Age returns how old the snapshot for a fingerprint is. The second return
// is false when no snapshot exists or its timestamp is unreadable.
func (s *Store) Age(fingerprint string) (time.Duration, bool) {
	snap, err := s.Load(fingerprint)
	if err != nil || snap == nil {
		return 0, false
	}
	cachedAt, err := time.Parse(time.RFC3339, snap.CachedAt)
	if err != nil {
		return 0, false
	}
	return s.now().UTC().Sub(cachedAt), true
}
