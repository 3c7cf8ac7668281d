// Package archive keeps a long-term sqlite record of every article the
// aggregator has seen, independent of the per-run snapshot cache. It backs
// the prune and stats commands.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/jedisherpa/sphereai/internal/feed"
)

// Archive wraps the sqlite article store.
type Archive struct {
	db *sql.DB
}

// Open creates or opens the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive db: %w", err)
	}
	db.SetMaxOpenConns(1)

	a := &Archive{db: db}
	if err := a.init(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) init() error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id         TEXT PRIMARY KEY,
			feed       TEXT NOT NULL,
			title      TEXT NOT NULL,
			link       TEXT NOT NULL,
			published  TEXT NOT NULL DEFAULT '',
			summary    TEXT NOT NULL DEFAULT '',
			fetched_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published DESC);
		CREATE INDEX IF NOT EXISTS idx_articles_feed ON articles(feed);
	`)
	if err != nil {
		return fmt.Errorf("initializing archive schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Upsert records articles, refreshing title, summary, and fetch time on
// conflicts.
func (a *Archive) Upsert(articles []feed.Article) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, art := range articles {
		query, args, err := sq.Insert("articles").
			Columns("id", "feed", "title", "link", "published", "summary", "fetched_at").
			Values(art.ID, art.FeedName, art.Title, art.Link, art.Published, art.Summary, now).
			Suffix(`ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				summary = excluded.summary,
				fetched_at = excluded.fetched_at`).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("upserting article %s: %w", art.ID, err)
		}
	}
	return tx.Commit()
}

// QueryOpts narrows Recent.
type QueryOpts struct {
	Feed  string
	Limit int
}

// Recent returns archived articles, newest first.
func (a *Archive) Recent(opts QueryOpts) ([]feed.Article, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}

	builder := sq.Select("id", "feed", "title", "link", "published", "summary").
		From("articles").
		OrderBy("published DESC").
		Limit(uint64(limit))
	if opts.Feed != "" {
		builder = builder.Where(sq.Eq{"feed": opts.Feed})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var articles []feed.Article
	for rows.Next() {
		var art feed.Article
		if err := rows.Scan(&art.ID, &art.FeedName, &art.Title, &art.Link, &art.Published, &art.Summary); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, art)
	}
	return articles, rows.Err()
}

// Prune deletes articles fetched before the retention window and reports how
// many were removed.
func (a *Archive) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	query, args, err := sq.Delete("articles").
		Where(sq.Lt{"fetched_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, err
	}

	res, err := a.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("pruning archive: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns the article count and on-disk size of the archive.
func (a *Archive) Stats(path string) (count int64, size int64, err error) {
	query, args, err := sq.Select("COUNT(*)").From("articles").ToSql()
	if err != nil {
		return 0, 0, err
	}
	if err := a.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting articles: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return count, 0, nil
	}
	return count, info.Size(), nil
}
