package config

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Feed is one configured syndication source.
type Feed struct {
	ID    string   `yaml:"id"`
	URL   string   `yaml:"url"`
	Name  string   `yaml:"name"`
	Tags  []string `yaml:"tags,omitempty"`
	Added string   `yaml:"added,omitempty"`
}

// HasAnyTag reports whether the feed carries at least one of the given tags.
func (f Feed) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range f.Tags {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// LLMConfig describes the configured language-model gateway. The backend is
// selected once at configuration time; the pipeline never branches on it.
type LLMConfig struct {
	Provider     string  `yaml:"provider"`
	ProviderName string  `yaml:"provider_name,omitempty"`
	Type         string  `yaml:"type"`
	BaseURL      string  `yaml:"base_url"`
	APIKey       string  `yaml:"api_key,omitempty"`
	Model        string  `yaml:"model"`
	Timeout      int     `yaml:"timeout,omitempty"`
	MaxTokens    int     `yaml:"max_tokens,omitempty"`
	Temperature  float64 `yaml:"temperature,omitempty"`
	ConfiguredAt string  `yaml:"configured_at,omitempty"`
}

// Key returns the resolved API key (config file or environment).
func (c *LLMConfig) Key() string {
	if c != nil && c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv("SPHERE_API_KEY")
}

// TimeoutDuration returns the request timeout, defaulting to 120s.
func (c *LLMConfig) TimeoutDuration() time.Duration {
	if c == nil || c.Timeout <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// Config is the explicit configuration object handed to the analyzer at
// construction time. Nothing in the core reads ambient state directly.
type Config struct {
	Dir          string
	Feeds        []Feed
	DefaultQuery string
	LLM          *LLMConfig
	FetchTimeout time.Duration
}

type feedsFile struct {
	Feeds        []Feed `yaml:"feeds"`
	DefaultQuery string `yaml:"default_query,omitempty"`
}

// DefaultDir returns the sphere configuration directory.
func DefaultDir() string {
	return filepath.Join(xdg.ConfigHome, "sphere")
}

// CacheDir returns the directory holding feed snapshot files.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "sphere", "feed_cache")
}

// ArchivePath returns the path of the sqlite article archive.
func ArchivePath() string {
	return filepath.Join(xdg.CacheHome, "sphere", "articles.db")
}

// ReportsDir returns the directory where rendered reports are written.
func ReportsDir() string {
	return filepath.Join(xdg.DataHome, "sphere", "reports")
}

func feedsPath(dir string) string {
	return filepath.Join(dir, "feeds.yaml")
}

func llmPath(dir string) string {
	return filepath.Join(dir, "llm_config.yaml")
}

// Load reads the full configuration from dir. A missing feeds.yaml means no
// feeds yet; a missing llm_config.yaml is not an error (cfg.LLM stays nil).
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = DefaultDir()
	}

	cfg := &Config{
		Dir:          dir,
		DefaultQuery: "What are the key insights, trends, and implications from this news?",
		FetchTimeout: 30 * time.Second,
	}

	ff, err := loadFeedsFile(dir)
	if err != nil {
		return nil, err
	}
	cfg.Feeds = ff.Feeds
	if ff.DefaultQuery != "" {
		cfg.DefaultQuery = ff.DefaultQuery
	}

	if err := validateFeeds(cfg.Feeds); err != nil {
		return nil, err
	}

	llm, err := LoadLLM(dir)
	if err != nil {
		return nil, err
	}
	cfg.LLM = llm

	return cfg, nil
}

func loadFeedsFile(dir string) (*feedsFile, error) {
	data, err := os.ReadFile(feedsPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return &feedsFile{}, nil
		}
		return nil, fmt.Errorf("reading feeds config: %w", err)
	}

	var ff feedsFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", feedsPath(dir), err)
	}
	return &ff, nil
}

func saveFeedsFile(dir string, ff *feedsFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(ff)
	if err != nil {
		return err
	}
	return os.WriteFile(feedsPath(dir), data, 0o644)
}

func validateFeeds(feeds []Feed) error {
	for _, f := range feeds {
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.Name)
		}
		u, err := url.Parse(f.URL)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.Name, u.Scheme)
		}
	}
	return nil
}

// FeedID derives a short stable identifier from a feed URL.
func FeedID(feedURL string) string {
	h := sha256.Sum256([]byte(feedURL))
	return fmt.Sprintf("%x", h[:4])
}

// NameFromURL auto-generates a friendly feed name from its host.
func NameFromURL(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	name := strings.TrimPrefix(u.Host, "www.")
	name = strings.TrimSuffix(name, ".com")
	name = strings.TrimSuffix(name, ".org")
	return name
}

// AddFeed appends a feed to feeds.yaml, rejecting duplicate URLs.
func AddFeed(dir, feedURL, name string, tags []string) (Feed, error) {
	if dir == "" {
		dir = DefaultDir()
	}

	ff, err := loadFeedsFile(dir)
	if err != nil {
		return Feed{}, err
	}

	for _, f := range ff.Feeds {
		if f.URL == feedURL {
			return Feed{}, fmt.Errorf("feed already exists: %s", feedURL)
		}
	}

	if name == "" {
		name = NameFromURL(feedURL)
	}

	f := Feed{
		ID:    FeedID(feedURL),
		URL:   feedURL,
		Name:  name,
		Tags:  tags,
		Added: time.Now().UTC().Format(time.RFC3339),
	}
	if err := validateFeeds([]Feed{f}); err != nil {
		return Feed{}, err
	}

	ff.Feeds = append(ff.Feeds, f)
	if err := saveFeedsFile(dir, ff); err != nil {
		return Feed{}, fmt.Errorf("saving feeds config: %w", err)
	}
	return f, nil
}

// RemoveFeed deletes a feed matched by ID, name, or URL.
func RemoveFeed(dir, identifier string) error {
	if dir == "" {
		dir = DefaultDir()
	}

	ff, err := loadFeedsFile(dir)
	if err != nil {
		return err
	}

	kept := ff.Feeds[:0]
	for _, f := range ff.Feeds {
		if f.ID == identifier || strings.EqualFold(f.Name, identifier) || f.URL == identifier {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == len(ff.Feeds) {
		return fmt.Errorf("feed not found: %s", identifier)
	}
	ff.Feeds = kept
	return saveFeedsFile(dir, ff)
}

// LoadLLM reads llm_config.yaml; a missing file yields (nil, nil).
func LoadLLM(dir string) (*LLMConfig, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	data, err := os.ReadFile(llmPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading llm config: %w", err)
	}

	var llm LLMConfig
	if err := yaml.Unmarshal(data, &llm); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", llmPath(dir), err)
	}
	return &llm, nil
}

// SaveLLM writes llm_config.yaml with restrictive permissions; the file may
// contain an API key.
func SaveLLM(dir string, llm *LLMConfig) error {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	llm.ConfiguredAt = time.Now().UTC().Format(time.RFC3339)
	data, err := yaml.Marshal(llm)
	if err != nil {
		return err
	}
	return os.WriteFile(llmPath(dir), data, 0o600)
}

// DeleteLLM removes the gateway configuration.
func DeleteLLM(dir string) error {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.Remove(llmPath(dir)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no LLM configuration found")
		}
		return err
	}
	return nil
}
