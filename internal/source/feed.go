package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsagent/internal/logger"
	"github.com/deusflow/newsagent/internal/model"
)

// Outlet describes one RSS feed. A "{query}" placeholder in URL marks a
// search feed: the query is substituted into the URL and the per-item
// query filter is skipped, because the feed is already query-scoped.
type Outlet struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Author string `yaml:"author"`
}

const queryPlaceholder = "{query}"

// DefaultOutlets mirrors configs/feeds.yaml and is used when no feeds
// file is present.
func DefaultOutlets() []Outlet {
	return []Outlet{
		{Name: "Google News", URL: "https://news.google.com/rss/search?q=" + queryPlaceholder + "&hl=en-US&gl=US&ceid=US:en", Author: model.DefaultAuthor},
		{Name: "Al Jazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml", Author: "Al Jazeera"},
		{Name: "BBC News", URL: "http://feeds.bbci.co.uk/news/world/rss.xml", Author: "BBC"},
		{Name: "Reuters", URL: "https://www.reutersagency.com/feed/?taxonomy=best-topics&post_type=best", Author: "Reuters"},
		{Name: "CNN", URL: "http://rss.cnn.com/rss/edition_world.rss", Author: "CNN"},
		{Name: "The Guardian", URL: "https://www.theguardian.com/world/rss", Author: "The Guardian"},
	}
}

type outletsConfig struct {
	Feeds []Outlet `yaml:"feeds"`
}

// LoadOutlets reads the outlet table from a YAML file. A missing file is
// not an error; the compiled-in defaults are returned instead.
func LoadOutlets(path string) ([]Outlet, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("feeds config not found, using defaults", "path", path)
			return DefaultOutlets(), nil
		}
		return nil, err
	}
	defer f.Close()

	var cfg outletsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse feeds config: %w", err)
	}
	if len(cfg.Feeds) == 0 {
		return DefaultOutlets(), nil
	}
	for i := range cfg.Feeds {
		if cfg.Feeds[i].Author == "" {
			cfg.Feeds[i].Author = model.DefaultAuthor
		}
	}
	return cfg.Feeds, nil
}

// Feed fetches and filters one RSS outlet.
type Feed struct {
	outlet Outlet
	parser *gofeed.Parser
}

func NewFeed(outlet Outlet, timeout time.Duration) *Feed {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = newHTTPClient(timeout)
	return &Feed{outlet: outlet, parser: parser}
}

func (f *Feed) Name() string { return f.outlet.Name }

func (f *Feed) feedURL(q Query) string {
	if !strings.Contains(f.outlet.URL, queryPlaceholder) {
		return f.outlet.URL
	}
	return strings.ReplaceAll(f.outlet.URL, queryPlaceholder, url.QueryEscape(q.Text))
}

// Fetch parses the feed once and keeps items that match the query and
// fall inside the recency window. Items without a parseable publication
// time are kept (fail-open) and sort to the end of the final result.
func (f *Feed) Fetch(ctx context.Context, q Query) ([]model.Article, error) {
	searchFeed := strings.Contains(f.outlet.URL, queryPlaceholder)

	feed, err := f.parser.ParseURLWithContext(f.feedURL(q), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	queryLower := strings.ToLower(q.Text)
	var articles []model.Article
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		// Search feeds are already scoped to the query by the URL.
		if !searchFeed && !matchesQuery(queryLower, item.Title, item.Description) {
			continue
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
			if published.Before(q.From) {
				continue
			}
		}

		articles = append(articles, model.Article{
			Title:       defaultString(strings.TrimSpace(item.Title), model.DefaultTitle),
			Description: strings.TrimSpace(item.Description),
			URL:         item.Link,
			Source:      f.outlet.Name,
			Author:      defaultString(f.outlet.Author, model.DefaultAuthor),
			PublishedAt: item.Published,
			Published:   published,
		})
	}
	return articles, nil
}

// matchesQuery reports whether the query appears case-insensitively in
// the title or the description.
func matchesQuery(queryLower, title, description string) bool {
	if queryLower == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), queryLower) ||
		strings.Contains(strings.ToLower(description), queryLower)
}
