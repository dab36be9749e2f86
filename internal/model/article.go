package model

import "time"

// Article is a normalized news item. Every source adapter maps its native
// format into this schema; once produced an Article is never mutated.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Author      string `json:"author"`
	PublishedAt string `json:"published_at"`
	Content     string `json:"content"`
	ImageURL    string `json:"image_url"`

	// Published is the canonical parsed timestamp used for recency
	// filtering and result ordering. PublishedAt keeps the raw source
	// string for serialization and display. Zero when the source gave
	// no parseable time.
	Published time.Time `json:"-"`
}

const (
	DefaultTitle  = "No title"
	DefaultAuthor = "Unknown"
)

// SearchRequest carries one search through the pipeline.
type SearchRequest struct {
	Query      string
	DaysBack   int
	Language   string
	SortBy     string
	CustomURLs []string

	Notify         bool
	NotifyInterval time.Duration

	Summarize bool
}

// SearchResult is what the presentation layer consumes.
type SearchResult struct {
	Articles []Article
	Summary  string
}
