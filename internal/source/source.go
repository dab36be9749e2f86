// Package source contains the adapters that fetch news from external
// endpoints and map them into the common Article schema. Each adapter
// handles exactly one endpoint family and is independently replaceable:
// adding a source means adding one Source implementation, nothing else.
package source

import (
	"context"
	"net/http"
	"time"

	"github.com/deusflow/newsagent/internal/model"
)

// Browser-like header; several outlets reject default Go user agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Query is one search window. From/To are derived once per aggregation
// so every adapter filters against the same reference time.
type Query struct {
	Text     string
	From     time.Time
	To       time.Time
	Language string
	SortBy   string
}

// Source fetches articles for a query. Implementations return an error
// for endpoint-level failures; the aggregator treats any error as an
// empty contribution. Per-item problems are skipped inside the adapter
// and never surface as an error.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]model.Article, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
