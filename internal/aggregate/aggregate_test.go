package aggregate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsagent/internal/config"
	"github.com/deusflow/newsagent/internal/model"
	"github.com/deusflow/newsagent/internal/source"
)

func testConfig() *config.Config {
	return &config.Config{
		NewsAPIPageSize:  100,
		DefaultLanguage:  "en",
		DefaultSortBy:    "publishedAt",
		FetchConcurrency: 4,
		RequestTimeout:   5 * time.Second,
	}
}

func rssServer(t *testing.T, items ...string) *httptest.Server {
	t.Helper()
	body := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>t</title>` +
		strings.Join(items, "") + `</channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func item(title, link string, published time.Time) string {
	return fmt.Sprintf("<item><title>%s</title><link>%s</link><description>about sudan</description><pubDate>%s</pubDate></item>",
		title, link, published.Format(time.RFC1123Z))
}

func TestSearch_DeduplicatesAndSortsByRecency(t *testing.T) {
	now := time.Now()
	first := rssServer(t,
		item("Sudan ceasefire holds", "https://a.example/1", now.Add(-1*time.Hour)),
		item("Sudan aid arrives", "https://a.example/2", now.Add(-5*time.Hour)),
	)
	second := rssServer(t,
		// Same title modulo case and whitespace: must lose to the first outlet.
		item("  sudan CEASEFIRE holds ", "https://b.example/1", now.Add(-30*time.Minute)),
		item("Sudan schools reopen", "https://b.example/2", now.Add(-2*time.Hour)),
	)

	agg := New(testConfig(), []source.Outlet{
		{Name: "First", URL: first.URL, Author: "First Desk"},
		{Name: "Second", URL: second.URL, Author: "Second Desk"},
	})

	articles := agg.Search(context.Background(), model.SearchRequest{Query: "sudan", DaysBack: 1})
	require.Len(t, articles, 3)

	// Titles pairwise distinct after lowercasing and trimming.
	seen := map[string]struct{}{}
	for _, a := range articles {
		key := strings.ToLower(strings.TrimSpace(a.Title))
		_, dup := seen[key]
		assert.False(t, dup, "duplicate title %q", a.Title)
		seen[key] = struct{}{}
	}

	// First-outlet occurrence wins the title tie.
	assert.Equal(t, "First", articles[sortedIndex(articles, "sudan ceasefire holds")].Source)

	// Non-increasing recency.
	for i := 1; i < len(articles); i++ {
		assert.False(t, articles[i].Published.After(articles[i-1].Published),
			"articles out of order at %d", i)
	}
}

func sortedIndex(articles []model.Article, lowerTitle string) int {
	for i, a := range articles {
		if strings.ToLower(strings.TrimSpace(a.Title)) == lowerTitle {
			return i
		}
	}
	return -1
}

func TestSearch_AllSourcesFailing(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	agg := New(testConfig(), []source.Outlet{
		{Name: "Broken A", URL: broken.URL, Author: "Unknown"},
		{Name: "Broken B", URL: broken.URL + "/other", Author: "Unknown"},
	})

	articles := agg.Search(context.Background(), model.SearchRequest{
		Query:      "sudan",
		DaysBack:   1,
		CustomURLs: []string{broken.URL + "/page"},
	})
	assert.Empty(t, articles)
}

func TestSearch_WithoutAPIKeyOtherSourcesStillContribute(t *testing.T) {
	now := time.Now()
	feed := rssServer(t, item("Sudan talks continue", "https://a.example/1", now.Add(-time.Hour)))

	cfg := testConfig()
	require.Empty(t, cfg.NewsAPIKey)

	agg := New(cfg, []source.Outlet{{Name: "Feed", URL: feed.URL, Author: "Desk"}})

	articles := agg.Search(context.Background(), model.SearchRequest{Query: "sudan", DaysBack: 1})
	require.Len(t, articles, 1)
	assert.Equal(t, "Sudan talks continue", articles[0].Title)
}

func TestSearch_CustomURLMergedAheadOfFeeds(t *testing.T) {
	now := time.Now()
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><article>
			<h2>Sudan border update</h2><p>Checkpoint reopened.</p>
			<a href="/border">more</a>
		</article></body></html>`))
	}))
	defer page.Close()

	// The feed carries the same title; the custom URL is earlier in the
	// invocation order, so its version survives deduplication.
	feed := rssServer(t, item("Sudan border update", "https://feed.example/1", now.Add(-time.Hour)))

	agg := New(testConfig(), []source.Outlet{{Name: "Feed", URL: feed.URL, Author: "Desk"}})

	articles := agg.Search(context.Background(), model.SearchRequest{
		Query:      "sudan",
		DaysBack:   1,
		CustomURLs: []string{page.URL},
	})
	require.Len(t, articles, 1)
	assert.NotEqual(t, "Feed", articles[0].Source)
	assert.Equal(t, page.URL+"/border", articles[0].URL)
}

func TestSearch_ZeroConcurrencyStillCompletes(t *testing.T) {
	now := time.Now()
	feed := rssServer(t, item("Sudan vote scheduled", "https://a.example/1", now.Add(-time.Hour)))

	// A directly constructed Config bypasses Validate; the fan-out must
	// not deadlock on an unbuffered semaphore.
	cfg := testConfig()
	cfg.FetchConcurrency = 0

	agg := New(cfg, []source.Outlet{{Name: "Feed", URL: feed.URL, Author: "Desk"}})

	done := make(chan []model.Article, 1)
	go func() {
		done <- agg.Search(context.Background(), model.SearchRequest{Query: "sudan", DaysBack: 1})
	}()

	select {
	case articles := <-done:
		require.Len(t, articles, 1)
		assert.Equal(t, "Sudan vote scheduled", articles[0].Title)
	case <-time.After(5 * time.Second):
		t.Fatal("search did not finish")
	}
}

func TestDedupeByTitle(t *testing.T) {
	articles := []model.Article{
		{Title: "Alpha"},
		{Title: " alpha "},
		{Title: "Beta"},
		{Title: ""},
		{Title: "ALPHA"},
	}
	got := dedupeByTitle(articles)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Title)
	assert.Equal(t, "Beta", got[1].Title)
}
