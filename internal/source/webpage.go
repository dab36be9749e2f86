package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/newsagent/internal/model"
)

// Webpage is the generic adapter for an arbitrary news page supplied by
// the user. It looks for article-like containers and keeps the ones
// mentioning the query. Best effort only: a page without recognizable
// structure simply yields nothing.
type Webpage struct {
	pageURL string
	client  *http.Client
	now     func() time.Time
}

func NewWebpage(pageURL string, timeout time.Duration) *Webpage {
	return &Webpage{
		pageURL: pageURL,
		client:  newHTTPClient(timeout),
		now:     time.Now,
	}
}

func (w *Webpage) Name() string {
	return "webpage:" + hostOf(w.pageURL)
}

func (w *Webpage) Fetch(ctx context.Context, q Query) ([]model.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	containers := doc.Find("article")
	if containers.Length() == 0 {
		// Secondary heuristic for pages that mark articles with classes.
		containers = doc.Find("div[class*='article']")
	}

	base, _ := url.Parse(w.pageURL)
	queryLower := strings.ToLower(q.Text)
	fetchedAt := w.now()

	var articles []model.Article
	containers.Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h1, h2, h3").First().Text())
		description := strings.TrimSpace(s.Find("p").First().Text())

		if !matchesQuery(queryLower, title, description) {
			return
		}

		link := w.pageURL
		if href, ok := s.Find("a[href]").First().Attr("href"); ok {
			link = resolveLink(base, href)
		}

		articles = append(articles, model.Article{
			Title:       defaultString(title, model.DefaultTitle),
			Description: description,
			URL:         link,
			Source:      hostOf(w.pageURL),
			Author:      model.DefaultAuthor,
			PublishedAt: formatFeedTime(fetchedAt),
			Published:   fetchedAt,
		})
	})
	return articles, nil
}

func resolveLink(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

var gmt = time.FixedZone("GMT", 0)

// formatFeedTime renders a timestamp in the RSS pubDate convention so
// scraped articles carry the same raw format as feed items.
func formatFeedTime(t time.Time) string {
	return t.In(gmt).Format(time.RFC1123)
}
