package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/deusflow/newsagent/internal/logger"
	"github.com/deusflow/newsagent/internal/model"
)

const newsAPIEndpoint = "https://newsapi.org/v2/everything"

// NewsAPI is the keyed adapter for the newsapi.org search endpoint.
type NewsAPI struct {
	apiKey   string
	pageSize int
	endpoint string
	client   *http.Client
}

func NewNewsAPI(apiKey string, pageSize int, timeout time.Duration) *NewsAPI {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &NewsAPI{
		apiKey:   apiKey,
		pageSize: pageSize,
		endpoint: newsAPIEndpoint,
		client:   newHTTPClient(timeout),
	}
}

func (n *NewsAPI) Name() string { return "NewsAPI" }

type newsAPIResponse struct {
	Status       string `json:"status"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// Fetch issues one search request; there is no retry. Non-200 statuses
// are reported as errors with enough detail to tell a bad key from a
// rate limit, and the aggregator degrades to the other sources.
func (n *NewsAPI) Fetch(ctx context.Context, q Query) ([]model.Article, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("from", q.From.Format("2006-01-02"))
	params.Set("to", q.To.Format("2006-01-02"))
	params.Set("language", q.Language)
	params.Set("sortBy", q.SortBy)
	params.Set("pageSize", strconv.Itoa(n.pageSize))
	params.Set("apiKey", n.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("status %d: invalid API key", resp.StatusCode)
	case http.StatusUpgradeRequired, http.StatusTooManyRequests:
		return nil, fmt.Errorf("status %d: plan upgrade required or rate limit exceeded", resp.StatusCode)
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	articles := make([]model.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		published, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			logger.Debug("newsapi: unparseable publishedAt", "value", a.PublishedAt)
			published = time.Time{}
		}
		articles = append(articles, model.Article{
			Title:       defaultString(a.Title, model.DefaultTitle),
			Description: a.Description,
			URL:         a.URL,
			Source:      defaultString(a.Source.Name, "Unknown"),
			Author:      defaultString(a.Author, model.DefaultAuthor),
			PublishedAt: a.PublishedAt,
			Content:     a.Content,
			ImageURL:    a.URLToImage,
			Published:   published,
		})
	}
	return articles, nil
}
