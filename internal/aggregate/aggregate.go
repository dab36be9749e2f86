// Package aggregate fans a search out to every applicable source
// adapter, merges the partial results, removes duplicates and orders
// the survivors by recency. It holds no cross-call state.
package aggregate

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deusflow/newsagent/internal/config"
	"github.com/deusflow/newsagent/internal/logger"
	"github.com/deusflow/newsagent/internal/metrics"
	"github.com/deusflow/newsagent/internal/model"
	"github.com/deusflow/newsagent/internal/source"
)

type Aggregator struct {
	cfg     *config.Config
	outlets []source.Outlet
	now     func() time.Time
}

func New(cfg *config.Config, outlets []source.Outlet) *Aggregator {
	return &Aggregator{cfg: cfg, outlets: outlets, now: time.Now}
}

// buildSources assembles the adapter list in the fixed invocation order:
// NewsAPI (only with a key), one webpage adapter per custom URL, then
// the feed outlets. Duplicate titles are resolved in this order, so the
// keyed API wins ties against scraped and feed sources.
func (a *Aggregator) buildSources(req model.SearchRequest) []source.Source {
	var sources []source.Source
	if a.cfg.NewsAPIKey != "" {
		sources = append(sources, source.NewNewsAPI(a.cfg.NewsAPIKey, a.cfg.NewsAPIPageSize, a.cfg.RequestTimeout))
	} else {
		logger.Debug("no NewsAPI key configured, skipping keyed source")
	}
	for _, u := range req.CustomURLs {
		if strings.TrimSpace(u) == "" {
			continue
		}
		sources = append(sources, source.NewWebpage(u, a.cfg.RequestTimeout))
	}
	for _, outlet := range a.outlets {
		sources = append(sources, source.NewFeed(outlet, a.cfg.RequestTimeout))
	}
	return sources
}

// Search runs one aggregation. It never fails: a broken source
// contributes zero articles and an empty result is a valid outcome.
func (a *Aggregator) Search(ctx context.Context, req model.SearchRequest) []model.Article {
	now := a.now()
	q := source.Query{
		Text:     req.Query,
		From:     now.AddDate(0, 0, -req.DaysBack),
		To:       now,
		Language: req.Language,
		SortBy:   req.SortBy,
	}
	if q.Language == "" {
		q.Language = a.cfg.DefaultLanguage
	}
	if q.SortBy == "" {
		q.SortBy = a.cfg.DefaultSortBy
	}

	sources := a.buildSources(req)
	logger.Info("starting search", "query", req.Query, "days_back", req.DaysBack, "sources", len(sources))

	// Fetch concurrently, bounded by a small worker pool. Results land
	// in per-source slots so the merge order stays deterministic no
	// matter which fetch finishes first.
	results := make([][]model.Article, len(sources))
	sem := make(chan struct{}, max(a.cfg.FetchConcurrency, 1))
	var wg sync.WaitGroup
	for i, s := range sources {
		wg.Add(1)
		go func(i int, s source.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			articles, err := s.Fetch(ctx, q)
			if err != nil {
				logger.Warn("source failed", "source", s.Name(), "error", err)
				metrics.Global.IncrementSourceFailures()
				return
			}
			logger.Debug("source done", "source", s.Name(), "articles", len(articles))
			metrics.Global.AddArticlesFetched(int64(len(articles)))
			results[i] = articles
		}(i, s)
	}
	wg.Wait()

	var merged []model.Article
	for _, r := range results {
		merged = append(merged, r...)
	}

	deduped := dedupeByTitle(merged)
	metrics.Global.AddDuplicatesRemoved(int64(len(merged) - len(deduped)))

	// Most recent first; stable so the adapter-order tie break from
	// deduplication survives equal timestamps.
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Published.After(deduped[j].Published)
	})

	logger.Info("search finished", "query", req.Query, "articles", len(deduped), "before_dedup", len(merged))
	metrics.Global.SetLastRun()
	return deduped
}

// dedupeByTitle keeps the first occurrence of each lower-cased trimmed
// title, scanning in merge order.
func dedupeByTitle(articles []model.Article) []model.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		key := strings.ToLower(strings.TrimSpace(a.Title))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, a)
	}
	return unique
}
