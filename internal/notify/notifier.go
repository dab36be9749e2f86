// Package notify owns the re-poll scheduler and the channels that
// announce newly discovered articles.
package notify

import (
	"context"

	"github.com/deusflow/newsagent/internal/cache"
	"github.com/deusflow/newsagent/internal/logger"
	"github.com/deusflow/newsagent/internal/metrics"
	"github.com/deusflow/newsagent/internal/model"
)

// Notification is the event emitted when a follow-up search found
// articles absent from the baseline.
type Notification struct {
	Query    string
	Articles []model.Article
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes the event to the application log. It is the
// fallback channel when no external one is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	logger.Info("new articles found", "query", n.Query, "count", len(n.Articles))
	for _, a := range n.Articles {
		logger.Info("new article", "title", a.Title, "source", a.Source, "url", a.URL)
	}
	metrics.Global.IncrementNotificationsSent()
	return nil
}

// Deduped wraps a Notifier and drops articles whose URL was already
// announced within the TTL window. An event with nothing left after
// filtering is swallowed entirely.
type Deduped struct {
	next Notifier
	seen *cache.TTLSet
}

func NewDeduped(next Notifier, seen *cache.TTLSet) *Deduped {
	return &Deduped{next: next, seen: seen}
}

// MarkSeen pre-registers URLs (the baseline) so they never notify.
func (d *Deduped) MarkSeen(articles []model.Article) {
	for _, a := range articles {
		d.seen.Add(a.URL)
	}
}

func (d *Deduped) Notify(ctx context.Context, n Notification) error {
	fresh := make([]model.Article, 0, len(n.Articles))
	for _, a := range n.Articles {
		if d.seen.Add(a.URL) {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) == 0 {
		logger.Debug("all new articles already announced", "query", n.Query)
		return nil
	}
	return d.next.Notify(ctx, Notification{Query: n.Query, Articles: fresh})
}
