// Package app wires the aggregation pipeline, the summarizer and the
// notification scheduler together behind the boundary the presentation
// layer talks to.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/deusflow/newsagent/internal/aggregate"
	"github.com/deusflow/newsagent/internal/cache"
	"github.com/deusflow/newsagent/internal/config"
	"github.com/deusflow/newsagent/internal/logger"
	"github.com/deusflow/newsagent/internal/metrics"
	"github.com/deusflow/newsagent/internal/model"
	"github.com/deusflow/newsagent/internal/notify"
	"github.com/deusflow/newsagent/internal/ratelimit"
	"github.com/deusflow/newsagent/internal/source"
	"github.com/deusflow/newsagent/internal/summarize"
)

type App struct {
	cfg        *config.Config
	aggregator *aggregate.Aggregator
	summarizer *summarize.Summarizer
	scheduler  *notify.Scheduler
	notifier   *notify.Deduped
}

// New assembles the application from config. Missing credentials
// degrade features instead of failing construction.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	outlets, err := source.LoadOutlets(cfg.FeedsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load feeds config: %w", err)
	}

	aggregator := aggregate.New(cfg, outlets)
	summarizer := summarize.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.SummaryMaxInput, ratelimit.New(cfg.MaxGeminiRequests))

	var sink notify.Notifier = notify.LogNotifier{}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		sink = notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		logger.Info("telegram notifications enabled")
	}
	deduped := notify.NewDeduped(sink, cache.NewTTLSet(cfg.NotifySeenTTL))

	return &App{
		cfg:        cfg,
		aggregator: aggregator,
		summarizer: summarizer,
		scheduler:  notify.NewScheduler(aggregator, deduped),
		notifier:   deduped,
	}, nil
}

func (a *App) Close() {
	a.summarizer.Close()
}

// Search runs one aggregation, optionally schedules a follow-up when
// the request asks for notification, and optionally summarizes.
func (a *App) Search(ctx context.Context, req model.SearchRequest) model.SearchResult {
	start := time.Now()
	articles := a.aggregator.Search(ctx, req)
	metrics.Global.RecordSearchDuration(time.Since(start))

	if req.Notify {
		// The search above doubles as the baseline.
		a.scheduler.ScheduleWithBaseline(ctx, req, articles)
	}

	res := model.SearchResult{Articles: articles}
	if req.Summarize && len(articles) > 0 {
		res.Summary = a.summarizer.Summarize(ctx, articles, req.Query)
	}
	return res
}

// WaitForFollowUps blocks until in-flight scheduled searches finish.
// One-shot CLI runs use it so the process does not exit before the
// follow-up fires.
func (a *App) WaitForFollowUps() {
	a.scheduler.Wait()
}

// Watch re-runs the search on a fixed cadence and announces articles
// not seen before. The first run only seeds the seen set; every later
// run notifies on the difference. Blocks until ctx is cancelled.
func (a *App) Watch(ctx context.Context, req model.SearchRequest, every time.Duration) error {
	if every <= 0 {
		return fmt.Errorf("watch interval must be positive, got %v", every)
	}

	baseline := a.aggregator.Search(ctx, req)
	a.notifier.MarkSeen(baseline)
	logger.Info("watch baseline captured", "query", req.Query, "articles", len(baseline))

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", every), func() {
		runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		results := a.aggregator.Search(runCtx, req)
		if len(results) == 0 {
			return
		}
		if err := a.notifier.Notify(runCtx, notify.Notification{Query: req.Query, Articles: results}); err != nil {
			logger.Error("watch notification failed", "query", req.Query, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule watch job: %w", err)
	}

	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	logger.Info("watch stopped", "query", req.Query)
	return nil
}
