package notify

import (
	"context"
	"sync"
	"time"

	"github.com/deusflow/newsagent/internal/logger"
	"github.com/deusflow/newsagent/internal/model"
)

// Searcher is the slice of the aggregator the scheduler needs.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) []model.Article
}

// followUp is one scheduled re-search. It is created with the baseline
// captured, handed by value to exactly one goroutine and never touched
// again: Pending until the timer fires, then terminal.
type followUp struct {
	req      model.SearchRequest
	baseline map[string]struct{}
	interval time.Duration
}

// Scheduler runs delayed follow-up searches and notifies when the
// follow-up surfaced articles the baseline did not have.
type Scheduler struct {
	searcher Searcher
	notifier Notifier

	wg sync.WaitGroup

	mu      sync.Mutex
	pending int
}

func NewScheduler(searcher Searcher, notifier Notifier) *Scheduler {
	return &Scheduler{searcher: searcher, notifier: notifier}
}

// Schedule captures a baseline for the request synchronously — the
// baseline search is on the caller's critical path — and registers one
// deferred follow-up after req.NotifyInterval. Fire and forget: the
// follow-up outcome is only observable through the notifier.
func (s *Scheduler) Schedule(ctx context.Context, req model.SearchRequest) {
	baseline := s.searcher.Search(ctx, req)
	s.ScheduleWithBaseline(ctx, req, baseline)
}

// ScheduleWithBaseline reuses an already-computed baseline so a caller
// that just ran the search does not pay for it twice.
func (s *Scheduler) ScheduleWithBaseline(ctx context.Context, req model.SearchRequest, baseline []model.Article) {
	urls := make(map[string]struct{}, len(baseline))
	for _, a := range baseline {
		urls[a.URL] = struct{}{}
	}

	job := followUp{req: req, baseline: urls, interval: req.NotifyInterval}
	if job.interval <= 0 {
		job.interval = time.Hour
	}

	s.mu.Lock()
	s.pending++
	s.mu.Unlock()

	logger.Info("scheduled follow-up search", "query", req.Query, "interval", job.interval, "baseline", len(urls))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.pending--
			s.mu.Unlock()
		}()
		s.run(ctx, job)
	}()
}

func (s *Scheduler) run(ctx context.Context, job followUp) {
	timer := time.NewTimer(job.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		// Process shutdown abandons pending follow-ups.
		logger.Debug("follow-up abandoned", "query", job.req.Query)
		return
	case <-timer.C:
	}

	results := s.searcher.Search(ctx, job.req)

	var fresh []model.Article
	for _, a := range results {
		if _, known := job.baseline[a.URL]; !known {
			fresh = append(fresh, a)
		}
	}

	if len(fresh) == 0 {
		logger.Info("follow-up search found nothing new", "query", job.req.Query)
		return
	}

	if err := s.notifier.Notify(ctx, Notification{Query: job.req.Query, Articles: fresh}); err != nil {
		logger.Error("notification delivery failed", "query", job.req.Query, "error", err)
	}
}

// Pending reports how many follow-ups are in flight.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Wait blocks until all scheduled follow-ups have finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
