package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsagent/internal/cache"
	"github.com/deusflow/newsagent/internal/model"
)

type stubSearcher struct {
	mu      sync.Mutex
	results [][]model.Article
	calls   int
}

func (s *stubSearcher) Search(_ context.Context, _ model.SearchRequest) []model.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []model.Article
	if s.calls < len(s.results) {
		res = s.results[s.calls]
	} else if len(s.results) > 0 {
		res = s.results[len(s.results)-1]
	}
	s.calls++
	return res
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, n)
	return nil
}

func (r *recordingNotifier) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.events...)
}

func art(url string) model.Article {
	return model.Article{Title: "t " + url, URL: url}
}

func TestScheduler_NotifiesOnNewArticlesOnly(t *testing.T) {
	searcher := &stubSearcher{results: [][]model.Article{
		{art("https://e.com/a"), art("https://e.com/b")},
		{art("https://e.com/a"), art("https://e.com/b"), art("https://e.com/c")},
	}}
	rec := &recordingNotifier{}
	s := NewScheduler(searcher, rec)

	s.Schedule(context.Background(), model.SearchRequest{
		Query:          "sudan",
		NotifyInterval: 10 * time.Millisecond,
	})
	s.Wait()

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, "sudan", events[0].Query)
	require.Len(t, events[0].Articles, 1)
	assert.Equal(t, "https://e.com/c", events[0].Articles[0].URL)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_SilentWhenFollowUpIdentical(t *testing.T) {
	baseline := []model.Article{art("https://e.com/a"), art("https://e.com/b")}
	searcher := &stubSearcher{results: [][]model.Article{baseline, baseline}}
	rec := &recordingNotifier{}
	s := NewScheduler(searcher, rec)

	s.Schedule(context.Background(), model.SearchRequest{
		Query:          "sudan",
		NotifyInterval: 10 * time.Millisecond,
	})
	s.Wait()

	assert.Empty(t, rec.all())
}

func TestScheduler_EmptyResultsAreValid(t *testing.T) {
	// Upstream failures surface as empty searches; the diff still runs.
	searcher := &stubSearcher{results: [][]model.Article{
		nil,
		{art("https://e.com/new")},
	}}
	rec := &recordingNotifier{}
	s := NewScheduler(searcher, rec)

	s.Schedule(context.Background(), model.SearchRequest{
		Query:          "sudan",
		NotifyInterval: 10 * time.Millisecond,
	})
	s.Wait()

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, "https://e.com/new", events[0].Articles[0].URL)
}

func TestScheduler_AbandonedOnCancel(t *testing.T) {
	searcher := &stubSearcher{results: [][]model.Article{
		{art("https://e.com/a")},
		{art("https://e.com/a"), art("https://e.com/b")},
	}}
	rec := &recordingNotifier{}
	s := NewScheduler(searcher, rec)

	ctx, cancel := context.WithCancel(context.Background())
	s.Schedule(ctx, model.SearchRequest{
		Query:          "sudan",
		NotifyInterval: time.Hour,
	})
	assert.Equal(t, 1, s.Pending())

	cancel()
	s.Wait()
	assert.Empty(t, rec.all())
}

func TestDeduped_SuppressesAlreadyAnnounced(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDeduped(rec, cache.NewTTLSet(time.Hour))

	d.MarkSeen([]model.Article{art("https://e.com/seen")})

	err := d.Notify(context.Background(), Notification{
		Query:    "sudan",
		Articles: []model.Article{art("https://e.com/seen"), art("https://e.com/fresh")},
	})
	require.NoError(t, err)

	events := rec.all()
	require.Len(t, events, 1)
	require.Len(t, events[0].Articles, 1)
	assert.Equal(t, "https://e.com/fresh", events[0].Articles[0].URL)

	// A second event with nothing fresh is swallowed entirely.
	require.NoError(t, d.Notify(context.Background(), Notification{
		Query:    "sudan",
		Articles: []model.Article{art("https://e.com/fresh")},
	}))
	assert.Len(t, rec.all(), 1)
}
