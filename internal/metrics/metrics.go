package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched    int64
	SourceFailures     int64
	DuplicatesRemoved  int64
	SummariesGenerated int64
	SummariesFailed    int64
	NotificationsSent  int64

	// Timings
	LastSearchDuration time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesFetched(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += n
}

func (m *Metrics) IncrementSourceFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceFailures++
}

func (m *Metrics) AddDuplicatesRemoved(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesRemoved += n
}

func (m *Metrics) IncrementSummariesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) IncrementSummariesFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesFailed++
}

func (m *Metrics) IncrementNotificationsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotificationsSent++
}

func (m *Metrics) RecordSearchDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastSearchDuration = d
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":        m.ArticlesFetched,
		"source_failures":         m.SourceFailures,
		"duplicates_removed":      m.DuplicatesRemoved,
		"summaries_generated":     m.SummariesGenerated,
		"summaries_failed":        m.SummariesFailed,
		"notifications_sent":      m.NotificationsSent,
		"last_search_duration_ms": m.LastSearchDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
