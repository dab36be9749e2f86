package ratelimit

import "sync"

// Limiter caps the number of AI requests a single run may issue. Zero
// max means unlimited.
type Limiter struct {
	mu    sync.Mutex
	max   int
	count int
}

func New(max int) *Limiter {
	return &Limiter{max: max}
}

// Allow consumes one request slot, reporting whether the call may
// proceed.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.max > 0 && l.count >= l.max {
		return false
	}
	l.count++
	return true
}

// Used returns how many slots have been consumed.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
