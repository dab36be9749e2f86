// Package cache is a small in-memory TTL set used to suppress repeated
// notifications about the same article URL.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	expiresAt time.Time
}

type TTLSet struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]entry
}

func NewTTLSet(ttl time.Duration) *TTLSet {
	s := &TTLSet{
		ttl:   ttl,
		items: make(map[string]entry),
	}

	// Purge expired entries every hour
	go s.cleanupLoop(1 * time.Hour)

	return s
}

func (s *TTLSet) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		s.Cleanup()
	}
}

// Add marks the key as seen for the configured TTL and reports whether
// it was newly added (false means the key was already live).
func (s *TTLSet) Add(key string) bool {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.items[key]; ok && now.Before(e.expiresAt) {
		return false
	}
	s.items[key] = entry{expiresAt: now.Add(s.ttl)}
	return true
}

// Contains reports whether the key is live.
func (s *TTLSet) Contains(key string) bool {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[key]
	return ok && now.Before(e.expiresAt)
}

// Cleanup drops expired entries.
func (s *TTLSet) Cleanup() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.items {
		if now.After(e.expiresAt) {
			delete(s.items, key)
		}
	}
}

// Len counts live entries.
func (s *TTLSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	now := time.Now()
	for _, e := range s.items {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}
