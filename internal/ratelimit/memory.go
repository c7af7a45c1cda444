package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	bucketCleanupThreshold = 1 * time.Hour
	cleanupInterval        = 30 * time.Minute
)

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// Memory is a per-process token bucket limiter. Buckets refill completely
// once every refill period.
type Memory struct {
	mu          sync.Mutex
	capacity    int
	refill      time.Duration
	buckets     map[string]*bucket
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewMemory starts a limiter allowing capacity requests per refill period.
// Call Stop to end its cleanup goroutine.
func NewMemory(capacity int, refill time.Duration) *Memory {
	m := &Memory{
		capacity:    capacity,
		refill:      refill,
		buckets:     make(map[string]*bucket),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Memory) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, b := range m.buckets {
		if now.Sub(b.lastRefill) > bucketCleanupThreshold {
			delete(m.buckets, key)
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (m *Memory) Stop() {
	m.stopOnce.Do(func() { close(m.stopCleanup) })
}

// Allow consumes one token for key.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok {
		m.buckets[key] = &bucket{tokens: m.capacity - 1, lastRefill: now}
		return m.capacity > 0, nil
	}

	if now.Sub(b.lastRefill) >= m.refill {
		b.tokens = m.capacity
		b.lastRefill = now
	}

	if b.tokens <= 0 {
		return false, nil
	}

	b.tokens--
	return true, nil
}
