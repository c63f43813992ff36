package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bazaar/backend/internal/domain/shared"
)

// guardEntry represents an in-flight key with expiration
type guardEntry struct {
	expiresAt time.Time
}

// InMemoryRunGuard implements RunGuard using an in-memory map.
// This is suitable for single-instance deployments and testing
type InMemoryRunGuard struct {
	mu        sync.Mutex
	entries   map[string]guardEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRunGuard creates a new in-memory run guard.
// It starts a background goroutine to clean up expired entries
func NewInMemoryRunGuard() *InMemoryRunGuard {
	guard := &InMemoryRunGuard{
		entries:  make(map[string]guardEntry),
		stopChan: make(chan struct{}),
	}

	guard.wg.Add(1)
	go guard.cleanupLoop()

	return guard
}

// TryAcquire marks the key as in-flight with a TTL.
// Returns true if the key was newly acquired, false if a run with the same
// key is already in flight
func (g *InMemoryRunGuard) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e, exists := g.entries[key]; exists {
		if time.Now().Before(e.expiresAt) {
			return false, nil // Already in flight
		}
		// Entry exists but expired, will be overwritten
	}

	g.entries[key] = guardEntry{
		expiresAt: time.Now().Add(ttl),
	}

	return true, nil
}

// Release clears the key so the operation can be submitted again
func (g *InMemoryRunGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, key)
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times
func (g *InMemoryRunGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (g *InMemoryRunGuard) cleanupLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

// cleanup removes expired entries from the guard
func (g *InMemoryRunGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for key, e := range g.entries {
		if now.After(e.expiresAt) {
			delete(g.entries, key)
		}
	}
}

// Size returns the number of entries in the guard (for testing/monitoring)
func (g *InMemoryRunGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// Ensure InMemoryRunGuard implements RunGuard
var _ shared.RunGuard = (*InMemoryRunGuard)(nil)
